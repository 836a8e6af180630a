package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"

	"sdkgen/internal/adapter/analyzer"
	"sdkgen/internal/domain"
	"sdkgen/internal/logging"
	"sdkgen/internal/port"
)

// GenerateUseCase extracts and renders many classes in parallel.
type GenerateUseCase struct {
	extract    *ExtractUseCase
	renderer   port.Renderer
	prototypes port.PrototypeWriter
	state      port.ResultStore
	jobs       int
}

// NewGenerateUseCase creates a new generate use case. prototypes may be nil
// to skip prototype dumps; jobs <= 0 uses one worker per CPU.
func NewGenerateUseCase(
	extract *ExtractUseCase,
	renderer port.Renderer,
	prototypes port.PrototypeWriter,
	state port.ResultStore,
	jobs int,
) *GenerateUseCase {
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	return &GenerateUseCase{
		extract:    extract,
		renderer:   renderer,
		prototypes: prototypes,
		state:      state,
		jobs:       jobs,
	}
}

// GenerateOptions control a generate run.
type GenerateOptions struct {
	// Fingerprint identifies the table and configuration the run uses.
	// Classes recorded with the same fingerprint are skipped.
	Fingerprint string
	Force       bool
}

// GenerateResult contains the results of a generate operation.
type GenerateResult struct {
	Generated []domain.ClassRecord
	Skipped   []string
	Empty     []string
	Functions int
	Dropped   int
}

// ProgressFunc is called after each class finishes.
type ProgressFunc func(done, total int, class string)

// Generate processes classes. An unknown calling convention without fallback
// aborts the run and its error is returned alone. Render and store failures
// are collected per class; the run continues and they are returned together
// with the partial result.
func (u *GenerateUseCase) Generate(ctx context.Context, rows []domain.SymbolRow, classes []string, opts GenerateOptions, progress ProgressFunc) (*GenerateResult, error) {
	logger := logging.FromContext(ctx)
	result := &GenerateResult{}

	var (
		mu      sync.Mutex
		failed  *multierror.Error
		done    int
		g, gctx = errgroup.WithContext(ctx)
	)
	g.SetLimit(u.jobs)

	finish := func(class string) {
		done++
		if progress != nil {
			progress(done, len(classes), class)
		}
	}

	for _, class := range classes {
		g.Go(func() error {
			if !opts.Force && u.upToDate(class, opts.Fingerprint) {
				mu.Lock()
				defer mu.Unlock()
				result.Skipped = append(result.Skipped, class)
				finish(class)
				return nil
			}

			classRows := rowsOf(rows, class)
			grouped, ok, err := u.extract.Extract(gctx, classRows, class)
			if err != nil {
				return err
			}

			if !ok {
				logger.Warn("No functions found for class", "class", class)
				mu.Lock()
				defer mu.Unlock()
				result.Empty = append(result.Empty, class)
				finish(class)
				return nil
			}

			rec, err := u.emit(class, classRows, grouped, opts.Fingerprint)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed = multierror.Append(failed, errors.Errorf("class %s: %w", class, err))
			} else {
				result.Generated = append(result.Generated, rec)
				result.Functions += rec.Functions
				result.Dropped += rec.Dropped
			}
			finish(class)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, failed.ErrorOrNil()
}

// emit renders one class and records it.
func (u *GenerateUseCase) emit(class string, classRows []domain.SymbolRow, grouped *domain.GroupedResult, fingerprint string) (domain.ClassRecord, error) {
	files, err := u.renderer.Render(class, grouped)
	if err != nil {
		return domain.ClassRecord{}, err
	}

	if u.prototypes != nil {
		path, err := u.prototypes.WritePrototypes(class, classRows)
		if err != nil {
			return domain.ClassRecord{}, err
		}
		files = append(files, path)
	}

	rec := domain.ClassRecord{
		Class:       class,
		Fingerprint: fingerprint,
		Functions:   grouped.Count(),
		Dropped:     len(grouped.Dropped),
		Files:       files,
		GeneratedAt: time.Now().Unix(),
	}
	if u.state != nil {
		if err := u.state.PutRecordWithResult(rec, grouped); err != nil {
			return rec, errors.Errorf("failed to record generation: %w", err)
		}
	}
	return rec, nil
}

// upToDate reports whether class was generated with fingerprint and all of
// its files still exist.
func (u *GenerateUseCase) upToDate(class, fingerprint string) bool {
	if u.state == nil || fingerprint == "" {
		return false
	}
	rec, found, err := u.state.GetRecord(class)
	if err != nil || !found || rec.Fingerprint != fingerprint {
		return false
	}
	for _, f := range rec.Files {
		if _, err := os.Stat(f); err != nil {
			return false
		}
	}
	return true
}

// rowsOf partitions the table down to the rows of one class so workers never
// share more than the read-only input.
func rowsOf(rows []domain.SymbolRow, class string) []domain.SymbolRow {
	var out []domain.SymbolRow
	for _, row := range rows {
		if analyzer.HasClassPrefix(row.DemangledName, class) {
			out = append(out, row)
		}
	}
	return out
}

// ResolveClasses turns class arguments into class names. Literal names are
// kept even when absent from the table, so the run reports them as empty;
// glob arguments are expanded against the table.
func ResolveClasses(rows []domain.SymbolRow, args []string) ([]string, error) {
	var literal, patterns []string
	for _, a := range args {
		if hasGlob(a) {
			patterns = append(patterns, a)
		} else {
			literal = append(literal, a)
		}
	}

	out := literal
	if len(patterns) > 0 {
		matched, err := MatchClasses(ListClasses(rows), patterns)
		if err != nil {
			return nil, err
		}
		out = append(out, matched...)
	}

	seen := make(map[string]bool, len(out))
	unique := out[:0]
	for _, c := range out {
		if !seen[c] {
			seen[c] = true
			unique = append(unique, c)
		}
	}
	return unique, nil
}

// Fingerprint hashes the function table contents together with a config hash.
func Fingerprint(table io.Reader, configHash string) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, table); err != nil {
		return "", errors.Errorf("failed to hash function table: %w", err)
	}
	h.Write([]byte(configHash))
	return hex.EncodeToString(h.Sum(nil)[:12]), nil
}
