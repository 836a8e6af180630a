package usecase

import (
	"cmp"
	"context"
	"log/slog"
	"slices"

	"gitlab.com/tozd/go/errors"

	"sdkgen/internal/adapter/analyzer"
	"sdkgen/internal/domain"
	"sdkgen/internal/logging"
)

// ExtractUseCase turns the rows of one class into a classified result. It
// keeps no state between calls, so classes can be extracted concurrently.
type ExtractUseCase struct {
	resolver   *analyzer.ConventionResolver
	args       *analyzer.ArgsExtractor
	classifier *analyzer.Classifier
	dtors      analyzer.DestructorFilter
}

// NewExtractUseCase creates a new extract use case.
func NewExtractUseCase(
	resolver *analyzer.ConventionResolver,
	args *analyzer.ArgsExtractor,
	classifier *analyzer.Classifier,
	dtors analyzer.DestructorFilter,
) *ExtractUseCase {
	return &ExtractUseCase{
		resolver:   resolver,
		args:       args,
		classifier: classifier,
		dtors:      dtors,
	}
}

type member struct {
	row  domain.SymbolRow
	name string
}

// Extract classifies the members of class found in rows.
//
// ok is false when no row belongs to the class; the caller should skip the
// class. Rows whose name or signature cannot be parsed are dropped, logged and
// listed in the result. An unknown calling convention without a configured
// fallback fails the whole extraction.
func (u *ExtractUseCase) Extract(ctx context.Context, rows []domain.SymbolRow, class string) (result *domain.GroupedResult, ok bool, err error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	logger := logging.FromContext(ctx).With("class", class)
	result = &domain.GroupedResult{Class: class}

	selected := 0
	var members []member
	for _, row := range rows {
		if !analyzer.HasClassPrefix(row.DemangledName, class) {
			continue
		}
		selected++

		name, parsed := analyzer.ParseName(row.DemangledName)
		if !parsed {
			ref := domain.SymbolRef{Name: row.DemangledName, Address: row.Address}
			u.drop(logger, result, ref, &domain.NameParseError{Symbol: ref, Demangled: row.DemangledName})
			continue
		}

		if !u.dtors.Keep(row, name) {
			logger.Debug("skipping compiler generated destructor", "symbol", name, "address", row.Address)
			continue
		}

		members = append(members, member{row: row, name: name})
	}

	if selected == 0 {
		return nil, false, nil
	}

	// Virtual table order matters: generated vtables must line up with the
	// original binary. Non-virtual rows carry -1 and sort first.
	slices.SortStableFunc(members, func(a, b member) int {
		return cmp.Compare(a.row.VTIndex, b.row.VTIndex)
	})

	drafts := make([]analyzer.Draft, 0, len(members))
	nameCount := make(map[string]int)
	for _, m := range members {
		ref := domain.SymbolRef{Name: m.name, Address: m.row.Address}

		cc, err := u.resolver.Resolve(m.row.CC, ref)
		if err != nil {
			return nil, false, errors.Errorf("class %s: %w", class, err)
		}

		params, err := u.args.Extract(class, m.row.ArgTypes, m.row.ArgNames, m.row.DemangledName, cc)
		if err != nil {
			var malformed *domain.MalformedSignatureError
			if errors.As(err, &malformed) {
				malformed.Symbol = ref
			}
			u.drop(logger, result, ref, err)
			continue
		}

		drafts = append(drafts, analyzer.Draft{Row: m.row, Name: m.name, CC: cc, Params: params})
		nameCount[m.name]++
	}

	for _, d := range drafts {
		fn := u.classifier.Build(class, d, nameCount[d.Name] >= 2)
		switch fn.Category {
		case domain.Constructor:
			result.Constructors = append(result.Constructors, fn)
		case domain.Virtual:
			result.Virtuals = append(result.Virtuals, fn)
		case domain.Method:
			result.Methods = append(result.Methods, fn)
		case domain.Static:
			result.Statics = append(result.Statics, fn)
		case domain.Destructor, domain.VirtualDestructor:
			u.setDestructor(logger, result, fn)
		}
	}

	return result, true, nil
}

// setDestructor keeps a single destructor, preferring the non-virtual one.
func (u *ExtractUseCase) setDestructor(logger *slog.Logger, result *domain.GroupedResult, fn domain.FunctionDescriptor) {
	current := result.Destructor
	if current == nil {
		result.Destructor = &fn
		return
	}

	keep, discard := *current, fn
	if current.Category == domain.VirtualDestructor && fn.Category == domain.Destructor {
		keep, discard = fn, *current
	}
	logger.Warn("multiple destructors survived, keeping one",
		"kept", keep.Address,
		"discarded", discard.Address,
	)
	result.Destructor = &keep
}

func (u *ExtractUseCase) drop(logger *slog.Logger, result *domain.GroupedResult, ref domain.SymbolRef, reason error) {
	logger.Warn("dropping row", "symbol", ref.Name, "address", ref.Address, "reason", reason.Error())
	result.Dropped = append(result.Dropped, domain.DroppedRow{Symbol: ref, Reason: reason.Error()})
}
