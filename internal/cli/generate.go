package cli

import (
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/k0kubun/pp/v3"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"sdkgen/config"
	"sdkgen/internal/adapter/memstore"
	"sdkgen/internal/adapter/render"
	"sdkgen/internal/adapter/store"
	"sdkgen/internal/domain"
	"sdkgen/internal/logging"
	"sdkgen/internal/port"
	"sdkgen/internal/usecase"
)

var (
	generateAll            bool
	generateForce          bool
	generateJobs           int
	generateAssumedCC      string
	generateDumpPrototypes bool
	generateOutput         string
	generateNoState        bool
)

var generateCmd = &cobra.Command{
	Use:   "generate [class|pattern...]",
	Short: "Generate bindings for classes",
	Long: `Classify the member functions of the given classes and render a header and
a source file per class into the output directory.

Classes can be given as names or doublestar patterns. Without arguments the
patterns in extract.classes of the config are used; --all selects every class
in the table. Classes whose table rows and configuration are unchanged since
the last run are skipped unless --force is given.

Examples:
  sdkgen generate CPed                       # Generate one class
  sdkgen generate "CAE*" --jobs 4            # Generate all audio classes
  sdkgen generate CPed --assumed-cc thiscall # Default unknown conventions`,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().BoolVar(&generateAll, "all", false, "generate every class in the function table")
	generateCmd.Flags().BoolVarP(&generateForce, "force", "f", false, "regenerate classes even if unchanged")
	generateCmd.Flags().IntVarP(&generateJobs, "jobs", "j", 0, "parallel workers (default from config, 0 = one per CPU)")
	generateCmd.Flags().StringVar(&generateAssumedCC, "assumed-cc", "", "calling convention used for functions with an invalid one")
	generateCmd.Flags().BoolVar(&generateDumpPrototypes, "dump-prototypes", false, "also write <Class>_Prototypes.h")
	generateCmd.Flags().StringVarP(&generateOutput, "output", "o", "", "output directory (default from config)")
	generateCmd.Flags().BoolVar(&generateNoState, "no-state", false, "do not read or record generation state")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := logging.FromContext(ctx)
	cfg := GetConfig()
	root := GetRootDir()
	out := cmd.OutOrStdout()

	if cmd.Flags().Changed("assumed-cc") {
		cfg.Extract.AssumedCC = generateAssumedCC
	}
	if cmd.Flags().Changed("jobs") {
		cfg.Generate.Jobs = generateJobs
	}
	if generateDumpPrototypes {
		cfg.Generate.DumpPrototypes = true
	}
	if generateOutput != "" {
		cfg.Generate.Output = generateOutput
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	rows, tablePath, err := loadTable(ctx, cfg, root)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Loaded %s rows from %s\n", humanize.Comma(int64(len(rows))), tablePath)

	classes, err := selectClasses(rows, args)
	if err != nil {
		return err
	}
	if len(classes) == 0 {
		return fmt.Errorf("no classes selected: pass class names, use --all, or set extract.classes in the config")
	}

	st, err := openState(out, cfg, root)
	if err != nil {
		return err
	}
	defer st.Close()

	table, err := os.Open(tablePath)
	if err != nil {
		return fmt.Errorf("failed to open function table: %w", err)
	}
	fingerprint, err := usecase.Fingerprint(table, store.ComputeConfigHash(cfg))
	table.Close()
	if err != nil {
		return err
	}

	extractUC, err := newExtractUseCase(ctx, cfg)
	if err != nil {
		return err
	}

	outputDir := config.ResolvePath(root, cfg.Generate.Output)
	renderer, err := render.NewRenderer(outputDir, render.Options{
		UseStaticInline: cfg.Generate.UseStaticInline,
		WrapVirtuals:    cfg.Generate.WrapVirtuals,
		Category:        cfg.Generate.Category,
	})
	if err != nil {
		return err
	}
	var prototypes port.PrototypeWriter
	if cfg.Generate.DumpPrototypes {
		prototypes = renderer
	}

	generateUC := usecase.NewGenerateUseCase(extractUC, renderer, prototypes, st, cfg.Generate.Jobs)

	var barMu sync.Mutex
	bar := progressbar.NewOptions(len(classes),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowBytes(false),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("[cyan]Generating[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(os.Stderr)
		}),
	)
	progress := func(done, total int, class string) {
		barMu.Lock()
		defer barMu.Unlock()
		bar.Describe(fmt.Sprintf("[cyan]Generating[reset] %s", class))
		_ = bar.Set(done)
	}

	result, err := generateUC.Generate(ctx, rows, classes, usecase.GenerateOptions{
		Fingerprint: fingerprint,
		Force:       generateForce,
	}, progress)
	if result == nil {
		return err
	}

	if cfg.Debug {
		for _, rec := range result.Generated {
			grouped, gerr := st.GetResult(rec.Class)
			if gerr != nil || grouped == nil {
				continue
			}
			logger.Debug("classified functions", "class", rec.Class)
			pp.Fprintln(os.Stderr, grouped)
		}
	}

	sort.Slice(result.Generated, func(i, j int) bool {
		return result.Generated[i].Class < result.Generated[j].Class
	})

	fmt.Fprintf(out, "\nGeneration complete:\n")
	fmt.Fprintf(out, "  Classes generated: %d\n", len(result.Generated))
	fmt.Fprintf(out, "  Classes skipped:   %d (unchanged)\n", len(result.Skipped))
	fmt.Fprintf(out, "  Classes empty:     %d\n", len(result.Empty))
	fmt.Fprintf(out, "  Functions:         %s\n", humanize.Comma(int64(result.Functions)))
	fmt.Fprintf(out, "  Rows dropped:      %s\n", humanize.Comma(int64(result.Dropped)))

	if len(result.Empty) > 0 {
		sort.Strings(result.Empty)
		fmt.Fprintf(out, "\nNo functions found for:\n")
		for _, c := range result.Empty {
			fmt.Fprintf(out, "  - %s\n", c)
		}
	}

	fmt.Fprintf(out, "\nOutput written to: %s\n", outputDir)
	return err
}

// selectClasses resolves the classes a command works on.
func selectClasses(rows []domain.SymbolRow, args []string) ([]string, error) {
	switch {
	case len(args) > 0:
		return usecase.ResolveClasses(rows, args)
	case generateAll:
		var all []string
		for _, c := range usecase.ListClasses(rows) {
			all = append(all, c.Class)
		}
		return all, nil
	default:
		return usecase.MatchClasses(usecase.ListClasses(rows), GetConfig().Extract.Classes)
	}
}

// openState opens the bbolt state store, migrating it if needed. With
// --no-state an empty in-memory store is used instead.
func openState(out io.Writer, cfg *config.Config, root string) (port.ResultStore, error) {
	if generateNoState {
		return memstore.NewMemoryStore(), nil
	}

	// Ensure .sdkgen directory exists
	if err := config.EnsureStateDir(root); err != nil {
		return nil, fmt.Errorf("failed to create .sdkgen directory: %w", err)
	}

	st, err := store.NewBoltStore(config.StateDBPath(root))
	if err != nil {
		return nil, fmt.Errorf("failed to open state store: %w", err)
	}

	staleness, err := st.CheckStale(cfg)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to check state: %w", err)
	}
	if staleness.Stale {
		fmt.Fprintf(out, "Regenerating all classes: %s\n", staleness.Reason)
		if err := st.Clear(); err != nil {
			st.Close()
			return nil, fmt.Errorf("failed to clear state: %w", err)
		}
	}
	if err := st.StampWith(cfg); err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to stamp state: %w", err)
	}
	return st, nil
}
