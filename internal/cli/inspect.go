package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/k0kubun/pp/v3"
	"github.com/spf13/cobra"

	"sdkgen/config"
	"sdkgen/internal/adapter/store"
	"sdkgen/internal/domain"
)

var (
	inspectJSON      bool
	inspectFromState bool
	inspectAssumedCC string
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <class>",
	Short: "Show how the functions of a class are classified",
	Long: `Classify the member functions of one class and print them grouped by
category, together with the rows that were dropped and why. Nothing is written.

With --from-state the result recorded by the last generate run is shown
instead of classifying the table again.

Examples:
  sdkgen inspect CPed
  sdkgen inspect CPed --json
  sdkgen inspect CPed --from-state`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "output as JSON")
	inspectCmd.Flags().BoolVar(&inspectFromState, "from-state", false, "show the result stored by the last generate run")
	inspectCmd.Flags().StringVar(&inspectAssumedCC, "assumed-cc", "", "calling convention used for functions with an invalid one")
}

func runInspect(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := GetConfig()
	root := GetRootDir()
	out := cmd.OutOrStdout()
	class := args[0]

	if cmd.Flags().Changed("assumed-cc") {
		cfg.Extract.AssumedCC = inspectAssumedCC
	}

	var result *domain.GroupedResult
	if inspectFromState {
		res, err := storedResult(root, class)
		if err != nil {
			return err
		}
		result = res
	} else {
		rows, _, err := loadTable(ctx, cfg, root)
		if err != nil {
			return err
		}
		extractUC, err := newExtractUseCase(ctx, cfg)
		if err != nil {
			return err
		}
		res, ok, err := extractUC.Extract(ctx, rows, class)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintf(out, "No functions found for class %s\n", class)
			return nil
		}
		result = res
	}

	if cfg.Debug {
		pp.Fprintln(os.Stderr, result)
	}

	if inspectJSON {
		output, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(output))
		return nil
	}

	printResult(out, result)
	return nil
}

func storedResult(root, class string) (*domain.GroupedResult, error) {
	dbPath := config.StateDBPath(root)
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("no state found. Run 'sdkgen generate' first")
	}

	st, err := store.NewBoltStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open state store: %w", err)
	}
	defer st.Close()

	result, err := st.GetResult(class)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, fmt.Errorf("class %s has not been generated yet", class)
	}
	return result, nil
}

// printResult writes a grouped result as one table per category.
func printResult(w io.Writer, result *domain.GroupedResult) {
	fmt.Fprintf(w, "%s: %d functions, %d dropped\n", result.Class, result.Count(), len(result.Dropped))

	type section struct {
		title string
		fns   []domain.FunctionDescriptor
	}
	var sections []section
	if result.Destructor != nil {
		sections = append(sections, section{"Destructor", []domain.FunctionDescriptor{*result.Destructor}})
	}
	sections = append(sections,
		section{"Constructors", result.Constructors},
		section{"Virtuals", result.Virtuals},
		section{"Methods", result.Methods},
		section{"Statics", result.Statics},
	)

	for _, s := range sections {
		if len(s.fns) == 0 {
			continue
		}
		fmt.Fprintf(w, "\n%s:\n", s.title)
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, f := range s.fns {
			vt := ""
			if f.VTIndex.IsVirtual() {
				vt = fmt.Sprintf("vt %d", f.VTIndex)
			}
			flags := ""
			if f.IsOverloaded {
				flags = "overloaded"
			}
			fmt.Fprintf(tw, "  %s\t%s\t%s %s(%s)\t%s\t%s\n", f.Address, f.CC, f.RetType, f.Name, f.ParamNameTypes(), vt, flags)
		}
		tw.Flush()
	}

	if len(result.Dropped) > 0 {
		fmt.Fprintf(w, "\nDropped:\n")
		for _, d := range result.Dropped {
			fmt.Fprintf(w, "  %s: %s\n", d.Symbol, d.Reason)
		}
	}
}
