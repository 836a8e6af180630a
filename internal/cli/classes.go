package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"sdkgen/internal/usecase"
)

var classesCmd = &cobra.Command{
	Use:   "classes [pattern...]",
	Short: "List the classes in the function table",
	Long: `List every class that has member functions in the function table, with
the number of rows each one has. Patterns use doublestar syntax.

Examples:
  sdkgen classes
  sdkgen classes "CAE*" "CTask*"`,
	RunE: runClasses,
}

func init() {
	rootCmd.AddCommand(classesCmd)
}

func runClasses(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	rows, _, err := loadTable(cmd.Context(), GetConfig(), GetRootDir())
	if err != nil {
		return err
	}

	classes := usecase.ListClasses(rows)
	if len(args) > 0 {
		names, err := usecase.MatchClasses(classes, args)
		if err != nil {
			return err
		}
		keep := make(map[string]bool, len(names))
		for _, n := range names {
			keep[n] = true
		}
		filtered := classes[:0]
		for _, c := range classes {
			if keep[c.Class] {
				filtered = append(filtered, c)
			}
		}
		classes = filtered
	}

	if len(classes) == 0 {
		fmt.Fprintln(out, "No classes found.")
		return nil
	}

	total := 0
	for _, c := range classes {
		fmt.Fprintf(out, "%-40s %8s\n", c.Class, humanize.Comma(int64(c.Rows)))
		total += c.Rows
	}
	fmt.Fprintf(out, "\n%s classes, %s rows\n", humanize.Comma(int64(len(classes))), humanize.Comma(int64(total)))
	return nil
}
