package cli

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"sdkgen/config"
	"sdkgen/internal/adapter/store"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the classes recorded by previous generate runs",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	cfg := GetConfig()
	root := GetRootDir()

	dbPath := config.StateDBPath(root)
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		fmt.Fprintln(out, "Nothing generated yet. Run 'sdkgen generate' first.")
		return nil
	}

	st, err := store.NewBoltStore(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open state store: %w", err)
	}
	defer st.Close()

	staleness, err := st.CheckStale(cfg)
	if err != nil {
		return fmt.Errorf("failed to check state: %w", err)
	}
	if staleness.Stale {
		fmt.Fprintf(out, "Stored state is stale: %s\n\n", staleness.Reason)
	}

	records, err := st.ListRecords()
	if err != nil {
		return err
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Class < records[j].Class
	})

	functions := 0
	for _, rec := range records {
		fmt.Fprintf(out, "%-40s %5d functions %4d dropped  %s\n",
			rec.Class, rec.Functions, rec.Dropped, humanize.Time(time.Unix(rec.GeneratedAt, 0)))
		functions += rec.Functions
	}
	fmt.Fprintf(out, "\n%d classes, %s functions\n", len(records), humanize.Comma(int64(functions)))
	return nil
}
