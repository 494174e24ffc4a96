package cmd

import (
	"fmt"
	"strconv"
	"time"

	"sheet-reconciler/core/runs"

	"github.com/spf13/cobra"
)

var runsLimit int

// runsCmd lists merges recorded in the run ledger.
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent merges from the run ledger",
	Long:  `Lists the most recent merges recorded in the database, newest first. Requires database.enabled.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, l, err := loadApp(false)
		if err != nil {
			return err
		}
		defer l.Sync()

		if !cfg.Database.Enabled {
			return fmt.Errorf("run ledger is disabled; set DATABASE_ENABLED=true")
		}
		store := openLedger(cmd.Context(), cfg.Database, l)

		list, err := store.List(cmd.Context(), runsLimit)
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No merges recorded yet.")
			return nil
		}

		fmt.Fprintln(cmd.OutOrStdout(), renderRuns(list))
		return nil
	},
}

func init() {
	runsCmd.Flags().IntVar(&runsLimit, "limit", runs.DefaultLimit, "Maximum number of runs to list")
	RootCmd.AddCommand(runsCmd)
}

func renderRuns(list []runs.Run) string {
	headers := []string{"Started", "Status", "Master", "Child", "Passes", "Aligned", "Orphans", "Rejected", "Output"}
	aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignLeft}

	rows := make([][]string, 0, len(list))
	for _, r := range list {
		output := r.OutputPath
		if r.Status == runs.StatusFailed {
			output = r.Error
		}
		rows = append(rows, []string{
			r.StartedAt.Local().Format(time.DateTime),
			r.Status,
			r.MasterLocation,
			r.ChildLocation,
			strconv.Itoa(r.Attempts),
			strconv.Itoa(r.Aligned),
			strconv.Itoa(r.Orphans),
			strconv.Itoa(r.Rejected),
			output,
		})
	}
	return renderTable(headers, rows, aligns)
}
