package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/tally-dev/tally/internal/activity"
	"github.com/tally-dev/tally/internal/id"
)

func newLogCommand(opts *rootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show recent ledger changes",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(a *app, _ []string) error {
			entries, err := a.activity.Read()
			if err != nil {
				return err
			}
			entries = activity.Last(entries, limit)

			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{
					e.Timestamp.Local().Format(time.DateTime), e.Action, e.Details, id.Short(e.RecordID),
				})
			}
			renderTable(a.out, "No activity yet.", []string{"Time", "Action", "Details", "Record"}, rows)
			return nil
		}),
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of entries, 0 for all")
	return cmd
}
