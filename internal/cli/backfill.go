package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newBackfillCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "backfill",
		Short: "Fill missing identifiers, timestamps and question URLs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(func(ws *workspace) error {
				report, ran, err := ws.h.Backfill(ws.wb.ID())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if a.flags.jsonMode {
					return printJSON(out, report)
				}
				if !ran {
					warnColor.Fprintf(out, "skipped ")
					fmt.Fprintf(out, "workbook %s is not the target %s\n", ws.wb.ID(), a.cfg.TargetID)
					return nil
				}
				okColor.Fprintf(out, "backfilled ")
				fmt.Fprintf(out, "%d rows: %d identifiers, %d timestamps, %d links\n",
					report.Scanned, report.Identifiers, report.Timestamps, report.Links)
				return nil
			})
		},
	}
}
