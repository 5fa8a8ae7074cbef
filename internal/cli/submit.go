package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/shadowsync/internal/mirror"
	"github.com/mesh-intelligence/shadowsync/pkg/types"
)

func newSubmitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "submit <value>...",
		Short: "Append a form response and ingest it",
		Long: "Submit appends the values as a new Form Responses row and copies it into\n" +
			"Shadower Admins with a fresh identifier, as a form submission would.\n\n" +
			"Values follow the form columns: " + fmt.Sprint(types.FormResponseTitles),
		Example: `  shadowsync submit "2025-03-01 10:00:00" "Alice" "Who owns refunds?" "" "Remote" "Dana"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(func(ws *workspace) error {
				res, err := ws.h.SubmitResponse(types.RowOf(args...))
				if err != nil {
					return err
				}
				return printIngest(cmd, a, res)
			})
		},
	}
}

func printIngest(cmd *cobra.Command, a *app, res *mirror.IngestResult) error {
	out := cmd.OutOrStdout()
	if a.flags.jsonMode {
		return printJSON(out, res)
	}
	if res == nil {
		warnColor.Fprintln(out, "nothing ingested")
		return nil
	}
	okColor.Fprintf(out, "ingested ")
	fmt.Fprintf(out, "%s into %s row %d\n", res.Identifier, types.SheetMaster, res.Row)
	return nil
}
