package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/shadowsync/pkg/types"
)

type sheetSummary struct {
	Name    string `json:"name"`
	GID     int64  `json:"gid"`
	Role    string `json:"role"`
	LastRow int    `json:"last_row"`
}

func newSheetsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sheets",
		Short: "List sheets with their role and size",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(func(ws *workspace) error {
				names, err := ws.wb.SheetNames()
				if err != nil {
					return err
				}
				var list []sheetSummary
				for _, name := range names {
					s, err := ws.wb.Sheet(name)
					if err != nil {
						return err
					}
					last, err := s.LastRow()
					if err != nil {
						return err
					}
					list = append(list, sheetSummary{name, s.GID(), types.ResolveRole(name).Role.String(), last})
				}

				out := cmd.OutOrStdout()
				if a.flags.jsonMode {
					return printJSON(out, list)
				}
				for _, s := range list {
					fmt.Fprintf(out, "%-24s %-12s gid=%-11d rows=%d\n", s.Name, s.Role, s.GID, s.LastRow)
				}
				return nil
			})
		},
	}
}

func newRowsCmd(a *app) *cobra.Command {
	var from int
	cmd := &cobra.Command{
		Use:   "rows <sheet>",
		Short: "Print the rows of a sheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(func(ws *workspace) error {
				s, err := ws.wb.Sheet(args[0])
				if err != nil {
					return fmt.Errorf("%q: %w", args[0], err)
				}
				rows, err := s.Rows(from)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if a.flags.jsonMode {
					if rows == nil {
						rows = []types.Row{}
					}
					return printJSON(out, rows)
				}
				for i, r := range rows {
					fmt.Fprintf(out, "%d\t%s\n", from+i, strings.Join(r.Values(), "\t"))
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&from, "from", 1, "first row to print")
	return cmd
}
