package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/shadowsync/internal/mirror"
	"github.com/mesh-intelligence/shadowsync/pkg/types"
)

func newEditCmd(a *app) *cobra.Command {
	var actor string
	cmd := &cobra.Command{
		Use:   "edit <sheet> <row> <column> <value>",
		Short: "Write a cell and run the edit handler",
		Long: "Edit writes value into one cell, then logs the edit and runs category sync\n" +
			"or reverse sync as an edit trigger would. The cell's previous value is\n" +
			"captured so category moves remove the old copy.\n\n" +
			"The column is a 1-based number or a master column title such as Category.",
		Example: "  shadowsync edit \"Shadower Admins\" 3 Category Support",
		Args:    cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			row, err := strconv.Atoi(args[1])
			if err != nil {
				return userErr(fmt.Errorf("invalid row %q", args[1]))
			}
			col, err := parseColumn(args[2])
			if err != nil {
				return userErr(err)
			}
			if actor == "" {
				actor = a.cfg.Actor
			}
			return a.run(func(ws *workspace) error {
				out, err := ws.h.ApplyEdit(args[0], row, col, args[3], actor)
				if err != nil {
					return err
				}
				return printEdit(cmd, a, out)
			})
		},
	}
	cmd.Flags().StringVar(&actor, "actor", "", "editor recorded in the Event Log (default: actor from config)")
	return cmd
}

// parseColumn accepts a column number or a master column title.
func parseColumn(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		if n < 1 {
			return 0, fmt.Errorf("invalid column %d: %w", n, types.ErrInvalidColumn)
		}
		return n, nil
	}
	for i, title := range types.MasterColumnTitles {
		if strings.EqualFold(title, s) {
			return i + 1, nil
		}
	}
	return 0, fmt.Errorf("unknown column %q: %w", s, types.ErrInvalidColumn)
}

func printEdit(cmd *cobra.Command, a *app, o *mirror.EditOutcome) error {
	out := cmd.OutOrStdout()
	if a.flags.jsonMode {
		return printJSON(out, o)
	}
	if o.Ignored != "" {
		warnColor.Fprintf(out, "ignored ")
		fmt.Fprintln(out, o.Ignored)
		return nil
	}
	if o.Logged {
		okColor.Fprintf(out, "logged  ")
		fmt.Fprintln(out, types.SheetEventLog)
	}
	if c := o.Category; c != nil {
		if c.Skipped != "" {
			warnColor.Fprintf(out, "skipped ")
			fmt.Fprintln(out, c.Skipped)
			return nil
		}
		for _, name := range c.RemovedFrom {
			infoColor.Fprintf(out, "removed ")
			fmt.Fprintf(out, "%s from %s\n", c.Identifier, name)
		}
		if c.NewCategory != "" {
			verb := "updated "
			if c.Appended {
				verb = "added   "
			}
			okColor.Fprint(out, verb)
			fmt.Fprintf(out, "%s in %s row %d\n", c.Identifier, c.NewCategory, c.Row)
		}
	}
	if r := o.Reverse; r != nil {
		if r.Found {
			okColor.Fprintf(out, "synced  ")
			fmt.Fprintf(out, "%s to %s row %d\n", r.Identifier, types.SheetMaster, r.MasterRow)
		} else {
			warnColor.Fprintln(out, "no master row matched")
		}
	}
	return nil
}
