package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/shadowsync/pkg/types"
)

// workbookLayout is the set of sheets init creates, in order. Form
// Responses comes first so it takes gid 0, as in a form-linked spreadsheet.
var workbookLayout = []struct {
	name   string
	header func() *types.Header
}{
	{types.SheetFormResponses, types.DefaultFormHeader},
	{types.SheetMaster, types.DefaultMasterHeader},
	{types.SheetEventLog, types.AuditHeader},
}

func newInitCmd(a *app) *cobra.Command {
	var spreadsheetID string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration and workbook storage",
		Long: "Create the configuration and data directories, write a default config.yaml\n" +
			"when none exists, and create the Form Responses, Shadower Admins and\n" +
			"Event Log sheets.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, a, spreadsheetID)
		},
	}
	cmd.Flags().StringVar(&spreadsheetID, "spreadsheet-id", "", "identity of the local workbook (default: "+defaultSpreadsheetID+")")
	return cmd
}

func runInit(cmd *cobra.Command, a *app, spreadsheetID string) error {
	if err := os.MkdirAll(a.configDir, 0o755); err != nil {
		return sysErr(fmt.Errorf("create config directory: %w", err))
	}
	if spreadsheetID == "" {
		spreadsheetID = a.cfg.SpreadsheetID
	}
	written, err := writeConfigIfMissing(a.configPath(), defaultConfigFile(spreadsheetID, a.flags.dataDir))
	if err != nil {
		return sysErr(fmt.Errorf("write config: %w", err))
	}
	if written {
		// Pick up what was just written.
		if err := a.load(cmd); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	return a.run(func(ws *workspace) error {
		for _, s := range workbookLayout {
			_, created, err := ws.wb.EnsureSheet(s.name, s.header())
			if err != nil {
				return fmt.Errorf("create %s: %w", s.name, err)
			}
			if created {
				okColor.Fprintf(out, "created ")
			} else {
				infoColor.Fprintf(out, "exists  ")
			}
			fmt.Fprintln(out, s.name)
		}
		if written {
			fmt.Fprintf(out, "config: %s\n", a.configPath())
		}
		okColor.Fprintf(out, "Workbook %s initialized\n", ws.wb.ID())
		return nil
	})
}
