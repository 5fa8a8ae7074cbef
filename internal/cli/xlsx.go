package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/shadowsync/internal/xlsx"
)

func newExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file.xlsx>",
		Short: "Export every sheet to an Excel file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(func(ws *workspace) error {
				if err := xlsx.Export(ws.wb, args[0]); err != nil {
					return err
				}
				okColor.Fprintf(cmd.OutOrStdout(), "exported ")
				fmt.Fprintln(cmd.OutOrStdout(), args[0])
				return nil
			})
		},
	}
}

func newImportCmd(a *app) *cobra.Command {
	var sheet string
	cmd := &cobra.Command{
		Use:   "import <file.xlsx>",
		Short: "Submit form responses from an Excel file",
		Long: "Import reads form responses from an Excel sheet, skipping its header row,\n" +
			"and submits each one as if it came from the form.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(func(ws *workspace) error {
				report, err := xlsx.Import(ws.h, args[0], sheet)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if a.flags.jsonMode {
					return printJSON(out, report)
				}
				okColor.Fprintf(out, "imported ")
				fmt.Fprintf(out, "%d responses\n", report.Rows)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&sheet, "sheet", "", "sheet to read (default: Form Responses, else the first sheet)")
	return cmd
}
