package commands

import (
	"log/slog"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	planFiles      *string
	planCheckpoint *string
)

func init() {
	planFiles = planCmd.Flags().String("files", "files", "The directory holding the reserved-stock spreadsheet export.")
	planCheckpoint = planCmd.Flags().String("checkpoint", "processados.txt", "The checkpoint log tracking finished SKUs.")
	rootCmd.AddCommand(planCmd)
}

var planCmd = &cobra.Command{
	Use:   "plan [--files <dir>] [--checkpoint <path>]",
	Short: "Shows the SKUs a run would process, without touching the ERP.",
	Run: func(cmd *cobra.Command, args []string) {
		items, _ := mustLoadQueue(*planFiles, *planCheckpoint)
		if len(items) == 0 {
			slog.Info("every SKU in the spreadsheet is already processed")
			return
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"#", "SKU", "Reserved Units"})
		for i, item := range items {
			t.AppendRow(table.Row{i + 1, item.Sku, item.ReservedUnits})
		}
		t.Render()
	},
}
