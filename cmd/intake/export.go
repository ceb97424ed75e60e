package main

import (
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/inquiry-intake/internal/export"
)

var exportCmd = &cobra.Command{
	Use:   "export <out.xlsx> <record.json>...",
	Short: "Collect record JSON files into one XLSX workbook",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rows := make([]export.Row, 0, len(args)-1)
		for _, p := range args[1:] {
			rec, err := readRecord(p)
			if err != nil {
				return err
			}
			name := strings.TrimSuffix(filepath.Base(p), filepath.Ext(p))
			rows = append(rows, export.Row{Source: name, Record: rec})
		}
		if err := export.NewService(logger).WriteXLSX(cmd.Context(), args[0], rows); err != nil {
			return err
		}
		cmd.Printf("wrote %d rows to %s\n", len(rows), args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
}
