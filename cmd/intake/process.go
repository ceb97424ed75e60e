package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/inquiry-intake/internal/entity"
	"github.com/joseph-ayodele/inquiry-intake/internal/export"
	"github.com/joseph-ayodele/inquiry-intake/internal/ingest"
)

var (
	processText   string
	processAttach string
	processXLSX   string
	processReport bool
)

var processCmd = &cobra.Command{
	Use:   "process [inquiry-file]",
	Short: "Process one inquiry and print the record as JSON",
	Long: `Reads the inquiry from a .txt, .md or .eml file, from --text, or from stdin
when the argument is "-". An attachment can be given with --attach; for files
a sibling with the same base name is picked up automatically.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runProcess,
}

func init() {
	processCmd.Flags().StringVarP(&processText, "text", "t", "", "inquiry text")
	processCmd.Flags().StringVarP(&processAttach, "attach", "a", "", "attachment path (pdf, image, text, html)")
	processCmd.Flags().StringVar(&processXLSX, "xlsx", "", "also write the record to this XLSX file")
	processCmd.Flags().BoolVar(&processReport, "report", false, "print run metadata along with the record")
	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	source := "text"
	var path string
	if len(args) == 1 {
		path = args[0]
		source = path
	}
	in, err := readInquiry(path, processText, processAttach)
	if err != nil {
		return err
	}

	a, err := buildApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.Processor.Process(cmd.Context(), in)
	if err != nil {
		return err
	}

	if processXLSX != "" {
		row := export.Row{Source: filepath.Base(source), RunID: res.RunID, ProcessedAt: time.Now(), Record: res.Record}
		if err := a.Exporter.WriteXLSX(cmd.Context(), processXLSX, []export.Row{row}); err != nil {
			return err
		}
	}

	var out any = res.Record
	if processReport {
		out = map[string]any{
			"run_id":          res.RunID,
			"status":          res.Status,
			"record":          res.Record,
			"filled_fields":   res.Fill.Filled(),
			"degraded_fields": res.Fill.Degraded(),
			"elapsed_ms":      res.Elapsed.Milliseconds(),
		}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

// readInquiry builds the inquiry from a file path ("-" reads stdin) or literal text.
func readInquiry(path, text, attach string) (entity.Inquiry, error) {
	var in entity.Inquiry
	switch {
	case path != "" && text != "":
		return in, errors.New("give either an inquiry file or --text, not both")
	case path == "-":
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return in, err
		}
		in.Text = string(b)
	case path != "":
		loaded, err := ingest.LoadInquiry(path)
		if err != nil {
			return in, err
		}
		in = loaded
		if in.Document == nil && attach == "" {
			if att := ingest.FindAttachment(path); att != "" {
				in.Document = &entity.Document{Path: att}
			}
		}
	default:
		in.Text = text
	}

	if attach = strings.TrimSpace(attach); attach != "" {
		if _, err := os.Stat(attach); err != nil {
			return in, fmt.Errorf("attachment: %w", err)
		}
		in.Document = &entity.Document{Path: attach}
	}
	return in, nil
}
