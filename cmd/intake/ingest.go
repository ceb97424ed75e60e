package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/inquiry-intake/internal/async"
	"github.com/joseph-ayodele/inquiry-intake/internal/export"
	"github.com/joseph-ayodele/inquiry-intake/internal/ingest"
	ingestsvc "github.com/joseph-ayodele/inquiry-intake/internal/services/ingest"
)

var (
	inboxDir   string
	inboxOut   string
	inboxXLSX  string
	showHidden bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [dir]",
	Short: "Process every inquiry file in a directory once",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runIngest,
}

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Watch an inbox directory and process inquiries as they arrive",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runWatch,
}

func init() {
	for _, c := range []*cobra.Command{ingestCmd, watchCmd} {
		c.Flags().StringVarP(&inboxOut, "out", "o", "", "directory for <name>.json records (default: next to each inquiry)")
		c.Flags().BoolVar(&showHidden, "include-hidden", false, "also process hidden files and directories")
		rootCmd.AddCommand(c)
	}
	ingestCmd.Flags().StringVar(&inboxXLSX, "xlsx", "", "write all processed records to this XLSX file")
}

func inboxArgs(args []string) error {
	inboxDir = cfg.Inbox.Dir
	if len(args) == 1 {
		inboxDir = args[0]
	}
	if inboxDir == "" {
		return errors.New("inbox directory is required (argument or INBOX_DIR)")
	}
	if inboxOut != "" {
		cfg.Inbox.OutDir = inboxOut
	}
	return nil
}

func runIngest(cmd *cobra.Command, args []string) error {
	if err := inboxArgs(args); err != nil {
		return err
	}
	a, err := buildApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	results, stats, err := a.Ingestor.IngestDirectory(cmd.Context(), inboxDir, !showHidden)
	if err != nil {
		return err
	}
	for _, r := range results {
		if r.Err != "" {
			cmd.Printf("FAIL %s: %s\n", r.Source, r.Err)
			continue
		}
		cmd.Printf("OK   %s -> %s\n", r.Source, r.OutputPath)
	}
	cmd.Printf("matched=%d succeeded=%d failed=%d\n", stats.Matched, stats.Succeeded, stats.Failed)

	if inboxXLSX != "" {
		rows, err := loadRows(results)
		if err != nil {
			return err
		}
		return a.Exporter.WriteXLSX(cmd.Context(), inboxXLSX, rows)
	}
	return nil
}

func loadRows(results []ingest.Result) ([]export.Row, error) {
	var rows []export.Row
	for _, r := range results {
		if r.Err != "" || r.OutputPath == "" {
			continue
		}
		rec, err := readRecord(r.OutputPath)
		if err != nil {
			return nil, err
		}
		rows = append(rows, export.Row{Source: r.Source, RunID: r.RunID, ProcessedAt: time.Now(), Record: rec})
	}
	return rows, nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	if err := inboxArgs(args); err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	svc := ingestsvc.NewService(a.Ingestor, nil, logger)
	queue := async.NewProcessorQueue(svc.HandleJob, logger,
		async.WithWorkers(cfg.Inbox.Workers),
		async.WithProcessTimeout(cfg.Pipeline.RunTimeout+time.Minute),
	)
	svc.SetQueue(queue)

	err = svc.Watch(ctx, ingest.WatchConfig{
		Roots:       []string{inboxDir},
		InitialScan: true,
		SkipHidden:  !showHidden,
		Debounce:    cfg.Inbox.Debounce,
	})

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	queue.Shutdown(shutdownCtx)
	return err
}
