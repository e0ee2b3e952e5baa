package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wangdehu1994/ncbi-primer-blast-automation/internal/batch"
	"github.com/wangdehu1994/ncbi-primer-blast-automation/internal/config"
	"github.com/wangdehu1994/ncbi-primer-blast-automation/internal/coordinate"
	"github.com/wangdehu1994/ncbi-primer-blast-automation/internal/driver"
	"github.com/wangdehu1994/ncbi-primer-blast-automation/internal/driver/blast"
	"github.com/wangdehu1994/ncbi-primer-blast-automation/internal/event"
	"github.com/wangdehu1994/ncbi-primer-blast-automation/internal/export"
	"github.com/wangdehu1994/ncbi-primer-blast-automation/internal/logging"
)

var runCmd = &cobra.Command{
	Use:   "run <input-file>",
	Short: "Submit a batch of coordinates to Primer-BLAST",
	Long: `Run reads one coordinate per line (chromosome and position separated
by whitespace), schedules a task per valid line, and submits them
concurrently. Terminal records for every input line are written to the
configured output when the batch finishes.`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Int("workers", 0, "concurrent browser sessions (overrides config)")
	runCmd.Flags().Int("max-attempts", 0, "dispatch attempts per task (overrides config)")
	runCmd.Flags().Duration("timeout", 0, "per-submission timeout (overrides config)")
	runCmd.Flags().String("source", "", "assembly of the input coordinates (overrides config)")
	runCmd.Flags().String("target", "", "assembly to convert coordinates to (overrides config)")
	runCmd.Flags().String("mapping", "", "coordinate mapping file for conversion (overrides config)")
	runCmd.Flags().StringP("output", "o", "", "output file (default: stdout)")
	runCmd.Flags().String("format", "", "output format: tsv or jsonl (overrides config)")
	runCmd.Flags().Bool("dry-run", false, "simulate submissions without launching a browser")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("workers") {
		cfg.Batch.Workers, _ = cmd.Flags().GetInt("workers")
	}
	if cmd.Flags().Changed("max-attempts") {
		cfg.Batch.MaxAttempts, _ = cmd.Flags().GetInt("max-attempts")
	}
	if cmd.Flags().Changed("timeout") {
		cfg.Batch.PerTaskTimeout, _ = cmd.Flags().GetDuration("timeout")
	}
	if cmd.Flags().Changed("source") {
		cfg.Coordinates.SourceAssembly, _ = cmd.Flags().GetString("source")
	}
	if cmd.Flags().Changed("target") {
		cfg.Coordinates.TargetAssembly, _ = cmd.Flags().GetString("target")
	}
	if cmd.Flags().Changed("mapping") {
		cfg.Coordinates.MappingFile, _ = cmd.Flags().GetString("mapping")
	}
	if cmd.Flags().Changed("output") {
		cfg.Output.Path, _ = cmd.Flags().GetString("output")
	}
	if cmd.Flags().Changed("format") {
		cfg.Output.Format, _ = cmd.Flags().GetString("format")
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return config.ValidationErrors(errs)
	}
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	log, err := logging.NewLogger(cfg.Logging.Dir, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("failed to open log: %w", err)
	}
	defer log.Close()

	lines, err := readLines(args[0])
	if err != nil {
		return err
	}

	norm, err := buildNormalizer(cfg.Coordinates)
	if err != nil {
		return err
	}
	results := norm.NormalizeLines(lines)

	bus := event.NewBus()
	b := batch.New(results, bus)
	agg := batch.NewAggregator(b)
	defer agg.Close()

	for _, rej := range b.Rejected() {
		fmt.Fprintf(cmd.ErrOrStderr(), "line %d rejected (%s): %s\n", rej.Line, rej.Kind, rej.Reason)
	}
	if b.Len() == 0 && len(b.Rejected()) == 0 {
		return fmt.Errorf("no input lines found in %s", args[0])
	}

	var factory driver.Factory
	if dryRun {
		sd := driver.NewScriptedDriver()
		sd.Delay = 50 * time.Millisecond
		factory = driver.SharedFactory(sd)
	} else {
		factory = blast.Factory(blast.Config{
			URL:             cfg.Browser.URL,
			BrowserBin:      cfg.Browser.Bin,
			Headless:        cfg.Browser.Headless,
			PageLoadTimeout: cfg.Browser.PageLoadTimeout,
		}, log)
	}

	opts := batch.Options{
		Workers:        cfg.Batch.Workers,
		PerTaskTimeout: cfg.Batch.PerTaskTimeout,
		Retry:          cfg.Batch.RetryPolicy(),
		Params:         cfg.Primer,
	}
	orch := batch.NewOrchestrator(b, opts, factory, log)

	// Progress to stderr; the record output stream stays clean.
	progressSub := bus.Subscribe("batch.progress", func(e event.Event) {
		if p, ok := e.(event.BatchProgressEvent); ok {
			fmt.Fprintf(cmd.ErrOrStderr(), "\r%d/%d done (%d ok, %d failed, %d retrying)   ",
				p.Terminal(), p.Total, p.Succeeded, p.Failed, p.Retrying)
		}
	})
	defer bus.Unsubscribe(progressSub)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// First interrupt cancels the batch but lets in-flight submissions
	// finish; a second one aborts hard.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			fmt.Fprintln(cmd.ErrOrStderr(), "\ncancelling, waiting for in-flight submissions (interrupt again to abort)")
			orch.Cancel()
		case <-ctx.Done():
			return
		}
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	runErr := orch.Run(ctx)
	fmt.Fprintln(cmd.ErrOrStderr())

	if err := writeRecords(cfg.Output, agg.Records()); err != nil {
		return err
	}

	snap := agg.Snapshot()
	fmt.Fprintf(cmd.ErrOrStderr(), "batch %s: %d succeeded, %d failed, %d cancelled, %d rejected\n",
		snap.BatchID, snap.Counts.Succeeded, snap.Counts.Failed, snap.Counts.Cancelled, len(b.Rejected()))

	return runErr
}

// readLines loads the raw input lines; blank-line handling is left to the
// normalizer so line numbers in diagnostics match the file.
func readLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n"), nil
}

// buildNormalizer wires the optional assembly converter behind the
// coordinate normalizer.
func buildNormalizer(cc config.CoordinatesConfig) (*coordinate.Normalizer, error) {
	var conv coordinate.Converter
	if cc.TargetAssembly != "" && cc.TargetAssembly != cc.SourceAssembly {
		f, err := os.Open(cc.MappingFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open mapping file: %w", err)
		}
		defer f.Close()

		sc, err := coordinate.LoadStaticConverter(cc.SourceAssembly, cc.TargetAssembly, f)
		if err != nil {
			return nil, fmt.Errorf("failed to load mapping file: %w", err)
		}
		conv = sc
	}
	return coordinate.NewNormalizer(cc.SourceAssembly, cc.TargetAssembly, conv), nil
}

// writeRecords renders the terminal records to the configured destination.
func writeRecords(oc config.OutputConfig, records []batch.TerminalRecord) error {
	writer, err := export.ForFormat(oc.Format)
	if err != nil {
		return err
	}

	out := os.Stdout
	if oc.Path != "" {
		f, err := os.Create(oc.Path)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	return writer.Write(out, records)
}
