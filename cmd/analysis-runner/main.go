package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"algorithm-analysis/internal/analysis"
	"algorithm-analysis/internal/config"
	"algorithm-analysis/internal/database"
	"algorithm-analysis/internal/runner"
)

const (
	exitOK      = 0
	exitFailed  = 1
	exitCommand = 2
)

// runFailure ends the process with exitFailed. Any other error is a command
// or configuration error.
type runFailure struct {
	err error
}

func (f *runFailure) Error() string { return f.err.Error() }
func (f *runFailure) Unwrap() error { return f.err }

var errCapturedFailures = errors.New("operations failed during the run")

type options struct {
	configPath string
	db         string
	format     string
	verbose    bool
}

func main() {
	var exitCode int
	defer func() {
		os.Exit(exitCode)
	}()

	exitCode = run(os.Args[1:], os.Stdout, os.Stderr)
}

func run(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCommand(stdout, stderr)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	if err == nil {
		return exitOK
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)

	var failure *runFailure
	if errors.As(err, &failure) {
		return exitFailed
	}
	return exitCommand
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "analysis-runner",
		Short:         "Classify the complexity and test the reentrancy of a key/value store",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.format != "text" && opts.format != "json" {
				return fmt.Errorf("invalid format %q: must be text or json", opts.format)
			}
			if _, ok := database.Drivers()[opts.db]; !ok {
				return fmt.Errorf("unsupported database %q: must be one of %v", opts.db, database.Names())
			}
			setupLogger(stderr, opts.verbose)
			return nil
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "config.yaml", "configuration file")
	cmd.PersistentFlags().StringVar(&opts.db, "db", "memory", "database to analyse")
	cmd.PersistentFlags().StringVar(&opts.format, "format", "text", "output format (text|json)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "stream progress and debug logs to stderr")

	cmd.AddCommand(newComplexityCommand(opts))
	cmd.AddCommand(newReentrancyCommand(opts))
	return cmd
}

func newComplexityCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "complexity",
		Short: "Classify the time complexity of insert, select, update and delete",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts.configPath)
			if err != nil {
				return err
			}

			report, err := runner.RunComplexity(cmd.Context(), cfg, opts.db, opts.verbose,
				analysis.WithDiagnostics(cmd.ErrOrStderr()))
			if err != nil {
				return &runFailure{err: err}
			}

			if opts.format == "json" {
				err = writeJSON(cmd.OutOrStdout(), report)
			} else {
				writeComplexity(cmd.OutOrStdout(), opts.db, report)
			}
			if err != nil {
				return err
			}
			if report.Failed() {
				return &runFailure{err: errCapturedFailures}
			}
			return nil
		},
	}
}

func newReentrancyCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "reentrancy",
		Short: "Run all four operations concurrently and check their ordering",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts.configPath)
			if err != nil {
				return err
			}

			report, err := runner.RunReentrancy(cmd.Context(), cfg, opts.db, opts.verbose,
				analysis.WithDiagnostics(cmd.ErrOrStderr()))
			if err != nil {
				return &runFailure{err: err}
			}

			if opts.format == "json" {
				err = writeJSON(cmd.OutOrStdout(), report)
			} else {
				writeReentrancy(cmd.OutOrStdout(), opts.db, report)
			}
			if err != nil {
				return err
			}
			if report.Failed() {
				return &runFailure{err: errCapturedFailures}
			}
			return nil
		},
	}
}

// loadConfig falls back to the defaults when the default config file is
// absent. An explicitly named file must exist.
func loadConfig(cmd *cobra.Command, path string) (*config.Config, error) {
	cfg, err := config.LoadConfig(path)
	if errors.Is(err, os.ErrNotExist) && !cmd.Flags().Changed("config") {
		slog.Debug("config file not found, using defaults", "path", path)
		return config.Default(), nil
	}
	return cfg, err
}

func setupLogger(w io.Writer, verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(
		tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: "15:04:05",
		}),
	))
}

func writeJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

func writeComplexity(w io.Writer, db string, r *analysis.ComplexityReport) {
	fmt.Fprintf(w, "%s on %s (run %s)\n\n", r.TestName, db, r.RunID)
	ops := []struct {
		name   string
		report analysis.OperationReport
	}{
		{"insert", r.Insert},
		{"select", r.Select},
		{"update", r.Update},
		{"delete", r.Delete},
	}
	for _, op := range ops {
		if op.report.Analysis == "" {
			fmt.Fprintf(w, "%s: skipped\n\n", op.name)
			continue
		}
		fmt.Fprintln(w, op.report.Analysis)
		writeErrors(w, "pass 1", op.report.Pass1Errors, op.report.Pass1ErrorMessages)
		writeErrors(w, "pass 2", op.report.Pass2Errors, op.report.Pass2ErrorMessages)
	}
}

func writeReentrancy(w io.Writer, db string, r *analysis.ReentrancyReport) {
	fmt.Fprintf(w, "%s on %s (run %s)\n\n", r.TestName, db, r.RunID)
	fmt.Fprintf(w, "activity: %s\n", r.ActivityLog)
	fmt.Fprintf(w, "%dms inserting, %dms selecting & testing, %dms updating, %dms testing & deleting\n\n",
		r.MsInserting, r.MsSelectSettle, r.MsUpdating, r.MsDeleteSettle)

	phases := make([]string, 0, len(r.Latencies))
	for phase := range r.Latencies {
		phases = append(phases, phase)
	}
	sort.Strings(phases)
	fmt.Fprintf(w, "%-8s%10s%10s%10s%10s%10s\n", "phase", "count", "p50(us)", "p95(us)", "p99(us)", "max(us)")
	for _, phase := range phases {
		l := r.Latencies[phase]
		fmt.Fprintf(w, "%-8s%10d%10d%10d%10d%10d\n", phase, l.Count, l.P50, l.P95, l.P99, l.Max)
	}
	writeErrors(w, "reentrancy", r.Errors, r.ErrorMessages)
}

func writeErrors(w io.Writer, scope string, ids, messages []string) {
	for i := range ids {
		fmt.Fprintf(w, "%s error [%s] %s\n", scope, ids[i], messages[i])
	}
}
