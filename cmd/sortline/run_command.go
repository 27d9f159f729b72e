package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"sortline/internal/config"
	"sortline/internal/display"
	"sortline/internal/figure"
	"sortline/internal/linerun"
	"sortline/internal/logging"
	"sortline/internal/workflow"
)

// lineFlags are shared by the commands that run the line.
type lineFlags struct {
	speed       float64
	instant     bool
	display     string
	onFailure   string
	showJournal bool
	jsonOutput  bool
}

func (f *lineFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.speed, "speed", 0, "Override workflow.speed (0 runs on a virtual clock)")
	cmd.Flags().BoolVar(&f.instant, "instant", false, "Run on a virtual clock regardless of speed")
	cmd.Flags().StringVar(&f.display, "display", "", "Override display.mode (terminal, log, none)")
	cmd.Flags().StringVar(&f.onFailure, "on-failure", "", "Override workflow.on_failure (halt, skip)")
	cmd.Flags().BoolVar(&f.showJournal, "journal", false, "Print every outcome after the run")
	cmd.Flags().BoolVar(&f.jsonOutput, "json", false, "Output the report as JSON")
}

// apply returns a copy of cfg with the flag overrides applied.
func (f *lineFlags) apply(cmd *cobra.Command, cfg *config.Config) (*config.Config, error) {
	effective := *cfg
	if cmd.Flags().Changed("speed") {
		effective.Workflow.Speed = f.speed
	}
	if mode := strings.TrimSpace(f.display); mode != "" {
		effective.Display.Mode = strings.ToLower(mode)
	}
	if policy := strings.TrimSpace(f.onFailure); policy != "" {
		effective.Workflow.OnFailure = strings.ToLower(policy)
	}
	if err := effective.Validate(); err != nil {
		return nil, err
	}
	return &effective, nil
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	var flags lineFlags
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "run <kind> [kind...]",
		Short: "Drop the given figures onto the line and sort them",
		Long: "Drop figures onto the line one after another and run until every figure is sorted\n" +
			"or the line halts. Kinds are circle, square and triangle; other names are accepted\n" +
			"and fail when the claw looks for their bin.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if interval < 0 {
				return fmt.Errorf("interval must be >= 0")
			}
			kinds := make([]figure.Kind, 0, len(args))
			for _, arg := range args {
				kind := figure.ParseKind(arg)
				if kind == "" {
					return fmt.Errorf("empty figure kind")
				}
				kinds = append(kinds, kind)
			}
			return runLine(cmd, ctx, &flags, linerun.Script{Kinds: kinds, Interval: interval}, nil)
		},
	}

	flags.register(cmd)
	cmd.Flags().DurationVar(&interval, "interval", time.Second, "Line time between scripted drops")
	return cmd
}

// runLine builds a line from the active configuration, runs it and prints
// the report. A halted line is reported as an error after the report.
func runLine(cmd *cobra.Command, ctx *commandContext, flags *lineFlags, script linerun.Script, events io.Reader) error {
	base, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	cfg, err := flags.apply(cmd, base)
	if err != nil {
		return err
	}
	logger, err := ctx.logger(cfg)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}

	out := cmd.OutOrStdout()
	var sink display.Sink
	var terminal *display.Terminal
	switch cfg.Display.Mode {
	case config.DisplayTerminal:
		target := out
		if flags.jsonOutput {
			target = cmd.ErrOrStderr()
		}
		terminal = display.NewTerminal(target, display.TerminalOptions{
			Color:      cfg.Display.Color,
			Width:      cfg.Display.Width,
			TrackWidth: cfg.Layout.Track.Width,
		})
		sink = terminal
	case config.DisplayLog:
		sink = display.NewLogSink(logger)
	}

	runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	line, err := linerun.Build(runCtx, cfg, linerun.BuildOptions{
		Sink:    sink,
		Logger:  logger,
		Instant: flags.instant,
		Journal: true,
	})
	if err != nil {
		return err
	}
	defer line.Close()

	report, runErr := line.Run(runCtx, script, events)
	if terminal != nil {
		if err := terminal.Close(); err != nil {
			logging.NewComponentLogger(logger, "cli").Warn("terminal close failed", logging.Error(err))
		}
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}

	if flags.jsonOutput {
		if err := writeJSON(cmd, newRunJSON(report)); err != nil {
			return err
		}
	} else {
		fmt.Fprint(out, renderReport(report, flags.showJournal, shouldColorize(out)))
	}

	if runErr != nil {
		return runErr
	}
	if report.Status.State == workflow.StateHalted {
		return fmt.Errorf("line halted: %s", report.Status.LastError)
	}
	return nil
}
