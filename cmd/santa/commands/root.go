package commands

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/dyluth/santa/internal/draw"
	"github.com/dyluth/santa/internal/history"
	"github.com/dyluth/santa/internal/printer"
	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"
)

var (
	version string
	commit  string
	date    string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = newRootCmd()

type drawOptions struct {
	dry    bool
	seed   int64
	output string
}

func newRootCmd() *cobra.Command {
	opts := &drawOptions{}

	cmd := &cobra.Command{
		Use:   "santa <config>",
		Short: "Santa - Secret Santa draws with exclusions",
		Long: `Santa draws a Secret Santa for the game described in a YAML config and
emails every giver the name of the person they give to.

The draw is a single cycle through all participants, so nobody gives to
themselves and no small groups form. Exclusions in the config forbid
specific giver → receiver pairs.

Settings such as the Mailgun credentials come from SANTA_* environment
variables or a .env file in the working directory.

Examples:
  # Rehearse: print every message instead of sending it
  santa santa.yml --dry

  # Reproduce a rehearsal exactly
  santa santa.yml --dry --seed 42

  # Draw for real and keep a copy of the result
  santa santa.yml --output result.json`,
		Version: version,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDraw(cmd, opts, args[0])
		},
		// Enable strict flag parsing - unknown flags will cause an error
		FParseErrWhitelist: cobra.FParseErrWhitelist{},
		SilenceErrors:      true,
		SilenceUsage:       true,
	}

	cmd.Flags().BoolVar(&opts.dry, "dry", false, "Print notifications instead of sending them")
	cmd.Flags().Int64Var(&opts.seed, "seed", 0, "Seed the draw for a reproducible result")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Also write the draw as JSON to this file (contains the assignments)")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Log search progress and notification details")

	cmd.AddCommand(
		newInitCmd(),
		newValidateCmd(),
		newHistoryCmd(),
		newShowCmd(),
		newResendCmd(),
	)

	return cmd
}

func runDraw(cmd *cobra.Command, opts *drawOptions, configPath string) error {
	ctx := cmd.Context()
	a := newApp(cmd)

	s, err := a.loadSettings(!opts.dry)
	if err != nil {
		return err
	}

	game, err := a.loadGame(configPath, s)
	if err != nil {
		return err
	}

	var store *history.Client
	if s.HistoryEnabled() {
		store, err = a.openHistory(ctx, s, game)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	a.p.Step("Drawing for '%s' (%d participants)...\n", game.Name, len(game.Participants))

	var drawOpts []draw.Option
	if cmd.Flags().Changed("seed") {
		drawOpts = append(drawOpts, draw.WithSeed(opts.seed))
	}

	d, cycle, err := a.runDraw(game, s, drawOpts...)
	if err != nil {
		return err
	}

	record := history.NewRecord(game.Name, d, cycle, opts.dry)
	// The seed reproduces every assignment, so it is only shown for dry runs.
	if opts.dry {
		a.p.Success("Draw %s found after %d attempt(s) (seed %d)\n", record.ID, record.Attempts, record.Seed)
	} else {
		a.p.Success("Draw %s found after %d attempt(s)\n", record.ID, record.Attempts)
		a.logger.Debug("draw seed", "id", record.ID, "seed", record.Seed)
	}

	if opts.output != "" {
		if err := writeRecord(opts.output, record); err != nil {
			return err
		}
		a.p.Success("Wrote draw to %s\n", opts.output)
	}

	if store != nil {
		if err := saveRecord(ctx, a, store, record); err != nil {
			return err
		}
	}

	dispatcher, err := a.newDispatcher(s, game, opts.dry)
	if err != nil {
		return err
	}

	if opts.dry {
		a.p.Step("Dry run: printing notifications instead of sending\n\n")
	} else {
		a.p.Step("Sending notifications...\n")
	}

	report, err := dispatcher.Notify(ctx, cycle, game.Directory())
	if err != nil {
		return a.reportDelivery(err)
	}

	if opts.dry {
		a.p.Success("Printed %d notifications\n", report.Printed)
	} else {
		a.p.Success("Sent %d notifications\n", report.Sent)
	}
	return nil
}

// writeRecord writes the draw as JSON, replacing path atomically.
func writeRecord(path string, record *history.Record) error {
	var buf bytes.Buffer
	if err := history.FormatJSON(&buf, record); err != nil {
		return err
	}
	if err := atomic.WriteFile(path, &buf); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// saveRecord stores the draw so it can be listed and re-sent later.
func saveRecord(ctx context.Context, a *app, client *history.Client, record *history.Record) error {
	if err := client.Save(ctx, record); err != nil {
		return a.p.Error(
			err,
			"failed to record draw",
			err.Error(),
			[]string{"Check that Redis is reachable at SANTA_REDIS_URL", "Unset SANTA_REDIS_URL to draw without history"},
		)
	}
	a.logger.Debug("draw recorded", "id", record.ID, "namespace", client.Namespace())
	return nil
}

// Execute runs the root command with ctx and prints errors that were not
// already reported. Returns the error for ExitCode.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		var reported *printer.Reported
		if !errors.As(err, &reported) {
			_ = printer.New(rootCmd.OutOrStdout(), rootCmd.ErrOrStderr()).Error(nil, "Error: "+err.Error(), "", nil)
		}
	}
	return err
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}
