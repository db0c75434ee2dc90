package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dyluth/santa/internal/config"
	"github.com/dyluth/santa/internal/history"
	"github.com/dyluth/santa/internal/settings"
	"github.com/dyluth/santa/internal/timespec"
	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	var format, since, until string

	cmd := &cobra.Command{
		Use:   "history <config>",
		Short: "List recorded draws for a game",
		Long: `List the draws recorded for a game, newest first.

Draws are recorded when SANTA_REDIS_URL is set. The table never shows who
gives to whom; use 'santa show --reveal' for that.

Output Formats:
  table - Human-readable table with ID, date, size, and attempts
  jsonl - Line-delimited JSON, one draw per line (includes assignments)

Time Filters:
  --since - Show draws created after this time
  --until - Show draws created before this time
  Both accept a duration ("36h", "30d", "2w") or a date ("2025-12-01").`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp(cmd)

			if format != "table" && format != "jsonl" {
				return a.p.Error(nil, "invalid output format",
					fmt.Sprintf("Unknown format: %s", format),
					[]string{"Valid formats: table, jsonl"})
			}

			sinceMs, untilMs, err := timespec.ParseRange(since, until, time.Now())
			if err != nil {
				return a.p.Error(err, "invalid time filter", err.Error(), nil)
			}

			_, game, client, err := a.openGameHistory(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer client.Close()

			records, err := client.ListRange(cmd.Context(), history.Range{SinceMs: sinceMs, UntilMs: untilMs})
			if err != nil {
				return fmt.Errorf("failed to list draws: %w", err)
			}

			if format == "jsonl" {
				return history.FormatJSONL(a.p.Out(), records)
			}
			history.FormatTable(a.p.Out(), records, game.Name)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format: table or jsonl")
	cmd.Flags().StringVar(&since, "since", "", "Show draws after time (duration or date)")
	cmd.Flags().StringVar(&until, "until", "", "Show draws before time (duration or date)")
	return cmd
}

func newShowCmd() *cobra.Command {
	var reveal bool

	cmd := &cobra.Command{
		Use:   "show <config> <draw-id>",
		Short: "Show one recorded draw",
		Long: `Show one recorded draw. The draw ID may be shortened to a unique prefix
of at least 6 characters.

Assignments stay hidden unless --reveal is given.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp(cmd)

			_, game, client, err := a.openGameHistory(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer client.Close()

			record, err := a.lookupDraw(cmd.Context(), client, args[1])
			if err != nil {
				return err
			}

			if reveal {
				return history.FormatJSON(a.p.Out(), record)
			}

			history.FormatTable(a.p.Out(), []*history.Record{record}, game.Name)
			a.p.Info("\nFull ID: %s\nAssignments are hidden; add --reveal to show them.\n", record.ID)
			return nil
		},
	}

	cmd.Flags().BoolVar(&reveal, "reveal", false, "Include who gives to whom")
	return cmd
}

// openGameHistory loads settings and the game, then connects to its history.
func (a *app) openGameHistory(ctx context.Context, configPath string) (*settings.Settings, *config.Game, *history.Client, error) {
	s, err := a.loadSettings(false)
	if err != nil {
		return nil, nil, nil, err
	}

	game, err := a.loadGame(configPath, s)
	if err != nil {
		return nil, nil, nil, err
	}

	client, err := a.openHistory(ctx, s, game)
	if err != nil {
		return nil, nil, nil, err
	}
	return s, game, client, nil
}

// lookupDraw resolves a full or short draw ID and fetches the draw.
func (a *app) lookupDraw(ctx context.Context, client *history.Client, id string) (*history.Record, error) {
	fullID, err := client.Resolve(ctx, id)
	if err != nil {
		var ambiguous *history.AmbiguousError
		switch {
		case errors.As(err, &ambiguous):
			return nil, a.p.Error(err, "ambiguous draw ID", ambiguous.Details(), nil)
		case history.IsNotFound(err):
			return nil, a.p.Error(err, "draw not found", err.Error(),
				[]string{"List recorded draws:\n  santa history <config>"})
		}
		return nil, err
	}

	return client.Get(ctx, fullID)
}
