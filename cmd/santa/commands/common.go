package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dyluth/santa/internal/config"
	"github.com/dyluth/santa/internal/draw"
	"github.com/dyluth/santa/internal/history"
	"github.com/dyluth/santa/internal/notify"
	"github.com/dyluth/santa/internal/printer"
	"github.com/dyluth/santa/internal/settings"
	"github.com/spf13/cobra"
)

// app bundles what every command needs to talk to the user.
type app struct {
	p      *printer.Printer
	logger *slog.Logger
}

func newApp(cmd *cobra.Command) *app {
	verbose, _ := cmd.Root().PersistentFlags().GetBool("verbose")

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	return &app{
		p:      printer.New(cmd.OutOrStdout(), cmd.ErrOrStderr()),
		logger: slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})),
	}
}

// loadSettings reads process settings. Mail API credentials are only
// required when messages will really be sent.
func (a *app) loadSettings(delivering bool) (*settings.Settings, error) {
	s, err := settings.Load()
	if err != nil {
		return nil, a.p.Error(
			WrapExitError(ExitConfig, "invalid settings", err),
			"invalid settings",
			err.Error(),
			[]string{"Check the SANTA_* environment variables or your .env file"},
		)
	}

	if delivering {
		if err := a.checkDelivery(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// checkDelivery reports missing mail API credentials.
func (a *app) checkDelivery(s *settings.Settings) error {
	if err := s.ValidateForDelivery(); err != nil {
		return a.p.Error(
			WrapExitError(ExitConfig, "mail API not configured", err),
			"mail API not configured",
			err.Error(),
			[]string{
				"Set SANTA_MAILGUN_API_URL and SANTA_MAILGUN_API_KEY (see .env.example)",
				"Rehearse without sending:\n     add --dry",
			},
		)
	}
	return nil
}

// loadGame reads the game config and applies the settings defaults.
func (a *app) loadGame(path string, s *settings.Settings) (*config.Game, error) {
	game, err := config.Load(path)
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			return nil, a.p.Error(
				WrapExitError(ExitConfig, "config not found", err),
				"config not found",
				fmt.Sprintf("No game config found at %s.", path),
				[]string{fmt.Sprintf("Create an example config:\n  santa init %s", path)},
			)
		}
		return nil, a.p.ErrorWithContext(
			WrapExitError(ExitConfig, "invalid game config", err),
			"invalid game config",
			err.Error(),
			[][2]string{{"File", path}},
			nil,
		)
	}

	game.ApplyDefaults(s.DefaultFrom, s.DefaultSubject)

	for _, e := range game.UnknownExclusions() {
		a.p.Warning("exclusion %s → %s names someone who is not playing; it has no effect\n", e.From, e.To)
	}

	return game, nil
}

// runDraw draws a cycle for the game within the settings' attempt limit.
func (a *app) runDraw(game *config.Game, s *settings.Settings, opts ...draw.Option) (*draw.Draw, draw.Cycle, error) {
	opts = append(opts, draw.WithLogger(a.logger))

	d, err := draw.New(game.ParticipantNames(), game.DrawExclusions(), opts...)
	if err != nil {
		return nil, nil, a.p.Error(WrapExitError(ExitConfig, "invalid game config", err), "invalid game config", err.Error(), nil)
	}

	cycle, err := d.Run(s.Limit)
	if err != nil {
		var exhausted *draw.SearchExhaustedError
		if errors.As(err, &exhausted) {
			return nil, nil, a.p.Error(
				WrapExitError(ExitExhausted, "no valid draw found", err),
				"no valid draw found",
				fmt.Sprintf("No assignment of %d participants satisfies the %d exclusions after %d attempts.",
					exhausted.Participants, exhausted.Exclusions, exhausted.Attempts),
				[]string{
					"Remove or relax some exclusions",
					fmt.Sprintf("Raise SANTA_LIMIT (currently %d)", s.Limit),
				},
			)
		}
		return nil, nil, err
	}

	return d, cycle, nil
}

// openHistory connects to the draw history of a game and checks Redis is reachable.
func (a *app) openHistory(ctx context.Context, s *settings.Settings, game *config.Game) (*history.Client, error) {
	if !s.HistoryEnabled() {
		return nil, a.p.Error(
			WrapExitError(ExitConfig, "draw history is disabled", nil),
			"draw history is disabled",
			"Draws are only recorded when SANTA_REDIS_URL is set.",
			[]string{"Set SANTA_REDIS_URL, e.g. redis://localhost:6379/0"},
		)
	}

	client, err := history.NewClientFromURL(s.RedisURL, game.Name)
	if err != nil {
		return nil, WrapExitError(ExitConfig, "invalid SANTA_REDIS_URL", err)
	}

	if err := client.Ping(ctx); err != nil {
		client.Close()
		return nil, a.p.Error(
			WrapExitError(ExitFailure, "draw history is unreachable", err),
			"draw history is unreachable",
			fmt.Sprintf("Could not connect to Redis at %s: %v", s.RedisURL, err),
			[]string{"Check that Redis is running", "Unset SANTA_REDIS_URL to draw without history"},
		)
	}
	return client, nil
}

// newDispatcher builds the notifier for a game: printing when dry, Mailgun otherwise.
func (a *app) newDispatcher(s *settings.Settings, game *config.Game, dry bool) (*notify.Dispatcher, error) {
	var transport notify.Transport
	if !dry {
		transport = notify.NewMailgunTransport(s.MailgunAPIURL, s.MailgunAPIKey.Value(), s.HTTPTimeout)
	}

	d, err := notify.NewDispatcher(transport, notify.Options{
		GameName:   game.Name,
		From:       game.Notification.From,
		Subject:    game.Notification.Subject,
		Template:   notify.SelectTemplate(game.Notification.Template, game.TemplatePath()),
		Dry:        dry,
		Out:        a.p.Out(),
		RedirectTo: s.RedirectTo(),
		Logger:     a.logger,
	})
	if err != nil {
		return nil, a.p.Error(
			WrapExitError(ExitConfig, "invalid notification template", err),
			"invalid notification template",
			err.Error(),
			nil,
		)
	}
	return d, nil
}

// reportDelivery turns a failed Notify or Send into a user-facing error.
func (a *app) reportDelivery(err error) error {
	return a.p.Error(
		WrapExitError(ExitDelivery, "notification failed", err),
		"notification failed",
		err.Error(),
		[]string{"Re-send to one giver once the problem is fixed:\n  santa resend <config> <draw-id> <giver>"},
	)
}
