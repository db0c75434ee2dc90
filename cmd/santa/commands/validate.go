package commands

import (
	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config>",
		Short: "Check a game config and that a draw is possible",
		Long: `Load a game config, report problems, and run one draw to prove the
exclusions leave at least one valid assignment.

Nothing is sent, printed, or recorded; the trial draw is discarded.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp(cmd)

			s, err := a.loadSettings(false)
			if err != nil {
				return err
			}

			game, err := a.loadGame(args[0], s)
			if err != nil {
				return err
			}

			d, _, err := a.runDraw(game, s)
			if err != nil {
				return err
			}

			a.p.Success("%s is valid\n", args[0])
			a.p.Info("  Game:         %s\n", game.Name)
			a.p.Info("  Participants: %d\n", len(game.Participants))
			a.p.Info("  Exclusions:   %d\n", len(game.DrawExclusions()))
			a.p.Info("  Trial draw:   found after %d attempt(s)\n", d.Attempts())
			return nil
		},
	}
}
