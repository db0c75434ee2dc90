package commands

import (
	"fmt"
	"strings"

	"github.com/dyluth/santa/internal/draw"
	"github.com/spf13/cobra"
)

func newResendCmd() *cobra.Command {
	var dry bool

	cmd := &cobra.Command{
		Use:   "resend <config> <draw-id> <giver>",
		Short: "Send one giver's notification again",
		Long: `Send the notification of a recorded draw to one giver again, for
example after a delivery failure or a lost email. Nobody is drawn again.

The message is rendered with the game's current notification settings and
sent to the giver's current email address.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp(cmd)
			ctx := cmd.Context()
			giver := args[2]

			s, game, client, err := a.openGameHistory(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer client.Close()

			if !dry {
				if err := a.checkDelivery(s); err != nil {
					return err
				}
			}

			record, err := a.lookupDraw(ctx, client, args[1])
			if err != nil {
				return err
			}

			receiver, ok := record.Assignments.Receiver(giver)
			if !ok {
				return a.p.Error(nil, "unknown giver",
					fmt.Sprintf("'%s' is not a giver in draw %s.", giver, record.ID),
					[]string{"Givers in this draw: " + strings.Join(record.Assignments.Givers(), ", ")})
			}

			dispatcher, err := a.newDispatcher(s, game, dry)
			if err != nil {
				return err
			}

			edge := draw.Pair{From: giver, To: receiver}
			a.logger.Debug("resending", "draw", record.ID, "giver", giver)
			if err := dispatcher.Send(ctx, edge, game.Directory()); err != nil {
				return a.reportDelivery(err)
			}

			if dry {
				a.p.Success("Printed the notification for %s\n", giver)
			} else {
				a.p.Success("Sent the notification for %s\n", giver)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dry, "dry", false, "Print the notification instead of sending it")
	return cmd
}
