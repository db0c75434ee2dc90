package commands

import (
	"fmt"

	"github.com/dyluth/santa/internal/scaffold"
	"github.com/spf13/cobra"
)

func newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [FILE]",
		Short: "Create an example game config",
		Long: `Create an example game config and a settings template.

Creates:
  • santa.yml (or FILE) - Game configuration with example participants
  • .env.example        - The SANTA_* settings, next to the config

Use --force to overwrite existing files.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp(cmd)

			path := scaffold.DefaultConfigFile
			if len(args) == 1 {
				path = args[0]
			}

			if !force {
				if err := scaffold.CheckExisting(path); err != nil {
					return a.p.Error(err, "already initialized", err.Error(), nil)
				}
			}

			paths, err := scaffold.Initialize(path, force, a.p.Out())
			if err != nil {
				return fmt.Errorf("initialization failed: %w", err)
			}

			scaffold.PrintSuccess(a.p.Out(), paths)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing files")
	return cmd
}
