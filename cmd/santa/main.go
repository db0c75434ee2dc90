package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dyluth/santa/cmd/santa/commands"
)

// Version information - set during build
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// Set version information on root command
	commands.SetVersionInfo(version, commit, date)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	// Errors are printed by the commands package with color formatting
	err := commands.Execute(ctx)
	stop()
	os.Exit(commands.ExitCode(err))
}
