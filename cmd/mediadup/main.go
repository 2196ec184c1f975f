package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sverlaine/mediadup/internal/cli"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	rootCmd := &cobra.Command{
		Use:   "mediadup",
		Short: "Duplicate media file detector",
		Long: `mediadup finds photos and videos in one or more source trees that
already exist in a destination tree, comparing extracted metadata
fingerprints instead of file contents. It plans what to do with the
duplicates as a reviewable shell script; the filesystem is never
touched directly.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add global flags
	cli.AddGlobalFlags(rootCmd)

	// Add commands
	rootCmd.AddCommand(cli.NewMoveCommand())
	rootCmd.AddCommand(cli.NewCopyCommand())
	rootCmd.AddCommand(cli.NewDeleteCommand())
	rootCmd.AddCommand(cli.NewPrintCommand())
	rootCmd.AddCommand(cli.NewConfigCommand())
	rootCmd.AddCommand(cli.NewVersionCommand())

	return rootCmd.Execute()
}
