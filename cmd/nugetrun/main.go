package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/awnumar/memguard"
	"github.com/spf13/cobra"

	"github.com/systmms/nugetrun/cmd/nugetrun/commands"
	"github.com/systmms/nugetrun/internal/config"
	dserrors "github.com/systmms/nugetrun/internal/errors"
	"github.com/systmms/nugetrun/internal/logging"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	err := run()

	// Wipe any remaining memguard enclaves before exiting.
	memguard.Purge()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)

		// Preserve the child's exit code when the invocation itself ran.
		var cmdErr dserrors.CommandError
		if errors.As(err, &cmdErr) && cmdErr.ExitCode > 0 {
			os.Exit(cmdErr.ExitCode)
		}
		os.Exit(1)
	}
}

func run() error {
	// Global flags
	var (
		configFile     string
		noColor        bool
		debug          bool
		nonInteractive bool
	)

	// Create config placeholder
	cfg := &config.Config{}

	rootCmd := &cobra.Command{
		Use:   "nugetrun",
		Short: "Invoke NuGet with the right credential mechanism for its version",
		Long: `nugetrun reads a NuGet binary's embedded version metadata, derives the
known quirks of that version, decides which credential mechanism to
activate (V1 provider, V2 plugin, or config-file credentials), and
launches the binary with a correctly assembled environment.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Initialize logger with parsed flags
			logger := logging.New(debug, noColor)

			// Update config with parsed values
			cfg.Path = configFile
			cfg.Logger = logger
			cfg.NonInteractive = nonInteractive
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "nugetrun.yaml", "Config file path")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&nonInteractive, "non-interactive", false, "Non-interactive mode")

	rootCmd.AddCommand(commands.NewRunCommand(cfg))
	rootCmd.AddCommand(commands.NewInspectCommand(cfg))
	rootCmd.AddCommand(commands.NewCompletionCommand())

	return rootCmd.Execute()
}
