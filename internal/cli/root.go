package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aliskhannn/image-resizer/internal/config"
)

// configPath is optional; built-in defaults apply when it is absent.
const configPath = "./config/config.yml"

// Version is the application version.
const Version = "0.1.0"

// NewRootCmd builds the command. It accepts no arguments.
func NewRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "image-resizer",
		Short:         "Resize fons.jpg to 1920x1080 with a Lanczos filter",
		Version:       Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			return Run(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}
}

// Execute runs the root command and exits with status 1 on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := NewRootCmd()
	if err := cmd.ExecuteContext(ctx); err != nil {
		// Resize diagnostics are already printed; anything else is not.
		if !errors.Is(err, ErrFailed) {
			cmd.PrintErrln(err)
		}
		stop()
		os.Exit(1)
	}
}
