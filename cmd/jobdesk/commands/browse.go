package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/celestiaorg/jobdesk/internal/config"
	"github.com/celestiaorg/jobdesk/internal/logger"
	"github.com/celestiaorg/jobdesk/internal/tui"
)

const expiryInterval = 30 * time.Second

// runUI runs one client lifetime of the terminal UI. Tests replace it.
var runUI = func(cmd *cobra.Command, deps tui.Deps) (tui.Exit, error) {
	return tui.Run(cmd.Context(), deps)
}

func newBrowseCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "browse",
		Short:       "Start the interactive interface",
		Long:        "Start the interactive interface. This is what jobdesk runs without a subcommand.",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationInteractive: "true"},
		RunE:        runBrowse,
	}
}

// runBrowse runs client lifetimes until the user quits. Signing in again starts a
// fresh lifetime that requires a login. Logging out ends the process.
func runBrowse(cmd *cobra.Command, _ []string) error {
	mode := cfg.HandshakeMode
	for {
		lt, err := newLifetime(cfg, mode)
		if err != nil {
			return err
		}

		exit, err := runUI(cmd, tui.Deps{
			Session:        lt.session,
			Client:         lt.client,
			Dispatcher:     lt.dispatcher,
			PendingURL:     lt.pendingURL,
			ExpiryInterval: expiryInterval,
		})
		if err != nil {
			return fmt.Errorf("error running interface: %w", err)
		}
		logger.InfoWithFields("Client lifetime ended", map[string]interface{}{
			"exit": exit.String(),
			"mode": mode,
		})

		switch exit {
		case tui.ExitLogin:
			mode = config.ModeLoginRequired
		case tui.ExitLogout:
			if err := lt.logout(); err != nil {
				logger.Warnf("Could not end the provider session: %v", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			return nil
		default:
			return nil
		}
	}
}
