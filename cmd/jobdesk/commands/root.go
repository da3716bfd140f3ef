package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/celestiaorg/jobdesk/internal/config"
	"github.com/celestiaorg/jobdesk/internal/constants"
	"github.com/celestiaorg/jobdesk/internal/logger"
)

// flag names
const (
	flagJobServiceURL     = "job-service-url"
	flagAccountServiceURL = "account-service-url"
	flagIssuerURL         = "issuer-url"
	flagClientID          = "client-id"
	flagCallbackAddr      = "callback-addr"
	flagAdminRole         = "admin-role"
	flagLogLevel          = "log-level"
	flagGuest             = "guest"
)

var (
	// cfg is the resolved configuration, set by PersistentPreRunE
	cfg *config.Config
	// logFile is closed once the command finishes
	logFile io.Closer
)

// rootFlags holds the persistent flag values. Flags only win when set explicitly.
type rootFlags struct {
	jobServiceURL     string
	accountServiceURL string
	issuerURL         string
	clientID          string
	callbackAddr      string
	adminRole         string
	logLevel          string
	guest             bool
}

// NewRootCmd builds the command tree. Running it without a subcommand starts the terminal UI.
func NewRootCmd() *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:   "jobdesk",
		Short: "jobdesk - a terminal client for the job board",
		Long: `jobdesk browses job postings, applies to them and manages your preferences.
Administrators can manage accounts and read the notification log.
Run without a subcommand to start the interactive interface.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Annotations:   map[string]string{annotationInteractive: "true"},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return setup(cmd, flags)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if logFile != nil {
				_ = logFile.Close()
				logFile = nil
			}
		},
		RunE: runBrowse,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.jobServiceURL, flagJobServiceURL, "", envUsage("Base URL of the job service", constants.EnvJobServiceURL))
	pf.StringVar(&flags.accountServiceURL, flagAccountServiceURL, "", envUsage("Base URL of the account service", constants.EnvAccountServiceURL))
	pf.StringVar(&flags.issuerURL, flagIssuerURL, "", envUsage("OpenID Connect issuer URL", constants.EnvIssuerURL))
	pf.StringVar(&flags.clientID, flagClientID, "", envUsage("OpenID Connect client id", constants.EnvClientID))
	pf.StringVar(&flags.callbackAddr, flagCallbackAddr, "", envUsage("Listen address for the login callback", constants.EnvCallbackAddr))
	pf.StringVar(&flags.adminRole, flagAdminRole, "", envUsage("Role that grants the admin view", constants.EnvAdminRole))
	pf.StringVar(&flags.logLevel, flagLogLevel, "", envUsage("Log level", constants.EnvLogLevel))
	pf.BoolVarP(&flags.guest, flagGuest, "g", false, "Browse as a guest without signing in")

	rootCmd.AddCommand(newBrowseCmd())
	rootCmd.AddCommand(newJobsCmd())
	rootCmd.AddCommand(newUsersCmd())
	rootCmd.AddCommand(newNotificationsCmd())
	rootCmd.AddCommand(newProfileCmd())

	return rootCmd
}

// Execute runs the command tree
func Execute() error {
	return NewRootCmd().Execute()
}

// setup resolves the configuration with flag > env > default precedence and configures logging
func setup(cmd *cobra.Command, flags *rootFlags) error {
	loaded, err := config.Load()
	if err != nil {
		return err
	}

	overrides := []struct {
		name  string
		value string
		field *string
	}{
		{flagJobServiceURL, flags.jobServiceURL, &loaded.JobServiceURL},
		{flagAccountServiceURL, flags.accountServiceURL, &loaded.AccountServiceURL},
		{flagIssuerURL, flags.issuerURL, &loaded.IssuerURL},
		{flagClientID, flags.clientID, &loaded.ClientID},
		{flagCallbackAddr, flags.callbackAddr, &loaded.CallbackAddr},
		{flagAdminRole, flags.adminRole, &loaded.AdminRole},
		{flagLogLevel, flags.logLevel, &loaded.LogLevel},
	}
	for _, o := range overrides {
		if cmd.Flags().Changed(o.name) {
			*o.field = o.value
		}
	}
	if flags.guest {
		loaded.HandshakeMode = config.ModeAnonymous
	}

	if err := loaded.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	cfg = loaded

	output, err := logOutput(cmd)
	if err != nil {
		return err
	}
	logger.InitializeAndConfigure(logger.Options{
		Level:  cfg.LogLevel,
		Format: logger.Format(cfg.LogFormat),
		Output: output,
	})
	return nil
}

// logOutput picks the log destination. The terminal UI owns the screen, so it logs to a file.
func logOutput(cmd *cobra.Command) (io.Writer, error) {
	if !interactive(cmd) {
		return cmd.ErrOrStderr(), nil
	}

	path, err := cfg.LogFilePath()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	logFile = f
	return f, nil
}

func envUsage(usage, env string) string {
	return fmt.Sprintf("%s (env: %s)", usage, env)
}

func interactive(cmd *cobra.Command) bool {
	return cmd.Annotations[annotationInteractive] == "true"
}
