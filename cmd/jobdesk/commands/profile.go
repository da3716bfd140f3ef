package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/celestiaorg/jobdesk/internal/profile"
	"github.com/celestiaorg/jobdesk/pkg/models"
)

// flag names
const (
	flagDesiredRole = "desired-role"
	flagLocations   = "locations"
	flagJobType     = "job-type"
	flagMinSalary   = "min-salary"
)

func newProfileCmd() *cobra.Command {
	profileCmd := &cobra.Command{
		Use:   "profile",
		Short: "Show your account and edit your preferences",
	}
	profileCmd.AddCommand(newShowProfileCmd())
	profileCmd.AddCommand(newPreferencesCmd())
	return profileCmd
}

// loadProfile signs in and loads the account of the signed-in user
func loadProfile(cmd *cobra.Command) (*profile.Controller, error) {
	lt, err := startLifetime()
	if err != nil {
		return nil, err
	}
	if _, err := lt.requireMember(cmd.Context()); err != nil {
		return nil, err
	}

	ctrl := profile.NewController(lt.client)
	if err := ctrl.Load(cmd.Context()); err != nil {
		return nil, fmt.Errorf("error fetching profile: %w", err)
	}
	return ctrl, nil
}

func newShowProfileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show your account, applications and preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctrl, err := loadProfile(cmd)
			if err != nil {
				return err
			}
			account, _ := ctrl.Account()
			return printJSON(cmd, account)
		},
	}
}

func newPreferencesCmd() *cobra.Command {
	var (
		desiredRole string
		locations   string
		jobType     string
		minSalary   float64
	)

	cmd := &cobra.Command{
		Use:   "preferences",
		Short: "Update your preferences",
		Long:  "Update your preferences. Only the flags given change, the rest keep their saved value.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctrl, err := loadProfile(cmd)
			if err != nil {
				return err
			}

			prefs := ctrl.Preferences()
			flags := cmd.Flags()
			if flags.Changed(flagDesiredRole) {
				prefs.DesiredRole = desiredRole
			}
			if flags.Changed(flagLocations) {
				prefs.Locations = models.ParseLocations(locations)
			}
			if flags.Changed(flagJobType) {
				parsed, err := models.ParseJobType(jobType)
				if err != nil {
					return err
				}
				prefs.JobType = parsed
			}
			if flags.Changed(flagMinSalary) {
				prefs.MinSalary = minSalary
			}

			notice, err := ctrl.SavePreferences(cmd.Context(), prefs)
			if err != nil {
				return fmt.Errorf("%s %w", notice.Message, err)
			}
			return printJSON(cmd, message{Message: notice.Message})
		},
	}

	cmd.Flags().StringVar(&desiredRole, flagDesiredRole, "", "role you are looking for")
	cmd.Flags().StringVar(&locations, flagLocations, "", "comma separated locations")
	cmd.Flags().StringVar(&jobType, flagJobType, "", "Full-time, Part-time, Contract or Internship")
	cmd.Flags().Float64Var(&minSalary, flagMinSalary, 0, "minimum salary")
	return cmd
}
