package commands

import (
	"github.com/spf13/cobra"

	"github.com/celestiaorg/jobdesk/pkg/models"
)

func newNotificationsCmd() *cobra.Command {
	notificationsCmd := &cobra.Command{
		Use:   "notifications",
		Short: "Read the notification log (administrators only)",
	}
	notificationsCmd.AddCommand(newListNotificationsCmd())
	return notificationsCmd
}

func newListNotificationsCmd() *cobra.Command {
	var (
		search  string
		pageNum int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notifications",
		Long: `List notifications. The search text matches the recipient, the subject or
the body, case-insensitively.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctrl, err := loadAdmin(cmd)
			if err != nil {
				return err
			}

			ctrl.SearchNotifications(search)
			engine := ctrl.Notifications()
			if err := selectPage(engine, pageNum); err != nil {
				return err
			}
			return printJSON(cmd, pageOf(engine, func(n models.NotificationLog) models.NotificationLog { return n }))
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "match recipient, subject or body")
	cmd.Flags().IntVarP(&pageNum, "page", "p", 1, "page to show")
	return cmd
}
