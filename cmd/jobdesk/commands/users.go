package commands

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/celestiaorg/jobdesk/internal/admin"
	"github.com/celestiaorg/jobdesk/pkg/models"
)

func newUsersCmd() *cobra.Command {
	usersCmd := &cobra.Command{
		Use:   "users",
		Short: "Manage accounts (administrators only)",
	}
	usersCmd.AddCommand(newListUsersCmd())
	usersCmd.AddCommand(newDeleteUserCmd())
	return usersCmd
}

// loadAdmin signs in as an administrator and loads accounts and notifications
func loadAdmin(cmd *cobra.Command) (*admin.Controller, error) {
	lt, err := startLifetime()
	if err != nil {
		return nil, err
	}
	if err := lt.requireAdmin(cmd.Context()); err != nil {
		return nil, err
	}

	ctrl := admin.NewController(lt.client)
	if err := ctrl.Load(cmd.Context()); err != nil {
		return nil, err
	}
	return ctrl, nil
}

func newListUsersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctrl, err := loadAdmin(cmd)
			if err != nil {
				return err
			}
			return printJSON(cmd, ctrl.Accounts())
		},
	}
}

func newDeleteUserCmd() *cobra.Command {
	var (
		accountID string
		yes       bool
	)

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete an account",
		Long:  "Delete an account with a given ID. Asks for confirmation unless --yes is given.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctrl, err := loadAdmin(cmd)
			if err != nil {
				return err
			}

			account, ok := ctrl.Account(accountID)
			if !ok {
				return fmt.Errorf("account %s not found", accountID)
			}

			var confirm admin.Confirmer = admin.Confirmed
			if !yes {
				confirm = promptConfirmer(cmd)
			}

			notice, err := ctrl.DeleteAccount(cmd.Context(), account, confirm)
			if err != nil {
				return fmt.Errorf("%s %w", notice.Message, err)
			}
			if notice.Empty() {
				return printJSON(cmd, message{Message: "Deletion cancelled."})
			}
			return printJSON(cmd, message{Message: notice.Message})
		},
	}

	cmd.Flags().StringVarP(&accountID, "id", "i", "", "ID of the account to be deleted")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "delete without asking")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

// promptConfirmer asks on the command's input. Anything but y or yes declines.
func promptConfirmer(cmd *cobra.Command) admin.Confirmer {
	return func(account models.UserAccount) bool {
		fmt.Fprintf(cmd.ErrOrStderr(), "Delete account %s (%s)? [y/N]: ", account.Username, account.Email)
		answer, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && answer == "" {
			return false
		}
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y", "yes":
			return true
		default:
			return false
		}
	}
}
