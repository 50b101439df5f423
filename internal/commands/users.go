package commands

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/curioplatform/curio-cli/internal/output"
)

// NewUsersCmd creates the users command group (admin).
func NewUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage user accounts",
		Annotations: map[string]string{
			RouteAnnotation: "users",
			AdminAnnotation: "true",
		},
	}
	cmd.AddCommand(newUsersListCmd())
	cmd.AddCommand(newUsersShowCmd())
	cmd.AddCommand(newUsersSuspendCmd())
	cmd.AddCommand(newUsersRestoreCmd())
	return cmd
}

func newUsersListCmd() *cobra.Command {
	var role, query string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users",
		RunE: func(cmd *cobra.Command, args []string) error {
			params := url.Values{}
			if role != "" {
				params.Set("role", role)
			}
			if query != "" {
				params.Set("q", query)
			}
			path := "/admin/users"
			if encoded := params.Encode(); encoded != "" {
				path += "?" + encoded
			}
			resp, err := app(cmd).Gateway.Get(cmd.Context(), path)
			if err != nil {
				return err
			}
			return renderMany(cmd, "user", "user", resp)
		},
	}
	cmd.Flags().StringVar(&role, "role", "", "Filter by role (admin, curator, visitor)")
	cmd.Flags().StringVarP(&query, "query", "q", "", "Search by email or nickname")
	return cmd
}

func newUsersShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := app(cmd).Gateway.Get(cmd.Context(), "/admin/users/"+args[0])
			if err != nil {
				return err
			}
			return renderOne(cmd, "user", resp)
		},
	}
}

func newUsersSuspendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "suspend <id>",
		Short: "Suspend a user account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app(cmd)
			if _, err := a.Gateway.Post(cmd.Context(), fmt.Sprintf("/admin/users/%s/suspend", args[0]), nil); err != nil {
				return err
			}
			return a.OK(nil, output.WithSummary(fmt.Sprintf("Suspended user %s", args[0])))
		},
	}
}

func newUsersRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <id>",
		Short: "Restore a suspended user account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app(cmd)
			if _, err := a.Gateway.Post(cmd.Context(), fmt.Sprintf("/admin/users/%s/restore", args[0]), nil); err != nil {
				return err
			}
			return a.OK(nil, output.WithSummary(fmt.Sprintf("Restored user %s", args[0])))
		},
	}
}
