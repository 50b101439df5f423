package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/curioplatform/curio-cli/internal/output"
)

// NewWhoamiCmd creates the whoami command.
func NewWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "whoami",
		Short:       "Show the authenticated identity",
		Annotations: map[string]string{RouteAnnotation: "whoami"},
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app(cmd)
			user, err := a.Gateway.Me(cmd.Context())
			if err != nil {
				return err
			}
			return a.OK(user, output.WithSummary(fmt.Sprintf("%s (%s)", user.Email, user.Role)))
		},
	}
}
