package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/curioplatform/curio-cli/internal/output"
	"github.com/curioplatform/curio-cli/internal/session"
)

// NewRegisterCmd creates the register command. It is the one protected entry
// a pending third-party login continuation may reach without a session.
func NewRegisterCmd() *cobra.Command {
	var email, nickname string

	cmd := &cobra.Command{
		Use:         "register",
		Short:       "Complete account registration",
		Annotations: map[string]string{RouteAnnotation: session.RouteRegister},
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app(cmd)

			if nickname == "" {
				return output.ErrUsageHint("Nickname is required", "Pass --nickname")
			}

			payload := map[string]string{"nickname": nickname}
			if email != "" {
				payload["email"] = email
			}

			resp, err := a.Gateway.Post(cmd.Context(), "/auth/register", payload)
			if err != nil {
				return err
			}
			row, err := decodeRow(resp)
			if err != nil {
				return err
			}
			return a.OK(row, output.WithSummary(fmt.Sprintf("Registered %s", nickname)))
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email (omit when continuing a provider login)")
	cmd.Flags().StringVar(&nickname, "nickname", "", "Display name")
	return cmd
}
