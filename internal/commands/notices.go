package commands

import (
	"github.com/spf13/cobra"

	"github.com/curioplatform/curio-cli/internal/session"
)

// NewNoticesCmd creates the notices command group. Notices are public: no
// session gate, and refresh exhaustion never redirects away from them.
func NewNoticesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "notices",
		Short:       "Read gallery notices",
		Annotations: map[string]string{RouteAnnotation: session.RouteNotices},
	}
	cmd.AddCommand(newNoticesListCmd())
	cmd.AddCommand(newNoticesShowCmd())
	return cmd
}

func newNoticesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List published notices",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := app(cmd).Gateway.Get(cmd.Context(), "/notices")
			if err != nil {
				return err
			}
			return renderMany(cmd, "notice", "notice", resp)
		},
	}
}

func newNoticesShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one notice",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := app(cmd).Gateway.Get(cmd.Context(), "/notices/"+args[0])
			if err != nil {
				return err
			}
			return renderOne(cmd, "notice", resp)
		},
	}
}
