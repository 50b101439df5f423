package commands

import (
	"github.com/spf13/cobra"

	"github.com/curioplatform/curio-cli/internal/output"
	"github.com/curioplatform/curio-cli/internal/session"
)

// configOutput is the config command payload.
type configOutput struct {
	BaseURL      string            `json:"base_url"`
	ProfileDir   string            `json:"profile_dir"`
	PublicRoutes []string          `json:"public_routes"`
	Format       string            `json:"format"`
	Sources      map[string]string `json:"sources"`
}

// NewConfigCmd creates the config command. It renders on the home route so it
// works before any session exists.
func NewConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "config",
		Short:       "Show effective configuration and where each value came from",
		Annotations: map[string]string{RouteAnnotation: session.RouteHome},
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app(cmd)
			cfg := a.Config
			return a.OK(configOutput{
				BaseURL:      cfg.BaseURL,
				ProfileDir:   cfg.ProfileDir,
				PublicRoutes: cfg.PublicRoutes,
				Format:       cfg.Format,
				Sources:      cfg.Sources,
			}, output.WithSummary("Configuration"))
		},
	}
}
