package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/curioplatform/curio-cli/internal/schedule"
	"github.com/curioplatform/curio-cli/internal/output"
)

// NewBannersCmd creates the banners command group (admin).
func NewBannersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "banners",
		Short: "Manage promotional banners",
		Annotations: map[string]string{
			RouteAnnotation: "banners",
			AdminAnnotation: "true",
		},
	}
	cmd.AddCommand(newBannersListCmd())
	cmd.AddCommand(newBannersShowCmd())
	cmd.AddCommand(newBannersCreateCmd())
	cmd.AddCommand(newBannersUpdateCmd())
	cmd.AddCommand(newBannersDeleteCmd())
	return cmd
}

func newBannersListCmd() *cobra.Command {
	var activeOnly bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List banners",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/admin/banners"
			if activeOnly {
				path += "?active=true"
			}
			resp, err := app(cmd).Gateway.Get(cmd.Context(), path)
			if err != nil {
				return err
			}
			return renderMany(cmd, "banner", "banner", resp)
		},
	}
	cmd.Flags().BoolVar(&activeOnly, "active", false, "Only banners currently live")
	return cmd
}

func newBannersShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one banner",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := app(cmd).Gateway.Get(cmd.Context(), "/admin/banners/"+args[0])
			if err != nil {
				return err
			}
			return renderOne(cmd, "banner", resp)
		},
	}
}

func newBannersCreateCmd() *cobra.Command {
	var title, imageURL, linkURL, startsAt, endsAt string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a banner",
		RunE: func(cmd *cobra.Command, args []string) error {
			if title == "" {
				return output.ErrUsageHint("Title is required", "Pass --title")
			}
			payload := map[string]any{"title": title}
			if imageURL != "" {
				payload["image_url"] = imageURL
			}
			if linkURL != "" {
				payload["link_url"] = linkURL
			}
			if startsAt != "" {
				payload["starts_at"] = schedule.Date(startsAt)
			}
			if endsAt != "" {
				payload["ends_at"] = schedule.Date(endsAt)
			}

			resp, err := app(cmd).Gateway.Post(cmd.Context(), "/admin/banners", payload)
			if err != nil {
				return err
			}
			return renderOne(cmd, "banner", resp)
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Banner title")
	cmd.Flags().StringVar(&imageURL, "image-url", "", "Image URL")
	cmd.Flags().StringVar(&linkURL, "link-url", "", "Click-through URL")
	cmd.Flags().StringVar(&startsAt, "starts-at", "", "Start date (YYYY-MM-DD or natural: today, next monday)")
	cmd.Flags().StringVar(&endsAt, "ends-at", "", "End date (YYYY-MM-DD or natural: eom, in 2 weeks)")
	return cmd
}

func newBannersUpdateCmd() *cobra.Command {
	var fields string
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a banner",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := requireArgJSON(fields, "banner")
			if err != nil {
				return err
			}
			resp, err := app(cmd).Gateway.Put(cmd.Context(), "/admin/banners/"+args[0], payload)
			if err != nil {
				return err
			}
			return renderOne(cmd, "banner", resp)
		},
	}
	cmd.Flags().StringVar(&fields, "fields", "{}", "Fields to update as JSON")
	return cmd
}

func newBannersDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a banner",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app(cmd)
			if _, err := a.Gateway.Delete(cmd.Context(), "/admin/banners/"+args[0]); err != nil {
				return err
			}
			return a.OK(nil, output.WithSummary(fmt.Sprintf("Deleted banner %s", args[0])))
		},
	}
}
