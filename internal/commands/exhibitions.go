package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/curioplatform/curio-cli/internal/schedule"
	"github.com/curioplatform/curio-cli/internal/output"
)

// NewExhibitionsCmd creates the exhibitions command group (admin).
func NewExhibitionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exhibitions",
		Short: "Manage exhibitions",
		Annotations: map[string]string{
			RouteAnnotation: "exhibitions",
			AdminAnnotation: "true",
		},
	}
	cmd.AddCommand(newExhibitionsListCmd())
	cmd.AddCommand(newExhibitionsShowCmd())
	cmd.AddCommand(newExhibitionsCreateCmd())
	cmd.AddCommand(newExhibitionsCloseCmd())
	return cmd
}

func newExhibitionsListCmd() *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List exhibitions",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/admin/exhibitions"
			if status != "" {
				path += "?status=" + status
			}
			resp, err := app(cmd).Gateway.Get(cmd.Context(), path)
			if err != nil {
				return err
			}
			return renderMany(cmd, "exhibition", "exhibition", resp)
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "Filter by status (draft, open, closed)")
	return cmd
}

func newExhibitionsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one exhibition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := app(cmd).Gateway.Get(cmd.Context(), "/admin/exhibitions/"+args[0])
			if err != nil {
				return err
			}
			return renderOne(cmd, "exhibition", resp)
		},
	}
}

func newExhibitionsCreateCmd() *cobra.Command {
	var title, curator, description, opensAt, closesAt string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an exhibition",
		RunE: func(cmd *cobra.Command, args []string) error {
			if title == "" {
				return output.ErrUsageHint("Title is required", "Pass --title")
			}
			if curator == "" {
				return output.ErrUsageHint("Curator is required", "Pass --curator")
			}
			payload := map[string]any{"title": title, "curator_id": curator}
			if description != "" {
				payload["description"] = description
			}
			if opensAt != "" {
				payload["opens_at"] = schedule.Date(opensAt)
			}
			if closesAt != "" {
				payload["closes_at"] = schedule.Date(closesAt)
			}

			resp, err := app(cmd).Gateway.Post(cmd.Context(), "/admin/exhibitions", payload)
			if err != nil {
				return err
			}
			return renderOne(cmd, "exhibition", resp)
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Exhibition title")
	cmd.Flags().StringVar(&curator, "curator", "", "Curator ID")
	cmd.Flags().StringVar(&description, "description", "", "Description")
	cmd.Flags().StringVar(&opensAt, "opens-at", "", "Opening date (YYYY-MM-DD or natural: next friday)")
	cmd.Flags().StringVar(&closesAt, "closes-at", "", "Closing date (YYYY-MM-DD or natural: eom, in 6 weeks)")
	return cmd
}

func newExhibitionsCloseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "close <id>",
		Short: "Close an open exhibition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app(cmd)
			resp, err := a.Gateway.Post(cmd.Context(), fmt.Sprintf("/admin/exhibitions/%s/close", args[0]), nil)
			if err != nil {
				return err
			}
			row, err := decodeRow(resp)
			if err != nil {
				return err
			}
			return a.OK(row, output.WithSummary(fmt.Sprintf("Closed exhibition %s", args[0])))
		},
	}
}
