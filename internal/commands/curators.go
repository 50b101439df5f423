package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/curioplatform/curio-cli/internal/output"
)

// NewCuratorsCmd creates the curators command group (admin).
func NewCuratorsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "curators",
		Short: "Manage curators",
		Annotations: map[string]string{
			RouteAnnotation: "curators",
			AdminAnnotation: "true",
		},
	}
	cmd.AddCommand(newCuratorsListCmd())
	cmd.AddCommand(newCuratorsShowCmd())
	cmd.AddCommand(newCuratorsVerifyCmd())
	return cmd
}

func newCuratorsListCmd() *cobra.Command {
	var specialty string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List curators",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/admin/curators"
			if specialty != "" {
				path += "?specialty=" + specialty
			}
			resp, err := app(cmd).Gateway.Get(cmd.Context(), path)
			if err != nil {
				return err
			}
			return renderMany(cmd, "curator", "curator", resp)
		},
	}
	cmd.Flags().StringVar(&specialty, "specialty", "", "Filter by specialty")
	return cmd
}

func newCuratorsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one curator",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := app(cmd).Gateway.Get(cmd.Context(), "/admin/curators/"+args[0])
			if err != nil {
				return err
			}
			return renderOne(cmd, "curator", resp)
		},
	}
}

func newCuratorsVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <id>",
		Short: "Mark a curator as verified",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app(cmd)
			resp, err := a.Gateway.Post(cmd.Context(), fmt.Sprintf("/admin/curators/%s/verify", args[0]), nil)
			if err != nil {
				return err
			}
			row, err := decodeRow(resp)
			if err != nil {
				return err
			}
			return a.OK(row, output.WithSummary(fmt.Sprintf("Verified curator %s", args[0])))
		},
	}
}
