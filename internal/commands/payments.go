package commands

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/curioplatform/curio-cli/internal/output"
)

// NewPaymentsCmd creates the payments command group (admin).
func NewPaymentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payments",
		Short: "Inspect and refund payments",
		Annotations: map[string]string{
			RouteAnnotation: "payments",
			AdminAnnotation: "true",
		},
	}
	cmd.AddCommand(newPaymentsListCmd())
	cmd.AddCommand(newPaymentsShowCmd())
	cmd.AddCommand(newPaymentsRefundCmd())
	return cmd
}

func newPaymentsListCmd() *cobra.Command {
	var status, user string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List payments",
		RunE: func(cmd *cobra.Command, args []string) error {
			params := url.Values{}
			if status != "" {
				params.Set("status", status)
			}
			if user != "" {
				params.Set("user_id", user)
			}
			path := "/admin/payments"
			if encoded := params.Encode(); encoded != "" {
				path += "?" + encoded
			}
			resp, err := app(cmd).Gateway.Get(cmd.Context(), path)
			if err != nil {
				return err
			}
			return renderMany(cmd, "payment", "payment", resp)
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "Filter by status (pending, settled, refunded, failed)")
	cmd.Flags().StringVar(&user, "user", "", "Filter by user ID")
	return cmd
}

func newPaymentsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one payment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := app(cmd).Gateway.Get(cmd.Context(), "/admin/payments/"+args[0])
			if err != nil {
				return err
			}
			return renderOne(cmd, "payment", resp)
		},
	}
}

func newPaymentsRefundCmd() *cobra.Command {
	var reason string
	cmd := &cobra.Command{
		Use:   "refund <id>",
		Short: "Refund a settled payment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app(cmd)
			payload := map[string]string{}
			if reason != "" {
				payload["reason"] = reason
			}
			resp, err := a.Gateway.Post(cmd.Context(), fmt.Sprintf("/admin/payments/%s/refund", args[0]), payload)
			if err != nil {
				return err
			}
			row, err := decodeRow(resp)
			if err != nil {
				return err
			}
			return a.OK(row, output.WithSummary(fmt.Sprintf("Refunded payment %s", args[0])))
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "", "Refund reason")
	return cmd
}
