package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/curioplatform/curio-cli/internal/api"
	"github.com/curioplatform/curio-cli/internal/output"
)

// NewAPICmd creates the raw API escape hatch. Requests still ride the
// gateway, so the refresh-and-replay behavior applies here too.
func NewAPICmd() *cobra.Command {
	var method, body string

	cmd := &cobra.Command{
		Use:         "api <path>",
		Short:       "Make a raw API request",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{RouteAnnotation: "api"},
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app(cmd)
			path := args[0]
			if !strings.HasPrefix(path, "/") {
				path = "/" + path
			}

			var payload any
			if body != "" {
				parsed, err := requireArgJSON(body, "body")
				if err != nil {
					return err
				}
				payload = parsed
			}

			var resp *api.Response
			var err error
			switch strings.ToUpper(method) {
			case "GET":
				resp, err = a.Gateway.Get(cmd.Context(), path)
			case "POST":
				resp, err = a.Gateway.Post(cmd.Context(), path, payload)
			case "PUT":
				resp, err = a.Gateway.Put(cmd.Context(), path, payload)
			case "DELETE":
				resp, err = a.Gateway.Delete(cmd.Context(), path)
			default:
				return output.ErrUsage("Unsupported method: " + method)
			}
			if err != nil {
				return err
			}

			var data any
			if len(resp.Data) > 0 {
				if err := resp.UnmarshalData(&data); err != nil {
					// Not JSON; emit the raw body
					data = string(resp.Data)
				}
			}
			return a.OK(data)
		},
	}
	cmd.Flags().StringVarP(&method, "method", "X", "GET", "HTTP method")
	cmd.Flags().StringVarP(&body, "body", "d", "", "JSON request body")
	return cmd
}
