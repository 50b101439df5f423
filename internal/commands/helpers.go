// Package commands implements the curio subcommands. Every command declares
// the route it renders via annotations; the root command's pre-run gates
// protected routes through the session bootstrapper before RunE executes.
package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/curioplatform/curio-cli/internal/api"
	"github.com/curioplatform/curio-cli/internal/appctx"
	"github.com/curioplatform/curio-cli/internal/output"
	"github.com/curioplatform/curio-cli/internal/presenter"
)

// Annotation keys read by the root pre-run.
const (
	RouteAnnotation = "route"
	AdminAnnotation = "admin"
)

// RouteOf resolves the route a command renders, walking up to parents so
// subcommands inherit their group's route.
func RouteOf(cmd *cobra.Command) string {
	for c := cmd; c != nil; c = c.Parent() {
		if route, ok := c.Annotations[RouteAnnotation]; ok {
			return route
		}
	}
	return ""
}

// IsAdminCommand reports whether the command or one of its parents is marked
// admin-only.
func IsAdminCommand(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[AdminAnnotation] == "true" {
			return true
		}
	}
	return false
}

// app pulls the container out of the command context.
func app(cmd *cobra.Command) *appctx.App {
	return appctx.FromContext(cmd.Context())
}

// decodeRows decodes a gateway response into generic rows for the presenter.
func decodeRows(resp *api.Response) ([]map[string]any, error) {
	var rows []map[string]any
	if err := resp.UnmarshalData(&rows); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return rows, nil
}

// decodeRow decodes a gateway response into one generic row.
func decodeRow(resp *api.Response) (map[string]any, error) {
	var row map[string]any
	if err := resp.UnmarshalData(&row); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return row, nil
}

// renderMany decodes a list response and emits it with a schema-aware table
// for the styled renderer.
func renderMany(cmd *cobra.Command, entity, singular string, resp *api.Response) error {
	a := app(cmd)
	rows, err := decodeRows(resp)
	if err != nil {
		return err
	}

	opts := []output.ResponseOption{output.WithSummary(listSummary(len(rows), singular))}
	if schema := presenter.LookupByName(entity); schema != nil {
		headers, cells := a.Presenter.Table(schema, rows)
		opts = append(opts, output.WithTable(headers, cells))
	}
	return a.OK(rows, opts...)
}

// renderOne decodes a single-resource response and emits it with a headline
// summary and schema-aware detail sections.
func renderOne(cmd *cobra.Command, entity string, resp *api.Response) error {
	a := app(cmd)
	row, err := decodeRow(resp)
	if err != nil {
		return err
	}

	var opts []output.ResponseOption
	if schema := presenter.LookupByName(entity); schema != nil {
		if headline := a.Presenter.Headline(schema, row); headline != "" {
			opts = append(opts, output.WithSummary(headline))
		}
		sections := a.Presenter.Detail(schema, row)
		detail := make([]output.DetailSection, 0, len(sections))
		for _, s := range sections {
			detail = append(detail, output.DetailSection{Heading: s.Heading, Fields: s.Fields})
		}
		opts = append(opts, output.WithDetail(detail))
	}
	return a.OK(row, opts...)
}

// listSummary builds the "3 banners" style envelope summary.
func listSummary(n int, singular string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", singular)
	}
	return fmt.Sprintf("%d %ss", n, singular)
}

// requireArgJSON parses an inline JSON argument into a generic payload.
func requireArgJSON(raw, what string) (map[string]any, error) {
	var payload map[string]any
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, output.ErrUsageHint(fmt.Sprintf("Invalid %s JSON", what), err.Error())
	}
	return payload, nil
}
