package presenter

import "strings"

// Presenter turns rows of decoded API data into display-ready strings using
// the schema registry. It does no styling itself; the output renderer owns
// color and layout.
type Presenter struct {
	locale Locale
}

// New creates a Presenter with the ambient locale.
func New() *Presenter {
	return &Presenter{locale: DetectLocale()}
}

// NewWithLocale creates a Presenter with a fixed locale, for tests.
func NewWithLocale(loc Locale) *Presenter {
	return &Presenter{locale: loc}
}

// Table renders rows under the schema's list view. Columns without a field
// spec fall back to plain text formatting; the header is the field title or
// the column key.
func (p *Presenter) Table(schema *EntitySchema, rows []map[string]any) (headers []string, cells [][]string) {
	columns := schema.Views.List.Columns
	if len(columns) == 0 {
		return nil, nil
	}

	headers = make([]string, len(columns))
	for i, col := range columns {
		if spec, ok := schema.Fields[col]; ok && spec.Title != "" {
			headers[i] = spec.Title
		} else {
			headers[i] = strings.ToUpper(strings.ReplaceAll(col, "_", " "))
		}
	}

	cells = make([][]string, 0, len(rows))
	for _, row := range rows {
		line := make([]string, len(columns))
		for i, col := range columns {
			line[i] = FormatField(p.locale, schema.Fields[col], row, col)
		}
		cells = append(cells, line)
	}
	return headers, cells
}

// RenderedSection is one detail-view section ready for display.
type RenderedSection struct {
	Heading string
	Fields  [][2]string // label, formatted value
}

// Detail renders a single row under the schema's detail view. Empty values
// are omitted; a section whose fields are all empty is dropped.
func (p *Presenter) Detail(schema *EntitySchema, row map[string]any) []RenderedSection {
	out := make([]RenderedSection, 0, len(schema.Views.Detail.Sections))
	for _, section := range schema.Views.Detail.Sections {
		rendered := RenderedSection{Heading: section.Heading}
		for _, key := range section.Fields {
			spec := schema.Fields[key]
			val := FormatField(p.locale, spec, row, key)
			if val == "" {
				continue
			}
			label := spec.Title
			if label == "" {
				label = key
			}
			rendered.Fields = append(rendered.Fields, [2]string{label, val})
		}
		if len(rendered.Fields) > 0 {
			out = append(out, rendered)
		}
	}
	return out
}

// Headline renders the schema's headline for a single row, falling back to
// the identity label.
func (p *Presenter) Headline(schema *EntitySchema, row map[string]any) string {
	return RenderHeadline(schema, row)
}
