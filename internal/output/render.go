package output

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/x/term"
)

// Renderer handles styled terminal output.
type Renderer struct {
	width  int
	styled bool

	Summary lipgloss.Style
	Muted   lipgloss.Style
	Data    lipgloss.Style
	Error   lipgloss.Style
	Hint    lipgloss.Style

	Header    lipgloss.Style
	Cell      lipgloss.Style
	CellMuted lipgloss.Style
}

// NewRenderer creates a renderer. Styling is enabled when writing to a TTY,
// or when forceStyled is true. NO_COLOR disables styling either way.
func NewRenderer(w io.Writer, forceStyled bool) *Renderer {
	width, tty := terminalInfo(w)
	styled := (tty || forceStyled) && os.Getenv("NO_COLOR") == ""

	if styled {
		lipgloss.SetColorProfile(2) // TrueColor
	} else {
		lipgloss.SetColorProfile(0) // Ascii
	}

	r := &Renderer{width: width, styled: styled}

	if styled {
		r.Summary = lipgloss.NewStyle().Foreground(lipgloss.Color("#7dc4e4")).Bold(true)
		r.Muted = lipgloss.NewStyle().Foreground(lipgloss.Color("#6e738d"))
		r.Data = lipgloss.NewStyle().Foreground(lipgloss.Color("#cad3f5"))
		r.Error = lipgloss.NewStyle().Foreground(lipgloss.Color("#ed8796")).Bold(true)
		r.Hint = lipgloss.NewStyle().Foreground(lipgloss.Color("#6e738d")).Italic(true)
		r.Header = lipgloss.NewStyle().Foreground(lipgloss.Color("#cad3f5")).Bold(true)
		r.Cell = lipgloss.NewStyle().Foreground(lipgloss.Color("#cad3f5"))
		r.CellMuted = lipgloss.NewStyle().Foreground(lipgloss.Color("#6e738d"))
	} else {
		plain := lipgloss.NewStyle()
		r.Summary, r.Muted, r.Data, r.Error, r.Hint = plain, plain, plain, plain, plain
		r.Header, r.Cell, r.CellMuted = plain, plain, plain
	}

	return r
}

// terminalInfo returns the terminal width and whether the writer is a TTY.
func terminalInfo(w io.Writer) (width int, isTTY bool) {
	width = 80

	if f, ok := w.(*os.File); ok {
		if tw, _, err := term.GetSize(f.Fd()); err == nil && tw >= 40 {
			width = tw
		}
		fi, err := f.Stat()
		if err == nil && (fi.Mode()&os.ModeCharDevice) != 0 {
			isTTY = true
		}
	}

	return width, isTTY
}

// RenderResponse renders a success response to the writer.
func (r *Renderer) RenderResponse(w io.Writer, resp *Response) error {
	var b strings.Builder

	if resp.Summary != "" {
		b.WriteString(r.Summary.Render(resp.Summary))
		b.WriteString("\n\n")
	}

	switch {
	case resp.Table != nil:
		r.renderPreparedTable(&b, resp.Table)
	case len(resp.Detail) > 0:
		r.renderDetail(&b, resp.Detail)
	default:
		r.renderData(&b, normalizeData(resp.Data))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// renderPreparedTable renders a table whose cells were already formatted
// (schema-aware presentation).
func (r *Renderer) renderPreparedTable(b *strings.Builder, tbl *Table) {
	if len(tbl.Rows) == 0 {
		b.WriteString(r.Muted.Render("(no results)"))
		b.WriteString("\n")
		return
	}

	t := table.New().
		Border(lipgloss.HiddenBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return r.Header
			}
			return r.Cell
		})
	t.Headers(tbl.Headers...)
	for _, row := range tbl.Rows {
		t.Row(row...)
	}
	b.WriteString(t.String())
	b.WriteString("\n")
}

// renderDetail renders label/value sections.
func (r *Renderer) renderDetail(b *strings.Builder, sections []DetailSection) {
	for i, section := range sections {
		if i > 0 {
			b.WriteString("\n")
		}
		if section.Heading != "" {
			b.WriteString(r.Header.Render(section.Heading))
			b.WriteString("\n")
		}
		width := 0
		for _, f := range section.Fields {
			if len(f[0]) > width {
				width = len(f[0])
			}
		}
		for _, f := range section.Fields {
			b.WriteString(r.Muted.Render(fmt.Sprintf("%-*s", width+2, f[0])))
			b.WriteString(r.Data.Render(f[1]))
			b.WriteString("\n")
		}
	}
}

// RenderError renders an error response to the writer.
func (r *Renderer) RenderError(w io.Writer, resp *ErrorResponse) error {
	var b strings.Builder

	b.WriteString(r.Error.Render("Error: " + resp.Error))
	b.WriteString("\n")

	if resp.Hint != "" {
		b.WriteString(r.Hint.Render("Hint: " + resp.Hint))
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func (r *Renderer) renderData(b *strings.Builder, data any) {
	switch d := data.(type) {
	case []map[string]any:
		if len(d) == 0 {
			b.WriteString(r.Muted.Render("(no results)"))
			b.WriteString("\n")
			return
		}
		r.renderTable(b, d)

	case map[string]any:
		r.renderObject(b, d)

	case []any:
		if len(d) == 0 {
			b.WriteString(r.Muted.Render("(no results)"))
			b.WriteString("\n")
			return
		}
		if maps := toMapSlice(d); maps != nil {
			r.renderTable(b, maps)
		} else {
			for _, item := range d {
				b.WriteString(r.Data.Render(fmt.Sprintf("%v", item)))
				b.WriteString("\n")
			}
		}

	case string:
		b.WriteString(r.Data.Render(d))
		b.WriteString("\n")

	case nil:
		b.WriteString(r.Muted.Render("(no data)"))
		b.WriteString("\n")

	default:
		b.WriteString(r.Data.Render(fmt.Sprintf("%v", data)))
		b.WriteString("\n")
	}
}

func toMapSlice(slice []any) []map[string]any {
	if len(slice) == 0 {
		return nil
	}
	result := make([]map[string]any, 0, len(slice))
	for _, item := range slice {
		m, ok := item.(map[string]any)
		if !ok {
			return nil
		}
		result = append(result, m)
	}
	return result
}

// Column priority for table rendering (lower = higher priority).
var columnPriority = map[string]int{
	"id":         1,
	"title":      2,
	"name":       2,
	"email":      3,
	"status":     4,
	"role":       4,
	"amount":     5,
	"currency":   6,
	"body":       6,
	"room":       7,
	"created_at": 8,
	"updated_at": 9,
}

// Columns rendered in muted style.
var mutedColumns = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
}

// Columns to skip (nested objects, internal fields).
var skipColumns = map[string]bool{
	"author":    true,
	"curator":   true,
	"image_url": true,
	"link_url":  true,
}

type column struct {
	key      string
	header   string
	priority int
	muted    bool
}

func (r *Renderer) renderTable(b *strings.Builder, data []map[string]any) {
	columns := detectColumns(data)
	if len(columns) == 0 {
		return
	}

	t := table.New().
		Border(lipgloss.HiddenBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return r.Header
			}
			if col < len(columns) && columns[col].muted {
				return r.CellMuted
			}
			return r.Cell
		})

	headers := make([]string, len(columns))
	for i, col := range columns {
		headers[i] = col.header
	}
	t.Headers(headers...)

	for _, item := range data {
		row := make([]string, len(columns))
		for i, col := range columns {
			row[i] = formatCell(item[col.key])
		}
		t.Row(row...)
	}

	b.WriteString(t.String())
	b.WriteString("\n")
}

func detectColumns(data []map[string]any) []column {
	if len(data) == 0 {
		return nil
	}

	var cols []column
	for key, val := range data[0] {
		if skipColumns[key] {
			continue
		}
		switch val.(type) {
		case map[string]any, []map[string]any, []any:
			continue
		}

		priority, ok := columnPriority[key]
		if !ok {
			priority = 50
		}
		cols = append(cols, column{
			key:      key,
			header:   strings.ToUpper(strings.ReplaceAll(key, "_", " ")),
			priority: priority,
			muted:    mutedColumns[key],
		})
	}

	sort.Slice(cols, func(i, j int) bool {
		if cols[i].priority != cols[j].priority {
			return cols[i].priority < cols[j].priority
		}
		return cols[i].key < cols[j].key
	})

	// Cap column count so narrow terminals stay readable.
	max := 6
	if len(cols) > max {
		cols = cols[:max]
	}
	return cols
}

func (r *Renderer) renderObject(b *strings.Builder, data map[string]any) {
	keys := make([]string, 0, len(data))
	for key := range data {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		pi, ok := columnPriority[keys[i]]
		if !ok {
			pi = 50
		}
		pj, ok := columnPriority[keys[j]]
		if !ok {
			pj = 50
		}
		if pi != pj {
			return pi < pj
		}
		return keys[i] < keys[j]
	})

	for _, key := range keys {
		val := data[key]
		switch val.(type) {
		case map[string]any, []map[string]any, []any:
			continue
		}
		label := strings.ReplaceAll(key, "_", " ")
		b.WriteString(r.Muted.Render(label + ": "))
		b.WriteString(r.Data.Render(formatCell(val)))
		b.WriteString("\n")
	}
}

func formatCell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case bool:
		if val {
			return "yes"
		}
		return "no"
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%g", val)
	case string:
		if ts, err := time.Parse(time.RFC3339, val); err == nil {
			return ts.Format("2006-01-02 15:04")
		}
		if len(val) > 60 {
			return val[:57] + "..."
		}
		return val
	default:
		return fmt.Sprintf("%v", v)
	}
}
