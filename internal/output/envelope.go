package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Response is the success envelope for JSON output.
type Response struct {
	OK      bool           `json:"ok"`
	Data    any            `json:"data,omitempty"`
	Summary string         `json:"summary,omitempty"`
	Meta    map[string]any `json:"meta,omitempty"`

	// Table and Detail carry pre-formatted presentation for the styled
	// renderer; machine formats ignore them and emit Data as-is.
	Table  *Table          `json:"-"`
	Detail []DetailSection `json:"-"`
}

// Table is a display-ready table.
type Table struct {
	Headers []string
	Rows    [][]string
}

// DetailSection is one group of label/value pairs in a detail view.
type DetailSection struct {
	Heading string
	Fields  [][2]string
}

// ErrorResponse is the error envelope for JSON output.
type ErrorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
	Code  string `json:"code"`
	Hint  string `json:"hint,omitempty"`
}

// Format specifies the output format.
type Format int

const (
	FormatAuto Format = iota // Auto-detect: TTY → Styled, non-TTY → JSON
	FormatJSON
	FormatYAML
	FormatStyled // ANSI styled output (forced, even when piped)
	FormatQuiet  // Data only, no envelope
)

// Options controls output behavior.
type Options struct {
	Format Format
	Writer io.Writer

	// JQ is an optional gojq expression applied to the data before output.
	JQ string
}

// Writer handles all output formatting.
type Writer struct {
	opts Options
}

// New creates a new output writer.
func New(opts Options) *Writer {
	if opts.Writer == nil {
		opts.Writer = os.Stdout
	}
	return &Writer{opts: opts}
}

// Format reports the configured output format.
func (w *Writer) Format() Format {
	return w.opts.Format
}

// ResponseOption mutates a success envelope before it is written.
type ResponseOption func(*Response)

// WithSummary sets the one-line summary on the envelope.
func WithSummary(s string) ResponseOption {
	return func(r *Response) { r.Summary = s }
}

// WithTable attaches a display-ready table used by the styled renderer.
func WithTable(headers []string, rows [][]string) ResponseOption {
	return func(r *Response) {
		if len(headers) > 0 {
			r.Table = &Table{Headers: headers, Rows: rows}
		}
	}
}

// WithDetail attaches display-ready detail sections for the styled renderer.
func WithDetail(sections []DetailSection) ResponseOption {
	return func(r *Response) { r.Detail = sections }
}

// WithMeta attaches a metadata key to the envelope.
func WithMeta(key string, v any) ResponseOption {
	return func(r *Response) {
		if r.Meta == nil {
			r.Meta = make(map[string]any)
		}
		r.Meta[key] = v
	}
}

// OK outputs a success response.
func (w *Writer) OK(data any, opts ...ResponseOption) error {
	if w.opts.JQ != "" {
		filtered, err := applyJQ(w.opts.JQ, normalizeData(data))
		if err != nil {
			return err
		}
		data = filtered
	}
	resp := &Response{OK: true, Data: data}
	for _, opt := range opts {
		opt(resp)
	}
	return w.write(resp)
}

// Err outputs an error response.
func (w *Writer) Err(err error) error {
	e := AsError(err)
	resp := &ErrorResponse{
		OK:    false,
		Error: e.Message,
		Code:  e.Code,
		Hint:  e.Hint,
	}
	return w.write(resp)
}

func (w *Writer) write(v any) error {
	format := w.opts.Format

	if format == FormatAuto {
		if isTTY(w.opts.Writer) {
			format = FormatStyled
		} else {
			format = FormatJSON
		}
	}

	switch format {
	case FormatQuiet:
		if resp, ok := v.(*Response); ok {
			return w.writeJSON(resp.Data)
		}
		return w.writeJSON(v)
	case FormatYAML:
		return w.writeYAML(v)
	case FormatStyled:
		return w.writeStyled(v)
	default:
		return w.writeJSON(v)
	}
}

// isTTY checks if the writer is a terminal.
func isTTY(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		fi, err := f.Stat()
		if err != nil {
			return false
		}
		return (fi.Mode() & os.ModeCharDevice) != 0
	}
	return false
}

func (w *Writer) writeJSON(v any) error {
	enc := json.NewEncoder(w.opts.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (w *Writer) writeYAML(v any) error {
	// Round-trip through JSON so struct tags and RawMessage apply.
	normalized := normalizeData(v)
	enc := yaml.NewEncoder(w.opts.Writer)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(normalized)
}

func (w *Writer) writeStyled(v any) error {
	r := NewRenderer(w.opts.Writer, true)
	switch resp := v.(type) {
	case *Response:
		return r.RenderResponse(w.opts.Writer, resp)
	case *ErrorResponse:
		return r.RenderError(w.opts.Writer, resp)
	default:
		return w.writeJSON(v)
	}
}

// normalizeData converts json.RawMessage and typed structs to plain Go types.
func normalizeData(data any) any {
	if raw, ok := data.(json.RawMessage); ok {
		var unmarshaled any
		if err := json.Unmarshal(raw, &unmarshaled); err == nil {
			return normalizeUnmarshaled(unmarshaled)
		}
		return data
	}

	switch data.(type) {
	case []map[string]any, map[string]any, []any, nil:
		return data
	default:
		b, err := json.Marshal(data)
		if err != nil {
			return data
		}
		var unmarshaled any
		if err := json.Unmarshal(b, &unmarshaled); err != nil {
			return data
		}
		return normalizeUnmarshaled(unmarshaled)
	}
}

// normalizeUnmarshaled converts []any to []map[string]any if all elements are maps.
func normalizeUnmarshaled(v any) any {
	switch d := v.(type) {
	case []any:
		if len(d) == 0 {
			return []map[string]any{}
		}
		maps := make([]map[string]any, 0, len(d))
		for _, item := range d {
			m, ok := item.(map[string]any)
			if !ok {
				return v
			}
			maps = append(maps, m)
		}
		return maps
	default:
		return v
	}
}

// Printf writes informational text straight to the writer, bypassing envelopes.
func (w *Writer) Printf(format string, args ...any) {
	fmt.Fprintf(w.opts.Writer, format, args...)
}
