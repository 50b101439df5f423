package presenter

import (
	"fmt"
	"strings"
	"sync"
	"text/template"
)

// Headline templates are tiny and reused across rows; parse each once.
var (
	tmplMu    sync.Mutex
	tmplCache = map[string]*template.Template{}
)

// RenderTemplate executes a headline template against a row. Parse or
// execution failures render as empty so a bad schema degrades a headline,
// not a command.
func RenderTemplate(text string, row map[string]any) string {
	tmplMu.Lock()
	t, ok := tmplCache[text]
	if !ok {
		var err error
		t, err = template.New("headline").Parse(text)
		if err != nil {
			t = nil
		}
		tmplCache[text] = t
	}
	tmplMu.Unlock()

	if t == nil {
		return ""
	}
	var b strings.Builder
	if err := t.Execute(&b, row); err != nil {
		return ""
	}
	return strings.ReplaceAll(b.String(), "<no value>", "")
}

// RenderHeadline picks the row's headline: a conditional variant whose
// boolean field is set wins over "default"; with no headline block the
// identity label field is used verbatim.
func RenderHeadline(schema *EntitySchema, row map[string]any) string {
	if len(schema.Headline) == 0 {
		if v, ok := row[schema.Identity.Label]; ok {
			return fmt.Sprintf("%v", v)
		}
		return ""
	}

	for field, text := range schema.Headline {
		if field == "default" || !toBool(row[field]) {
			continue
		}
		if out := RenderTemplate(text, row); out != "" {
			return out
		}
	}
	return RenderTemplate(schema.Headline["default"], row)
}
