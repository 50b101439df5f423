// Package presenter provides schema-aware rendering for Curio resources.
// It sits between commands and the output renderer, using declarative YAML
// schemas to decide which fields a resource shows and how each is formatted.
package presenter

// EntitySchema describes how a Curio resource wants to be presented.
// Schemas are declarative metadata loaded from YAML files.
type EntitySchema struct {
	Entity   string                  `yaml:"entity"`
	TypeKey  string                  `yaml:"type_key"`
	Identity Identity             `yaml:"identity"`
	Headline map[string]string    `yaml:"headline"`
	Fields   map[string]FieldSpec `yaml:"fields"`
	Views    ViewSpecs            `yaml:"views"`
}

// Identity identifies the resource's label and ID fields.
type Identity struct {
	Label string `yaml:"label"`
	ID    string `yaml:"id"`
}

// FieldSpec describes how a single field should be presented.
type FieldSpec struct {
	Title  string            `yaml:"title"`
	Format string            `yaml:"format"`
	Labels map[string]string `yaml:"labels"`

	// CurrencyFrom names the sibling field holding the ISO 4217 code for
	// fields with format "currency". Amounts are integers in minor units.
	CurrencyFrom string `yaml:"currency_from"`
}

// ViewSpecs declares which fields appear per presentation context.
type ViewSpecs struct {
	List   ListView   `yaml:"list"`
	Detail DetailView `yaml:"detail"`
}

// ListView configures the table presentation.
type ListView struct {
	Columns []string `yaml:"columns"`
}

// DetailView configures the single-resource detail presentation.
type DetailView struct {
	Sections []DetailSection `yaml:"sections"`
}

// DetailSection groups fields under an optional heading.
type DetailSection struct {
	Heading string   `yaml:"heading"`
	Fields  []string `yaml:"fields"`
}
