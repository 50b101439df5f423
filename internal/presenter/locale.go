package presenter

import (
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Locale carries the resolved conventions for dates, numbers, and money.
type Locale struct {
	tag     language.Tag
	printer *message.Printer
}

// DetectLocale resolves the locale from LC_ALL, LC_TIME, then LANG,
// defaulting to en-US.
func DetectLocale() Locale {
	for _, env := range []string{"LC_ALL", "LC_TIME", "LANG"} {
		if raw := os.Getenv(env); raw != "" {
			return NewLocale(raw)
		}
	}
	return NewLocale("")
}

// NewLocale accepts a POSIX locale ("de_DE.UTF-8") or BCP 47 tag ("de-DE").
// Empty or unparseable input yields en-US.
func NewLocale(raw string) Locale {
	raw, _, _ = strings.Cut(raw, ".")
	tag, _ := language.Parse(strings.ReplaceAll(raw, "_", "-"))
	if tag == language.Und {
		tag = language.AmericanEnglish
	}
	return Locale{tag: tag, printer: message.NewPrinter(tag)}
}

// Tag returns the resolved language tag.
func (l Locale) Tag() language.Tag { return l.tag }

// FormatDate renders a date in the locale's day/month/year convention.
func (l Locale) FormatDate(t time.Time) string {
	return t.Format(l.dateLayout())
}

// FormatNumber renders v with the locale's grouping and decimal separators.
func (l Locale) FormatNumber(v float64) string {
	if v == math.Trunc(v) {
		return l.printer.Sprint(number.Decimal(int64(v)))
	}
	return l.printer.Sprint(number.Decimal(v, number.MaxFractionDigits(2)))
}

// FormatCurrency renders an amount given in minor units (cents) under the
// ISO 4217 code. Unknown codes degrade to "CODE amount".
func (l Locale) FormatCurrency(minor int64, code string) string {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return fmt.Sprintf("%s %s", strings.ToUpper(code), l.FormatNumber(float64(minor)/100))
	}
	scale, _ := currency.Cash.Rounding(unit)
	major := float64(minor) / math.Pow10(scale)
	return l.printer.Sprint(currency.Symbol(unit.Amount(major)))
}

// Date order differs by region: month-first (US), day-first (most of the
// world, with the German dot variant), or ISO year-first (East Asia, Canada).
const (
	layoutMDY    = "Jan 2, 2006"
	layoutDMY    = "2 Jan 2006"
	layoutDMYDot = "2. Jan 2006"
	layoutYMD    = "2006-01-02"
)

var regionLayouts = buildLayouts(map[string][]string{
	layoutMDY:    {"US", "PH"},
	layoutDMYDot: {"DE", "AT", "CH"},
	layoutYMD:    {"JP", "CN", "KR", "TW", "HU", "LT", "CA"},
	layoutDMY: {
		"GB", "AU", "NZ", "IE", "ZA", "IN", "FR", "ES", "IT", "PT", "BR",
		"NL", "BE", "MX", "AR", "CL", "CO", "PL", "RU", "TR", "GR", "DK",
		"NO", "SE", "FI",
	},
})

var langLayouts = buildLayouts(map[string][]string{
	layoutMDY:    {"en"},
	layoutDMYDot: {"de"},
	layoutYMD:    {"ja", "zh", "ko"},
	layoutDMY: {
		"fr", "es", "it", "pt", "nl", "da", "nb", "nn", "sv", "fi", "pl",
		"ru", "tr",
	},
})

func buildLayouts(groups map[string][]string) map[string]string {
	out := make(map[string]string)
	for layout, keys := range groups {
		for _, k := range keys {
			out[k] = layout
		}
	}
	return out
}

func (l Locale) dateLayout() string {
	region, _ := l.tag.Region()
	if layout, ok := regionLayouts[region.String()]; ok {
		return layout
	}
	base, _ := l.tag.Base()
	if layout, ok := langLayouts[base.String()]; ok {
		return layout
	}
	return layoutMDY
}
