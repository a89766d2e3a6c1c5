package format

import "fmt"

// QuoteStyle selects how string literal quotes are normalized.
type QuoteStyle uint8

const (
	// QuoteDouble rewrites string quotes to double quotes unless that
	// would add escapes.
	QuoteDouble QuoteStyle = iota
	// QuoteSingle prefers single quotes under the same escape rule.
	QuoteSingle
	// QuotePreserve leaves quotes exactly as written.
	QuotePreserve
)

func (q QuoteStyle) String() string {
	switch q {
	case QuoteSingle:
		return "single"
	case QuotePreserve:
		return "preserve"
	default:
		return "double"
	}
}

// ParseQuoteStyle maps a config string to a QuoteStyle.
func ParseQuoteStyle(s string) (QuoteStyle, error) {
	switch s {
	case "", "double":
		return QuoteDouble, nil
	case "single":
		return QuoteSingle, nil
	case "preserve":
		return QuotePreserve, nil
	default:
		return QuoteDouble, fmt.Errorf("unknown quote style %q (want double, single, or preserve)", s)
	}
}

const (
	DefaultLineWidth   = 88
	DefaultIndentWidth = 4

	minLineWidth   = 16
	maxLineWidth   = 400
	minIndentWidth = 1
	maxIndentWidth = 16
)

// Config controls one formatting invocation. The zero value is not
// usable directly; call Default or withDefaults.
type Config struct {
	// LineWidth is the layout budget: a line of exactly LineWidth columns
	// fits, one more column does not.
	LineWidth int
	// IndentWidth is the number of spaces per indentation level.
	IndentWidth int
	// Quotes selects string quote normalization.
	Quotes QuoteStyle
	// TargetVersion pins the language level, e.g. "py312". Empty means
	// the newest supported level. It is recorded for cache keys and
	// reserved for version-gated rules.
	TargetVersion string
}

// Default returns the standard configuration.
func Default() Config {
	return Config{LineWidth: DefaultLineWidth, IndentWidth: DefaultIndentWidth}
}

func (c Config) withDefaults() Config {
	if c.LineWidth == 0 {
		c.LineWidth = DefaultLineWidth
	}
	if c.IndentWidth == 0 {
		c.IndentWidth = DefaultIndentWidth
	}
	return c
}

var knownVersions = map[string]bool{
	"": true, "py38": true, "py39": true, "py310": true,
	"py311": true, "py312": true, "py313": true,
}

// Validate rejects out-of-range settings. Zero LineWidth and IndentWidth
// are allowed and mean the defaults.
func (c Config) Validate() error {
	if c.LineWidth != 0 && (c.LineWidth < minLineWidth || c.LineWidth > maxLineWidth) {
		return fmt.Errorf("line width %d out of range [%d, %d]", c.LineWidth, minLineWidth, maxLineWidth)
	}
	if c.IndentWidth != 0 && (c.IndentWidth < minIndentWidth || c.IndentWidth > maxIndentWidth) {
		return fmt.Errorf("indent width %d out of range [%d, %d]", c.IndentWidth, minIndentWidth, maxIndentWidth)
	}
	if c.Quotes > QuotePreserve {
		return fmt.Errorf("invalid quote style %d", c.Quotes)
	}
	if !knownVersions[c.TargetVersion] {
		return fmt.Errorf("unknown target version %q", c.TargetVersion)
	}
	return nil
}

// Fingerprint folds every layout-affecting setting into a stable string,
// used as part of result cache keys.
func (c Config) Fingerprint() string {
	c = c.withDefaults()
	return fmt.Sprintf("w%d:i%d:q%s:v%s", c.LineWidth, c.IndentWidth, c.Quotes, c.TargetVersion)
}
