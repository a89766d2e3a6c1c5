package format

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Fixture is one golden formatting case, stored as a markdown-ish file
// with "## " section headers. Input holds the source to format and
// Expected the canonical output. ReferenceOutput optionally records what
// an upstream formatter produces, with Notes explaining any deliberate
// difference.
type Fixture struct {
	Name            string
	Input           string
	Expected        string
	ReferenceOutput string
	Notes           string
}

const (
	sectionInput     = "Input"
	sectionExpected  = "Pyfmt Output"
	sectionReference = "Reference Output"
	sectionNotes     = "Reference Differences"
)

// ParseFixture splits a fixture file into its sections.
func ParseFixture(name string, data []byte) (*Fixture, error) {
	f := &Fixture{Name: name}
	lines := strings.Split(string(data), "\n")

	section := ""
	var buf []string
	flush := func() error {
		text := strings.Join(buf, "\n")
		text = strings.Trim(text, "\n")
		if text != "" && !strings.HasSuffix(text, "\n") {
			text += "\n"
		}
		switch section {
		case "":
			// preamble before the first header
		case sectionInput:
			f.Input = text
		case sectionExpected:
			f.Expected = text
		case sectionReference:
			f.ReferenceOutput = text
		case sectionNotes:
			f.Notes = strings.TrimRight(text, "\n")
		default:
			return fmt.Errorf("fixture %s: unknown section %q", name, section)
		}
		buf = buf[:0]
		return nil
	}

	for _, line := range lines {
		if rest, ok := strings.CutPrefix(line, "## "); ok {
			if err := flush(); err != nil {
				return nil, err
			}
			section = strings.TrimSpace(rest)
			continue
		}
		buf = append(buf, line)
	}
	if err := flush(); err != nil {
		return nil, err
	}

	if f.Input == "" {
		return nil, fmt.Errorf("fixture %s: missing %q section", name, sectionInput)
	}
	if f.Expected == "" {
		return nil, fmt.Errorf("fixture %s: missing %q section", name, sectionExpected)
	}
	return f, nil
}

// Diff renders a unified diff of expected versus actual output, empty
// when they match.
func (f *Fixture) Diff(actual string) string {
	if actual == f.Expected {
		return ""
	}
	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(f.Expected),
		B:        difflib.SplitLines(actual),
		FromFile: f.Name + " (expected)",
		ToFile:   f.Name + " (actual)",
		Context:  3,
	})
	if err != nil {
		return "diff failed: " + err.Error()
	}
	return text
}

// UnifiedDiff renders the difference between two texts, used by check
// mode to show what formatting would change.
func UnifiedDiff(path, before, after string) string {
	if before == after {
		return ""
	}
	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: path,
		ToFile:   path + " (formatted)",
		Context:  3,
	})
	if err != nil {
		return "diff failed: " + err.Error()
	}
	return text
}
