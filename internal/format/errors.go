package format

import (
	"fmt"

	"pyfmt/internal/diag"
	"pyfmt/internal/source"
)

// Stage identifies where in the pipeline a formatting attempt failed.
type Stage uint8

const (
	// StageParse covers lexing and parsing of the input.
	StageParse Stage = iota
	// StageBuild covers comment attachment and document construction.
	StageBuild
	// StageRender covers layout resolution and text emission.
	StageRender
)

func (s Stage) String() string {
	switch s {
	case StageParse:
		return "parse"
	case StageBuild:
		return "build"
	default:
		return "render"
	}
}

// FormatError is the typed failure of one formatting invocation. Inputs
// that fail to parse carry the syntax diagnostics; internal defects in
// later stages carry the wrapped cause.
type FormatError struct {
	Stage Stage
	Path  string
	Diags []diag.Diagnostic
	Err   error

	fset *source.FileSet
}

func (e *FormatError) Error() string {
	if len(e.Diags) > 0 {
		return fmt.Sprintf("%s: %s failed: %s (%d problems)",
			e.Path, e.Stage, e.Diags[0].Message, len(e.Diags))
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s failed: %v", e.Path, e.Stage, e.Err)
	}
	return fmt.Sprintf("%s: %s failed", e.Path, e.Stage)
}

func (e *FormatError) Unwrap() error { return e.Err }

// Details renders the diagnostics one per line with resolved line and
// column positions. Empty when the failure carries none.
func (e *FormatError) Details() string {
	return diag.Format(e.Diags, e.fset)
}
