// Package format turns parsed source into canonically formatted text.
//
// The pipeline is lex, parse, attach comments, build a layout document,
// resolve it against the width budget, and render. Formatting is a pure
// function of input bytes and Config: the same pair always yields the
// same output, and output fed back in yields itself.
package format

import (
	"errors"

	"pyfmt/internal/ast"
	"pyfmt/internal/comments"
	"pyfmt/internal/diag"
	"pyfmt/internal/doc"
	"pyfmt/internal/lexer"
	"pyfmt/internal/parser"
	"pyfmt/internal/source"
)

// Source formats one buffer. name is used in error messages only.
func Source(name string, src []byte, cfg Config) (string, error) {
	if err := cfg.Validate(); err != nil {
		return "", &FormatError{Stage: StageParse, Path: name, Err: err}
	}
	cfg = cfg.withDefaults()

	fs := source.NewFileSet()
	sf := fs.Get(fs.AddVirtual(name, src))

	bag := diag.NewBag(100)
	rep := &diag.BagReporter{Bag: bag}

	toks, comms := lexer.Tokenize(sf, lexer.Options{Reporter: rep})
	b := ast.NewBuilder(ast.Hints{})
	res := parser.ParseFile(sf, toks, b, parser.Options{Reporter: rep})
	if bag.HasErrors() {
		bag.Sort()
		return "", &FormatError{Stage: StageParse, Path: name, Diags: bag.Items(), fset: fs}
	}

	tbl := comments.Attach(b, res.File, sf, comms)
	if err := tbl.Verify(); err != nil {
		return "", &FormatError{Stage: StageBuild, Path: name, Err: err}
	}

	p := newPrinter(b, sf, tbl, cfg)
	root := p.fileDoc(res.File)

	layout := doc.Layout{MaxWidth: cfg.LineWidth, IndentWidth: cfg.IndentWidth}
	resolved := doc.Resolve(p.t, root, layout)
	out := doc.Render(p.t, root, resolved, layout)
	return out, nil
}

// IsSyntaxError reports whether err is a parse-stage failure, as opposed
// to an internal defect in a later stage.
func IsSyntaxError(err error) bool {
	var fe *FormatError
	return errors.As(err, &fe) && fe.Stage == StageParse
}
