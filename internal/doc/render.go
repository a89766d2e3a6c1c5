package doc

import "strings"

// maxConsecutiveBlankLines caps runs of blank lines in the output.
const maxConsecutiveBlankLines = 2

// Render emits the resolved document as text: indentation in spaces,
// LF line endings, blank runs clamped, exactly one trailing newline.
func Render(t *Tree, root ID, r *Resolved, l Layout) string {
	w := writer{indentWidth: l.IndentWidth}
	if root != None {
		w.walk(t, root, r)
	}
	return w.finish()
}

type writer struct {
	buf         strings.Builder
	indentWidth int

	pendingNewlines int // newlines owed before the next text
	pendingIndent   int
	startOfOutput   bool
}

func (w *writer) walk(t *Tree, root ID, r *Resolved) {
	w.startOfOutput = true
	stack := []frame{{id: root, mode: ModeBroken}}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := t.get(f.id)

		switch n.kind {
		case KindText:
			w.text(n.text)

		case KindConcat:
			for i := len(n.children) - 1; i >= 0; i-- {
				stack = append(stack, frame{id: n.children[i], indent: f.indent, mode: f.mode})
			}

		case KindLine:
			switch {
			case n.line == BlankLine:
				w.blank(f.indent)
			case n.line == HardLine || f.mode == ModeBroken:
				w.hard(f.indent)
			case n.line == SpaceLine:
				w.text(" ")
			}

		case KindIndent:
			if n.child != None {
				stack = append(stack, frame{id: n.child, indent: f.indent + w.indentWidth, mode: f.mode})
			}

		case KindIfBreak:
			branch := n.alt
			if f.mode == ModeBroken {
				branch = n.child
			}
			if branch != None {
				stack = append(stack, frame{id: branch, indent: f.indent, mode: f.mode})
			}

		case KindGroup:
			if n.child != None {
				stack = append(stack, frame{id: n.child, indent: f.indent, mode: r.ModeOf(n.group)})
			}
		}
	}
}

// hard records one owed line break; consecutive hard breaks collapse.
// Indentation is written lazily when text follows, so blank lines never
// carry trailing spaces.
func (w *writer) hard(indent int) {
	if w.startOfOutput {
		// Leading breaks before any text are dropped.
		w.pendingIndent = indent
		return
	}
	if w.pendingNewlines < 1 {
		w.pendingNewlines = 1
	}
	w.pendingIndent = indent
}

// blank adds one blank line on top of the owed break, capped at the
// blank-run limit.
func (w *writer) blank(indent int) {
	if w.startOfOutput {
		w.pendingIndent = indent
		return
	}
	if w.pendingNewlines < 1 {
		w.pendingNewlines = 1
	}
	w.pendingNewlines++
	if w.pendingNewlines > maxConsecutiveBlankLines+1 {
		w.pendingNewlines = maxConsecutiveBlankLines + 1
	}
	w.pendingIndent = indent
}

func (w *writer) text(s string) {
	if s == "" {
		return
	}
	if w.pendingNewlines > 0 {
		for i := 0; i < w.pendingNewlines; i++ {
			w.buf.WriteByte('\n')
		}
		w.pendingNewlines = 0
		for i := 0; i < w.pendingIndent; i++ {
			w.buf.WriteByte(' ')
		}
	}
	w.startOfOutput = false
	w.buf.WriteString(s)
}

func (w *writer) finish() string {
	out := w.buf.String()
	out = strings.TrimRight(out, " \n")
	if out == "" {
		return ""
	}
	return out + "\n"
}
