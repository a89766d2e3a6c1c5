package doc

// Mode is the resolved layout decision for one group.
type Mode uint8

const (
	ModeFlat Mode = iota
	ModeBroken
)

// Layout is the width budget threaded through resolution.
type Layout struct {
	MaxWidth    int
	IndentWidth int
}

// Resolved carries the per-group flat/broken decisions.
type Resolved struct {
	modes []Mode
}

func (r *Resolved) ModeOf(g GroupID) Mode {
	if g == 0 || int(g) > len(r.modes) {
		return ModeBroken
	}
	return r.modes[g-1]
}

type frame struct {
	id     ID
	indent int
	mode   Mode
}

// Resolve walks the document once, outside-in, deciding each group by a
// fits-check against the remaining line. Decisions are final; nothing is
// revisited.
func Resolve(t *Tree, root ID, l Layout) *Resolved {
	r := &Resolved{modes: make([]Mode, t.GroupCount())}
	if root == None {
		return r
	}

	stack := make([]frame, 0, 64)
	stack = append(stack, frame{id: root, mode: ModeBroken})
	pos := 0

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := t.get(f.id)

		switch n.kind {
		case KindText:
			pos += n.width

		case KindConcat:
			for i := len(n.children) - 1; i >= 0; i-- {
				stack = append(stack, frame{id: n.children[i], indent: f.indent, mode: f.mode})
			}

		case KindLine:
			switch {
			case n.line == HardLine || n.line == BlankLine || f.mode == ModeBroken:
				pos = f.indent
			case n.line == SpaceLine:
				pos++
			}

		case KindIndent:
			if n.child != None {
				stack = append(stack, frame{id: n.child, indent: f.indent + l.IndentWidth, mode: f.mode})
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
			mode := ModeBroken
			if !n.forced && !n.hasHard && t.fits(n.child, f.indent, pos, stack, l) {
				mode = ModeFlat
			}
			r.modes[n.group-1] = mode
			if n.child != None {
				stack = append(stack, frame{id: n.child, indent: f.indent, mode: mode})
			}
		}
	}
	return r
}

// fits simulates flat rendering of content plus everything that follows on
// the same logical line, stopping at the first unconditional break or when
// the budget is exceeded.
func (t *Tree) fits(content ID, indent, pos int, rest []frame, l Layout) bool {
	stack := make([]frame, 0, len(rest)+8)
	stack = append(stack, rest...)
	if content != None {
		stack = append(stack, frame{id: content, indent: indent, mode: ModeFlat})
	}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := t.get(f.id)

		switch n.kind {
		case KindText:
			pos += n.width
			if pos > l.MaxWidth {
				return false
			}

		case KindConcat:
			for i := len(n.children) - 1; i >= 0; i-- {
				stack = append(stack, frame{id: n.children[i], indent: f.indent, mode: f.mode})
			}

		case KindLine:
			if n.line == HardLine || n.line == BlankLine || f.mode == ModeBroken {
				// The logical line ends here; everything so far fit.
				return true
			}
			if n.line == SpaceLine {
				pos++
				if pos > l.MaxWidth {
					return false
				}
			}

		case KindIndent:
			if n.child != None {
				stack = append(stack, frame{id: n.child, indent: f.indent + l.IndentWidth, mode: f.mode})
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
			// A group that must break ends the flat measurement early.
			if n.forced || n.hasHard {
				return false
			}
			if n.child != None {
				stack = append(stack, frame{id: n.child, indent: f.indent, mode: ModeFlat})
			}
		}
	}
	return true
}
