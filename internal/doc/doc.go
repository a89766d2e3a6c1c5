// Package doc implements the abstract layout document between the syntax
// tree and rendered text.
//
// A document is a tree of text fragments, line separators, indentation
// markers, and groups. Groups are the unit of layout choice: the resolver
// decides per group whether it renders flat or broken against the width
// budget, and the renderer then emits final text. Documents live in an
// arena addressed by integer IDs, built fresh per formatting invocation
// and discarded afterwards.
package doc

import "github.com/mattn/go-runewidth"

// LineKind classifies separators.
type LineKind uint8

const (
	// SoftLine is nothing when flat, a newline when broken.
	SoftLine LineKind = iota
	// SpaceLine is a single space when flat, a newline when broken.
	SpaceLine
	// HardLine always breaks and forces enclosing groups to break.
	HardLine
	// BlankLine is a hard break that leaves one blank line.
	BlankLine
)

type Kind uint8

const (
	KindText Kind = iota
	KindConcat
	KindLine
	KindGroup
	KindIndent
	KindIfBreak
)

// ID addresses a node in the tree arena; 0 is invalid.
type ID uint32

const None ID = 0

// GroupID numbers groups in creation order for the resolver's mode table.
type GroupID uint32

type node struct {
	kind     Kind
	text     string
	width    int // display width of text
	children []ID
	child    ID // group/indent content; ifbreak broken branch
	alt      ID // ifbreak flat branch
	line     LineKind
	group    GroupID
	forced   bool // group must render broken regardless of fit
	hasHard  bool // subtree contains an unconditional break
}

// Tree is the arena of document nodes for one formatting invocation.
type Tree struct {
	nodes  []node
	groups uint32
}

func NewTree() *Tree {
	return &Tree{nodes: make([]node, 0, 256)}
}

func (t *Tree) alloc(n node) ID {
	t.nodes = append(t.nodes, n)
	return ID(len(t.nodes)) // #nosec G115 -- document sizes fit uint32
}

func (t *Tree) get(id ID) *node {
	return &t.nodes[id-1]
}

// GroupCount reports how many groups the tree holds.
func (t *Tree) GroupCount() uint32 { return t.groups }

// Text creates a verbatim fragment. The fragment must not contain
// newlines; multi-line output is expressed with Line nodes.
func (t *Tree) Text(s string) ID {
	return t.alloc(node{kind: KindText, text: s, width: runewidth.StringWidth(s)})
}

// Line creates a separator of the given kind.
func (t *Tree) Line(kind LineKind) ID {
	return t.alloc(node{kind: KindLine, line: kind, hasHard: kind == HardLine || kind == BlankLine})
}

func (t *Tree) Soft() ID  { return t.Line(SoftLine) }
func (t *Tree) Space() ID { return t.Line(SpaceLine) }
func (t *Tree) Hard() ID  { return t.Line(HardLine) }
func (t *Tree) Blank() ID { return t.Line(BlankLine) }

// Concat sequences children. Invalid IDs are skipped so callers can pass
// optional parts unconditionally.
func (t *Tree) Concat(ids ...ID) ID {
	kept := make([]ID, 0, len(ids))
	hard := false
	for _, id := range ids {
		if id == None {
			continue
		}
		kept = append(kept, id)
		if t.get(id).hasHard {
			hard = true
		}
	}
	return t.alloc(node{kind: KindConcat, children: kept, hasHard: hard})
}

// Group wraps content in a breakable unit.
func (t *Tree) Group(content ID) ID {
	t.groups++
	return t.alloc(node{
		kind:    KindGroup,
		child:   content,
		group:   GroupID(t.groups),
		hasHard: t.get(content).hasHard,
	})
}

// GroupForced wraps content in a group that always renders broken. Used
// by the magic trailing comma rule; the forced break propagates to
// enclosing groups like a hard line.
func (t *Tree) GroupForced(content ID) ID {
	t.groups++
	return t.alloc(node{
		kind:    KindGroup,
		child:   content,
		group:   GroupID(t.groups),
		forced:  true,
		hasHard: true,
	})
}

// Indent adds one indentation level to content on every line it breaks.
func (t *Tree) Indent(content ID) ID {
	return t.alloc(node{kind: KindIndent, child: content, hasHard: t.get(content).hasHard})
}

// IfBreak renders whenBroken if the nearest enclosing group broke, and
// whenFlat otherwise. Either side may be None.
func (t *Tree) IfBreak(whenBroken, whenFlat ID) ID {
	// Branch contents never force a break on their own: the broken branch
	// is only reachable once the group already broke.
	return t.alloc(node{kind: KindIfBreak, child: whenBroken, alt: whenFlat})
}

// HasHard reports whether the subtree contains an unconditional break
// (hard or blank line, or a forced group). The rule set consults this to
// detect sub-expressions that must split.
func (t *Tree) HasHard(id ID) bool {
	if id == None {
		return false
	}
	return t.get(id).hasHard
}
