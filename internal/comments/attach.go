// Package comments binds the lexer's comment trivia to syntax nodes.
//
// Every comment is attached to exactly one node as leading, trailing, or
// dangling; nothing is ever dropped. Ambiguous placements degrade to a
// dangling attachment on the nearest enclosing node, which keeps the
// conservation invariant checkable downstream.
package comments

import (
	"fmt"

	"pyfmt/internal/ast"
	"pyfmt/internal/source"
	"pyfmt/internal/token"
)

type Placement uint8

const (
	Leading Placement = iota
	Trailing
	Dangling
)

func (p Placement) String() string {
	switch p {
	case Leading:
		return "leading"
	case Trailing:
		return "trailing"
	default:
		return "dangling"
	}
}

// Attachment records where one comment lives.
type Attachment struct {
	Node  ast.NodeRef
	Place Placement
}

// Table is the result of attachment: per-node comment lists in source
// order, plus the original trivia for text lookup.
type Table struct {
	comments []token.Comment
	byID     []Attachment
	leading  map[ast.NodeRef][]token.CommentID
	trailing map[ast.NodeRef][]token.CommentID
	dangling map[ast.NodeRef][]token.CommentID
}

// Attach classifies every comment against the tree rooted at file.
func Attach(b *ast.Builder, file ast.FileID, sf *source.File, comms []token.Comment) *Table {
	t := &Table{
		comments: comms,
		byID:     make([]Attachment, len(comms)),
		leading:  make(map[ast.NodeRef][]token.CommentID),
		trailing: make(map[ast.NodeRef][]token.CommentID),
		dangling: make(map[ast.NodeRef][]token.CommentID),
	}
	root := ast.FileRef(file)
	for i, c := range comms {
		id := token.CommentID(i) // #nosec G115 -- comment counts fit uint32
		node, place := classify(b, sf, root, c)
		t.byID[i] = Attachment{Node: node, Place: place}
		switch place {
		case Leading:
			t.leading[node] = append(t.leading[node], id)
		case Trailing:
			t.trailing[node] = append(t.trailing[node], id)
		case Dangling:
			t.dangling[node] = append(t.dangling[node], id)
		}
	}
	return t
}

func classify(b *ast.Builder, sf *source.File, root ast.NodeRef, c token.Comment) (ast.NodeRef, Placement) {
	enclosing := root
	for {
		children := b.Children(enclosing)
		descended := false
		for _, child := range children {
			sp := b.RefSpan(child)
			if sp.Contains(c.Span.Start) {
				enclosing = child
				descended = true
				break
			}
		}
		if !descended {
			break
		}
	}

	children := b.Children(enclosing)
	var prev, next ast.NodeRef
	for _, child := range children {
		sp := b.RefSpan(child)
		if sp.End <= c.Span.Start {
			prev = child
		}
		if sp.Start >= c.Span.End && !next.IsValid() {
			next = child
		}
	}

	commentLine := sf.LineOf(c.Span.Start)
	switch {
	case !c.OwnLine && prev.IsValid() && sf.LineOf(b.RefSpan(prev).End-1) == commentLine:
		return prev, Trailing
	case c.OwnLine && next.IsValid():
		return next, Leading
	case next.IsValid():
		// End-of-line comment with no code before it inside this node
		// (e.g. right after an opening bracket): lead the next element.
		return next, Leading
	default:
		return enclosing, Dangling
	}
}

// Comment returns the trivia record for an ID.
func (t *Table) Comment(id token.CommentID) token.Comment {
	return t.comments[id]
}

// Len is the number of attached comments.
func (t *Table) Len() int { return len(t.comments) }

func (t *Table) LeadingOf(node ast.NodeRef) []token.CommentID  { return t.leading[node] }
func (t *Table) TrailingOf(node ast.NodeRef) []token.CommentID { return t.trailing[node] }
func (t *Table) DanglingOf(node ast.NodeRef) []token.CommentID { return t.dangling[node] }

// Of returns the attachment for one comment.
func (t *Table) Of(id token.CommentID) Attachment {
	return t.byID[id]
}

// Verify checks the conservation invariant: every comment is attached
// exactly once. Violations are internal defects.
func (t *Table) Verify() error {
	total := 0
	for _, ids := range t.leading {
		total += len(ids)
	}
	for _, ids := range t.trailing {
		total += len(ids)
	}
	for _, ids := range t.dangling {
		total += len(ids)
	}
	if total != len(t.comments) {
		return fmt.Errorf("comment conservation violated: %d comments, %d attachments", len(t.comments), total)
	}
	return nil
}
