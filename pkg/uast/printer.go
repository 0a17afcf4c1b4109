package uast

import (
	"strings"

	"github.com/Sumatoshi-tech/phprefactor/pkg/uast/pkg/node"
)

// Print serializes a tree back to PHP source.
//
// Source between and around positioned nodes is copied verbatim from the
// original text, so an unmodified tree prints byte-identically. Variables print
// as "$" followed by their current name. Synthetic nodes print their text: one
// with a position stands in for that span, one without is inserted right before
// the next positioned sibling, or right after the previous one when it is last.
func Print(tree *node.Tree) string {
	if tree == nil || tree.Root == nil {
		return ""
	}

	p := &printer{source: tree.Source}
	p.buf.Grow(len(tree.Source))

	root := tree.Root
	if root.Pos == nil {
		p.emit(root)

		return p.buf.String()
	}

	p.copySource(0, root.Pos.StartOffset)
	p.emit(root)
	p.copySource(root.Pos.EndOffset, uint(len(tree.Source)))

	return p.buf.String()
}

type printer struct {
	source []byte
	buf    strings.Builder
}

func (p *printer) emit(n *node.Node) {
	switch {
	case n.Synthetic:
		p.buf.WriteString(n.Text)

		return
	case n.Kind == node.KindVariable:
		p.buf.WriteByte('$')
		p.buf.WriteString(n.Name)

		return
	case n.Pos == nil:
		for _, child := range n.Children {
			p.emit(child)
		}

		return
	}

	cursor := n.Pos.StartOffset

	var pending []*node.Node

	for _, child := range n.Children {
		if child.Pos == nil {
			pending = append(pending, child)

			continue
		}

		// Covered by a preceding synthetic replacement.
		if child.Pos.StartOffset < cursor {
			continue
		}

		p.copySource(cursor, child.Pos.StartOffset)

		for _, inserted := range pending {
			p.emit(inserted)
		}

		pending = pending[:0]

		p.emit(child)
		cursor = child.Pos.EndOffset
	}

	for _, inserted := range pending {
		p.emit(inserted)
	}

	p.copySource(cursor, n.Pos.EndOffset)
}

func (p *printer) copySource(start, end uint) {
	if end > uint(len(p.source)) {
		end = uint(len(p.source))
	}

	if start >= end {
		return
	}

	p.buf.Write(p.source[start:end])
}
