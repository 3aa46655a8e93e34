// internal/geometry/position.go
package geometry

import (
	"github.com/xkilldash9x/boxgeom/internal/style"
)

// Position returns the offset of id's border-box corner. With relativeTo
// set to NoNode the offset is in document coordinates, whose origin is the
// root's border-box corner (for a detached subtree, the corner of its top
// node). Otherwise it is measured from relativeTo's padding edge.
//
// When relativeTo is an ancestor the offset comes from a single upward walk.
// Otherwise, or when a fixed box sits between the two, both document
// positions are computed and subtracted.
func (r *Resolver) Position(id, relativeTo NodeID) Point {
	if !r.doc.Valid(id) {
		r.invalid("Position", id)
		return Point{}
	}
	if relativeTo == id {
		return Point{}
	}
	if relativeTo != NoNode && !r.doc.Valid(relativeTo) {
		r.invalid("Position", relativeTo)
		relativeTo = NoNode
	}

	if pos, reached := r.doc.accumulate(id, relativeTo); reached {
		return pos
	}

	pos, _ := r.doc.accumulate(id, NoNode)
	origin, _ := r.doc.accumulate(relativeTo, NoNode)
	b := r.doc.nodes[relativeTo].style.Border
	return pos.Sub(origin).Sub(Point{X: b.Left, Y: b.Top})
}

// accumulate walks from id towards stop adding local offsets, ancestor
// borders and clipped ancestor scroll. reached is false when stop is a node
// and the walk ended without arriving at it.
func (d *Document) accumulate(id, stop NodeID) (pos Point, reached bool) {
	attached := d.Attached(id)
	reached = stop == NoNode

	d.walkUp(id, func(child, ancestor NodeID) bool {
		cs := d.nodes[child].style
		if attached && cs.Position == style.PositionFixed {
			pos = pos.Add(d.viewportOffset(child))
			return false
		}

		pos = pos.Add(d.localOffset(child))
		anc := &d.nodes[ancestor]
		if anc.style.Overflow.Clips() {
			pos = pos.Sub(Point{X: anc.scrollLeft, Y: anc.scrollTop})
		}
		if ancestor == stop {
			reached = true
			return false
		}
		pos = pos.Add(Point{X: anc.style.Border.Left, Y: anc.style.Border.Top})
		return true
	})
	return pos, reached
}

// localOffset is the border-box corner of id measured from its parent's
// padding edge.
func (d *Document) localOffset(id NodeID) Point {
	n := &d.nodes[id]
	cs := n.style
	p := Point{X: cs.Margin.Left, Y: cs.Margin.Top}

	switch cs.Position {
	case style.PositionAbsolute, style.PositionFixed:
		// Fixed only lands here for detached subtrees, where it behaves as
		// absolute.
		return p.Add(Point{X: cs.Offset.Left, Y: cs.Offset.Top})
	case style.PositionRelative:
		p = p.Add(Point{X: cs.Offset.Left, Y: cs.Offset.Top})
	}
	if n.parent != NoNode {
		pad := d.nodes[n.parent].style.Padding
		p = p.Add(Point{X: pad.Left, Y: pad.Top})
	}
	return p
}

// viewportOffset is the document position of a fixed box.
func (d *Document) viewportOffset(id NodeID) Point {
	cs := d.nodes[id].style
	return Point{
		X: d.viewport.ScrollX + cs.Margin.Left + cs.Offset.Left,
		Y: d.viewport.ScrollY + cs.Margin.Top + cs.Offset.Top,
	}
}
