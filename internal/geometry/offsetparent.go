// internal/geometry/offsetparent.go
package geometry

import (
	"github.com/xkilldash9x/boxgeom/internal/style"
)

// OffsetParent resolves the CSSOM-View offset parent of id.
//
// The root, the body, fixed boxes and detached nodes have none. Otherwise
// the nearest ancestor wins that is positioned, is the body, or, when id
// itself is static, is a table or table cell. If no ancestor qualifies the
// body is returned.
func (r *Resolver) OffsetParent(id NodeID) NodeID {
	d := r.doc
	if !d.Valid(id) {
		r.invalid("OffsetParent", id)
		return NoNode
	}
	cs := d.nodes[id].style
	if id == d.root || id == d.body || cs.Position == style.PositionFixed || !d.Attached(id) {
		return NoNode
	}

	static := !cs.IsPositioned()
	result := d.body
	d.walkUp(id, func(_, ancestor NodeID) bool {
		acs := d.nodes[ancestor].style
		if ancestor == d.body || acs.IsPositioned() || (static && acs.IsTableBoundary()) {
			result = ancestor
			return false
		}
		return true
	})
	return result
}

// Offset returns the CSSOM offsetLeft/offsetTop pair: the position of id
// measured from its offset parent's padding edge, or its document position
// when it has no offset parent.
func (r *Resolver) Offset(id NodeID) Point {
	return r.Position(id, r.OffsetParent(id))
}
