// internal/geometry/walk.go
package geometry

// walkUp visits every (child, ancestor) step from id towards the top of its
// tree, nearest first. The walk stops when visit returns false or the top
// is reached. id itself is only ever passed as the first child.
//
// Every upward computation in the resolver goes through here so that
// position and offset-parent resolution agree on what "the ancestors" are.
func (d *Document) walkUp(id NodeID, visit func(child, ancestor NodeID) bool) {
	if !d.Valid(id) {
		return
	}
	for child := id; ; {
		ancestor := d.nodes[child].parent
		if ancestor == NoNode || !visit(child, ancestor) {
			return
		}
		child = ancestor
	}
}
