// internal/geometry/scroll.go
package geometry

import (
	"math"

	"github.com/xkilldash9x/boxgeom/internal/style"
	"go.uber.org/zap"
)

// ScrollSize returns the scrollable extent of id: its content box grown to
// cover the border boxes of rendered children, plus its own padding and
// border. The node's current scroll offset plays no part, and the result is
// never smaller than Size.
func (r *Resolver) ScrollSize(id NodeID) Point {
	if !r.doc.Valid(id) {
		r.invalid("ScrollSize", id)
		return Point{}
	}
	return r.doc.scrollSize(id)
}

func (d *Document) scrollSize(id NodeID) Point {
	n := &d.nodes[id]
	cs := n.style
	extent := Point{X: cs.Width, Y: cs.Height}
	contentOrigin := Point{X: cs.Padding.Left, Y: cs.Padding.Top}

	for _, c := range n.children {
		ccs := d.nodes[c].style
		if ccs.Display == style.DisplayNone || ccs.Position == style.PositionFixed {
			continue
		}
		edge := d.localOffset(c).Sub(contentOrigin).Add(d.size(c))
		extent.X = math.Max(extent.X, edge.X)
		extent.Y = math.Max(extent.Y, edge.Y)
	}

	return Point{
		X: extent.X + cs.Padding.Horizontal() + cs.Border.Horizontal(),
		Y: extent.Y + cs.Padding.Vertical() + cs.Border.Vertical(),
	}
}

// ScrollRange is the largest scroll offset id accepts on each axis. Boxes
// that do not clip their content cannot scroll.
func (r *Resolver) ScrollRange(id NodeID) Point {
	if !r.doc.Valid(id) {
		r.invalid("ScrollRange", id)
		return Point{}
	}
	return r.doc.scrollRange(id)
}

func (d *Document) scrollRange(id NodeID) Point {
	if !d.nodes[id].style.Overflow.Clips() {
		return Point{}
	}
	return d.scrollSize(id).Sub(d.size(id))
}

// Scroll returns the current scroll offsets of id.
func (r *Resolver) Scroll(id NodeID) Point {
	if !r.doc.Valid(id) {
		r.invalid("Scroll", id)
		return Point{}
	}
	n := &r.doc.nodes[id]
	return Point{X: n.scrollLeft, Y: n.scrollTop}
}

// ScrollTo moves the scroll offsets of id to (x, y), clamped to
// [0, ScrollRange]. Both axes are committed together. It returns id so
// calls can be chained. Only descendants of id change position.
func (r *Resolver) ScrollTo(id NodeID, x, y float64) NodeID {
	if !r.doc.Valid(id) {
		r.invalid("ScrollTo", id)
		return id
	}
	limit := r.doc.scrollRange(id)
	left, top := clampScroll(x, limit.X), clampScroll(y, limit.Y)

	n := &r.doc.nodes[id]
	n.scrollLeft, n.scrollTop = left, top

	r.logger.Debug("Scrolled node",
		zap.Int("node", int(id)),
		zap.Float64("requested_x", x), zap.Float64("requested_y", y),
		zap.Float64("x", left), zap.Float64("y", top),
	)
	return id
}

func clampScroll(v, limit float64) float64 {
	if math.IsNaN(v) || v < 0 || limit <= 0 {
		return 0
	}
	if v > limit {
		return limit
	}
	return v
}

// ViewportScrollSize is the scrollable extent of the viewport: the root's
// scroll size, but never smaller than the viewport itself.
func (r *Resolver) ViewportScrollSize() Point {
	vp := r.doc.viewport
	root := r.doc.scrollSize(r.doc.root)
	return Point{X: math.Max(vp.Width, root.X), Y: math.Max(vp.Height, root.Y)}
}

// ScrollViewport scrolls the viewport, clamped to its scrollable extent.
// Only fixed boxes move in document coordinates as a result.
func (r *Resolver) ScrollViewport(x, y float64) Point {
	size := r.ViewportScrollSize()
	vp := &r.doc.viewport
	vp.ScrollX = clampScroll(x, size.X-vp.Width)
	vp.ScrollY = clampScroll(y, size.Y-vp.Height)
	r.logger.Debug("Scrolled viewport", zap.Float64("x", vp.ScrollX), zap.Float64("y", vp.ScrollY))
	return Point{X: vp.ScrollX, Y: vp.ScrollY}
}
