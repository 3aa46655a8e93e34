// internal/geometry/resolver.go
package geometry

import (
	"go.uber.org/zap"
)

// Coordinates is a border-box rectangle.
type Coordinates struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
}

// Resolver computes sizes, positions, scroll extents and offset parents
// over a Document. Reads are pure functions of the document state; only
// ScrollTo and ScrollViewport write.
type Resolver struct {
	doc    *Document
	logger *zap.Logger
}

// NewResolver creates a resolver over doc. A nil logger disables logging.
func NewResolver(doc *Document, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{doc: doc, logger: logger.Named("geometry")}
}

// Document returns the tree the resolver reads.
func (r *Resolver) Document() *Document { return r.doc }

func (r *Resolver) invalid(op string, id NodeID) {
	r.logger.Debug("Invalid node handle", zap.String("op", op), zap.Int("node", int(id)))
}

// Size returns the border-box size of id. Margins are not part of it.
func (r *Resolver) Size(id NodeID) Point {
	if !r.doc.Valid(id) {
		r.invalid("Size", id)
		return Point{}
	}
	return r.doc.size(id)
}

func (d *Document) size(id NodeID) Point {
	cs := d.nodes[id].style
	return Point{
		X: cs.Width + cs.Padding.Horizontal() + cs.Border.Horizontal(),
		Y: cs.Height + cs.Padding.Vertical() + cs.Border.Vertical(),
	}
}

// Coordinates combines Position and Size into a rectangle measured the same
// way Position is.
func (r *Resolver) Coordinates(id, relativeTo NodeID) Coordinates {
	pos := r.Position(id, relativeTo)
	size := r.Size(id)
	return Coordinates{
		Left:   pos.X,
		Top:    pos.Y,
		Width:  size.X,
		Height: size.Y,
		Right:  pos.X + size.X,
		Bottom: pos.Y + size.Y,
	}
}
