// internal/geometry/document.go
package geometry

import (
	"errors"
	"fmt"

	"github.com/xkilldash9x/boxgeom/internal/style"
)

// NodeID addresses a node inside a Document. IDs are stable for the
// lifetime of the Document.
type NodeID int

// NoNode is the null handle.
const NoNode NodeID = -1

var (
	ErrUnknownNode     = errors.New("geometry: unknown node")
	ErrAlreadyAttached = errors.New("geometry: node already has a parent")
	ErrCycle           = errors.New("geometry: append would create a cycle")
)

// Point is an (x, y) pair used for sizes, positions and scroll offsets.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p Point) Add(o Point) Point { return Point{X: p.X + o.X, Y: p.Y + o.Y} }
func (p Point) Sub(o Point) Point { return Point{X: p.X - o.X, Y: p.Y - o.Y} }

// Viewport is the visible window. Fixed boxes are placed against it.
type Viewport struct {
	Width, Height    float64
	ScrollX, ScrollY float64
}

type node struct {
	tag      string
	style    style.ComputedStyle
	parent   NodeID
	children []NodeID

	scrollLeft, scrollTop float64
}

// Document is an arena-backed styled node tree. Node 0 is the document
// root and node 1 is the body-equivalent container.
//
// A Document is not safe for concurrent use.
type Document struct {
	nodes    []node
	root     NodeID
	body     NodeID
	viewport Viewport
}

// NewDocument creates a document holding a root and a body, the body being
// the root's only child.
func NewDocument(viewport Viewport, rootStyle, bodyStyle style.ComputedStyle) *Document {
	d := &Document{viewport: viewport}
	d.root = d.CreateNode("html", rootStyle)
	d.body = d.CreateNode("body", bodyStyle)
	d.link(d.root, d.body)
	return d
}

// CreateNode adds an unattached node to the arena.
func (d *Document) CreateNode(tag string, cs style.ComputedStyle) NodeID {
	d.nodes = append(d.nodes, node{tag: tag, style: cs, parent: NoNode})
	return NodeID(len(d.nodes) - 1)
}

// Append attaches child as the last child of parent.
func (d *Document) Append(parent, child NodeID) error {
	if !d.Valid(parent) {
		return fmt.Errorf("%w: parent %d", ErrUnknownNode, parent)
	}
	if !d.Valid(child) {
		return fmt.Errorf("%w: child %d", ErrUnknownNode, child)
	}
	if child == d.root || d.nodes[child].parent != NoNode {
		return fmt.Errorf("%w: %d", ErrAlreadyAttached, child)
	}
	for cur := parent; cur != NoNode; cur = d.nodes[cur].parent {
		if cur == child {
			return fmt.Errorf("%w: %d is an ancestor of %d", ErrCycle, child, parent)
		}
	}
	d.link(parent, child)
	return nil
}

func (d *Document) link(parent, child NodeID) {
	d.nodes[child].parent = parent
	d.nodes[parent].children = append(d.nodes[parent].children, child)
}

// Detach unlinks id from its parent. The subtree below id stays intact
// and becomes orphaned. Detaching the root or an orphan is a no-op.
func (d *Document) Detach(id NodeID) {
	if !d.Valid(id) {
		return
	}
	parent := d.nodes[id].parent
	if parent == NoNode {
		return
	}
	siblings := d.nodes[parent].children
	for i, c := range siblings {
		if c == id {
			d.nodes[parent].children = append(siblings[:i:i], siblings[i+1:]...)
			break
		}
	}
	d.nodes[id].parent = NoNode
}

// -- Accessors --

func (d *Document) Root() NodeID { return d.root }
func (d *Document) Body() NodeID { return d.body }
func (d *Document) Len() int     { return len(d.nodes) }

// Valid reports whether id addresses a node of this document.
func (d *Document) Valid(id NodeID) bool {
	return id >= 0 && int(id) < len(d.nodes)
}

func (d *Document) Parent(id NodeID) NodeID {
	if !d.Valid(id) {
		return NoNode
	}
	return d.nodes[id].parent
}

// Children returns a copy of the ordered child list.
func (d *Document) Children(id NodeID) []NodeID {
	if !d.Valid(id) {
		return nil
	}
	return append([]NodeID(nil), d.nodes[id].children...)
}

func (d *Document) Tag(id NodeID) string {
	if !d.Valid(id) {
		return ""
	}
	return d.nodes[id].tag
}

func (d *Document) Style(id NodeID) style.ComputedStyle {
	if !d.Valid(id) {
		return style.ComputedStyle{}
	}
	return d.nodes[id].style
}

// SetStyle replaces the computed style of id. The scroll offsets of id and
// of its parent, whose scroll size depends on id, are clamped again against
// the new metrics.
func (d *Document) SetStyle(id NodeID, cs style.ComputedStyle) {
	if !d.Valid(id) {
		return
	}
	d.nodes[id].style = cs
	d.reclampScroll(id)
	if parent := d.nodes[id].parent; parent != NoNode {
		d.reclampScroll(parent)
	}
}

func (d *Document) reclampScroll(id NodeID) {
	limit := d.scrollRange(id)
	n := &d.nodes[id]
	n.scrollLeft = clampScroll(n.scrollLeft, limit.X)
	n.scrollTop = clampScroll(n.scrollTop, limit.Y)
}

// Attached reports whether the document root is reachable from id.
func (d *Document) Attached(id NodeID) bool {
	if !d.Valid(id) {
		return false
	}
	top := id
	d.walkUp(id, func(_, ancestor NodeID) bool {
		top = ancestor
		return true
	})
	return top == d.root
}

func (d *Document) Viewport() Viewport { return d.viewport }
