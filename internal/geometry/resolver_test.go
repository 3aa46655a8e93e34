// internal/geometry/resolver_test.go
package geometry_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xkilldash9x/boxgeom/internal/geometry"
	"github.com/xkilldash9x/boxgeom/internal/style"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// -- Test Helpers --

func computed(tag, decls string) style.ComputedStyle {
	return style.Compute(tag, style.ParseDeclarations(decls), style.Context{})
}

func appendNode(t *testing.T, doc *geometry.Document, parent geometry.NodeID, tag, decls string) geometry.NodeID {
	t.Helper()
	id := doc.CreateNode(tag, computed(tag, decls))
	require.NoError(t, doc.Append(parent, id))
	return id
}

// dimensionsFixture mirrors the structure below; there is also a detached
// orphan.
//
//	<html><body>
//	  <div absolute> <relDiv relative> <absDiv absolute/> </relDiv> </div>
//	  <scrollDiv absolute> <tallDiv/> </scrollDiv>
//	  <fixedDiv fixed> <fixedDivChild/> </fixedDiv>
//	  <staticDiv> <staticDivChild/> </staticDiv>
//	  <table><tbody><tr>
//	    <td><span/><div relative/></td>
//	    <th><span/><div relative/></th>
//	  </tr></tbody></table>
//	</body></html>
type dimensionsFixture struct {
	doc *geometry.Document
	r   *geometry.Resolver

	div, relDiv, absDiv       geometry.NodeID
	scrollDiv, tallDiv        geometry.NodeID
	fixedDiv, fixedDivChild   geometry.NodeID
	staticDiv, staticDivChild geometry.NodeID
	table, tbody, tr          geometry.NodeID
	td, tdSpan, tdDiv         geometry.NodeID
	th, thSpan, thDiv         geometry.NodeID
	orphan                    geometry.NodeID
}

func newDimensionsFixture(t *testing.T) *dimensionsFixture {
	t.Helper()
	doc := geometry.NewDocument(geometry.Viewport{Width: 1024, Height: 768}, computed("html", ""), computed("body", ""))
	f := &dimensionsFixture{doc: doc, r: geometry.NewResolver(doc, nil)}
	body := doc.Body()

	f.div = appendNode(t, doc, body, "div",
		"width: 100px; height: 100px; margin: 2px; padding: 3px; border: 1px solid black; display: block; position: absolute; top: 100px; left: 100px; overflow: hidden")
	f.relDiv = appendNode(t, doc, f.div, "div",
		"width: 50px; height: 50px; margin: 5px; padding: 5px; border: 1px solid green; position: relative; overflow: hidden; display: inline")
	f.absDiv = appendNode(t, doc, f.relDiv, "div",
		"width: 10px; height: 10px; margin: 5px; padding: 5px; border: 1px solid red; position: absolute; top: 10px; left: 10px; overflow: hidden")

	f.scrollDiv = appendNode(t, doc, body, "div", "width: 100px; height: 100px; overflow: scroll; position: absolute; top: 0; left: 0")
	f.tallDiv = appendNode(t, doc, f.scrollDiv, "div", "width: 200px; height: 200px")

	f.fixedDiv = appendNode(t, doc, body, "div", "width: 200px; height: 200px; position: fixed; top: 300px; left: 300px")
	f.fixedDivChild = appendNode(t, doc, f.fixedDiv, "div", "width: 50px; height: 50px")

	f.staticDiv = appendNode(t, doc, body, "div", "width: 50px; height: 50px")
	f.staticDivChild = appendNode(t, doc, f.staticDiv, "div", "width: 50px; height: 50px")

	f.table = appendNode(t, doc, body, "table", "")
	f.tbody = appendNode(t, doc, f.table, "tbody", "")
	f.tr = appendNode(t, doc, f.tbody, "tr", "")
	f.td = appendNode(t, doc, f.tr, "td", "")
	f.tdSpan = appendNode(t, doc, f.td, "span", "")
	f.tdDiv = appendNode(t, doc, f.td, "div", "position: relative")
	f.th = appendNode(t, doc, f.tr, "th", "")
	f.thSpan = appendNode(t, doc, f.th, "span", "")
	f.thDiv = appendNode(t, doc, f.th, "div", "position: relative")

	f.orphan = doc.CreateNode("div", computed("div", "position: absolute; top: 0; left: 0; width: 50px; height: 50px"))
	return f
}

func (f *dimensionsFixture) all() []geometry.NodeID {
	ids := make([]geometry.NodeID, 0, f.doc.Len())
	for i := 0; i < f.doc.Len(); i++ {
		ids = append(ids, geometry.NodeID(i))
	}
	return ids
}

// -- Test Cases --

func TestSize(t *testing.T) {
	f := newDimensionsFixture(t)

	assert.Equal(t, geometry.Point{X: 108, Y: 108}, f.r.Size(f.div))
	assert.Equal(t, geometry.Point{X: 62, Y: 62}, f.r.Size(f.relDiv))
	assert.Equal(t, geometry.Point{X: 22, Y: 22}, f.r.Size(f.absDiv))
	assert.Equal(t, geometry.Point{X: 50, Y: 50}, f.r.Size(f.orphan), "size does not depend on attachment")

	t.Run("additivity holds for every node", func(t *testing.T) {
		for _, id := range f.all() {
			cs := f.doc.Style(id)
			size := f.r.Size(id)
			assert.Equal(t, cs.Width+cs.Padding.Left+cs.Padding.Right+cs.Border.Left+cs.Border.Right, size.X)
			assert.Equal(t, cs.Height+cs.Padding.Top+cs.Padding.Bottom+cs.Border.Top+cs.Border.Bottom, size.Y)
		}
	})
}

func TestPosition(t *testing.T) {
	f := newDimensionsFixture(t)

	t.Run("document coordinates", func(t *testing.T) {
		assert.Equal(t, geometry.Point{X: 102, Y: 102}, f.r.Position(f.div, geometry.NoNode))
		// 102 + div border 1 + div padding 3 + relDiv margin 5.
		assert.Equal(t, geometry.Point{X: 111, Y: 111}, f.r.Position(f.relDiv, geometry.NoNode))
		// 111 + relDiv border 1 + absDiv margin 5 + top/left 10.
		assert.Equal(t, geometry.Point{X: 127, Y: 127}, f.r.Position(f.absDiv, geometry.NoNode))
	})

	t.Run("relative to an ancestor", func(t *testing.T) {
		assert.Equal(t, geometry.Point{X: 8, Y: 8}, f.r.Position(f.relDiv, f.div))
		assert.Equal(t, geometry.Point{X: 15, Y: 15}, f.r.Position(f.absDiv, f.relDiv))
		assert.Equal(t, geometry.Point{X: 24, Y: 24}, f.r.Position(f.absDiv, f.div))
	})

	t.Run("relative to itself", func(t *testing.T) {
		assert.Equal(t, geometry.Point{}, f.r.Position(f.div, f.div))
	})

	t.Run("relative to a non-ancestor", func(t *testing.T) {
		// div sits at 102; relDiv's padding edge at 112.
		assert.Equal(t, geometry.Point{X: -10, Y: -10}, f.r.Position(f.div, f.relDiv))
		assert.Equal(t, geometry.Point{X: 102, Y: 102}, f.r.Position(f.div, f.scrollDiv))
	})

	t.Run("fixed boxes ignore their ancestors", func(t *testing.T) {
		assert.Equal(t, geometry.Point{X: 300, Y: 300}, f.r.Position(f.fixedDiv, geometry.NoNode))
		assert.Equal(t, geometry.Point{X: 300, Y: 300}, f.r.Position(f.fixedDivChild, geometry.NoNode))
		assert.Equal(t, geometry.Point{}, f.r.Position(f.fixedDivChild, f.fixedDiv))
		assert.Equal(t, geometry.Point{X: 300, Y: 300}, f.r.Position(f.fixedDivChild, f.doc.Body()))
	})

	t.Run("orphans use their own frame", func(t *testing.T) {
		assert.Equal(t, geometry.Point{}, f.r.Position(f.orphan, geometry.NoNode))
	})

	t.Run("ancestor walk agrees with document subtraction", func(t *testing.T) {
		for _, id := range f.all() {
			for anc := f.doc.Parent(id); anc != geometry.NoNode; anc = f.doc.Parent(anc) {
				if f.doc.Style(id).Position == style.PositionFixed {
					continue
				}
				direct := f.r.Position(id, anc)
				b := f.doc.Style(anc).Border
				viaDocument := f.r.Position(id, geometry.NoNode).
					Sub(f.r.Position(anc, geometry.NoNode)).
					Sub(geometry.Point{X: b.Left, Y: b.Top})
				assert.Equal(t, viaDocument, direct, "node %d relative to %d", id, anc)
			}
		}
	})
}

func TestPosition_NestedPositionedScenario(t *testing.T) {
	f := newDimensionsFixture(t)
	before := f.r.Position(f.absDiv, f.relDiv)

	moved := f.doc.Style(f.div)
	moved.Offset.Left, moved.Offset.Top = 400, 250
	f.doc.SetStyle(f.div, moved)

	assert.Equal(t, before, f.r.Position(f.absDiv, f.relDiv), "outer placement must not leak into the relative offset")
	assert.Equal(t, geometry.Point{X: 402, Y: 252}, f.r.Position(f.div, geometry.NoNode))
}

func TestCoordinates(t *testing.T) {
	f := newDimensionsFixture(t)

	want := geometry.Coordinates{Left: 15, Top: 15, Width: 22, Height: 22, Right: 37, Bottom: 37}
	if diff := cmp.Diff(want, f.r.Coordinates(f.absDiv, f.relDiv)); diff != "" {
		t.Errorf("coordinates mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff(geometry.Coordinates{Width: 108, Height: 108, Right: 108, Bottom: 108}, f.r.Coordinates(f.div, f.div)); diff != "" {
		t.Errorf("self-relative coordinates mismatch (-want +got):\n%s", diff)
	}

	t.Run("consistent with position and size", func(t *testing.T) {
		for _, id := range f.all() {
			c := f.r.Coordinates(id, geometry.NoNode)
			pos := f.r.Position(id, geometry.NoNode)
			size := f.r.Size(id)
			assert.Equal(t, pos.X, c.Left)
			assert.Equal(t, pos.Y, c.Top)
			assert.Equal(t, size.X, c.Right-c.Left)
			assert.Equal(t, size.Y, c.Bottom-c.Top)
		}
	})
}

func TestScrollSize(t *testing.T) {
	f := newDimensionsFixture(t)

	assert.Equal(t, geometry.Point{X: 200, Y: 200}, f.r.ScrollSize(f.scrollDiv))
	assert.Equal(t, geometry.Point{X: 200, Y: 200}, f.r.ScrollSize(f.tallDiv), "no children: scroll size equals size")

	t.Run("never smaller than size", func(t *testing.T) {
		for _, id := range f.all() {
			ss, size := f.r.ScrollSize(id), f.r.Size(id)
			assert.GreaterOrEqual(t, ss.X, size.X)
			assert.GreaterOrEqual(t, ss.Y, size.Y)
		}
	})

	t.Run("own scroll offset is ignored", func(t *testing.T) {
		f.r.ScrollTo(f.scrollDiv, 50, 50)
		assert.Equal(t, geometry.Point{X: 200, Y: 200}, f.r.ScrollSize(f.scrollDiv))
	})

	t.Run("padding, border and child margins", func(t *testing.T) {
		doc := geometry.NewDocument(geometry.Viewport{Width: 800, Height: 600}, computed("html", ""), computed("body", ""))
		r := geometry.NewResolver(doc, nil)
		box := appendNode(t, doc, doc.Body(), "div", "width: 100px; height: 50px; padding: 10px; border: 2px solid; overflow: auto")
		appendNode(t, doc, box, "div", "width: 150px; height: 20px; margin-left: 30px")
		appendNode(t, doc, box, "div", "display: none; width: 900px; height: 900px")
		appendNode(t, doc, box, "div", "position: fixed; width: 900px; height: 900px")

		// Content extent 30 + 150 = 180 wide, 50 high; plus 2*10 padding and 2*2 border.
		assert.Equal(t, geometry.Point{X: 204, Y: 74}, r.ScrollSize(box))
		assert.Equal(t, geometry.Point{X: 80, Y: 0}, r.ScrollRange(box))
	})
}

func TestScrollTo(t *testing.T) {
	f := newDimensionsFixture(t)

	got := f.r.ScrollTo(f.scrollDiv, 20, 20)
	assert.Equal(t, f.scrollDiv, got, "ScrollTo returns the node for chaining")
	assert.Equal(t, geometry.Point{X: 20, Y: 20}, f.r.Scroll(f.scrollDiv))

	t.Run("clamps out of range targets", func(t *testing.T) {
		f.r.ScrollTo(f.scrollDiv, -50, 99999)
		assert.Equal(t, geometry.Point{X: 0, Y: 100}, f.r.Scroll(f.scrollDiv))
	})

	t.Run("boxes that do not clip stay at zero", func(t *testing.T) {
		f.r.ScrollTo(f.staticDiv, 10, 10)
		assert.Equal(t, geometry.Point{}, f.r.Scroll(f.staticDiv))
	})

	t.Run("moves descendants only", func(t *testing.T) {
		f.r.ScrollTo(f.scrollDiv, 0, 0)
		scrollerBefore := f.r.Position(f.scrollDiv, geometry.NoNode)
		childBefore := f.r.Position(f.tallDiv, geometry.NoNode)
		siblingBefore := f.r.Position(f.div, geometry.NoNode)

		f.r.ScrollTo(f.scrollDiv, 30, 45)

		assert.Equal(t, childBefore.Sub(geometry.Point{X: 30, Y: 45}), f.r.Position(f.tallDiv, geometry.NoNode))
		assert.Equal(t, geometry.Point{X: -30, Y: -45}, f.r.Position(f.tallDiv, f.scrollDiv))
		assert.Equal(t, scrollerBefore, f.r.Position(f.scrollDiv, geometry.NoNode))
		assert.Equal(t, siblingBefore, f.r.Position(f.div, geometry.NoNode))
	})
}

func TestScrollViewport(t *testing.T) {
	doc := geometry.NewDocument(geometry.Viewport{Width: 800, Height: 600}, computed("html", ""), computed("body", "height: 2000px"))
	r := geometry.NewResolver(doc, nil)
	fixed := appendNode(t, doc, doc.Body(), "div", "position: fixed; top: 10px; left: 10px")
	static := appendNode(t, doc, doc.Body(), "div", "margin-top: 40px")

	assert.Equal(t, geometry.Point{X: 800, Y: 2000}, r.ViewportScrollSize())
	assert.Equal(t, geometry.Point{X: 0, Y: 1400}, r.ScrollViewport(50, 5000))
	assert.Equal(t, geometry.Point{X: 10, Y: 1410}, r.Position(fixed, geometry.NoNode))
	assert.Equal(t, geometry.Point{X: 0, Y: 40}, r.Position(static, geometry.NoNode))
}

func TestOffsetParent(t *testing.T) {
	f := newDimensionsFixture(t)
	body := f.doc.Body()

	t.Run("root, body, fixed and orphan nodes have none", func(t *testing.T) {
		assert.Equal(t, geometry.NoNode, f.r.OffsetParent(f.doc.Root()))
		assert.Equal(t, geometry.NoNode, f.r.OffsetParent(body))
		assert.Equal(t, geometry.NoNode, f.r.OffsetParent(f.fixedDiv))
		assert.Equal(t, geometry.NoNode, f.r.OffsetParent(f.orphan))
	})

	t.Run("body is the last option", func(t *testing.T) {
		assert.Equal(t, body, f.r.OffsetParent(f.div))
		assert.Equal(t, body, f.r.OffsetParent(f.staticDivChild))
		assert.Equal(t, body, f.r.OffsetParent(f.scrollDiv))
	})

	t.Run("nearest positioned ancestor wins", func(t *testing.T) {
		assert.Equal(t, f.div, f.r.OffsetParent(f.relDiv))
		assert.Equal(t, f.relDiv, f.r.OffsetParent(f.absDiv))
		assert.Equal(t, f.fixedDiv, f.r.OffsetParent(f.fixedDivChild))
		assert.Equal(t, f.scrollDiv, f.r.OffsetParent(f.tallDiv))
	})

	t.Run("static nodes stop at tables and cells", func(t *testing.T) {
		assert.Equal(t, f.table, f.r.OffsetParent(f.tr))
		assert.Equal(t, f.table, f.r.OffsetParent(f.td))
		assert.Equal(t, f.table, f.r.OffsetParent(f.th))
		assert.Equal(t, f.td, f.r.OffsetParent(f.tdSpan))
		assert.Equal(t, f.th, f.r.OffsetParent(f.thSpan))
	})

	t.Run("positioned nodes skip tables and cells", func(t *testing.T) {
		assert.Equal(t, body, f.r.OffsetParent(f.tdDiv))
		assert.Equal(t, body, f.r.OffsetParent(f.thDiv))
	})

	t.Run("positioned cell", func(t *testing.T) {
		cs := f.doc.Style(f.td)
		cs.Position = style.PositionRelative
		f.doc.SetStyle(f.td, cs)

		assert.Equal(t, body, f.r.OffsetParent(f.td), "a positioned cell resolves by the positioned rule")
		assert.Equal(t, f.td, f.r.OffsetParent(f.tdDiv), "a positioned cell is an offset parent for positioned children")
		assert.Equal(t, f.td, f.r.OffsetParent(f.tdSpan))
	})

	t.Run("detached subtree", func(t *testing.T) {
		f.doc.Detach(f.staticDiv)
		assert.False(t, f.doc.Attached(f.staticDivChild))
		assert.Equal(t, geometry.NoNode, f.r.OffsetParent(f.staticDivChild))
		assert.Equal(t, geometry.Point{}, f.r.Position(f.staticDiv, geometry.NoNode))
		// staticDiv has no padding and staticDivChild no margin.
		assert.Equal(t, geometry.Point{}, f.r.Position(f.staticDivChild, geometry.NoNode))
		assert.Equal(t, geometry.Point{}, f.r.Position(f.staticDivChild, f.staticDiv))
	})
}

func TestOffset(t *testing.T) {
	f := newDimensionsFixture(t)

	assert.Equal(t, geometry.Point{X: 15, Y: 15}, f.r.Offset(f.absDiv))
	assert.Equal(t, geometry.Point{X: 8, Y: 8}, f.r.Offset(f.relDiv))
	assert.Equal(t, geometry.Point{X: 102, Y: 102}, f.r.Offset(f.div))
	assert.Equal(t, geometry.Point{X: 300, Y: 300}, f.r.Offset(f.fixedDiv))
}

func TestReadsAreIdempotent(t *testing.T) {
	f := newDimensionsFixture(t)
	f.r.ScrollTo(f.scrollDiv, 12, 7)

	for _, id := range f.all() {
		assert.Equal(t, f.r.Size(id), f.r.Size(id))
		assert.Equal(t, f.r.Position(id, geometry.NoNode), f.r.Position(id, geometry.NoNode))
		assert.Equal(t, f.r.Coordinates(id, f.div), f.r.Coordinates(id, f.div))
		assert.Equal(t, f.r.ScrollSize(id), f.r.ScrollSize(id))
		assert.Equal(t, f.r.OffsetParent(id), f.r.OffsetParent(id))
	}
}

func TestInvalidHandles(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	doc := geometry.NewDocument(geometry.Viewport{}, style.ComputedStyle{}, style.ComputedStyle{})
	r := geometry.NewResolver(doc, zap.New(core))

	assert.Equal(t, geometry.Point{}, r.Size(42))
	assert.Equal(t, geometry.Point{}, r.Position(geometry.NoNode, geometry.NoNode))
	assert.Equal(t, geometry.Point{}, r.Position(doc.Body(), 42), "unknown relativeTo falls back to the document")
	assert.Equal(t, geometry.NoNode, r.OffsetParent(-7))
	assert.Equal(t, geometry.NodeID(99), r.ScrollTo(99, 1, 1))

	entries := logs.FilterMessage("Invalid node handle").All()
	require.Len(t, entries, 5)
	assert.Equal(t, "geometry", entries[0].LoggerName)
}
