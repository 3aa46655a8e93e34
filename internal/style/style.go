// internal/style/style.go
package style

import (
	"strings"
)

// -- Constants and Configuration --

const (
	BaseFontSize = 16.0 // Default root font size.
)

// -- Box Edges --

// Edges holds a value for each side of a box.
type Edges struct {
	Top, Right, Bottom, Left float64
}

// Horizontal returns Left + Right.
func (e Edges) Horizontal() float64 { return e.Left + e.Right }

// Vertical returns Top + Bottom.
func (e Edges) Vertical() float64 { return e.Top + e.Bottom }

// -- Computed Style Enumerations --

type PositionType int

const (
	PositionStatic PositionType = iota
	PositionRelative
	PositionAbsolute
	PositionFixed
)

func (p PositionType) String() string {
	switch p {
	case PositionRelative:
		return "relative"
	case PositionAbsolute:
		return "absolute"
	case PositionFixed:
		return "fixed"
	default:
		return "static"
	}
}

// ParsePosition maps a CSS position keyword. Unknown keywords are static.
func ParsePosition(value string) PositionType {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "relative":
		return PositionRelative
	case "absolute":
		return PositionAbsolute
	case "fixed":
		return PositionFixed
	default:
		return PositionStatic
	}
}

type DisplayType int

const (
	DisplayInline DisplayType = iota
	DisplayBlock
	DisplayInlineBlock
	DisplayFlex
	DisplayGrid
	DisplayTable
	DisplayTableRow
	DisplayTableCell
	DisplayNone
)

func (d DisplayType) String() string {
	switch d {
	case DisplayBlock:
		return "block"
	case DisplayInlineBlock:
		return "inline-block"
	case DisplayFlex:
		return "flex"
	case DisplayGrid:
		return "grid"
	case DisplayTable:
		return "table"
	case DisplayTableRow:
		return "table-row"
	case DisplayTableCell:
		return "table-cell"
	case DisplayNone:
		return "none"
	default:
		return "inline"
	}
}

// ParseDisplay maps a CSS display keyword. The second return value is false
// when the keyword is not recognised.
func ParseDisplay(value string) (DisplayType, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "block", "list-item":
		return DisplayBlock, true
	case "inline":
		return DisplayInline, true
	case "inline-block":
		return DisplayInlineBlock, true
	case "flex":
		return DisplayFlex, true
	case "grid":
		return DisplayGrid, true
	case "table":
		return DisplayTable, true
	case "table-row", "table-row-group", "table-header-group", "table-footer-group":
		return DisplayTableRow, true
	case "table-cell":
		return DisplayTableCell, true
	case "none":
		return DisplayNone, true
	}
	return DisplayInline, false
}

// DefaultDisplay returns the display type an element gets when its style
// does not set one.
func DefaultDisplay(tag string) DisplayType {
	switch strings.ToLower(tag) {
	case "html", "body", "div", "p", "h1", "h2", "h3", "h4", "h5", "h6",
		"ul", "ol", "li", "form", "header", "footer", "section", "article", "nav", "main":
		return DisplayBlock
	case "table":
		return DisplayTable
	case "tbody", "thead", "tfoot", "tr":
		return DisplayTableRow
	case "td", "th":
		return DisplayTableCell
	case "input", "button", "textarea", "select", "img":
		return DisplayInlineBlock
	case "head", "script", "style", "template":
		return DisplayNone
	default:
		return DisplayInline
	}
}

type OverflowType int

const (
	OverflowVisible OverflowType = iota
	OverflowHidden
	OverflowScroll
	OverflowAuto
)

// ParseOverflow maps a CSS overflow keyword. "clip" is treated as hidden.
func ParseOverflow(value string) OverflowType {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "hidden", "clip":
		return OverflowHidden
	case "scroll":
		return OverflowScroll
	case "auto":
		return OverflowAuto
	default:
		return OverflowVisible
	}
}

// Clips reports whether content outside the padding box is clipped and
// reachable by scrolling.
func (o OverflowType) Clips() bool {
	return o != OverflowVisible
}

// -- Computed Style --

// ComputedStyle carries the resolved values the geometry resolver reads.
// Width and Height describe the content box.
type ComputedStyle struct {
	Width, Height float64

	Margin  Edges
	Border  Edges
	Padding Edges
	// Offset holds the explicit top/right/bottom/left properties.
	Offset Edges

	Position PositionType
	Display  DisplayType
	Overflow OverflowType
}

// IsPositioned reports whether the position scheme is anything but static.
func (cs ComputedStyle) IsPositioned() bool {
	return cs.Position != PositionStatic
}

// IsTableBoundary reports whether the box acts as an offset parent for
// static descendants regardless of its position scheme.
func (cs ComputedStyle) IsTableBoundary() bool {
	return cs.Display == DisplayTableCell || cs.Display == DisplayTable
}
