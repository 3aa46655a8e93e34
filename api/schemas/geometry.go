package schemas

// -- Geometry Report Schemas --

// Point is an (x, y) pair in CSS pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is a border-box rectangle.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
}

// NodeRef identifies an element inside a page.
type NodeRef struct {
	Node    int    `json:"node"`
	TagName string `json:"tagName"`
	XPath   string `json:"xpath,omitempty"`
}

// ElementGeometry is the geometry report for a single element.
type ElementGeometry struct {
	NodeRef
	// Border-box quad, clockwise from the top-left corner:
	// x1,y1, x2,y2, x3,y3, x4,y4.
	Vertices    []float64 `json:"vertices"`
	Coordinates Rect      `json:"coordinates"`
	Size        Point     `json:"size"`
	ScrollSize  Point     `json:"scrollSize"`
	Scroll      Point     `json:"scroll"`
	Offset      Point     `json:"offset"`
	Position    string    `json:"position"`
	Display     string    `json:"display"`
	Attached    bool      `json:"attached"`
	// RelativeTo is the element the coordinates are measured from; absent
	// for document coordinates.
	RelativeTo   *NodeRef `json:"relativeTo,omitempty"`
	OffsetParent *NodeRef `json:"offsetParent,omitempty"`
}

// PageReport groups the element reports of one loaded document.
type PageReport struct {
	PageID         string            `json:"pageId"`
	Source         string            `json:"source,omitempty"`
	Viewport       Rect              `json:"viewport"`
	ViewportScroll Point             `json:"viewportScroll"`
	Elements       []ElementGeometry `json:"elements"`
}

// QuadFromRect returns the clockwise vertex list of r.
func QuadFromRect(r Rect) []float64 {
	return []float64{
		r.Left, r.Top,
		r.Right, r.Top,
		r.Right, r.Bottom,
		r.Left, r.Bottom,
	}
}
