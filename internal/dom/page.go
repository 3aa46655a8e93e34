// internal/dom/page.go
package dom

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/antchfx/htmlquery"
	"github.com/google/uuid"
	"github.com/xkilldash9x/boxgeom/api/schemas"
	"github.com/xkilldash9x/boxgeom/internal/geometry"
	"github.com/xkilldash9x/boxgeom/internal/style"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// ErrNotFound is returned when an XPath expression selects no rendered
// element.
var ErrNotFound = errors.New("no matching element")

// Options controls how a document is turned into a box tree.
type Options struct {
	// Source names the document in reports and logs.
	Source   string
	Viewport geometry.Viewport
	// FontSize is the font size the root element inherits.
	FontSize float64
	// RootFontSize is the rem reference used when the root element does not
	// declare a font size of its own.
	RootFontSize float64
	Logger       *zap.Logger
}

// Page is a parsed HTML document together with its box tree.
type Page struct {
	ID       uuid.UUID
	Source   string
	Doc      *geometry.Document
	Resolver *geometry.Resolver

	root   *html.Node
	ids    map[*html.Node]geometry.NodeID
	nodes  map[geometry.NodeID]*html.Node
	ctx    style.Context
	logger *zap.Logger
}

// Load parses HTML from r and builds the box tree. The html element becomes
// the root and body the body; every other element below them becomes a node
// in document order. Text, comments and the head subtree are not rendered.
func Load(r io.Reader, opts Options) (*Page, error) {
	doc, err := htmlquery.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML from '%s': %w", opts.Source, err)
	}
	htmlNode := htmlquery.FindOne(doc, "/html")
	bodyNode := htmlquery.FindOne(doc, "/html/body")
	if htmlNode == nil || bodyNode == nil {
		// The HTML parser synthesises both, so this only happens for
		// frameset documents.
		return nil, fmt.Errorf("document '%s' has no body element", opts.Source)
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.FontSize <= 0 {
		opts.FontSize = style.BaseFontSize
	}
	if opts.RootFontSize <= 0 {
		opts.RootFontSize = opts.FontSize
	}

	id := uuid.New()
	p := &Page{
		ID:     id,
		Source: opts.Source,
		root:   doc,
		ids:    make(map[*html.Node]geometry.NodeID),
		nodes:  make(map[geometry.NodeID]*html.Node),
		logger: logger.Named("dom").With(zap.String("page_id", id.String())),
	}

	vp := opts.Viewport
	base := style.Context{
		ParentWidth:    vp.Width,
		ParentHeight:   vp.Height,
		FontSize:       opts.FontSize,
		RootFontSize:   opts.RootFontSize,
		ViewportWidth:  vp.Width,
		ViewportHeight: vp.Height,
	}

	htmlDecls := declarations(htmlNode)
	rootFont, declared := fontSize(htmlDecls, base)
	if declared {
		base.RootFontSize = rootFont
	}
	htmlCtx := base
	htmlCtx.FontSize = rootFont
	htmlStyle := style.Compute("html", htmlDecls, htmlCtx)

	bodyDecls := declarations(bodyNode)
	bodyCtx := childContext(base, htmlStyle, rootFont)
	bodyFont, _ := fontSize(bodyDecls, bodyCtx)
	bodyCtx.FontSize = bodyFont
	bodyStyle := style.Compute("body", bodyDecls, bodyCtx)

	p.Doc = geometry.NewDocument(vp, htmlStyle, bodyStyle)
	p.Resolver = geometry.NewResolver(p.Doc, logger)
	p.ctx = base
	p.bind(htmlNode, p.Doc.Root())
	p.bind(bodyNode, p.Doc.Body())

	if err := p.build(htmlNode, p.Doc.Root(), htmlStyle, rootFont); err != nil {
		return nil, err
	}

	p.logger.Debug("Document loaded",
		zap.String("source", opts.Source),
		zap.Int("nodes", p.Doc.Len()),
	)
	return p, nil
}

func (p *Page) bind(n *html.Node, id geometry.NodeID) {
	p.ids[n] = id
	p.nodes[id] = n
}

// build appends the element children of n below parent, depth first.
func (p *Page) build(n *html.Node, parent geometry.NodeID, parentStyle style.ComputedStyle, parentFont float64) error {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || strings.EqualFold(c.Data, "head") {
			continue
		}

		// body already exists; only its subtree needs building.
		if id, ok := p.ids[c]; ok {
			cs := p.Doc.Style(id)
			ctx := childContext(p.ctx, parentStyle, parentFont)
			font, _ := fontSize(declarations(c), ctx)
			if err := p.build(c, id, cs, font); err != nil {
				return err
			}
			continue
		}

		tag := strings.ToLower(c.Data)
		decls := declarations(c)
		ctx := childContext(p.ctx, parentStyle, parentFont)
		font, _ := fontSize(decls, ctx)
		ctx.FontSize = font
		cs := style.Compute(tag, decls, ctx)

		id := p.Doc.CreateNode(tag, cs)
		if err := p.Doc.Append(parent, id); err != nil {
			return fmt.Errorf("failed to attach <%s>: %w", tag, err)
		}
		p.bind(c, id)

		if err := p.build(c, id, cs, font); err != nil {
			return err
		}
	}
	return nil
}

// childContext returns the style context for children of a box with the
// given computed style and font size.
func childContext(base style.Context, parent style.ComputedStyle, parentFont float64) style.Context {
	ctx := base
	ctx.ParentWidth = parent.Width
	ctx.ParentHeight = parent.Height
	ctx.FontSize = parentFont
	return ctx
}

func declarations(n *html.Node) []style.Declaration {
	return style.ParseDeclarations(htmlquery.SelectAttr(n, "style"))
}

// fontSize resolves the font-size declaration of an element against the
// inherited size in ctx. It reports whether one was declared.
func fontSize(decls []style.Declaration, ctx style.Context) (float64, bool) {
	var value string
	important, declared := false, false
	for _, d := range decls {
		if d.Property != "font-size" || (important && !d.Important) {
			continue
		}
		value, important, declared = d.Value, d.Important, true
	}
	if !declared {
		return ctx.FontSize, false
	}
	size := ctx.Length(value, ctx.FontSize)
	if size <= 0 {
		return ctx.FontSize, false
	}
	return size, true
}

// Query returns the node selected by the first match of expr.
func (p *Page) Query(expr string) (geometry.NodeID, error) {
	n, err := htmlquery.Query(p.root, expr)
	if err != nil {
		return geometry.NoNode, fmt.Errorf("invalid xpath '%s': %w", expr, err)
	}
	if n == nil {
		return geometry.NoNode, fmt.Errorf("%w for '%s'", ErrNotFound, expr)
	}
	id, ok := p.ids[n]
	if !ok {
		return geometry.NoNode, fmt.Errorf("%w for '%s': <%s> is not rendered", ErrNotFound, expr, n.Data)
	}
	return id, nil
}

// QueryAll returns every rendered node selected by expr, in document order.
// Matches that are not rendered (text, head content) are skipped.
func (p *Page) QueryAll(expr string) ([]geometry.NodeID, error) {
	matches, err := htmlquery.QueryAll(p.root, expr)
	if err != nil {
		return nil, fmt.Errorf("invalid xpath '%s': %w", expr, err)
	}
	ids := make([]geometry.NodeID, 0, len(matches))
	for _, n := range matches {
		if id, ok := p.ids[n]; ok {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w for '%s'", ErrNotFound, expr)
	}
	return ids, nil
}

// CreateElement adds a detached node whose style comes from styleAttr.
// Relative lengths resolve against the viewport. Attach it with
// Doc.Append to place it in the tree.
func (p *Page) CreateElement(tag, styleAttr string) geometry.NodeID {
	tag = strings.ToLower(tag)
	decls := style.ParseDeclarations(styleAttr)
	ctx := p.ctx
	ctx.FontSize, _ = fontSize(decls, ctx)
	id := p.Doc.CreateNode(tag, style.Compute(tag, decls, ctx))
	p.logger.Debug("Created detached element", zap.String("tag", tag), zap.Int("node", int(id)))
	return id
}

// XPath returns a unique XPath for a node that came from the parsed
// document, or "" for created elements and invalid handles.
func (p *Page) XPath(id geometry.NodeID) string {
	return UniqueXPath(p.nodes[id])
}

// Describe reports the geometry of id. Coordinates are measured from the
// padding edge of relativeTo, or in document coordinates when relativeTo is
// geometry.NoNode.
func (p *Page) Describe(id, relativeTo geometry.NodeID) schemas.ElementGeometry {
	r := p.Resolver
	c := r.Coordinates(id, relativeTo)
	rect := schemas.Rect{
		Left: c.Left, Top: c.Top,
		Width: c.Width, Height: c.Height,
		Right: c.Right, Bottom: c.Bottom,
	}
	cs := p.Doc.Style(id)

	report := schemas.ElementGeometry{
		NodeRef:     p.ref(id),
		Vertices:    schemas.QuadFromRect(rect),
		Coordinates: rect,
		Size:        point(r.Size(id)),
		ScrollSize:  point(r.ScrollSize(id)),
		Scroll:      point(r.Scroll(id)),
		Offset:      point(r.Offset(id)),
		Position:    cs.Position.String(),
		Display:     cs.Display.String(),
		Attached:    p.Doc.Attached(id),
	}
	if relativeTo != geometry.NoNode && p.Doc.Valid(relativeTo) {
		ref := p.ref(relativeTo)
		report.RelativeTo = &ref
	}
	if op := r.OffsetParent(id); op != geometry.NoNode {
		ref := p.ref(op)
		report.OffsetParent = &ref
	}
	return report
}

// Report collects Describe results for ids into a page report.
func (p *Page) Report(ids []geometry.NodeID, relativeTo geometry.NodeID) schemas.PageReport {
	vp := p.Doc.Viewport()
	report := schemas.PageReport{
		PageID: p.ID.String(),
		Source: p.Source,
		Viewport: schemas.Rect{
			Left: vp.ScrollX, Top: vp.ScrollY,
			Width: vp.Width, Height: vp.Height,
			Right: vp.ScrollX + vp.Width, Bottom: vp.ScrollY + vp.Height,
		},
		ViewportScroll: schemas.Point{X: vp.ScrollX, Y: vp.ScrollY},
		Elements:       make([]schemas.ElementGeometry, 0, len(ids)),
	}
	for _, id := range ids {
		report.Elements = append(report.Elements, p.Describe(id, relativeTo))
	}
	return report
}

func (p *Page) ref(id geometry.NodeID) schemas.NodeRef {
	return schemas.NodeRef{
		Node:    int(id),
		TagName: strings.ToUpper(p.Doc.Tag(id)),
		XPath:   p.XPath(id),
	}
}

func point(pt geometry.Point) schemas.Point {
	return schemas.Point{X: pt.X, Y: pt.Y}
}
