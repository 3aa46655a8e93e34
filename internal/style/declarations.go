// internal/style/declarations.go
package style

import (
	"math"
	"strconv"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// Declaration is a single property/value pair from a style attribute.
type Declaration struct {
	Property  string
	Value     string
	Important bool
}

// ParseDeclarations tokenizes an inline style attribute into declarations,
// in source order. Malformed entries and custom properties are skipped.
func ParseDeclarations(styleAttr string) []Declaration {
	var decls []Declaration
	parser := css.NewParser(parse.NewInputString(styleAttr), true)
	for {
		gt, _, data := parser.Next()
		switch gt {
		case css.ErrorGrammar:
			if parser.HasParseError() {
				continue
			}
			return decls
		case css.DeclarationGrammar:
			if d, ok := declaration(string(data), parser.Values()); ok {
				decls = append(decls, d)
			}
		}
	}
}

func declaration(prop string, values []css.Token) (Declaration, bool) {
	var sb strings.Builder
	for _, v := range values {
		sb.Write(v.Data)
	}
	val := strings.TrimSpace(sb.String())
	important := false
	if strings.HasSuffix(strings.ToLower(val), "!important") {
		important = true
		val = strings.TrimSpace(val[:len(val)-len("!important")])
	}
	if prop == "" || val == "" {
		return Declaration{}, false
	}
	return Declaration{Property: prop, Value: val, Important: important}, true
}

// Context supplies the reference dimensions needed to resolve relative
// lengths.
type Context struct {
	// Content box of the parent, the reference for percentages.
	ParentWidth, ParentHeight float64
	FontSize, RootFontSize    float64
	ViewportWidth             float64
	ViewportHeight            float64
}

// Length resolves value against reference for percentages.
func (c Context) Length(value string, reference float64) float64 {
	fontSize, rootFontSize := c.FontSize, c.RootFontSize
	if fontSize == 0 {
		fontSize = BaseFontSize
	}
	if rootFontSize == 0 {
		rootFontSize = BaseFontSize
	}
	return ParseLengthWithUnits(value, fontSize, rootFontSize, reference, c.ViewportWidth, c.ViewportHeight)
}

type declared struct {
	value     string
	important bool
}

// longhands collects declarations into longhand properties, expanding
// shorthands at the point they appear so that later declarations win.
type longhands map[string]declared

func (l longhands) set(prop, value string, important bool) {
	if prev, ok := l[prop]; ok && prev.important && !important {
		return
	}
	l[prop] = declared{value: value, important: important}
}

func (l longhands) get(prop string) (string, bool) {
	d, ok := l[prop]
	return d.value, ok
}

var sides = [4]string{"top", "right", "bottom", "left"}

func (l longhands) add(d Declaration) {
	switch d.Property {
	case "margin", "padding":
		l.expand1To4(d, d.Property+"-%s")
	case "border-width":
		l.expand1To4(d, "border-%s-width")
	case "border":
		width := borderShorthandWidth(d.Value)
		for _, side := range sides {
			l.set("border-"+side+"-width", width, d.Important)
		}
	case "border-top", "border-right", "border-bottom", "border-left":
		l.set(d.Property+"-width", borderShorthandWidth(d.Value), d.Important)
	case "inset":
		l.expand1To4(d, "%s")
	case "overflow":
		parts := strings.Fields(d.Value)
		if len(parts) == 0 {
			return
		}
		l.set("overflow-x", parts[0], d.Important)
		l.set("overflow-y", parts[len(parts)-1], d.Important)
	default:
		l.set(d.Property, d.Value, d.Important)
	}
}

func (l longhands) expand1To4(d Declaration, pattern string) {
	parts := strings.Fields(d.Value)
	var vals [4]string
	switch len(parts) {
	case 1:
		vals = [4]string{parts[0], parts[0], parts[0], parts[0]}
	case 2:
		vals = [4]string{parts[0], parts[1], parts[0], parts[1]}
	case 3:
		vals = [4]string{parts[0], parts[1], parts[2], parts[1]}
	case 4:
		vals = [4]string{parts[0], parts[1], parts[2], parts[3]}
	default:
		return
	}
	for i, side := range sides {
		l.set(strings.Replace(pattern, "%s", side, 1), vals[i], d.Important)
	}
}

// borderShorthandWidth extracts the width component of a border shorthand.
// A border whose style is none or hidden has zero width.
func borderShorthandWidth(value string) string {
	width, lineStyle := "medium", "none"
	foundWidth, foundStyle := false, false
	for _, part := range strings.Fields(strings.ToLower(value)) {
		switch {
		case !foundStyle && isBorderStyle(part):
			lineStyle = part
			foundStyle = true
		case !foundWidth && (part == "thin" || part == "medium" || part == "thick" || startsNumeric(part)):
			width = part
			foundWidth = true
		}
	}
	if lineStyle == "none" || lineStyle == "hidden" {
		return "0"
	}
	return width
}

func isBorderStyle(s string) bool {
	switch s {
	case "none", "hidden", "solid", "dashed", "dotted", "double", "groove", "ridge", "inset", "outset":
		return true
	}
	return false
}

func startsNumeric(s string) bool {
	if s == "" {
		return false
	}
	c := s[0]
	return (c >= '0' && c <= '9') || c == '.' || c == '-' || c == '+'
}

func borderKeywordWidth(value string) (float64, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "thin":
		return 1, true
	case "medium":
		return 3, true
	case "thick":
		return 5, true
	}
	return 0, false
}

// Compute resolves the declarations of an element into a ComputedStyle.
// Values that are absent keep their initial value (zero lengths, static,
// visible) and display falls back to the tag default.
func Compute(tag string, decls []Declaration, ctx Context) ComputedStyle {
	l := make(longhands, len(decls))
	for _, d := range decls {
		l.add(d)
	}

	cs := ComputedStyle{Display: DefaultDisplay(tag)}

	if v, ok := l.get("display"); ok {
		if display, known := ParseDisplay(v); known {
			cs.Display = display
		}
	}
	if v, ok := l.get("position"); ok {
		cs.Position = ParsePosition(v)
	}
	for _, axis := range []string{"overflow-x", "overflow-y"} {
		if v, ok := l.get(axis); ok {
			if o := ParseOverflow(v); o.Clips() && !cs.Overflow.Clips() {
				cs.Overflow = o
			}
		}
	}

	length := func(prop string, reference float64) float64 {
		v, ok := l.get(prop)
		if !ok {
			return 0
		}
		return ctx.Length(v, reference)
	}
	nonNegative := func(v float64) float64 {
		if v < 0 {
			return 0
		}
		return v
	}

	cs.Width = nonNegative(length("width", ctx.ParentWidth))
	cs.Height = nonNegative(length("height", ctx.ParentHeight))

	// Percentages on margins and padding resolve against the containing
	// block's width on both axes.
	cs.Margin = Edges{
		Top:    length("margin-top", ctx.ParentWidth),
		Right:  length("margin-right", ctx.ParentWidth),
		Bottom: length("margin-bottom", ctx.ParentWidth),
		Left:   length("margin-left", ctx.ParentWidth),
	}
	cs.Padding = Edges{
		Top:    nonNegative(length("padding-top", ctx.ParentWidth)),
		Right:  nonNegative(length("padding-right", ctx.ParentWidth)),
		Bottom: nonNegative(length("padding-bottom", ctx.ParentWidth)),
		Left:   nonNegative(length("padding-left", ctx.ParentWidth)),
	}

	border := func(side string) float64 {
		v, ok := l.get("border-" + side + "-width")
		if !ok {
			return 0
		}
		if w, isKeyword := borderKeywordWidth(v); isKeyword {
			return w
		}
		return nonNegative(ctx.Length(v, 0))
	}
	cs.Border = Edges{Top: border("top"), Right: border("right"), Bottom: border("bottom"), Left: border("left")}

	cs.Offset = Edges{
		Top:    length("top", ctx.ParentHeight),
		Right:  length("right", ctx.ParentWidth),
		Bottom: length("bottom", ctx.ParentHeight),
		Left:   length("left", ctx.ParentWidth),
	}

	return cs
}

// ParseLengthWithUnits converts a CSS length to pixels. Unitless numbers are
// pixels; unknown, unparseable or non-finite values resolve to 0.
func ParseLengthWithUnits(value string, parentFontSize, rootFontSize, referenceDimension, viewportWidth, viewportHeight float64) float64 {
	px := lengthPixels(value, parentFontSize, rootFontSize, referenceDimension, viewportWidth, viewportHeight)
	// Unit conversion can overflow a finite number.
	if math.IsNaN(px) || math.IsInf(px, 0) {
		return 0.0
	}
	return px
}

func lengthPixels(value string, parentFontSize, rootFontSize, referenceDimension, viewportWidth, viewportHeight float64) float64 {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" || value == "auto" || value == "normal" {
		return 0.0
	}

	parseNumeric := func(s, suffix string) (float64, bool) {
		f, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(s, suffix)), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	}

	// Longer suffixes first so "rem" is not read as "em" and "vmin" not as "in".
	switch {
	case strings.HasSuffix(value, "%"):
		if percent, ok := parseNumeric(value, "%"); ok {
			return referenceDimension * (percent / 100.0)
		}
	case strings.HasSuffix(value, "px"):
		if px, ok := parseNumeric(value, "px"); ok {
			return px
		}
	case strings.HasSuffix(value, "rem"):
		if v, ok := parseNumeric(value, "rem"); ok {
			return v * rootFontSize
		}
	case strings.HasSuffix(value, "em"):
		if v, ok := parseNumeric(value, "em"); ok {
			return v * parentFontSize
		}
	case strings.HasSuffix(value, "vmin"):
		if v, ok := parseNumeric(value, "vmin"); ok {
			return min(viewportWidth, viewportHeight) * (v / 100.0)
		}
	case strings.HasSuffix(value, "vmax"):
		if v, ok := parseNumeric(value, "vmax"); ok {
			return max(viewportWidth, viewportHeight) * (v / 100.0)
		}
	case strings.HasSuffix(value, "vw"):
		if v, ok := parseNumeric(value, "vw"); ok {
			return viewportWidth * (v / 100.0)
		}
	case strings.HasSuffix(value, "vh"):
		if v, ok := parseNumeric(value, "vh"); ok {
			return viewportHeight * (v / 100.0)
		}
	case strings.HasSuffix(value, "pt"):
		if v, ok := parseNumeric(value, "pt"); ok {
			return v * 96.0 / 72.0
		}
	}
	if v, ok := parseNumeric(value, ""); ok {
		return v
	}
	return 0.0
}
