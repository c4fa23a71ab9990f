package flow

import (
	"fmt"
	"io"
	"math"

	svg "github.com/ajstarks/svgo"
)

// SVGCanvas draws onto an SVG document.
type SVGCanvas struct {
	doc *svg.SVG
}

// NewSVGCanvas returns a Canvas writing SVG markup to w.
func NewSVGCanvas(w io.Writer) *SVGCanvas {
	return &SVGCanvas{doc: svg.New(w)}
}

func px(v float64) int { return int(math.Round(v)) }

func pxs(vs []float64) []int {
	out := make([]int, len(vs))
	for i, v := range vs {
		out[i] = px(v)
	}
	return out
}

func (c *SVGCanvas) Begin(width, height int) {
	c.doc.Start(width, height)
	c.doc.Rect(0, 0, width, height, "fill:#f9fafb")
}

func (c *SVGCanvas) End() { c.doc.End() }

func (c *SVGCanvas) PushTransform(scale, offsetX, offsetY float64) {
	c.doc.Gtransform(fmt.Sprintf("translate(%g,%g) scale(%g)", offsetX, offsetY, scale))
}

func (c *SVGCanvas) PopTransform() { c.doc.Gend() }

func (c *SVGCanvas) Line(x1, y1, x2, y2 float64, stroke string, width float64) {
	c.doc.Line(px(x1), px(y1), px(x2), px(y2), fmt.Sprintf("stroke:%s;stroke-width:%g", stroke, width))
}

func (c *SVGCanvas) Polygon(xs, ys []float64, fill string) {
	c.doc.Polygon(pxs(xs), pxs(ys), "fill:"+fill)
}

func (c *SVGCanvas) Rect(x, y, w, h float64, fill string) {
	c.doc.Rect(px(x), px(y), px(w), px(h), "fill:"+fill)
}

func (c *SVGCanvas) RoundRect(x, y, w, h, r float64, fill string) {
	c.doc.Roundrect(px(x), px(y), px(w), px(h), px(r), px(r), "fill:"+fill)
}

func (c *SVGCanvas) Text(x, y float64, s string, size float64, fill string) {
	c.doc.Text(px(x), px(y), s, fmt.Sprintf(
		"text-anchor:middle;dominant-baseline:middle;font-family:Inter,sans-serif;font-size:%gpx;fill:%s", size, fill))
}

// RenderSVG renders s as a complete SVG document of the given size.
func RenderSVG(w io.Writer, s *Scene, width, height int) {
	Render(NewSVGCanvas(w), s, width, height)
}
