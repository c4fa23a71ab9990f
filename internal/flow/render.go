package flow

import (
	"math"
	"strings"

	"github.com/hyperengineering/devtrack/internal/types"
)

// PlaceholderText is drawn instead of an empty diagram.
const PlaceholderText = "No game flow yet. Add nodes from the admin panel."

const (
	edgeColor        = "#d1d5db"
	edgeWidth        = 2.0
	arrowLength      = 10.0
	labelColor       = "#5a5a5a"
	labelBackground  = "#ffffff"
	labelFontSize    = 12.0
	nodeRadius       = 8.0
	nodeTextColor    = "#ffffff"
	nodeFontSize     = 14.0
	captionFontSize  = 11.0
	placeholderColor = "#9ca3af"
	defaultNodeColor = "#2563eb"
)

// nodeColors fills nodes by their (lower-cased) type.
var nodeColors = map[string]string{
	"start":    "#16a34a",
	"end":      "#dc2626",
	"level":    "#2563eb",
	"menu":     "#7c3aed",
	"cutscene": "#d97706",
	"decision": "#0891b2",
	"boss":     "#be123c",
}

// NodeColor returns the fill color for a node type.
func NodeColor(nodeType string) string {
	if c, ok := nodeColors[strings.ToLower(strings.TrimSpace(nodeType))]; ok {
		return c
	}
	return defaultNodeColor
}

// Canvas is an immediate-mode 2-D drawing surface. Coordinates passed
// between PushTransform and PopTransform are in world units.
type Canvas interface {
	Begin(width, height int)
	End()
	PushTransform(scale, offsetX, offsetY float64)
	PopTransform()
	Line(x1, y1, x2, y2 float64, stroke string, width float64)
	Polygon(xs, ys []float64, fill string)
	Rect(x, y, w, h float64, fill string)
	RoundRect(x, y, w, h, r float64, fill string)
	// Text draws s centered horizontally and vertically on (x, y).
	Text(x, y float64, s string, size float64, fill string)
}

// Render clears c and redraws the whole scene.
func Render(c Canvas, s *Scene, width, height int) {
	c.Begin(width, height)
	defer c.End()

	if len(s.Nodes) == 0 {
		c.Text(float64(width)/2, float64(height)/2, PlaceholderText, 16, placeholderColor)
		return
	}

	c.PushTransform(s.View.Scale, s.View.OffsetX, s.View.OffsetY)
	defer c.PopTransform()

	byID := make(map[string]types.FlowNode, len(s.Nodes))
	for _, n := range s.Nodes {
		byID[n.ID] = n
	}

	for _, conn := range s.Connections {
		from, ok := byID[conn.From]
		if !ok {
			continue
		}
		to, ok := byID[conn.To]
		if !ok {
			continue
		}
		drawConnection(c, from, to, conn.Label)
	}

	for _, n := range s.Nodes {
		drawNode(c, n)
	}
}

func drawConnection(c Canvas, from, to types.FlowNode, label *string) {
	dx, dy := to.X-from.X, to.Y-from.Y
	if dx == 0 && dy == 0 {
		return
	}

	c.Line(from.X, from.Y, to.X, to.Y, edgeColor, edgeWidth)

	// The destination box is drawn over the line, so the head sits on its border.
	tipX, tipY := borderPoint(to, -dx, -dy)

	angle := math.Atan2(dy, dx)
	c.Polygon(
		[]float64{
			tipX,
			tipX - arrowLength*math.Cos(angle-math.Pi/6),
			tipX - arrowLength*math.Cos(angle+math.Pi/6),
		},
		[]float64{
			tipY,
			tipY - arrowLength*math.Sin(angle-math.Pi/6),
			tipY - arrowLength*math.Sin(angle+math.Pi/6),
		},
		edgeColor,
	)

	if label != nil && *label != "" {
		midX, midY := (from.X+to.X)/2, (from.Y+to.Y)/2
		w := float64(len([]rune(*label)))*labelFontSize*0.6 + 8
		h := labelFontSize + 6
		c.Rect(midX-w/2, midY-h/2, w, h, labelBackground)
		c.Text(midX, midY, *label, labelFontSize, labelColor)
	}
}

// borderPoint returns where the ray from n's center in direction (dx, dy)
// leaves n's box.
func borderPoint(n types.FlowNode, dx, dy float64) (float64, float64) {
	t := math.Inf(1)
	if dx != 0 {
		t = (NodeWidth / 2) / math.Abs(dx)
	}
	if dy != 0 {
		t = math.Min(t, (NodeHeight/2)/math.Abs(dy))
	}
	return n.X + dx*t, n.Y + dy*t
}

func drawNode(c Canvas, n types.FlowNode) {
	c.RoundRect(n.X-NodeWidth/2, n.Y-NodeHeight/2, NodeWidth, NodeHeight, nodeRadius, NodeColor(n.Type))
	if n.Type == "" {
		c.Text(n.X, n.Y, n.Label, nodeFontSize, nodeTextColor)
		return
	}
	c.Text(n.X, n.Y-7, n.Label, nodeFontSize, nodeTextColor)
	c.Text(n.X, n.Y+13, n.Type, captionFontSize, nodeTextColor)
}
