package flow

import "github.com/hyperengineering/devtrack/internal/types"

// Node box size in world units. Nodes are centered on their (x, y).
const (
	NodeWidth  = 120.0
	NodeHeight = 60.0
)

// Scene is the diagram plus its viewport and pointer state. Node drags
// move nodes in memory only.
type Scene struct {
	Nodes       []types.FlowNode
	Connections []types.FlowConnection
	View        Viewport

	dragIndex int
	dragDX    float64
	dragDY    float64
}

// NewScene creates a scene over the given diagram with an identity viewport.
func NewScene(nodes []types.FlowNode, conns []types.FlowConnection) *Scene {
	return &Scene{
		Nodes:       nodes,
		Connections: conns,
		View:        NewViewport(),
		dragIndex:   -1,
	}
}

// NodeAt returns the index of the topmost node whose box contains the
// world point (x, y), or -1. Later nodes are drawn on top.
func (s *Scene) NodeAt(x, y float64) int {
	for i := len(s.Nodes) - 1; i >= 0; i-- {
		n := s.Nodes[i]
		if x >= n.X-NodeWidth/2 && x <= n.X+NodeWidth/2 &&
			y >= n.Y-NodeHeight/2 && y <= n.Y+NodeHeight/2 {
			return i
		}
	}
	return -1
}

// PointerDown starts dragging the node under screen point (x, y), or
// panning when there is none.
func (s *Scene) PointerDown(x, y float64) {
	wx, wy := s.View.ToWorld(x, y)
	if i := s.NodeAt(wx, wy); i >= 0 {
		s.dragIndex = i
		s.dragDX = wx - s.Nodes[i].X
		s.dragDY = wy - s.Nodes[i].Y
		return
	}
	s.View.BeginPan(x, y)
}

// PointerMove continues the current drag or pan.
func (s *Scene) PointerMove(x, y float64) {
	if s.dragIndex >= 0 {
		wx, wy := s.View.ToWorld(x, y)
		s.Nodes[s.dragIndex].X = wx - s.dragDX
		s.Nodes[s.dragIndex].Y = wy - s.dragDY
		return
	}
	s.View.PanTo(x, y)
}

// PointerUp ends any drag or pan.
func (s *Scene) PointerUp() {
	s.dragIndex = -1
	s.View.EndPan()
}

// Dragging returns the id of the node being dragged, if any.
func (s *Scene) Dragging() (string, bool) {
	if s.dragIndex < 0 {
		return "", false
	}
	return s.Nodes[s.dragIndex].ID, true
}
