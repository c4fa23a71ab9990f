package flow

import (
	"testing"

	"github.com/hyperengineering/devtrack/internal/types"
)

func TestScene_DragMovesNodeInMemory(t *testing.T) {
	s := NewScene([]types.FlowNode{{ID: "a", X: 100, Y: 100}}, nil)

	s.PointerDown(110, 95)
	if id, ok := s.Dragging(); !ok || id != "a" {
		t.Fatalf("Dragging() = (%q, %v), want (a, true)", id, ok)
	}
	s.PointerMove(210, 145)
	s.PointerUp()

	if s.Nodes[0].X != 200 || s.Nodes[0].Y != 150 {
		t.Errorf("node at (%v, %v), want (200, 150)", s.Nodes[0].X, s.Nodes[0].Y)
	}
	if s.View.OffsetX != 0 || s.View.OffsetY != 0 {
		t.Error("dragging a node should not pan the view")
	}
	if _, ok := s.Dragging(); ok {
		t.Error("PointerUp should end the drag")
	}
}

func TestScene_PointerDownOnEmptySpacePans(t *testing.T) {
	s := NewScene([]types.FlowNode{{ID: "a", X: 100, Y: 100}}, nil)

	s.PointerDown(500, 500)
	s.PointerMove(520, 490)
	s.PointerUp()

	if s.View.OffsetX != 20 || s.View.OffsetY != -10 {
		t.Errorf("offset = (%v, %v), want (20, -10)", s.View.OffsetX, s.View.OffsetY)
	}
	if s.Nodes[0].X != 100 {
		t.Error("panning should not move nodes")
	}
}

func TestScene_NodeAt_BoundingBoxAndTopmost(t *testing.T) {
	s := NewScene([]types.FlowNode{
		{ID: "under", X: 0, Y: 0},
		{ID: "over", X: 50, Y: 0},
	}, nil)

	tests := []struct {
		x, y float64
		want int
	}{
		{-60, -30, 0},
		{-61, 0, -1},
		{0, 31, -1},
		{20, 0, 1},
		{110, 30, 1},
	}
	for _, tt := range tests {
		if got := s.NodeAt(tt.x, tt.y); got != tt.want {
			t.Errorf("NodeAt(%v, %v) = %d, want %d", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestScene_DragRespectsZoom(t *testing.T) {
	s := NewScene([]types.FlowNode{{ID: "a", X: 100, Y: 100}}, nil)
	s.View.SetScale(2)

	s.PointerDown(200, 200)
	s.PointerMove(240, 200)
	s.PointerUp()

	if s.Nodes[0].X != 120 {
		t.Errorf("X = %v, want 120 (40px at 2x zoom is 20 world units)", s.Nodes[0].X)
	}
}
