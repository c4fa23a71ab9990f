package flow

import (
	"math"
	"testing"
)

func TestViewport_ScaleStaysClamped(t *testing.T) {
	v := NewViewport()
	for i := 0; i < 50; i++ {
		v.ZoomIn()
		if v.Scale > MaxScale {
			t.Fatalf("Scale = %v after ZoomIn, above %v", v.Scale, MaxScale)
		}
	}
	if v.Scale != MaxScale {
		t.Errorf("Scale = %v, want saturation at %v", v.Scale, MaxScale)
	}

	for i := 0; i < 50; i++ {
		v.Wheel(120)
		if v.Scale < MinScale {
			t.Fatalf("Scale = %v after Wheel, below %v", v.Scale, MinScale)
		}
	}
	if v.Scale != MinScale {
		t.Errorf("Scale = %v, want saturation at %v", v.Scale, MinScale)
	}

	v.SetScale(100)
	if v.Scale != MaxScale {
		t.Errorf("SetScale(100) = %v, want %v", v.Scale, MaxScale)
	}
	v.SetScale(math.NaN())
	if v.Scale != MaxScale {
		t.Errorf("SetScale(NaN) changed scale to %v", v.Scale)
	}
}

func TestViewport_ZoomSteps(t *testing.T) {
	v := NewViewport()
	v.ZoomIn()
	if math.Abs(v.Scale-1.2) > 1e-9 {
		t.Errorf("ZoomIn = %v, want 1.2", v.Scale)
	}
	v.ZoomOut()
	if math.Abs(v.Scale-1) > 1e-9 {
		t.Errorf("ZoomOut = %v, want 1", v.Scale)
	}
	v.Wheel(-1)
	if math.Abs(v.Scale-1.1) > 1e-9 {
		t.Errorf("Wheel(-1) = %v, want 1.1", v.Scale)
	}
	v.Wheel(0)
	if math.Abs(v.Scale-1.21) > 1e-9 {
		t.Errorf("Wheel(0) = %v, want 1.21", v.Scale)
	}
}

func TestViewport_PanAndReset(t *testing.T) {
	v := NewViewport()
	v.PanTo(50, 50)
	if v.OffsetX != 0 || v.OffsetY != 0 {
		t.Error("PanTo without BeginPan should not move the view")
	}

	v.BeginPan(10, 10)
	v.PanTo(40, -5)
	if v.OffsetX != 30 || v.OffsetY != -15 {
		t.Errorf("offset = (%v, %v), want (30, -15)", v.OffsetX, v.OffsetY)
	}
	v.EndPan()
	v.PanTo(1000, 1000)
	if v.OffsetX != 30 {
		t.Error("PanTo after EndPan should not move the view")
	}

	v.ZoomIn()
	v.BeginPan(0, 0)
	v.Reset()
	if v.Scale != 1 || v.OffsetX != 0 || v.OffsetY != 0 || v.Panning() {
		t.Errorf("Reset() = %+v, want identity", v)
	}
}

func TestViewport_ToWorld(t *testing.T) {
	v := Viewport{Scale: 2, OffsetX: 100, OffsetY: 50}
	x, y := v.ToWorld(300, 250)
	if x != 100 || y != 100 {
		t.Errorf("ToWorld(300, 250) = (%v, %v), want (100, 100)", x, y)
	}
}
