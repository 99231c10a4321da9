package interact

import (
	"math"
	"testing"

	"github.com/matzehuels/nodecanvas/pkg/geom"
	"github.com/matzehuels/nodecanvas/pkg/scene"
)

const eps = 1e-9

func near(a, b geom.Vec2) bool {
	return math.Abs(a.X()-b.X()) < eps && math.Abs(a.Y()-b.Y()) < eps
}

func overlapping() *scene.GeometryCache {
	c := scene.New()
	scene.LoadNode(c, "a", scene.NodeData{Position: geom.V(0, 0)})
	scene.LoadNode(c, "b", scene.NodeData{Position: geom.V(50, 0)})
	return c
}

func TestMouseDownGrabsTopmost(t *testing.T) {
	tests := []struct {
		name   string
		p      geom.Vec2
		wantID scene.NodeID
		wantOK bool
		mode   Mode
	}{
		{"only a", geom.V(10, 10), "a", true, Dragging},
		{"overlap picks top", geom.V(60, 10), "b", true, Dragging},
		{"empty space pans", geom.V(500, 500), "", false, Panning},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := overlapping()
			ctl := New()
			id, ok := ctl.MouseDown(c, tt.p)
			if id != tt.wantID || ok != tt.wantOK {
				t.Errorf("MouseDown() = (%q, %v), want (%q, %v)", id, ok, tt.wantID, tt.wantOK)
			}
			if ctl.Mode() != tt.mode {
				t.Errorf("Mode() = %v, want %v", ctl.Mode(), tt.mode)
			}
		})
	}
}

func TestMouseDownRaises(t *testing.T) {
	c := overlapping()
	ctl := New()
	ctl.MouseDown(c, geom.V(10, 10))

	got := c.ZOrder()
	if got[len(got)-1] != "a" {
		t.Errorf("ZOrder() = %v, want a on top", got)
	}

	// Now a covers the overlap.
	ctl.MouseUp(c, geom.V(10, 10))
	if id, _ := ctl.MouseDown(c, geom.V(60, 10)); id != "a" {
		t.Errorf("MouseDown() after raise = %q, want a", id)
	}
}

func TestDragMovesNode(t *testing.T) {
	c := overlapping()
	ctl := New()
	ctl.MouseDown(c, geom.V(10, 10))

	if !ctl.MouseMove(c, geom.V(60, 30)) {
		t.Fatal("MouseMove() should report a change while dragging")
	}
	n, _ := c.Node("a")
	if !near(n.Position, geom.V(50, 20)) {
		t.Errorf("Position = %v, want [50 20]", n.Position)
	}

	ctl.MouseUp(c, geom.V(70, 30))
	n, _ = c.Node("a")
	if !near(n.Position, geom.V(60, 20)) {
		t.Errorf("Position after MouseUp = %v, want [60 20]", n.Position)
	}
	if ctl.Mode() != Idle {
		t.Errorf("Mode() = %v, want idle", ctl.Mode())
	}
	if ctl.MouseMove(c, geom.V(0, 0)) {
		t.Error("MouseMove() while idle should change nothing")
	}
}

func TestDragRefreshesWires(t *testing.T) {
	c := scene.New()
	scene.LoadNode(c, "src", scene.NodeData{Position: geom.V(0, 0)})
	scene.LoadNode(c, "dst", scene.NodeData{
		Position: geom.V(300, 0),
		Inputs:   []scene.InputData{{Source: "src", Selectable: true}},
	})

	ctl := New()
	ctl.MouseDown(c, geom.V(5, 5))
	ctl.MouseUp(c, geom.V(105, 5))

	src, _ := c.Node("src")
	dst, _ := c.Node("dst")
	if dst.Inputs[0].Wire != src.Output.Pos {
		t.Errorf("wire = %v, want %v", dst.Inputs[0].Wire, src.Output.Pos)
	}
}

func TestDragUnderZoomedCamera(t *testing.T) {
	c := overlapping()
	scene.SetCamera(c, geom.ScaleBy(2))
	ctl := New()

	if id, _ := ctl.MouseDown(c, geom.V(20, 20)); id != "a" {
		t.Fatalf("MouseDown() = %q, want a", id)
	}
	ctl.MouseMove(c, geom.V(40, 40))
	n, _ := c.Node("a")
	if !near(n.Position, geom.V(10, 10)) {
		t.Errorf("Position = %v, want [10 10]", n.Position)
	}
}

func TestDragTargetRemoved(t *testing.T) {
	c := overlapping()
	ctl := New()
	ctl.MouseDown(c, geom.V(10, 10))
	scene.Remove(c, "a")

	if ctl.MouseMove(c, geom.V(20, 20)) {
		t.Error("MouseMove() should not report a change for a removed target")
	}
	if ctl.Mode() != Idle {
		t.Errorf("Mode() = %v, want idle", ctl.Mode())
	}
	if c.Has("a") {
		t.Error("drag must not re-create a removed node")
	}
}

func TestPan(t *testing.T) {
	c := overlapping()
	ctl := New()
	ctl.MouseDown(c, geom.V(500, 500))
	ctl.MouseMove(c, geom.V(510, 505))
	ctl.MouseUp(c, geom.V(520, 505))

	want := geom.Mat23{1, 0, 0, 1, 20, 5}
	if c.Camera != want {
		t.Errorf("Camera = %v, want %v", c.Camera, want)
	}
	n, _ := c.Node("a")
	if n.Position != geom.V(0, 0) {
		t.Error("panning must not move nodes")
	}
}

func TestWheelZoomsAboutCursor(t *testing.T) {
	c := overlapping()
	scene.SetCamera(c, geom.Translate(geom.V(30, -10)))
	ctl := New()
	p := geom.V(100, 100)

	before, _ := ScreenToWorld(c, p)
	if !ctl.Wheel(c, p, -wheelStep) {
		t.Fatal("Wheel() should change the camera")
	}
	after, _ := ScreenToWorld(c, p)
	if !near(before, after) {
		t.Errorf("world point under cursor moved: %v -> %v", before, after)
	}
	if got := math.Sqrt(c.Camera.Det()); math.Abs(got-zoomBase) > eps {
		t.Errorf("scale = %v, want %v", got, zoomBase)
	}
}

func TestZoomClamped(t *testing.T) {
	tests := []struct {
		name   string
		factor float64
		want   float64
	}{
		{"in", 100, DefaultMaxZoom},
		{"out", 0.0001, DefaultMinZoom},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := scene.New()
			ctl := New()
			ctl.Zoom(c, geom.Zero, tt.factor)
			if got := math.Sqrt(c.Camera.Det()); math.Abs(got-tt.want) > eps {
				t.Errorf("scale = %v, want %v", got, tt.want)
			}
			if ctl.Zoom(c, geom.Zero, tt.factor) {
				t.Error("zooming past the limit should report no change")
			}
		})
	}
}

func TestZoomRejectsBadFactors(t *testing.T) {
	c := scene.New()
	ctl := New()
	for _, f := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if ctl.Zoom(c, geom.Zero, f) {
			t.Errorf("Zoom(%v) should be rejected", f)
		}
	}
	if c.Camera != geom.Identity {
		t.Errorf("Camera = %v, want identity", c.Camera)
	}
}

func TestSingularCamera(t *testing.T) {
	c := overlapping()
	scene.SetCamera(c, geom.Mat23{})
	ctl := New()

	if _, ok := ctl.MouseDown(c, geom.V(10, 10)); ok {
		t.Error("MouseDown() with a singular camera should grab nothing")
	}
	if ctl.Mode() != Idle {
		t.Errorf("Mode() = %v, want idle", ctl.Mode())
	}
}

func TestResizeAndCenter(t *testing.T) {
	c := scene.New()
	scene.LoadNode(c, "a", scene.NodeData{Position: geom.V(0, 0)})
	ctl := New()

	if ctl.Center(c) {
		t.Error("Center() without a viewport should do nothing")
	}

	ctl.Resize(400, 300)
	if w, h := ctl.Viewport(); w != 400 || h != 300 {
		t.Errorf("Viewport() = (%v, %v), want (400, 300)", w, h)
	}
	ctl.Center(c)

	size := scene.NodeSize(0)
	mid := c.Camera.Apply(size.Scale(0.5))
	if !near(mid, geom.V(200, 150)) {
		t.Errorf("scene center maps to %v, want [200 150]", mid)
	}

	ctl.Resize(-5, 10)
	if w, _ := ctl.Viewport(); w != 0 {
		t.Errorf("negative width should clamp to 0, got %v", w)
	}
}

func TestModeString(t *testing.T) {
	for m, want := range map[Mode]string{Idle: "idle", Dragging: "dragging", Panning: "panning"} {
		if m.String() != want {
			t.Errorf("Mode(%d).String() = %q, want %q", m, m.String(), want)
		}
	}
}
