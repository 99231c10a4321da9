// Package interact translates pointer input into geometry cache edits.
//
// A [Controller] keeps the gesture state between events: which node is being
// dragged, or whether the camera is being panned. The cache itself is passed
// to every call; the controller never holds on to it, so a controller
// survives the cache being replaced by a load.
//
// Pointer positions are in screen space. The inverse of the cache camera
// maps them to world space before hit-testing.
//
//	ctl := interact.New()
//	ctl.Resize(1280, 720)
//	ctl.MouseDown(cache, geom.V(x, y))  // grabs and raises the topmost node
//	ctl.MouseMove(cache, geom.V(x, y))  // drags it, or pans on empty space
//	ctl.MouseUp(cache, geom.V(x, y))
//	ctl.Wheel(cache, geom.V(x, y), -120) // zoom in about the cursor
package interact

import (
	"math"

	"github.com/matzehuels/nodecanvas/pkg/geom"
	"github.com/matzehuels/nodecanvas/pkg/scene"
)

// Zoom limits, as camera scale factors.
const (
	DefaultMinZoom = 0.1
	DefaultMaxZoom = 8.0

	// wheelStep is the wheel delta that zooms by one factor of zoomBase.
	wheelStep = 100.0
	zoomBase  = 1.1
)

// Mode is the current gesture.
type Mode int

const (
	Idle Mode = iota
	Dragging
	Panning
)

func (m Mode) String() string {
	switch m {
	case Dragging:
		return "dragging"
	case Panning:
		return "panning"
	default:
		return "idle"
	}
}

// Controller holds pointer gesture state.
type Controller struct {
	MinZoom, MaxZoom float64

	width, height float64

	mode   Mode
	target scene.NodeID
	grab   geom.Vec2 // node position minus world pointer at MouseDown
	last   geom.Vec2 // screen pointer at the previous event
}

// New creates an idle controller with the default zoom limits.
func New() *Controller {
	return &Controller{MinZoom: DefaultMinZoom, MaxZoom: DefaultMaxZoom}
}

// Resize records the viewport size in screen pixels.
func (ctl *Controller) Resize(w, h float64) {
	ctl.width, ctl.height = math.Max(w, 0), math.Max(h, 0)
}

// Viewport returns the size recorded by Resize.
func (ctl *Controller) Viewport() (w, h float64) { return ctl.width, ctl.height }

// Mode returns the current gesture.
func (ctl *Controller) Mode() Mode { return ctl.mode }

// Target returns the node being dragged.
func (ctl *Controller) Target() (scene.NodeID, bool) {
	return ctl.target, ctl.mode == Dragging
}

// ScreenToWorld maps a screen point through the inverse camera.
// ok is false when the camera is singular.
func ScreenToWorld(c *scene.GeometryCache, p geom.Vec2) (geom.Vec2, bool) {
	inv, ok := c.Camera.Invert()
	if !ok {
		return geom.Zero, false
	}
	return inv.Apply(p), true
}

// MouseDown starts a gesture at screen point p. If a node is under the
// pointer it is raised to the top and grabbed; otherwise the camera pan
// begins. It returns the grabbed node, if any.
func (ctl *Controller) MouseDown(c *scene.GeometryCache, p geom.Vec2) (scene.NodeID, bool) {
	ctl.last = p
	w, ok := ScreenToWorld(c, p)
	if !ok {
		ctl.mode = Idle
		return "", false
	}
	id, hit := scene.HitTest(c, w)
	if !hit {
		ctl.mode, ctl.target = Panning, ""
		return "", false
	}
	n, _ := c.Node(id)
	scene.Raise(c, id)
	ctl.mode, ctl.target = Dragging, id
	ctl.grab = n.Position.Sub(w)
	return id, true
}

// MouseMove continues the gesture. It reports whether the cache changed.
func (ctl *Controller) MouseMove(c *scene.GeometryCache, p geom.Vec2) bool {
	defer func() { ctl.last = p }()

	switch ctl.mode {
	case Dragging:
		w, ok := ScreenToWorld(c, p)
		if !ok {
			return false
		}
		if !scene.Move(c, ctl.target, w.Add(ctl.grab)) {
			// Target removed mid-drag.
			ctl.mode, ctl.target = Idle, ""
			return false
		}
		return true
	case Panning:
		d := p.Sub(ctl.last)
		if d == geom.Zero {
			return false
		}
		scene.SetCamera(c, geom.Translate(d).Mul(c.Camera))
		return true
	default:
		return false
	}
}

// MouseUp ends the gesture. A final move to p is applied first.
func (ctl *Controller) MouseUp(c *scene.GeometryCache, p geom.Vec2) bool {
	changed := ctl.MouseMove(c, p)
	ctl.mode, ctl.target = Idle, ""
	return changed
}

// Wheel zooms about screen point p. Negative deltas zoom in, matching
// browser wheel events. The resulting scale is clamped to the zoom limits.
// It reports whether the camera changed.
func (ctl *Controller) Wheel(c *scene.GeometryCache, p geom.Vec2, delta float64) bool {
	return ctl.Zoom(c, p, math.Pow(zoomBase, -delta/wheelStep))
}

// Zoom scales the camera by factor about screen point p, keeping the world
// point under p fixed.
func (ctl *Controller) Zoom(c *scene.GeometryCache, p geom.Vec2, factor float64) bool {
	if factor <= 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return false
	}
	cur := math.Sqrt(math.Abs(c.Camera.Det()))
	if cur == 0 {
		return false
	}
	next := clamp(cur*factor, ctl.MinZoom, ctl.MaxZoom)
	factor = next / cur
	if math.Abs(factor-1) < 1e-12 {
		return false
	}
	about := geom.Translate(p).Mul(geom.ScaleBy(factor)).Mul(geom.Translate(p.Scale(-1)))
	scene.SetCamera(c, about.Mul(c.Camera))
	return true
}

// Center pans the camera so the scene bounds are centered in the viewport.
func (ctl *Controller) Center(c *scene.GeometryCache) bool {
	b, ok := c.Bounds()
	if !ok || ctl.width == 0 || ctl.height == 0 {
		return false
	}
	mid := c.Camera.Apply(geom.V((b.Min.X()+b.Max.X())/2, (b.Min.Y()+b.Max.Y())/2))
	d := geom.V(ctl.width/2, ctl.height/2).Sub(mid)
	scene.SetCamera(c, geom.Translate(d).Mul(c.Camera))
	return true
}

func clamp(v, lo, hi float64) float64 {
	if lo > 0 && v < lo {
		return lo
	}
	if hi > 0 && v > hi {
		return hi
	}
	return v
}
