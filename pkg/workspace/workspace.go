// Package workspace owns one live geometry cache and moves it through a store.
//
// The scene and save packages are single-threaded: a cache has one owner
// that passes it explicitly. A [Workspace] is that owner for hosts with
// concurrent callers (the HTTP server). Every read goes through [Workspace.View]
// and every edit through [Workspace.Update], which serialize on one
// sync.RWMutex.
//
// The workspace is also where ambient concerns attach: edits and save/load
// are logged, and reported to the observability hooks.
//
//	ws := workspace.New(st, logger)
//	ws.LoadNode(ctx, "n1", scene.NodeData{Position: geom.V(10, 20)})
//	if err := ws.Save(ctx, "board"); err != nil { ... }
package workspace

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/nodecanvas/pkg/errors"
	"github.com/matzehuels/nodecanvas/pkg/geom"
	"github.com/matzehuels/nodecanvas/pkg/interact"
	"github.com/matzehuels/nodecanvas/pkg/observability"
	"github.com/matzehuels/nodecanvas/pkg/save"
	"github.com/matzehuels/nodecanvas/pkg/scene"
	"github.com/matzehuels/nodecanvas/pkg/store"
)

// Workspace guards a single cache.
type Workspace struct {
	Store  store.Store
	Logger *log.Logger

	mu       sync.RWMutex
	cache    *scene.GeometryCache
	pointer  *interact.Controller
	name     string
	revision uint64
}

// New creates a workspace holding an empty cache.
// If s is nil, a NullStore is used (persistence disabled).
// If logger is nil, the default logger is used.
func New(s store.Store, logger *log.Logger) *Workspace {
	if s == nil {
		s = store.NewNullStore()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Workspace{
		Store:   s,
		Logger:  logger,
		cache:   scene.New(),
		pointer: interact.New(),
	}
}

// =============================================================================
// Access
// =============================================================================

// View calls fn with the cache under a read lock. fn must not mutate the
// cache or retain it.
func (w *Workspace) View(fn func(c *scene.GeometryCache)) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	fn(w.cache)
}

// Update calls fn with the cache under the write lock. The revision is
// bumped when fn returns nil.
func (w *Workspace) Update(fn func(c *scene.GeometryCache) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := fn(w.cache); err != nil {
		return err
	}
	w.revision++
	return nil
}

// Revision counts successful updates. It changes whenever the cache may
// have changed.
func (w *Workspace) Revision() uint64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.revision
}

// Name returns the scene name last saved or loaded, or "".
func (w *Workspace) Name() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.name
}

// Replace swaps in c as the live cache.
func (w *Workspace) Replace(c *scene.GeometryCache) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.cache = c
	w.revision++
}

// =============================================================================
// Edits
// =============================================================================

// LoadNode inserts or replaces id. It reports whether id was new.
func (w *Workspace) LoadNode(ctx context.Context, id scene.NodeID, data scene.NodeData) (bool, error) {
	if err := errors.ValidateNodeID(string(id)); err != nil {
		return false, err
	}
	if !data.Position.IsFinite() {
		return false, errors.New(errors.ErrCodeInvalidInput, "node %q: position must be finite", id)
	}
	var inserted bool
	_ = w.Update(func(c *scene.GeometryCache) error {
		inserted = !c.Has(id)
		scene.LoadNode(c, id, data)
		return nil
	})
	w.Logger.Debug("loaded node", "id", id, "inserted", inserted, "inputs", len(data.Inputs))
	observability.Scene().OnNodeLoaded(ctx, string(id), inserted)
	return inserted, nil
}

// Remove deletes id. Inputs of other nodes that referenced it keep their
// last resolved wire.
func (w *Workspace) Remove(ctx context.Context, id scene.NodeID) error {
	err := w.Update(func(c *scene.GeometryCache) error {
		if !scene.Remove(c, id) {
			return nodeNotFound(id)
		}
		return nil
	})
	if err != nil {
		return err
	}
	w.Logger.Debug("removed node", "id", id)
	observability.Scene().OnNodeRemoved(ctx, string(id))
	return nil
}

// Raise moves id to the top of the paint order.
func (w *Workspace) Raise(ctx context.Context, id scene.NodeID) error {
	return w.Update(func(c *scene.GeometryCache) error {
		if !scene.Raise(c, id) {
			return nodeNotFound(id)
		}
		return nil
	})
}

// Move repositions id and refreshes the wires of its dependents.
func (w *Workspace) Move(ctx context.Context, id scene.NodeID, pos geom.Vec2) error {
	if !pos.IsFinite() {
		return errors.New(errors.ErrCodeInvalidInput, "position must be finite")
	}
	return w.Update(func(c *scene.GeometryCache) error {
		if !scene.Move(c, id, pos) {
			return nodeNotFound(id)
		}
		return nil
	})
}

// SetCamera replaces the camera transform.
func (w *Workspace) SetCamera(ctx context.Context, m geom.Mat23) error {
	if !m.IsFinite() {
		return errors.New(errors.ErrCodeInvalidInput, "camera must be finite")
	}
	return w.Update(func(c *scene.GeometryCache) error {
		scene.SetCamera(c, m)
		return nil
	})
}

// HitTest returns the topmost node under screen point p.
func (w *Workspace) HitTest(p geom.Vec2) (id scene.NodeID, ok bool) {
	w.View(func(c *scene.GeometryCache) {
		world, valid := interact.ScreenToWorld(c, p)
		if !valid {
			return
		}
		id, ok = scene.HitTest(c, world)
	})
	return id, ok
}

func nodeNotFound(id scene.NodeID) error {
	return errors.New(errors.ErrCodeNodeNotFound, "node %q not found", id)
}

// =============================================================================
// Save / Load
// =============================================================================

// Export encodes the live cache as JSON.
func (w *Workspace) Export(ctx context.Context) ([]byte, error) {
	start := time.Now()
	var (
		data []byte
		err  error
		n    int
	)
	w.View(func(c *scene.GeometryCache) {
		n = c.Len()
		data, err = save.ToJSON(c)
	})
	if err != nil {
		return nil, err
	}
	observability.Scene().OnEncode(ctx, n, time.Since(start))
	return data, nil
}

// Import decodes data and replaces the live cache. On failure the live
// cache is left untouched.
func (w *Workspace) Import(ctx context.Context, data []byte) error {
	start := time.Now()
	c, err := save.FromJSON(data)
	n := 0
	if c != nil {
		n = c.Len()
	}
	observability.Scene().OnDecode(ctx, n, time.Since(start), err)
	if err != nil {
		return err
	}
	w.Replace(c)
	return nil
}

// Save exports the live cache and stores it under name.
func (w *Workspace) Save(ctx context.Context, name string) error {
	if err := errors.ValidateSceneName(name); err != nil {
		return err
	}
	data, err := w.Export(ctx)
	if err != nil {
		return err
	}
	if err := w.Store.Put(ctx, name, data); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "save scene %q", name)
	}

	w.mu.Lock()
	w.name = name
	w.mu.Unlock()

	w.Logger.Info("saved scene", "name", name, "bytes", len(data), "revision", w.Revision())
	return nil
}

// Load reads name from the store and replaces the live cache.
func (w *Workspace) Load(ctx context.Context, name string) error {
	if err := errors.ValidateSceneName(name); err != nil {
		return err
	}
	data, hit, err := w.Store.Get(ctx, name)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "load scene %q", name)
	}
	if !hit {
		return errors.New(errors.ErrCodeSceneNotFound, "scene %q not found", name)
	}
	if err := w.Import(ctx, data); err != nil {
		return err
	}

	w.mu.Lock()
	w.name = name
	w.mu.Unlock()

	var n int
	w.View(func(c *scene.GeometryCache) { n = c.Len() })
	w.Logger.Info("loaded scene", "name", name, "nodes", n)
	return nil
}

// =============================================================================
// Pointer
// =============================================================================

// PointerKind names a pointer event.
type PointerKind string

// Pointer event kinds.
const (
	PointerDown  PointerKind = "down"
	PointerMove  PointerKind = "move"
	PointerUp    PointerKind = "up"
	PointerWheel PointerKind = "wheel"
)

// PointerEvent is one screen-space pointer event.
type PointerEvent struct {
	Kind  PointerKind `json:"kind"`
	X     float64     `json:"x"`
	Y     float64     `json:"y"`
	Delta float64     `json:"delta,omitempty"` // wheel only
}

// PointerResult reports the effect of a pointer event.
type PointerResult struct {
	Changed bool         `json:"changed"`
	Mode    string       `json:"mode"`
	Target  scene.NodeID `json:"target,omitempty"`
}

// Pointer feeds ev to the workspace pointer controller.
func (w *Workspace) Pointer(ctx context.Context, ev PointerEvent) (PointerResult, error) {
	p := geom.V(ev.X, ev.Y)
	if !p.IsFinite() {
		return PointerResult{}, errors.New(errors.ErrCodeInvalidInput, "pointer position must be finite")
	}
	var res PointerResult
	err := w.Update(func(c *scene.GeometryCache) error {
		ctl := w.pointer
		switch ev.Kind {
		case PointerDown:
			_, res.Changed = ctl.MouseDown(c, p)
		case PointerMove:
			res.Changed = ctl.MouseMove(c, p)
		case PointerUp:
			res.Changed = ctl.MouseUp(c, p)
		case PointerWheel:
			res.Changed = ctl.Wheel(c, p, ev.Delta)
		default:
			return errors.New(errors.ErrCodeInvalidInput, "unknown pointer event %q", ev.Kind)
		}
		res.Mode = ctl.Mode().String()
		res.Target, _ = ctl.Target()
		return nil
	})
	return res, err
}

// Resize records the viewport size used by the pointer controller.
func (w *Workspace) Resize(width, height float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pointer.Resize(width, height)
}

// Zoom scales the camera by factor about screen point p. It reports whether
// the camera changed; zoom limits may absorb the request.
func (w *Workspace) Zoom(ctx context.Context, p geom.Vec2, factor float64) (bool, error) {
	if !p.IsFinite() {
		return false, errors.New(errors.ErrCodeInvalidInput, "zoom anchor must be finite")
	}
	if !(factor > 0) || math.IsInf(factor, 0) {
		return false, errors.New(errors.ErrCodeInvalidInput, "zoom factor must be positive and finite, got %g", factor)
	}
	var changed bool
	err := w.Update(func(c *scene.GeometryCache) error {
		changed = w.pointer.Zoom(c, p, factor)
		return nil
	})
	return changed, err
}

// Center pans the camera so the scene sits in the middle of the viewport.
// It is a no-op for an empty scene or before Resize.
func (w *Workspace) Center(ctx context.Context) bool {
	var changed bool
	_ = w.Update(func(c *scene.GeometryCache) error {
		changed = w.pointer.Center(c)
		return nil
	})
	return changed
}

// Viewport returns the recorded viewport size.
func (w *Workspace) Viewport() (width, height float64) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.pointer.Viewport()
}
