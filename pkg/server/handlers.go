package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/matzehuels/nodecanvas/pkg/buildinfo"
	"github.com/matzehuels/nodecanvas/pkg/errors"
	"github.com/matzehuels/nodecanvas/pkg/geom"
	"github.com/matzehuels/nodecanvas/pkg/render/nodelink"
	"github.com/matzehuels/nodecanvas/pkg/render/sink"
	"github.com/matzehuels/nodecanvas/pkg/scene"
	"github.com/matzehuels/nodecanvas/pkg/store"
	"github.com/matzehuels/nodecanvas/pkg/workspace"
)

// nodeView is one entry of GET /scene/nodes.
type nodeView struct {
	ID scene.NodeID `json:"id"`
	Z  int          `json:"z"`
	*scene.Node
}

type nameRequest struct {
	Name string `json:"name"`
}

type moveRequest struct {
	Position *geom.Vec2 `json:"position"`
}

type viewportRequest struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type hitResponse struct {
	Hit bool         `json:"hit"`
	ID  scene.NodeID `json:"id,omitempty"`
}

// =============================================================================
// Health & Listing
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"build":  buildinfo.Get(),
	})
}

func (s *Server) handleListScenes(w http.ResponseWriter, r *http.Request) {
	names, err := s.ws.Store.List(r.Context())
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeStorage, err, "list scenes"))
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, names)
}

// =============================================================================
// Scene Document
// =============================================================================

func (s *Server) handleGetScene(w http.ResponseWriter, r *http.Request) {
	data, err := s.ws.Export(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	etag := strconv.Quote(store.Hash(data))
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

func (s *Server) handlePutScene(w http.ResponseWriter, r *http.Request) {
	data, err := readBody(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.ws.Import(r.Context(), data); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Nodes
// =============================================================================

func (s *Server) handleListNodes(w http.ResponseWriter, r *http.Request) {
	var out []nodeView
	s.ws.View(func(c *scene.GeometryCache) {
		out = make([]nodeView, 0, c.Len())
		c.Each(func(id scene.NodeID, n *scene.Node) {
			cp := *n
			out = append(out, nodeView{ID: id, Z: len(out), Node: &cp})
		})
	})
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetNode(w http.ResponseWriter, r *http.Request) {
	id := scene.NodeID(chi.URLParam(r, "id"))
	var (
		view  nodeView
		found bool
	)
	s.ws.View(func(c *scene.GeometryCache) {
		n, ok := c.Node(id)
		if !ok {
			return
		}
		cp := *n
		view, found = nodeView{ID: id, Z: c.IndexOf(id), Node: &cp}, true
	})
	if !found {
		s.writeError(w, r, errors.New(errors.ErrCodeNodeNotFound, "node %q not found", id))
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handlePutNode(w http.ResponseWriter, r *http.Request) {
	id := scene.NodeID(chi.URLParam(r, "id"))
	s.loadNode(w, r, id)
}

func (s *Server) handleCreateNode(w http.ResponseWriter, r *http.Request) {
	s.loadNode(w, r, scene.NodeID(uuid.NewString()))
}

func (s *Server) loadNode(w http.ResponseWriter, r *http.Request, id scene.NodeID) {
	var data scene.NodeData
	if err := decodeBody(w, r, &data); err != nil {
		s.writeError(w, r, err)
		return
	}
	inserted, err := s.ws.LoadNode(r.Context(), id, data)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	status := http.StatusOK
	if inserted {
		status = http.StatusCreated
		w.Header().Set("Location", "/scene/nodes/"+string(id))
	}
	writeJSON(w, status, map[string]any{"id": id, "inserted": inserted})
}

func (s *Server) handleDeleteNode(w http.ResponseWriter, r *http.Request) {
	if err := s.ws.Remove(r.Context(), scene.NodeID(chi.URLParam(r, "id"))); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRaise(w http.ResponseWriter, r *http.Request) {
	if err := s.ws.Raise(r.Context(), scene.NodeID(chi.URLParam(r, "id"))); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Position == nil {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "position is required"))
		return
	}
	if err := s.ws.Move(r.Context(), scene.NodeID(chi.URLParam(r, "id")), *req.Position); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Camera & Pointer
// =============================================================================

func (s *Server) handleGetCamera(w http.ResponseWriter, r *http.Request) {
	var m geom.Mat23
	s.ws.View(func(c *scene.GeometryCache) { m = c.Camera })
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handlePutCamera(w http.ResponseWriter, r *http.Request) {
	var vals []float64
	if err := decodeBody(w, r, &vals); err != nil {
		s.writeError(w, r, err)
		return
	}
	if len(vals) != len(geom.Mat23{}) {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "camera must have 6 elements, got %d", len(vals)))
		return
	}
	var m geom.Mat23
	copy(m[:], vals)
	if err := s.ws.SetCamera(r.Context(), m); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHit(w http.ResponseWriter, r *http.Request) {
	p, err := queryPoint(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	id, ok := s.ws.HitTest(p)
	writeJSON(w, http.StatusOK, hitResponse{Hit: ok, ID: id})
}

func queryPoint(r *http.Request) (geom.Vec2, error) {
	q := r.URL.Query()
	x, errX := strconv.ParseFloat(q.Get("x"), 64)
	y, errY := strconv.ParseFloat(q.Get("y"), 64)
	if errX != nil || errY != nil {
		return geom.Zero, errors.New(errors.ErrCodeInvalidInput, "x and y query parameters must be numbers")
	}
	p := geom.V(x, y)
	if !p.IsFinite() {
		return geom.Zero, errors.New(errors.ErrCodeInvalidInput, "x and y must be finite")
	}
	return p, nil
}

func (s *Server) handlePointer(w http.ResponseWriter, r *http.Request) {
	var ev workspace.PointerEvent
	if err := decodeBody(w, r, &ev); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.ws.Pointer(r.Context(), ev)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleViewport(w http.ResponseWriter, r *http.Request) {
	var req viewportRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if !geom.V(req.Width, req.Height).IsFinite() || req.Width < 0 || req.Height < 0 {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "viewport must be non-negative"))
		return
	}
	s.ws.Resize(req.Width, req.Height)
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Rendering
// =============================================================================

func (s *Server) handleRenderSVG(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := []sink.SVGOption{sink.WithPadding(s.opts.Padding)}
	if q.Get("fit") == "" {
		if width, height := s.viewport(); width > 0 && height > 0 {
			opts = append(opts, sink.WithViewport(width, height))
		}
	}
	if hl := q.Get("highlight"); hl != "" {
		opts = append(opts, sink.WithHighlight(scene.NodeID(hl)))
	}
	if q.Get("wires") == "0" {
		opts = append(opts, sink.WithoutWires())
	}

	var svg []byte
	s.ws.View(func(c *scene.GeometryCache) { svg = sink.RenderSVG(c, opts...) })
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(svg)
}

// viewport prefers the size sent by the client over the configured default.
func (s *Server) viewport() (float64, float64) {
	if width, height := s.ws.Viewport(); width > 0 && height > 0 {
		return width, height
	}
	return s.opts.Width, s.opts.Height
}

func (s *Server) wiring(r *http.Request) string {
	opts := nodelink.Options{
		Detailed:    r.URL.Query().Get("detailed") != "",
		LeftToRight: r.URL.Query().Get("rankdir") == "LR",
	}
	var dot string
	s.ws.View(func(c *scene.GeometryCache) { dot = nodelink.ToDOT(c, opts) })
	return dot
}

func (s *Server) handleWiringDOT(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
	_, _ = fmt.Fprint(w, s.wiring(r))
}

func (s *Server) handleWiringSVG(w http.ResponseWriter, r *http.Request) {
	svg, err := nodelink.RenderSVG(s.wiring(r))
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "render wiring"))
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(svg)
}

// =============================================================================
// Save & Load
// =============================================================================

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Name == "" {
		req.Name = s.ws.Name()
	}
	if err := s.ws.Save(r.Context(), req.Name); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"name": req.Name, "revision": s.ws.Revision()})
}

func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.ws.Load(r.Context(), req.Name); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"name": req.Name, "revision": s.ws.Revision()})
}
