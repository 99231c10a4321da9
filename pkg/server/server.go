// Package server exposes a workspace over HTTP.
//
// # Routes
//
//	GET    /healthz                    build info
//	GET    /scene                      saved document (ETag = content hash)
//	PUT    /scene                      replace the scene from a saved document
//	GET    /scene/nodes                node geometry in z-order
//	POST   /scene/nodes                add a node under a generated id
//	GET    /scene/nodes/{id}           one node
//	PUT    /scene/nodes/{id}           insert or replace a node
//	DELETE /scene/nodes/{id}           remove a node
//	POST   /scene/nodes/{id}/raise     move to the top of the paint order
//	POST   /scene/nodes/{id}/move      reposition
//	GET    /scene/camera               camera matrix
//	PUT    /scene/camera               replace the camera matrix
//	GET    /scene/hit?x=&y=            topmost node under a screen point
//	POST   /scene/pointer              pointer event (drag, pan, zoom)
//	PUT    /scene/viewport             viewport size for rendering and pointer input
//	GET    /scene/render.svg           painted scene
//	GET    /scene/wiring.dot           wiring diagram source
//	GET    /scene/wiring.svg           wiring diagram rendered by Graphviz
//	POST   /scene/save                 store the scene under {"name"}
//	POST   /scene/load                 replace the scene from the store
//	GET    /scenes                     stored scene names
//
// Errors are JSON objects {"code": ..., "message": ...} using the codes of
// pkg/errors, with the status from [errors.HTTPStatus].
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/nodecanvas/pkg/workspace"
)

// MaxBodyBytes bounds request bodies.
const MaxBodyBytes = 8 << 20

// ShutdownTimeout bounds graceful shutdown in [Server.Run].
const ShutdownTimeout = 10 * time.Second

// Server serves one workspace.
type Server struct {
	ws     *workspace.Workspace
	logger *log.Logger
	opts   Options
	router chi.Router
}

// Options configures rendering defaults.
type Options struct {
	// Width and Height are the viewport used when the client has not sent
	// one with PUT /scene/viewport. Zero fits the canvas to the scene.
	Width, Height float64
	// Padding is the margin of fitted canvases.
	Padding float64
}

// New creates a server for ws. If logger is nil, the workspace logger is used.
func New(ws *workspace.Workspace, logger *log.Logger, opts Options) *Server {
	if logger == nil {
		logger = ws.Logger
	}
	s := &Server{ws: ws, logger: logger, opts: opts}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(cors)

	r.Get("/healthz", s.handleHealth)
	r.Get("/scenes", s.handleListScenes)

	r.Route("/scene", func(r chi.Router) {
		r.Get("/", s.handleGetScene)
		r.Put("/", s.handlePutScene)

		r.Get("/nodes", s.handleListNodes)
		r.Post("/nodes", s.handleCreateNode)
		r.Route("/nodes/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetNode)
			r.Put("/", s.handlePutNode)
			r.Delete("/", s.handleDeleteNode)
			r.Post("/raise", s.handleRaise)
			r.Post("/move", s.handleMove)
		})

		r.Get("/camera", s.handleGetCamera)
		r.Put("/camera", s.handlePutCamera)
		r.Get("/hit", s.handleHit)
		r.Post("/pointer", s.handlePointer)
		r.Put("/viewport", s.handleViewport)

		r.Get("/render.svg", s.handleRenderSVG)
		r.Get("/wiring.dot", s.handleWiringDOT)
		r.Get("/wiring.svg", s.handleWiringSVG)

		r.Post("/save", s.handleSave)
		r.Post("/load", s.handleLoad)
	})
	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
