// Package httpapi serves the tier-code JSON API and the share landing page.
package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/poku-e/tubtakes/internal/observability"
	"github.com/poku-e/tubtakes/internal/ranking"
	"github.com/poku-e/tubtakes/internal/share"
)

const (
	defaultTimeout = 30 * time.Second
	maxBodyBytes   = 64 << 10
)

type Server struct {
	share     *share.Service
	board     *ranking.Board
	logger    *zap.Logger
	imagesDir string
	secure    bool
}

type Option func(*Server)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithImagesDir serves flavor images from dir under /images/.
func WithImagesDir(dir string) Option {
	return func(s *Server) { s.imagesDir = dir }
}

// WithSecureCookies marks the slot cookie Secure, for HTTPS deployments.
func WithSecureCookies(secure bool) Option {
	return func(s *Server) { s.secure = secure }
}

func New(svc *share.Service, board *ranking.Board, opts ...Option) *Server {
	s := &Server{share: svc, board: board, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler builds the router with the shared middleware stack.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		observability.RequestLogger(s.logger),
		middleware.Recoverer,
		middleware.Timeout(defaultTimeout),
		withCommonHeaders,
	)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		writeError(w, req, http.StatusNotFound, "route_not_found", fmt.Sprintf("no route for %s", req.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		writeError(w, req, http.StatusMethodNotAllowed, "method_not_allowed", fmt.Sprintf("method %s not allowed on %s", req.Method, req.URL.Path))
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/", s.landing)
	if s.imagesDir != "" {
		r.Handle("/images/*", http.StripPrefix("/images/", http.FileServer(http.Dir(s.imagesDir))))
	}

	r.Route("/api", func(api chi.Router) {
		api.Route("/flavors", func(fr chi.Router) {
			fr.Get("/", s.listFlavors)
			fr.Get("/search", s.searchFlavors)
		})
		api.Route("/codes", func(cr chi.Router) {
			cr.Post("/encode", s.encode)
			cr.Get("/decode", s.decode)
			cr.Post("/compress", s.compress)
			cr.Get("/decompress", s.decompress)
			cr.Delete("/remap", s.forgetRemap)
		})
		api.Route("/rankings", func(rr chi.Router) {
			rr.Get("/", s.rankings)
			rr.Post("/", s.submitRanking)
			rr.Post("/command", s.submitCommand)
			rr.Get("/export", s.exportRankings)
		})
	})
	return r
}

// HTTPServer wraps Handler in an http.Server with the given timeouts.
func (s *Server) HTTPServer(addr string, readTimeout, writeTimeout, idleTimeout time.Duration) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}
}
