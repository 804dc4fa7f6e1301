// Package server exposes the route finder over HTTP.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/danpilch/busfinder/internal/catalog"
	"github.com/danpilch/busfinder/internal/config"
	"github.com/danpilch/busfinder/internal/finder"
	"github.com/danpilch/busfinder/internal/render"
)

type Server struct {
	catalog *catalog.Catalog
	logger  *logrus.Logger
	results *cache.Cache
	handler http.Handler
	srv     *http.Server
}

func New(cfg config.ServerConfig, cat *catalog.Catalog, logger *logrus.Logger) *Server {
	s := &Server{
		catalog: cat,
		logger:  logger,
		results: cache.New(cfg.CacheTTL, 2*cfg.CacheTTL),
	}

	r := mux.NewRouter()
	r.Use(recoveryMiddleware(logger))
	r.Use(loggingMiddleware(logger))

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	api.HandleFunc("/search", s.handleSearch).Methods(http.MethodGet)
	api.HandleFunc("/routes", s.handleRoutes).Methods(http.MethodGet)
	api.HandleFunc("/routes/{number}", s.handleRoute).Methods(http.MethodGet)
	api.HandleFunc("/stops/suggest", s.handleSuggest).Methods(http.MethodGet)

	s.handler = cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
	}).Handler(r)

	s.srv = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return s
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe blocks until the server fails or Shutdown is called.
func (s *Server) ListenAndServe() error {
	s.logger.WithField("addr", s.srv.Addr).Info("server listening")
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

type healthResponse struct {
	Status     string `json:"status"`
	Routes     int    `json:"routes"`
	MajorStops int    `json:"major_stops"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:     "ok",
		Routes:     len(s.catalog.Buses),
		MajorStops: len(s.catalog.MajorStops),
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := finder.Query{
		Source:      r.URL.Query().Get("from"),
		Destination: r.URL.Query().Get("to"),
	}
	if strings.TrimSpace(q.Source) == "" || strings.TrimSpace(q.Destination) == "" {
		writeError(w, http.StatusBadRequest, "from and to are required")
		return
	}

	// Matching ignores case, so queries differing only in case share an entry.
	key := "search:" + strings.ToLower(q.Source) + "\x00" + strings.ToLower(q.Destination)

	var res finder.Result
	if cached, ok := s.results.Get(key); ok {
		res = cached.(finder.Result)
		w.Header().Set("X-Cache", "HIT")
	} else {
		res = finder.Search(q, s.catalog.Buses)
		s.results.SetDefault(key, res)
		w.Header().Set("X-Cache", "MISS")
	}

	s.logger.WithFields(logrus.Fields{
		"from":     q.Source,
		"to":       q.Destination,
		"kind":     res.Kind(),
		"direct":   len(res.Direct),
		"indirect": len(res.Indirect),
	}).Debug("search completed")

	writeJSON(w, http.StatusOK, render.NewResponse(q, res))
}

func (s *Server) handleRoutes(w http.ResponseWriter, r *http.Request) {
	buses := s.catalog.Filter(r.URL.Query().Get("q"))
	if buses == nil {
		buses = []catalog.Bus{}
	}
	writeJSON(w, http.StatusOK, buses)
}

func (s *Server) handleRoute(w http.ResponseWriter, r *http.Request) {
	number := mux.Vars(r)["number"]
	bus, ok := s.catalog.Lookup(number)
	if !ok {
		writeError(w, http.StatusNotFound, "no such route: "+number)
		return
	}
	writeJSON(w, http.StatusOK, bus)
}

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = v
	}

	stops := s.catalog.Suggest(r.URL.Query().Get("q"), limit)
	if stops == nil {
		stops = []string{}
	}
	writeJSON(w, http.StatusOK, stops)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
