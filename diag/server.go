// Package diag exposes the container's startup-health surface over HTTP:
// the verifier report and the binding inventory. It observes the container;
// it is not an application HTTP layer.
package diag

import (
	"encoding/json"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/km-arc/go-ioc/container"
)

// Server serves container diagnostics.
//
//	GET /healthz   → verifier report over the critical keys; 503 if any fail
//	GET /bindings  → registration-table snapshot with mock-usage flags
type Server struct {
	c        *container.Container
	critical []container.ServiceKey
	log      logrus.FieldLogger
}

// New creates a diagnostics server for c, probing critical on /healthz.
func New(c *container.Container, critical []container.ServiceKey, log logrus.FieldLogger) *Server {
	return &Server{c: c, critical: critical, log: log}
}

// Routes builds the chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", s.handleHealthz)
	r.Get("/bindings", s.handleBindings)
	return r
}

// ListenAndServe blocks serving diagnostics on addr.
func (s *Server) ListenAndServe(addr string) error {
	s.log.WithField("addr", addr).Info("container diagnostics listening")
	return http.ListenAndServe(addr, s.Routes())
}

// ── handlers ──────────────────────────────────────────────────────────────────

type healthResponse struct {
	Healthy bool                     `json:"healthy"`
	Results []container.VerifyResult `json:"results"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	results := container.VerifyReport(s.c, s.critical)
	healthy := true
	for _, r := range results {
		healthy = healthy && r.OK
	}

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, healthResponse{Healthy: healthy, Results: results})
}

func (s *Server) handleBindings(w http.ResponseWriter, _ *http.Request) {
	bindings := s.c.Bindings()
	sort.Slice(bindings, func(i, j int) bool { return bindings[i].Key < bindings[j].Key })
	writeJSON(w, http.StatusOK, map[string]any{"bindings": bindings})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
