package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/vbonduro/courtlog/internal/photostore"
	"github.com/vbonduro/courtlog/internal/service"
)

type Server struct {
	service *service.IssueService
	photos  photostore.PhotoStore
	mux     *http.ServeMux
	logger  *slog.Logger
}

func NewServer(svc *service.IssueService, photos photostore.PhotoStore, logger *slog.Logger) *Server {
	s := &Server{
		service: svc,
		photos:  photos,
		mux:     http.NewServeMux(),
		logger:  logger,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /issues", s.handleListIssues)
	s.mux.HandleFunc("POST /issues", s.handleCreateIssue)
	s.mux.HandleFunc("PUT /issues/{id}", s.handleUpdateIssue)
	s.mux.HandleFunc("DELETE /issues/{id}", s.handleDeleteIssue)
	s.mux.HandleFunc("GET /issues/{id}/photo", s.handleGetPhoto)
	s.mux.HandleFunc("GET /issues/{id}/thumbnail", s.handleGetThumbnail)
	s.mux.HandleFunc("GET /courts", s.handleListCourts)
	s.mux.HandleFunc("GET /export/csv", s.handleExportCSV)
	s.mux.HandleFunc("GET /export/xlsx", s.handleExportSpreadsheet)
	s.mux.HandleFunc("GET /export/pdf", s.handleExportPDF)
}

// Handler returns the full middleware-wrapped handler chain.
func (s *Server) Handler() http.Handler {
	return securityHeaders(requestLogger(s.logger, s.mux))
}

func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("listening", "addr", addr)
	return http.ListenAndServe(addr, s.Handler())
}

// securityHeaders adds defensive HTTP response headers to every response.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// statusRecorder wraps http.ResponseWriter to capture the written status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}
