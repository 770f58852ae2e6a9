package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"carereviews/core/audit"
	"carereviews/core/auth"
	"carereviews/core/config"
	"carereviews/core/notify"
	"carereviews/core/ratelimit"
	"carereviews/core/storage"
	"carereviews/types/ids"
)

// maxBodyBytes caps request bodies; a review is at most a few KB.
const maxBodyBytes = 64 << 10

// Options wires the server to its collaborators.
type Options struct {
	ListenAddr string
	TLS        config.TLSConfig
	Store      *storage.Storage
	Limiter    ratelimit.Limiter
	Authorizer *auth.Authorizer
	Audit      audit.AuditLogger
	Notifier   notify.Notifier
	Logger     *zap.Logger
}

type Server struct {
	store      *storage.Storage
	limiter    ratelimit.Limiter
	authorizer *auth.Authorizer
	audit      audit.AuditLogger
	notifier   notify.Notifier
	logger     *zap.Logger

	ListenAddr string
	tls        config.TLSConfig
	startTime  time.Time
	httpServer *http.Server

	// overridable in tests
	now   func() time.Time
	newID func() string
}

func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	auditLogger := opts.Audit
	if auditLogger == nil {
		auditLogger = audit.NewZapAuditLogger(logger)
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = notify.NewLogNotifier(logger, "")
	}
	return &Server{
		store:      opts.Store,
		limiter:    opts.Limiter,
		authorizer: opts.Authorizer,
		audit:      auditLogger,
		notifier:   notifier,
		logger:     logger,
		ListenAddr: opts.ListenAddr,
		tls:        opts.TLS,
		startTime:  time.Now(),
		now:        time.Now,
		newID:      ids.NewReviewID,
	}
}

// Handler returns the HTTP routes of the review service.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Health/status endpoints
	mux.HandleFunc("GET /health/liveness", s.HandleLiveness)
	mux.HandleFunc("GET /health/readiness", s.HandleReadiness)
	mux.HandleFunc("GET /status", s.HandleStatus)
	mux.HandleFunc("GET /nodehealth", s.HandleNodeHealth)

	RegisterReviewAPI(mux, s)

	return s.logRequests(mux)
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:              s.ListenAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	var err error
	if s.tls.Enabled {
		s.logger.Info("API server listening (HTTPS)", zap.String("addr", s.ListenAddr), zap.String("cert", s.tls.CertPath))
		err = s.httpServer.ListenAndServeTLS(s.tls.CertPath, s.tls.KeyPath)
	} else {
		s.logger.Info("API server listening (HTTP only)", zap.String("addr", s.ListenAddr))
		err = s.httpServer.ListenAndServe()
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// logRequests logs method, path, status and latency. Bodies are never logged.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("latency", time.Since(start)),
		)
	})
}

// clientAddr returns the remote host without port.
func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr // fallback if parsing fails
	}
	return host
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error  string      `json:"error"`
	Fields interface{} `json:"fields,omitempty"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
