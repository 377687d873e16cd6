// Package health serves liveness and readiness probes for the ingestion
// service, plus the metrics endpoint when it shares the port.
package health

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	statusOK       = "ok"
	statusNotReady = "not_ready"
	statusFailing  = "failing"

	defaultPort  = "8080"
	checkTimeout = 3 * time.Second
)

// CheckFunc reports whether one dependency is usable
type CheckFunc func(ctx context.Context) error

// DatabasePinger is satisfied by the database pool
type DatabasePinger interface {
	Ping(ctx context.Context) error
}

// ClassifierChecker is satisfied by the classifier client
type ClassifierChecker interface {
	HealthCheck(ctx context.Context) error
}

// Status is the body of every probe response
type Status struct {
	Status  string                 `json:"status"`
	Service string                 `json:"service"`
	Version string                 `json:"version,omitempty"`
	Commit  string                 `json:"commit,omitempty"`
	Uptime  string                 `json:"uptime,omitempty"`
	Checks  map[string]CheckResult `json:"checks,omitempty"`
}

// CheckResult is the outcome of one readiness check
type CheckResult struct {
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
	LatencyMs int64  `json:"latency_ms"`
}

// Config holds the configuration for the health server
type Config struct {
	ServiceName string
	Version     string
	Commit      string
	// Port defaults to $HEALTH_PORT, then 8080
	Port       string
	Logger     *logrus.Logger
	DB         DatabasePinger
	Classifier ClassifierChecker
	Checks     map[string]CheckFunc
	// Metrics, when set, is mounted at /metrics
	Metrics http.Handler
}

// Server answers /health, /live and /ready
type Server struct {
	cfg     Config
	checks  map[string]CheckFunc
	logger  *logrus.Entry
	started time.Time

	mu     sync.RWMutex
	ready  bool
	server *http.Server
}

// NewServer creates a health server. It reports not ready until SetReady(true).
func NewServer(cfg Config) *Server {
	if cfg.Port == "" {
		cfg.Port = os.Getenv("HEALTH_PORT")
	}
	if cfg.Port == "" {
		cfg.Port = defaultPort
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}

	checks := make(map[string]CheckFunc, len(cfg.Checks)+2)
	for name, check := range cfg.Checks {
		checks[name] = check
	}
	if cfg.DB != nil {
		checks["database"] = cfg.DB.Ping
	}
	if cfg.Classifier != nil {
		checks["classifier"] = cfg.Classifier.HealthCheck
	}

	return &Server{
		cfg:     cfg,
		checks:  checks,
		logger:  cfg.Logger.WithField("component", "health"),
		started: time.Now(),
	}
}

// SetReady flips the readiness gate
func (s *Server) SetReady(ready bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = ready
}

// IsReady returns the readiness gate
func (s *Server) IsReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Handler returns the probe mux
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleLive)
	mux.HandleFunc("/live", s.handleLive)
	mux.HandleFunc("/ready", s.handleReady)
	if s.cfg.Metrics != nil {
		mux.Handle("/metrics", s.cfg.Metrics)
	}
	return mux
}

// Start binds the port and serves until ctx is done. A port that cannot be
// bound is returned as an error.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", ":"+s.cfg.Port)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	s.mu.Lock()
	s.server = srv
	s.mu.Unlock()

	s.logger.WithFields(logrus.Fields{"port": s.cfg.Port, "service": s.cfg.ServiceName}).Info("Health server listening")
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.WithError(err).Error("Health server stopped")
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.Shutdown(shutdownCtx); err != nil {
			s.logger.WithError(err).Warn("Health server shutdown failed")
		}
	}()
	return nil
}

// Shutdown stops a started server
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.RLock()
	srv := s.server
	s.mu.RUnlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Status{
		Status:  statusOK,
		Service: s.cfg.ServiceName,
		Version: s.cfg.Version,
		Commit:  s.cfg.Commit,
		Uptime:  time.Since(s.started).Truncate(time.Second).String(),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	results := s.runChecks(ctx)
	body := Status{Status: statusOK, Service: s.cfg.ServiceName, Checks: results}

	code := http.StatusOK
	if !s.IsReady() {
		body.Status, code = statusNotReady, http.StatusServiceUnavailable
	}
	for _, res := range results {
		if res.Status != statusOK {
			body.Status, code = statusNotReady, http.StatusServiceUnavailable
		}
	}
	if code != http.StatusOK {
		s.logger.WithField("checks", failing(results)).Debug("Readiness probe failed")
	}
	writeJSON(w, code, body)
}

// runChecks runs every check concurrently under ctx. A failing check is
// recorded in its result, never returned, so one failure does not cancel the rest.
func (s *Server) runChecks(ctx context.Context) map[string]CheckResult {
	results := make(map[string]CheckResult, len(s.checks))
	var mu sync.Mutex
	var g errgroup.Group
	for name, check := range s.checks {
		g.Go(func() error {
			start := time.Now()
			res := CheckResult{Status: statusOK}
			if err := check(ctx); err != nil {
				res.Status, res.Error = statusFailing, err.Error()
			}
			res.LatencyMs = time.Since(start).Milliseconds()

			mu.Lock()
			results[name] = res
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func failing(results map[string]CheckResult) []string {
	var names []string
	for name, res := range results {
		if res.Status != statusOK {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
