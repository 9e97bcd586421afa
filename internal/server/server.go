// Package server exposes the printer, camera, analysis and fabrication
// capabilities as an MCP-style JSON-RPC tool server with a live status feed.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/Cyclone1070/genfab/internal/camera"
	"github.com/Cyclone1070/genfab/internal/device"
	"github.com/Cyclone1070/genfab/internal/provider/models"
	"github.com/Cyclone1070/genfab/internal/tool"
	"github.com/Cyclone1070/genfab/internal/workflow"
	jsoniter "github.com/json-iterator/go"
	"github.com/julienschmidt/httprouter"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	// Name is reported to clients during initialize.
	Name = "Generative Manufacturing"

	DefaultStatusInterval = 2 * time.Second

	shutdownTimeout = 5 * time.Second
	maxBodyBytes    = 4 << 20
)

// Deps are the capabilities the server exposes. Device is required;
// a nil Camera, Slicer or Generator makes the matching tools report
// that they are not configured.
type Deps struct {
	Device    device.Provider
	Camera    camera.Grabber
	Analyzer  analyzer
	Slicer    slicer
	Generator modelGenerator
}

// Options tunes a Server.
type Options struct {
	StatusInterval time.Duration
	DefaultEffort  models.Effort
	Version        string
	Logger         *slog.Logger
	// Events receives analysis progress; nil drops it.
	Events chan<- workflow.Event
}

// Server serves the tool protocol, health checks and the status feed.
type Server struct {
	device    device.Provider
	camera    camera.Grabber
	slicer    slicer
	generator modelGenerator
	tools     *tool.Registry

	statusInterval time.Duration
	version        string
	logger         *slog.Logger
	events         chan<- workflow.Event

	mu            sync.RWMutex
	analyzer      analyzer
	defaultEffort models.Effort
}

// New creates a Server.
func New(deps Deps, opts Options) *Server {
	if opts.StatusInterval <= 0 {
		opts.StatusInterval = DefaultStatusInterval
	}
	if opts.DefaultEffort == "" {
		opts.DefaultEffort = models.EffortLow
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	s := &Server{
		device:         deps.Device,
		camera:         deps.Camera,
		slicer:         deps.Slicer,
		generator:      deps.Generator,
		statusInterval: opts.StatusInterval,
		version:        opts.Version,
		logger:         opts.Logger,
		events:         opts.Events,
		analyzer:       deps.Analyzer,
		defaultEffort:  opts.DefaultEffort,
	}
	s.tools = s.buildTools()
	return s
}

// SetAnalysis swaps the analyzer and default effort, e.g. after a config reload.
func (s *Server) SetAnalysis(a analyzer, effort models.Effort) {
	if effort == "" {
		effort = models.EffortLow
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.analyzer = a
	s.defaultEffort = effort
}

func (s *Server) analysisSettings() (analyzer, models.Effort) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.analyzer, s.defaultEffort
}

// Tools returns the registry of exposed tools.
func (s *Server) Tools() *tool.Registry {
	return s.tools
}

// Handler returns the HTTP handler with all routes and CORS applied.
func (s *Server) Handler() http.Handler {
	router := httprouter.New()
	router.POST("/mcp", s.handleMCP)
	router.GET("/healthz", s.handleHealth)
	router.GET("/ws/status", s.handleStatusFeed)
	router.GlobalOPTIONS = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return withCORS(router)
}

// Serve listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("tool server listening", "addr", addr, "endpoint", fmt.Sprintf("http://%s/mcp", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("tool server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("tool server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown tool server: %w", err)
	}
	return nil
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "*")
		h.Set("Access-Control-Allow-Headers", "*")
		h.Set("Access-Control-Expose-Headers", "*")
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": s.version})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(data)
}
