// Package dashboard serves the project dashboard HTTP API: hook
// configuration and lifecycle events, the improvement backlog, project
// state documents, and agent personas.
package dashboard

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/agilebiz/agileai/internal/agent"
	"github.com/agilebiz/agileai/internal/backlog"
	"github.com/agilebiz/agileai/internal/config"
	"github.com/agilebiz/agileai/internal/hook"
	"github.com/agilebiz/agileai/internal/notify"
	"github.com/agilebiz/agileai/internal/state"
)

const heartbeatInterval = 30 * time.Second

// Server is the dashboard API server.
type Server struct {
	cfg     Config
	ws      *config.Workspace
	logger  *zap.Logger
	bus     *notify.Bus
	states  *state.Store
	items   *backlog.Store
	agents  *agent.Store
	hooks   *hook.ConfigStore
	metrics *hook.MetricsStore
}

// NewServer creates a dashboard server rooted at the given workspace.
func NewServer(cfg Config, ws *config.Workspace, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		cfg:     cfg,
		ws:      ws,
		logger:  logger,
		bus:     notify.NewBus(),
		states:  state.NewStore(ws.StateDir()),
		items:   backlog.NewStore(ws.BacklogPath()),
		agents:  agent.NewStore(ws.AgentsDir()),
		hooks:   hook.NewConfigStore(ws.HookRegistryPath(), ws.HookConfigPath()),
		metrics: hook.NewMetricsStore(ws.HookMetricsPath()),
	}
}

// Bus returns the server's event bus.
func (s *Server) Bus() *notify.Bus {
	return s.bus
}

// Handler builds the chi router for the API.
func (s *Server) Handler() http.Handler {
	r := chi.NewMux()
	r.Use(
		s.requestLogger,
		middleware.Recoverer,
	)
	if len(s.cfg.CORSOrigins) > 0 {
		r.Use(s.corsMiddleware)
	}

	r.Get("/healthz", s.handleHealthz)

	r.Route("/api", func(r chi.Router) {
		r.Route("/hooks", func(r chi.Router) {
			r.Get("/config", s.handleHookConfigGet)
			r.Put("/config", s.handleHookConfigPut)
			r.Get("/registry", s.handleHookRegistry)
			r.Get("/performance", s.handleHookPerformance)
			r.Post("/test/{hookName}", s.handleHookTest)
			r.Get("/events", s.handleEvents)
		})
		r.Route("/improvements", func(r chi.Router) {
			r.Get("/", s.handleImprovementsList)
			r.Post("/", s.handleImprovementsAdd)
			r.Get("/{id}", s.handleImprovementGet)
			r.Patch("/{id}", s.handleImprovementPatch)
			r.Delete("/{id}", s.handleImprovementDelete)
		})
		r.Route("/project-state", func(r chi.Router) {
			r.Get("/{kind}", s.handleStateGet)
			r.Put("/{kind}", s.handleStatePut)
		})
		r.Route("/agents", func(r chi.Router) {
			r.Get("/", s.handleAgentsList)
			r.Get("/{name}", s.handleAgentGet)
		})
	})

	return r
}

// Serve starts the HTTP server and the state-directory watcher, blocking
// until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    s.cfg.Addr(),
		Handler: s.Handler(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       time.Duration(s.cfg.ReadTimeoutSeconds) * time.Second,
		// WriteTimeout defaults to zero; a nonzero value cuts off SSE streams.
		WriteTimeout: time.Duration(s.cfg.WriteTimeoutSeconds) * time.Second,
	}

	s.logger.Info("starting dashboard server",
		zap.String("addr", fmt.Sprintf("http://%s", s.cfg.Addr())),
		zap.String("workspace", s.ws.Dir()))

	eg.Go(func() error {
		return s.watchState(egctx)
	})

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down dashboard server")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// watchState watches the workspace state directory and broadcasts a
// state.changed event when a document is edited outside the API.
func (s *Server) watchState(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(s.ws.StateDir()); err != nil {
		s.logger.Error("failed to watch state directory", zap.Error(err))
		// Continue without watching; the API writes still publish events.
		<-ctx.Done()
		return nil
	}

	var debounceTimer *time.Timer

	for {
		select {
		case <-ctx.Done():
			return nil

		case event := <-watcher.Events:
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			kind, err := state.KindForPath(event.Name)
			if err != nil {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(100*time.Millisecond, func() {
				s.logger.Debug("state file changed", zap.String("kind", string(kind)))
				s.bus.Publish(notify.Event{
					Type: notify.EventStateChanged,
					Data: map[string]any{"kind": string(kind)},
				})
			})

		case err := <-watcher.Errors:
			s.logger.Error("watcher error", zap.Error(err))
		}
	}
}

// requestLogger logs each request with method, path, status, and duration.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)))
	})
}

// corsMiddleware allows cross-origin requests from the configured origins.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && s.originAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) originAllowed(origin string) bool {
	for _, allowed := range s.cfg.CORSOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}
