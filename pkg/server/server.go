// Package server exposes the REST API: persona CRUD, agent listing,
// conversation lifecycle, recommendations, and the single-turn AI
// endpoint, plus the operational health and metrics endpoints.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/frankx-ai/frankx/pkg/config"
	"github.com/frankx-ai/frankx/pkg/dispatch"
	"github.com/frankx-ai/frankx/pkg/models"
	"github.com/frankx-ai/frankx/pkg/persona"
	"github.com/frankx-ai/frankx/pkg/recommend"
	"github.com/frankx-ai/frankx/pkg/session"
)

// Server is the HTTP front end over the service layer.
type Server struct {
	config     config.ServerConfig
	personas   *persona.Service
	sessions   *session.Service
	gateway    *dispatch.Gateway
	models     *models.Registry
	engine     *recommend.Engine
	httpServer *http.Server
	logger     *slog.Logger
}

// New builds a Server over the given services.
func New(cfg config.ServerConfig, personas *persona.Service, sessions *session.Service, gateway *dispatch.Gateway, modelReg *models.Registry, engine *recommend.Engine) *Server {
	s := &Server{
		config:   cfg,
		personas: personas,
		sessions: sessions,
		gateway:  gateway,
		models:   modelReg,
		engine:   engine,
		logger:   slog.Default().With("component", "server"),
	}
	s.httpServer = &http.Server{
		Addr:    cfg.Address(),
		Handler: s.Router(),
	}
	return s
}

// Router builds the chi router with all routes and middleware.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(loggingMiddleware)
	r.Use(tracingMiddleware)
	r.Use(corsMiddleware(s.config.CORS))

	r.Get("/healthz", s.handleHealth)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Get("/models", s.handleListModels)

	r.Get("/personas", s.handleListPersonas)
	r.Post("/personas", s.handleCreatePersona)
	r.Put("/personas/{id}", s.handleUpdatePersona)
	r.Delete("/personas/{id}", s.handleDeletePersona)

	r.Get("/agents", s.handleListAgents)
	r.Post("/agents/conversation", s.handleCreateConversation)
	r.Post("/agents/message", s.handleSendMessage)
	r.Post("/agents/clear-conversation", s.handleClearConversation)

	r.Get("/recommendations/agents", s.handleRecommendAgents)
	r.Get("/recommendations/resources", s.handleRecommendResources)

	r.Post("/ai/conversation", s.handleAIConversation)

	return r
}

// Start runs the HTTP listener until ctx is cancelled, then shuts down
// gracefully within the configured timeout.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server starting", "address", s.config.Address())
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server failed: %w", err)
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return s.Stop()
	}
}

// Stop shuts the listener down gracefully.
func (s *Server) Stop() error {
	timeout := time.Duration(s.config.ShutdownTimeoutSeconds) * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Info("http server shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}
	return nil
}
