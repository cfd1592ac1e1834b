// Package server exposes the generation pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/quizsmith/internal/logger"
	"github.com/abhisek/quizsmith/internal/quizgen"
)

const shutdownTimeout = 10 * time.Second

// Pipeline is the part of the orchestrator the handlers call.
type Pipeline interface {
	Generate(ctx context.Context, req quizgen.Request) quizgen.Result
	Regenerate(ctx context.Context, req quizgen.RegenerateRequest) (quizgen.Question, error)
	ModelEnabled() bool
}

// Config wires the server's collaborators.
type Config struct {
	Pipeline       Pipeline
	ModelName      string
	AllowedOrigins []string
	Log            *logger.Logger
}

// Server owns the gin engine.
type Server struct {
	Engine *gin.Engine
	log    *logger.Logger
}

// New builds the router.
func New(cfg Config) *Server {
	if cfg.Log == nil {
		cfg.Log = logger.Nop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(cfg.Log))
	r.Use(APICORS(cfg.AllowedOrigins))

	health := NewHealthHandler(cfg.Pipeline, cfg.ModelName)
	quiz := NewQuizHandler(cfg.Pipeline, cfg.Log)

	r.GET("/health", health.Health)

	api := r.Group("/api")
	{
		api.POST("/generate-questions", quiz.GenerateQuestions)
		api.POST("/regenerate-question", quiz.RegenerateQuestion)
	}

	return &Server{Engine: r, log: cfg.Log}
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.log.Info("http server shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
