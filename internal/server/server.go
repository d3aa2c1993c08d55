// Package server exposes the pipe and metadata clients over HTTP with gin.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/walterwhite-69/Miruro-API/internal/anilist"
	"github.com/walterwhite-69/Miruro-API/internal/config"
	"github.com/walterwhite-69/Miruro-API/internal/jsonvalue"
	"github.com/walterwhite-69/Miruro-API/internal/pipe"
)

const defaultShutdownTimeout = 10 * time.Second

// PipeService fetches episode lists and stream sources
type PipeService interface {
	FetchEpisodes(ctx context.Context, anilistID int) (*jsonvalue.Value, error)
	FetchSources(ctx context.Context, req pipe.SourcesRequest) (*jsonvalue.Value, error)
}

// MetadataService answers catalogue queries
type MetadataService interface {
	Search(ctx context.Context, query string, p anilist.Pagination) (*anilist.ResultPage, error)
	Collection(ctx context.Context, coll anilist.Collection, p anilist.Pagination) (*anilist.ResultPage, error)
	Schedule(ctx context.Context, p anilist.Pagination) (*anilist.SchedulePage, error)
	Info(ctx context.Context, id int) (*anilist.MediaInfo, error)
	Filter(ctx context.Context, opts anilist.FilterOptions, p anilist.Pagination) (*anilist.ResultPage, error)
	Suggestions(ctx context.Context, query string) ([]anilist.Suggestion, error)
	Characters(ctx context.Context, id int, p anilist.Pagination) (*anilist.CharacterPage, error)
	Relations(ctx context.Context, id int) ([]anilist.Relation, error)
	Recommendations(ctx context.Context, id int, p anilist.Pagination) (*anilist.RecommendationPage, error)
}

// Server is the HTTP front of the service
type Server struct {
	cfg    config.ServerConfig
	router *gin.Engine
	pipe   PipeService
	meta   MetadataService
	logger *slog.Logger
}

// New builds the router and registers every route
func New(cfg config.ServerConfig, pipeSvc PipeService, meta MetadataService, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}

	s := &Server{
		cfg:    cfg,
		router: gin.New(),
		pipe:   pipeSvc,
		meta:   meta,
		logger: logger,
	}

	s.router.Use(
		requestID(),
		accessLog(logger),
		recovery(logger),
		cors(),
	)
	s.setupRoutes()

	return s
}

func (s *Server) setupRoutes() {
	r := s.router

	r.GET("/", s.handleIndex)
	r.GET("/health", s.handleHealth)

	r.GET("/episodes/:anilistId", s.handleEpisodes)
	r.GET("/sources", s.handleSources)

	r.GET("/search", s.handleSearch)
	r.GET("/suggestions", s.handleSuggestions)
	r.GET("/filter", s.handleFilter)
	r.GET("/trending", s.handleCollection(anilist.Trending))
	r.GET("/popular", s.handleCollection(anilist.Popular))
	r.GET("/upcoming", s.handleCollection(anilist.Upcoming))
	r.GET("/recent", s.handleCollection(anilist.Recent))
	r.GET("/schedule", s.handleSchedule)
	r.GET("/info/:id", s.handleInfo)

	anime := r.Group("/anime/:id")
	{
		anime.GET("/characters", s.handleCharacters)
		anime.GET("/relations", s.handleRelations)
		anime.GET("/recommendations", s.handleRecommendations)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
}

// Handler returns the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on the configured address until ctx is cancelled
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down gracefully
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:        s.router,
		ReadTimeout:    s.cfg.ReadTimeout,
		WriteTimeout:   s.cfg.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced shutdown: %w", err)
	}
	return <-errCh
}
