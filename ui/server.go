// Package ui is the HTTP boundary: the dashboard page, the JSON endpoints it
// calls, the file/report downloads and the admin listing.
package ui

import (
	"context"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"dataviz/app"
	"dataviz/internal/errors"
	"dataviz/internal/logging"
	"dataviz/internal/session"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/semaphore"
)

// Pinger is the database liveness check behind /healthz.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Options wires the server's collaborators and limits.
type Options struct {
	Workbench            *app.WorkbenchService
	Sessions             *session.Manager
	DB                   Pinger
	CookieName           string
	SessionTTL           time.Duration
	MaxUploadBytes       int64
	MaxConcurrentUploads int64
}

// Server represents the web server
type Server struct {
	router     *gin.Engine
	workbench  *app.WorkbenchService
	sessions   *session.Manager
	db         Pinger
	templates  *template.Template
	uploadGate *semaphore.Weighted

	cookieName     string
	sessionTTL     time.Duration
	maxUploadBytes int64
}

// NewServer builds the router. embeddedFiles must contain ui/templates.
func NewServer(opts Options, embeddedFiles fs.FS) (*Server, error) {
	if opts.CookieName == "" {
		opts.CookieName = "dataviz_session"
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 24 * time.Hour
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 50 << 20
	}
	if opts.MaxConcurrentUploads <= 0 {
		opts.MaxConcurrentUploads = 4
	}

	s := &Server{
		router:         gin.New(),
		workbench:      opts.Workbench,
		sessions:       opts.Sessions,
		db:             opts.DB,
		uploadGate:     semaphore.NewWeighted(opts.MaxConcurrentUploads),
		cookieName:     opts.CookieName,
		sessionTTL:     opts.SessionTTL,
		maxUploadBytes: opts.MaxUploadBytes,
	}

	if err := s.loadTemplates(embeddedFiles); err != nil {
		return nil, err
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.HandleMethodNotAllowed = true
	s.router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"success": false, "message": "Invalid request method"})
	})
	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Not found"})
	})

	s.router.GET("/healthz", s.handleHealth)

	pages := s.router.Group("/", s.sessionMiddleware())
	pages.GET("/", s.handleIndex)
	pages.POST("/upload/", s.handleUpload)
	pages.POST("/process_data/", s.handleProcessData)
	pages.GET("/get_columns/", s.handleGetColumns)
	pages.POST("/generate_graph/", s.handleGenerateGraph)
	pages.POST("/save_data/", s.handleSaveData)

	api := s.router.Group("/api", s.sessionMiddleware())
	api.GET("/snapshots", s.handleListSnapshots)
	api.POST("/snapshots/:id/load", s.handleLoadSnapshot)
	api.DELETE("/snapshots/:id", s.handleDeleteSnapshot)
	api.GET("/chart.png", s.handleChartPNG)
	api.GET("/export.xlsx", s.handleExport)
	api.GET("/report", s.handleReport)

	admin := gin.WrapH(s.adminRouter())
	s.router.GET("/admin/*path", admin)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves on addr until ctx is cancelled, then drains in-flight
// requests for up to ten seconds.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.sessions.Run(ctx, time.Minute)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting dataviz", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return errors.Wrap(err, "server stopped")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	slog.Info("shutting down", "addr", addr)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "graceful shutdown failed")
	}
	return nil
}

func (s *Server) handleHealth(c *gin.Context) {
	status := gin.H{"success": true, "status": "ok", "sessions": s.sessions.Len()}
	if s.db != nil {
		if err := s.db.PingContext(c.Request.Context()); err != nil {
			logging.FromContext(c.Request.Context()).Error("health check failed", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"success":  false,
				"status":   "degraded",
				"database": err.Error(),
			})
			return
		}
		status["database"] = "ok"
	}
	c.JSON(http.StatusOK, status)
}
