// Package web serves the portfolio over HTTP: the page itself, HTMX
// fragments, the per-view event stream and the admin area.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/Zachkp/showcase/internal/analytics"
	"github.com/Zachkp/showcase/internal/config"
	"github.com/Zachkp/showcase/internal/content"
	"github.com/Zachkp/showcase/internal/view"
	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second
	visitorBuffer     = 256
)

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithClock sets the clock every timer-driven machine is created on.
func WithClock(clock clockwork.Clock) Option {
	return func(s *Server) { s.clock = clock }
}

// WithStore uses an already opened analytics store instead of opening
// Config.AnalyticsDB. The server takes ownership of it.
func WithStore(store *analytics.Store) Option {
	return func(s *Server) { s.store = store }
}

// Server hosts the site.
type Server struct {
	cfg       config.Config
	site      *content.Site
	blocks    []view.Block
	logger    *zap.Logger
	clock     clockwork.Clock
	store     *analytics.Store
	recorder  *analytics.Recorder
	admin     *adminAuth
	templates *template.Template
	engine    *gin.Engine
}

// NewServer builds a configured server for site.
func NewServer(ctx context.Context, cfg config.Config, site *content.Site, opts ...Option) (*Server, error) {
	if site == nil {
		return nil, errors.New("site content is required")
	}
	s := &Server{
		cfg:    cfg,
		site:   site,
		logger: zap.NewNop(),
		clock:  clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.blocks = s.gatedBlocks()

	tmpl, err := template.New("").Funcs(templateFuncs).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	s.templates = tmpl

	if s.store == nil && cfg.AnalyticsEnabled() {
		store, err := analytics.Open(ctx, cfg.AnalyticsDB, analytics.WithLogger(s.logger))
		if err != nil {
			return nil, fmt.Errorf("open analytics: %w", err)
		}
		s.store = store
	}
	if s.store != nil {
		s.recorder = analytics.NewRecorder(s.store, visitorBuffer)
		s.admin, err = newAdminAuth(cfg, s.logger)
		if err != nil {
			s.store.Close()
			return nil, err
		}
	}

	gin.SetMode(cfg.GinMode)
	s.engine = s.routes()
	return s, nil
}

// gatedBlocks applies configured delay overrides to the content defaults.
func (s *Server) gatedBlocks() []view.Block {
	blocks := view.SiteBlocks(s.site)
	for i, b := range blocks {
		switch {
		case b.Key == view.HeroBlock && s.cfg.HeroGateDelay > 0:
			blocks[i].Delay = s.cfg.HeroGateDelay
		case b.Key == view.MentorshipBlock && s.cfg.MentorshipGateDelay > 0:
			blocks[i].Delay = s.cfg.MentorshipGateDelay
		case b.Key != view.HeroBlock && b.Key != view.MentorshipBlock && s.cfg.ProjectGateDelay > 0:
			blocks[i].Delay = s.cfg.ProjectGateDelay
		}
	}
	return blocks
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.SetHTMLTemplate(s.templates)
	r.Use(gin.Recovery(), requestLogger(s.logger), tracing())
	if s.recorder != nil {
		r.Use(visitorTracking(s.recorder))
	}

	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err) // embedded at build time
	}
	r.StaticFS("/static", http.FS(static))

	r.GET("/", s.handleIndex)
	r.GET("/projects/:id/carousel", s.handleCarousel)
	r.GET("/live", s.handleLive)
	r.GET("/contact-form", s.handleContactForm)
	r.POST("/contact", s.handleContact)
	r.GET("/privacy", s.handlePrivacy)
	if s.admin != nil {
		s.setupAdminRoutes(r)
	}
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.engine }

// ListenAndServe serves on the configured address until ctx ends, running
// the analytics writer and retention sweep alongside.
func (s *Server) ListenAndServe(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s.engine,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("web server listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve http: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http: %w", err)
		}
		return nil
	})
	if s.recorder != nil {
		g.Go(func() error { return s.recorder.Run(ctx) })
		g.Go(func() error {
			return s.store.RunCleanup(ctx, s.clock, s.cfg.CleanupInterval, s.cfg.VisitorRetention)
		})
	}
	return g.Wait()
}

// Close releases the analytics store.
func (s *Server) Close() {
	if s.store == nil {
		return
	}
	if err := s.store.Close(); err != nil {
		s.logger.Warn("close analytics store", zap.Error(err))
	}
}
