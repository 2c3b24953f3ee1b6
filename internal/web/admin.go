package web

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/Zachkp/showcase/internal/analytics"
	"github.com/Zachkp/showcase/internal/config"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const adminCookie = "admin_token"

// adminAuth holds the admin credentials and the per-process session token.
type adminAuth struct {
	username string
	password string
	token    string
}

// newAdminAuth returns the admin credentials. Development mode falls back to
// admin/admin123 with a warning; release mode refuses to start without them.
func newAdminAuth(cfg config.Config, logger *zap.Logger) (*adminAuth, error) {
	username, password := cfg.AdminUsername, cfg.AdminPassword
	if username == "" || password == "" {
		if cfg.GinMode != gin.DebugMode && cfg.GinMode != gin.TestMode {
			return nil, errors.New("ADMIN_USERNAME and ADMIN_PASSWORD are required when analytics is enabled")
		}
		if username == "" {
			username = "admin"
			logger.Warn("using default admin username, set ADMIN_USERNAME")
		}
		if password == "" {
			password = "admin123"
			logger.Warn("using default admin password, set ADMIN_PASSWORD")
		}
	}
	token, err := analytics.RandomToken()
	if err != nil {
		return nil, err
	}
	logger.Info("admin access available", zap.String("path", "/admin/login"))
	return &adminAuth{username: username, password: password, token: token}, nil
}

func (a *adminAuth) check(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(a.password)) == 1
	return userOK && passOK
}

// Middleware to check admin authentication
func (a *adminAuth) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(adminCookie)
		if err != nil || subtle.ConstantTimeCompare([]byte(token), []byte(a.token)) != 1 {
			c.Redirect(http.StatusFound, "/admin/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// Setup all admin routes
func (s *Server) setupAdminRoutes(r *gin.Engine) {
	r.GET("/admin/login", func(c *gin.Context) {
		c.HTML(http.StatusOK, "admin-login.html", gin.H{
			"title": "Admin Login",
		})
	})

	r.POST("/admin/login", func(c *gin.Context) {
		who := s.store.HashIP(c.ClientIP())
		if !s.admin.check(c.PostForm("username"), c.PostForm("password")) {
			s.logger.Warn("failed admin login attempt", zap.String("from", who))
			c.HTML(http.StatusUnauthorized, "admin-login.html", gin.H{
				"title": "Admin Login",
				"error": "Invalid credentials",
			})
			return
		}
		// Secure cookie (24 hours)
		c.SetCookie(adminCookie, s.admin.token, 3600*24, "/admin", "", c.Request.TLS != nil, true)
		s.logger.Info("admin login successful", zap.String("from", who))
		c.Redirect(http.StatusFound, "/admin/dashboard")
	})

	r.GET("/admin/logout", func(c *gin.Context) {
		c.SetCookie(adminCookie, "", -1, "/admin", "", c.Request.TLS != nil, true)
		s.logger.Info("admin logout", zap.String("from", s.store.HashIP(c.ClientIP())))
		c.Redirect(http.StatusFound, "/admin/login")
	})

	// Protected admin routes group
	admin := r.Group("/admin")
	admin.Use(s.admin.middleware())

	admin.GET("/dashboard", func(c *gin.Context) {
		stats, err := s.store.Stats(c.Request.Context())
		if err != nil {
			s.logger.Error("error loading admin stats", zap.Error(err))
			c.HTML(http.StatusInternalServerError, "admin-error.html", gin.H{
				"error": "Failed to load statistics",
			})
			return
		}
		c.HTML(http.StatusOK, "admin-dashboard.html", gin.H{
			"stats": stats,
		})
	})

	admin.GET("/api/stats", func(c *gin.Context) {
		stats, err := s.store.Stats(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, stats)
	})

	admin.GET("/visitors", func(c *gin.Context) {
		visitors, err := s.store.Recent(c.Request.Context(), 200)
		if err != nil {
			s.logger.Error("error loading visitors", zap.Error(err))
			c.HTML(http.StatusInternalServerError, "admin-error.html", gin.H{
				"error": "Failed to load visitors",
			})
			return
		}
		c.HTML(http.StatusOK, "admin-visitors.html", gin.H{
			"visitors": visitors,
		})
	})

	// Privacy compliance: purge anything past the retention window now
	admin.POST("/privacy/cleanup", func(c *gin.Context) {
		n, err := s.store.Cleanup(c.Request.Context(), s.cfg.VisitorRetention)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Privacy cleanup failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Privacy cleanup complete", "removed": n})
	})

	// Statistics export (for backups or analysis)
	admin.GET("/export/stats", func(c *gin.Context) {
		stats, err := s.store.Stats(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Header("Content-Disposition", "attachment; filename=admin-stats.json")
		s.logger.Info("admin stats exported", zap.String("by", s.store.HashIP(c.ClientIP())))
		c.JSON(http.StatusOK, stats)
	})
}
