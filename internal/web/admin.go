package web

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

const adminCookie = "admin_token"

func (s *Server) adminRoutes(r *gin.Engine) {
	r.GET("/admin/login", func(c *gin.Context) {
		c.HTML(http.StatusOK, "admin-login.html", gin.H{})
	})
	r.POST("/admin/login", s.adminLogin)
	r.GET("/admin/logout", func(c *gin.Context) {
		c.SetCookie(adminCookie, "", -1, "/admin", "", false, true)
		s.Logger.Info(c.Request.Context(), "admin logout", "from", s.hashIP(c.ClientIP()))
		c.Redirect(http.StatusFound, "/admin/login")
	})

	admin := r.Group("/admin")
	admin.Use(s.adminAuth())

	admin.GET("/dashboard", func(c *gin.Context) {
		stats, err := s.Log.Stats(c.Request.Context())
		if err != nil {
			s.Logger.Error(c.Request.Context(), "failed to load admin stats", "error", err)
			c.HTML(http.StatusInternalServerError, "admin-error.html", gin.H{"error": "Failed to load statistics"})
			return
		}
		c.HTML(http.StatusOK, "admin-dashboard.html", gin.H{"stats": stats})
	})

	admin.GET("/api/stats", func(c *gin.Context) {
		stats, err := s.Log.Stats(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, stats)
	})

	admin.GET("/submissions", func(c *gin.Context) {
		subs, err := s.Log.Recent(c.Request.Context(), 200)
		if err != nil {
			s.Logger.Error(c.Request.Context(), "failed to load submissions", "error", err)
			c.HTML(http.StatusInternalServerError, "admin-error.html", gin.H{"error": "Failed to load submissions"})
			return
		}
		c.HTML(http.StatusOK, "admin-submissions.html", gin.H{"submissions": subs})
	})

	admin.GET("/export/stats", func(c *gin.Context) {
		stats, err := s.Log.Stats(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Header("Content-Disposition", "attachment; filename=contact-stats.json")
		s.Logger.Info(c.Request.Context(), "admin stats exported", "from", s.hashIP(c.ClientIP()))
		c.JSON(http.StatusOK, stats)
	})

	admin.POST("/privacy/cleanup", func(c *gin.Context) {
		n, err := s.Log.Cleanup(c.Request.Context(), s.Retention)
		if err != nil {
			s.Logger.Error(c.Request.Context(), "privacy cleanup failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "cleanup failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": n})
	})
}

func (s *Server) adminLogin(c *gin.Context) {
	ctx := c.Request.Context()
	if s.Admin.Password == "" {
		c.HTML(http.StatusForbidden, "admin-login.html", gin.H{"error": "Admin login is disabled"})
		return
	}

	userOK := subtle.ConstantTimeCompare([]byte(c.PostForm("username")), []byte(s.Admin.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(c.PostForm("password")), []byte(s.Admin.Password)) == 1
	if !userOK || !passOK {
		s.Logger.Warn(ctx, "failed admin login attempt", "from", s.hashIP(c.ClientIP()))
		c.HTML(http.StatusUnauthorized, "admin-login.html", gin.H{"error": "Invalid credentials"})
		return
	}

	c.SetCookie(adminCookie, s.adminToken, 3600*24, "/admin", "", false, true)
	s.Logger.Info(ctx, "admin login", "from", s.hashIP(c.ClientIP()))
	c.Redirect(http.StatusFound, "/admin/dashboard")
}

func (s *Server) adminAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(adminCookie)
		if err != nil || subtle.ConstantTimeCompare([]byte(token), []byte(s.adminToken)) != 1 {
			c.Redirect(http.StatusFound, "/admin/login")
			c.Abort()
			return
		}
		c.Next()
	}
}
