// Package web is the HTTP surface of the site: the home page, the HTMX
// endpoints driving the contact form, the stateless contact API and the
// admin pages.
package web

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/artemstakhov/portfolio/internal/contact"
	"github.com/artemstakhov/portfolio/internal/i18n"
	"github.com/artemstakhov/portfolio/internal/logging"
	"github.com/artemstakhov/portfolio/internal/session"
	"github.com/artemstakhov/portfolio/internal/store"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

const (
	sessionCookie = "contact_session"
	langCookie    = "lang"
)

// SubmissionLog is the read side of the submission store used by the admin
// pages.
type SubmissionLog interface {
	Stats(ctx context.Context) (*store.Stats, error)
	Recent(ctx context.Context, limit int) ([]store.Submission, error)
	Cleanup(ctx context.Context, maxAge time.Duration) (int64, error)
}

// Profile is the static content of the home page.
type Profile struct {
	Name         string
	Role         string
	About        string
	Skills       []string
	Experience   []Job
	Certificates []Certificate
}

type Certificate struct {
	Name   string
	Issuer string
	Link   string
}

type Job struct {
	Title      string
	Company    string
	Period     string
	Highlights []string
}

type Admin struct {
	Username string
	// Password empty disables the admin login.
	Password string
}

type Deps struct {
	Pipeline *contact.Pipeline
	Sessions *session.Store
	Locales  *i18n.Catalog
	Log      SubmissionLog
	Logger   logging.Logger
	Profile  Profile
	Admin    Admin

	HashSalt           string
	MaxAttachmentBytes int64
	Retention          time.Duration
}

type Server struct {
	Deps
	adminToken string
	router     *gin.Engine
}

// New builds the router. A random salt and admin token are generated when
// none is configured.
func New(d Deps) (*Server, error) {
	if d.Logger == nil {
		d.Logger = logging.NewNop()
	}

	token, err := randomToken()
	if err != nil {
		return nil, err
	}
	if d.HashSalt == "" {
		if d.HashSalt, err = randomToken(); err != nil {
			return nil, err
		}
	}

	s := &Server{Deps: d, adminToken: token}
	if s.router, err = s.routes(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() (*gin.Engine, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(s.requestLogger(), gin.Recovery())
	r.SetHTMLTemplate(tmpl)
	r.MaxMultipartMemory = s.MaxAttachmentBytes + 1<<20
	r.StaticFS("/static", http.FS(static))

	r.GET("/", s.home)
	r.GET("/contact-form", s.contactForm)
	r.GET("/privacy", s.privacy)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.POST("/contact/selector", s.toggleSelector)
	r.POST("/contact/fields", s.addField)
	r.PUT("/contact/fields/:id", s.updateField)
	r.DELETE("/contact/fields/:id", s.removeField)
	r.POST("/contact/fields/:id/file", s.attachFile)
	r.POST("/contact", s.submit)

	r.POST("/api/contact", s.apiSubmit)

	s.adminRoutes(r)

	return r, nil
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/static/") {
			return
		}
		s.Logger.Info(c.Request.Context(), "request",
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// hashIP returns a salted, truncated hash so raw addresses are never stored.
func (s *Server) hashIP(ip string) string {
	sum := sha256.Sum256([]byte(ip + s.HashSalt))
	return hex.EncodeToString(sum[:])[:16]
}

func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// locale picks the visitor's language. An explicit ?lang is remembered in a
// cookie.
func (s *Server) locale(c *gin.Context) *i18n.Locale {
	if code := c.Query("lang"); code != "" {
		if l, ok := s.Locales.Get(code); ok {
			c.SetCookie(langCookie, l.Code, 365*24*3600, "/", "", false, false)
			return l
		}
	}
	code, _ := c.Cookie(langCookie)
	return s.Locales.Match(code, c.GetHeader("Accept-Language"))
}

// viewForm returns the visitor's form for rendering. Reads never start a
// session: visitors without one see an empty form that is not kept.
func (s *Server) viewForm(c *gin.Context) (*contact.Form, *i18n.Locale) {
	loc := s.locale(c)
	if id, err := c.Cookie(sessionCookie); err == nil {
		if form, ok := s.Sessions.Lookup(id); ok {
			syncLocale(form, loc)
			return form, loc
		}
	}
	return s.newForm(c, loc), loc
}

// session returns the visitor's session id and form, starting a session if
// needed.
func (s *Server) session(c *gin.Context) (string, *contact.Form, *i18n.Locale) {
	loc := s.locale(c)
	id, _ := c.Cookie(sessionCookie)

	id, form, created := s.Sessions.Get(id, func() *contact.Form {
		return s.newForm(c, loc)
	})
	if !created {
		syncLocale(form, loc)
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, id, int(s.Sessions.TTL().Seconds()), "/", "", false, true)
	return id, form, loc
}

func (s *Server) newForm(c *gin.Context, loc *i18n.Locale) *contact.Form {
	return s.Pipeline.NewForm(loc.Messages(), contact.Meta{
		Locale: loc.Code,
		Origin: s.hashIP(c.ClientIP()),
	})
}

func syncLocale(form *contact.Form, loc *i18n.Locale) {
	if form.Meta().Locale != loc.Code {
		form.UseMessages(loc.Messages(), loc.Code)
	}
}
