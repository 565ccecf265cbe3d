package web

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) home(c *gin.Context) {
	form, loc := s.viewForm(c)
	c.HTML(http.StatusOK, "index.html", homeView{
		Lang:    loc.Code,
		Locales: s.Locales.Locales(),
		Profile: s.Profile,
		Form:    newFormView(form, loc),
	})
}

// contactForm returns just the form, for HTMX swaps.
func (s *Server) contactForm(c *gin.Context) {
	form, loc := s.viewForm(c)
	c.HTML(http.StatusOK, "contact.html", newFormView(form, loc))
}

func (s *Server) privacy(c *gin.Context) {
	c.HTML(http.StatusOK, "privacy.html", gin.H{
		"title":     "Privacy Policy",
		"retention": fmt.Sprintf("%d days", int(s.Retention.Hours()/24)),
	})
}
