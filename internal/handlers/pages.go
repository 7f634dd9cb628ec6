package handlers

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rgcsekaraa/todorama/internal/middleware"
)

//go:embed templates/*.html
var templateFS embed.FS

type PageHandler struct {
	templates *template.Template
}

func NewPageHandler() (*PageHandler, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &PageHandler{templates: tmpl}, nil
}

// Landing serves the public sign-in page.
func (h *PageHandler) Landing(c *gin.Context) {
	h.render(c, "landing.html", nil)
}

// Dashboard serves the task list shell. It runs behind RequireSessionPage, so
// the session user is always present here.
func (h *PageHandler) Dashboard(c *gin.Context) {
	claims := middleware.CurrentClaims(c)
	h.render(c, "dashboard.html", gin.H{
		"Name":    claims.Name,
		"Picture": claims.Picture,
	})
}

func (h *PageHandler) render(c *gin.Context, name string, data interface{}) {
	c.Status(http.StatusOK)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(c.Writer, name, data); err != nil {
		c.AbortWithStatus(http.StatusInternalServerError)
	}
}
