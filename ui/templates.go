package ui

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"

	"dataviz/internal/chart"
	"dataviz/internal/logging"

	"github.com/gin-gonic/gin"
)

// Template names.
const (
	IndexTemplate = "index.html"
)

// loadTemplates parses every .html file under ui/templates in the embedded
// filesystem, naming each by its path relative to that directory.
func (s *Server) loadTemplates(embeddedFiles fs.FS) error {
	funcMap := template.FuncMap{
		"upper": strings.ToUpper,
		"kinds": func() []chart.Kind { return chart.Kinds },
	}

	templatesFS, err := fs.Sub(embeddedFiles, "ui/templates")
	if err != nil {
		return fmt.Errorf("failed to create templates filesystem: %w", err)
	}

	root, err := fs.Glob(templatesFS, "*.html")
	if err != nil {
		return fmt.Errorf("failed to glob root templates: %w", err)
	}
	nested, err := fs.Glob(templatesFS, "*/*.html")
	if err != nil {
		return fmt.Errorf("failed to glob nested templates: %w", err)
	}
	files := append(root, nested...)
	if len(files) == 0 {
		return fmt.Errorf("no templates found under ui/templates")
	}

	s.templates = template.New("").Funcs(funcMap)
	for _, file := range files {
		content, err := fs.ReadFile(templatesFS, file)
		if err != nil {
			return fmt.Errorf("failed to read template %s: %w", file, err)
		}
		if _, err := s.templates.New(file).Parse(string(content)); err != nil {
			return fmt.Errorf("failed to parse template %s: %w", file, err)
		}
	}
	return nil
}

// renderTemplate executes a template into a buffer first so a failure never
// leaves a half-written page.
func (s *Server) renderTemplate(c *gin.Context, name string, data interface{}) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		logging.FromContext(c.Request.Context()).Error("template rendering failed", "template", name, "error", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Template rendering failed"})
		return
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if _, err := buf.WriteTo(c.Writer); err != nil {
		logging.FromContext(c.Request.Context()).Warn("writing page failed", "template", name, "error", err)
	}
}
