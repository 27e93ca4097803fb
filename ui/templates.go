package ui

import (
	"bytes"
	"encoding/json"
	"html/template"

	"heartdash/internal/errors"

	"github.com/gin-gonic/gin"
	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// renderTemplate executes a template with the given data. It renders to a
// buffer first so a failing template never leaves a half-written page.
func (s *Server) renderTemplate(c *gin.Context, templateName string, data any) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, templateName, data); err != nil {
		logger.Error("template error for %s: %v", templateName, err)
		c.AbortWithStatusJSON(500, gin.H{"error": "Template rendering failed", "details": err.Error()})
		return
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Writer.WriteHeader(200)
	if _, err := buf.WriteTo(c.Writer); err != nil {
		logger.Warn("error writing template response: %v", err)
	}
}

// respondError writes an error as JSON with the status its code maps to
func respondError(c *gin.Context, err error) {
	status := errors.HTTPStatus(err)
	if status >= 500 {
		logger.Error("%s %s: %v", c.Request.Method, c.FullPath(), err)
	} else {
		logger.Debug("%s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	c.AbortWithStatusJSON(status, gin.H{
		"error": err.Error(),
		"code":  errors.GetCode(err),
	})
}

// toJSON inlines a value into a template, e.g. a Plotly figure
func toJSON(v any) (template.JS, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return template.JS(b), nil
}

// renderIntro converts the embedded introduction markdown to HTML
func renderIntro() (template.HTML, error) {
	md, err := embeddedFiles.ReadFile("content/intro.md")
	if err != nil {
		return "", errors.Wrap(err, "failed to read introduction")
	}
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags | mdhtml.HrefTargetBlank})
	return template.HTML(markdown.ToHTML(md, p, renderer)), nil
}
