// Package views renders the listing, detail/edit and creation pages.
package views

import (
	"embed"
	"html/template"
	"strings"

	"github.com/projectkeeper/project-keeper/internal/projects/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

var funcs = template.FuncMap{
	"upper": func(s domain.Status) string { return strings.ToUpper(string(s)) },
	"deref": domain.Deref,
}

// Templates parses the embedded pages for gin's HTML renderer.
func Templates() (*template.Template, error) {
	return template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
}
