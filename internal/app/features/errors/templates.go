// internal/app/features/errors/templates.go
package errors

import (
	"embed"

	"github.com/dalemusser/waffle/templates"
)

// templatesFS holds error_page, the one view every 401/403/404/405/500
// response renders through render.PageStatus.
//
//go:embed templates/*.gohtml
var templatesFS embed.FS

func init() {
	templates.Register(templates.Set{
		Name:     "errors",
		FS:       templatesFS,
		Patterns: []string{"templates/error_page.gohtml"},
	})
}
