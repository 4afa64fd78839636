// internal/app/resources/resources.go
package resources

import (
	"embed"
	"sync"

	"github.com/dalemusser/waffle/pantry/templates"
)

// SetName is the template set holding the page layout, the nav bar and the
// form partials every feature page is rendered inside.
const SetName = "shared"

//go:embed templates/*.gohtml
var FS embed.FS

var registerOnce sync.Once

// LoadSharedTemplates registers the layout set with the template engine.
// It must run before the engine boots; calling it again is a no-op.
func LoadSharedTemplates() {
	registerOnce.Do(func() {
		templates.Register(templates.Set{
			Name:     SetName,
			FS:       FS,
			Patterns: []string{"templates/*.gohtml"},
		})
	})
}
