// Package render is the single path from handlers to the WAFFLE template
// engine. Handlers call Page/PageStatus instead of templates.Render so the
// engine can be swapped for a recorder in tests.
package render

import (
	"net/http"
	"sync"

	"github.com/dalemusser/waffle/pantry/templates"
)

// Func renders the named template with data.
type Func func(w http.ResponseWriter, r *http.Request, name string, data any)

var (
	mu   sync.RWMutex
	page Func = func(w http.ResponseWriter, r *http.Request, name string, data any) {
		templates.Render(w, r, name, data)
	}
)

// Page renders a full page with status 200.
func Page(w http.ResponseWriter, r *http.Request, name string, data any) {
	mu.RLock()
	f := page
	mu.RUnlock()
	f(w, r, name, data)
}

// PageStatus renders a full page with the given status code.
func PageStatus(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	Page(w, r, name, data)
}

// Swap replaces the renderer and returns a func that restores the previous one.
//
//	defer render.Swap(rec.Render)()
func Swap(f Func) (restore func()) {
	mu.Lock()
	prev := page
	page = f
	mu.Unlock()
	return func() {
		mu.Lock()
		page = prev
		mu.Unlock()
	}
}

// Recorder captures render calls. It writes the template name to the
// response body so status-code assertions still see a written response.
type Recorder struct {
	mu    sync.Mutex
	Calls []Call
}

// Call is one captured render.
type Call struct {
	Name string
	Data any
}

// Render implements Func.
func (rec *Recorder) Render(w http.ResponseWriter, _ *http.Request, name string, data any) {
	rec.mu.Lock()
	rec.Calls = append(rec.Calls, Call{Name: name, Data: data})
	rec.mu.Unlock()
	_, _ = w.Write([]byte(name))
}

// Last returns the most recent call, or a zero Call if nothing was rendered.
func (rec *Recorder) Last() Call {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.Calls) == 0 {
		return Call{}
	}
	return rec.Calls[len(rec.Calls)-1]
}
