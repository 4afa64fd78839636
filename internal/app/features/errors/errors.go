// internal/app/features/errors/errors.go
package errors

import (
	"net/http"

	"github.com/dalemusser/geogroups/internal/app/system/render"
	"github.com/dalemusser/geogroups/internal/app/system/viewdata"
)

// pageData is the basic view model for error pages.
type pageData struct {
	viewdata.BaseVM
	Status  int
	Message string
}

// Handler is the errors feature handler.
// No DB needed; it just renders templates.
type Handler struct{}

// NewHandler constructs an errors Handler.
func NewHandler() *Handler {
	return &Handler{}
}

// NotFound is the router's fallback for unknown paths.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	RenderNotFound(w, r, "", "")
}

// MethodNotAllowed is the router's fallback for known paths hit with the
// wrong method. chi has already set the Allow header.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	RenderMethodNotAllowed(w, r, "")
}

// Forbidden renders a friendly "access denied" page.
// GET /forbidden
func (h *Handler) Forbidden(w http.ResponseWriter, r *http.Request) {
	RenderForbidden(w, r, "You don't have permission to view this page.", "/")
}

func renderError(w http.ResponseWriter, r *http.Request, status int, title, msg, backURL, backDefault string) {
	vm := viewdata.NewBaseVM(r, title, backDefault)
	if backURL != "" {
		vm.BackURL = backURL
	}
	render.PageStatus(w, r, status, "error_page", pageData{
		BaseVM:  vm,
		Status:  status,
		Message: msg,
	})
}
