// internal/app/features/errors/render.go
package errors

import (
	"net/http"
	"strings"
)

// RenderUnauthorized shows a friendly "sign in required" page.
// If backURL is empty, it will default to /login.
func RenderUnauthorized(w http.ResponseWriter, r *http.Request, backURL string) {
	if backURL == "" {
		backURL = "/login"
	}
	renderError(w, r, http.StatusUnauthorized, "Sign in required", "Please sign in to continue.", backURL, "/login")
}

// RenderBadRequest answers 400 for a request the server cannot parse, such
// as a malformed or oversized form body.
func RenderBadRequest(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	if msg == "" {
		msg = "The request could not be understood."
	}
	renderError(w, r, http.StatusBadRequest, "Bad request", msg, backURL, "/groups/")
}

// RenderForbidden shows a friendly access error page with a message.
// If backURL is empty, it resolves a safe back URL with a default fallback.
func RenderForbidden(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	if msg == "" {
		msg = "You don't have permission to do that."
	}
	renderError(w, r, http.StatusForbidden, "Access denied", msg, backURL, "/")
}

// RenderNotFound answers 404. It is also used when an entity exists but the
// viewer may not see it, so the page never reveals which case applies.
func RenderNotFound(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	if msg == "" {
		msg = "The page you were looking for does not exist."
	}
	renderError(w, r, http.StatusNotFound, "Not found", msg, backURL, "/groups/")
}

// RenderMethodNotAllowed answers 405. When allow is given it becomes the
// Allow header.
func RenderMethodNotAllowed(w http.ResponseWriter, r *http.Request, allow ...string) {
	if len(allow) > 0 && allow[0] != "" {
		w.Header().Set("Allow", strings.Join(allow, ", "))
	}
	renderError(w, r, http.StatusMethodNotAllowed, "Method not allowed", "This action does not support "+r.Method+" requests.", "", "/groups/")
}
