// Package gates provides authorization gate functions for HTTP handlers.
// Gates check authentication, rendering the appropriate error page when a
// check fails.
//
// # Two-Tier Authorization Pattern
//
// GeoGroups uses a two-tier authorization approach:
//
//  1. Route-Level Middleware (auth.RequireSignedIn)
//     Applied in routes.go files for coarse-grained access control.
//     Redirects anonymous browsers to /login.
//
//  2. Policy Layer (internal/app/policy/grouppolicy)
//     Used for group-specific authorization requiring a membership lookup.
//     Example: grouppolicy.Allows(g, role, signedIn, grouppolicy.Manage).
//
// Handlers behind RequireSignedIn still call RequireAuth so they can be
// mounted or tested without the middleware and still fail closed.
package gates

import (
	"net/http"

	uierrors "github.com/dalemusser/geogroups/internal/app/features/errors"
	"github.com/dalemusser/geogroups/internal/app/system/authz"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Result contains the result of an authorization gate check.
type Result struct {
	Username string
	Name     string
	UserID   primitive.ObjectID
	OK       bool
}

// RequireAuth ensures a user is authenticated.
// If not authenticated, it renders an unauthorized error and returns OK=false.
// The loginURL parameter specifies where the error page links to.
func RequireAuth(w http.ResponseWriter, r *http.Request, loginURL string) Result {
	username, name, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, loginURL)
		return Result{OK: false}
	}
	return Result{Username: username, Name: name, UserID: uid, OK: true}
}

// RequirePost rejects any method other than POST with a 405.
func RequirePost(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		uierrors.RenderMethodNotAllowed(w, r, http.MethodPost)
		return false
	}
	return true
}
