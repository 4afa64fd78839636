// internal/app/system/authz/authz.go
package authz

import (
	"net/http"

	"github.com/dalemusser/geogroups/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the user's username, display name, Mongo ObjectID, and a found flag.
// If no user is present in context or the user ID is malformed, it returns
// "", "", NilObjectID, false. Callers can trust that ok=true means a valid,
// authenticated user with a valid ObjectID.
func UserCtx(r *http.Request) (username string, name string, userID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "", "", primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		// Malformed user ID in session - fail closed.
		return "", "", primitive.NilObjectID, false
	}
	name = user.Name
	if name == "" {
		name = user.Username
	}
	return user.Username, name, userID, true
}

// UserID returns the signed-in user's ObjectID, or NilObjectID for visitors.
func UserID(r *http.Request) primitive.ObjectID {
	_, _, uid, _ := UserCtx(r)
	return uid
}

// IsSignedIn reports whether the request carries a valid signed-in user.
func IsSignedIn(r *http.Request) bool {
	_, _, _, ok := UserCtx(r)
	return ok
}
