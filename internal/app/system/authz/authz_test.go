package authz_test

import (
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/geogroups/internal/app/system/auth"
	"github.com/dalemusser/geogroups/internal/app/system/authz"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestUserCtx_SignedIn(t *testing.T) {
	id := primitive.NewObjectID()
	req := httptest.NewRequest("GET", "/test", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{
		ID:       id.Hex(),
		Username: "alice",
		Name:     "Alice Example",
	})

	username, name, uid, ok := authz.UserCtx(req)
	if !ok {
		t.Fatal("expected UserCtx to return ok=true")
	}
	if username != "alice" {
		t.Errorf("username: got %q, want %q", username, "alice")
	}
	if name != "Alice Example" {
		t.Errorf("name: got %q, want %q", name, "Alice Example")
	}
	if uid != id {
		t.Errorf("userID: got %s, want %s", uid.Hex(), id.Hex())
	}
}

func TestUserCtx_NameFallsBackToUsername(t *testing.T) {
	req := httptest.NewRequest("GET", "/test", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{ID: primitive.NewObjectID().Hex(), Username: "bob"})

	_, name, _, _ := authz.UserCtx(req)
	if name != "bob" {
		t.Errorf("name: got %q, want %q", name, "bob")
	}
}

func TestUserCtx_NoUser(t *testing.T) {
	req := httptest.NewRequest("GET", "/test", nil)

	if _, _, uid, ok := authz.UserCtx(req); ok || uid != primitive.NilObjectID {
		t.Error("expected visitor context without a user")
	}
	if authz.IsSignedIn(req) {
		t.Error("expected IsSignedIn to be false")
	}
}

func TestUserCtx_MalformedID_FailsClosed(t *testing.T) {
	req := httptest.NewRequest("GET", "/test", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{ID: "not-an-object-id", Username: "mallory"})

	if _, _, _, ok := authz.UserCtx(req); ok {
		t.Error("expected malformed user ID to fail closed")
	}
	if authz.UserID(req) != primitive.NilObjectID {
		t.Error("expected NilObjectID for malformed user ID")
	}
}
