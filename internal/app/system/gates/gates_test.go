package gates_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/geogroups/internal/app/system/auth"
	"github.com/dalemusser/geogroups/internal/app/system/gates"
	"github.com/dalemusser/geogroups/internal/app/system/render"
)

// Helper to create a request with user context
func withTestUser(r *http.Request) *http.Request {
	user := &auth.SessionUser{
		ID:       "507f1f77bcf86cd799439011", // Valid ObjectID hex
		Username: "tester",
		Name:     "Test User",
	}
	return auth.WithTestUser(r, user)
}

func TestRequireAuth_Authenticated(t *testing.T) {
	req := httptest.NewRequest("GET", "/protected", nil)
	req = withTestUser(req)
	rec := httptest.NewRecorder()

	result := gates.RequireAuth(rec, req, "/login")

	if !result.OK {
		t.Error("expected OK to be true for authenticated user")
	}
	if result.Username != "tester" {
		t.Errorf("Username: got %q, want %q", result.Username, "tester")
	}
	if result.Name != "Test User" {
		t.Errorf("Name: got %q, want %q", result.Name, "Test User")
	}
	if result.UserID.IsZero() {
		t.Error("expected UserID to be set")
	}
}

func TestRequireAuth_NotAuthenticated(t *testing.T) {
	rr := &render.Recorder{}
	defer render.Swap(rr.Render)()

	req := httptest.NewRequest("GET", "/protected", nil)
	rec := httptest.NewRecorder()

	result := gates.RequireAuth(rec, req, "/login")

	if result.OK {
		t.Error("expected OK to be false for unauthenticated user")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
	if rr.Last().Name != "error_page" {
		t.Errorf("expected error_page to render, got %q", rr.Last().Name)
	}
}

func TestRequirePost(t *testing.T) {
	rr := &render.Recorder{}
	defer render.Swap(rr.Render)()

	tests := []struct {
		method string
		want   bool
	}{
		{"POST", true},
		{"GET", false},
		{"PUT", false},
	}
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/groups/geo-team/join", nil)
			rec := httptest.NewRecorder()

			if got := gates.RequirePost(rec, req); got != tt.want {
				t.Errorf("RequirePost(%s) = %v, want %v", tt.method, got, tt.want)
			}
			if !tt.want {
				if rec.Code != http.StatusMethodNotAllowed {
					t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
				}
				if allow := rec.Header().Get("Allow"); allow != "POST" {
					t.Errorf("Allow: got %q, want %q", allow, "POST")
				}
			}
		})
	}
}
