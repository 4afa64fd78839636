package formutil_test

import (
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/geogroups/internal/app/system/auth"
	"github.com/dalemusser/geogroups/internal/app/system/formutil"
	"github.com/dalemusser/geogroups/internal/app/system/inputval"
)

func TestSetBase(t *testing.T) {
	req := httptest.NewRequest("GET", "/groups/create", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{
		ID:       "507f1f77bcf86cd799439011",
		Username: "alice",
		Name:     "Alice A",
	})

	var b formutil.Base
	formutil.SetBase(&b, req, "Create Group", "/groups/")

	if b.Title != "Create Group" {
		t.Errorf("Title: got %q", b.Title)
	}
	if !b.IsLoggedIn || b.Username != "alice" {
		t.Errorf("expected alice signed in, got %+v", b.BaseVM)
	}
	if b.HasErrors() {
		t.Error("expected no errors on a fresh Base")
	}
}

func TestSetError_Escapes(t *testing.T) {
	var b formutil.Base
	b.SetError("<b>bad</b>")
	if string(b.Error) != "&lt;b&gt;bad&lt;/b&gt;" {
		t.Errorf("Error not escaped: %q", b.Error)
	}
}

func TestSetFieldError_FirstWins(t *testing.T) {
	var b formutil.Base
	b.SetFieldError("slug", "Slug is required.")
	b.SetFieldError("slug", "Slug is taken.")
	b.SetFieldError("title", "Title is required.")

	if got := b.FieldError("slug"); got != "Slug is required." {
		t.Errorf("slug error: got %q", got)
	}
	if got := b.FieldError("title"); got != "Title is required." {
		t.Errorf("title error: got %q", got)
	}
	if string(b.Error) != "Slug is required." {
		t.Errorf("summary error: got %q", b.Error)
	}
	if b.FieldError("description") != "" {
		t.Error("expected no description error")
	}
}

func TestSetErrors_FromValidation(t *testing.T) {
	var res inputval.Result
	res.Add("title", "Title is required.")
	res.Add("slug", "Slug is required.")

	var b formutil.Base
	b.SetErrors(res)

	if !b.HasErrors() {
		t.Fatal("expected errors")
	}
	if string(b.Error) != "Title is required." {
		t.Errorf("summary error: got %q", b.Error)
	}
	if b.FieldError("slug") != "Slug is required." {
		t.Errorf("slug error: got %q", b.FieldError("slug"))
	}
}

func TestSetErrors_Empty(t *testing.T) {
	var b formutil.Base
	b.SetErrors(inputval.Result{})
	if b.HasErrors() {
		t.Error("expected no errors")
	}
}
