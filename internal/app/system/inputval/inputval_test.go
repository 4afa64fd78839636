package inputval

import "testing"

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"user@example.com", true},
		{"user.name@example.com", true},
		{"user+tag@example.com", true},
		{"user@subdomain.example.com", true},
		{"a@b.co", true},
		{"admin@mailserver", true},

		{"", false},
		{"   ", false},
		{"user", false},
		{"user@", false},
		{"@example.com", false},
		{".user@example.com", false},
		{"user.@example.com", false},
		{"user..name@example.com", false},
		{"user@.example.com", false},
		{"user@example..com", false},
		{"User Name <user@example.com>", false},
		{"user @example.com", false},
		{"user@exam ple.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			if got := IsValidEmail(tt.email); got != tt.want {
				t.Errorf("IsValidEmail(%q) = %v, want %v", tt.email, got, tt.want)
			}
		})
	}
}

func TestIsValidSlug(t *testing.T) {
	tests := []struct {
		slug string
		want bool
	}{
		{"geo-team", true},
		{"team1", true},
		{"a", true},
		{"", false},
		{"Geo-Team", false},
		{"geo_team", false},
		{"-geo", false},
		{"geo-", false},
		{"geo--team", false},
		{"geo team", false},
	}
	for _, tt := range tests {
		if got := IsValidSlug(tt.slug); got != tt.want {
			t.Errorf("IsValidSlug(%q) = %v, want %v", tt.slug, got, tt.want)
		}
	}
}

type groupInput struct {
	Title  string `form:"title" label:"Title" validate:"required,max=10"`
	Slug   string `form:"slug" label:"Slug" validate:"required,slug"`
	Access string `form:"access" label:"Access" validate:"groupaccess"`
	Email  string `form:"email" label:"Email" validate:"mailaddr"`
}

func TestValidate_OK(t *testing.T) {
	res := Validate(groupInput{Title: "Geo", Slug: "geo-team", Access: "public"})
	if res.HasErrors() {
		t.Fatalf("unexpected errors: %v", res.Fields)
	}
	if res.First() != "" {
		t.Errorf("First() should be empty, got %q", res.First())
	}
}

func TestValidate_FieldMessages(t *testing.T) {
	res := Validate(&groupInput{Title: "", Slug: "Bad Slug", Access: "secret", Email: "nope"})
	if !res.HasErrors() {
		t.Fatal("expected errors")
	}
	want := map[string]string{
		"title":  "Title is required.",
		"slug":   "Slug may only contain lowercase letters, numbers and single hyphens.",
		"access": "Access is not a valid choice.",
		"email":  "Email must be a valid email address.",
	}
	for field, msg := range want {
		if got := res.Fields[field]; got != msg {
			t.Errorf("Fields[%q] = %q, want %q", field, got, msg)
		}
	}
	if res.First() != "Title is required." {
		t.Errorf("First() = %q", res.First())
	}
}

func TestValidate_Max(t *testing.T) {
	res := Validate(groupInput{Title: "a very long title", Slug: "ok", Access: "private"})
	if got := res.Fields["title"]; got != "Title must be at most 10 characters." {
		t.Errorf("got %q", got)
	}
}

func TestResult_AddKeepsFirstMessage(t *testing.T) {
	var r Result
	r.Add("slug", "first")
	r.Add("slug", "second")
	if r.Fields["slug"] != "first" {
		t.Errorf("got %q", r.Fields["slug"])
	}
}
