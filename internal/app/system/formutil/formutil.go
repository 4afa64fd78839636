// Package formutil provides helpers for form re-rendering with validation errors.
//
// When a form submission fails validation, the form should be re-rendered with:
// - The user's previously entered values (echoed back)
// - An error message explaining what went wrong, plus per-field messages
// - All the context data needed for the form (choices, etc.)
//
// This package provides a Base struct that can be embedded in form data structs
// to handle the common fields, and helper functions to populate them.
//
// Example usage:
//
//	type createGroupData struct {
//		formutil.Base
//		Title string
//		Slug  string
//	}
//
//	// In your handler:
//	data := createGroupData{Title: title, Slug: slug}
//	formutil.SetBase(&data.Base, r, "Create Group", "/groups/")
//	data.SetErrors(inputval.Validate(in))
//	render.Page(w, r, "group_create", data)
package formutil

import (
	"html/template"
	"net/http"

	"github.com/dalemusser/geogroups/internal/app/system/inputval"
	"github.com/dalemusser/geogroups/internal/app/system/viewdata"
)

// Base contains common fields for form pages that can be embedded in form data structs.
type Base struct {
	viewdata.BaseVM
	Error  template.HTML
	Errors map[string]string // form field name -> message
}

// SetBase populates the common Base fields from the request context.
//
// Parameters:
//   - b: pointer to the Base struct to populate
//   - r: the HTTP request
//   - title: the page title
//   - backDefault: default URL for the back button if none in request
func SetBase(b *Base, r *http.Request, title, backDefault string) {
	b.BaseVM = viewdata.NewBaseVM(r, title, backDefault)
}

// SetError sets the error message on a Base struct.
// This is a convenience method for setting Error as template.HTML.
// msg is escaped.
func (b *Base) SetError(msg string) {
	b.Error = template.HTML(template.HTMLEscapeString(msg))
}

// SetFieldError records msg against one form field and makes it the
// summary error if none is set yet.
func (b *Base) SetFieldError(field, msg string) {
	if b.Errors == nil {
		b.Errors = make(map[string]string)
	}
	if _, exists := b.Errors[field]; !exists {
		b.Errors[field] = msg
	}
	if b.Error == "" {
		b.SetError(msg)
	}
}

// SetErrors copies a validation result into the Base.
func (b *Base) SetErrors(res inputval.Result) {
	if !res.HasErrors() {
		return
	}
	for field, msg := range res.Fields {
		b.SetFieldError(field, msg)
	}
	b.SetError(res.First())
}

// HasErrors reports whether any error has been set.
func (b *Base) HasErrors() bool {
	return b.Error != "" || len(b.Errors) > 0
}

// FieldError returns the message for one field, or "".
// Templates call it as {{.FieldError "slug"}}.
func (b Base) FieldError(field string) string {
	return b.Errors[field]
}
