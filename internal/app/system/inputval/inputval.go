// Package inputval validates form input with go-playground/validator and
// turns failures into per-field messages for re-rendered forms.
//
// Struct fields carry three tags:
//
//	Title string `form:"title" label:"Title" validate:"required,max=200"`
//
// "form" names the field in the Result, "label" is used in messages.
package inputval

import (
	"fmt"
	"net/mail"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/dalemusser/geogroups/internal/domain/models"
	"github.com/go-playground/validator/v10"
)

var slugRE = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

var (
	once     sync.Once
	validate *validator.Validate
)

func v() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
			if name == "" || name == "-" {
				return f.Name
			}
			return name
		})
		_ = validate.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
			return IsValidSlug(fl.Field().String())
		})
		_ = validate.RegisterValidation("mailaddr", func(fl validator.FieldLevel) bool {
			s := fl.Field().String()
			return s == "" || IsValidEmail(s)
		})
		_ = validate.RegisterValidation("groupaccess", func(fl validator.FieldLevel) bool {
			return models.GroupAccess(fl.Field().String()).Valid()
		})
		_ = validate.RegisterValidation("grouprole", func(fl validator.FieldLevel) bool {
			return models.GroupRole(fl.Field().String()).Valid()
		})
	})
	return validate
}

// Result holds per-field validation messages in declaration order.
type Result struct {
	Fields map[string]string
	order  []string
}

// HasErrors reports whether any field failed.
func (r Result) HasErrors() bool { return len(r.order) > 0 }

// First returns the first message, or "".
func (r Result) First() string {
	if len(r.order) == 0 {
		return ""
	}
	return r.Fields[r.order[0]]
}

// Add records msg for field unless the field already has a message.
func (r *Result) Add(field, msg string) {
	if r.Fields == nil {
		r.Fields = map[string]string{}
	}
	if _, ok := r.Fields[field]; ok {
		return
	}
	r.Fields[field] = msg
	r.order = append(r.order, field)
}

// Validate checks s (a struct or pointer to struct) against its validate tags.
func Validate(s any) Result {
	var res Result
	err := v().Struct(s)
	if err == nil {
		return res
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		res.Add("_", err.Error())
		return res
	}
	t := reflect.TypeOf(s)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	for _, fe := range verrs {
		res.Add(fe.Field(), message(labelFor(t, fe.StructField()), fe))
	}
	return res
}

func labelFor(t reflect.Type, structField string) string {
	if f, ok := t.FieldByName(structField); ok {
		if l := f.Tag.Get("label"); l != "" {
			return l
		}
	}
	return structField
}

func message(label string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return label + " is required."
	case "max":
		return fmt.Sprintf("%s must be at most %s characters.", label, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters.", label, fe.Param())
	case "slug":
		return label + " may only contain lowercase letters, numbers and single hyphens."
	case "mailaddr", "email":
		return label + " must be a valid email address."
	case "groupaccess", "grouprole", "oneof":
		return label + " is not a valid choice."
	default:
		return label + " is invalid."
	}
}

// IsValidSlug reports whether s is a lowercase, hyphen-separated slug.
func IsValidSlug(s string) bool {
	return slugRE.MatchString(s)
}

// IsValidEmail reports whether s is a bare address (no display name)
// with a well-formed local part and domain.
func IsValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, " \t<>") {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return false
	}
	at := strings.LastIndex(s, "@")
	if at <= 0 || at == len(s)-1 {
		return false
	}
	local, domain := s[:at], s[at+1:]
	for _, part := range []string{local, domain} {
		if strings.HasPrefix(part, ".") || strings.HasSuffix(part, ".") || strings.Contains(part, "..") {
			return false
		}
	}
	return true
}
