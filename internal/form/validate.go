// Package form binds, validates and snapshots the public booking and
// contact forms.
package form

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Honeypot fields are hidden from humans. Any content marks a bot.
var honeypotFields = []string{"website", "emailrep"}

// IsSpam reports whether any honeypot field was filled in.
func IsSpam(values url.Values) bool {
	for _, f := range honeypotFields {
		if strings.TrimSpace(values.Get(f)) != "" {
			return true
		}
	}
	return false
}

const dateLayout = "2006-01-02"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterValidation("notfuture", func(fl validator.FieldLevel) bool {
		d, err := time.Parse(dateLayout, fl.Field().String())
		if err != nil {
			return true
		}
		return !d.After(time.Now())
	})
	return v
}

// FieldError is a single failed constraint on a named form field.
type FieldError struct {
	Field   string
	Rule    string
	Message string
}

type FieldErrors []FieldError

func (fe FieldErrors) Has(field string) bool {
	for _, e := range fe {
		if e.Field == field {
			return true
		}
	}
	return false
}

// Get returns the message for field, or "".
func (fe FieldErrors) Get(field string) string {
	for _, e := range fe {
		if e.Field == field {
			return e.Message
		}
	}
	return ""
}

// Map returns field → message for templates.
func (fe FieldErrors) Map() map[string]string {
	m := make(map[string]string, len(fe))
	for _, e := range fe {
		m[e.Field] = e.Message
	}
	return m
}

// BannerCode picks the query flag shown above the form: "email" when only
// the email is wrong, "short" when only the message is too short, otherwise
// "invalid".
func (fe FieldErrors) BannerCode() string {
	if len(fe) == 1 {
		switch {
		case fe[0].Field == "email":
			return "email"
		case fe[0].Field == "message" && fe[0].Rule == "min":
			return "short"
		}
	}
	return "invalid"
}

func validateStruct(v any) FieldErrors {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return FieldErrors{{Field: "", Rule: "internal", Message: err.Error()}}
	}

	out := make(FieldErrors, 0, len(verrs))
	for _, e := range verrs {
		out = append(out, FieldError{
			Field:   e.Field(),
			Rule:    e.Tag(),
			Message: message(e),
		})
	}
	return out
}

func message(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required."
	case "eq":
		return "Please confirm this item."
	case "email":
		return "Please enter a valid email address."
	case "min":
		return fmt.Sprintf("Please enter at least %s characters.", e.Param())
	case "max":
		return fmt.Sprintf("Please enter at most %s characters.", e.Param())
	case "oneof":
		return "Please choose one of the options."
	case "datetime":
		return "Please enter a valid date."
	case "notfuture":
		return "The date must not be in the future."
	default:
		return "This value is not valid."
	}
}
