package binder

import (
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
)

// urlValidator accepts the empty string or an absolute http(s) URL. Cover URLs
// are optional, so clearing one is allowed.
func urlValidator(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	u, err := url.Parse(value)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// notBlankValidator rejects strings made only of whitespace. It's meant for
// optional pointer fields where nil means "leave unchanged".
func notBlankValidator(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}
