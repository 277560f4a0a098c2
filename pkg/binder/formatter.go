package binder

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
	"github.com/segmentio/encoding/json"
)

const (
	email    = "email"
	mx       = "max"
	mn       = "min"
	notblank = "notblank"
	oneof    = "oneof"
	required = "required"
	urlTag   = "url"
)

func formatUnmarshalTypeError(err *json.UnmarshalTypeError) string {
	return fmt.Sprintf("%q should be of type %s", strings.Trim(err.Field, "."), err.Type)
}

func formatSchemaConversionError(err schema.ConversionError) string {
	return fmt.Sprintf("%q should be of type %s", err.Key, err.Type)
}

func formatValidationError(err validator.FieldError) string {
	field := err.Field()

	switch err.Tag() {
	case email:
		return fmt.Sprintf("%q is not a valid email", field)
	case mx:
		return formatBound(err, "less than or equal to")
	case mn:
		return formatBound(err, "greater than or equal to")
	case oneof:
		valids := []string{}
		for _, p := range strings.Fields(err.Param()) {
			valids = append(valids, fmt.Sprintf("%q", p))
		}
		return fmt.Sprintf("%q must be one of the following: %s", field, strings.Join(valids, ", "))
	case notblank:
		return fmt.Sprintf("%q can't be blank", field)
	case required:
		return fmt.Sprintf("%q is required", field)
	case urlTag:
		return fmt.Sprintf("%q is not a valid URL", field)
	default:
		return fmt.Sprintf("%q is invalid", field)
	}
}

// formatBound words a min or max failure. Numbers are compared by value,
// strings and slices by length.
func formatBound(err validator.FieldError, relation string) string {
	field, param := err.Field(), err.Param()

	//exhaustive:ignore
	switch err.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return fmt.Sprintf("%q must be %s %s", field, relation, param)
	}

	unit := "character"
	if err.Kind() == reflect.Slice {
		unit = "element"
	}
	if param != "1" {
		unit += "s"
	}
	return fmt.Sprintf("%q length must be %s %s %s", field, relation, param, unit)
}
