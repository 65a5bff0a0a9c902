package handlers

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report errors under the wire names clients sent, not Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validationFields flattens validator errors into the {"fields": ...} body.
func validationFields(err error) map[string]string {
	fields := make(map[string]string)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fields
	}
	for _, e := range verrs {
		switch e.Tag() {
		case "required":
			fields[e.Field()] = "required"
		case "max":
			fields[e.Field()] = "must be at most " + e.Param() + " characters"
		case "min":
			fields[e.Field()] = "must be at least " + e.Param() + " characters"
		default:
			fields[e.Field()] = "invalid"
		}
	}
	return fields
}
