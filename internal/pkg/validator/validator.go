// Package validator wraps one shared go-playground validator instance
// for struct-tag validation beyond gin's binding tags.
package validator

import "github.com/go-playground/validator/v10"

var validate = validator.New()

// Validate checks the struct's validate tags and returns the failing
// fields as field name → tag, or nil when everything passes.
func Validate(v any) map[string]string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	fields := make(map[string]string)
	for _, fe := range err.(validator.ValidationErrors) {
		fields[fe.Field()] = fe.Tag()
	}
	return fields
}
