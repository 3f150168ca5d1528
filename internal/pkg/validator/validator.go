// Package validator flattens go-playground struct validation into a
// field -> failed-rule map that fits the error envelope.
package validator

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var v = validator.New()

func init() {
	// report json field names, not Go struct fields
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
}

// Validate returns nil when the struct passes, otherwise one entry per
// failing field.
func Validate(s interface{}) map[string]string {
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	out := make(map[string]string)
	var ferrs validator.ValidationErrors
	if errors.As(err, &ferrs) {
		for _, fe := range ferrs {
			out[fe.Field()] = fe.Tag()
		}
		return out
	}
	out["struct"] = err.Error()
	return out
}
