package schema

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// constraintMessage renders a validator failure in the wording clients of this
// API already see for the same constraint.
func constraintMessage(fe validator.FieldError) string {
	kind := fe.Kind()
	switch fe.Tag() {
	case "required":
		return "Required"
	case "min", "gte":
		if kind == reflect.String {
			return fmt.Sprintf("String must contain at least %s character(s)", fe.Param())
		}
		return fmt.Sprintf("Number must be greater than or equal to %s", fe.Param())
	case "max", "lte":
		if kind == reflect.String {
			return fmt.Sprintf("String must contain at most %s character(s)", fe.Param())
		}
		return fmt.Sprintf("Number must be less than or equal to %s", fe.Param())
	case "len":
		return fmt.Sprintf("String must contain exactly %s character(s)", fe.Param())
	case "oneof":
		options := strings.Fields(fe.Param())
		for i, opt := range options {
			options[i] = "'" + opt + "'"
		}
		return fmt.Sprintf("Invalid enum value. Expected %s, received '%v'",
			strings.Join(options, " | "), fe.Value())
	default:
		return fmt.Sprintf("Invalid value (%s)", fe.Tag())
	}
}
