package auth

import (
	"fmt"
	"reflect"
	"strings"

	"sanctuary/errors"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report wire names rather than Go field names
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateCommand checks the validate tags of an inbound command.
func ValidateCommand(cmd any) error {
	err := validate.Struct(cmd)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %w", errors.ErrInvalidPayload, err)
	}
	fields := lo.Map(fieldErrs, func(fe validator.FieldError, _ int) string {
		return fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag())
	})
	return fmt.Errorf("%w: %s", errors.ErrInvalidPayload, strings.Join(fields, ", "))
}
