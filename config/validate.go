package config

import (
	"fmt"

	"go.uber.org/multierr"
	"gopkg.in/go-playground/validator.v9"
)

var validate = validator.New()

// Validate checks a normalized config for values normalization cannot fix,
// such as empty kernel names or relative home directories.
//
// All failing fields are reported in the returned error.
func Validate(c *Config) error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	var out error
	for _, fe := range verrs {
		out = multierr.Append(out, fieldError(fe))
	}
	return out
}

func fieldError(fe validator.FieldError) error {
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s: must be set", fe.Namespace())
	case "min":
		return fmt.Errorf("%s: must have at least %s entries", fe.Namespace(), fe.Param())
	case "startswith":
		return fmt.Errorf("%s: %q must start with %q", fe.Namespace(), fe.Value(), fe.Param())
	default:
		return fmt.Errorf("%s: failed %q check", fe.Namespace(), fe.Tag())
	}
}
