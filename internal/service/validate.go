package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/powdermilkjuno/habit-tracker/internal"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("goal", func(fl validator.FieldLevel) bool {
		_, ok := internal.ParseGoal(fl.Field().String())
		return ok
	})
	return v
}

// checker is implemented by requests with rules spanning several fields.
type checker interface {
	check() error
}

// Validate checks req and turns the first failure into a ValidationError
// whose message names the offending JSON field.
func Validate(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		if c, ok := req.(checker); ok {
			return c.check()
		}
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return internal.NewValidationError(err.Error())
	}
	return internal.NewValidationError(describe(verrs[0]))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	case "goal":
		return fmt.Sprintf("%s must be cut or bulk", fe.Field())
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}
