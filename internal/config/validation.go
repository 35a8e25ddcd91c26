package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// validatorInstance returns the shared validator with the config-specific
// tags registered.
func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		_ = v.RegisterValidation("behavior", func(fl validator.FieldLevel) bool {
			return Behavior(fl.Field().String()).IsValid()
		})
		_ = v.RegisterValidation("frequency", func(fl validator.FieldLevel) bool {
			_, err := ParseFrequency(fl.Field().String())
			return err == nil
		})
		validate = v
	})
	return validate
}

// Validate checks cfg against its struct tags. It returns *ValidationErrors
// listing every offending field, or nil.
func Validate(cfg *ProjectConfig) error {
	if cfg == nil {
		return &ValidationErrors{Errors: []ValidationError{{
			Field:   "config",
			Message: "config is nil",
			Wrapped: ErrInvalidConfig,
		}}}
	}

	err := validatorInstance().Struct(cfg)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	out := &ValidationErrors{}
	for _, fe := range fieldErrs {
		out.Errors = append(out.Errors, ValidationError{
			Field:   fe.Namespace(),
			Message: messageForTag(fe),
			Value:   fe.Value(),
			Wrapped: sentinelForTag(fe.Tag()),
		})
	}
	return out
}

func messageForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "behavior":
		return "must be one of: prompt, autoYes, autoNo"
	case "frequency":
		return "must be a duration token such as 1h, 2d or 1w"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be >= %s", fe.Param())
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}

func sentinelForTag(tag string) error {
	switch tag {
	case "behavior":
		return ErrInvalidBehavior
	case "frequency":
		return ErrInvalidFrequency
	default:
		return ErrInvalidConfig
	}
}
