package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// validatorInstance returns the shared validator. Field names are reported
// by their TOML keys.
func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("toml"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
		validate.RegisterStructValidation(validateSession, SessionConfig{})
		validate.RegisterStructValidation(validateBadger, BadgerConfig{})
	})
	return validate
}

// validateSession requires a Redis address when Redis is selected.
func validateSession(sl validator.StructLevel) {
	s := sl.Current().Interface().(SessionConfig)
	if s.Backend == "redis" && s.Redis.Address == "" {
		sl.ReportError(s.Redis.Address, "redis.address", "Address", "required_with_redis", "")
	}
}

// validateBadger requires a path for an enabled on-disk store.
func validateBadger(sl validator.StructLevel) {
	b := sl.Current().Interface().(BadgerConfig)
	if b.Enabled && !b.InMemory && b.Path == "" {
		sl.ReportError(b.Path, "path", "Path", "required_on_disk", "")
	}
}

// Validate checks the configuration and returns a *ValidationError listing
// every invalid field.
func (c *Config) Validate() error {
	err := validatorInstance().Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	out := &ValidationError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Path:    fieldPath(fe.Namespace()),
			Message: fieldMessage(fe),
			Value:   fe.Value(),
		})
	}
	return out
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(ns string) string {
	_, rest, ok := strings.Cut(ns, ".")
	if !ok {
		return ns
	}
	return rest
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "required_if":
		return "is required when enabled"
	case "required_with_redis":
		return "is required when the session backend is redis"
	case "required_on_disk":
		return "is required unless in_memory is set"
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "hostname_port":
		return "must be host:port"
	case "uuid":
		return "must be a UUID"
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	default:
		return "failed " + fe.Tag() + " validation"
	}
}
