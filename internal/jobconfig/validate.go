package jobconfig

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/wonny/signaljob/internal/contracts"
)

var validate = newValidator()

// Warning flags a config that is valid but probably not what was meant
type Warning struct {
	Code    string
	Message string
}

func newValidator() *validator.Validate {
	v := validator.New()

	// present fails only on a nil pointer, so zero seeds and empty versions pass
	if err := v.RegisterValidation("present", func(validator.FieldLevel) bool { return true }); err != nil {
		panic(err)
	}

	// Use YAML key names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return v
}

// Validate checks the decoded document.
// Fields are checked in declaration order (seed, window, version) and only the
// first failure is reported.
func Validate(doc *document) error {
	err := validate.Struct(doc)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return contracts.ValidationError(err.Error(), err)
	}

	fe := validationErrors[0]
	switch fe.Tag() {
	case "present":
		return contracts.MissingFieldError(fe.Field())
	case "gte":
		return contracts.ValidationError(
			fmt.Sprintf("Invalid config field: %s must be greater than or equal to %s", fe.Field(), fe.Param()),
			contracts.ErrInvalidField,
		)
	default:
		return contracts.ValidationError(
			fmt.Sprintf("Invalid config field: %s failed validation: %s", fe.Field(), fe.Tag()),
			contracts.ErrInvalidField,
		)
	}
}

// Warn checks recommended constraints (non-fatal)
func Warn(cfg *Config) []Warning {
	var warnings []Warning

	if cfg.Window == 1 {
		warnings = append(warnings, Warning{
			Code:    "DEGENERATE_WINDOW",
			Message: "window=1 compares each close with itself: signal_rate is always 0",
		})
	}

	if strings.TrimSpace(cfg.Version) == "" {
		warnings = append(warnings, Warning{
			Code:    "BLANK_VERSION",
			Message: "version is blank: result records will not identify the run",
		})
	}

	return warnings
}
