package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/yigit/schoolbook/internal/pkg/apperrors"
)

// EmailPattern accepts any mailbox with a dotted domain and a 2+ letter TLD
var EmailPattern = `^[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}$`

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	Email *regexp.Regexp
}{
	Email: regexp.MustCompile(EmailPattern),
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names so messages match the file and API layout
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("contact_email", func(fl validator.FieldLevel) bool {
		return CompiledPatterns.Email.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	return v
}

// Struct validates a tagged struct and converts the first failure into an
// apperrors validation error naming the offending field.
func Struct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return apperrors.NewValidationError(fe.Field(), formatValidationError(fe))
	}
	return apperrors.NewValidationError("record", err.Error())
}

// Email reports whether s is an acceptable contact address.
func Email(s string) bool {
	return CompiledPatterns.Email.MatchString(s)
}

// formatValidationError creates a human-readable validation error message
func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required", "notblank":
		return "must be a non-empty string"
	case "gte":
		return "must be a non-negative integer"
	case "max":
		return "must be at most " + e.Param() + " characters"
	case "contact_email":
		return fmt.Sprintf("invalid email: %v", e.Value())
	case "dive", "unique":
		return "contains an invalid or repeated reference"
	default:
		return "validation failed: " + e.Tag()
	}
}
