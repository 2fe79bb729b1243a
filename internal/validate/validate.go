// Package validate provides input validation helpers for the tasklog CLI.
// Field rules are expressed as go-playground/validator tags; failures come
// back as *errors.ValidationError so callers can match errors.ErrValidation.
package validate

import (
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/manav03panchal/tasklog/internal/calendar"
	"github.com/manav03panchal/tasklog/internal/errors"
)

const (
	// MaxNameLength is the maximum length for a task name.
	MaxNameLength = 200
	// MaxNotesLength is the maximum length for a day's notes.
	MaxNotesLength = 65536
	// MaxFilenameLength is the maximum length for an attached file name.
	MaxFilenameLength = 255
)

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON name.
	val.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return strings.ToLower(fld.Name)
		}
		return name
	})

	_ = val.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = val.RegisterValidation("plainfile", func(fl validator.FieldLevel) bool {
		return isPlainFilename(fl.Field().String())
	})

	return val
}

// Struct validates a struct's `validate` tags.
func Struct(s any) error {
	return convert("", v.Struct(s))
}

// Var validates a single value against a tag expression, reporting field on failure.
func Var(field string, value any, tag string) error {
	return convert(field, v.Var(value, tag))
}

// TaskName trims name and checks it is non-blank and not too long.
func TaskName(name string) (string, error) {
	name = SanitizeName(name)
	if err := Var("name", name, fmt.Sprintf("notblank,max=%d", MaxNameLength)); err != nil {
		return "", err
	}
	return name, nil
}

// Notes normalizes notes and checks their length. Empty notes are allowed.
func Notes(notes string) (string, error) {
	notes = SanitizeNotes(notes)
	if utf8.RuneCountInString(notes) > MaxNotesLength {
		return "", errors.NewValidationError("notes",
			fmt.Sprintf("must be at most %d characters", MaxNotesLength))
	}
	return notes, nil
}

// Percent checks a completion percent is within 0..100.
func Percent(p int) error {
	return Var("percent", p, "min=0,max=100")
}

// Filename checks name is a plain file name with no directory components.
func Filename(name string) (string, error) {
	name = strings.TrimSpace(name)
	if err := Var("filename", name, fmt.Sprintf("required,max=%d,plainfile", MaxFilenameLength)); err != nil {
		return "", err
	}
	return name, nil
}

// Range checks that end is not before start.
func Range(start, end calendar.Date) error {
	if start.IsZero() || end.IsZero() {
		return errors.NewValidationError("range", "start and end dates are required")
	}
	if end.Before(start) {
		return &errors.ValidationError{
			Field:   "range",
			Message: fmt.Sprintf("end %s is before start %s", end, start),
			Err:     calendar.ErrInvalidRange,
		}
	}
	return nil
}

// NonEmpty validates that a string is not blank.
func NonEmpty(field, value string) error {
	return Var(field, value, "notblank")
}

func isPlainFilename(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	if strings.ContainsAny(name, "/\\\x00") {
		return false
	}
	return !IsPathTraversal(name)
}

// convert turns validator output into a ValidationError for the first failing field.
func convert(field string, err error) error {
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return errors.NewValidationError(fieldOr(field, "input"), err.Error())
	}

	fe := verrs[0]
	name := field
	if name == "" {
		name = fe.Field()
	}
	return errors.NewValidationError(fieldOr(name, "input"), message(fe))
}

func fieldOr(field, fallback string) string {
	if field == "" {
		return fallback
	}
	return field
}

func message(fe validator.FieldError) string {
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required", "notblank":
		return "cannot be blank"
	case "max":
		if isString {
			return "must be at most " + fe.Param() + " characters"
		}
		return "must be at most " + fe.Param()
	case "min":
		if isString {
			return "must be at least " + fe.Param() + " characters"
		}
		return "must be at least " + fe.Param()
	case "plainfile":
		return "must be a plain file name without directories"
	default:
		return "failed '" + fe.Tag() + "' check"
	}
}
