package parser

import (
	"fmt"
	"strings"

	"github.com/manav03panchal/tasklog/internal/errors"
)

// InputError is a parse failure with example inputs.
type InputError struct {
	Input      string
	Field      string
	Message    string
	Examples   []string
	Suggestion string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid %s '%s': %s", e.Field, e.Input, e.Message)
}

// FormatWithExamples returns the error message with example suggestions.
func (e *InputError) FormatWithExamples() string {
	var sb strings.Builder
	sb.WriteString(e.Error())

	if len(e.Examples) > 0 {
		sb.WriteString("\n\nValid examples:\n")
		for _, ex := range e.Examples {
			sb.WriteString("  - ")
			sb.WriteString(ex)
			sb.WriteString("\n")
		}
	}

	if e.Suggestion != "" {
		sb.WriteString("\n")
		sb.WriteString(e.Suggestion)
	}

	return sb.String()
}

// DateExamples provides example date formats.
var DateExamples = []string{
	"2024-03-01",
	"today",
	"tomorrow",
	"+3",
	"next friday",
	"3 days ago",
}

// PercentExamples provides example percent formats.
var PercentExamples = []string{
	"40",
	"75%",
	"done",
}

// NewDateError creates a date parse error with standard examples.
func NewDateError(input string) *InputError {
	return &InputError{
		Input:      input,
		Field:      "date",
		Message:    "could not parse date",
		Examples:   DateExamples,
		Suggestion: "Use YYYY-MM-DD or a relative day like 'tomorrow' or '+2'.",
	}
}

// NewPercentError creates a percent parse error with standard examples.
func NewPercentError(input string) *InputError {
	return &InputError{
		Input:      input,
		Field:      "percent",
		Message:    "not a whole number",
		Examples:   PercentExamples,
		Suggestion: "Give a whole number from 0 to 100.",
	}
}

// ToUserError converts an InputError to a UserError for consistent handling.
func (e *InputError) ToUserError() *errors.UserError {
	suggestion := e.Suggestion
	if len(e.Examples) > 0 && suggestion == "" {
		suggestion = fmt.Sprintf("Try: %s", strings.Join(e.Examples[:min(3, len(e.Examples))], ", "))
	}

	return errors.NewUserErrorWithField(e.Field, e.Input, e.Message, suggestion)
}
