package dto

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

var sessionCodeRegex = regexp.MustCompile(`^[A-Z0-9]{4}$`)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ToMap indexes errors by field; later errors for a field win.
func ToMap(errs []ValidationError) map[string]string {
	result := make(map[string]string)
	for _, e := range errs {
		result[e.Field] = e.Message
	}
	return result
}

func ToResponse(errs []ValidationError) string {
	var msgs []string
	for _, e := range errs {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

// IsSessionCode reports whether s has the shape of a session code.
func IsSessionCode(s string) bool {
	return sessionCodeRegex.MatchString(s)
}

func validateRequired(field, value string) []ValidationError {
	if strings.TrimSpace(value) == "" {
		return []ValidationError{{Field: field, Message: "is required"}}
	}
	return nil
}

func validateMaxLength(field, value string, max int) []ValidationError {
	if utf8.RuneCountInString(strings.TrimSpace(value)) > max {
		return []ValidationError{{Field: field, Message: fmt.Sprintf("must be at most %d characters", max)}}
	}
	return nil
}

func validateOptionalMaxLength(field string, value *string, max int) []ValidationError {
	if value == nil {
		return nil
	}
	return validateMaxLength(field, *value, max)
}

func validateBackground(value *string) []ValidationError {
	if value == nil || *value == "" {
		return nil
	}
	if strings.ContainsAny(*value, "<>;{}") {
		return []ValidationError{{Field: "background", Message: "must be a color or an image reference"}}
	}
	return nil
}
