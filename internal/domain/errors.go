package domain

import "errors"

var (
	// ErrValidation marks malformed or missing input.
	ErrValidation = errors.New("validation error")

	// ErrMissingParameter is a validation error for an absent required parameter.
	ErrMissingParameter error = missingParameterError{}

	ErrNotFound = errors.New("not found")

	// ErrIDGenerationExhausted is returned when no free session code was found
	// within the attempt budget.
	ErrIDGenerationExhausted = errors.New("unable to generate unique session id")
)

type missingParameterError struct{}

func (missingParameterError) Error() string { return "missing parameter" }

func (missingParameterError) Is(target error) bool { return target == ErrValidation }
