package core

import "github.com/pkg/errors"

// FieldError attaches an error to a single request field, keyed by its
// JSON name (eg. "username", "learning_style").
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// FieldMap flattens the field errors for the API error body; nil when the
// error is not field-specific.
func (err ValidationError) FieldMap() map[string]string {
	if err.Fields == nil {
		return nil
	}
	fldErrs := make(map[string]string, len(err.Fields))
	for _, fErr := range err.Fields {
		fldErrs[fErr.Field] = fErr.Error
	}
	return fldErrs
}

type shutdown struct {
	message string
}

// NewShutdownError returns an error the API server treats as fatal: it
// stops serving instead of running on a corrupted state.
func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
