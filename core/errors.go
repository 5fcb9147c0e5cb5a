package core

import "github.com/pkg/errors"

// FieldError pins a validation failure to a named payload field.
type FieldError struct {
	Field string
	Error string
}

// ValidationError carries field-level failures across the service boundary.
// The HTTP layer renders Fields as a field -> message map; Err, when set,
// names the underlying cause.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{Err: err, Fields: flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// FieldMap flattens the field errors for an HTTP response body.
// Returns nil when there are none.
func (err ValidationError) FieldMap() map[string]string {
	if len(err.Fields) == 0 {
		return nil
	}
	m := make(map[string]string, len(err.Fields))
	for _, fld := range err.Fields {
		m[fld.Field] = fld.Error
	}
	return m
}

// shutdownError asks the server loop to stop gracefully.
type shutdownError struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdownError{message: msg}
}

func (err shutdownError) Error() string {
	return err.message
}

// IsShutdown reports whether err, or its cause, is a shutdown request.
func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdownError)
	return ok
}
