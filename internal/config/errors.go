package config

import (
	"errors"
	"fmt"
)

// ErrValidationFailed is wrapped by every FieldError.
var ErrValidationFailed = errors.New("validation failed")

// ParseError reports a configuration file that could not be decoded.
type ParseError struct {
	// Path is the file that failed to parse.
	Path string
	// Line and Column locate the error when the decoder reports it.
	Line, Column int
	Err          error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse error in %s at line %d, column %d: %v", e.Path, e.Line, e.Column, e.Err)
	}
	return fmt.Sprintf("parse error in %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// FieldError reports an invalid setting.
type FieldError struct {
	// Field is the dotted TOML key, e.g. "theme.text_size".
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// Is matches ErrValidationFailed.
func (e *FieldError) Is(target error) bool {
	return target == ErrValidationFailed
}
