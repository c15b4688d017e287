// Package arqerr defines the stable error taxonomy shared by every package
// in the module. Callers classify errors by Code, not by string matching.
package arqerr

import (
	"errors"
	"fmt"
)

// Code identifies an error kind from spec.md §7. Names are stable and part
// of the public contract: callers switch on Code, never on Error().
type Code string

const (
	CodeShapeError          Code = "ShapeError"
	CodeUnknownField        Code = "UnknownField"
	CodeUnknownRelation     Code = "UnknownRelation"
	CodeUnsupportedFilter   Code = "UnsupportedFilter"
	CodeFeatureNotSupported Code = "FeatureNotSupported"
	CodeUniqueWhereRequired Code = "UniqueWhereRequired"
	CodeRecordNotFound      Code = "RecordNotFound"
	CodeUniqueConstraint    Code = "UniqueConstraint"
	CodeForeignKeyConstraint Code = "ForeignKeyConstraint"
	CodeNotNullConstraint   Code = "NotNullConstraint"
	CodeCheckConstraint     Code = "CheckConstraint"
	CodeNestedWriteError    Code = "NestedWriteError"
	CodeSchemaError         Code = "SchemaError"
	CodeMigrationError      Code = "MigrationError"
	CodeInternalError       Code = "InternalError"
)

// Error is the single exported error type for the module. Fields is a
// structured metadata bag (model, field, relation path, operation) that
// callers can inspect without parsing Message.
type Error struct {
	Code    Code
	Message string
	Fields  map[string]any
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New constructs an Error with the given code and message.
func New(code Code, message string, fields map[string]any) *Error {
	return &Error{Code: code, Message: message, Fields: fields}
}

// Wrap constructs an Error that carries an underlying cause.
func Wrap(code Code, message string, cause error, fields map[string]any) *Error {
	return &Error{Code: code, Message: message, Fields: fields, Cause: cause}
}

// Is reports whether err is an *Error with the given code, unwrapping once.
func Is(err error, code Code) bool {
	e, ok := err.(*Error)
	if !ok {
		if e, ok = errors.Unwrap(err).(*Error); !ok {
			return false
		}
	}
	return e.Code == code
}

// Retryable reports whether the caller should consider retrying the
// enclosing transaction. Only driver-mapped transient classes qualify;
// shape/schema errors never are.
func Retryable(err error) bool {
	e, ok := err.(*Error)
	if !ok {
		return false
	}
	switch e.Code {
	case CodeUniqueConstraint, CodeForeignKeyConstraint, CodeNotNullConstraint, CodeCheckConstraint:
		if v, ok := e.Fields["retryable"].(bool); ok {
			return v
		}
	}
	return false
}
