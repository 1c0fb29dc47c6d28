// Package apperrors defines the coded error type returned by the domain services.
package apperrors

import (
	"errors"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/status"
)

// Domain is the error domain attached to gRPC error details.
const Domain = "social-service"

// FieldError is one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is the domain error type with structured metadata.
type Error struct {
	Code     Code
	Message  string
	Metadata map[string]string
	Fields   []FieldError
	Cause    error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func WithMetadata(code Code, message string, metadata map[string]string) *Error {
	return &Error{Code: code, Message: message, Metadata: metadata}
}

func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// Validation builds a VALIDATION_FAILED error carrying the rejected fields.
func Validation(fields []FieldError) *Error {
	return &Error{Code: CodeValidationFailed, Message: "validation failed", Fields: fields}
}

// CodeOf returns the code of the first *Error in err's chain, or CodeInternal.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// HasCode reports whether err carries code.
func HasCode(err error, code Code) bool {
	return errors.Is(err, &Error{Code: code})
}

// ToGRPCStatus converts the error to a gRPC status with errdetails attached.
func (e *Error) ToGRPCStatus() error {
	grpcCode := e.Code.GRPCCode()
	st := status.New(grpcCode, e.Message)

	withDetails, err := st.WithDetails(&errdetails.ErrorInfo{
		Reason:   string(e.Code),
		Domain:   Domain,
		Metadata: e.Metadata,
	})
	if err != nil {
		return st.Err()
	}
	if len(e.Fields) > 0 {
		violations := make([]*errdetails.BadRequest_FieldViolation, 0, len(e.Fields))
		for _, f := range e.Fields {
			violations = append(violations, &errdetails.BadRequest_FieldViolation{Field: f.Field, Description: f.Message})
		}
		if withFields, err := withDetails.WithDetails(&errdetails.BadRequest{FieldViolations: violations}); err == nil {
			withDetails = withFields
		}
	}
	return withDetails.Err()
}

// GRPCStatus converts any error to a gRPC status error; unknown errors become Internal.
func GRPCStatus(err error) error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.ToGRPCStatus()
	}
	return New(CodeInternal, "internal error").ToGRPCStatus()
}
