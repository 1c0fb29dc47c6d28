package apperrors

import (
	"net/http"

	"google.golang.org/grpc/codes"
)

// Code is a machine-readable error kind.
type Code string

const (
	CodeInternal Code = "INTERNAL"

	CodeNotFound           Code = "NOT_FOUND"
	CodeAlreadyExists      Code = "ALREADY_EXISTS"
	CodeValidationFailed   Code = "VALIDATION_FAILED"
	CodeTransientConflict  Code = "TRANSIENT_CONFLICT"
	CodeIllegalTransition  Code = "ILLEGAL_STATE_TRANSITION"
	CodeReservationExpired Code = "RESERVATION_EXPIRED"
	CodeSlotsFull          Code = "SLOTS_FULL"
	CodeAlreadyJoined      Code = "ALREADY_JOINED"
	CodeSelfRequest        Code = "SELF_REQUEST"
	CodeDuplicateRequest   Code = "DUPLICATE_REQUEST"
	CodeFriendshipExists   Code = "FRIENDSHIP_ALREADY_EXISTS"
	CodeNotRequestReceiver Code = "NOT_REQUEST_RECEIVER"
)

// HTTPStatus maps a code to the response status used by the HTTP boundary.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeValidationFailed, CodeSelfRequest:
		return http.StatusBadRequest
	case CodeNotRequestReceiver:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeAlreadyExists, CodeSlotsFull, CodeAlreadyJoined, CodeDuplicateRequest, CodeFriendshipExists, CodeIllegalTransition:
		return http.StatusConflict
	case CodeReservationExpired:
		return http.StatusGone
	case CodeTransientConflict:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// GRPCCode maps a code to a gRPC status code.
func (c Code) GRPCCode() codes.Code {
	switch c {
	case CodeValidationFailed, CodeSelfRequest:
		return codes.InvalidArgument
	case CodeNotRequestReceiver:
		return codes.PermissionDenied
	case CodeNotFound:
		return codes.NotFound
	case CodeAlreadyExists, CodeDuplicateRequest, CodeFriendshipExists, CodeAlreadyJoined:
		return codes.AlreadyExists
	case CodeSlotsFull:
		return codes.ResourceExhausted
	case CodeIllegalTransition, CodeReservationExpired:
		return codes.FailedPrecondition
	case CodeTransientConflict:
		return codes.Aborted
	default:
		return codes.Internal
	}
}
