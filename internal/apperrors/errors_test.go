package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("join: %w", New(CodeSlotsFull, "post 7 has no free slots"))

	assert.True(t, errors.Is(err, New(CodeSlotsFull, "")))
	assert.False(t, errors.Is(err, New(CodeAlreadyJoined, "")))
	assert.True(t, HasCode(err, CodeSlotsFull))
	assert.Equal(t, CodeSlotsFull, CodeOf(err))
}

func TestCodeOfPlainErrorIsInternal(t *testing.T) {
	assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
	assert.Equal(t, Code(""), CodeOf(nil))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("serialization failure")
	err := Wrap(CodeTransientConflict, "retry budget exhausted", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "retry budget exhausted", err.Error())
}

func TestHTTPStatusMapping(t *testing.T) {
	cases := map[Code]int{
		CodeNotFound:           http.StatusNotFound,
		CodeValidationFailed:   http.StatusBadRequest,
		CodeSelfRequest:        http.StatusBadRequest,
		CodeNotRequestReceiver: http.StatusForbidden,
		CodeSlotsFull:          http.StatusConflict,
		CodeIllegalTransition:  http.StatusConflict,
		CodeReservationExpired: http.StatusGone,
		CodeTransientConflict:  http.StatusServiceUnavailable,
		CodeInternal:           http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, code.HTTPStatus(), string(code))
	}
}

func TestToGRPCStatusAttachesDetails(t *testing.T) {
	err := Validation([]FieldError{{Field: "max_participants", Message: "must be greater than 0"}})

	st, ok := status.FromError(err.ToGRPCStatus())
	require.True(t, ok)
	assert.Equal(t, codes.InvalidArgument, st.Code())

	var sawInfo, sawFields bool
	for _, d := range st.Details() {
		switch detail := d.(type) {
		case *errdetails.ErrorInfo:
			sawInfo = true
			assert.Equal(t, string(CodeValidationFailed), detail.GetReason())
			assert.Equal(t, Domain, detail.GetDomain())
		case *errdetails.BadRequest:
			sawFields = true
			require.Len(t, detail.GetFieldViolations(), 1)
			assert.Equal(t, "max_participants", detail.GetFieldViolations()[0].GetField())
		}
	}
	assert.True(t, sawInfo)
	assert.True(t, sawFields)
}

func TestGRPCStatusForUnknownError(t *testing.T) {
	assert.Nil(t, GRPCStatus(nil))
	assert.Equal(t, codes.Internal, status.Code(GRPCStatus(errors.New("boom"))))
	assert.Equal(t, codes.NotFound, status.Code(GRPCStatus(New(CodeNotFound, "post not found"))))
}
