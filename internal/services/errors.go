package services

import (
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"social-service/internal/apperrors"
	"social-service/internal/repositories"
)

var tracer = otel.Tracer("social-service/internal/services")

// storeError maps repository sentinels onto coded errors. Errors that already
// carry a code pass through untouched.
func storeError(err error, notFound string) error {
	if err == nil {
		return nil
	}
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return err
	}
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return apperrors.New(apperrors.CodeNotFound, notFound)
	case errors.Is(err, repositories.ErrStaleState), errors.Is(err, repositories.ErrConflict):
		return apperrors.Wrap(apperrors.CodeTransientConflict, "concurrent update, try again", err)
	default:
		return apperrors.Wrap(apperrors.CodeInternal, "internal error", err)
	}
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(apperrors.CodeOf(err)))
	}
	span.End()
}
