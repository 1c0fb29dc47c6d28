package services

import (
	"context"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"social-service/internal/apperrors"
	"social-service/internal/models"
	"social-service/internal/repositories"
)

// ReservationLifecycle moves reservations along
// requested -> confirmed -> completed, with cancelled reachable from the first two.
type ReservationLifecycle struct {
	reservations repositories.ReservationRepository
	clock        Clock
	retry        RetryPolicy
}

func NewReservationLifecycle(reservations repositories.ReservationRepository, clock Clock, retry RetryPolicy) *ReservationLifecycle {
	if clock == nil {
		clock = SystemClock{}
	}
	return &ReservationLifecycle{reservations: reservations, clock: clock, retry: retry}
}

type ReservationInput struct {
	RestaurantID int64
	TableRef     string
	PartySize    int
	ScheduledAt  time.Time
}

// Create books a reservation for the actor in the requested state.
func (l *ReservationLifecycle) Create(ctx context.Context, actor models.Actor, in ReservationInput) (*ReservationView, error) {
	now := l.clock.Now()
	var fields []apperrors.FieldError
	if in.PartySize <= 0 {
		fields = append(fields, apperrors.FieldError{Field: "party_size", Message: "must be greater than 0"})
	}
	if !in.ScheduledAt.After(now) {
		fields = append(fields, apperrors.FieldError{Field: "scheduled_at", Message: "must be in the future"})
	}
	if len(fields) > 0 {
		return nil, apperrors.Validation(fields)
	}

	created, err := l.reservations.Create(ctx, models.Reservation{
		CustomerID:   actor.UserID,
		RestaurantID: in.RestaurantID,
		TableRef:     in.TableRef,
		PartySize:    in.PartySize,
		ScheduledAt:  in.ScheduledAt.UTC(),
		Status:       models.ReservationRequested,
		CreatedAt:    now,
	})
	if err != nil {
		return nil, storeError(err, "reservation not found")
	}
	return newReservationView(created), nil
}

func (l *ReservationLifecycle) Get(ctx context.Context, id int64) (*ReservationView, error) {
	res, err := l.reservations.Get(ctx, id)
	if err != nil {
		return nil, storeError(err, "reservation not found")
	}
	return newReservationView(res), nil
}

// ChangeStatus applies one transition on behalf of actor. Only status and
// updated_at change; a concurrent change re-runs the checks on fresh state.
func (l *ReservationLifecycle) ChangeStatus(ctx context.Context, id int64, next models.ReservationStatus, actor models.Actor) (view *ReservationView, err error) {
	ctx, span := tracer.Start(ctx, "ReservationLifecycle.ChangeStatus", trace.WithAttributes(
		attribute.Int64("reservation.id", id),
		attribute.String("reservation.next_status", string(next)),
		attribute.String("actor.role", string(actor.Role)),
	))
	defer func() { endSpan(span, err) }()

	return retryOnConflict(ctx, l.retry, "reservation.status", func() (*ReservationView, error) {
		current, err := l.reservations.Get(ctx, id)
		if err != nil {
			return nil, storeError(err, "reservation not found")
		}
		if !current.Status.CanTransitionTo(next) {
			return nil, illegalTransition(current, next, "transition not allowed")
		}
		if !mayTransition(actor, current, next) {
			return nil, illegalTransition(current, next, "role "+string(actor.Role)+" may not move this reservation to "+string(next))
		}

		updated, err := l.reservations.UpdateStatus(ctx, id, current.Status, next, l.clock.Now(), actor)
		if err != nil {
			return nil, storeError(err, "reservation not found")
		}
		return newReservationView(updated), nil
	})
}

// mayTransition: restaurant staff and owners run the book; customers may only
// cancel their own reservation.
func mayTransition(actor models.Actor, res *models.Reservation, next models.ReservationStatus) bool {
	if actor.Role.IsRestaurantSide() {
		return true
	}
	if actor.Role == models.RoleCustomer {
		return next == models.ReservationCancelled && res.CustomerID == actor.UserID
	}
	return false
}

func illegalTransition(res *models.Reservation, next models.ReservationStatus, message string) error {
	return apperrors.WithMetadata(apperrors.CodeIllegalTransition, message, map[string]string{
		"reservation_id": strconv.FormatInt(res.ID, 10),
		"from":           string(res.Status),
		"to":             string(next),
	})
}
