package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"social-service/internal/events"
	"social-service/internal/models"
)

type ReservationRepository interface {
	Create(ctx context.Context, reservation models.Reservation) (*models.Reservation, error)
	Get(ctx context.Context, id int64) (*models.Reservation, error)
	// UpdateStatus sets next only while the stored status still equals expected.
	// A lost compare returns ErrStaleState.
	UpdateStatus(ctx context.Context, id int64, expected, next models.ReservationStatus, at time.Time, actor models.Actor) (*models.Reservation, error)
}

type reservationRepository struct {
	db        *sqlx.DB
	publisher events.Publisher
}

func NewReservationRepository(db *sqlx.DB, publisher events.Publisher) ReservationRepository {
	return &reservationRepository{db: db, publisher: publisher}
}

const reservationColumns = `id, customer_id, restaurant_id, table_ref, party_size, scheduled_at, status, created_at, updated_at`

func (r *reservationRepository) Create(ctx context.Context, res models.Reservation) (*models.Reservation, error) {
	var created models.Reservation
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var id int64
		if err := tx.GetContext(ctx, &id, tx.Rebind(`
INSERT INTO reservations (customer_id, restaurant_id, table_ref, party_size, scheduled_at, status, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id
`), res.CustomerID, res.RestaurantID, res.TableRef, res.PartySize, res.ScheduledAt, string(res.Status), res.CreatedAt, res.CreatedAt); err != nil {
			return err
		}
		return getReservation(ctx, tx, id, &created)
	})
	if err != nil {
		return nil, err
	}

	logPublish(ctx, r.publisher, events.ReservationCreated, events.ReservationStatusPayload{
		ReservationID: created.ID,
		To:            string(created.Status),
		ActorUserID:   created.CustomerID,
		ActorRole:     string(models.RoleCustomer),
		OccurredAt:    created.CreatedAt,
	})
	return &created, nil
}

func (r *reservationRepository) Get(ctx context.Context, id int64) (*models.Reservation, error) {
	var res models.Reservation
	if err := getReservation(ctx, r.db, id, &res); err != nil {
		return nil, classify(err)
	}
	return &res, nil
}

func (r *reservationRepository) UpdateStatus(ctx context.Context, id int64, expected, next models.ReservationStatus, at time.Time, actor models.Actor) (*models.Reservation, error) {
	var res models.Reservation
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, tx.Rebind(`
UPDATE reservations SET status=?, updated_at=?
WHERE id=? AND status=?
`), string(next), at, id, string(expected))
		if err != nil {
			return err
		}
		count, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if count == 0 {
			return ErrStaleState
		}
		return getReservation(ctx, tx, id, &res)
	})
	if err != nil {
		return nil, err
	}

	logPublish(ctx, r.publisher, events.ReservationStatusChanged, events.ReservationStatusPayload{
		ReservationID: res.ID,
		From:          string(expected),
		To:            string(res.Status),
		ActorUserID:   actor.UserID,
		ActorRole:     string(actor.Role),
		OccurredAt:    at,
	})
	return &res, nil
}

func getReservation(ctx context.Context, q queryer, id int64, dest *models.Reservation) error {
	err := sqlx.GetContext(ctx, q, dest, q.Rebind(`SELECT `+reservationColumns+` FROM reservations WHERE id=?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
