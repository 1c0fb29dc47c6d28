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

type PostRepository interface {
	CreatePost(ctx context.Context, post models.Post) (*models.Post, error)
	GetPost(ctx context.Context, id int64) (*models.Post, error)
	IsParticipant(ctx context.Context, postID, memberID int64) (bool, error)
	// JoinOpenReservation increments the participant count only while it is
	// below the maximum and records the participant in the same transaction.
	// It returns ErrSlotsFull when no seat is left and ErrAlreadyJoined when the
	// member is already a participant.
	JoinOpenReservation(ctx context.Context, postID, memberID int64, at time.Time) (*models.OpenReservationData, error)
	ListParticipants(ctx context.Context, postID int64) ([]models.PostParticipant, error)
}

type postRepository struct {
	db        *sqlx.DB
	publisher events.Publisher
}

func NewPostRepository(db *sqlx.DB, publisher events.Publisher) PostRepository {
	return &postRepository{db: db, publisher: publisher}
}

type postRow struct {
	ID                  int64         `db:"id"`
	CommunityID         int64         `db:"community_id"`
	AuthorMemberID      int64         `db:"author_member_id"`
	Kind                string        `db:"kind"`
	Title               string        `db:"title"`
	Description         string        `db:"description"`
	PublishedAt         time.Time     `db:"published_at"`
	ReservationID       sql.NullInt64 `db:"reservation_id"`
	MaxParticipants     sql.NullInt64 `db:"max_participants"`
	CurrentParticipants sql.NullInt64 `db:"current_participants"`
}

func (row postRow) toModel() *models.Post {
	post := &models.Post{
		ID:             row.ID,
		CommunityID:    row.CommunityID,
		AuthorMemberID: row.AuthorMemberID,
		Kind:           models.PostKind(row.Kind),
		Title:          row.Title,
		Description:    row.Description,
		PublishedAt:    row.PublishedAt,
	}
	if row.ReservationID.Valid {
		post.OpenReservation = &models.OpenReservationData{
			ReservationID:       row.ReservationID.Int64,
			MaxParticipants:     int(row.MaxParticipants.Int64),
			CurrentParticipants: int(row.CurrentParticipants.Int64),
		}
	}
	return post
}

func (r *postRepository) CreatePost(ctx context.Context, post models.Post) (*models.Post, error) {
	created := post
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := tx.GetContext(ctx, &created.ID, tx.Rebind(`
INSERT INTO posts (community_id, author_member_id, kind, title, description, published_at)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING id
`), post.CommunityID, post.AuthorMemberID, string(post.Kind), post.Title, post.Description, post.PublishedAt); err != nil {
			return err
		}

		slots, ok := post.SlotCapability()
		if !ok {
			return nil
		}
		created.OpenReservation = &models.OpenReservationData{
			ReservationID:   slots.ReservationID,
			MaxParticipants: slots.MaxParticipants,
		}
		_, err := tx.ExecContext(ctx, tx.Rebind(`
INSERT INTO post_open_reservations (post_id, reservation_id, max_participants, current_participants)
VALUES (?, ?, ?, 0)
`), created.ID, slots.ReservationID, slots.MaxParticipants)
		return err
	})
	if err != nil {
		return nil, err
	}

	payload := events.PostPayload{
		PostID:      created.ID,
		CommunityID: created.CommunityID,
		Kind:        string(created.Kind),
		OccurredAt:  created.PublishedAt,
	}
	if created.OpenReservation != nil {
		payload.ReservationID = &created.OpenReservation.ReservationID
	}
	logPublish(ctx, r.publisher, events.PostPublished, payload)
	return &created, nil
}

func (r *postRepository) GetPost(ctx context.Context, id int64) (*models.Post, error) {
	var row postRow
	err := r.db.GetContext(ctx, &row, r.db.Rebind(`
SELECT p.id, p.community_id, p.author_member_id, p.kind, p.title, p.description, p.published_at,
	o.reservation_id, o.max_participants, o.current_participants
FROM posts p
LEFT JOIN post_open_reservations o ON o.post_id = p.id
WHERE p.id=?
`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, classify(err)
	}
	return row.toModel(), nil
}

func (r *postRepository) IsParticipant(ctx context.Context, postID, memberID int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, r.db.Rebind(`
SELECT EXISTS(SELECT 1 FROM post_participants WHERE post_id=? AND member_id=?)
`), postID, memberID)
	return exists, classify(err)
}

func (r *postRepository) JoinOpenReservation(ctx context.Context, postID, memberID int64, at time.Time) (*models.OpenReservationData, error) {
	var slots models.OpenReservationData
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		err := tx.QueryRowxContext(ctx, tx.Rebind(`
UPDATE post_open_reservations SET current_participants = current_participants + 1
WHERE post_id=? AND current_participants < max_participants
RETURNING reservation_id, max_participants, current_participants
`), postID).StructScan(&slots)
		if errors.Is(err, sql.ErrNoRows) {
			var exists bool
			if err := tx.GetContext(ctx, &exists, tx.Rebind(`
SELECT EXISTS(SELECT 1 FROM post_open_reservations WHERE post_id=?)
`), postID); err != nil {
				return err
			}
			if !exists {
				return ErrNotFound
			}
			return ErrSlotsFull
		}
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, tx.Rebind(`
INSERT INTO post_participants (post_id, member_id, joined_at) VALUES (?, ?, ?)
`), postID, memberID, at)
		if isUniqueViolation(err) {
			return ErrAlreadyJoined
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	logPublish(ctx, r.publisher, events.PostParticipantJoined, events.ParticipantJoinedPayload{
		PostID:              postID,
		MemberID:            memberID,
		CurrentParticipants: slots.CurrentParticipants,
		MaxParticipants:     slots.MaxParticipants,
		OccurredAt:          at,
	})
	return &slots, nil
}

func (r *postRepository) ListParticipants(ctx context.Context, postID int64) ([]models.PostParticipant, error) {
	participants := []models.PostParticipant{}
	err := r.db.SelectContext(ctx, &participants, r.db.Rebind(`
SELECT pp.post_id, pp.member_id, m.user_id, pp.joined_at
FROM post_participants pp
JOIN members m ON m.id = pp.member_id
WHERE pp.post_id=?
ORDER BY pp.joined_at, pp.id
`), postID)
	return participants, classify(err)
}
