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

type FriendRepository interface {
	CreatePendingRequest(ctx context.Context, fromUserID, toUserID int64, at time.Time) (*models.FriendRequest, error)
	GetRequest(ctx context.Context, requestID int64) (*models.FriendRequest, error)
	AcceptRequest(ctx context.Context, requestID int64, at time.Time) error
	RejectRequest(ctx context.Context, requestID int64, at time.Time) error
	GetIncomingRequests(ctx context.Context, userID int64) ([]models.FriendRequest, error)
	ListFriends(ctx context.Context, userID int64) ([]int64, error)
	HasPendingRequest(ctx context.Context, userID, otherID int64) (bool, error)
	AreFriends(ctx context.Context, userID, otherID int64) (bool, error)
	DeleteFriendship(ctx context.Context, userID, friendID int64, at time.Time) (bool, error)
}

type friendRepository struct {
	db        *sqlx.DB
	publisher events.Publisher
}

func NewFriendRepository(db *sqlx.DB, publisher events.Publisher) FriendRepository {
	return &friendRepository{db: db, publisher: publisher}
}

const friendRequestColumns = `id, from_user_id, to_user_id, status, created_at, responded_at`

// CreatePendingRequest checks for a pending request in either direction and an
// existing friendship, then inserts, all inside one transaction. The partial
// unique index on pending pairs backs the check against concurrent senders.
func (r *friendRepository) CreatePendingRequest(ctx context.Context, fromUserID, toUserID int64, at time.Time) (*models.FriendRequest, error) {
	low, high := models.OrderedPair(fromUserID, toUserID)

	var req models.FriendRequest
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var pending bool
		if err := tx.GetContext(ctx, &pending, tx.Rebind(`
SELECT EXISTS(
SELECT 1 FROM friend_requests
WHERE pair_low=? AND pair_high=? AND status='pending'
)
`), low, high); err != nil {
			return err
		}
		if pending {
			return ErrDuplicateRequest
		}

		var friends bool
		if err := tx.GetContext(ctx, &friends, tx.Rebind(`
SELECT EXISTS(SELECT 1 FROM friendships WHERE user_low=? AND user_high=?)
`), low, high); err != nil {
			return err
		}
		if friends {
			return ErrAlreadyFriends
		}

		var id int64
		err := tx.GetContext(ctx, &id, tx.Rebind(`
INSERT INTO friend_requests (from_user_id, to_user_id, pair_low, pair_high, status, created_at)
VALUES (?, ?, ?, ?, 'pending', ?)
RETURNING id
`), fromUserID, toUserID, low, high, at)
		if isUniqueViolation(err) {
			return ErrDuplicateRequest
		}
		if err != nil {
			return err
		}
		return getRequest(ctx, tx, id, &req)
	})
	if err != nil {
		return nil, err
	}

	logPublish(ctx, r.publisher, events.FriendRequestCreated, events.FriendRequestPayload{
		RequestID:  req.ID,
		FromUserID: req.FromUserID,
		ToUserID:   req.ToUserID,
		Status:     string(req.Status),
		OccurredAt: at,
	})

	return &req, nil
}

func (r *friendRepository) GetRequest(ctx context.Context, requestID int64) (*models.FriendRequest, error) {
	var req models.FriendRequest
	if err := getRequest(ctx, r.db, requestID, &req); err != nil {
		return nil, classify(err)
	}
	return &req, nil
}

// AcceptRequest moves a pending request to accepted and creates the friendship
// in the same transaction. ErrStaleState means the request was no longer pending.
func (r *friendRepository) AcceptRequest(ctx context.Context, requestID int64, at time.Time) error {
	var req models.FriendRequest
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := resolvePending(ctx, tx, requestID, models.FriendRequestAccepted, at, &req); err != nil {
			return err
		}

		low, high := models.OrderedPair(req.FromUserID, req.ToUserID)
		_, err := tx.ExecContext(ctx, tx.Rebind(`
INSERT INTO friendships (user_low, user_high, created_at) VALUES (?, ?, ?)
ON CONFLICT (user_low, user_high) DO NOTHING
`), low, high, at)
		return err
	})
	if err != nil {
		return err
	}

	logPublish(ctx, r.publisher, events.FriendshipCreated, events.FriendshipPayload{
		UserID:     req.FromUserID,
		FriendID:   req.ToUserID,
		OccurredAt: at,
	})
	return nil
}

func (r *friendRepository) RejectRequest(ctx context.Context, requestID int64, at time.Time) error {
	var req models.FriendRequest
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		return resolvePending(ctx, tx, requestID, models.FriendRequestRejected, at, &req)
	})
	if err != nil {
		return err
	}

	logPublish(ctx, r.publisher, events.FriendRequestRejected, events.FriendRequestPayload{
		RequestID:  req.ID,
		FromUserID: req.FromUserID,
		ToUserID:   req.ToUserID,
		Status:     string(req.Status),
		OccurredAt: at,
	})
	return nil
}

func (r *friendRepository) GetIncomingRequests(ctx context.Context, userID int64) ([]models.FriendRequest, error) {
	reqs := []models.FriendRequest{}
	err := r.db.SelectContext(ctx, &reqs, r.db.Rebind(`
SELECT `+friendRequestColumns+`
FROM friend_requests
WHERE to_user_id=? AND status='pending'
ORDER BY created_at DESC, id DESC
`), userID)
	return reqs, classify(err)
}

func (r *friendRepository) ListFriends(ctx context.Context, userID int64) ([]int64, error) {
	friends := []int64{}
	err := r.db.SelectContext(ctx, &friends, r.db.Rebind(`
SELECT CASE WHEN user_low=? THEN user_high ELSE user_low END AS friend_id
FROM friendships
WHERE user_low=? OR user_high=?
ORDER BY friend_id
`), userID, userID, userID)
	return friends, classify(err)
}

func (r *friendRepository) HasPendingRequest(ctx context.Context, userID, otherID int64) (bool, error) {
	low, high := models.OrderedPair(userID, otherID)
	var exists bool
	err := r.db.GetContext(ctx, &exists, r.db.Rebind(`
SELECT EXISTS(
SELECT 1 FROM friend_requests
WHERE pair_low=? AND pair_high=? AND status='pending'
)
`), low, high)
	return exists, classify(err)
}

func (r *friendRepository) AreFriends(ctx context.Context, userID, otherID int64) (bool, error) {
	low, high := models.OrderedPair(userID, otherID)
	var exists bool
	err := r.db.GetContext(ctx, &exists, r.db.Rebind(`
SELECT EXISTS(SELECT 1 FROM friendships WHERE user_low=? AND user_high=?)
`), low, high)
	return exists, classify(err)
}

// DeleteFriendship removes the pair's friendship and reports whether one existed.
func (r *friendRepository) DeleteFriendship(ctx context.Context, userID, friendID int64, at time.Time) (bool, error) {
	low, high := models.OrderedPair(userID, friendID)
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
DELETE FROM friendships WHERE user_low=? AND user_high=?
`), low, high)
	if err != nil {
		return false, classify(err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if count == 0 {
		return false, nil
	}

	logPublish(ctx, r.publisher, events.FriendshipRemoved, events.FriendshipPayload{
		UserID:     userID,
		FriendID:   friendID,
		OccurredAt: at,
	})
	return true, nil
}

// resolvePending is the compare-and-set out of the pending state.
func resolvePending(ctx context.Context, tx *sqlx.Tx, requestID int64, status models.FriendRequestStatus, at time.Time, dest *models.FriendRequest) error {
	res, err := tx.ExecContext(ctx, tx.Rebind(`
UPDATE friend_requests SET status=?, responded_at=?
WHERE id=? AND status='pending'
`), string(status), at, requestID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrStaleState
	}
	return getRequest(ctx, tx, requestID, dest)
}

func getRequest(ctx context.Context, q queryer, requestID int64, dest *models.FriendRequest) error {
	err := sqlx.GetContext(ctx, q, dest, q.Rebind(`SELECT `+friendRequestColumns+` FROM friend_requests WHERE id=?`), requestID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
