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

type CommunityRepository interface {
	// CreateCommunity inserts the community and its creator as admin member.
	CreateCommunity(ctx context.Context, community models.Community, creatorUserID int64) (*models.Community, *models.Member, error)
	GetCommunity(ctx context.Context, id int64) (*models.Community, error)
	AddMember(ctx context.Context, communityID, userID int64, role models.MemberRole, at time.Time) (*models.Member, error)
	GetMember(ctx context.Context, memberID int64) (*models.Member, error)
	GetMemberByUser(ctx context.Context, communityID, userID int64) (*models.Member, error)
}

type communityRepository struct {
	db        *sqlx.DB
	publisher events.Publisher
}

func NewCommunityRepository(db *sqlx.DB, publisher events.Publisher) CommunityRepository {
	return &communityRepository{db: db, publisher: publisher}
}

const (
	communityColumns = `id, name, description, is_public, community_type, created_at`
	memberColumns    = `id, user_id, community_id, role, joined_at`
)

func (r *communityRepository) CreateCommunity(ctx context.Context, community models.Community, creatorUserID int64) (*models.Community, *models.Member, error) {
	var created models.Community
	var admin models.Member
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var id int64
		err := tx.GetContext(ctx, &id, tx.Rebind(`
INSERT INTO communities (name, description, is_public, community_type, created_at)
VALUES (?, ?, ?, ?, ?)
RETURNING id
`), community.Name, community.Description, community.IsPublic, community.CommunityType, community.CreatedAt)
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		if err != nil {
			return err
		}
		if err := tx.GetContext(ctx, &created, tx.Rebind(`SELECT `+communityColumns+` FROM communities WHERE id=?`), id); err != nil {
			return err
		}

		return insertMember(ctx, tx, created.ID, creatorUserID, models.MemberRoleAdmin, created.CreatedAt, &admin)
	})
	if err != nil {
		return nil, nil, err
	}

	logPublish(ctx, r.publisher, events.CommunityCreated, events.CommunityPayload{
		CommunityID: created.ID,
		MemberID:    admin.ID,
		UserID:      admin.UserID,
		Role:        string(admin.Role),
		OccurredAt:  created.CreatedAt,
	})
	return &created, &admin, nil
}

func (r *communityRepository) GetCommunity(ctx context.Context, id int64) (*models.Community, error) {
	var c models.Community
	err := r.db.GetContext(ctx, &c, r.db.Rebind(`SELECT `+communityColumns+` FROM communities WHERE id=?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, classify(err)
	}
	return &c, nil
}

func (r *communityRepository) AddMember(ctx context.Context, communityID, userID int64, role models.MemberRole, at time.Time) (*models.Member, error) {
	var m models.Member
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var exists bool
		if err := tx.GetContext(ctx, &exists, tx.Rebind(`SELECT EXISTS(SELECT 1 FROM communities WHERE id=?)`), communityID); err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
		return insertMember(ctx, tx, communityID, userID, role, at, &m)
	})
	if err != nil {
		return nil, err
	}

	logPublish(ctx, r.publisher, events.CommunityMemberJoined, events.CommunityPayload{
		CommunityID: m.CommunityID,
		MemberID:    m.ID,
		UserID:      m.UserID,
		Role:        string(m.Role),
		OccurredAt:  at,
	})
	return &m, nil
}

func (r *communityRepository) GetMember(ctx context.Context, memberID int64) (*models.Member, error) {
	var m models.Member
	err := r.db.GetContext(ctx, &m, r.db.Rebind(`SELECT `+memberColumns+` FROM members WHERE id=?`), memberID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, classify(err)
	}
	return &m, nil
}

func (r *communityRepository) GetMemberByUser(ctx context.Context, communityID, userID int64) (*models.Member, error) {
	var m models.Member
	err := r.db.GetContext(ctx, &m, r.db.Rebind(`
SELECT `+memberColumns+` FROM members WHERE community_id=? AND user_id=?
`), communityID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, classify(err)
	}
	return &m, nil
}

func insertMember(ctx context.Context, tx *sqlx.Tx, communityID, userID int64, role models.MemberRole, at time.Time, dest *models.Member) error {
	var id int64
	err := tx.GetContext(ctx, &id, tx.Rebind(`
INSERT INTO members (user_id, community_id, role, joined_at)
VALUES (?, ?, ?, ?)
RETURNING id
`), userID, communityID, string(role), at)
	if isUniqueViolation(err) {
		return ErrAlreadyMember
	}
	if err != nil {
		return err
	}
	return tx.GetContext(ctx, dest, tx.Rebind(`SELECT `+memberColumns+` FROM members WHERE id=?`), id)
}
