package models

import "time"

type MemberRole string

const (
	MemberRoleAdmin   MemberRole = "admin"
	MemberRoleRegular MemberRole = "regular"
)

type Community struct {
	ID            int64     `db:"id" json:"id"`
	Name          string    `db:"name" json:"name"`
	Description   string    `db:"description" json:"description"`
	IsPublic      bool      `db:"is_public" json:"is_public"`
	CommunityType string    `db:"community_type" json:"community_type"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// Member is a user's membership in one community. Unique per (user, community).
type Member struct {
	ID          int64      `db:"id" json:"id"`
	UserID      int64      `db:"user_id" json:"user_id"`
	CommunityID int64      `db:"community_id" json:"community_id"`
	Role        MemberRole `db:"role" json:"role"`
	JoinedAt    time.Time  `db:"joined_at" json:"joined_at"`
}
