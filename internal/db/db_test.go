package db

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sqliteDSN(t *testing.T) string {
	t.Helper()
	return "file:" + filepath.Join(t.TempDir(), "social.db") + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_time_format=sqlite"
}

func TestConnectRejectsUnknownDriver(t *testing.T) {
	_, err := Connect("mysql", "root@/social")
	require.ErrorContains(t, err, "unsupported database driver")
}

func TestConnectRunsMigrationsOnce(t *testing.T) {
	dsn := sqliteDSN(t)

	first, err := Connect(DriverSQLite, dsn)
	require.NoError(t, err)
	first.Close()

	second, err := Connect(DriverSQLite, dsn)
	require.NoError(t, err)
	defer second.Close()

	var tables int
	require.NoError(t, second.Get(&tables, `SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name IN ('communities','members','posts','post_open_reservations','post_participants','reservations','friend_requests','friendships')`))
	assert.Equal(t, 8, tables)
}

func TestParticipantCountCannotExceedMaximum(t *testing.T) {
	conn, err := Connect(DriverSQLite, sqliteDSN(t))
	require.NoError(t, err)
	defer conn.Close()

	now := time.Now().UTC()
	conn.MustExec(`INSERT INTO communities (id, name, created_at) VALUES (1, 'brunch club', ?)`, now)
	conn.MustExec(`INSERT INTO members (id, user_id, community_id, role, joined_at) VALUES (1, 10, 1, 'admin', ?)`, now)
	conn.MustExec(`INSERT INTO reservations (id, customer_id, restaurant_id, party_size, scheduled_at, status, created_at, updated_at) VALUES (1, 10, 5, 4, ?, 'requested', ?, ?)`, now.Add(time.Hour), now, now)
	conn.MustExec(`INSERT INTO posts (id, community_id, author_member_id, kind, title, published_at) VALUES (1, 1, 1, 'open_reservation', 'seats', ?)`, now)
	conn.MustExec(`INSERT INTO post_open_reservations (post_id, reservation_id, max_participants) VALUES (1, 1, 2)`)

	_, err = conn.Exec(`UPDATE post_open_reservations SET current_participants=3 WHERE post_id=1`)
	require.Error(t, err)

	_, err = conn.Exec(`UPDATE post_open_reservations SET current_participants=2 WHERE post_id=1`)
	require.NoError(t, err)
}

func TestOnlyOnePendingRequestPerPair(t *testing.T) {
	conn, err := Connect(DriverSQLite, sqliteDSN(t))
	require.NoError(t, err)
	defer conn.Close()

	now := time.Now().UTC()
	conn.MustExec(`INSERT INTO friend_requests (from_user_id, to_user_id, pair_low, pair_high, status, created_at) VALUES (1, 2, 1, 2, 'pending', ?)`, now)

	_, err = conn.Exec(`INSERT INTO friend_requests (from_user_id, to_user_id, pair_low, pair_high, status, created_at) VALUES (2, 1, 1, 2, 'pending', ?)`, now)
	require.Error(t, err)

	_, err = conn.Exec(`INSERT INTO friend_requests (from_user_id, to_user_id, pair_low, pair_high, status, created_at) VALUES (2, 1, 1, 2, 'rejected', ?)`, now)
	require.NoError(t, err)
}
