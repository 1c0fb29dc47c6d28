package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"social-service/internal/mocks"
	"social-service/internal/models"
	"social-service/internal/repositories"
	"social-service/internal/services"
	"social-service/internal/telemetry"
)

func setupFriendsRouter(handler *FriendHandler) http.Handler {
	r := newTestRouter()
	r.POST("/friends/request", handler.SendRequest)
	r.GET("/friends/requests/incoming", handler.ListIncoming)
	r.POST("/friends/requests/:id/accept", handler.AcceptRequest)
	r.POST("/friends/requests/:id/reject", handler.RejectRequest)
	r.GET("/friends", handler.ListFriends)
	r.DELETE("/friends/:friend_id", handler.DeleteFriend)
	return r
}

func newFriendHandler(repo *mocks.MockFriendRepository, users services.UserDirectory, audit *telemetry.AuditEmitter) *FriendHandler {
	return NewFriendHandler(services.NewFriendService(repo, users, services.FixedClock(now), fastRetry), users, audit)
}

func TestSendRequest_EmptyBodyReturnsBadRequest(t *testing.T) {
	router := setupFriendsRouter(newFriendHandler(new(mocks.MockFriendRepository), nil, nil))

	rec := do(t, router, customer(1), http.MethodPost, "/friends/request", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(t, rec))
}

func TestSendRequest_MissingTarget(t *testing.T) {
	router := setupFriendsRouter(newFriendHandler(new(mocks.MockFriendRepository), nil, nil))

	rec := do(t, router, customer(1), http.MethodPost, "/friends/request", `{"to_user_id":0}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decode[errorResponse](t, rec)
	require.Len(t, resp.Fields, 1)
	assert.Equal(t, "to_user_id", resp.Fields[0].Field)
}

func TestSendRequest_Unauthenticated(t *testing.T) {
	router := setupFriendsRouter(newFriendHandler(new(mocks.MockFriendRepository), nil, nil))

	rec := do(t, router, anonymous, http.MethodPost, "/friends/request", `{"to_user_id":2}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSendRequest_Self(t *testing.T) {
	repo := new(mocks.MockFriendRepository)
	router := setupFriendsRouter(newFriendHandler(repo, nil, nil))

	rec := do(t, router, customer(1), http.MethodPost, "/friends/request", `{"to_user_id":1}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "SELF_REQUEST", errorCode(t, rec))
	repo.AssertNotCalled(t, "CreatePendingRequest", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSendRequest_CreatedAndAudited(t *testing.T) {
	repo := new(mocks.MockFriendRepository)
	pub := new(mocks.MockPublisher)
	audit := telemetry.NewAuditEmitter(pub, "social-service", "test")
	router := setupFriendsRouter(newFriendHandler(repo, nil, audit))

	repo.On("CreatePendingRequest", mock.Anything, int64(1), int64(2), now).
		Return(&models.FriendRequest{ID: 5, FromUserID: 1, ToUserID: 2, Status: models.FriendRequestPending, CreatedAt: now}, nil).Once()
	pub.On("Publish", mock.Anything, telemetry.AuditRoutingKey, mock.MatchedBy(func(env telemetry.Envelope) bool {
		return env.Payload.Level == telemetry.LevelInfo && env.UserID != nil && *env.UserID == 1
	})).Return(nil).Once()

	rec := do(t, router, customer(1), http.MethodPost, "/friends/request", `{"to_user_id":2}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	resp := decode[models.FriendRequest](t, rec)
	assert.Equal(t, int64(5), resp.ID)
	assert.Equal(t, models.FriendRequestPending, resp.Status)

	repo.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestSendRequest_Conflicts(t *testing.T) {
	repo := new(mocks.MockFriendRepository)
	router := setupFriendsRouter(newFriendHandler(repo, nil, nil))

	repo.On("CreatePendingRequest", mock.Anything, int64(2), int64(1), now).Return(nil, repositories.ErrDuplicateRequest).Once()
	repo.On("CreatePendingRequest", mock.Anything, int64(3), int64(1), now).Return(nil, repositories.ErrAlreadyFriends).Once()

	rec := do(t, router, customer(2), http.MethodPost, "/friends/request", `{"to_user_id":1}`)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "DUPLICATE_REQUEST", errorCode(t, rec))

	rec = do(t, router, customer(3), http.MethodPost, "/friends/request", `{"to_user_id":1}`)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "FRIENDSHIP_ALREADY_EXISTS", errorCode(t, rec))
}

func TestAcceptRequest_OnlyReceiver(t *testing.T) {
	repo := new(mocks.MockFriendRepository)
	router := setupFriendsRouter(newFriendHandler(repo, nil, nil))

	pending := &models.FriendRequest{ID: 7, FromUserID: 1, ToUserID: 2, Status: models.FriendRequestPending}
	repo.On("GetRequest", mock.Anything, int64(7)).Return(pending, nil)
	repo.On("AcceptRequest", mock.Anything, int64(7), now).Return(nil).Once()

	rec := do(t, router, customer(1), http.MethodPost, "/friends/requests/7/accept", "")
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "NOT_REQUEST_RECEIVER", errorCode(t, rec))
	repo.AssertNotCalled(t, "AcceptRequest", mock.Anything, mock.Anything, mock.Anything)

	rec = do(t, router, customer(2), http.MethodPost, "/friends/requests/7/accept", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"accepted"}`, rec.Body.String())
	repo.AssertExpectations(t)
}

func TestRejectRequest_AlreadyDecided(t *testing.T) {
	repo := new(mocks.MockFriendRepository)
	router := setupFriendsRouter(newFriendHandler(repo, nil, nil))

	repo.On("GetRequest", mock.Anything, int64(8)).
		Return(&models.FriendRequest{ID: 8, FromUserID: 1, ToUserID: 2, Status: models.FriendRequestRejected}, nil)

	rec := do(t, router, customer(2), http.MethodPost, "/friends/requests/8/reject", "")
	require.Equal(t, http.StatusConflict, rec.Code)
	resp := decode[errorResponse](t, rec)
	assert.Equal(t, "ILLEGAL_STATE_TRANSITION", string(resp.Code))
	assert.Equal(t, "rejected", resp.Metadata["from"])
}

func TestDecision_InvalidID(t *testing.T) {
	router := setupFriendsRouter(newFriendHandler(new(mocks.MockFriendRepository), nil, nil))

	rec := do(t, router, customer(2), http.MethodPost, "/friends/requests/abc/reject", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListIncoming_WithUsernames(t *testing.T) {
	repo := new(mocks.MockFriendRepository)
	users := newDirectory(t, map[int64]string{3: "alimzhan"})
	router := setupFriendsRouter(newFriendHandler(repo, users, nil))

	repo.On("GetIncomingRequests", mock.Anything, int64(1)).
		Return([]models.FriendRequest{{ID: 7, FromUserID: 3, ToUserID: 1, Status: models.FriendRequestPending}}, nil).Once()

	rec := do(t, router, customer(1), http.MethodGet, "/friends/requests/incoming", "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[[]map[string]any](t, rec)
	require.Len(t, resp, 1)
	assert.Equal(t, "alimzhan", resp[0]["from_username"])
	assert.Equal(t, float64(7), resp[0]["id"])
}

func TestListFriends_DirectoryDown(t *testing.T) {
	repo := new(mocks.MockFriendRepository)
	users := newDirectory(t, map[int64]string{})
	router := setupFriendsRouter(newFriendHandler(repo, users, nil))

	repo.On("ListFriends", mock.Anything, int64(1)).Return([]int64{2}, nil).Once()

	rec := do(t, router, customer(1), http.MethodGet, "/friends", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestDeleteFriend(t *testing.T) {
	repo := new(mocks.MockFriendRepository)
	router := setupFriendsRouter(newFriendHandler(repo, nil, nil))

	repo.On("DeleteFriendship", mock.Anything, int64(1), int64(2), now).Return(true, nil).Once()
	repo.On("DeleteFriendship", mock.Anything, int64(1), int64(3), now).Return(false, nil).Once()

	rec := do(t, router, customer(1), http.MethodDelete, "/friends/2", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, router, customer(1), http.MethodDelete, "/friends/3", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", errorCode(t, rec))
}
