package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"social-service/internal/events"
	"social-service/internal/models"
	"social-service/internal/repositories"
)

// MockFriendRepository mocks FriendRepository behavior for handlers and services.
type MockFriendRepository struct {
	mock.Mock
}

func (m *MockFriendRepository) CreatePendingRequest(ctx context.Context, fromUserID, toUserID int64, at time.Time) (*models.FriendRequest, error) {
	args := m.Called(ctx, fromUserID, toUserID, at)
	var req *models.FriendRequest
	if val := args.Get(0); val != nil {
		req = val.(*models.FriendRequest)
	}
	return req, args.Error(1)
}

func (m *MockFriendRepository) GetRequest(ctx context.Context, requestID int64) (*models.FriendRequest, error) {
	args := m.Called(ctx, requestID)
	var req *models.FriendRequest
	if val := args.Get(0); val != nil {
		req = val.(*models.FriendRequest)
	}
	return req, args.Error(1)
}

func (m *MockFriendRepository) AcceptRequest(ctx context.Context, requestID int64, at time.Time) error {
	args := m.Called(ctx, requestID, at)
	return args.Error(0)
}

func (m *MockFriendRepository) RejectRequest(ctx context.Context, requestID int64, at time.Time) error {
	args := m.Called(ctx, requestID, at)
	return args.Error(0)
}

func (m *MockFriendRepository) GetIncomingRequests(ctx context.Context, userID int64) ([]models.FriendRequest, error) {
	args := m.Called(ctx, userID)
	var reqs []models.FriendRequest
	if val := args.Get(0); val != nil {
		reqs = val.([]models.FriendRequest)
	}
	return reqs, args.Error(1)
}

func (m *MockFriendRepository) ListFriends(ctx context.Context, userID int64) ([]int64, error) {
	args := m.Called(ctx, userID)
	var friends []int64
	if val := args.Get(0); val != nil {
		friends = val.([]int64)
	}
	return friends, args.Error(1)
}

func (m *MockFriendRepository) HasPendingRequest(ctx context.Context, userID, otherID int64) (bool, error) {
	args := m.Called(ctx, userID, otherID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFriendRepository) AreFriends(ctx context.Context, userID, otherID int64) (bool, error) {
	args := m.Called(ctx, userID, otherID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFriendRepository) DeleteFriendship(ctx context.Context, userID, friendID int64, at time.Time) (bool, error) {
	args := m.Called(ctx, userID, friendID, at)
	return args.Bool(0), args.Error(1)
}

// MockPostRepository mocks PostRepository for the join coordinator and gRPC tests.
type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) CreatePost(ctx context.Context, post models.Post) (*models.Post, error) {
	args := m.Called(ctx, post)
	var p *models.Post
	if val := args.Get(0); val != nil {
		p = val.(*models.Post)
	}
	return p, args.Error(1)
}

func (m *MockPostRepository) GetPost(ctx context.Context, id int64) (*models.Post, error) {
	args := m.Called(ctx, id)
	var p *models.Post
	if val := args.Get(0); val != nil {
		p = val.(*models.Post)
	}
	return p, args.Error(1)
}

func (m *MockPostRepository) IsParticipant(ctx context.Context, postID, memberID int64) (bool, error) {
	args := m.Called(ctx, postID, memberID)
	return args.Bool(0), args.Error(1)
}

func (m *MockPostRepository) JoinOpenReservation(ctx context.Context, postID, memberID int64, at time.Time) (*models.OpenReservationData, error) {
	args := m.Called(ctx, postID, memberID, at)
	var d *models.OpenReservationData
	if val := args.Get(0); val != nil {
		d = val.(*models.OpenReservationData)
	}
	return d, args.Error(1)
}

func (m *MockPostRepository) ListParticipants(ctx context.Context, postID int64) ([]models.PostParticipant, error) {
	args := m.Called(ctx, postID)
	var ps []models.PostParticipant
	if val := args.Get(0); val != nil {
		ps = val.([]models.PostParticipant)
	}
	return ps, args.Error(1)
}

// MockReservationRepository mocks ReservationRepository for the lifecycle tests.
type MockReservationRepository struct {
	mock.Mock
}

func (m *MockReservationRepository) Create(ctx context.Context, reservation models.Reservation) (*models.Reservation, error) {
	args := m.Called(ctx, reservation)
	var r *models.Reservation
	if val := args.Get(0); val != nil {
		r = val.(*models.Reservation)
	}
	return r, args.Error(1)
}

func (m *MockReservationRepository) Get(ctx context.Context, id int64) (*models.Reservation, error) {
	args := m.Called(ctx, id)
	var r *models.Reservation
	if val := args.Get(0); val != nil {
		r = val.(*models.Reservation)
	}
	return r, args.Error(1)
}

func (m *MockReservationRepository) UpdateStatus(ctx context.Context, id int64, expected, next models.ReservationStatus, at time.Time, actor models.Actor) (*models.Reservation, error) {
	args := m.Called(ctx, id, expected, next, at, actor)
	var r *models.Reservation
	if val := args.Get(0); val != nil {
		r = val.(*models.Reservation)
	}
	return r, args.Error(1)
}

// MockCommunityRepository mocks CommunityRepository.
type MockCommunityRepository struct {
	mock.Mock
}

func (m *MockCommunityRepository) CreateCommunity(ctx context.Context, community models.Community, creatorUserID int64) (*models.Community, *models.Member, error) {
	args := m.Called(ctx, community, creatorUserID)
	var c *models.Community
	if val := args.Get(0); val != nil {
		c = val.(*models.Community)
	}
	var mem *models.Member
	if val := args.Get(1); val != nil {
		mem = val.(*models.Member)
	}
	return c, mem, args.Error(2)
}

func (m *MockCommunityRepository) GetCommunity(ctx context.Context, id int64) (*models.Community, error) {
	args := m.Called(ctx, id)
	var c *models.Community
	if val := args.Get(0); val != nil {
		c = val.(*models.Community)
	}
	return c, args.Error(1)
}

func (m *MockCommunityRepository) AddMember(ctx context.Context, communityID, userID int64, role models.MemberRole, at time.Time) (*models.Member, error) {
	args := m.Called(ctx, communityID, userID, role, at)
	var mem *models.Member
	if val := args.Get(0); val != nil {
		mem = val.(*models.Member)
	}
	return mem, args.Error(1)
}

func (m *MockCommunityRepository) GetMember(ctx context.Context, memberID int64) (*models.Member, error) {
	args := m.Called(ctx, memberID)
	var mem *models.Member
	if val := args.Get(0); val != nil {
		mem = val.(*models.Member)
	}
	return mem, args.Error(1)
}

func (m *MockCommunityRepository) GetMemberByUser(ctx context.Context, communityID, userID int64) (*models.Member, error) {
	args := m.Called(ctx, communityID, userID)
	var mem *models.Member
	if val := args.Get(0); val != nil {
		mem = val.(*models.Member)
	}
	return mem, args.Error(1)
}

// Compile-time assertions
var (
	_ repositories.FriendRepository      = (*MockFriendRepository)(nil)
	_ repositories.PostRepository        = (*MockPostRepository)(nil)
	_ repositories.ReservationRepository = (*MockReservationRepository)(nil)
	_ repositories.CommunityRepository   = (*MockCommunityRepository)(nil)
)

// MockPublisher mocks the domain event publisher.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, routingKey string, event any) error {
	args := m.Called(ctx, routingKey, event)
	return args.Error(0)
}

func (m *MockPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

var _ events.Publisher = (*MockPublisher)(nil)
