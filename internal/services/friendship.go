package services

import (
	"context"
	"errors"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"social-service/internal/apperrors"
	"social-service/internal/models"
	"social-service/internal/repositories"
)

// FriendService runs the friend request state machine:
// pending -> accepted (creates the friendship) or pending -> rejected.
type FriendService struct {
	friends repositories.FriendRepository
	users   UserDirectory
	clock   Clock
	retry   RetryPolicy
}

// NewFriendService builds the service. users may be nil, in which case the
// target of a request is not looked up.
func NewFriendService(friends repositories.FriendRepository, users UserDirectory, clock Clock, retry RetryPolicy) *FriendService {
	if clock == nil {
		clock = SystemClock{}
	}
	return &FriendService{friends: friends, users: users, clock: clock, retry: retry}
}

func (s *FriendService) SendRequest(ctx context.Context, fromUserID, toUserID int64) (req *models.FriendRequest, err error) {
	ctx, span := tracer.Start(ctx, "FriendService.SendRequest", trace.WithAttributes(
		attribute.Int64("user.from", fromUserID),
		attribute.Int64("user.to", toUserID),
	))
	defer func() { endSpan(span, err) }()

	if fromUserID == toUserID {
		return nil, apperrors.New(apperrors.CodeSelfRequest, "cannot send a friend request to yourself")
	}
	if s.users != nil {
		if _, err := lookupUser(ctx, s.users, toUserID); err != nil {
			return nil, err
		}
	}

	return retryOnConflict(ctx, s.retry, "friend.request", func() (*models.FriendRequest, error) {
		req, err := s.friends.CreatePendingRequest(ctx, fromUserID, toUserID, s.clock.Now())
		switch {
		case errors.Is(err, repositories.ErrDuplicateRequest):
			return nil, apperrors.New(apperrors.CodeDuplicateRequest, "pending friend request already exists")
		case errors.Is(err, repositories.ErrAlreadyFriends):
			return nil, apperrors.New(apperrors.CodeFriendshipExists, "users are already friends")
		case err != nil:
			return nil, storeError(err, "friend request not found")
		}
		return req, nil
	})
}

// AcceptRequest accepts a pending request addressed to actingUserID and
// creates the friendship in the same unit of work.
func (s *FriendService) AcceptRequest(ctx context.Context, requestID, actingUserID int64) (err error) {
	ctx, span := tracer.Start(ctx, "FriendService.AcceptRequest", trace.WithAttributes(attribute.Int64("friend_request.id", requestID)))
	defer func() { endSpan(span, err) }()

	return s.decide(ctx, requestID, actingUserID, models.FriendRequestAccepted, s.friends.AcceptRequest)
}

// RejectRequest rejects a pending request addressed to actingUserID.
func (s *FriendService) RejectRequest(ctx context.Context, requestID, actingUserID int64) (err error) {
	ctx, span := tracer.Start(ctx, "FriendService.RejectRequest", trace.WithAttributes(attribute.Int64("friend_request.id", requestID)))
	defer func() { endSpan(span, err) }()

	return s.decide(ctx, requestID, actingUserID, models.FriendRequestRejected, s.friends.RejectRequest)
}

func (s *FriendService) decide(ctx context.Context, requestID, actingUserID int64, target models.FriendRequestStatus, apply func(context.Context, int64, time.Time) error) error {
	_, err := retryOnConflict(ctx, s.retry, "friend."+string(target), func() (struct{}, error) {
		req, err := s.friends.GetRequest(ctx, requestID)
		if err != nil {
			return struct{}{}, storeError(err, "friend request not found")
		}
		if req.ToUserID != actingUserID {
			return struct{}{}, apperrors.New(apperrors.CodeNotRequestReceiver, "only the receiver can decide on a friend request")
		}
		if req.Status != models.FriendRequestPending {
			return struct{}{}, apperrors.WithMetadata(apperrors.CodeIllegalTransition, "friend request is already "+string(req.Status), map[string]string{
				"request_id": strconv.FormatInt(req.ID, 10),
				"from":       string(req.Status),
				"to":         string(target),
			})
		}
		return struct{}{}, storeError(apply(ctx, requestID, s.clock.Now()), "friend request not found")
	})
	return err
}

func (s *FriendService) IncomingRequests(ctx context.Context, userID int64) ([]models.FriendRequest, error) {
	reqs, err := s.friends.GetIncomingRequests(ctx, userID)
	if err != nil {
		return nil, storeError(err, "user not found")
	}
	return reqs, nil
}

func (s *FriendService) Friends(ctx context.Context, userID int64) ([]int64, error) {
	ids, err := s.friends.ListFriends(ctx, userID)
	if err != nil {
		return nil, storeError(err, "user not found")
	}
	return ids, nil
}

func (s *FriendService) AreFriends(ctx context.Context, userID, otherID int64) (bool, error) {
	ok, err := s.friends.AreFriends(ctx, userID, otherID)
	if err != nil {
		return false, storeError(err, "user not found")
	}
	return ok, nil
}

// RemoveFriend deletes the friendship; a new request between the pair is allowed afterwards.
func (s *FriendService) RemoveFriend(ctx context.Context, userID, friendID int64) error {
	removed, err := s.friends.DeleteFriendship(ctx, userID, friendID, s.clock.Now())
	if err != nil {
		return storeError(err, "friendship not found")
	}
	if !removed {
		return apperrors.New(apperrors.CodeNotFound, "friendship not found")
	}
	return nil
}
