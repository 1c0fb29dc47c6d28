package services

import (
	"context"
	"errors"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"social-service/internal/apperrors"
	"social-service/internal/models"
	"social-service/internal/repositories"
)

// JoinCoordinator admits members into open-reservation posts without ever
// letting the participant count pass the maximum.
type JoinCoordinator struct {
	posts        repositories.PostRepository
	reservations repositories.ReservationRepository
	communities  repositories.CommunityRepository
	cache        SlotCache
	clock        Clock
	retry        RetryPolicy
}

func NewJoinCoordinator(posts repositories.PostRepository, reservations repositories.ReservationRepository, communities repositories.CommunityRepository, cache SlotCache, clock Clock, retry RetryPolicy) *JoinCoordinator {
	if cache == nil {
		cache = NewNoopSlotCache()
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &JoinCoordinator{
		posts:        posts,
		reservations: reservations,
		communities:  communities,
		cache:        cache,
		clock:        clock,
		retry:        retry,
	}
}

// Join adds memberID to the post's participants. Checks run in order: post and
// membership, reservation still upcoming, free slot, not already in. The seat
// itself is taken by a conditional increment in the store, so concurrent
// callers only fail once the post is actually full. Transient store conflicts
// re-run the whole sequence.
func (j *JoinCoordinator) Join(ctx context.Context, postID, memberID int64) (view *JoinedPostView, err error) {
	ctx, span := tracer.Start(ctx, "JoinCoordinator.Join", trace.WithAttributes(
		attribute.Int64("post.id", postID),
		attribute.Int64("member.id", memberID),
	))
	defer func() { endSpan(span, err) }()

	view, err = retryOnConflict(ctx, j.retry, "post.join", func() (*JoinedPostView, error) {
		return j.attemptJoin(ctx, postID, memberID)
	})
	if err != nil {
		return nil, err
	}
	j.cache.Set(ctx, view)
	return view, nil
}

// JoinAsUser resolves userID's membership in the post's community and joins with it.
func (j *JoinCoordinator) JoinAsUser(ctx context.Context, postID, userID int64) (*JoinedPostView, error) {
	post, err := j.posts.GetPost(ctx, postID)
	if err != nil {
		return nil, storeError(err, "post not found")
	}
	member, err := j.communities.GetMemberByUser(ctx, post.CommunityID, userID)
	if err != nil {
		return nil, storeError(err, "not a member of the post's community")
	}
	return j.Join(ctx, postID, member.ID)
}

func (j *JoinCoordinator) attemptJoin(ctx context.Context, postID, memberID int64) (*JoinedPostView, error) {
	post, err := j.posts.GetPost(ctx, postID)
	if err != nil {
		return nil, storeError(err, "post not found")
	}
	slots, ok := post.SlotCapability()
	if !ok {
		return nil, apperrors.WithMetadata(apperrors.CodeNotFound, "post does not take participants", map[string]string{
			"post_id": strconv.FormatInt(postID, 10),
		})
	}

	member, err := j.communities.GetMember(ctx, memberID)
	if err != nil {
		return nil, storeError(err, "member not found")
	}
	if member.CommunityID != post.CommunityID {
		return nil, apperrors.New(apperrors.CodeNotFound, "member not found in the post's community")
	}

	reservation, err := j.reservations.Get(ctx, slots.ReservationID)
	if err != nil {
		return nil, storeError(err, "linked reservation not found")
	}
	now := j.clock.Now()
	if reservation.ScheduledAt.Before(now) || reservation.Status.IsTerminal() {
		return nil, apperrors.WithMetadata(apperrors.CodeReservationExpired, "reservation is no longer open", map[string]string{
			"reservation_id": strconv.FormatInt(reservation.ID, 10),
			"status":         string(reservation.Status),
		})
	}

	if !slots.HasAvailableSlots() {
		return nil, slotsFull(postID, slots)
	}

	if member.ID == post.AuthorMemberID {
		return nil, apperrors.New(apperrors.CodeAlreadyJoined, "the author already holds a seat")
	}
	joined, err := j.posts.IsParticipant(ctx, postID, memberID)
	if err != nil {
		return nil, storeError(err, "post not found")
	}
	if joined {
		return nil, apperrors.New(apperrors.CodeAlreadyJoined, "member already joined")
	}

	updated, err := j.posts.JoinOpenReservation(ctx, postID, memberID, now)
	switch {
	case errors.Is(err, repositories.ErrSlotsFull):
		return nil, slotsFull(postID, slots)
	case errors.Is(err, repositories.ErrAlreadyJoined):
		return nil, apperrors.New(apperrors.CodeAlreadyJoined, "member already joined")
	}
	if err != nil {
		return nil, storeError(err, "post not found")
	}
	return newJoinedPostView(postID, updated), nil
}

func slotsFull(postID int64, slots *models.OpenReservationData) error {
	return apperrors.WithMetadata(apperrors.CodeSlotsFull, "no free slots left", map[string]string{
		"post_id":          strconv.FormatInt(postID, 10),
		"max_participants": strconv.Itoa(slots.MaxParticipants),
	})
}
