package services

import (
	"context"
	"strconv"
	"strings"

	"social-service/internal/apperrors"
	"social-service/internal/models"
	"social-service/internal/repositories"
)

type PostService struct {
	posts        repositories.PostRepository
	reservations repositories.ReservationRepository
	communities  repositories.CommunityRepository
	cache        SlotCache
	clock        Clock
}

func NewPostService(posts repositories.PostRepository, reservations repositories.ReservationRepository, communities repositories.CommunityRepository, cache SlotCache, clock Clock) *PostService {
	if cache == nil {
		cache = NewNoopSlotCache()
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &PostService{posts: posts, reservations: reservations, communities: communities, cache: cache, clock: clock}
}

type PostInput struct {
	Kind            models.PostKind
	Title           string
	Description     string
	ReservationID   int64
	MaxParticipants int
}

// Create publishes a post in communityID on behalf of authorUserID, who must
// be a member. An open-reservation post shares seats on one of the author's
// own upcoming reservations.
func (s *PostService) Create(ctx context.Context, communityID, authorUserID int64, in PostInput) (*PostView, error) {
	if fields := validatePostInput(in); len(fields) > 0 {
		return nil, apperrors.Validation(fields)
	}

	author, err := s.communities.GetMemberByUser(ctx, communityID, authorUserID)
	if err != nil {
		return nil, storeError(err, "not a member of this community")
	}

	now := s.clock.Now()
	post := models.Post{
		CommunityID:    communityID,
		AuthorMemberID: author.ID,
		Kind:           in.Kind,
		Title:          strings.TrimSpace(in.Title),
		Description:    in.Description,
		PublishedAt:    now,
	}

	if in.Kind == models.PostKindOpenReservation {
		reservation, err := s.reservations.Get(ctx, in.ReservationID)
		if err != nil {
			return nil, storeError(err, "reservation not found")
		}
		if reservation.CustomerID != authorUserID {
			return nil, apperrors.Validation([]apperrors.FieldError{{Field: "reservation_id", Message: "must reference your own reservation"}})
		}
		if reservation.Status.IsTerminal() || reservation.ScheduledAt.Before(now) {
			return nil, apperrors.WithMetadata(apperrors.CodeReservationExpired, "reservation is no longer open", map[string]string{
				"reservation_id": strconv.FormatInt(reservation.ID, 10),
				"status":         string(reservation.Status),
			})
		}
		post.OpenReservation = &models.OpenReservationData{
			ReservationID:   reservation.ID,
			MaxParticipants: in.MaxParticipants,
		}
	}

	created, err := s.posts.CreatePost(ctx, post)
	if err != nil {
		return nil, storeError(err, "community not found")
	}
	return newPostView(created), nil
}

func validatePostInput(in PostInput) []apperrors.FieldError {
	var fields []apperrors.FieldError
	if strings.TrimSpace(in.Title) == "" {
		fields = append(fields, apperrors.FieldError{Field: "title", Message: "is required"})
	}
	switch in.Kind {
	case models.PostKindStandard:
	case models.PostKindOpenReservation:
		if in.ReservationID <= 0 {
			fields = append(fields, apperrors.FieldError{Field: "reservation_id", Message: "is required"})
		}
		if in.MaxParticipants <= 0 {
			fields = append(fields, apperrors.FieldError{Field: "max_participants", Message: "must be greater than 0"})
		}
	default:
		fields = append(fields, apperrors.FieldError{Field: "kind", Message: "must be standard or open_reservation"})
	}
	return fields
}

func (s *PostService) Get(ctx context.Context, postID int64) (*PostView, error) {
	post, err := s.posts.GetPost(ctx, postID)
	if err != nil {
		return nil, storeError(err, "post not found")
	}
	return newPostView(post), nil
}

// Slots returns the slot summary of an open-reservation post, from the cache
// when it holds one.
func (s *PostService) Slots(ctx context.Context, postID int64) (*JoinedPostView, error) {
	if cached, ok := s.cache.Get(ctx, postID); ok {
		return cached, nil
	}
	post, err := s.posts.GetPost(ctx, postID)
	if err != nil {
		return nil, storeError(err, "post not found")
	}
	slots, ok := post.SlotCapability()
	if !ok {
		return nil, apperrors.New(apperrors.CodeNotFound, "post does not take participants")
	}
	view := newJoinedPostView(postID, slots)
	s.cache.Set(ctx, view)
	return view, nil
}

func (s *PostService) Participants(ctx context.Context, postID int64) ([]models.PostParticipant, error) {
	if _, err := s.posts.GetPost(ctx, postID); err != nil {
		return nil, storeError(err, "post not found")
	}
	participants, err := s.posts.ListParticipants(ctx, postID)
	if err != nil {
		return nil, storeError(err, "post not found")
	}
	return participants, nil
}

func newPostView(post *models.Post) *PostView {
	view := &PostView{Post: post}
	if slots, ok := post.SlotCapability(); ok {
		view.Slots = newJoinedPostView(post.ID, slots)
	}
	return view
}
