package services

import (
	"context"
	"errors"
	"strings"

	"social-service/internal/apperrors"
	"social-service/internal/models"
	"social-service/internal/repositories"
)

type CommunityService struct {
	communities repositories.CommunityRepository
	clock       Clock
}

func NewCommunityService(communities repositories.CommunityRepository, clock Clock) *CommunityService {
	if clock == nil {
		clock = SystemClock{}
	}
	return &CommunityService{communities: communities, clock: clock}
}

type CommunityInput struct {
	Name          string
	Description   string
	IsPublic      bool
	CommunityType string
}

// Create stores the community and makes creatorUserID its admin.
func (s *CommunityService) Create(ctx context.Context, creatorUserID int64, in CommunityInput) (*models.Community, *models.Member, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, nil, apperrors.Validation([]apperrors.FieldError{{Field: "name", Message: "is required"}})
	}

	community, admin, err := s.communities.CreateCommunity(ctx, models.Community{
		Name:          name,
		Description:   in.Description,
		IsPublic:      in.IsPublic,
		CommunityType: in.CommunityType,
		CreatedAt:     s.clock.Now(),
	}, creatorUserID)
	if errors.Is(err, repositories.ErrAlreadyExists) {
		return nil, nil, apperrors.WithMetadata(apperrors.CodeAlreadyExists, "community name already taken", map[string]string{"name": name})
	}
	if err != nil {
		return nil, nil, storeError(err, "community not found")
	}
	return community, admin, nil
}

func (s *CommunityService) Get(ctx context.Context, id int64) (*models.Community, error) {
	community, err := s.communities.GetCommunity(ctx, id)
	if err != nil {
		return nil, storeError(err, "community not found")
	}
	return community, nil
}

// Join adds userID to the community as a regular member.
func (s *CommunityService) Join(ctx context.Context, communityID, userID int64) (*models.Member, error) {
	if _, err := s.Get(ctx, communityID); err != nil {
		return nil, err
	}
	member, err := s.communities.AddMember(ctx, communityID, userID, models.MemberRoleRegular, s.clock.Now())
	if errors.Is(err, repositories.ErrAlreadyMember) {
		return nil, apperrors.New(apperrors.CodeAlreadyJoined, "already a member of this community")
	}
	if err != nil {
		return nil, storeError(err, "community not found")
	}
	return member, nil
}
