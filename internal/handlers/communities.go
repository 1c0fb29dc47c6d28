package handlers

import (
	nethttp "net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"social-service/internal/apperrors"
	"social-service/internal/models"
	"social-service/internal/services"
	"social-service/internal/telemetry"
)

type CommunityHandler struct {
	communities *services.CommunityService
	posts       *services.PostService
	audit       *telemetry.AuditEmitter
}

func NewCommunityHandler(communities *services.CommunityService, posts *services.PostService, audit *telemetry.AuditEmitter) *CommunityHandler {
	return &CommunityHandler{communities: communities, posts: posts, audit: audit}
}

type createCommunityBody struct {
	Name          string `json:"name" validate:"required,max=120"`
	Description   string `json:"description" validate:"max=2000"`
	IsPublic      *bool  `json:"is_public"`
	CommunityType string `json:"community_type" validate:"max=60"`
}

func (b createCommunityBody) Validate() error {
	fields := validateStruct(b)
	if b.Name != "" && strings.TrimSpace(b.Name) == "" {
		fields = append(fields, apperrors.FieldError{Field: "name", Message: "is required"})
	}
	return validationError(fields)
}

func (h *CommunityHandler) Create(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var body createCommunityBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badBody(c)
		return
	}
	if err := body.Validate(); err != nil {
		writeError(c, err)
		return
	}

	isPublic := true
	if body.IsPublic != nil {
		isPublic = *body.IsPublic
	}

	audit := newAuditor(c, h.audit)
	ctx := c.Request.Context()
	community, admin, err := h.communities.Create(ctx, actor.UserID, services.CommunityInput{
		Name:          body.Name,
		Description:   body.Description,
		IsPublic:      isPublic,
		CommunityType: body.CommunityType,
	})
	if err != nil {
		audit.failure(ctx, "failed to create community '"+body.Name+"'", err)
		writeError(c, err)
		return
	}

	audit.info(ctx, "Community '"+community.Name+"' created")
	c.JSON(nethttp.StatusCreated, gin.H{"community": community, "membership": admin})
}

func (h *CommunityHandler) Join(c *gin.Context) {
	communityID, ok := idParam(c, "id")
	if !ok {
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	audit := newAuditor(c, h.audit)
	ctx := c.Request.Context()
	member, err := h.communities.Join(ctx, communityID, actor.UserID)
	if err != nil {
		audit.failure(ctx, "failed to join community "+strconv.FormatInt(communityID, 10), err)
		writeError(c, err)
		return
	}

	audit.info(ctx, "Joined community "+strconv.FormatInt(communityID, 10))
	c.JSON(nethttp.StatusCreated, member)
}

type createPostBody struct {
	Kind            string `json:"kind" validate:"required,oneof=standard open_reservation"`
	Title           string `json:"title" validate:"required,max=200"`
	Description     string `json:"description" validate:"max=5000"`
	ReservationID   int64  `json:"reservation_id" validate:"required_if=Kind open_reservation,gte=0"`
	MaxParticipants int    `json:"max_participants" validate:"required_if=Kind open_reservation,gte=0"`
}

func (b createPostBody) Validate() error {
	return validationError(validateStruct(b))
}

func (h *CommunityHandler) CreatePost(c *gin.Context) {
	communityID, ok := idParam(c, "id")
	if !ok {
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var body createPostBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badBody(c)
		return
	}
	if err := body.Validate(); err != nil {
		writeError(c, err)
		return
	}

	audit := newAuditor(c, h.audit)
	ctx := c.Request.Context()
	post, err := h.posts.Create(ctx, communityID, actor.UserID, services.PostInput{
		Kind:            models.PostKind(body.Kind),
		Title:           body.Title,
		Description:     body.Description,
		ReservationID:   body.ReservationID,
		MaxParticipants: body.MaxParticipants,
	})
	if err != nil {
		audit.failure(ctx, "failed to publish post in community "+strconv.FormatInt(communityID, 10), err)
		writeError(c, err)
		return
	}

	audit.info(ctx, "Post "+strconv.FormatInt(post.ID, 10)+" published")
	c.JSON(nethttp.StatusCreated, post)
}
