package handlers

import (
	nethttp "net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"social-service/internal/apperrors"
	"social-service/internal/metrics"
	"social-service/internal/services"
	"social-service/internal/telemetry"
)

type PostHandler struct {
	posts *services.PostService
	join  *services.JoinCoordinator
	audit *telemetry.AuditEmitter
}

func NewPostHandler(posts *services.PostService, join *services.JoinCoordinator, audit *telemetry.AuditEmitter) *PostHandler {
	return &PostHandler{posts: posts, join: join, audit: audit}
}

func (h *PostHandler) Get(c *gin.Context) {
	postID, ok := idParam(c, "id")
	if !ok {
		return
	}
	post, err := h.posts.Get(c.Request.Context(), postID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, post)
}

func (h *PostHandler) Participants(c *gin.Context) {
	postID, ok := idParam(c, "id")
	if !ok {
		return
	}
	participants, err := h.posts.Participants(c.Request.Context(), postID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, participants)
}

// Join takes a seat on an open-reservation post for the caller.
func (h *PostHandler) Join(c *gin.Context) {
	postID, ok := idParam(c, "id")
	if !ok {
		metrics.IncPostJoin(metrics.StatusFailed, string(apperrors.CodeValidationFailed))
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	audit := newAuditor(c, h.audit)
	ctx := c.Request.Context()
	view, err := h.join.JoinAsUser(ctx, postID, actor.UserID)
	metrics.IncPostJoin(outcome(err), string(apperrors.CodeOf(err)))
	if err != nil {
		audit.failure(ctx, "failed to join post "+strconv.FormatInt(postID, 10), err)
		writeError(c, err)
		return
	}

	audit.info(ctx, "Joined post "+strconv.FormatInt(postID, 10))
	c.JSON(nethttp.StatusOK, view)
}
