package handlers

import (
	"context"
	nethttp "net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"social-service/internal/metrics"
	"social-service/internal/models"
	"social-service/internal/services"
	"social-service/internal/telemetry"
)

type FriendHandler struct {
	friends *services.FriendService
	users   services.UserDirectory
	audit   *telemetry.AuditEmitter
}

// NewFriendHandler builds the handler. users may be nil; listings then carry ids only.
func NewFriendHandler(friends *services.FriendService, users services.UserDirectory, audit *telemetry.AuditEmitter) *FriendHandler {
	return &FriendHandler{friends: friends, users: users, audit: audit}
}

type sendRequestBody struct {
	ToUserID int64 `json:"to_user_id" validate:"required,gt=0"`
}

func (b sendRequestBody) Validate() error {
	return validationError(validateStruct(b))
}

func (h *FriendHandler) SendRequest(c *gin.Context) {
	audit := newAuditor(c, h.audit)
	ctx := c.Request.Context()

	var body sendRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		audit.failure(ctx, "invalid request payload", nil)
		metrics.IncFriendRequest(metrics.StatusFailed)
		badBody(c)
		return
	}
	if err := body.Validate(); err != nil {
		audit.failure(ctx, "invalid request payload", err)
		metrics.IncFriendRequest(metrics.StatusFailed)
		writeError(c, err)
		return
	}

	actor, ok := actorFromContext(c)
	if !ok {
		metrics.IncFriendRequest(metrics.StatusFailed)
		return
	}

	req, err := h.friends.SendRequest(ctx, actor.UserID, body.ToUserID)
	metrics.IncFriendRequest(outcome(err))
	if err != nil {
		audit.failure(ctx, "friend request to '"+strconv.FormatInt(body.ToUserID, 10)+"' failed", err)
		writeError(c, err)
		return
	}

	audit.info(ctx, "Friend request sent to '"+strconv.FormatInt(body.ToUserID, 10)+"'")
	c.JSON(nethttp.StatusCreated, req)
}

func (h *FriendHandler) ListIncoming(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	requests, err := h.friends.IncomingRequests(c.Request.Context(), actor.UserID)
	if err != nil {
		writeError(c, err)
		return
	}

	resp, err := describeRequests(c.Request.Context(), h.users, requests)
	if err != nil {
		c.JSON(nethttp.StatusBadGateway, gin.H{"error": "failed to fetch requester info"})
		return
	}
	c.JSON(nethttp.StatusOK, resp)
}

func describeRequests(ctx context.Context, users services.UserDirectory, requests []models.FriendRequest) ([]gin.H, error) {
	resp := make([]gin.H, 0, len(requests))
	for _, req := range requests {
		entry := gin.H{
			"id":           req.ID,
			"from_user_id": req.FromUserID,
			"status":       req.Status,
			"created_at":   req.CreatedAt,
		}
		if users != nil {
			sender, err := users.GetUserByID(ctx, req.FromUserID)
			if err != nil {
				return nil, err
			}
			entry["from_username"] = sender.Username
		}
		resp = append(resp, entry)
	}
	return resp, nil
}

func (h *FriendHandler) AcceptRequest(c *gin.Context) {
	h.handleDecision(c, h.friends.AcceptRequest, models.FriendRequestAccepted, metrics.IncFriendAccept)
}

func (h *FriendHandler) RejectRequest(c *gin.Context) {
	h.handleDecision(c, h.friends.RejectRequest, models.FriendRequestRejected, metrics.IncFriendReject)
}

func (h *FriendHandler) handleDecision(c *gin.Context, action func(ctx context.Context, requestID, userID int64) error, status models.FriendRequestStatus, inc func(string)) {
	reqID, ok := idParam(c, "id")
	if !ok {
		inc(metrics.StatusFailed)
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		inc(metrics.StatusFailed)
		return
	}

	audit := newAuditor(c, h.audit)
	ctx := c.Request.Context()
	err := action(ctx, reqID, actor.UserID)
	inc(outcome(err))
	if err != nil {
		audit.failure(ctx, "friend request "+strconv.FormatInt(reqID, 10)+" could not be "+string(status), err)
		writeError(c, err)
		return
	}

	audit.info(ctx, "Friend request "+string(status))
	c.JSON(nethttp.StatusOK, gin.H{"status": status})
}

func (h *FriendHandler) ListFriends(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	ids, err := h.friends.Friends(c.Request.Context(), actor.UserID)
	if err != nil {
		writeError(c, err)
		return
	}

	resp, err := describeUsers(c.Request.Context(), h.users, ids)
	if err != nil {
		c.JSON(nethttp.StatusBadGateway, gin.H{"error": "failed to fetch friend info"})
		return
	}
	c.JSON(nethttp.StatusOK, resp)
}

func describeUsers(ctx context.Context, users services.UserDirectory, ids []int64) ([]*services.UserDTO, error) {
	resp := make([]*services.UserDTO, 0, len(ids))
	for _, id := range ids {
		if users == nil {
			resp = append(resp, &services.UserDTO{ID: id})
			continue
		}
		user, err := users.GetUserByID(ctx, id)
		if err != nil {
			return nil, err
		}
		resp = append(resp, user)
	}
	return resp, nil
}

func (h *FriendHandler) DeleteFriend(c *gin.Context) {
	friendID, ok := idParam(c, "friend_id")
	if !ok {
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	audit := newAuditor(c, h.audit)
	ctx := c.Request.Context()
	if err := h.friends.RemoveFriend(ctx, actor.UserID, friendID); err != nil {
		audit.failure(ctx, "failed to remove friend '"+strconv.FormatInt(friendID, 10)+"'", err)
		writeError(c, err)
		return
	}

	audit.info(ctx, "Friend '"+strconv.FormatInt(friendID, 10)+"' removed")
	c.Status(nethttp.StatusNoContent)
}
