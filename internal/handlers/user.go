package handlers

import (
	nethttp "net/http"

	"github.com/gin-gonic/gin"

	"social-service/internal/services"
)

type UserHandler struct {
	users   services.UserDirectory
	friends *services.FriendService
}

func NewUserHandler(users services.UserDirectory, friends *services.FriendService) *UserHandler {
	return &UserHandler{users: users, friends: friends}
}

// GetMe summarises the caller's social graph: friends and pending incoming requests.
func (h *UserHandler) GetMe(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	resp := gin.H{"id": actor.UserID, "role": actor.Role}
	if h.users != nil {
		user, err := h.users.GetUserByID(ctx, actor.UserID)
		if err != nil {
			c.JSON(nethttp.StatusBadGateway, gin.H{"error": "failed to fetch user"})
			return
		}
		resp["username"] = user.Username
	}

	friendIDs, err := h.friends.Friends(ctx, actor.UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	incoming, err := h.friends.IncomingRequests(ctx, actor.UserID)
	if err != nil {
		writeError(c, err)
		return
	}

	friendUsers, err := describeUsers(ctx, h.users, friendIDs)
	if err != nil {
		c.JSON(nethttp.StatusBadGateway, gin.H{"error": "failed to fetch friend info"})
		return
	}
	incomingWithUsers, err := describeRequests(ctx, h.users, incoming)
	if err != nil {
		c.JSON(nethttp.StatusBadGateway, gin.H{"error": "failed to fetch requester info"})
		return
	}

	resp["friends"] = friendUsers
	resp["incoming_requests"] = incomingWithUsers
	c.JSON(nethttp.StatusOK, resp)
}
