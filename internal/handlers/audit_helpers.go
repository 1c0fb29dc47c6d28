package handlers

import (
	"context"
	nethttp "net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"social-service/internal/apperrors"
	"social-service/internal/metrics"
	"social-service/internal/middleware"
	"social-service/internal/models"
	"social-service/internal/telemetry"
)

func requestIDFromHeader(c *gin.Context) string {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	return requestID
}

func userIDFromContext(c *gin.Context) *int64 {
	if actor, ok := middleware.ActorFromContext(c); ok {
		return &actor.UserID
	}
	return nil
}

// actorFromContext answers 401 when the request carries no caller.
func actorFromContext(c *gin.Context) (models.Actor, bool) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		c.JSON(nethttp.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return models.Actor{}, false
	}
	return actor, true
}

func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		badParam(c, name)
		return 0, false
	}
	return id, true
}

// auditor emits audit envelopes for one request.
type auditor struct {
	emitter   *telemetry.AuditEmitter
	requestID string
	userID    *int64
}

func newAuditor(c *gin.Context, emitter *telemetry.AuditEmitter) auditor {
	return auditor{emitter: emitter, requestID: requestIDFromHeader(c), userID: userIDFromContext(c)}
}

func (a auditor) info(ctx context.Context, text string) {
	a.emitter.EmitAudit(ctx, telemetry.LevelInfo, text, "", a.requestID, a.userID)
}

func (a auditor) failure(ctx context.Context, text string, err error) {
	a.emitter.EmitAudit(ctx, telemetry.LevelError, text, string(apperrors.CodeOf(err)), a.requestID, a.userID)
}

func outcome(err error) string {
	if err != nil {
		return metrics.StatusFailed
	}
	return metrics.StatusSuccess
}
