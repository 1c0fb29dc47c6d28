package handlers

import (
	nethttp "net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"social-service/internal/apperrors"
	"social-service/internal/metrics"
	"social-service/internal/models"
	"social-service/internal/services"
	"social-service/internal/telemetry"
)

type ReservationHandler struct {
	lifecycle *services.ReservationLifecycle
	audit     *telemetry.AuditEmitter
}

func NewReservationHandler(lifecycle *services.ReservationLifecycle, audit *telemetry.AuditEmitter) *ReservationHandler {
	return &ReservationHandler{lifecycle: lifecycle, audit: audit}
}

type createReservationBody struct {
	RestaurantID int64     `json:"restaurant_id" validate:"required,gt=0"`
	TableRef     string    `json:"table_ref" validate:"max=40"`
	PartySize    int       `json:"party_size" validate:"required,gt=0"`
	ScheduledAt  time.Time `json:"scheduled_at" validate:"required"`
}

func (b createReservationBody) Validate() error {
	return validationError(validateStruct(b))
}

func (h *ReservationHandler) Create(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var body createReservationBody
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
	res, err := h.lifecycle.Create(ctx, actor, services.ReservationInput{
		RestaurantID: body.RestaurantID,
		TableRef:     body.TableRef,
		PartySize:    body.PartySize,
		ScheduledAt:  body.ScheduledAt,
	})
	if err != nil {
		audit.failure(ctx, "failed to create reservation", err)
		writeError(c, err)
		return
	}

	audit.info(ctx, "Reservation "+strconv.FormatInt(res.ID, 10)+" requested")
	c.JSON(nethttp.StatusCreated, res)
}

// Get shows a reservation to restaurant staff and to the customer who booked it.
func (h *ReservationHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	res, err := h.lifecycle.Get(c.Request.Context(), id)
	if err == nil && !actor.Role.IsRestaurantSide() && res.CustomerID != actor.UserID {
		err = apperrors.New(apperrors.CodeNotFound, "reservation not found")
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, res)
}

type changeStatusBody struct {
	Status string `json:"status" validate:"required,oneof=requested confirmed completed cancelled"`
}

func (b changeStatusBody) Validate() error {
	return validationError(validateStruct(b))
}

func (h *ReservationHandler) ChangeStatus(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var body changeStatusBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badBody(c)
		return
	}
	if err := body.Validate(); err != nil {
		writeError(c, err)
		return
	}
	target := models.ReservationStatus(body.Status)

	audit := newAuditor(c, h.audit)
	ctx := c.Request.Context()
	res, err := h.lifecycle.ChangeStatus(ctx, id, target, actor)
	metrics.IncReservationStatusChange(outcome(err), string(target))
	if err != nil {
		audit.failure(ctx, "reservation "+strconv.FormatInt(id, 10)+" could not move to "+string(target), err)
		writeError(c, err)
		return
	}

	audit.info(ctx, "Reservation "+strconv.FormatInt(id, 10)+" moved to "+string(target))
	c.JSON(nethttp.StatusOK, res)
}
