package recurring

import (
	"errors"
	"net/http"

	"courtgrid/internal/api"
	"courtgrid/internal/backend"
	"courtgrid/internal/booking"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	reconciler *Reconciler
	bookings   *booking.Service
}

func NewHandler(reconciler *Reconciler, bookings *booking.Service) *Handler {
	return &Handler{reconciler: reconciler, bookings: bookings}
}

// Check godoc
// @Summary      Check recurring availability
// @Description  Expands the recurrence rule, checks every occurrence against the backend and opens a resolution session.
// @Tags         recurring
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      CheckRequest  true  "Series to check"
// @Success      201      {object}  SessionView
// @Failure      400      {object}  api.ErrorResponse
// @Failure      502      {object}  api.ErrorResponse
// @Router       /recurring/check [post]
func (h *Handler) Check(c *gin.Context) {
	var req CheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request body"})
		return
	}
	if details := api.ValidateStruct(req); details != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid series request", Details: details})
		return
	}

	session, err := h.reconciler.Check(c.Request.Context(), req)
	if err != nil {
		respondCheckError(c, err)
		return
	}

	c.JSON(http.StatusCreated, session.Snapshot())
}

// Get godoc
// @Summary      Read a recurring session
// @Tags         recurring
// @Security     BearerAuth
// @Produce      json
// @Param        sessionID  path      string  true  "Session ID"
// @Success      200        {object}  SessionView
// @Failure      404        {object}  api.ErrorResponse
// @Router       /recurring/{sessionID} [get]
func (h *Handler) Get(c *gin.Context) {
	session, err := h.reconciler.Get(c.Param("sessionID"))
	if err != nil {
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, session.Snapshot())
}

type applyAlternativeRequest struct {
	Date        string              `json:"date" binding:"required"`
	Alternative backend.Alternative `json:"alternative" binding:"required"`
}

// ApplyAlternative godoc
// @Summary      Resolve one conflicting occurrence
// @Tags         recurring
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        sessionID  path      string                   true  "Session ID"
// @Param        request    body      applyAlternativeRequest  true  "Chosen alternative"
// @Success      200        {object}  SessionView
// @Failure      400        {object}  api.ErrorResponse
// @Failure      404        {object}  api.ErrorResponse
// @Failure      409        {object}  api.ErrorResponse
// @Router       /recurring/{sessionID}/alternative [post]
func (h *Handler) ApplyAlternative(c *gin.Context) {
	var req applyAlternativeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request body"})
		return
	}

	session, err := h.reconciler.ApplyAlternative(c.Param("sessionID"), req.Date, req.Alternative)
	if err != nil {
		switch {
		case errors.Is(err, ErrSessionNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: err.Error()})
		case errors.Is(err, ErrAlreadySubmitted), errors.Is(err, ErrSubmitInProgress):
			c.JSON(http.StatusConflict, api.ErrorResponse{Error: err.Error()})
		default:
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, session.Snapshot())
}

type submitRequest struct {
	ClientName    string `json:"clientName" binding:"required"`
	ClientEmail   string `json:"clientEmail"`
	ClientPhone   string `json:"clientPhone"`
	Notes         string `json:"notes"`
	PaymentMethod string `json:"paymentMethod"`
	DepositCents  int64  `json:"depositCents"`
}

// Submit godoc
// @Summary      Submit a resolved recurring series
// @Description  Creates every occurrence; partial success is reported with counts, already-created bookings are kept.
// @Tags         recurring
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        sessionID  path      string         true  "Session ID"
// @Param        request    body      submitRequest  true  "Client details"
// @Success      200        {object}  SessionView
// @Failure      400        {object}  api.ErrorResponse
// @Failure      404        {object}  api.ErrorResponse
// @Failure      409        {object}  api.ErrorResponse
// @Failure      502        {object}  api.ErrorResponse
// @Router       /recurring/{sessionID}/submit [post]
func (h *Handler) Submit(c *gin.Context) {
	session, err := h.reconciler.Get(c.Param("sessionID"))
	if err != nil {
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: err.Error()})
		return
	}

	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request body"})
		return
	}

	if err := session.BeginSubmit(); err != nil {
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: err.Error()})
		return
	}

	anchor := booking.Draft{
		ResourceID:    session.ResourceID,
		Date:          session.StartDate,
		StartTime:     session.StartTime,
		Duration:      session.Duration,
		ClientName:    req.ClientName,
		ClientEmail:   req.ClientEmail,
		ClientPhone:   req.ClientPhone,
		Notes:         req.Notes,
		PaymentMethod: req.PaymentMethod,
		DepositCents:  req.DepositCents,
	}

	result, err := h.bookings.SubmitSeries(c.Request.Context(), anchor, session.Plan())
	if err != nil {
		session.AbortSubmit()
		c.JSON(http.StatusBadGateway, api.ErrorResponse{Error: "recurring submission failed"})
		return
	}

	session.Complete(result)
	c.JSON(http.StatusOK, session.Snapshot())
}

// Abandon godoc
// @Summary      Abandon a recurring session
// @Tags         recurring
// @Security     BearerAuth
// @Produce      json
// @Param        sessionID  path      string  true  "Session ID"
// @Success      200  {object}  api.MessageResponse
// @Router       /recurring/{sessionID} [delete]
func (h *Handler) Abandon(c *gin.Context) {
	h.reconciler.Abandon(c.Param("sessionID"))
	c.JSON(http.StatusOK, api.MessageResponse{Message: "session abandoned"})
}

func respondCheckError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidRule),
		errors.Is(err, ErrInvalidCount),
		errors.Is(err, ErrInvalidStartDate),
		errors.Is(err, ErrInvalidStartTime),
		errors.Is(err, ErrInvalidDuration):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
	default:
		c.JSON(http.StatusBadGateway, api.ErrorResponse{Error: "availability check failed"})
	}
}
