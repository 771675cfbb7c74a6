package booking

import (
	"errors"
	"net/http"
	"strconv"

	"courtgrid/internal/api"
	"courtgrid/internal/backend"
	"courtgrid/internal/reservation"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Create godoc
// @Summary      Create a booking
// @Description  Submits one booking draft. The reservation appears in the local view immediately; the authoritative reload happens in the background.
// @Tags         bookings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        draft  body      Draft  true  "Booking draft"
// @Success      201    {object}  reservation.Reservation
// @Failure      400    {object}  api.ErrorResponse
// @Failure      409    {object}  api.ErrorResponse
// @Failure      422    {object}  api.ErrorResponse
// @Failure      502    {object}  api.ErrorResponse
// @Router       /bookings [post]
func (h *Handler) Create(c *gin.Context) {
	var draft Draft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request body"})
		return
	}
	if details := api.ValidateStruct(draft); details != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid booking draft", Details: details})
		return
	}

	created, err := h.service.Submit(c.Request.Context(), draft)
	if err != nil {
		respondSubmitError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// List godoc
// @Summary      List reservations
// @Description  Returns the optimistic local view, ordered by date and time. Pass reload=true to force an authoritative refresh first.
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        from         query  string  false  "ISO date lower bound"
// @Param        to           query  string  false  "ISO date upper bound"
// @Param        resource_id  query  int     false  "Resource filter"
// @Param        reload       query  bool    false  "Force authoritative reload"
// @Success      200  {object}  map[string]interface{}
// @Failure      502  {object}  api.ErrorResponse
// @Router       /bookings [get]
func (h *Handler) List(c *gin.Context) {
	filter := reservation.Filter{
		DateFrom: c.Query("from"),
		DateTo:   c.Query("to"),
	}
	if raw := c.Query("resource_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid resource_id"})
			return
		}
		filter.ResourceID = id
	}

	reload := c.Query("reload") == "true"
	bookings, err := h.service.List(c.Request.Context(), filter, reload)
	if err != nil {
		c.JSON(http.StatusBadGateway, api.ErrorResponse{Error: "failed to reload bookings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// StatusAction returns a handler applying one status action to a booking.
//
// @Summary      Apply a status action
// @Description  Confirms, cancels, starts, completes or marks a booking as a no-show.
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        bookingID  path      int  true  "Booking ID"
// @Success      200        {object}  reservation.Reservation
// @Failure      400        {object}  api.ErrorResponse
// @Failure      404        {object}  api.ErrorResponse
// @Failure      409        {object}  api.ErrorResponse
// @Router       /admin/bookings/{bookingID}/{action} [post]
func (h *Handler) StatusAction(action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("bookingID"))
		if err != nil {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid booking ID"})
			return
		}

		updated, err := h.service.ApplyStatusAction(c.Request.Context(), id, action)
		if err != nil {
			respondActionError(c, err)
			return
		}

		c.JSON(http.StatusOK, updated)
	}
}

func respondSubmitError(c *gin.Context, err error) {
	var validationErr *backend.ValidationError
	var conflictErr *backend.ConflictError

	switch {
	case errors.Is(err, ErrInvalidDate),
		errors.Is(err, ErrInvalidStartTime),
		errors.Is(err, ErrInvalidDuration),
		errors.Is(err, ErrDepositExceedsPrice),
		errors.Is(err, ErrUnknownResource):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
	case errors.As(err, &validationErr):
		c.JSON(http.StatusUnprocessableEntity, api.ErrorResponse{
			Error:   validationErr.Message,
			Details: validationErr.Details,
		})
	case errors.As(err, &conflictErr):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: conflictErr.Message})
	default:
		c.JSON(http.StatusBadGateway, api.ErrorResponse{Error: "booking submission failed"})
	}
}

func respondActionError(c *gin.Context, err error) {
	var conflictErr *backend.ConflictError

	switch {
	case errors.Is(err, ErrUnknownAction):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, ErrAlreadyTerminal):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, backend.ErrNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "booking not found"})
	case errors.As(err, &conflictErr):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: conflictErr.Message})
	default:
		c.JSON(http.StatusBadGateway, api.ErrorResponse{Error: "status update failed"})
	}
}
