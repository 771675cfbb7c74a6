package schedule

import (
	"context"
	"net/http"
	"strconv"

	"courtgrid/internal/api"
	"courtgrid/internal/resource"

	"github.com/gin-gonic/gin"
)

// ResourceLister is the backend collaborator used to enumerate bookable
// resources.
type ResourceLister interface {
	ListResources(ctx context.Context) ([]resource.Resource, error)
}

type Handler struct {
	resources ResourceLister
	builder   *Builder
	policy    *Policy
}

func NewHandler(resources ResourceLister, builder *Builder, policy *Policy) *Handler {
	return &Handler{resources: resources, builder: builder, policy: policy}
}

// ListResources godoc
// @Summary      List bookable resources
// @Description  Returns active courts and amenities, optionally filtered by sport.
// @Tags         availability
// @Security     BearerAuth
// @Produce      json
// @Param        sport  query  string  false  "Sport filter"
// @Success      200  {object}  map[string]interface{}
// @Failure      502  {object}  api.ErrorResponse
// @Router       /resources [get]
func (h *Handler) ListResources(c *gin.Context) {
	resources, err := h.resources.ListResources(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, api.ErrorResponse{Error: "failed to fetch resources"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"resources": resource.FilterActive(resources, c.Query("sport")),
	})
}

// GetGrid godoc
// @Summary      Unified availability grid
// @Description  Builds the half-hour slot grid for a date and duration, merging per-resource availability.
// @Tags         availability
// @Security     BearerAuth
// @Produce      json
// @Param        date      query  string  true   "ISO date (YYYY-MM-DD)"
// @Param        duration  query  int     true   "Duration in minutes, 30-minute multiple"
// @Param        sport     query  string  false  "Sport filter"
// @Success      200  {object}  Grid
// @Failure      400  {object}  api.ErrorResponse
// @Failure      502  {object}  api.ErrorResponse
// @Router       /availability/grid [get]
func (h *Handler) GetGrid(c *gin.Context) {
	date := c.Query("date")
	if !ValidDate(date) {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "date must be YYYY-MM-DD"})
		return
	}

	duration, err := strconv.Atoi(c.DefaultQuery("duration", "60"))
	if err != nil || !ValidDuration(duration) {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "duration must be a 30-minute multiple between 30 and 480"})
		return
	}

	resources, err := h.resources.ListResources(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, api.ErrorResponse{Error: "failed to fetch resources"})
		return
	}

	active := resource.FilterActive(resources, c.Query("sport"))
	grid := h.builder.BuildGrid(c.Request.Context(), active, date, duration)

	c.JSON(http.StatusOK, grid)
}

// GetSelectableDates godoc
// @Summary      Selectable booking dates
// @Description  Returns the bounded list of dates inside the advance-booking horizon.
// @Tags         availability
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /availability/dates [get]
func (h *Handler) GetSelectableDates(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"dates": h.policy.SelectableDates()})
}
