package handler

import (
	"context"
	"net/http"

	"geo-tracker/internal/locationlog"
	"geo-tracker/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// LocationHandler handles requests that record locations
type LocationHandler struct {
	service LocationService
}

// Service interface for dependency injection
type LocationService interface {
	SaveLocation(ctx context.Context, lat, lon float64) (*models.LocationRecord, error)
	SaveIPLocation(ctx context.Context, ip string) (*models.LocationRecord, error)
}

// SaveLocationRequest is the body of POST /api/save-location
type SaveLocationRequest struct {
	Latitude  *float64 `json:"latitude" binding:"required" example:"40.71"`
	Longitude *float64 `json:"longitude" binding:"required" example:"-74.00"`
}

// SaveLocationResponse is returned when a location was stored
type SaveLocationResponse struct {
	Success  bool                   `json:"success"`
	Location *models.LocationRecord `json:"location"`
}

// NewLocationHandler creates a new location handler
func NewLocationHandler(svc LocationService) *LocationHandler {
	return &LocationHandler{service: svc}
}

// SaveLocation handles POST /api/save-location requests
//
//	@Summary	Save a browser geolocation sample
//	@Tags		locations
//	@Accept		json
//	@Produce	json
//	@Param		body	body		SaveLocationRequest	true	"Coordinates"
//	@Success	200		{object}	SaveLocationResponse
//	@Failure	400		{object}	ErrorResponse
//	@Failure	409		{object}	ErrorResponse
//	@Failure	500		{object}	ErrorResponse
//	@Failure	502		{object}	ErrorResponse
//	@Router		/save-location [post]
func (h *LocationHandler) SaveLocation(c *gin.Context) {
	var req SaveLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		zerolog.Ctx(c.Request.Context()).Warn().Err(err).Msg("invalid coordinates")
		c.JSON(http.StatusBadRequest, ErrorResponse{Success: false, Error: "Invalid coordinates", Kind: string(locationlog.KindInvalidInput)})
		return
	}

	record, err := h.service.SaveLocation(c.Request.Context(), *req.Latitude, *req.Longitude)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, SaveLocationResponse{Success: true, Location: record})
}

// SaveIPLocation handles GET /api/save-ip-location requests
//
//	@Summary	Save the caller's IP-derived location
//	@Tags		locations
//	@Produce	json
//	@Success	200	{object}	SaveLocationResponse
//	@Failure	400	{object}	ErrorResponse
//	@Failure	409	{object}	ErrorResponse
//	@Failure	500	{object}	ErrorResponse
//	@Failure	502	{object}	ErrorResponse
//	@Router		/save-ip-location [get]
func (h *LocationHandler) SaveIPLocation(c *gin.Context) {
	record, err := h.service.SaveIPLocation(c.Request.Context(), c.ClientIP())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, SaveLocationResponse{Success: true, Location: record})
}
