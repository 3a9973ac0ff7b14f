package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hotelstay/service-booking/internal/common/response"
	"github.com/hotelstay/service-booking/internal/domain/stay"
)

// HotelHandler serves the public availability reads.
type HotelHandler struct {
	service AvailabilitySvc
}

// NewHotelHandler creates a new HotelHandler.
func NewHotelHandler(service AvailabilitySvc) *HotelHandler {
	return &HotelHandler{service: service}
}

// RegisterRoutes registers the availability routes. They do not require a token.
func (h *HotelHandler) RegisterRoutes(r *gin.RouterGroup) {
	v1 := r.Group("/api/v1")
	{
		v1.GET("/hotels", h.SearchHotels)
		v1.GET("/hotels/:id/rooms", h.ListFreeRooms)
		v1.GET("/rooms/:id/availability", h.CheckAvailability)
		v1.GET("/rooms/:id/quote", h.GetQuote)
	}
}

// SearchHotels handles GET /api/v1/hotels?city=&check_in=&check_out=&guests=.
func (h *HotelHandler) SearchHotels(c *gin.Context) {
	st, err := stay.ParseOptional(c.Query("check_in"), c.Query("check_out"))
	if err != nil {
		response.Error(c, err)
		return
	}

	guests := 0
	if raw := c.Query("guests"); raw != "" {
		guests, err = strconv.Atoi(raw)
		if err != nil || guests < 0 {
			response.BadRequest(c, "guests must be a non-negative integer")
			return
		}
	}

	result, err := h.service.SearchHotels(c.Request.Context(), c.Query("city"), st, guests)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ListFreeRooms handles GET /api/v1/hotels/:id/rooms.
func (h *HotelHandler) ListFreeRooms(c *gin.Context) {
	hotelID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid hotel ID")
		return
	}

	st, err := stay.ParseOptional(c.Query("check_in"), c.Query("check_out"))
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.service.ListFreeRooms(c.Request.Context(), hotelID, st)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// CheckAvailability handles GET /api/v1/rooms/:id/availability.
func (h *HotelHandler) CheckAvailability(c *gin.Context) {
	roomID, st, ok := roomAndStay(c)
	if !ok {
		return
	}

	result, err := h.service.CheckAvailability(c.Request.Context(), roomID, st)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// GetQuote handles GET /api/v1/rooms/:id/quote.
func (h *HotelHandler) GetQuote(c *gin.Context) {
	roomID, st, ok := roomAndStay(c)
	if !ok {
		return
	}

	result, err := h.service.GetQuote(c.Request.Context(), roomID, st)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// roomAndStay reads the room path parameter and the required stay dates,
// writing a 400 when either is invalid.
func roomAndStay(c *gin.Context) (uuid.UUID, stay.Stay, bool) {
	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid room ID")
		return uuid.Nil, stay.Stay{}, false
	}
	st, err := stay.Parse(c.Query("check_in"), c.Query("check_out"))
	if err != nil {
		response.Error(c, err)
		return uuid.Nil, stay.Stay{}, false
	}
	return roomID, st, true
}
