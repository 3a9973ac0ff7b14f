package handler

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hotelstay/service-booking/internal/application"
	"github.com/hotelstay/service-booking/internal/common/auth"
	"github.com/hotelstay/service-booking/internal/common/domain"
	"github.com/hotelstay/service-booking/internal/common/middleware"
	"github.com/hotelstay/service-booking/internal/common/response"
	"github.com/hotelstay/service-booking/internal/scheduler"
)

// AdminBookingHandler handles admin HTTP requests for booking management.
type AdminBookingHandler struct {
	service    BookingSvc
	reconciler ReconcileSvc
	runner     SweepRunner
}

// NewAdminBookingHandler creates a new AdminBookingHandler. Manual sweeps run
// through runner so they never overlap a scheduled one.
func NewAdminBookingHandler(service BookingSvc, reconciler ReconcileSvc, runner SweepRunner) *AdminBookingHandler {
	return &AdminBookingHandler{service: service, reconciler: reconciler, runner: runner}
}

// RegisterRoutes registers admin booking routes.
func (h *AdminBookingHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)
	adminRole := middleware.RequireRole(auth.RoleAdmin)

	admin := r.Group("/api/v1/admin")
	admin.Use(authMW, adminRole)
	{
		admin.GET("/bookings", h.ListBookings)
		admin.GET("/stats/bookings", h.BookingStats)
		admin.POST("/availability/reconcile", h.Reconcile)
	}
}

// ListBookings handles GET /api/v1/admin/bookings. It lists bookings of the caller's hotels.
func (h *AdminBookingHandler) ListBookings(c *gin.Context) {
	ownerID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	page, limit := parsePagination(c)

	result, err := h.service.ListOwnerBookings(c.Request.Context(), ownerID, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// BookingStats handles GET /api/v1/admin/stats/bookings.
func (h *AdminBookingHandler) BookingStats(c *gin.Context) {
	stats, err := h.service.GetBookingStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, stats)
}

// Reconcile handles POST /api/v1/admin/availability/reconcile.
func (h *AdminBookingHandler) Reconcile(c *gin.Context) {
	var result *application.ReconcileResult
	err := h.runner.Exclusive(c.Request.Context(), func(ctx context.Context) error {
		var err error
		result, err = h.reconciler.Reconcile(ctx, time.Now())
		return err
	})
	if errors.Is(err, scheduler.ErrAlreadyRunning) {
		response.Error(c, domain.NewConflictError("availability sweep already in progress"))
		return
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
