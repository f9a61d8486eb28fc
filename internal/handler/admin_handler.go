package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/CuraLab-Diagnostics/service-booking/internal/application"
	bookingDomain "github.com/CuraLab-Diagnostics/service-booking/internal/domain/booking"
	"github.com/CuraLab-Diagnostics/service-booking/pkg/auth"
	"github.com/CuraLab-Diagnostics/service-booking/pkg/middleware"
	"github.com/CuraLab-Diagnostics/service-booking/pkg/response"
)

// AdminBookingHandler handles admin HTTP requests for booking management.
type AdminBookingHandler struct {
	bookings  *application.BookingService
	lifecycle *application.LifecycleService
}

// NewAdminBookingHandler creates a new AdminBookingHandler.
func NewAdminBookingHandler(bookings *application.BookingService, lifecycle *application.LifecycleService) *AdminBookingHandler {
	return &AdminBookingHandler{bookings: bookings, lifecycle: lifecycle}
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
		admin.POST("/bookings/:id/status", h.ChangeStatus)
	}
}

// ListBookings handles GET /api/v1/admin/bookings.
func (h *AdminBookingHandler) ListBookings(c *gin.Context) {
	page, limit := parsePagination(c)

	filter, err := parseListFilter(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.bookings.ListBookings(c.Request.Context(), filter, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// BookingStats handles GET /api/v1/admin/stats/bookings.
func (h *AdminBookingHandler) BookingStats(c *gin.Context) {
	stats, err := h.bookings.GetBookingStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, stats)
}

// ChangeStatus handles POST /api/v1/admin/bookings/:id/status.
func (h *AdminBookingHandler) ChangeStatus(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	adminID, ok := middleware.GetUserID(c)
	if !ok {
		response.BadRequest(c, "missing caller identity")
		return
	}

	var body struct {
		Status string `json:"status" binding:"required"`
		Note   string `json:"note"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	target, err := bookingDomain.ParseBookingStatus(body.Status)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	actor := application.Actor{ID: adminID, Role: auth.RoleAdmin}
	result, err := h.lifecycle.Transition(c.Request.Context(), bookingID, target, actor, body.Note)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
