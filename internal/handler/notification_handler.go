package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/CuraLab-Diagnostics/service-booking/internal/application"
	"github.com/CuraLab-Diagnostics/service-booking/pkg/auth"
	"github.com/CuraLab-Diagnostics/service-booking/pkg/middleware"
	"github.com/CuraLab-Diagnostics/service-booking/pkg/response"
)

// NotificationHandler handles HTTP requests for the notification ledger.
type NotificationHandler struct {
	service *application.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(service *application.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// RegisterRoutes registers notification routes. Which read flag a caller
// sees and updates follows from their authenticated role.
func (h *NotificationHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	notifications := r.Group("/api/v1/notifications")
	notifications.Use(authMW)
	{
		notifications.GET("", h.ListUnread)
		notifications.GET("/count", h.UnreadCount)
		notifications.POST("/:id/read", h.MarkRead)
	}

	r.GET("/api/v1/bookings/:id/notification", authMW, h.GetForBooking)
}

// ListUnread handles GET /api/v1/notifications.
func (h *NotificationHandler) ListUnread(c *gin.Context) {
	role, ok := middleware.GetUserRole(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	page, limit := parsePagination(c)

	result, err := h.service.ListUnread(c.Request.Context(), role, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// UnreadCount handles GET /api/v1/notifications/count.
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	role, ok := middleware.GetUserRole(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	count, err := h.service.UnreadCount(c.Request.Context(), role)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"unread": count})
}

// GetForBooking handles GET /api/v1/bookings/:id/notification.
func (h *NotificationHandler) GetForBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	result, err := h.service.GetForBooking(c.Request.Context(), bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// MarkRead handles POST /api/v1/notifications/:id/read.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	notificationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid notification ID")
		return
	}

	role, ok := middleware.GetUserRole(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	result, err := h.service.MarkRead(c.Request.Context(), notificationID, role)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
