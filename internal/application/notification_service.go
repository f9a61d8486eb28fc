package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	notificationDomain "github.com/CuraLab-Diagnostics/service-booking/internal/domain/notification"
	"github.com/CuraLab-Diagnostics/service-booking/pkg/domain"
)

// NotificationDTO is the response representation of a notification.
type NotificationDTO struct {
	ID             uuid.UUID `json:"id"`
	BookingID      uuid.UUID `json:"booking_id"`
	Message        string    `json:"message"`
	WorkflowStatus string    `json:"workflow_status"`
	ReadByAdmin    bool      `json:"read_by_admin"`
	ReadByUser     bool      `json:"read_by_user"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NotificationService exposes the read side of the notification ledger and
// the per-party read tracking.
type NotificationService struct {
	notifications notificationDomain.NotificationRepository
	logger        *zap.Logger
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(notifications notificationDomain.NotificationRepository, logger *zap.Logger) *NotificationService {
	return &NotificationService{notifications: notifications, logger: logger}
}

// ListUnread retrieves notifications the given role has not seen, most
// recent first.
func (s *NotificationService) ListUnread(ctx context.Context, role string, page, limit int) (*domain.PaginatedResult[NotificationDTO], error) {
	notifications, total, err := s.notifications.ListUnread(ctx, role, page, limit)
	if err != nil {
		return nil, err
	}

	dtos := make([]NotificationDTO, len(notifications))
	for i, n := range notifications {
		dtos[i] = toNotificationDTO(n)
	}

	result := domain.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

// UnreadCount returns how many notifications the role has not seen. The UI
// polls this on an interval to drive its badge.
func (s *NotificationService) UnreadCount(ctx context.Context, role string) (int64, error) {
	return s.notifications.CountUnread(ctx, role)
}

// MarkRead flags a notification as seen by the role. Marking an
// already-read notification is a no-op, not an error.
func (s *NotificationService) MarkRead(ctx context.Context, notificationID uuid.UUID, role string) (*NotificationDTO, error) {
	n, err := s.notifications.FindByID(ctx, notificationID)
	if err != nil {
		return nil, err
	}

	if err := n.MarkRead(role); err != nil {
		return nil, err
	}

	if err := s.notifications.Update(ctx, n); err != nil {
		return nil, err
	}

	result := toNotificationDTO(n)
	return &result, nil
}

// GetForBooking retrieves the notification linked to a booking.
func (s *NotificationService) GetForBooking(ctx context.Context, bookingID uuid.UUID) (*NotificationDTO, error) {
	n, err := s.notifications.FindByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	result := toNotificationDTO(n)
	return &result, nil
}

func toNotificationDTO(n *notificationDomain.Notification) NotificationDTO {
	return NotificationDTO{
		ID:             n.ID(),
		BookingID:      n.BookingID(),
		Message:        n.Message(),
		WorkflowStatus: string(n.WorkflowStatus()),
		ReadByAdmin:    n.ReadByAdmin(),
		ReadByUser:     n.ReadByUser(),
		CreatedAt:      n.CreatedAt(),
		UpdatedAt:      n.UpdatedAt(),
	}
}
