package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	bookingDomain "github.com/CuraLab-Diagnostics/service-booking/internal/domain/booking"
	notificationDomain "github.com/CuraLab-Diagnostics/service-booking/internal/domain/notification"
	"github.com/CuraLab-Diagnostics/service-booking/pkg/auth"
	"github.com/CuraLab-Diagnostics/service-booking/pkg/database"
	"github.com/CuraLab-Diagnostics/service-booking/pkg/domain"
)

// NotificationModel is the GORM model for the booking_notifications table.
type NotificationModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	BookingID      uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	Message        string    `gorm:"not null;size:500"`
	WorkflowStatus string    `gorm:"not null;size:30;index"`
	ReadByAdmin    bool      `gorm:"not null;default:false;index"`
	ReadByUser     bool      `gorm:"not null;default:false;index"`
	CreatedAt      time.Time `gorm:"not null;index"`
	UpdatedAt      time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (NotificationModel) TableName() string {
	return "booking_notifications"
}

// GormNotificationRepository is the GORM-based implementation of
// NotificationRepository.
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewGormNotificationRepository creates a new GormNotificationRepository.
func NewGormNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{db: db}
}

func (r *GormNotificationRepository) conn(ctx context.Context) *gorm.DB {
	return database.FromContext(ctx, r.db).WithContext(ctx)
}

// FindByID retrieves a notification by its unique identifier.
func (r *GormNotificationRepository) FindByID(ctx context.Context, id uuid.UUID) (*notificationDomain.Notification, error) {
	var model NotificationModel
	if err := r.conn(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Notification", id.String())
		}
		return nil, fmt.Errorf("failed to find notification by ID: %w", err)
	}
	return toDomainNotification(&model)
}

// FindByBookingID retrieves the notification linked to a booking.
func (r *GormNotificationRepository) FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*notificationDomain.Notification, error) {
	var model NotificationModel
	if err := r.conn(ctx).Where("booking_id = ?", bookingID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Notification for booking", bookingID.String())
		}
		return nil, fmt.Errorf("failed to find notification by booking ID: %w", err)
	}
	return toDomainNotification(&model)
}

// ListUnread retrieves notifications unread by the role, most recent first.
func (r *GormNotificationRepository) ListUnread(ctx context.Context, role string, page, limit int) ([]*notificationDomain.Notification, int64, error) {
	column, err := readColumnForRole(role)
	if err != nil {
		return nil, 0, err
	}

	query := r.conn(ctx).Model(&NotificationModel{}).Where(column+" = ?", false)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}

	var models []NotificationModel
	offset := (page - 1) * limit
	if err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list unread notifications: %w", err)
	}

	notifications := make([]*notificationDomain.Notification, len(models))
	for i, m := range models {
		n, err := toDomainNotification(&m)
		if err != nil {
			return nil, 0, err
		}
		notifications[i] = n
	}

	return notifications, total, nil
}

// CountUnread returns the number of notifications unread by the role.
func (r *GormNotificationRepository) CountUnread(ctx context.Context, role string) (int64, error) {
	column, err := readColumnForRole(role)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := r.conn(ctx).Model(&NotificationModel{}).
		Where(column+" = ?", false).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

// Save persists a new notification.
func (r *GormNotificationRepository) Save(ctx context.Context, n *notificationDomain.Notification) error {
	model := toNotificationModel(n)
	if err := r.conn(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save notification: %w", err)
	}
	return nil
}

// Update persists changes to an existing notification.
func (r *GormNotificationRepository) Update(ctx context.Context, n *notificationDomain.Notification) error {
	model := toNotificationModel(n)
	result := r.conn(ctx).
		Model(&NotificationModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"message":         model.Message,
			"workflow_status": model.WorkflowStatus,
			"read_by_admin":   model.ReadByAdmin,
			"read_by_user":    model.ReadByUser,
			"updated_at":      model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update notification: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Notification", model.ID.String())
	}
	return nil
}

func readColumnForRole(role string) (string, error) {
	switch role {
	case auth.RoleAdmin:
		return "read_by_admin", nil
	case auth.RolePatient:
		return "read_by_user", nil
	}
	return "", domain.NewValidationError(fmt.Sprintf("unknown role: %s", role))
}

// --- Conversion Helpers ---

func toNotificationModel(n *notificationDomain.Notification) *NotificationModel {
	return &NotificationModel{
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

func toDomainNotification(m *NotificationModel) (*notificationDomain.Notification, error) {
	status, err := bookingDomain.ParseBookingStatus(m.WorkflowStatus)
	if err != nil {
		return nil, err
	}

	return notificationDomain.Reconstruct(
		m.ID,
		m.BookingID,
		m.Message,
		status,
		m.ReadByAdmin,
		m.ReadByUser,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}
