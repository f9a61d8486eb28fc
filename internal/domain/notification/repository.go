package notification

import (
	"context"

	"github.com/google/uuid"
)

// NotificationRepository defines the persistence contract for the
// notification ledger.
type NotificationRepository interface {
	// FindByID retrieves a notification by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Notification, error)

	// FindByBookingID retrieves the notification linked to a booking.
	FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*Notification, error)

	// ListUnread retrieves notifications unread by the given role, most
	// recent first, with pagination.
	ListUnread(ctx context.Context, role string, page, limit int) ([]*Notification, int64, error)

	// CountUnread returns the number of notifications unread by the role.
	CountUnread(ctx context.Context, role string) (int64, error)

	// Save persists a new notification.
	Save(ctx context.Context, n *Notification) error

	// Update persists changes to an existing notification.
	Update(ctx context.Context, n *Notification) error
}
