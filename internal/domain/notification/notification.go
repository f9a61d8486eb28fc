package notification

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	bookingDomain "github.com/CuraLab-Diagnostics/service-booking/internal/domain/booking"
	"github.com/CuraLab-Diagnostics/service-booking/pkg/auth"
	"github.com/CuraLab-Diagnostics/service-booking/pkg/domain"
)

// Notification tracks the latest status message for a booking and whether
// the admin and patient sides have each seen it. Exactly one notification
// exists per booking; it is created as a side effect of booking creation
// and updated on every lifecycle transition.
type Notification struct {
	id             uuid.UUID
	bookingID      uuid.UUID
	message        string
	workflowStatus bookingDomain.BookingStatus
	readByAdmin    bool
	readByUser     bool
	createdAt      time.Time
	updatedAt      time.Time
}

// NewForBooking creates the notification that accompanies a freshly created
// booking. The patient just submitted the form, so the record is unread for
// the admin side only.
func NewForBooking(bookingID uuid.UUID, message string) (*Notification, error) {
	if bookingID == uuid.Nil {
		return nil, domain.NewValidationError("booking ID is required")
	}
	if message == "" {
		return nil, domain.NewValidationError("notification message is required")
	}

	now := time.Now().UTC()
	return &Notification{
		id:             uuid.New(),
		bookingID:      bookingID,
		message:        message,
		workflowStatus: bookingDomain.StatusPending,
		readByAdmin:    false,
		readByUser:     true,
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

// Reconstruct rebuilds a Notification from persistence data (no validation).
func Reconstruct(
	id uuid.UUID,
	bookingID uuid.UUID,
	message string,
	workflowStatus bookingDomain.BookingStatus,
	readByAdmin bool,
	readByUser bool,
	createdAt time.Time,
	updatedAt time.Time,
) *Notification {
	return &Notification{
		id:             id,
		bookingID:      bookingID,
		message:        message,
		workflowStatus: workflowStatus,
		readByAdmin:    readByAdmin,
		readByUser:     readByUser,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}
}

// --- Getters ---

// ID returns the notification's unique identifier.
func (n *Notification) ID() uuid.UUID { return n.id }

// BookingID returns the owning booking's identifier.
func (n *Notification) BookingID() uuid.UUID { return n.bookingID }

// Message returns the human-readable description of the last transition.
func (n *Notification) Message() string { return n.message }

// WorkflowStatus returns the booking status mirrored at the last sync.
func (n *Notification) WorkflowStatus() bookingDomain.BookingStatus { return n.workflowStatus }

// ReadByAdmin returns whether the admin side has seen the latest state.
func (n *Notification) ReadByAdmin() bool { return n.readByAdmin }

// ReadByUser returns whether the patient side has seen the latest state.
func (n *Notification) ReadByUser() bool { return n.readByUser }

// CreatedAt returns the creation timestamp.
func (n *Notification) CreatedAt() time.Time { return n.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (n *Notification) UpdatedAt() time.Time { return n.updatedAt }

// --- Behavior ---

// ApplyTransition syncs the notification with the booking's new status.
// Admin drove the change, so the patient side becomes unread.
func (n *Notification) ApplyTransition(status bookingDomain.BookingStatus, message string) {
	n.workflowStatus = status
	n.message = message
	n.readByUser = false
	n.updatedAt = time.Now().UTC()
}

// MarkRead flags the notification as seen by the given role. Re-marking an
// already-read notification is a no-op.
func (n *Notification) MarkRead(role string) error {
	switch role {
	case auth.RoleAdmin:
		if !n.readByAdmin {
			n.readByAdmin = true
			n.updatedAt = time.Now().UTC()
		}
	case auth.RolePatient:
		if !n.readByUser {
			n.readByUser = true
			n.updatedAt = time.Now().UTC()
		}
	default:
		return domain.NewValidationError(fmt.Sprintf("unknown role: %s", role))
	}
	return nil
}

// IsReadBy reports whether the given role has seen the latest state.
func (n *Notification) IsReadBy(role string) bool {
	if role == auth.RoleAdmin {
		return n.readByAdmin
	}
	return n.readByUser
}
