package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ListFilter narrows admin booking listings. Zero values mean "no filter".
type ListFilter struct {
	Status        BookingStatus
	TestPackageID uuid.UUID
	DateFrom      time.Time
	DateTo        time.Time
}

// BookingRepository defines the persistence contract for booking aggregates.
type BookingRepository interface {
	// FindByID retrieves a booking by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// FindByNumber retrieves a booking by its human-readable booking number.
	FindByNumber(ctx context.Context, number string) (*Booking, error)

	// List retrieves bookings matching the filter with pagination, newest first.
	List(ctx context.Context, filter ListFilter, page, limit int) ([]*Booking, int64, error)

	// CountByStatus returns booking counts grouped by status (admin).
	CountByStatus(ctx context.Context) (map[string]int64, error)

	// Save persists a new booking.
	Save(ctx context.Context, booking *Booking) error

	// Update persists changes to an existing booking with optimistic locking.
	Update(ctx context.Context, booking *Booking) error
}
