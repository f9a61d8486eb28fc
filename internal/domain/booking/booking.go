package booking

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/CuraLab-Diagnostics/service-booking/pkg/domain"
)

const bookingNumberChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Booking is the aggregate root for the booking domain. A booking is a
// patient's request to have a diagnostic test package performed at a
// scheduled date and time.
type Booking struct {
	id              uuid.UUID
	bookingNumber   string
	patient         PatientDetails
	testPackageID   uuid.UUID
	appointmentDate time.Time
	appointmentTime string
	printedReport   bool
	contactPrefs    ContactPreferences
	status          BookingStatus
	statusNote      string

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// generateBookingNumber creates a booking number in the format "LB-XXXXXX".
func generateBookingNumber() (string, error) {
	result := make([]byte, 6)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(bookingNumberChars))))
		if err != nil {
			return "", fmt.Errorf("failed to generate booking number: %w", err)
		}
		result[i] = bookingNumberChars[n.Int64()]
	}
	return "LB-" + string(result), nil
}

// NewBooking creates a new Booking aggregate with status=pending.
func NewBooking(
	patient PatientDetails,
	testPackageID uuid.UUID,
	appointmentDate time.Time,
	appointmentTime string,
	printedReport bool,
	contactPrefs ContactPreferences,
) (*Booking, error) {
	problems := patient.Validate()
	if testPackageID == uuid.Nil {
		problems = append(problems, "test package is required")
	}
	if appointmentDate.IsZero() {
		problems = append(problems, "appointment date is required")
	}
	if appointmentTime == "" {
		problems = append(problems, "appointment time is required")
	}
	if len(problems) > 0 {
		return nil, domain.NewValidationError(strings.Join(problems, "; "))
	}

	bookingNumber, err := generateBookingNumber()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Booking{
		id:              uuid.New(),
		bookingNumber:   bookingNumber,
		patient:         patient,
		testPackageID:   testPackageID,
		appointmentDate: appointmentDate,
		appointmentTime: appointmentTime,
		printedReport:   printedReport,
		contactPrefs:    contactPrefs,
		status:          StatusPending,
		version:         1,
		createdAt:       now,
		updatedAt:       now,
	}, nil
}

// ReconstructBooking rebuilds a Booking from persistence data (no validation).
func ReconstructBooking(
	id uuid.UUID,
	bookingNumber string,
	patient PatientDetails,
	testPackageID uuid.UUID,
	appointmentDate time.Time,
	appointmentTime string,
	printedReport bool,
	contactPrefs ContactPreferences,
	status BookingStatus,
	statusNote string,
	version int64,
	createdAt time.Time,
	updatedAt time.Time,
) *Booking {
	return &Booking{
		id:              id,
		bookingNumber:   bookingNumber,
		patient:         patient,
		testPackageID:   testPackageID,
		appointmentDate: appointmentDate,
		appointmentTime: appointmentTime,
		printedReport:   printedReport,
		contactPrefs:    contactPrefs,
		status:          status,
		statusNote:      statusNote,
		version:         version,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}
}

// --- Getters ---

// ID returns the booking's unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// BookingNumber returns the human-readable booking number.
func (b *Booking) BookingNumber() string { return b.bookingNumber }

// Patient returns the patient's contact and demographic details.
func (b *Booking) Patient() PatientDetails { return b.patient }

// TestPackageID returns the selected test package reference.
func (b *Booking) TestPackageID() uuid.UUID { return b.testPackageID }

// AppointmentDate returns the scheduled appointment date.
func (b *Booking) AppointmentDate() time.Time { return b.appointmentDate }

// AppointmentTime returns the scheduled appointment time slot.
func (b *Booking) AppointmentTime() string { return b.appointmentTime }

// PrintedReport returns whether the patient requested a printed report.
func (b *Booking) PrintedReport() bool { return b.printedReport }

// ContactPrefs returns the patient's contact channel preferences.
func (b *Booking) ContactPrefs() ContactPreferences { return b.contactPrefs }

// Status returns the current booking status.
func (b *Booking) Status() BookingStatus { return b.status }

// StatusNote returns the note attached to the most recent transition.
func (b *Booking) StatusNote() string { return b.statusNote }

// Version returns the entity version for optimistic locking.
func (b *Booking) Version() int64 { return b.version }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// --- Behavior ---

// ApplyTransition moves the booking to the target status if the state
// machine allows it. Terminal bookings reject every transition.
func (b *Booking) ApplyTransition(target BookingStatus, note string) error {
	if !target.IsValid() {
		return domain.NewValidationError(fmt.Sprintf("unknown booking status: %s", target))
	}
	if b.status.IsTerminal() {
		return domain.NewTerminalStateError(string(b.status))
	}
	if !b.status.CanTransitionTo(target) {
		return domain.NewInvalidStateError(string(b.status), string(target))
	}
	b.status = target
	b.statusNote = note
	b.updatedAt = time.Now().UTC()
	return nil
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
	b.updatedAt = time.Now().UTC()
}
