package events

import (
	"time"

	"github.com/google/uuid"
)

// Kafka topics this service produces to and consumes from.
const (
	TopicBookingEvents = "booking.events"
	TopicLabEvents     = "lab.events"
)

// Event types published on booking.events. One type exists per lifecycle
// transition so downstream consumers can subscribe selectively.
const (
	BookingRequested       = "booking.requested"
	BookingApproved        = "booking.approved"
	BookingInProgress      = "booking.in_progress"
	BookingSampleCollected = "booking.sample_collected"
	BookingReportGenerated = "booking.report_generated"
	BookingCompleted       = "booking.completed"
	BookingRejected        = "booking.rejected"
)

// Event types consumed from lab.events, published by the lab information
// system as samples move through processing.
const (
	LabSampleCollected = "lab.sample_collected"
	LabReportReady     = "lab.report_ready"
)

// BookingRequestedEvent is published when a patient submits a new booking.
type BookingRequestedEvent struct {
	BookingID       uuid.UUID `json:"booking_id"`
	BookingNumber   string    `json:"booking_number"`
	TestPackageID   uuid.UUID `json:"test_package_id"`
	PatientName     string    `json:"patient_name"`
	AppointmentDate time.Time `json:"appointment_date"`
	AppointmentTime string    `json:"appointment_time"`
	OccurredAt      time.Time `json:"occurred_at"`
}

// BookingStatusChangedEvent is published after every successful lifecycle
// transition. The event type on the envelope names the target status.
type BookingStatusChangedEvent struct {
	BookingID     uuid.UUID `json:"booking_id"`
	BookingNumber string    `json:"booking_number"`
	FromStatus    string    `json:"from_status"`
	ToStatus      string    `json:"to_status"`
	Note          string    `json:"note,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// LabSampleEvent is the payload of lab.sample_collected and lab.report_ready
// events sent by the lab information system.
type LabSampleEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	LabRef     string    `json:"lab_ref,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
