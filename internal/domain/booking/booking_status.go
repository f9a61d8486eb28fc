package booking

import "fmt"

// BookingStatus represents the current stage of a booking's fulfillment,
// from request to completed report.
type BookingStatus string

const (
	StatusPending         BookingStatus = "pending"
	StatusApproved        BookingStatus = "approved"
	StatusInProgress      BookingStatus = "in_progress"
	StatusSampleCollected BookingStatus = "sample_collected"
	StatusReportGenerated BookingStatus = "report_generated"
	StatusCompleted       BookingStatus = "completed"
	StatusRejected        BookingStatus = "rejected"
)

// validTransitions defines the state machine for booking status transitions.
// The primary chain is pending -> sample_collected -> report_generated ->
// completed. approved and in_progress are administrative dispositions that
// feed back into the chain at sample collection. A booking can only be
// rejected before its sample is collected.
var validTransitions = map[BookingStatus][]BookingStatus{
	StatusPending:         {StatusApproved, StatusInProgress, StatusSampleCollected, StatusRejected},
	StatusApproved:        {StatusInProgress, StatusSampleCollected},
	StatusInProgress:      {StatusSampleCollected, StatusRejected},
	StatusSampleCollected: {StatusReportGenerated},
	StatusReportGenerated: {StatusCompleted},
	StatusCompleted:       {},
	StatusRejected:        {},
}

// statusLabels holds the human-readable name for each status, used in
// notification messages.
var statusLabels = map[BookingStatus]string{
	StatusPending:         "Pending",
	StatusApproved:        "Approved",
	StatusInProgress:      "In Progress",
	StatusSampleCollected: "Sample Collected",
	StatusReportGenerated: "Report Generated",
	StatusCompleted:       "Completed",
	StatusRejected:        "Rejected",
}

// IsValid returns true if the status is a recognized booking status.
func (s BookingStatus) IsValid() bool {
	_, exists := validTransitions[s]
	return exists
}

// CanTransitionTo returns true if a transition from this status to the target is allowed.
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	allowed, exists := validTransitions[s]
	if !exists {
		return false
	}
	for _, t := range allowed {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true if no further transitions are possible from this status.
func (s BookingStatus) IsTerminal() bool {
	allowed, exists := validTransitions[s]
	if !exists {
		return true
	}
	return len(allowed) == 0
}

// Label returns the human-readable name of the status.
func (s BookingStatus) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

// String returns the string representation of the status.
func (s BookingStatus) String() string {
	return string(s)
}

// ParseBookingStatus converts a string to a BookingStatus, returning an error if invalid.
func ParseBookingStatus(s string) (BookingStatus, error) {
	status := BookingStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid booking status: %s", s)
	}
	return status, nil
}
