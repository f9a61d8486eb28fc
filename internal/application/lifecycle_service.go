package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	bookingDomain "github.com/CuraLab-Diagnostics/service-booking/internal/domain/booking"
	notificationDomain "github.com/CuraLab-Diagnostics/service-booking/internal/domain/notification"
	"github.com/CuraLab-Diagnostics/service-booking/internal/events"
	"github.com/CuraLab-Diagnostics/service-booking/pkg/auth"
	"github.com/CuraLab-Diagnostics/service-booking/pkg/domain"
	"github.com/CuraLab-Diagnostics/service-booking/pkg/kafka"
)

// Actor identifies who is driving a lifecycle transition.
type Actor struct {
	ID   uuid.UUID
	Role string
}

// TransitionResult carries the two records updated by a transition.
type TransitionResult struct {
	Booking      BookingDTO      `json:"booking"`
	Notification NotificationDTO `json:"notification"`
}

// transitionEventTypes maps each target status to the event type published
// on booking.events after the transition commits.
var transitionEventTypes = map[bookingDomain.BookingStatus]string{
	bookingDomain.StatusApproved:        events.BookingApproved,
	bookingDomain.StatusInProgress:      events.BookingInProgress,
	bookingDomain.StatusSampleCollected: events.BookingSampleCollected,
	bookingDomain.StatusReportGenerated: events.BookingReportGenerated,
	bookingDomain.StatusCompleted:       events.BookingCompleted,
	bookingDomain.StatusRejected:        events.BookingRejected,
}

// LifecycleService is the single authority for moving a booking and its
// notification between workflow states. No other component writes the
// status of either record.
type LifecycleService struct {
	bookings      bookingDomain.BookingRepository
	notifications notificationDomain.NotificationRepository
	transact      Transactor
	producer      *kafka.Producer
	logger        *zap.Logger
}

// NewLifecycleService creates a new LifecycleService.
func NewLifecycleService(
	bookings bookingDomain.BookingRepository,
	notifications notificationDomain.NotificationRepository,
	transact Transactor,
	producer *kafka.Producer,
	logger *zap.Logger,
) *LifecycleService {
	return &LifecycleService{
		bookings:      bookings,
		notifications: notifications,
		transact:      transact,
		producer:      producer,
		logger:        logger,
	}
}

// Transition validates and applies a status change to a booking and its
// notification as one atomic unit. Only admins may drive transitions.
// Concurrent transitions on the same booking are serialized by the
// booking's version: the loser fails with a conflict error and no fields
// change.
func (s *LifecycleService) Transition(
	ctx context.Context,
	bookingID uuid.UUID,
	target bookingDomain.BookingStatus,
	actor Actor,
	note string,
) (*TransitionResult, error) {
	if actor.Role != auth.RoleAdmin {
		return nil, domain.NewForbiddenError("only admins may change booking status")
	}
	if !target.IsValid() {
		return nil, domain.NewValidationError(fmt.Sprintf("unknown booking status: %s", target))
	}

	var (
		bk   *bookingDomain.Booking
		n    *notificationDomain.Notification
		from bookingDomain.BookingStatus
	)

	err := s.transact(ctx, func(txCtx context.Context) error {
		var err error
		bk, err = s.bookings.FindByID(txCtx, bookingID)
		if err != nil {
			return err
		}
		from = bk.Status()

		if err := bk.ApplyTransition(target, note); err != nil {
			return err
		}

		bk.IncrementVersion()
		if err := s.bookings.Update(txCtx, bk); err != nil {
			return err
		}

		n, err = s.notifications.FindByBookingID(txCtx, bookingID)
		if err != nil {
			return err
		}

		n.ApplyTransition(target, transitionMessage(bk, target, note))
		return s.notifications.Update(txCtx, n)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("booking transitioned",
		zap.String("booking_id", bookingID.String()),
		zap.String("from", string(from)),
		zap.String("to", string(target)),
		zap.String("actor_id", actor.ID.String()),
	)

	s.publishTransition(ctx, bk, from, target, note)

	return &TransitionResult{
		Booking:      toBookingDTO(bk),
		Notification: toNotificationDTO(n),
	}, nil
}

// transitionMessage builds the human-readable trail entry for a transition.
func transitionMessage(bk *bookingDomain.Booking, target bookingDomain.BookingStatus, note string) string {
	msg := fmt.Sprintf("Booking %s is now %s", bk.BookingNumber(), target.Label())
	if note != "" {
		msg = fmt.Sprintf("%s: %s", msg, note)
	}
	return msg
}

func (s *LifecycleService) publishTransition(
	ctx context.Context,
	bk *bookingDomain.Booking,
	from, to bookingDomain.BookingStatus,
	note string,
) {
	if s.producer == nil {
		return
	}

	eventType, ok := transitionEventTypes[to]
	if !ok {
		return
	}

	evt := events.BookingStatusChangedEvent{
		BookingID:     bk.ID(),
		BookingNumber: bk.BookingNumber(),
		FromStatus:    string(from),
		ToStatus:      string(to),
		Note:          note,
		OccurredAt:    time.Now().UTC(),
	}

	cloudEvent, err := kafka.NewCloudEvent("service-booking", eventType, evt)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := s.producer.PublishEvent(ctx, events.TopicBookingEvents, bk.ID().String(), cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("topic", events.TopicBookingEvents),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}
