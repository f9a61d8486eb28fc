package consumer

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/CuraLab-Diagnostics/service-booking/internal/application"
	bookingDomain "github.com/CuraLab-Diagnostics/service-booking/internal/domain/booking"
	"github.com/CuraLab-Diagnostics/service-booking/internal/events"
	"github.com/CuraLab-Diagnostics/service-booking/pkg/auth"
	"github.com/CuraLab-Diagnostics/service-booking/pkg/domain"
	"github.com/CuraLab-Diagnostics/service-booking/pkg/kafka"
)

// lifecycleService is the slice of the lifecycle coordinator the consumer
// drives.
type lifecycleService interface {
	Transition(ctx context.Context, bookingID uuid.UUID, target bookingDomain.BookingStatus, actor application.Actor, note string) (*application.TransitionResult, error)
}

// LabEventConsumer listens to lab information system events and advances
// booking lifecycles as samples move through processing.
type LabEventConsumer struct {
	consumer  *kafka.Consumer
	lifecycle lifecycleService
	logger    *zap.Logger
}

// labSystemActor is the identity lab-driven transitions run under.
var labSystemActor = application.Actor{Role: auth.RoleAdmin}

// NewLabEventConsumer creates a new LabEventConsumer.
func NewLabEventConsumer(
	brokers []string,
	groupID string,
	lifecycle *application.LifecycleService,
	logger *zap.Logger,
) *LabEventConsumer {
	consumer := kafka.NewConsumer(brokers, groupID, events.TopicLabEvents, logger)
	return &LabEventConsumer{
		consumer:  consumer,
		lifecycle: lifecycle,
		logger:    logger,
	}
}

// Start begins consuming lab events. This blocks until the context is cancelled.
func (c *LabEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *LabEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *LabEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	var cloudEvent kafka.CloudEvent
	if err := json.Unmarshal(msg.Value, &cloudEvent); err != nil {
		c.logger.Error("failed to parse cloud event from lab topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case events.LabSampleCollected:
		return c.applyLabTransition(ctx, cloudEvent, bookingDomain.StatusSampleCollected)
	case events.LabReportReady:
		return c.applyLabTransition(ctx, cloudEvent, bookingDomain.StatusReportGenerated)
	default:
		c.logger.Debug("ignoring unhandled lab event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *LabEventConsumer) applyLabTransition(ctx context.Context, cloudEvent kafka.CloudEvent, target bookingDomain.BookingStatus) error {
	var evt events.LabSampleEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse lab event data",
			zap.Error(err),
		)
		return nil // Don't retry malformed data
	}

	c.logger.Info("processing lab event",
		zap.String("booking_id", evt.BookingID.String()),
		zap.String("target_status", string(target)),
		zap.String("lab_ref", evt.LabRef),
	)

	_, err := c.lifecycle.Transition(ctx, evt.BookingID, target, labSystemActor, evt.LabRef)
	if err != nil {
		// A lab event for a booking already past this stage is stale, not
		// retryable.
		switch domain.KindOf(err) {
		case domain.KindInvalidState, domain.KindNotFound:
			c.logger.Warn("skipping stale lab event",
				zap.String("booking_id", evt.BookingID.String()),
				zap.String("target_status", string(target)),
				zap.Error(err),
			)
			return nil
		}
		c.logger.Error("failed to apply lab transition",
			zap.String("booking_id", evt.BookingID.String()),
			zap.Error(err),
		)
		return err
	}

	return nil
}
