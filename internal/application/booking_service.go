package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	bookingDomain "github.com/CuraLab-Diagnostics/service-booking/internal/domain/booking"
	"github.com/CuraLab-Diagnostics/service-booking/internal/domain/catalog"
	notificationDomain "github.com/CuraLab-Diagnostics/service-booking/internal/domain/notification"
	"github.com/CuraLab-Diagnostics/service-booking/internal/events"
	"github.com/CuraLab-Diagnostics/service-booking/pkg/domain"
	"github.com/CuraLab-Diagnostics/service-booking/pkg/kafka"
)

// CreateBookingRequest holds the data submitted on the booking form.
type CreateBookingRequest struct {
	TestPackageID   uuid.UUID                         `json:"test_package_id" binding:"required"`
	AppointmentDate time.Time                         `json:"appointment_date" binding:"required"`
	AppointmentTime string                            `json:"appointment_time" binding:"required"`
	PrintedReport   bool                              `json:"printed_report"`
	ContactPrefs    bookingDomain.ContactPreferences  `json:"contact_preferences"`
	Name            string                            `json:"name" binding:"required"`
	Email           string                            `json:"email" binding:"required"`
	Phone           string                            `json:"phone" binding:"required"`
	Age             int                               `json:"age" binding:"required"`
	Gender          string                            `json:"gender" binding:"required"`
	Address         string                            `json:"address" binding:"required"`
	Pincode         string                            `json:"pincode" binding:"required"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID              uuid.UUID                        `json:"id"`
	BookingNumber   string                           `json:"booking_number"`
	PatientName     string                           `json:"patient_name"`
	Email           string                           `json:"email"`
	Phone           string                           `json:"phone"`
	Age             int                              `json:"age"`
	Gender          string                           `json:"gender"`
	Address         string                           `json:"address"`
	Pincode         string                           `json:"pincode"`
	TestPackageID   uuid.UUID                        `json:"test_package_id"`
	AppointmentDate time.Time                        `json:"appointment_date"`
	AppointmentTime string                           `json:"appointment_time"`
	PrintedReport   bool                             `json:"printed_report"`
	ContactPrefs    bookingDomain.ContactPreferences `json:"contact_preferences"`
	Status          string                           `json:"status"`
	StatusNote      string                           `json:"status_note,omitempty"`
	Version         int64                            `json:"version"`
	CreatedAt       time.Time                        `json:"created_at"`
	UpdatedAt       time.Time                        `json:"updated_at"`
}

// CreateBookingResult carries the booking and its ledger entry created in
// the same unit of work.
type CreateBookingResult struct {
	Booking      BookingDTO      `json:"booking"`
	Notification NotificationDTO `json:"notification"`
}

// Transactor runs a function inside a single persistence transaction.
type Transactor func(ctx context.Context, fn func(txCtx context.Context) error) error

// BookingService is the application service orchestrating booking use cases.
type BookingService struct {
	bookings      bookingDomain.BookingRepository
	notifications notificationDomain.NotificationRepository
	packages      catalog.PackageRepository
	transact      Transactor
	producer      *kafka.Producer
	logger        *zap.Logger
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	bookings bookingDomain.BookingRepository,
	notifications notificationDomain.NotificationRepository,
	packages catalog.PackageRepository,
	transact Transactor,
	producer *kafka.Producer,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		bookings:      bookings,
		notifications: notifications,
		packages:      packages,
		transact:      transact,
		producer:      producer,
		logger:        logger,
	}
}

// CreateBooking validates the form data and creates a pending booking plus
// its notification ledger entry in a single transaction.
func (s *BookingService) CreateBooking(ctx context.Context, req CreateBookingRequest) (*CreateBookingResult, error) {
	patient := bookingDomain.PatientDetails{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Age:     req.Age,
		Gender:  bookingDomain.Gender(req.Gender),
		Address: req.Address,
		Pincode: req.Pincode,
	}

	bk, err := bookingDomain.NewBooking(
		patient,
		req.TestPackageID,
		req.AppointmentDate,
		req.AppointmentTime,
		req.PrintedReport,
		req.ContactPrefs,
	)
	if err != nil {
		return nil, err
	}

	// The package reference is deliberately not validated; the catalog is
	// consulted only to make the notification message readable.
	packageName := s.packageName(ctx, req.TestPackageID)
	message := fmt.Sprintf("New booking %s received for %s", bk.BookingNumber(), packageName)

	n, err := notificationDomain.NewForBooking(bk.ID(), message)
	if err != nil {
		return nil, err
	}

	err = s.transact(ctx, func(txCtx context.Context) error {
		if err := s.bookings.Save(txCtx, bk); err != nil {
			return err
		}
		return s.notifications.Save(txCtx, n)
	})
	if err != nil {
		// Domain errors from the repositories keep their kind; only
		// infrastructure failures become unavailable.
		if domain.KindOf(err) != "" {
			return nil, err
		}
		return nil, domain.NewUnavailableError("failed to store booking", err)
	}

	s.publishBookingRequested(ctx, bk)

	return &CreateBookingResult{
		Booking:      toBookingDTO(bk),
		Notification: toNotificationDTO(n),
	}, nil
}

// GetBooking retrieves a single booking by ID.
func (s *BookingService) GetBooking(ctx context.Context, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	result := toBookingDTO(bk)
	return &result, nil
}

// GetBookingByNumber retrieves a single booking by its booking number.
func (s *BookingService) GetBookingByNumber(ctx context.Context, number string) (*BookingDTO, error) {
	bk, err := s.bookings.FindByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	result := toBookingDTO(bk)
	return &result, nil
}

// ListBookings retrieves a filtered, paginated list of bookings (admin).
func (s *BookingService) ListBookings(ctx context.Context, filter bookingDomain.ListFilter, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	bookings, total, err := s.bookings.List(ctx, filter, page, limit)
	if err != nil {
		return nil, err
	}

	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toBookingDTO(bk)
	}

	result := domain.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

// BookingStatsDTO holds booking statistics for the admin dashboard.
type BookingStatsDTO struct {
	TotalBookings int64            `json:"total_bookings"`
	ByStatus      map[string]int64 `json:"by_status"`
}

// GetBookingStats returns aggregate booking statistics (admin).
func (s *BookingService) GetBookingStats(ctx context.Context) (*BookingStatsDTO, error) {
	counts, err := s.bookings.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking stats: %w", err)
	}

	var total int64
	for _, c := range counts {
		total += c
	}

	return &BookingStatsDTO{
		TotalBookings: total,
		ByStatus:      counts,
	}, nil
}

// --- Helpers ---

func (s *BookingService) packageName(ctx context.Context, packageID uuid.UUID) string {
	pkg, err := s.packages.FindByID(ctx, packageID)
	if err != nil {
		return "the selected test package"
	}
	return pkg.Name()
}

func (s *BookingService) publishBookingRequested(ctx context.Context, bk *bookingDomain.Booking) {
	if s.producer == nil {
		return
	}

	evt := events.BookingRequestedEvent{
		BookingID:       bk.ID(),
		BookingNumber:   bk.BookingNumber(),
		TestPackageID:   bk.TestPackageID(),
		PatientName:     bk.Patient().Name,
		AppointmentDate: bk.AppointmentDate(),
		AppointmentTime: bk.AppointmentTime(),
		OccurredAt:      time.Now().UTC(),
	}

	cloudEvent, err := kafka.NewCloudEvent("service-booking", events.BookingRequested, evt)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", events.BookingRequested),
			zap.Error(err),
		)
		return
	}

	if err := s.producer.PublishEvent(ctx, events.TopicBookingEvents, bk.ID().String(), cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("topic", events.TopicBookingEvents),
			zap.String("event_type", events.BookingRequested),
			zap.Error(err),
		)
	}
}

func toBookingDTO(bk *bookingDomain.Booking) BookingDTO {
	patient := bk.Patient()
	return BookingDTO{
		ID:              bk.ID(),
		BookingNumber:   bk.BookingNumber(),
		PatientName:     patient.Name,
		Email:           patient.Email,
		Phone:           patient.Phone,
		Age:             patient.Age,
		Gender:          string(patient.Gender),
		Address:         patient.Address,
		Pincode:         patient.Pincode,
		TestPackageID:   bk.TestPackageID(),
		AppointmentDate: bk.AppointmentDate(),
		AppointmentTime: bk.AppointmentTime(),
		PrintedReport:   bk.PrintedReport(),
		ContactPrefs:    bk.ContactPrefs(),
		Status:          string(bk.Status()),
		StatusNote:      bk.StatusNote(),
		Version:         bk.Version(),
		CreatedAt:       bk.CreatedAt(),
		UpdatedAt:       bk.UpdatedAt(),
	}
}
