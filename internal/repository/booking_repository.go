package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	bookingDomain "github.com/CuraLab-Diagnostics/service-booking/internal/domain/booking"
	"github.com/CuraLab-Diagnostics/service-booking/pkg/database"
	"github.com/CuraLab-Diagnostics/service-booking/pkg/domain"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID                 uuid.UUID      `gorm:"type:uuid;primaryKey"`
	BookingNumber      string         `gorm:"uniqueIndex;not null;size:20"`
	PatientName        string         `gorm:"not null;size:200"`
	Email              string         `gorm:"not null;size:255"`
	Phone              string         `gorm:"not null;size:20"`
	Age                int            `gorm:"not null"`
	Gender             string         `gorm:"not null;size:10"`
	Address            string         `gorm:"not null;size:500"`
	Pincode            string         `gorm:"not null;size:10"`
	TestPackageID      uuid.UUID      `gorm:"type:uuid;index;not null"`
	AppointmentDate    time.Time      `gorm:"not null;index"`
	AppointmentTime    string         `gorm:"not null;size:20"`
	PrintedReport      bool           `gorm:"not null;default:false"`
	ContactPreferences datatypes.JSON `gorm:"type:jsonb;not null"`
	Status             string         `gorm:"not null;size:30;index"`
	StatusNote         string         `gorm:"size:500"`
	Version            int64          `gorm:"not null;default:1"`
	CreatedAt          time.Time      `gorm:"not null"`
	UpdatedAt          time.Time      `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the GORM-based implementation of BookingRepository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// conn returns the transaction bound to ctx when one is in flight, so that
// booking and notification writes belonging to one transition commit as a
// single unit.
func (r *GormBookingRepository) conn(ctx context.Context) *gorm.DB {
	return database.FromContext(ctx, r.db).WithContext(ctx)
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.conn(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", id.String())
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model)
}

// FindByNumber retrieves a booking by its booking number.
func (r *GormBookingRepository) FindByNumber(ctx context.Context, number string) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.conn(ctx).Where("booking_number = ?", number).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", number)
		}
		return nil, fmt.Errorf("failed to find booking by number: %w", err)
	}
	return toDomainBooking(&model)
}

// List retrieves bookings matching the filter, newest first.
func (r *GormBookingRepository) List(ctx context.Context, filter bookingDomain.ListFilter, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	query := r.conn(ctx).Model(&BookingModel{})
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	if filter.TestPackageID != uuid.Nil {
		query = query.Where("test_package_id = ?", filter.TestPackageID)
	}
	if !filter.DateFrom.IsZero() {
		query = query.Where("appointment_date >= ?", filter.DateFrom)
	}
	if !filter.DateTo.IsZero() {
		query = query.Where("appointment_date <= ?", filter.DateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	bookings := make([]*bookingDomain.Booking, len(models))
	for i, m := range models {
		bk, err := toDomainBooking(&m)
		if err != nil {
			return nil, 0, err
		}
		bookings[i] = bk
	}

	return bookings, total, nil
}

// CountByStatus returns booking counts grouped by status (admin).
func (r *GormBookingRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.conn(ctx).Model(&BookingModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// Save persists a new booking.
func (r *GormBookingRepository) Save(ctx context.Context, bk *bookingDomain.Booking) error {
	model, err := toBookingModel(bk)
	if err != nil {
		return fmt.Errorf("failed to convert booking to model: %w", err)
	}

	if err := r.conn(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save booking: %w", err)
	}
	return nil
}

// Update persists changes to an existing booking with optimistic locking.
func (r *GormBookingRepository) Update(ctx context.Context, bk *bookingDomain.Booking) error {
	model, err := toBookingModel(bk)
	if err != nil {
		return fmt.Errorf("failed to convert booking to model: %w", err)
	}

	// Only update if the version matches (current version - 1, since
	// IncrementVersion was called before the write).
	expectedVersion := bk.Version() - 1
	result := r.conn(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"status":      model.Status,
			"status_note": model.StatusNote,
			"version":     model.Version,
			"updated_at":  model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update booking: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return domain.NewConflictError("booking was modified by another transaction")
	}

	return nil
}

// --- Conversion Helpers ---

func toBookingModel(bk *bookingDomain.Booking) (*BookingModel, error) {
	prefsJSON, err := json.Marshal(bk.ContactPrefs())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal contact preferences: %w", err)
	}

	patient := bk.Patient()
	return &BookingModel{
		ID:                 bk.ID(),
		BookingNumber:      bk.BookingNumber(),
		PatientName:        patient.Name,
		Email:              patient.Email,
		Phone:              patient.Phone,
		Age:                patient.Age,
		Gender:             string(patient.Gender),
		Address:            patient.Address,
		Pincode:            patient.Pincode,
		TestPackageID:      bk.TestPackageID(),
		AppointmentDate:    bk.AppointmentDate(),
		AppointmentTime:    bk.AppointmentTime(),
		PrintedReport:      bk.PrintedReport(),
		ContactPreferences: datatypes.JSON(prefsJSON),
		Status:             string(bk.Status()),
		StatusNote:         bk.StatusNote(),
		Version:            bk.Version(),
		CreatedAt:          bk.CreatedAt(),
		UpdatedAt:          bk.UpdatedAt(),
	}, nil
}

func toDomainBooking(m *BookingModel) (*bookingDomain.Booking, error) {
	var prefs bookingDomain.ContactPreferences
	if len(m.ContactPreferences) > 0 {
		if err := json.Unmarshal(m.ContactPreferences, &prefs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal contact preferences: %w", err)
		}
	}

	status, err := bookingDomain.ParseBookingStatus(m.Status)
	if err != nil {
		return nil, err
	}

	patient := bookingDomain.PatientDetails{
		Name:    m.PatientName,
		Email:   m.Email,
		Phone:   m.Phone,
		Age:     m.Age,
		Gender:  bookingDomain.Gender(m.Gender),
		Address: m.Address,
		Pincode: m.Pincode,
	}

	return bookingDomain.ReconstructBooking(
		m.ID,
		m.BookingNumber,
		patient,
		m.TestPackageID,
		m.AppointmentDate,
		m.AppointmentTime,
		m.PrintedReport,
		prefs,
		status,
		m.StatusNote,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}
