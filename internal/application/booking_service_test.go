package application_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/CuraLab-Diagnostics/service-booking/internal/application"
	bookingDomain "github.com/CuraLab-Diagnostics/service-booking/internal/domain/booking"
	"github.com/CuraLab-Diagnostics/service-booking/pkg/domain"
)

type bookingFixture struct {
	service  *application.BookingService
	bookings *fakeBookingRepo
	ledger   *fakeNotificationRepo
	packages *fakePackageRepo
}

func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()
	bookings := newFakeBookingRepo()
	ledger := newFakeNotificationRepo()
	packages := newFakePackageRepo()
	service := application.NewBookingService(
		bookings, ledger, packages, passthroughTx, nil, zap.NewNop(),
	)
	return &bookingFixture{service: service, bookings: bookings, ledger: ledger, packages: packages}
}

func validCreateRequest(packageID uuid.UUID) application.CreateBookingRequest {
	return application.CreateBookingRequest{
		TestPackageID:   packageID,
		AppointmentDate: appointmentIn(3),
		AppointmentTime: "09:30 AM",
		PrintedReport:   true,
		ContactPrefs:    bookingDomain.ContactPreferences{SMS: true, WhatsApp: true},
		Name:            "Asha Verma",
		Email:           "asha.verma@example.com",
		Phone:           "9876543210",
		Age:             34,
		Gender:          "female",
		Address:         "14 Lakeview Road, Indiranagar",
		Pincode:         "560038",
	}
}

func TestCreateBooking(t *testing.T) {
	fx := newBookingFixture(t)
	pkg := fx.packages.seed("Full Body Checkup", 249900)

	result, err := fx.service.CreateBooking(context.Background(), validCreateRequest(pkg.ID()))
	require.NoError(t, err)

	assert.Equal(t, "pending", result.Booking.Status)
	assert.Equal(t, int64(1), result.Booking.Version)
	assert.NotEmpty(t, result.Booking.BookingNumber)

	// The ledger entry is created in the same unit of work, unread for
	// the admin and referencing the booking by number and package name.
	assert.Equal(t, result.Booking.ID, result.Notification.BookingID)
	assert.Equal(t, "pending", result.Notification.WorkflowStatus)
	assert.False(t, result.Notification.ReadByAdmin)
	assert.True(t, result.Notification.ReadByUser)
	expected := fmt.Sprintf("New booking %s received for Full Body Checkup", result.Booking.BookingNumber)
	assert.Equal(t, expected, result.Notification.Message)

	// Both records actually landed.
	stored := fx.bookings.stored(result.Booking.ID)
	assert.Equal(t, bookingDomain.StatusPending, stored.Status())
	assert.NotNil(t, fx.ledger.storedForBooking(result.Booking.ID))
}

func TestCreateBooking_ValidationReportsAllProblems(t *testing.T) {
	fx := newBookingFixture(t)

	req := validCreateRequest(uuid.New())
	req.Name = "A"
	req.Email = "nope"
	req.Pincode = "00000"

	_, err := fx.service.CreateBooking(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	assert.Contains(t, err.Error(), "patient name")
	assert.Contains(t, err.Error(), "email")
	assert.Contains(t, err.Error(), "pincode")

	// Nothing was persisted.
	count, err := fx.ledger.CountUnread(context.Background(), "admin")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestCreateBooking_DomainErrorKeepsItsKind(t *testing.T) {
	fx := newBookingFixture(t)
	fx.ledger.saveErr = domain.NewConflictError("a notification already exists for this booking")

	_, err := fx.service.CreateBooking(context.Background(), validCreateRequest(uuid.New()))
	require.Error(t, err)
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))
}

func TestCreateBooking_InfrastructureFailureIsUnavailable(t *testing.T) {
	fx := newBookingFixture(t)
	fx.ledger.saveErr = fmt.Errorf("write tcp: connection reset by peer")

	_, err := fx.service.CreateBooking(context.Background(), validCreateRequest(uuid.New()))
	require.Error(t, err)
	assert.Equal(t, domain.KindUnavailable, domain.KindOf(err))
}

func TestCreateBooking_UnknownPackageStillBooks(t *testing.T) {
	fx := newBookingFixture(t)

	// The package reference is not validated at booking time; the catalog
	// lookup only shapes the notification message.
	result, err := fx.service.CreateBooking(context.Background(), validCreateRequest(uuid.New()))
	require.NoError(t, err)
	assert.Contains(t, result.Notification.Message, "the selected test package")
}

func TestGetBooking(t *testing.T) {
	fx := newBookingFixture(t)
	created, err := fx.service.CreateBooking(context.Background(), validCreateRequest(uuid.New()))
	require.NoError(t, err)

	got, err := fx.service.GetBooking(context.Background(), created.Booking.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Booking.BookingNumber, got.BookingNumber)

	byNumber, err := fx.service.GetBookingByNumber(context.Background(), created.Booking.BookingNumber)
	require.NoError(t, err)
	assert.Equal(t, created.Booking.ID, byNumber.ID)
}

func TestGetBooking_NotFound(t *testing.T) {
	fx := newBookingFixture(t)

	_, err := fx.service.GetBooking(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestListBookings_FiltersByStatus(t *testing.T) {
	fx := newBookingFixture(t)
	pkg := fx.packages.seed("Thyroid Profile", 79900)

	for i := 0; i < 3; i++ {
		_, err := fx.service.CreateBooking(context.Background(), validCreateRequest(pkg.ID()))
		require.NoError(t, err)
	}

	page, err := fx.service.ListBookings(context.Background(), bookingDomain.ListFilter{
		Status: bookingDomain.StatusPending,
	}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Len(t, page.Items, 3)

	empty, err := fx.service.ListBookings(context.Background(), bookingDomain.ListFilter{
		Status: bookingDomain.StatusCompleted,
	}, 1, 10)
	require.NoError(t, err)
	assert.Zero(t, empty.Total)
}

func TestGetBookingStats(t *testing.T) {
	fx := newBookingFixture(t)
	for i := 0; i < 2; i++ {
		_, err := fx.service.CreateBooking(context.Background(), validCreateRequest(uuid.New()))
		require.NoError(t, err)
	}

	stats, err := fx.service.GetBookingStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalBookings)
	assert.Equal(t, int64(2), stats.ByStatus["pending"])
}
