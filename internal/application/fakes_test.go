package application_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	bookingDomain "github.com/CuraLab-Diagnostics/service-booking/internal/domain/booking"
	"github.com/CuraLab-Diagnostics/service-booking/internal/domain/catalog"
	notificationDomain "github.com/CuraLab-Diagnostics/service-booking/internal/domain/notification"
	"github.com/CuraLab-Diagnostics/service-booking/pkg/domain"
)

// passthroughTx is a Transactor that runs the function directly. The fakes
// write in-place, so there is nothing to commit or roll back.
func passthroughTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

// fakeBookingRepo is an in-memory BookingRepository with the same optimistic
// locking behavior as the real one: an Update only lands when the stored
// version matches the version the caller read.
type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*bookingDomain.Booking

	// staleReads forces the next N FindByID calls to return a snapshot
	// taken before any updates, simulating a concurrent reader.
	staleReads int
	snapshots  map[uuid.UUID]*bookingDomain.Booking
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{
		bookings:  make(map[uuid.UUID]*bookingDomain.Booking),
		snapshots: make(map[uuid.UUID]*bookingDomain.Booking),
	}
}

func cloneBooking(bk *bookingDomain.Booking) *bookingDomain.Booking {
	return bookingDomain.ReconstructBooking(
		bk.ID(),
		bk.BookingNumber(),
		bk.Patient(),
		bk.TestPackageID(),
		bk.AppointmentDate(),
		bk.AppointmentTime(),
		bk.PrintedReport(),
		bk.ContactPrefs(),
		bk.Status(),
		bk.StatusNote(),
		bk.Version(),
		bk.CreatedAt(),
		bk.UpdatedAt(),
	)
}

func (r *fakeBookingRepo) FindByID(_ context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.staleReads > 0 {
		r.staleReads--
		if snap, ok := r.snapshots[id]; ok {
			return cloneBooking(snap), nil
		}
	}
	bk, ok := r.bookings[id]
	if !ok {
		return nil, domain.NewNotFoundError("booking", id.String())
	}
	return cloneBooking(bk), nil
}

func (r *fakeBookingRepo) FindByNumber(_ context.Context, number string) (*bookingDomain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, bk := range r.bookings {
		if bk.BookingNumber() == number {
			return cloneBooking(bk), nil
		}
	}
	return nil, domain.NewNotFoundError("booking", number)
}

func (r *fakeBookingRepo) List(_ context.Context, filter bookingDomain.ListFilter, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []*bookingDomain.Booking
	for _, bk := range r.bookings {
		if filter.Status != "" && bk.Status() != filter.Status {
			continue
		}
		if filter.TestPackageID != uuid.Nil && bk.TestPackageID() != filter.TestPackageID {
			continue
		}
		matched = append(matched, cloneBooking(bk))
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt().After(matched[j].CreatedAt())
	})
	total := int64(len(matched))
	start := (page - 1) * limit
	if start > len(matched) {
		start = len(matched)
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (r *fakeBookingRepo) CountByStatus(_ context.Context) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[string]int64)
	for _, bk := range r.bookings {
		counts[string(bk.Status())]++
	}
	return counts, nil
}

func (r *fakeBookingRepo) Save(_ context.Context, bk *bookingDomain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bookings[bk.ID()] = cloneBooking(bk)
	r.snapshots[bk.ID()] = cloneBooking(bk)
	return nil
}

func (r *fakeBookingRepo) Update(_ context.Context, bk *bookingDomain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.bookings[bk.ID()]
	if !ok {
		return domain.NewNotFoundError("booking", bk.ID().String())
	}
	if stored.Version() != bk.Version()-1 {
		return domain.NewConflictError("booking was modified by another transaction")
	}
	r.bookings[bk.ID()] = cloneBooking(bk)
	return nil
}

// stored returns the current persisted state of a booking.
func (r *fakeBookingRepo) stored(id uuid.UUID) *bookingDomain.Booking {
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneBooking(r.bookings[id])
}

// fakeNotificationRepo is an in-memory NotificationRepository.
type fakeNotificationRepo struct {
	mu            sync.Mutex
	notifications map[uuid.UUID]*notificationDomain.Notification
	saveErr       error
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{notifications: make(map[uuid.UUID]*notificationDomain.Notification)}
}

func cloneNotification(n *notificationDomain.Notification) *notificationDomain.Notification {
	return notificationDomain.Reconstruct(
		n.ID(),
		n.BookingID(),
		n.Message(),
		n.WorkflowStatus(),
		n.ReadByAdmin(),
		n.ReadByUser(),
		n.CreatedAt(),
		n.UpdatedAt(),
	)
}

func (r *fakeNotificationRepo) FindByID(_ context.Context, id uuid.UUID) (*notificationDomain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.notifications[id]
	if !ok {
		return nil, domain.NewNotFoundError("notification", id.String())
	}
	return cloneNotification(n), nil
}

func (r *fakeNotificationRepo) FindByBookingID(_ context.Context, bookingID uuid.UUID) (*notificationDomain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notifications {
		if n.BookingID() == bookingID {
			return cloneNotification(n), nil
		}
	}
	return nil, domain.NewNotFoundError("notification for booking", bookingID.String())
}

func (r *fakeNotificationRepo) ListUnread(_ context.Context, role string, page, limit int) ([]*notificationDomain.Notification, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []*notificationDomain.Notification
	for _, n := range r.notifications {
		if !n.IsReadBy(role) {
			matched = append(matched, cloneNotification(n))
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt().After(matched[j].CreatedAt())
	})
	total := int64(len(matched))
	start := (page - 1) * limit
	if start > len(matched) {
		start = len(matched)
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (r *fakeNotificationRepo) CountUnread(_ context.Context, role string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, n := range r.notifications {
		if !n.IsReadBy(role) {
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepo) Save(_ context.Context, n *notificationDomain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.notifications[n.ID()] = cloneNotification(n)
	return nil
}

func (r *fakeNotificationRepo) Update(_ context.Context, n *notificationDomain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.notifications[n.ID()]; !ok {
		return domain.NewNotFoundError("notification", n.ID().String())
	}
	r.notifications[n.ID()] = cloneNotification(n)
	return nil
}

// storedForBooking returns the persisted notification linked to a booking.
func (r *fakeNotificationRepo) storedForBooking(bookingID uuid.UUID) *notificationDomain.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notifications {
		if n.BookingID() == bookingID {
			return cloneNotification(n)
		}
	}
	return nil
}

// fakePackageRepo is an in-memory PackageRepository.
type fakePackageRepo struct {
	mu       sync.Mutex
	packages map[uuid.UUID]*catalog.TestPackage
}

func newFakePackageRepo() *fakePackageRepo {
	return &fakePackageRepo{packages: make(map[uuid.UUID]*catalog.TestPackage)}
}

func (r *fakePackageRepo) seed(name string, priceCents int64) *catalog.TestPackage {
	pkg, _ := catalog.NewTestPackage(name, "", priceCents, nil)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.packages[pkg.ID()] = pkg
	return pkg
}

func (r *fakePackageRepo) FindByID(_ context.Context, id uuid.UUID) (*catalog.TestPackage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pkg, ok := r.packages[id]
	if !ok {
		return nil, domain.NewNotFoundError("test package", id.String())
	}
	return pkg, nil
}

func (r *fakePackageRepo) ListActive(_ context.Context) ([]*catalog.TestPackage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var active []*catalog.TestPackage
	for _, pkg := range r.packages {
		if pkg.Active() {
			active = append(active, pkg)
		}
	}
	return active, nil
}

func (r *fakePackageRepo) ListAll(_ context.Context) ([]*catalog.TestPackage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]*catalog.TestPackage, 0, len(r.packages))
	for _, pkg := range r.packages {
		all = append(all, pkg)
	}
	return all, nil
}

func (r *fakePackageRepo) Save(_ context.Context, pkg *catalog.TestPackage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.packages[pkg.ID()] = pkg
	return nil
}

func (r *fakePackageRepo) Update(_ context.Context, pkg *catalog.TestPackage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.packages[pkg.ID()]; !ok {
		return domain.NewNotFoundError("test package", pkg.ID().String())
	}
	r.packages[pkg.ID()] = pkg
	return nil
}

// appointmentIn returns a UTC timestamp the given number of days ahead,
// handy for scheduling test bookings.
func appointmentIn(days int) time.Time {
	return time.Now().UTC().AddDate(0, 0, days)
}
