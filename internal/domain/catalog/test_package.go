package catalog

import (
	"time"

	"github.com/google/uuid"

	"github.com/CuraLab-Diagnostics/service-booking/pkg/domain"
)

// TestPackage is a bookable diagnostic test package in the catalog.
type TestPackage struct {
	id            uuid.UUID
	name          string
	description   string
	priceCents    int64
	oldPriceCents *int64
	active        bool
	createdAt     time.Time
	updatedAt     time.Time
}

// NewTestPackage creates an active test package with validated fields.
func NewTestPackage(name, description string, priceCents int64, oldPriceCents *int64) (*TestPackage, error) {
	if name == "" {
		return nil, domain.NewValidationError("package name is required")
	}
	if priceCents <= 0 {
		return nil, domain.NewValidationError("package price must be positive")
	}

	now := time.Now().UTC()
	return &TestPackage{
		id:            uuid.New(),
		name:          name,
		description:   description,
		priceCents:    priceCents,
		oldPriceCents: oldPriceCents,
		active:        true,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

// Reconstruct rebuilds a TestPackage from persistence data.
func Reconstruct(
	id uuid.UUID,
	name, description string,
	priceCents int64,
	oldPriceCents *int64,
	active bool,
	createdAt, updatedAt time.Time,
) *TestPackage {
	return &TestPackage{
		id:            id,
		name:          name,
		description:   description,
		priceCents:    priceCents,
		oldPriceCents: oldPriceCents,
		active:        active,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

// ID returns the package's unique identifier.
func (p *TestPackage) ID() uuid.UUID { return p.id }

// Name returns the package name.
func (p *TestPackage) Name() string { return p.name }

// Description returns the package description.
func (p *TestPackage) Description() string { return p.description }

// PriceCents returns the current price in cents.
func (p *TestPackage) PriceCents() int64 { return p.priceCents }

// OldPriceCents returns the pre-discount price, or nil when undiscounted.
func (p *TestPackage) OldPriceCents() *int64 { return p.oldPriceCents }

// Active returns whether the package can currently be booked.
func (p *TestPackage) Active() bool { return p.active }

// CreatedAt returns the creation timestamp.
func (p *TestPackage) CreatedAt() time.Time { return p.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (p *TestPackage) UpdatedAt() time.Time { return p.updatedAt }

// UpdateDetails changes the package's presentation and pricing fields.
func (p *TestPackage) UpdateDetails(name, description string, priceCents int64, oldPriceCents *int64) error {
	if name == "" {
		return domain.NewValidationError("package name is required")
	}
	if priceCents <= 0 {
		return domain.NewValidationError("package price must be positive")
	}
	p.name = name
	p.description = description
	p.priceCents = priceCents
	p.oldPriceCents = oldPriceCents
	p.updatedAt = time.Now().UTC()
	return nil
}

// Deactivate withdraws the package from booking without deleting history.
func (p *TestPackage) Deactivate() {
	p.active = false
	p.updatedAt = time.Now().UTC()
}

// Activate makes the package bookable again.
func (p *TestPackage) Activate() {
	p.active = true
	p.updatedAt = time.Now().UTC()
}
