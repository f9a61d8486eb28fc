package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/CuraLab-Diagnostics/service-booking/internal/domain/catalog"
)

// CreatePackageRequest holds the data needed to add a catalog entry.
type CreatePackageRequest struct {
	Name          string `json:"name" binding:"required"`
	Description   string `json:"description"`
	PriceCents    int64  `json:"price_cents" binding:"required"`
	OldPriceCents *int64 `json:"old_price_cents"`
}

// UpdatePackageRequest holds the editable fields of a catalog entry.
type UpdatePackageRequest struct {
	Name          string `json:"name" binding:"required"`
	Description   string `json:"description"`
	PriceCents    int64  `json:"price_cents" binding:"required"`
	OldPriceCents *int64 `json:"old_price_cents"`
	Active        *bool  `json:"active"`
}

// TestPackageDTO is the response representation of a test package.
type TestPackageDTO struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	PriceCents    int64     `json:"price_cents"`
	OldPriceCents *int64    `json:"old_price_cents,omitempty"`
	Active        bool      `json:"active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// PackageService manages the test catalog.
type PackageService struct {
	packages catalog.PackageRepository
	logger   *zap.Logger
}

// NewPackageService creates a new PackageService.
func NewPackageService(packages catalog.PackageRepository, logger *zap.Logger) *PackageService {
	return &PackageService{packages: packages, logger: logger}
}

// CreatePackage adds a new test package to the catalog.
func (s *PackageService) CreatePackage(ctx context.Context, req CreatePackageRequest) (*TestPackageDTO, error) {
	pkg, err := catalog.NewTestPackage(req.Name, req.Description, req.PriceCents, req.OldPriceCents)
	if err != nil {
		return nil, err
	}

	if err := s.packages.Save(ctx, pkg); err != nil {
		return nil, err
	}

	result := toPackageDTO(pkg)
	return &result, nil
}

// UpdatePackage edits an existing test package.
func (s *PackageService) UpdatePackage(ctx context.Context, id uuid.UUID, req UpdatePackageRequest) (*TestPackageDTO, error) {
	pkg, err := s.packages.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := pkg.UpdateDetails(req.Name, req.Description, req.PriceCents, req.OldPriceCents); err != nil {
		return nil, err
	}
	if req.Active != nil {
		if *req.Active {
			pkg.Activate()
		} else {
			pkg.Deactivate()
		}
	}

	if err := s.packages.Update(ctx, pkg); err != nil {
		return nil, err
	}

	result := toPackageDTO(pkg)
	return &result, nil
}

// DeactivatePackage withdraws a package from booking.
func (s *PackageService) DeactivatePackage(ctx context.Context, id uuid.UUID) (*TestPackageDTO, error) {
	pkg, err := s.packages.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	pkg.Deactivate()
	if err := s.packages.Update(ctx, pkg); err != nil {
		return nil, err
	}

	result := toPackageDTO(pkg)
	return &result, nil
}

// GetPackage retrieves a single package by ID.
func (s *PackageService) GetPackage(ctx context.Context, id uuid.UUID) (*TestPackageDTO, error) {
	pkg, err := s.packages.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	result := toPackageDTO(pkg)
	return &result, nil
}

// ListPackages returns the catalog, restricted to bookable entries unless
// includeInactive is set (admin view).
func (s *PackageService) ListPackages(ctx context.Context, includeInactive bool) ([]TestPackageDTO, error) {
	var (
		packages []*catalog.TestPackage
		err      error
	)
	if includeInactive {
		packages, err = s.packages.ListAll(ctx)
	} else {
		packages, err = s.packages.ListActive(ctx)
	}
	if err != nil {
		return nil, err
	}

	dtos := make([]TestPackageDTO, len(packages))
	for i, pkg := range packages {
		dtos[i] = toPackageDTO(pkg)
	}
	return dtos, nil
}

func toPackageDTO(pkg *catalog.TestPackage) TestPackageDTO {
	return TestPackageDTO{
		ID:            pkg.ID(),
		Name:          pkg.Name(),
		Description:   pkg.Description(),
		PriceCents:    pkg.PriceCents(),
		OldPriceCents: pkg.OldPriceCents(),
		Active:        pkg.Active(),
		CreatedAt:     pkg.CreatedAt(),
		UpdatedAt:     pkg.UpdatedAt(),
	}
}
