package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/CuraLab-Diagnostics/service-booking/internal/domain/catalog"
	"github.com/CuraLab-Diagnostics/service-booking/pkg/database"
	"github.com/CuraLab-Diagnostics/service-booking/pkg/domain"
)

// TestPackageModel is the GORM model for the test_packages table.
type TestPackageModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name          string    `gorm:"not null;size:200;index"`
	Description   string    `gorm:"size:1000"`
	PriceCents    int64     `gorm:"not null"`
	OldPriceCents *int64    `gorm:""`
	Active        bool      `gorm:"not null;default:true;index"`
	CreatedAt     time.Time `gorm:"not null"`
	UpdatedAt     time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (TestPackageModel) TableName() string {
	return "test_packages"
}

// GormPackageRepository is the GORM-based implementation of PackageRepository.
type GormPackageRepository struct {
	db *gorm.DB
}

// NewGormPackageRepository creates a new GormPackageRepository.
func NewGormPackageRepository(db *gorm.DB) *GormPackageRepository {
	return &GormPackageRepository{db: db}
}

func (r *GormPackageRepository) conn(ctx context.Context) *gorm.DB {
	return database.FromContext(ctx, r.db).WithContext(ctx)
}

// FindByID retrieves a package by its unique identifier.
func (r *GormPackageRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.TestPackage, error) {
	var model TestPackageModel
	if err := r.conn(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("TestPackage", id.String())
		}
		return nil, fmt.Errorf("failed to find package by ID: %w", err)
	}
	return toDomainPackage(&model), nil
}

// ListActive retrieves bookable packages ordered by name.
func (r *GormPackageRepository) ListActive(ctx context.Context) ([]*catalog.TestPackage, error) {
	return r.list(ctx, true)
}

// ListAll retrieves every package ordered by name.
func (r *GormPackageRepository) ListAll(ctx context.Context) ([]*catalog.TestPackage, error) {
	return r.list(ctx, false)
}

func (r *GormPackageRepository) list(ctx context.Context, activeOnly bool) ([]*catalog.TestPackage, error) {
	query := r.conn(ctx).Model(&TestPackageModel{})
	if activeOnly {
		query = query.Where("active = ?", true)
	}

	var models []TestPackageModel
	if err := query.Order("name ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list packages: %w", err)
	}

	packages := make([]*catalog.TestPackage, len(models))
	for i, m := range models {
		packages[i] = toDomainPackage(&m)
	}
	return packages, nil
}

// Save persists a new package.
func (r *GormPackageRepository) Save(ctx context.Context, pkg *catalog.TestPackage) error {
	if err := r.conn(ctx).Create(toPackageModel(pkg)).Error; err != nil {
		return fmt.Errorf("failed to save package: %w", err)
	}
	return nil
}

// Update persists changes to an existing package.
func (r *GormPackageRepository) Update(ctx context.Context, pkg *catalog.TestPackage) error {
	model := toPackageModel(pkg)
	result := r.conn(ctx).
		Model(&TestPackageModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"name":            model.Name,
			"description":     model.Description,
			"price_cents":     model.PriceCents,
			"old_price_cents": model.OldPriceCents,
			"active":          model.Active,
			"updated_at":      model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update package: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("TestPackage", model.ID.String())
	}
	return nil
}

// --- Conversion Helpers ---

func toPackageModel(pkg *catalog.TestPackage) *TestPackageModel {
	return &TestPackageModel{
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

func toDomainPackage(m *TestPackageModel) *catalog.TestPackage {
	return catalog.Reconstruct(
		m.ID,
		m.Name,
		m.Description,
		m.PriceCents,
		m.OldPriceCents,
		m.Active,
		m.CreatedAt,
		m.UpdatedAt,
	)
}
