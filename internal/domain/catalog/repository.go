package catalog

import (
	"context"

	"github.com/google/uuid"
)

// PackageRepository defines the persistence contract for the test catalog.
type PackageRepository interface {
	// FindByID retrieves a package by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*TestPackage, error)

	// ListActive retrieves bookable packages ordered by name.
	ListActive(ctx context.Context) ([]*TestPackage, error)

	// ListAll retrieves every package, active or not, ordered by name.
	ListAll(ctx context.Context) ([]*TestPackage, error)

	// Save persists a new package.
	Save(ctx context.Context, pkg *TestPackage) error

	// Update persists changes to an existing package.
	Update(ctx context.Context, pkg *TestPackage) error
}
