package database

import (
	"context"

	"gorm.io/gorm"
)

type txKey struct{}

// Transaction runs fn inside a database transaction. The transaction handle
// is carried in the context so that repositories participating in the same
// unit of work pick it up via FromContext. Nested calls reuse the outer
// transaction.
func Transaction(ctx context.Context, db *gorm.DB, fn func(txCtx context.Context) error) error {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok && tx != nil {
		return fn(ctx)
	}
	return db.Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// FromContext returns the transaction bound to ctx, or fallback when no
// transaction is in flight.
func FromContext(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok && tx != nil {
		return tx
	}
	return fallback
}
