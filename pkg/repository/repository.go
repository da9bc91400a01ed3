// Package repository provides generic gorm-backed data access shared by
// every entity collection. Business packages bind it to their own model
// type and never issue queries directly.
package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/coverbase/pkg/db/option"
	"gorm.io/gorm"
)

// Repository is the uniform contract over one entity collection.
//
// Lookups distinguish "no match" from storage failure: FindOne returns
// (nil, nil) when nothing matches and a non-nil error only when the
// query itself failed. Find returns an empty slice on no match.
type Repository[T any] interface {
	// WithTrx rebinds the repository to a transaction handle so a
	// multi-step operation sees and writes one consistent snapshot.
	WithTrx(tx *gorm.DB) Repository[T]

	Find(ctx context.Context, query *T, opts ...option.QueryOption) ([]*T, error)
	FindOne(ctx context.Context, query *T, opts ...option.QueryOption) (*T, error)
	Create(ctx context.Context, resource *T) error
	BatchCreate(ctx context.Context, resources []*T) error

	// Update applies fields to the record with the given id and returns
	// the re-read, authoritative post-update state. A nil record with a
	// nil error means the id did not resolve.
	Update(ctx context.Context, id snowflake.ID, fields any) (*T, error)

	Count(ctx context.Context, query *T) (int64, error)
}
