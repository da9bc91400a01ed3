// Package option carries composable query modifiers for the generic
// repository. Each option maps onto one gorm chain call so services can
// describe lookups without touching query syntax.
package option

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type QueryOption interface {
	Apply(*gorm.DB) *gorm.DB
}

type queryOptionFunc func(*gorm.DB) *gorm.DB

func (f queryOptionFunc) Apply(stmt *gorm.DB) *gorm.DB {
	return f(stmt)
}

func Where(query any, args ...any) QueryOption {
	return queryOptionFunc(func(stmt *gorm.DB) *gorm.DB {
		return stmt.Where(query, args...)
	})
}

func OrderBy(expr string) QueryOption {
	return queryOptionFunc(func(stmt *gorm.DB) *gorm.DB {
		return stmt.Order(expr)
	})
}

func Joins(query string, args ...any) QueryOption {
	return queryOptionFunc(func(stmt *gorm.DB) *gorm.DB {
		return stmt.Joins(query, args...)
	})
}

func Preload(name string) QueryOption {
	return queryOptionFunc(func(stmt *gorm.DB) *gorm.DB {
		return stmt.Preload(name)
	})
}

// LockForUpdate holds a pessimistic row lock for the lifetime of the
// enclosing transaction. Callers should gate it on db.SupportsRowLocking.
func LockForUpdate() QueryOption {
	return queryOptionFunc(func(stmt *gorm.DB) *gorm.DB {
		return stmt.Clauses(clause.Locking{Strength: "UPDATE"})
	})
}
