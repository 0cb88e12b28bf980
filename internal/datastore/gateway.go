// Package datastore is the uniform table-like query interface every
// collection (products, categories, banners, services, orders) goes through.
package datastore

import (
	"context"
	"errors"
)

var (
	ErrNotConfigured    = errors.New("persistence service not configured")
	ErrNotFound         = errors.New("record not found")
	ErrConflict         = errors.New("record conflicts with an existing one")
	ErrInvalidReference = errors.New("record references a missing row")
)

// Collections known to the storefront.
const (
	TableProducts   = "products"
	TableCategories = "categories"
	TableBanners    = "banners"
	TableServices   = "services"
	TableOrders     = "orders"
)

// Record is a column -> value map used for inserts and update patches.
type Record map[string]any

// Filter is an equality condition on a single column.
type Filter struct {
	Column string
	Value  any
}

func Eq(column string, value any) Filter {
	return Filter{Column: column, Value: value}
}

type OrderBy struct {
	Column    string
	Ascending bool
}

// NewestFirst orders by created_at descending.
var NewestFirst = &OrderBy{Column: "created_at"}

type Query struct {
	Columns []string // empty selects every column
	Where   []Filter
	OrderBy *OrderBy
	Limit   int
}

type Gateway interface {
	// Select scans every matching row into dest, a pointer to a slice.
	Select(ctx context.Context, table string, q Query, dest any) error
	// Get scans the first matching row into dest or returns ErrNotFound.
	Get(ctx context.Context, table string, q Query, dest any) error
	Insert(ctx context.Context, table string, record Record) error
	Update(ctx context.Context, table string, patch Record, where ...Filter) (int64, error)
	Delete(ctx context.Context, table string, where ...Filter) (int64, error)
}
