// Package datastoretest provides a testify mock of datastore.Gateway.
package datastoretest

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/dinartr/storefront/internal/datastore"
)

type MockGateway struct {
	mock.Mock
}

var _ datastore.Gateway = (*MockGateway)(nil)

func (m *MockGateway) Select(ctx context.Context, table string, q datastore.Query, dest any) error {
	args := m.Called(ctx, table, q, dest)
	return args.Error(0)
}

func (m *MockGateway) Get(ctx context.Context, table string, q datastore.Query, dest any) error {
	args := m.Called(ctx, table, q, dest)
	return args.Error(0)
}

func (m *MockGateway) Insert(ctx context.Context, table string, record datastore.Record) error {
	args := m.Called(ctx, table, record)
	return args.Error(0)
}

func (m *MockGateway) Update(ctx context.Context, table string, patch datastore.Record, where ...datastore.Filter) (int64, error) {
	args := m.Called(ctx, table, patch, where)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockGateway) Delete(ctx context.Context, table string, where ...datastore.Filter) (int64, error) {
	args := m.Called(ctx, table, where)
	return args.Get(0).(int64), args.Error(1)
}
