package http_test

import (
	"context"
	"io"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dinartr/storefront/internal/blob"
	"github.com/dinartr/storefront/internal/catalog"
	"github.com/dinartr/storefront/internal/order"
)

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) PlaceOrder(ctx context.Context, sub order.Submission) order.Result {
	args := m.Called(ctx, sub)
	return args.Get(0).(order.Result)
}

func (m *MockOrderService) ListOrders(ctx context.Context) ([]order.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderService) UpdateOrderStatus(ctx context.Context, id uuid.UUID, newStatus order.Status) error {
	args := m.Called(ctx, id, newStatus)
	return args.Error(0)
}

func (m *MockOrderService) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockCatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockCatalogService) ListCategories(ctx context.Context) ([]catalog.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Category), args.Error(1)
}

func (m *MockCatalogService) GetCategory(ctx context.Context, id uuid.UUID) (*catalog.CategoryPage, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.CategoryPage), args.Error(1)
}

func (m *MockCatalogService) ListServices(ctx context.Context) ([]catalog.ServiceEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.ServiceEntry), args.Error(1)
}

func (m *MockCatalogService) GetServiceBySlug(ctx context.Context, slug string) (*catalog.ServiceEntry, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.ServiceEntry), args.Error(1)
}

func (m *MockCatalogService) ListBanners(ctx context.Context) ([]catalog.Banner, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Banner), args.Error(1)
}

func (m *MockCatalogService) CreateProduct(ctx context.Context, in catalog.ProductInput) error {
	return m.Called(ctx, in).Error(0)
}

func (m *MockCatalogService) UpdateProduct(ctx context.Context, id uuid.UUID, in catalog.ProductInput) error {
	return m.Called(ctx, id, in).Error(0)
}

func (m *MockCatalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCatalogService) CreateCategory(ctx context.Context, in catalog.CategoryInput) error {
	return m.Called(ctx, in).Error(0)
}

func (m *MockCatalogService) UpdateCategory(ctx context.Context, id uuid.UUID, in catalog.CategoryInput) error {
	return m.Called(ctx, id, in).Error(0)
}

func (m *MockCatalogService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCatalogService) CreateBanner(ctx context.Context, in catalog.BannerInput) error {
	return m.Called(ctx, in).Error(0)
}

func (m *MockCatalogService) UpdateBanner(ctx context.Context, id uuid.UUID, in catalog.BannerInput) error {
	return m.Called(ctx, id, in).Error(0)
}

func (m *MockCatalogService) DeleteBanner(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCatalogService) CreateService(ctx context.Context, in catalog.ServiceInput) error {
	return m.Called(ctx, in).Error(0)
}

func (m *MockCatalogService) UpdateService(ctx context.Context, id uuid.UUID, in catalog.ServiceInput) error {
	return m.Called(ctx, id, in).Error(0)
}

func (m *MockCatalogService) DeleteService(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type MockBlobStore struct {
	mock.Mock
}

func (m *MockBlobStore) Upload(ctx context.Context, folder, filename, contentType string, r io.Reader) (blob.Object, error) {
	data, _ := io.ReadAll(r)
	args := m.Called(ctx, folder, filename, contentType, string(data))
	return args.Get(0).(blob.Object), args.Error(1)
}
