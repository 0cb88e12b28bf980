package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dinartr/storefront/internal/datastore"
)

var (
	ErrNotFound        = errors.New("catalog entry not found")
	ErrSlugExists      = errors.New("service slug already exists")
	ErrUnknownCategory = errors.New("category does not exist")
)

type Service interface {
	ListProducts(ctx context.Context) ([]Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*Product, error)
	ListCategories(ctx context.Context) ([]Category, error)
	GetCategory(ctx context.Context, id uuid.UUID) (*CategoryPage, error)
	ListServices(ctx context.Context) ([]ServiceEntry, error)
	GetServiceBySlug(ctx context.Context, slug string) (*ServiceEntry, error)
	ListBanners(ctx context.Context) ([]Banner, error)

	CreateProduct(ctx context.Context, in ProductInput) error
	UpdateProduct(ctx context.Context, id uuid.UUID, in ProductInput) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	CreateCategory(ctx context.Context, in CategoryInput) error
	UpdateCategory(ctx context.Context, id uuid.UUID, in CategoryInput) error
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	CreateBanner(ctx context.Context, in BannerInput) error
	UpdateBanner(ctx context.Context, id uuid.UUID, in BannerInput) error
	DeleteBanner(ctx context.Context, id uuid.UUID) error
	CreateService(ctx context.Context, in ServiceInput) error
	UpdateService(ctx context.Context, id uuid.UUID, in ServiceInput) error
	DeleteService(ctx context.Context, id uuid.UUID) error
}

type service struct {
	gw datastore.Gateway
}

// NewService builds the catalog service on gw. A nil gateway makes every
// call fail with datastore.ErrNotConfigured.
func NewService(gw datastore.Gateway) Service {
	return &service{gw: gw}
}

func (s *service) ListProducts(ctx context.Context) ([]Product, error) {
	products := make([]Product, 0)
	if err := s.list(ctx, datastore.TableProducts, datastore.Query{OrderBy: datastore.NewestFirst}, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*Product, error) {
	var p Product
	if err := s.get(ctx, datastore.TableProducts, datastore.Eq("id", id), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *service) ListCategories(ctx context.Context) ([]Category, error) {
	categories := make([]Category, 0)
	if err := s.list(ctx, datastore.TableCategories, datastore.Query{OrderBy: datastore.NewestFirst}, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (s *service) GetCategory(ctx context.Context, id uuid.UUID) (*CategoryPage, error) {
	page := CategoryPage{Products: make([]Product, 0)}
	if err := s.get(ctx, datastore.TableCategories, datastore.Eq("id", id), &page.Category); err != nil {
		return nil, err
	}

	q := datastore.Query{
		Where:   []datastore.Filter{datastore.Eq("category_id", id)},
		OrderBy: datastore.NewestFirst,
	}
	if err := s.list(ctx, datastore.TableProducts, q, &page.Products); err != nil {
		return nil, err
	}
	return &page, nil
}

func (s *service) ListServices(ctx context.Context) ([]ServiceEntry, error) {
	services := make([]ServiceEntry, 0)
	if err := s.list(ctx, datastore.TableServices, datastore.Query{OrderBy: datastore.NewestFirst}, &services); err != nil {
		return nil, err
	}
	return services, nil
}

func (s *service) GetServiceBySlug(ctx context.Context, slug string) (*ServiceEntry, error) {
	var e ServiceEntry
	if err := s.get(ctx, datastore.TableServices, datastore.Eq("slug", slug), &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *service) ListBanners(ctx context.Context) ([]Banner, error) {
	banners := make([]Banner, 0)
	if err := s.list(ctx, datastore.TableBanners, datastore.Query{OrderBy: datastore.NewestFirst}, &banners); err != nil {
		return nil, err
	}
	return banners, nil
}

func (s *service) CreateProduct(ctx context.Context, in ProductInput) error {
	rec, err := in.record()
	if err != nil {
		return err
	}
	return s.create(ctx, datastore.TableProducts, rec)
}

func (s *service) UpdateProduct(ctx context.Context, id uuid.UUID, in ProductInput) error {
	rec, err := in.record()
	if err != nil {
		return err
	}
	return s.update(ctx, datastore.TableProducts, id, rec)
}

func (s *service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return s.remove(ctx, datastore.TableProducts, id)
}

func (s *service) CreateCategory(ctx context.Context, in CategoryInput) error {
	return s.create(ctx, datastore.TableCategories, in.record())
}

func (s *service) UpdateCategory(ctx context.Context, id uuid.UUID, in CategoryInput) error {
	return s.update(ctx, datastore.TableCategories, id, in.record())
}

func (s *service) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return s.remove(ctx, datastore.TableCategories, id)
}

func (s *service) CreateBanner(ctx context.Context, in BannerInput) error {
	return s.create(ctx, datastore.TableBanners, in.record())
}

func (s *service) UpdateBanner(ctx context.Context, id uuid.UUID, in BannerInput) error {
	return s.update(ctx, datastore.TableBanners, id, in.record())
}

func (s *service) DeleteBanner(ctx context.Context, id uuid.UUID) error {
	return s.remove(ctx, datastore.TableBanners, id)
}

func (s *service) CreateService(ctx context.Context, in ServiceInput) error {
	return s.create(ctx, datastore.TableServices, in.record())
}

func (s *service) UpdateService(ctx context.Context, id uuid.UUID, in ServiceInput) error {
	return s.update(ctx, datastore.TableServices, id, in.record())
}

func (s *service) DeleteService(ctx context.Context, id uuid.UUID) error {
	return s.remove(ctx, datastore.TableServices, id)
}

func (s *service) list(ctx context.Context, table string, q datastore.Query, dest any) error {
	if s.gw == nil {
		return datastore.ErrNotConfigured
	}
	if err := s.gw.Select(ctx, table, q, dest); err != nil {
		log.Error().Err(err).Str("table", table).Msg("service: failed to list catalog entries")
		return fmt.Errorf("service: failed to list %s: %w", table, err)
	}
	return nil
}

func (s *service) get(ctx context.Context, table string, by datastore.Filter, dest any) error {
	if s.gw == nil {
		return datastore.ErrNotConfigured
	}
	err := s.gw.Get(ctx, table, datastore.Query{Where: []datastore.Filter{by}}, dest)
	if err != nil {
		if errors.Is(err, datastore.ErrNotFound) {
			return ErrNotFound
		}
		log.Error().Err(err).Str("table", table).Str("column", by.Column).Msg("service: failed to get catalog entry")
		return fmt.Errorf("service: failed to get from %s: %w", table, err)
	}
	return nil
}

func (s *service) create(ctx context.Context, table string, rec datastore.Record) error {
	if s.gw == nil {
		return datastore.ErrNotConfigured
	}
	if err := s.gw.Insert(ctx, table, rec); err != nil {
		return translateWriteError(table, "create", err)
	}
	log.Info().Str("table", table).Msg("service: catalog entry created")
	return nil
}

func (s *service) update(ctx context.Context, table string, id uuid.UUID, rec datastore.Record) error {
	if s.gw == nil {
		return datastore.ErrNotConfigured
	}
	affected, err := s.gw.Update(ctx, table, rec, datastore.Eq("id", id))
	if err != nil {
		return translateWriteError(table, "update", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	log.Info().Str("table", table).Stringer("id", id).Msg("service: catalog entry updated")
	return nil
}

func (s *service) remove(ctx context.Context, table string, id uuid.UUID) error {
	if s.gw == nil {
		return datastore.ErrNotConfigured
	}
	affected, err := s.gw.Delete(ctx, table, datastore.Eq("id", id))
	if err != nil {
		return translateWriteError(table, "delete", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	log.Info().Str("table", table).Stringer("id", id).Msg("service: catalog entry deleted")
	return nil
}

func translateWriteError(table, op string, err error) error {
	switch {
	case errors.Is(err, datastore.ErrConflict) && table == datastore.TableServices:
		return ErrSlugExists
	case errors.Is(err, datastore.ErrInvalidReference):
		return ErrUnknownCategory
	}
	log.Error().Err(err).Str("table", table).Str("op", op).Msg("service: catalog write failed")
	return fmt.Errorf("service: failed to %s %s entry: %w", op, table, err)
}
