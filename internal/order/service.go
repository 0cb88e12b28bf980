package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dinartr/storefront/internal/datastore"
)

var allowedTransitions = map[Status]map[Status]bool{
	StatusPending: {
		StatusProcessing: true,
		StatusCompleted:  true,
	},
	StatusProcessing: {
		StatusCompleted: true,
	},
	StatusCompleted: {
		StatusProcessing: true,
	},
}

var (
	ErrOrderNotFound           = errors.New("order not found")
	ErrUnknownStatus           = errors.New("unknown order status")
	ErrInvalidStatusTransition = errors.New("invalid order status transition")
)

const placeOrderFallbackMessage = "Error placing order"

type Service interface {
	// PlaceOrder stores sub as a new pending order. It never fails with an
	// error value or a panic; failures come back as a Result.
	PlaceOrder(ctx context.Context, sub Submission) Result
	ListOrders(ctx context.Context) ([]Order, error)
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, newStatus Status) error
	DeleteOrder(ctx context.Context, id uuid.UUID) error
}

type service struct {
	gw    datastore.Gateway
	newID func() (uuid.UUID, error)
}

// NewService builds the order service on gw. A nil gateway means the
// persistence service is not configured; every call then reports so.
func NewService(gw datastore.Gateway) Service {
	return &service{gw: gw, newID: uuid.NewV4}
}

func (s *service) PlaceOrder(ctx context.Context, sub Submission) (res Result) {
	defer func() {
		if p := recover(); p != nil {
			log.Error().Interface("panic_value", p).Msg("service: panic recovered while placing order")
			res = Failed(placeOrderFallbackMessage)
		}
	}()

	if s.gw == nil {
		return Failed(datastore.ErrNotConfigured.Error())
	}

	id, err := s.newID()
	if err != nil {
		log.Error().Err(err).Msg("service: failed to generate order id")
		return Failed(placeOrderFallbackMessage)
	}

	record := datastore.Record{
		"id":               id,
		"customer_name":    sub.CustomerName,
		"customer_email":   sub.CustomerEmail,
		"customer_phone":   sub.CustomerPhone,
		"shipping_address": sub.ShippingAddress,
		"notes":            sub.Notes,
		"items":            Items(sub.Items),
		"total":            sub.Total,
		"status":           StatusPending,
	}

	if err := s.gw.Insert(ctx, datastore.TableOrders, record); err != nil {
		log.Error().Err(err).Stringer("order_id", id).Msg("service: failed to insert order")
		msg := err.Error()
		if msg == "" {
			msg = placeOrderFallbackMessage
		}
		return Failed(msg)
	}

	log.Info().Stringer("order_id", id).Int("items", len(sub.Items)).Str("total", sub.Total.String()).Msg("service: order placed")
	return Result{OK: true, ID: id.String()}
}

func (s *service) ListOrders(ctx context.Context) ([]Order, error) {
	if s.gw == nil {
		return nil, datastore.ErrNotConfigured
	}

	orders := make([]Order, 0)
	err := s.gw.Select(ctx, datastore.TableOrders, datastore.Query{OrderBy: datastore.NewestFirst}, &orders)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list orders")
		return nil, fmt.Errorf("service: failed to list orders: %w", err)
	}
	return orders, nil
}

func (s *service) UpdateOrderStatus(ctx context.Context, id uuid.UUID, newStatus Status) error {
	if s.gw == nil {
		return datastore.ErrNotConfigured
	}
	if !newStatus.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, newStatus)
	}

	var current Order
	err := s.gw.Get(ctx, datastore.TableOrders, datastore.Query{
		Columns: []string{"id", "status"},
		Where:   []datastore.Filter{datastore.Eq("id", id)},
	}, &current)
	if err != nil {
		if errors.Is(err, datastore.ErrNotFound) {
			log.Warn().Stringer("order_id", id).Stringer("new_status", newStatus).Msg("service: order not found, cannot update status")
			return ErrOrderNotFound
		}
		log.Error().Err(err).Stringer("order_id", id).Msg("service: failed to get order for status update")
		return fmt.Errorf("service: failed to get order for status update: %w", err)
	}

	if current.Status == newStatus {
		log.Info().Stringer("order_id", id).Stringer("status", newStatus).Msg("service: order status is already the same, no update needed")
		return nil
	}

	if !allowedTransitions[current.Status][newStatus] {
		log.Warn().
			Stringer("order_id", id).
			Stringer("current_status", current.Status).
			Stringer("new_status", newStatus).
			Msg("service: invalid status transition attempt")
		return fmt.Errorf("%w: from %s to %s", ErrInvalidStatusTransition, current.Status, newStatus)
	}

	affected, err := s.gw.Update(ctx, datastore.TableOrders,
		datastore.Record{"status": newStatus},
		datastore.Eq("id", id))
	if err != nil {
		log.Error().Err(err).Stringer("order_id", id).Stringer("new_status", newStatus).Msg("service: failed to update order status")
		return fmt.Errorf("service: failed to update order status: %w", err)
	}
	if affected == 0 {
		return ErrOrderNotFound
	}

	log.Info().Stringer("order_id", id).Stringer("old_status", current.Status).Stringer("new_status", newStatus).Msg("service: order status updated")
	return nil
}

func (s *service) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	if s.gw == nil {
		return datastore.ErrNotConfigured
	}

	affected, err := s.gw.Delete(ctx, datastore.TableOrders, datastore.Eq("id", id))
	if err != nil {
		log.Error().Err(err).Stringer("order_id", id).Msg("service: failed to delete order")
		return fmt.Errorf("service: failed to delete order: %w", err)
	}
	if affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}
