// Package service holds the order workflow: cart validation, amount
// computation and the hand-off of the finished aggregate to the order store.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"storefront/internal/apperr"
	"storefront/internal/models"

	"github.com/shopspring/decimal"
)

// currencyPlaces is the precision of every stored amount (NUMERIC(10,2)).
const currencyPlaces = 2

// notifyTimeout bounds one admin notification. It is independent of the
// request that placed the order.
const notifyTimeout = 10 * time.Second

type GoodsStore interface {
	GetByID(ctx context.Context, id int64) (*models.Goods, error)
}

type OrderStore interface {
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	GetByID(ctx context.Context, id int64) (*models.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]models.Order, error)
}

type Notifier interface {
	OrderCreated(ctx context.Context, order *models.Order) error
}

type OrderService struct {
	goods    GoodsStore
	orders   OrderStore
	notifier Notifier

	notifyTimeout time.Duration
	pending       sync.WaitGroup
}

func NewOrderService(goods GoodsStore, orders OrderStore, notifier Notifier) *OrderService {
	return &OrderService{goods: goods, orders: orders, notifier: notifier, notifyTimeout: notifyTimeout}
}

// CreateOrder validates the cart against the catalog, prices every line and
// persists the order with its items in one store call.
func (s *OrderService) CreateOrder(ctx context.Context, userID int64, in *models.OrderCreate) (*models.Order, error) {
	if len(in.Items) == 0 {
		return nil, apperr.InvalidInput("order must contain at least one item")
	}

	total := decimal.Zero
	items := make([]models.OrderItem, 0, len(in.Items))
	for _, line := range in.Items {
		if line.Count <= 0 {
			return nil, apperr.InvalidInput("count for goods with id %d must be positive", line.GoodsID)
		}

		goods, err := s.goods.GetByID(ctx, line.GoodsID)
		if errors.Is(err, apperr.ErrNotFound) {
			// an unknown goods id is the client's mistake, not a missing order
			return nil, apperr.InvalidInput("goods with id %d not found", line.GoodsID)
		}
		if err != nil {
			return nil, fmt.Errorf("load goods %d: %w", line.GoodsID, err)
		}

		if goods.Stock < line.Count {
			return nil, apperr.InvalidInput("insufficient stock for goods '%s'", goods.Name)
		}

		amount := LineAmount(goods.Price, line.Count)
		total = total.Add(amount)
		items = append(items, models.OrderItem{
			GoodsID:    goods.ID,
			GoodsName:  goods.Name,
			GoodsPrice: goods.Price,
			Count:      line.Count,
			ItemAmount: amount,
		})
	}
	if total.GreaterThan(models.MaxAmount) {
		return nil, apperr.InvalidInput("order total must be at most %s", models.MaxAmount.StringFixed(currencyPlaces))
	}

	order, err := s.orders.Create(ctx, &models.Order{
		UserID:         userID,
		DeliveryAddrID: in.DeliveryAddrID,
		TotalAmount:    total,
		Status:         models.StatusPending,
		OrderType:      models.OrderTypeDefault,
		Items:          items,
	})
	if err != nil {
		return nil, err
	}
	log.Printf("orders: user %d created order %d, total %s", userID, order.ID, order.TotalAmount.StringFixed(currencyPlaces))

	if s.notifier != nil {
		s.pending.Add(1)
		go s.notify(context.WithoutCancel(ctx), *order)
	}
	return order, nil
}

// notify runs after the response is on its way: the order is committed and
// a failed notification only gets logged.
func (s *OrderService) notify(ctx context.Context, order models.Order) {
	defer s.pending.Done()
	ctx, cancel := context.WithTimeout(ctx, s.notifyTimeout)
	defer cancel()
	if err := s.notifier.OrderCreated(ctx, &order); err != nil {
		log.Printf("orders: notify about order %d: %v", order.ID, err)
	}
}

// Wait blocks until every notification started so far has finished.
func (s *OrderService) Wait() {
	s.pending.Wait()
}

func (s *OrderService) GetUserOrders(ctx context.Context, userID int64) ([]models.Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

// GetOrderDetails returns NotFound for orders owned by someone else, so a
// caller cannot learn that the order exists.
func (s *OrderService) GetOrderDetails(ctx context.Context, userID, orderID int64) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, apperr.NotFound("order not found")
	}
	return order, nil
}

// LineAmount is unit price times count at currency precision.
func LineAmount(price decimal.Decimal, count int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(count))).Round(currencyPlaces)
}
