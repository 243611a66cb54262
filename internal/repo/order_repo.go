package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"sort"

	"storefront/internal/apperr"
	"storefront/internal/models"

	"github.com/lib/pq"
)

const orderColumns = `id, user_id, delivery_addr_id, total_amount, status, create_time, order_type`

const itemColumns = `id, order_id, goods_id, goods_name, goods_price, count, item_amount`

type OrderRepo struct {
	db     *sql.DB
	policy StockPolicy
}

func NewOrderRepo(db *sql.DB, policy StockPolicy) *OrderRepo {
	if policy == "" {
		policy = StockDeduct
	}
	return &OrderRepo{db: db, policy: policy}
}

// Create writes the order and all of its items in one transaction, after
// running the stock guard for every goods it references. Nothing is persisted
// unless everything is.
func (r *OrderRepo) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	created := *order
	created.Items = append([]models.OrderItem(nil), order.Items...)

	err := InTx(ctx, r.db, func(tx *sql.Tx) error {
		for _, line := range stockLines(created.Items) {
			if err := reserveStock(ctx, tx, r.policy, line.goodsID, line.name, line.count); err != nil {
				return err
			}
		}

		query := `
			INSERT INTO order_info (user_id, delivery_addr_id, total_amount, status, order_type)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, create_time`
		err := tx.QueryRowContext(ctx, query,
			created.UserID, created.DeliveryAddrID, created.TotalAmount,
			created.Status, created.OrderType,
		).Scan(&created.ID, &created.CreateTime)
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		itemQuery := `
			INSERT INTO order_item (order_id, goods_id, goods_name, goods_price, count, item_amount)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id`
		for i := range created.Items {
			item := &created.Items[i]
			item.OrderID = created.ID
			err := tx.QueryRowContext(ctx, itemQuery,
				item.OrderID, item.GoodsID, item.GoodsName, item.GoodsPrice,
				item.Count, item.ItemAmount,
			).Scan(&item.ID)
			if err != nil {
				return fmt.Errorf("insert order item (goods %d): %w", item.GoodsID, err)
			}
		}
		return nil
	})
	if isOutOfRange(err) {
		return nil, apperr.InvalidInput("order value is out of range")
	}
	if err != nil {
		if !errors.Is(err, apperr.ErrInvalidInput) {
			log.Printf("orders: create for user %d: %v", order.UserID, err)
		}
		return nil, err
	}
	return &created, nil
}

func (r *OrderRepo) GetByID(ctx context.Context, id int64) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM order_info WHERE id = $1`
	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("order not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get order %d: %w", id, err)
	}

	order.Items, err = r.ListItemsByOrder(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	return order, nil
}

// ListByUser returns the user's orders, newest first, with items loaded.
func (r *OrderRepo) ListByUser(ctx context.Context, userID int64) ([]models.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM order_info
		WHERE user_id = $1
		ORDER BY create_time DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders of user %d: %w", userID, err)
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			log.Printf("orders: scan: %v", err)
			return nil, err
		}
		orders = append(orders, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	// одним запросом подтягиваем позиции всех заказов
	ids := make([]int64, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
	}
	items, err := r.queryItems(ctx,
		`SELECT `+itemColumns+` FROM order_item WHERE order_id = ANY($1) ORDER BY id`,
		pq.Array(ids))
	if err != nil {
		return nil, err
	}
	byOrder := make(map[int64][]models.OrderItem, len(orders))
	for _, item := range items {
		byOrder[item.OrderID] = append(byOrder[item.OrderID], item)
	}
	for i := range orders {
		orders[i].Items = byOrder[orders[i].ID]
		if orders[i].Items == nil {
			orders[i].Items = []models.OrderItem{}
		}
	}
	return orders, nil
}

func (r *OrderRepo) ListItemsByOrder(ctx context.Context, orderID int64) ([]models.OrderItem, error) {
	return r.queryItems(ctx,
		`SELECT `+itemColumns+` FROM order_item WHERE order_id = $1 ORDER BY id`, orderID)
}

func (r *OrderRepo) queryItems(ctx context.Context, query string, args ...any) ([]models.OrderItem, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()

	items := []models.OrderItem{}
	for rows.Next() {
		var item models.OrderItem
		err := rows.Scan(
			&item.ID, &item.OrderID, &item.GoodsID, &item.GoodsName,
			&item.GoodsPrice, &item.Count, &item.ItemAmount,
		)
		if err != nil {
			log.Printf("orders: scan item: %v", err)
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func scanOrder(row rowScanner) (*models.Order, error) {
	var o models.Order
	err := row.Scan(
		&o.ID, &o.UserID, &o.DeliveryAddrID, &o.TotalAmount,
		&o.Status, &o.CreateTime, &o.OrderType,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

type stockLine struct {
	goodsID int64
	name    string
	count   int
}

// stockLines sums the requested count per goods and orders the result by
// goods id, so concurrent transactions take row locks in the same order.
func stockLines(items []models.OrderItem) []stockLine {
	idx := make(map[int64]int, len(items))
	var lines []stockLine
	for _, item := range items {
		if i, ok := idx[item.GoodsID]; ok {
			lines[i].count += item.Count
			continue
		}
		idx[item.GoodsID] = len(lines)
		lines = append(lines, stockLine{goodsID: item.GoodsID, name: item.GoodsName, count: item.Count})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].goodsID < lines[j].goodsID })
	return lines
}
