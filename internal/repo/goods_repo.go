package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"storefront/internal/apperr"
	"storefront/internal/models"
)

// StockPolicy decides what the order transaction does with goods stock.
type StockPolicy string

const (
	// StockDeduct decrements stock with a conditional update, so stock can
	// never go negative and concurrent orders cannot oversell.
	StockDeduct StockPolicy = "deduct"
	// StockValidate locks the goods row and checks the quantity but leaves
	// stock untouched.
	StockValidate StockPolicy = "validate"
)

const goodsColumns = `id, name, title, img, detail, price, stock`

type GoodsRepo struct {
	db *sql.DB
}

func NewGoodsRepo(db *sql.DB) *GoodsRepo {
	return &GoodsRepo{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGoods(row rowScanner) (*models.Goods, error) {
	var g models.Goods
	err := row.Scan(&g.ID, &g.Name, &g.Title, &g.Img, &g.Detail, &g.Price, &g.Stock)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *GoodsRepo) Create(ctx context.Context, in *models.GoodsCreate) (*models.Goods, error) {
	query := `
		INSERT INTO goods (name, title, img, detail, price, stock)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + goodsColumns
	g, err := scanGoods(r.db.QueryRowContext(ctx, query,
		in.Name, in.Title, in.Img, in.Detail, in.Price, in.Stock))
	switch {
	case isUniqueViolation(err):
		return nil, apperr.AlreadyExists("goods %q already exists", in.Name)
	case isCheckViolation(err):
		return nil, apperr.InvalidInput("price and stock must not be negative")
	case isOutOfRange(err):
		return nil, apperr.InvalidInput("goods value is too long or out of range")
	case err != nil:
		log.Printf("goods: create %q: %v", in.Name, err)
		return nil, fmt.Errorf("create goods: %w", err)
	}
	return g, nil
}

func (r *GoodsRepo) GetByID(ctx context.Context, id int64) (*models.Goods, error) {
	query := `SELECT ` + goodsColumns + ` FROM goods WHERE id = $1`
	g, err := scanGoods(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("goods with id %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get goods %d: %w", id, err)
	}
	return g, nil
}

func (r *GoodsRepo) List(ctx context.Context) ([]models.Goods, error) {
	query := `SELECT ` + goodsColumns + ` FROM goods ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list goods: %w", err)
	}
	defer rows.Close()

	goods := []models.Goods{}
	for rows.Next() {
		g, err := scanGoods(rows)
		if err != nil {
			log.Printf("goods: scan: %v", err)
			return nil, err
		}
		goods = append(goods, *g)
	}
	return goods, rows.Err()
}

// Update sets only the fields present in in and returns the updated row.
func (r *GoodsRepo) Update(ctx context.Context, id int64, in *models.GoodsUpdate) (*models.Goods, error) {
	if in.Empty() {
		return nil, apperr.InvalidInput("no fields to update")
	}

	var (
		sets []string
		args []any
	)
	set := func(column string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if in.Name != nil {
		set("name", *in.Name)
	}
	if in.Title != nil {
		set("title", *in.Title)
	}
	if in.Img != nil {
		set("img", *in.Img)
	}
	if in.Detail != nil {
		set("detail", *in.Detail)
	}
	if in.Price != nil {
		set("price", *in.Price)
	}
	if in.Stock != nil {
		set("stock", *in.Stock)
	}
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE goods SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), goodsColumns)
	g, err := scanGoods(r.db.QueryRowContext(ctx, query, args...))
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, apperr.NotFound("goods with id %d not found", id)
	case isUniqueViolation(err):
		return nil, apperr.AlreadyExists("goods with the same unique fields already exists")
	case isCheckViolation(err):
		return nil, apperr.InvalidInput("price and stock must not be negative")
	case isOutOfRange(err):
		return nil, apperr.InvalidInput("goods value is too long or out of range")
	case err != nil:
		log.Printf("goods: update %d: %v", id, err)
		return nil, fmt.Errorf("update goods %d: %w", id, err)
	}
	return g, nil
}

func (r *GoodsRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM goods WHERE id = $1`, id)
	if isForeignKeyViolation(err) {
		// order_item ссылается на товар с ON DELETE RESTRICT
		return apperr.InvalidInput("goods with id %d is referenced by orders", id)
	}
	if err != nil {
		log.Printf("goods: delete %d: %v", id, err)
		return fmt.Errorf("delete goods %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound("goods with id %d not found", id)
	}
	return nil
}

// reserveStock is the stock guard run inside the order transaction.
func reserveStock(ctx context.Context, tx DBTX, policy StockPolicy, goodsID int64, name string, count int) error {
	if policy == StockValidate {
		var stock int
		err := tx.QueryRowContext(ctx,
			`SELECT stock FROM goods WHERE id = $1 FOR UPDATE`, goodsID).Scan(&stock)
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.InvalidInput("goods with id %d not found", goodsID)
		}
		if err != nil {
			return fmt.Errorf("lock goods %d: %w", goodsID, err)
		}
		if stock < count {
			return apperr.InvalidInput("insufficient stock for goods '%s'", name)
		}
		return nil
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE goods SET stock = stock - $2 WHERE id = $1 AND stock >= $2`, goodsID, count)
	if err != nil {
		return fmt.Errorf("reserve goods %d: %w", goodsID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.InvalidInput("insufficient stock for goods '%s'", name)
	}
	return nil
}
