package models

import "github.com/shopspring/decimal"

type Goods struct {
	ID     int64           `json:"id"`
	Name   string          `json:"name"`
	Title  *string         `json:"title"`
	Img    *string         `json:"img"`
	Detail *string         `json:"detail"`
	Price  decimal.Decimal `json:"price"`
	Stock  int             `json:"stock"`
}

type GoodsCreate struct {
	Name   string          `json:"name"`
	Title  *string         `json:"title"`
	Img    *string         `json:"img"`
	Detail *string         `json:"detail"`
	Price  decimal.Decimal `json:"price"`
	Stock  int             `json:"stock"`
}

// GoodsUpdate is a partial update: nil fields are left untouched.
type GoodsUpdate struct {
	Name   *string          `json:"name"`
	Title  *string          `json:"title"`
	Img    *string          `json:"img"`
	Detail *string          `json:"detail"`
	Price  *decimal.Decimal `json:"price"`
	Stock  *int             `json:"stock"`
}

func (u *GoodsUpdate) Empty() bool {
	return u.Name == nil && u.Title == nil && u.Img == nil &&
		u.Detail == nil && u.Price == nil && u.Stock == nil
}
