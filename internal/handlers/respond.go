package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"storefront/internal/apperr"
	"storefront/internal/models"

	"github.com/shopspring/decimal"
)

// maxBodyBytes caps every JSON request body.
const maxBodyBytes = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperr.InvalidInput("request body must be at most %d bytes", maxBodyBytes)
		}
		return apperr.InvalidInput("invalid json")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("http: encode response: %v", err)
	}
}

type errorResponse struct {
	Detail string `json:"detail"`
}

// writeError maps an error kind to its status code. Unknown errors are logged
// and answered with a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, apperr.ErrAlreadyExists):
		code = http.StatusConflict
	case errors.Is(err, apperr.ErrInvalidInput):
		code = http.StatusBadRequest
	case errors.Is(err, apperr.ErrUnauthorized):
		w.Header().Set("WWW-Authenticate", "Bearer")
		code = http.StatusUnauthorized
	}

	detail := apperr.Message(err)
	if code == http.StatusInternalServerError || detail == "" {
		log.Printf("http: %s %s [%s]: %v", r.Method, r.URL.Path, requestIDFrom(r.Context()), err)
		detail = http.StatusText(code)
	}
	writeJSON(w, code, errorResponse{Detail: detail})
}

// money renders an amount as a JSON number with two decimals.
func money(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}

type goodsResponse struct {
	ID     int64       `json:"id"`
	Name   string      `json:"name"`
	Title  *string     `json:"title"`
	Img    *string     `json:"img"`
	Detail *string     `json:"detail"`
	Price  json.Number `json:"price"`
	Stock  int         `json:"stock"`
}

func newGoodsResponse(g *models.Goods) goodsResponse {
	return goodsResponse{
		ID:     g.ID,
		Name:   g.Name,
		Title:  g.Title,
		Img:    g.Img,
		Detail: g.Detail,
		Price:  money(g.Price),
		Stock:  g.Stock,
	}
}

type orderItemResponse struct {
	ID         int64       `json:"id"`
	GoodsID    int64       `json:"goods_id"`
	GoodsName  string      `json:"goods_name"`
	GoodsPrice json.Number `json:"goods_price"`
	Count      int         `json:"count"`
	ItemAmount json.Number `json:"item_amount"`
}

type orderResponse struct {
	ID             int64               `json:"id"`
	UserID         int64               `json:"user_id"`
	DeliveryAddrID int64               `json:"delivery_addr_id"`
	TotalAmount    json.Number         `json:"total_amount"`
	Status         int                 `json:"status"`
	CreateTime     time.Time           `json:"create_time"`
	OrderType      int                 `json:"order_type"`
	Items          []orderItemResponse `json:"items"`
}

func newOrderResponse(o *models.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, orderItemResponse{
			ID:         item.ID,
			GoodsID:    item.GoodsID,
			GoodsName:  item.GoodsName,
			GoodsPrice: money(item.GoodsPrice),
			Count:      item.Count,
			ItemAmount: money(item.ItemAmount),
		})
	}
	return orderResponse{
		ID:             o.ID,
		UserID:         o.UserID,
		DeliveryAddrID: o.DeliveryAddrID,
		TotalAmount:    money(o.TotalAmount),
		Status:         o.Status,
		CreateTime:     o.CreateTime,
		OrderType:      o.OrderType,
		Items:          items,
	}
}
