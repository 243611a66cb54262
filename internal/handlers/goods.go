package handlers

import (
	"math"
	"net/http"
	"strings"
	"unicode/utf8"

	"storefront/internal/apperr"
	"storefront/internal/models"

	"github.com/shopspring/decimal"
)

// column limits of the goods table
const (
	maxGoodsName  = 100
	maxGoodsTitle = 100
	maxGoodsImg   = 255
)

type goodsCreateRequest struct {
	Name   string           `json:"name"`
	Title  *string          `json:"title"`
	Img    *string          `json:"img"`
	Detail *string          `json:"detail"`
	Price  *decimal.Decimal `json:"price"`
	Stock  *int             `json:"stock"`
}

func (req *goodsCreateRequest) validate() (*models.GoodsCreate, error) {
	name := strings.TrimSpace(req.Name)
	switch {
	case name == "":
		return nil, apperr.InvalidInput("name is required")
	case req.Price == nil:
		return nil, apperr.InvalidInput("price is required")
	}
	price := req.Price.Round(2)
	if err := checkGoods(&name, req.Title, req.Img, &price, req.Stock); err != nil {
		return nil, err
	}

	in := &models.GoodsCreate{
		Name:   name,
		Title:  req.Title,
		Img:    req.Img,
		Detail: req.Detail,
		Price:  price,
	}
	if req.Stock != nil {
		in.Stock = *req.Stock
	}
	return in, nil
}

// checkGoods validates the fields that are set against the goods table.
// Price must already be rounded to cents.
func checkGoods(name, title, img *string, price *decimal.Decimal, stock *int) error {
	if name != nil && *name == "" {
		return apperr.InvalidInput("name must not be empty")
	}
	for _, f := range []struct {
		field string
		v     *string
		max   int
	}{
		{"name", name, maxGoodsName},
		{"title", title, maxGoodsTitle},
		{"img", img, maxGoodsImg},
	} {
		if f.v != nil && utf8.RuneCountInString(*f.v) > f.max {
			return apperr.InvalidInput("%s must be at most %d characters", f.field, f.max)
		}
	}
	if price != nil {
		if price.IsNegative() {
			return apperr.InvalidInput("price must not be negative")
		}
		if price.GreaterThan(models.MaxAmount) {
			return apperr.InvalidInput("price must be at most %s", models.MaxAmount.StringFixed(2))
		}
	}
	if stock != nil {
		if *stock < 0 {
			return apperr.InvalidInput("stock must not be negative")
		}
		if *stock > math.MaxInt32 {
			return apperr.InvalidInput("stock must be at most %d", math.MaxInt32)
		}
	}
	return nil
}

func (h *Handler) CreateGoods(w http.ResponseWriter, r *http.Request) {
	var req goodsCreateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	in, err := req.validate()
	if err != nil {
		writeError(w, r, err)
		return
	}

	goods, err := h.goods.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newGoodsResponse(goods))
}

func (h *Handler) ListGoods(w http.ResponseWriter, r *http.Request) {
	goods, err := h.goods.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp := make([]goodsResponse, 0, len(goods))
	for i := range goods {
		resp = append(resp, newGoodsResponse(&goods[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) GetGoods(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	goods, err := h.goods.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newGoodsResponse(goods))
}

func (h *Handler) UpdateGoods(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in models.GoodsUpdate
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		in.Name = &name
	}
	if in.Price != nil {
		rounded := in.Price.Round(2)
		in.Price = &rounded
	}
	if err := checkGoods(in.Name, in.Title, in.Img, in.Price, in.Stock); err != nil {
		writeError(w, r, err)
		return
	}

	goods, err := h.goods.Update(r.Context(), id, &in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newGoodsResponse(goods))
}

func (h *Handler) DeleteGoods(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.goods.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
