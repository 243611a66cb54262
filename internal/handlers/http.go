package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"storefront/internal/apperr"
	"storefront/internal/auth"
	"storefront/internal/metrics"
	"storefront/internal/models"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
)

type GoodsStore interface {
	Create(ctx context.Context, in *models.GoodsCreate) (*models.Goods, error)
	GetByID(ctx context.Context, id int64) (*models.Goods, error)
	List(ctx context.Context) ([]models.Goods, error)
	Update(ctx context.Context, id int64, in *models.GoodsUpdate) (*models.Goods, error)
	Delete(ctx context.Context, id int64) error
}

type UserStore interface {
	Create(ctx context.Context, in *models.UserCreate) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

type OrderWorkflow interface {
	CreateOrder(ctx context.Context, userID int64, in *models.OrderCreate) (*models.Order, error)
	GetUserOrders(ctx context.Context, userID int64) ([]models.Order, error)
	GetOrderDetails(ctx context.Context, userID, orderID int64) (*models.Order, error)
}

type Handler struct {
	goods   GoodsStore
	users   UserStore
	orders  OrderWorkflow
	metrics *metrics.ServerMetrics
}

type Options struct {
	Verifier       *auth.Verifier
	Metrics        *metrics.ServerMetrics
	Gatherer       prometheus.Gatherer
	RequestTimeout time.Duration
}

// NewRouter wires every route of the API.
func NewRouter(goods GoodsStore, users UserStore, orders OrderWorkflow, opts Options) *mux.Router {
	h := &Handler{goods: goods, users: users, orders: orders, metrics: opts.Metrics}

	r := mux.NewRouter()
	r.Use(requestID, accessLog(opts.Metrics), withTimeout(opts.RequestTimeout))

	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	if opts.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(opts.Gatherer)).Methods(http.MethodGet)
	}

	r.HandleFunc("/auth/register", h.Register).Methods(http.MethodPost)

	for _, p := range []string{"/goods", "/goods/"} {
		r.HandleFunc(p, h.CreateGoods).Methods(http.MethodPost)
		r.HandleFunc(p, h.ListGoods).Methods(http.MethodGet)
	}
	r.HandleFunc("/goods/{id:[0-9]+}", h.GetGoods).Methods(http.MethodGet)
	r.HandleFunc("/goods/{id:[0-9]+}", h.UpdateGoods).Methods(http.MethodPatch)
	r.HandleFunc("/goods/{id:[0-9]+}", h.DeleteGoods).Methods(http.MethodDelete)

	authed := r.PathPrefix("/orders").Subrouter()
	authed.Use(auth.Middleware(opts.Verifier, users, writeError))
	for _, p := range []string{"", "/"} {
		authed.HandleFunc(p, h.CreateOrder).Methods(http.MethodPost)
		authed.HandleFunc(p, h.ListOrders).Methods(http.MethodGet)
	}
	authed.HandleFunc("/{id:[0-9]+}", h.GetOrder).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Detail: "Not Found"})
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Detail: "Method Not Allowed"})
	})
	return r
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		return 0, apperr.InvalidInput("invalid id")
	}
	return id, nil
}
