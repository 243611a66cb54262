package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/auth"
	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/handlers"
	"storefront/internal/metrics"
	"storefront/internal/notify"
	"storefront/internal/repo"
	"storefront/internal/service"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	//инициализация бд, репозиториев
	pg, err := db.NewPostgresDB(ctx, cfg)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pg.Close()

	goodsRepo := repo.NewGoodsRepo(pg)
	userRepo := repo.NewUserRepo(pg)
	orderRepo := repo.NewOrderRepo(pg, cfg.StockPolicy)
	log.Printf("orders: stock policy %q", cfg.StockPolicy)

	var notifier service.Notifier = notify.Nop{}
	if cfg.BotToken != "" && cfg.AdminChatID != 0 {
		tg, err := notify.Connect(cfg.BotToken, cfg.AdminChatID)
		if err != nil {
			log.Printf("telegram: notifications disabled: %v", err)
		} else {
			notifier = tg
			log.Printf("telegram: order notifications go to chat %d", cfg.AdminChatID)
		}
	}

	orders := service.NewOrderService(goodsRepo, orderRepo, notifier)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	router := handlers.NewRouter(goodsRepo, userRepo, orders, handlers.Options{
		Verifier:       auth.NewVerifier(cfg.JWTSecret),
		Metrics:        metrics.NewServerMetrics(reg),
		Gatherer:       reg,
		RequestTimeout: cfg.RequestTimeout,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	drained := make(chan struct{})
	go func() {
		defer close(drained)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("http: shutdown: %v", err)
		}
	}()

	log.Printf("storefront listening on %s", cfg.HTTPAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("http: %v", err)
	}
	<-drained
	orders.Wait() // уведомления по уже принятым заказам
}
