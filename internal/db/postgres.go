package db

import (
	"context"
	"database/sql"
	"log"
	"time"

	"storefront/internal/config"

	_ "github.com/lib/pq"
)

func NewPostgresDB(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxIdleTime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		log.Printf("postgres: ping %s:%s failed: %v", cfg.DBHost, cfg.DBPort, err)
		db.Close()
		return nil, err
	}
	log.Printf("postgres: connected to %s:%s/%s", cfg.DBHost, cfg.DBPort, cfg.DBName)
	return db, nil
}
