package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"storefront/internal/repo"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr       string
	RequestTimeout time.Duration

	DBHost    string
	DBPort    string
	DBUser    string
	DBPass    string
	DBName    string
	DBSSLMode string

	JWTSecret   string
	StockPolicy repo.StockPolicy

	BotToken    string
	AdminChatID int64
}

func Load() (*Config, error) {
	_, filename, _, _ := runtime.Caller(0) // корневая папка проекта
	rootDir := filepath.Join(filepath.Dir(filename), "..", "..")

	// .env is optional, the environment always wins
	err := godotenv.Load(filepath.Join(rootDir, ".env"))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	return FromEnv()
}

func FromEnv() (*Config, error) {
	cfg := &Config{
		HTTPAddr:    getenv("HTTP_ADDR", ":8000"),
		DBHost:      getenv("DB_HOST", "localhost"),
		DBPort:      getenv("DB_PORT", "5432"),
		DBUser:      getenv("DB_USER", "postgres"),
		DBPass:      os.Getenv("DB_PASSWORD"),
		DBName:      getenv("DB_NAME", "storefront"),
		DBSSLMode:   getenv("DB_SSLMODE", "disable"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		StockPolicy: repo.StockPolicy(strings.ToLower(getenv("STOCK_POLICY", string(repo.StockDeduct)))),
		BotToken:    os.Getenv("BOT_TOKEN"),
	}

	timeout, err := time.ParseDuration(getenv("REQUEST_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("REQUEST_TIMEOUT: %w", err)
	}
	cfg.RequestTimeout = timeout

	if raw := os.Getenv("ADMIN_CHAT_ID"); raw != "" {
		cfg.AdminChatID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("ADMIN_CHAT_ID: %w", err)
		}
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	if cfg.StockPolicy != repo.StockDeduct && cfg.StockPolicy != repo.StockValidate {
		return nil, fmt.Errorf("STOCK_POLICY must be %q or %q, got %q", repo.StockDeduct, repo.StockValidate, cfg.StockPolicy)
	}
	return cfg, nil
}

// DSN is the lib/pq connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPass, c.DBName, c.DBSSLMode,
	)
}

func getenv(k, def string) string {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	return v
}
