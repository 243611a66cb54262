package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"storefront/internal/config"
	"storefront/internal/db"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	pg, err := db.NewPostgresDB(ctx, cfg)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pg.Close()

	projectRoot, err := getProjectRoot()
	if err != nil {
		log.Fatalf("project root: %v", err)
	}

	applied, err := Migrate(ctx, pg, filepath.Join(projectRoot, "migrations"))
	log.Printf("Succesfull migrations %d", applied)
	if err != nil {
		log.Fatal(err)
	}
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Migrate applies every *.sql file in dir in lexical order and stops at the
// first failure, since later files depend on earlier ones.
func Migrate(ctx context.Context, db execer, dir string) (int, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	if err != nil {
		return 0, err
	}
	sort.Strings(files)

	for i, path := range files {
		content, err := os.ReadFile(path)
		if err != nil {
			return i, err
		}
		if _, err := db.ExecContext(ctx, string(content)); err != nil {
			return i, fmt.Errorf("migration %s: %w", filepath.Base(path), err)
		}
		log.Printf("Succesfull migration: %s", filepath.Base(path))
	}
	return len(files), nil
}

func getProjectRoot() (string, error) {
	// Ищем корень проекта по наличию go.mod
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(wd, "go.mod")); err == nil {
			return wd, nil
		}

		parent := filepath.Dir(wd)
		if parent == wd {
			return "", os.ErrNotExist
		}
		wd = parent
	}
}
