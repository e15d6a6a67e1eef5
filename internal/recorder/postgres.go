package recorder

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// NewPostgresRecorder connects to PostgreSQL and runs migrations.
func NewPostgresRecorder(dsn string) (*SQLRecorder, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	r, err := newSQLRecorder(db, "postgres")
	if err != nil {
		return nil, err
	}
	log.Printf("[INFO] postgres recorder connected")
	return r, nil
}

// Open returns the recorder for driver ("sqlite" or "postgres").
func Open(driver, dsn string) (*SQLRecorder, error) {
	switch driver {
	case "sqlite", "":
		return NewSQLiteRecorder(dsn)
	case "postgres", "postgresql":
		return NewPostgresRecorder(dsn)
	default:
		return nil, fmt.Errorf("unsupported db driver %q", driver)
	}
}
