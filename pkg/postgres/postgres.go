package postgres

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/ds124wfegd/shortlink/config"

	_ "github.com/lib/pq"
)

func NewPostgresDB(cfg *config.DatabaseConfig) (*sql.DB, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Successfully connected to PostgreSQL")
	return db, nil
}

func RunMigrations(db *sql.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS links (
			id UUID PRIMARY KEY,
			short_code VARCHAR(64) UNIQUE NOT NULL,
			destination TEXT NOT NULL,
			owner_id VARCHAR(64),
			guest_session_id VARCHAR(64),
			clicks BIGINT NOT NULL DEFAULT 0,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			expires_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			last_accessed_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			last_activity_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS analytics_events (
			id UUID PRIMARY KEY,
			link_id UUID NOT NULL,
			timestamp TIMESTAMPTZ NOT NULL,
			ip_address VARCHAR(45) NOT NULL,
			user_agent TEXT,
			referrer TEXT,
			referrer_category VARCHAR(20) NOT NULL,
			country VARCHAR(100) NOT NULL,
			city VARCHAR(100) NOT NULL,
			device_type VARCHAR(10) NOT NULL,
			browser VARCHAR(50) NOT NULL,
			os VARCHAR(50) NOT NULL
		)`,

		// Indexes
		`CREATE INDEX IF NOT EXISTS idx_links_short_code ON links(short_code)`,
		`CREATE INDEX IF NOT EXISTS idx_events_link_id ON analytics_events(link_id)`,
		`CREATE INDEX IF NOT EXISTS idx_events_link_timestamp ON analytics_events(link_id, timestamp)`,
	}

	for _, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("failed to execute migration: %v", err)
		}
	}

	log.Println("Database migrations completed successfully")
	return nil
}
