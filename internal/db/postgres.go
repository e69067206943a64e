package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ConnectPostgres opens a pool against dsn and makes sure the schema exists.
func ConnectPostgres(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	if dsn == "" {
		return nil, errors.New("DATABASE_URL not set")
	}

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse DATABASE_URL: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres connection failed: %w", err)
	}

	if err := initSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return pool, nil
}

// initSchema creates the user, petition and coordinate tables
func initSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

var schema = []string{
	// -------------------------------
	// USERS
	// -------------------------------
	`
		CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			email VARCHAR(255) UNIQUE NOT NULL,
			password VARCHAR(255) NOT NULL,
			role VARCHAR(50) NOT NULL DEFAULT 'ADMIN',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`,

	// -------------------------------
	// PETITIONS
	// -------------------------------
	`
		CREATE TABLE IF NOT EXISTS petitions (
			id SERIAL PRIMARY KEY,
			year INTEGER NULL,
			employer_name TEXT NOT NULL DEFAULT '',
			job_title TEXT NOT NULL DEFAULT '',
			prevailing_wage DOUBLE PRECISION NULL,
			city TEXT NOT NULL DEFAULT '',
			state TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`,
	`CREATE INDEX IF NOT EXISTS petitions_year_idx ON petitions (year)`,

	// -------------------------------
	// CITY COORDINATES
	// -------------------------------
	`
		CREATE TABLE IF NOT EXISTS city_coordinates (
			city TEXT NOT NULL,
			state_name TEXT NOT NULL,
			lat DOUBLE PRECISION NOT NULL,
			lng DOUBLE PRECISION NOT NULL
		)
	`,
}
