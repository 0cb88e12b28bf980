package db

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/dinartr/storefront/internal/config"
)

// Postgres owns the pgx pool. SQL is a database/sql view over the same pool
// for sqlx based callers.
type Postgres struct {
	Pool *pgxpool.Pool
	SQL  *sqlx.DB
}

func New(ctx context.Context, cfg config.PostgresConfig) (*Postgres, error) {
	poolConfig, err := pgxpool.ParseConfig(ConnString(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres connstr: %w", err)
	}

	poolConfig.MaxConns = cfg.MaxConns
	poolConfig.MinConns = cfg.MinConns
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime

	dbPool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres connection pool: %w", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}

	log.Info().Str("host", cfg.Host).Str("dbname", cfg.DBName).Msg("Connected to PostgreSQL")

	return &Postgres{
		Pool: dbPool,
		SQL:  sqlx.NewDb(stdlib.OpenDBFromPool(dbPool), "pgx"),
	}, nil
}

func (p *Postgres) Close() {
	if p.SQL != nil {
		_ = p.SQL.Close()
	}
	if p.Pool != nil {
		p.Pool.Close()
		log.Info().Msg("Database connection closed")
	}
}

// ConnString is the pgx pool DSN for cfg, with credentials URL escaped.
func ConnString(cfg config.PostgresConfig) string {
	return postgresURL("postgres", cfg)
}

// MigrationURL is the golang-migrate pgx5 DSN for cfg.
func MigrationURL(cfg config.PostgresConfig) string {
	return postgresURL("pgx5", cfg)
}

func postgresURL(scheme string, cfg config.PostgresConfig) string {
	u := url.URL{
		Scheme:   scheme,
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     net.JoinHostPort(cfg.Host, cfg.Port),
		Path:     "/" + cfg.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(cfg.SSLMode),
	}
	return u.String()
}

func ApplyMigrations(cfg config.PostgresConfig) error {
	m, err := migrate.New("file://"+cfg.MigrationsPath, MigrationURL(cfg))
	if err != nil {
		return fmt.Errorf("failed to initialize migration instance: %w", err)
	}
	defer m.Close()

	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		log.Info().Msg("No new migrations to apply")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	log.Info().Msg("New migrations applied successfully")

	return nil
}
