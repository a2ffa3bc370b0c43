package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	"github.com/cartify-platform/commerce-core/internal/apperr"
	"github.com/cartify-platform/commerce-core/internal/crypto"
)

// RedisClient is the slice of go-redis the tenant cache needs.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	SetEx(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Close() error
}

const tenantCacheTTL = 1 * time.Hour

// Postgres is the production Store backed by a postgres database, with an
// optional redis read-through cache for tenant-by-identifier lookups and
// AES-GCM encryption for customer email at rest.
type Postgres struct {
	db     *sql.DB
	cache  RedisClient
	cipher *crypto.Cipher
}

var _ Store = (*Postgres)(nil)

// Option configures a Postgres store.
type Option func(*Postgres)

// WithCache enables the redis tenant cache.
func WithCache(c RedisClient) Option {
	return func(p *Postgres) { p.cache = c }
}

// WithCipher enables email-at-rest encryption for customers.
func WithCipher(c *crypto.Cipher) Option {
	return func(p *Postgres) { p.cipher = c }
}

// NewPostgres opens (and pings) a postgres connection from a DSN.
func NewPostgres(dsn string, opts ...Option) (*Postgres, error) {
	config, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}

	db := stdlib.OpenDB(*config)
	if err := db.Ping(); err != nil {
		return nil, err
	}

	p := &Postgres{db: db}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Close closes the database connection and the cache, if any.
func (p *Postgres) Close() error {
	if p.cache != nil {
		if err := p.cache.Close(); err != nil {
			return err
		}
	}
	return p.db.Close()
}

// inTx runs fn inside a transaction, rolling back on error.
func (p *Postgres) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// translatePgErr maps postgres constraint failures onto the domain error
// taxonomy; anything else passes through untouched.
func translatePgErr(entity string, err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return apperr.New(apperr.IntegrityViolation, entity, "duplicate value for %s", pgErr.ConstraintName)
		case "23503": // foreign_key_violation
			return apperr.New(apperr.IntegrityViolation, entity, "restricted by %s", pgErr.ConstraintName)
		}
	}
	return err
}

// countRow runs a single-count query.
func (p *Postgres) countRow(ctx context.Context, query string, args ...any) (int, error) {
	var n int
	err := p.db.QueryRowContext(ctx, query, args...).Scan(&n)
	return n, err
}
