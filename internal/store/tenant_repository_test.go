package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cartify-platform/commerce-core/internal/model"
)

// mapCache is an in-process RedisClient for exercising the tenant cache.
type mapCache struct {
	data map[string]string
}

func newMapCache() *mapCache {
	return &mapCache{data: make(map[string]string)}
}

func (c *mapCache) Get(ctx context.Context, key string) *redis.StringCmd {
	if v, ok := c.data[key]; ok {
		return redis.NewStringResult(v, nil)
	}
	return redis.NewStringResult("", redis.Nil)
}

func (c *mapCache) SetEx(ctx context.Context, key string, value interface{}, _ time.Duration) *redis.StatusCmd {
	switch v := value.(type) {
	case []byte:
		c.data[key] = string(v)
	case string:
		c.data[key] = v
	}
	return redis.NewStatusResult("OK", nil)
}

func (c *mapCache) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		if _, ok := c.data[k]; ok {
			delete(c.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func (c *mapCache) Close() error { return nil }

func tenantRows(t *model.Tenant) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "name", "identifier", "description", "logo_url", "primary_color",
		"secondary_color", "is_active", "subscription_expires_at",
		"subscription_plan_id", "owner_id", "created_at", "updated_at",
	}).AddRow(
		t.ID.String(), t.Name, t.Identifier, t.Description, t.LogoURL, t.PrimaryColor,
		t.SecondaryColor, t.IsActive, t.SubscriptionExpiresAt,
		t.SubscriptionPlanID.String(), t.OwnerID.String(), t.CreatedAt, t.UpdatedAt,
	)
}

func TestTenantCacheServesLookup(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	cache := newMapCache()
	p := &Postgres{db: db, cache: cache}

	seed := model.Tenant{ID: uuid.New(), Name: "Acme", Identifier: "acme", IsActive: true}
	data, err := json.Marshal(&seed)
	require.NoError(t, err)
	cache.data[p.tenantCacheKey("acme")] = string(data)

	// No database expectation is set; the cache must satisfy the lookup.
	got, err := p.TenantByIdentifier(context.Background(), "acme")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, seed.ID, got.ID)
}

func TestUpdateTenantRetiresOldIdentifier(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	cache := newMapCache()
	p := &Postgres{db: db, cache: cache}

	now := time.Now()
	seed := model.Tenant{
		ID:                 uuid.New(),
		Name:               "Acme",
		Identifier:         "acme",
		IsActive:           true,
		SubscriptionPlanID: uuid.New(),
		OwnerID:            uuid.New(),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	data, err := json.Marshal(&seed)
	require.NoError(t, err)
	cache.data[p.tenantCacheKey("acme")] = string(data)

	renamed := seed
	renamed.Identifier = "acme-shop"

	mock.ExpectQuery(`FROM tenants WHERE id`).
		WithArgs(seed.ID).
		WillReturnRows(tenantRows(&seed))
	mock.ExpectQuery(`UPDATE tenants`).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(time.Now()))

	require.NoError(t, p.UpdateTenant(context.Background(), &renamed))

	// The old identifier must not resolve from cache; the database is the
	// source of truth and no longer has it.
	mock.ExpectQuery(`FROM tenants WHERE identifier`).
		WithArgs("acme").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "identifier", "description", "logo_url", "primary_color",
			"secondary_color", "is_active", "subscription_expires_at",
			"subscription_plan_id", "owner_id", "created_at", "updated_at",
		}))

	got, err := p.TenantByIdentifier(context.Background(), "acme")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, mock.ExpectationsWereMet())
}
