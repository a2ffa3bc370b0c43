package tenancy

import (
	"context"

	"github.com/cartify-platform/commerce-core/internal/model"
)

type ctxKey int

const (
	identifierKey ctxKey = iota
	tenantKey
)

// WithIdentifier stores the extracted identifier on the request context.
func WithIdentifier(ctx context.Context, identifier string) context.Context {
	return context.WithValue(ctx, identifierKey, identifier)
}

// Identifier returns the extracted identifier, if any.
func Identifier(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(identifierKey).(string)
	return id, ok && id != ""
}

// WithTenant stores the directory-resolved tenant on the request context.
// Everything downstream scopes its reads and writes to this tenant's id.
func WithTenant(ctx context.Context, t *model.Tenant) context.Context {
	return context.WithValue(ctx, tenantKey, t)
}

// TenantFrom returns the resolved tenant, if resolution succeeded.
func TenantFrom(ctx context.Context) (*model.Tenant, bool) {
	t, ok := ctx.Value(tenantKey).(*model.Tenant)
	return t, ok && t != nil
}
