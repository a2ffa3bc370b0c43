package tenancy

import (
	"context"
	"net/http"

	"github.com/cartify-platform/commerce-core/internal/apperr"
	"github.com/cartify-platform/commerce-core/internal/model"
)

// Resolver looks an identifier up in the tenant directory.
type Resolver interface {
	Resolve(ctx context.Context, identifier string) (*model.Tenant, error)
}

// Middleware extracts the tenant identifier from each request, resolves it
// through the directory and stores both on the request context. Requests
// without an identifier pass through as platform-level. Unknown tenants
// get 404, deactivated ones 403 and expired subscriptions 402.
func Middleware(resolver Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identifier, ok := ResolveIdentifier(r.Host, r.URL.Path)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			ctx := WithIdentifier(r.Context(), identifier)
			tenant, err := resolver.Resolve(ctx, identifier)
			if err != nil {
				http.Error(w, err.Error(), statusFor(err))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithTenant(ctx, tenant)))
		})
	}
}

func statusFor(err error) int {
	switch apperr.KindOf(err) {
	case apperr.NotFound:
		return http.StatusNotFound
	case apperr.Inactive:
		return http.StatusForbidden
	case apperr.Expired:
		return http.StatusPaymentRequired
	default:
		return http.StatusInternalServerError
	}
}
