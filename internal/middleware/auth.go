package middleware

import (
	"context"
	"net/http"

	"github.com/magheya/lds-backend/internal/httpjson"
	"github.com/magheya/lds-backend/internal/models"
)

type identityKey struct{}

// RequestAuthenticator resolves the admin behind a request.
type RequestAuthenticator interface {
	CheckRequest(r *http.Request) (*models.Identity, error)
}

// RequireAdmin is middleware that validates the bearer token and injects
// the admin identity into the request context.
func RequireAdmin(auth RequestAuthenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := auth.CheckRequest(r)
			if err != nil {
				httpjson.Error(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

func WithIdentity(ctx context.Context, id *models.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the identity stored by RequireAdmin, if any.
func IdentityFrom(ctx context.Context) (*models.Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(*models.Identity)
	return id, ok && id != nil
}
