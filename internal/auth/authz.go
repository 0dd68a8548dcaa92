package auth

import (
	"net/http"

	"github.com/adeputra/pharmacy-inventory/internal"
	"github.com/adeputra/pharmacy-inventory/internal/transport"
)

// RBAC gates routes on the role-derived permission set of the current user.
// It must run behind the auth middleware.
type RBAC struct {
	base *transport.BaseHandler
}

func NewRBAC(base *transport.BaseHandler) *RBAC {
	return &RBAC{base: base}
}

func (a *RBAC) RequirePermission(permission string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				a.base.WriteAppError(w, internal.NewUnauthorizedError())
				return
			}
			if !user.HasPermission(permission) {
				a.base.WriteAppError(w, internal.NewForbiddenError())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (a *RBAC) RequireRole(role string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				a.base.WriteAppError(w, internal.NewUnauthorizedError())
				return
			}
			if !user.HasRole(role) {
				a.base.WriteAppError(w, internal.NewForbiddenError())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
