package middleware

import (
	"context"
	"net/http"

	navgate "github.com/navgate/navgate"
	"github.com/navgate/navgate/principal"
)

type principalContextKey struct{}

// PrincipalFromContext returns the principal injected by [Guard] for an
// admitted request.
func PrincipalFromContext(ctx context.Context) (*principal.Principal, bool) {
	p, ok := ctx.Value(principalContextKey{}).(*principal.Principal)
	return p, ok
}

// Guard returns middleware that gates every request through the engine's
// navigation guard. Denied requests are redirected to the decision's
// destination (the login page or the access-denied landing); admitted
// requests proceed with the current principal in the request context.
//
// Mount it on the protected subtree so both the subtree root and every
// child path pass through the same decision point.
func Guard(engine *navgate.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			decision := engine.CanActivate(r.Context(), r.URL.Path)
			if !decision.Allow {
				if decision.RedirectTo == "" {
					http.Error(w, "forbidden", http.StatusForbidden)
					return
				}
				http.Redirect(w, r, decision.RedirectTo, http.StatusSeeOther)
				return
			}

			ctx := context.WithValue(r.Context(), principalContextKey{}, engine.Session().Principal())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
