package middleware

import (
	"net/http"

	"github.com/bilemo/bilemo/internal/apierr"
	"github.com/bilemo/bilemo/internal/auth"
)

// RequirePrincipal rejects anonymous requests with 401.
// Must be applied after Authenticate.
func RequirePrincipal(errs *apierr.Translator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !auth.PrincipalFromContext(r.Context()).Authenticated() {
				errs.Write(w, r, apierr.Unauthorized(apierr.MsgUnauthorized))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
