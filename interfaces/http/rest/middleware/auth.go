// Package middleware holds the request middleware of the REST interface.
package middleware

import (
	"net/http"
	"strings"

	"notekeeper/pkg/auth"
	"notekeeper/pkg/common"
)

// Authenticate rejects requests without a valid bearer token and stores the
// authenticated user id on the request context.
func Authenticate(validator *auth.Validator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" || !strings.HasPrefix(header, "Bearer ") {
				common.RespondJSON(w, http.StatusUnauthorized, common.ErrorEnvelope{
					Message: "missing or malformed authorization header",
				})
				return
			}

			claims, err := validator.ValidateToken(header)
			if err != nil {
				common.RespondJSON(w, http.StatusUnauthorized, common.ErrorEnvelope{
					Message: "invalid or expired token",
				})
				return
			}

			ctx := common.WithUserID(r.Context(), claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
