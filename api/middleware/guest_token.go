package middleware

import (
	"net/http"
	"strings"

	"github.com/neonshoplabs/neonshop-backend/pkg/logger"
)

const guestTokenHeader = "X-Guest-Token"

// GuestToken lifts the guest cart token header into the request context. The
// header is optional; handlers that need it decide how to treat its absence.
func GuestToken(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := strings.TrimSpace(r.Header.Get(guestTokenHeader))
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := WithGuestToken(r.Context(), token)
			if logg != nil {
				ctx = logg.WithGuestToken(ctx, token)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
