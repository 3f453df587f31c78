package middleware

import (
	"net/http"

	"github.com/campushq/attendance-backend-go/internal/handler/http/response"
	"github.com/campushq/attendance-backend-go/internal/pkg/jwt"
	"github.com/campushq/attendance-backend-go/internal/pkg/ratelimit"
)

// CheckInRateLimit throttles check-in submissions per authenticated
// user. A nil limiter disables throttling entirely.
func CheckInRateLimit(limiter *ratelimit.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := jwt.IdentityFromContext(r.Context())
			if err != nil {
				response.HandleError(w, err)
				return
			}

			if !limiter.Allow(r.Context(), "checkin:"+identity.UserID) {
				response.TooManyRequests(w, "Too many check-in attempts, slow down")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
