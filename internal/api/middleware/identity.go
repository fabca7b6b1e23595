package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/studypace/srs-api/internal/api/shared"
)

// UserIDHeader carries the caller's identity, supplied by the upstream
// gateway. The scheduler does not authenticate; it trusts this header.
const UserIDHeader = "X-User-ID"

// IdentityMiddleware extracts the user ID from the X-User-ID header and
// places it in the request context. Requests without a valid UUID in the
// header are rejected with 401.
func IdentityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(UserIDHeader)
		if raw == "" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Missing user identity")
			return
		}

		userID, err := uuid.Parse(raw)
		if err != nil || userID == uuid.Nil {
			slog.Debug("invalid user ID header",
				slog.String("trace_id", shared.GetTraceID(r.Context())),
				slog.String("value", raw))
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid user identity")
			return
		}

		ctx := context.WithValue(r.Context(), shared.UserIDContextKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
