package auth

import (
	"context"
	"net/http"

	"github.com/markbates/goth/gothic"
)

type contextKey string

const userIDKey contextKey = "userID"

const SessionName = "_reviewcircle_session"

// UserMiddleware rejects requests without an authenticated session and
// places the logged-in user's id in the request context.
func UserMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := gothic.Store.Get(r, SessionName)
		if err != nil {
			http.Error(w, "Not Authorized", http.StatusUnauthorized)
			return
		}

		userID, ok := session.Values["user_id"].(uint)
		if !ok || userID == 0 {
			http.Error(w, "Not Authorized", http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserID extracts the authenticated user's id set by UserMiddleware.
func UserID(ctx context.Context) (uint, bool) {
	id, ok := ctx.Value(userIDKey).(uint)
	return id, ok
}

// WithUserID returns a context carrying the given user id. Tests use it
// to call handlers without a full session round trip.
func WithUserID(ctx context.Context, id uint) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}
