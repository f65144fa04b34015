package auth

import (
	"context"
	"net/http"
	"strings"
)

type ctxKey int

const callerKey ctxKey = 0

func CallerFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(callerKey).(string)
	return id, ok && id != ""
}

func WithCaller(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, callerKey, userID)
}

// Identify decorates the request context with the caller id when a valid
// bearer token is present. It never rejects: authorization decisions belong
// to the Guard, which distinguishes a missing caller from a missing role.
func Identify(jwtSvc *JWT) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if strings.HasPrefix(h, "Bearer ") {
				if uid, err := jwtSvc.Verify(strings.TrimPrefix(h, "Bearer ")); err == nil {
					r = r.WithContext(WithCaller(r.Context(), uid))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
