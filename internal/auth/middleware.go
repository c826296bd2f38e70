package auth

import (
	"context"
	"net/http"
	"strings"
)

type contextKey struct{}

var identityKey contextKey

// IdentityFromContext returns the caller identity attached by Middleware.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey).(Identity)
	return identity, ok
}

// ContextWithIdentity attaches a resolved identity to the context.
func ContextWithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// Middleware gates protected routes behind a bearer access token. The token
// must verify as an access token and resolve to a live user record; the
// resolved identity is attached to the request context for downstream
// handlers. The check never mutates token or registry state.
func Middleware(issuer *TokenIssuer, store CredentialStore, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := strings.TrimSpace(r.Header.Get("Authorization"))
		if header == "" {
			writeError(w, http.StatusUnauthorized, "no token provided")
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			writeError(w, http.StatusUnauthorized, "invalid authorization format")
			return
		}

		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			writeError(w, http.StatusUnauthorized, "no token provided")
			return
		}

		identity, err := issuer.Verify(tokenString, KindAccess)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		user, err := store.FindByID(r.Context(), identity.UserID)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		ctx := ContextWithIdentity(r.Context(), Identity{UserID: user.ID, Email: user.Email})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
