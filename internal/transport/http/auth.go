package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/lovaraju987/seven-nights-stay-sub000/internal/domain"
)

type TokenVerifier interface {
	Verify(token string) (domain.Actor, error)
}

type actorKey struct{}

func actorFrom(ctx context.Context) domain.Actor {
	actor, _ := ctx.Value(actorKey{}).(domain.Actor)
	return actor
}

func withActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// Authenticate resolves a bearer token to an actor. Requests without a
// token continue anonymously and services decide; a bad token is a 401.
// Browsers cannot set headers on WebSocket upgrades, so access_token is
// accepted as a query parameter there.
func Authenticate(verifier TokenVerifier, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := ""
		if h := r.Header.Get("Authorization"); h != "" {
			scheme, value, ok := strings.Cut(h, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") {
				writeError(w, http.StatusUnauthorized, codeUnauthenticated, "expected a bearer token")
				return
			}
			token = value
		} else if q := r.URL.Query().Get("access_token"); q != "" && isUpgrade(r) {
			token = q
		}
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		actor, err := verifier.Verify(token)
		if err != nil {
			loggerFrom(r.Context()).Debug("token rejected", "error", err)
			writeError(w, http.StatusUnauthorized, codeUnauthenticated, "invalid token")
			return
		}
		next.ServeHTTP(w, r.WithContext(withActor(r.Context(), actor)))
	})
}

func isUpgrade(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("Upgrade"), "websocket")
}
