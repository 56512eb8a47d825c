package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/example/marketplace/internal/auth"
	"github.com/example/marketplace/internal/domain"
)

// respondError writes a typed error payload in the API's error format.
func respondError(w http.ResponseWriter, appErr *domain.Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.HTTPStatus)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error_code": appErr.Code,
		"message":    appErr.Message,
		"details":    appErr.Details,
	})
}

// ExtractToken extracts the bearer token from the Authorization header.
func ExtractToken(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

type contextKey string

const actorContextKey contextKey = "actor"

// Auth validates the access token and stores the resolved actor in the
// request context. The services trust this actor; no further credential
// checks happen downstream.
func Auth(jwtService *auth.JWTService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := ExtractToken(r)
			if tokenString == "" {
				respondError(w, domain.TokenInvalid())
				return
			}

			claims, err := jwtService.ValidateAccessToken(tokenString)
			if err != nil {
				if errors.Is(err, auth.ErrExpiredToken) {
					respondError(w, domain.TokenExpired())
				} else {
					respondError(w, domain.TokenInvalid())
				}
				return
			}

			userID, err := claims.UserID()
			if err != nil || !domain.ValidRole(claims.Role) {
				respondError(w, domain.TokenInvalid())
				return
			}

			actor := domain.Actor{ID: userID, Role: domain.Role(claims.Role)}
			ctx := context.WithValue(r.Context(), actorContextKey, actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects requests whose actor has none of the given roles.
func RequireRole(roles ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			if !ok {
				respondError(w, domain.TokenInvalid())
				return
			}

			for _, role := range roles {
				if actor.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			respondError(w, domain.AccessDenied("role "+string(actor.Role)+" cannot access this operation"))
		})
	}
}

// ActorFromContext retrieves the authenticated actor from the request
// context.
func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey).(domain.Actor)
	return actor, ok
}

// WithActor returns a context carrying the actor. Used by tests and by the
// auth middleware.
func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey, actor)
}
