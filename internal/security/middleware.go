package security

import (
	"AuthTokens_Service/internal/pkg/log"
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

// Authorizer resolves an access token to the user id it was issued for.
type Authorizer interface {
	Authorize(ctx context.Context, accessToken string) (string, error)
}

type userIDKey struct{}

// UserIDFromContext returns the user id stored by JWTMiddleware.
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey{}).(string)
	return userID, ok && userID != ""
}

// WithUserID stores userID the way JWTMiddleware does.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// JWTMiddleware admits requests carrying "Authorization: Bearer <access token>"
// that the authorizer accepts, and answers 401 otherwise.
func JWTMiddleware(authorizer Authorizer) func(handler http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(handleAuthentication(authorizer, next))
	}
}

func handleAuthentication(authorizer Authorizer, next http.Handler) func(writer http.ResponseWriter, request *http.Request) {
	return func(writer http.ResponseWriter, request *http.Request) {
		authorizationHeader := request.Header.Get("Authorization")
		if strings.HasPrefix(authorizationHeader, "Bearer ") == false {
			unauthorized(writer)
			return
		}

		accessToken := strings.TrimSpace(strings.TrimPrefix(authorizationHeader, "Bearer "))

		userID, err := authorizer.Authorize(request.Context(), accessToken)
		if err != nil {
			log.From(request.Context()).Debug("access_denied", "err", err)
			unauthorized(writer)
			return
		}

		next.ServeHTTP(writer, request.WithContext(WithUserID(request.Context(), userID)))
	}
}

func unauthorized(writer http.ResponseWriter) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(writer).Encode(map[string]string{"error": "unauthorized"})
}
