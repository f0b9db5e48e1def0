package api

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"strings"

	"padaria/internal/utils"
)

// AuthUser identifies the companion-app user a request acts as.
type AuthUser struct {
	UserID string
	Role   string
}

type contextKey struct {
	name string
}

// UserContextKey stores the authenticated user in the request context.
var UserContextKey = &contextKey{"User"}

// DepsContextKey stores the API dependencies in the request context.
var DepsContextKey = &contextKey{"Deps"}

// DepsMiddleware makes the shared dependencies available to handlers.
func DepsMiddleware(deps ApiDependencies) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), DepsContextKey, deps)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func requestDeps(r *http.Request) ApiDependencies {
	deps, _ := r.Context().Value(DepsContextKey).(ApiDependencies)
	return deps
}

// AuthMiddleware validates the X-Auth-Token header. The token format is
// "userID:role:signature" where signature = HMAC-SHA256(secret, "userID:role").
// Tokens are issued by the companion app at login.
func AuthMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get("X-Auth-Token")
			if token == "" {
				http.Error(w, "Unauthorized: missing X-Auth-Token header", http.StatusUnauthorized)
				return
			}

			user, err := validateToken(token, secret)
			if err != nil {
				log.Printf("AuthMiddleware: token inválido: %v", err)
				http.Error(w, "Unauthorized: invalid token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RoleMiddleware gates a route behind a minimum role.
func RoleMiddleware(requiredRole string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := r.Context().Value(UserContextKey).(AuthUser)
			if !ok {
				http.Error(w, "Forbidden: user data not found in context", http.StatusForbidden)
				return
			}
			if !utils.IsRoleOrHigher(user.Role, requiredRole) {
				http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func validateToken(token, secret string) (AuthUser, error) {
	var user AuthUser
	if secret == "" {
		return user, fmt.Errorf("API_SECRET não configurado")
	}

	parts := strings.Split(token, ":")
	if len(parts) != 3 {
		return user, fmt.Errorf("formato de token inválido")
	}
	user.UserID, user.Role = parts[0], parts[1]

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(parts[0] + ":" + parts[1]))
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(parts[2])) {
		return user, fmt.Errorf("assinatura não corresponde")
	}
	return user, nil
}
