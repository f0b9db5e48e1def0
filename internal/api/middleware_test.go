package api

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"padaria/internal/constants"
)

func signToken(userID, role, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(userID + ":" + role))
	return userID + ":" + role + ":" + hex.EncodeToString(mac.Sum(nil))
}

func TestValidateToken(t *testing.T) {
	secret := "segredo-de-teste"

	user, err := validateToken(signToken("u1", constants.ROLE_DRIVER, secret), secret)
	require.NoError(t, err)
	assert.Equal(t, "u1", user.UserID)
	assert.Equal(t, constants.ROLE_DRIVER, user.Role)

	_, err = validateToken(signToken("u1", constants.ROLE_DRIVER, "outro-segredo"), secret)
	assert.Error(t, err)

	_, err = validateToken("sem-partes", secret)
	assert.Error(t, err)

	// Tampering with the role invalidates the signature.
	valid := signToken("u1", constants.ROLE_DRIVER, secret)
	tampered := "u1:" + constants.ROLE_ADMIN + valid[len("u1:"+constants.ROLE_DRIVER):]
	_, err = validateToken(tampered, secret)
	assert.Error(t, err)
}

func TestAuthMiddleware(t *testing.T) {
	secret := "segredo-de-teste"
	var seen AuthUser
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = r.Context().Value(UserContextKey).(AuthUser)
		w.WriteHeader(http.StatusOK)
	})
	handler := AuthMiddleware(secret)(next)

	r := httptest.NewRequest(http.MethodGet, "/api/clients", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	assert.Equal(t, http.StatusUnauthorized, w.Code, "missing token is rejected")

	r = httptest.NewRequest(http.MethodGet, "/api/clients", nil)
	r.Header.Set("X-Auth-Token", "u1:driver:assinatura-errada")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	assert.Equal(t, http.StatusUnauthorized, w.Code, "bad signature is rejected")

	r = httptest.NewRequest(http.MethodGet, "/api/clients", nil)
	r.Header.Set("X-Auth-Token", signToken("u1", constants.ROLE_ADMIN, secret))
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, AuthUser{UserID: "u1", Role: constants.ROLE_ADMIN}, seen)
}

func TestRoleMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	secret := "segredo-de-teste"
	handler := AuthMiddleware(secret)(RoleMiddleware(constants.ROLE_ADMIN)(next))

	r := httptest.NewRequest(http.MethodPost, "/api/admin/client/c1/skip-date", nil)
	r.Header.Set("X-Auth-Token", signToken("u1", constants.ROLE_DRIVER, secret))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	assert.Equal(t, http.StatusForbidden, w.Code, "driver cannot reach admin routes")

	r = httptest.NewRequest(http.MethodPost, "/api/admin/client/c1/skip-date", nil)
	r.Header.Set("X-Auth-Token", signToken("u2", constants.ROLE_OWNER, secret))
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	assert.Equal(t, http.StatusOK, w.Code, "owner outranks admin")
}
