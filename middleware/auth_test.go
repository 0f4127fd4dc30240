package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arenastack/tournament-registration/middleware"
)

var testSecret = []byte("test-secret")

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(testSecret)
	require.NoError(t, err)
	return signed
}

func protectedHandler(t *testing.T, gotAdminID *int) http.Handler {
	var handler http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if gotAdminID != nil {
			id, err := middleware.GetAdminIDFromContext(r.Context())
			require.NoError(t, err)
			*gotAdminID = id
		}
		w.WriteHeader(http.StatusOK)
	})
	handler = middleware.RequireAdmin(handler)
	return middleware.Authenticate(testSecret)(handler)
}

func TestAuthenticate_ValidToken(t *testing.T) {
	var adminID int
	handler := protectedHandler(t, &adminID)

	token := signToken(t, jwt.MapClaims{
		"admin_id": 7,
		"role":     middleware.RoleAdmin,
		"exp":      time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 7, adminID)
}

func TestAuthenticate_MissingOrMalformedHeader(t *testing.T) {
	handler := protectedHandler(t, nil)

	for name, header := range map[string]string{
		"no header":       "",
		"not bearer":      "Basic abc",
		"garbage token":   "Bearer not.a.jwt",
		"wrong signature": "Bearer " + mustSignWith(t, []byte("other-secret")),
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestAuthenticate_ExpiredToken(t *testing.T) {
	handler := protectedHandler(t, nil)

	token := signToken(t, jwt.MapClaims{
		"admin_id": 7,
		"role":     middleware.RoleAdmin,
		"exp":      time.Now().Add(-time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAdmin_RejectsOtherRoles(t *testing.T) {
	handler := protectedHandler(t, nil)

	token := signToken(t, jwt.MapClaims{
		"admin_id": 7,
		"role":     "viewer",
		"exp":      time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func mustSignWith(t *testing.T, secret []byte) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"admin_id": 7,
		"role":     middleware.RoleAdmin,
		"exp":      time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString(secret)
	require.NoError(t, err)
	return signed
}
