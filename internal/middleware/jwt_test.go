package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signedToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	raw, err := tok.SignedString([]byte(secret))
	require.NoError(t, err)
	return raw
}

func runJWT(t *testing.T, authHeader string) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := JWTAuth(testSecret)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))
	return rec, c
}

func TestJWTAuthInjectsIdentity(t *testing.T) {
	raw := signedToken(t, testSecret, jwt.MapClaims{
		"sub":  "7",
		"role": "USER",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	rec, c := runJWT(t, "Bearer "+raw)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint64(7), UserID(c))
	assert.Equal(t, "USER", Role(c))
}

func TestJWTAuthAcceptsNumericSubject(t *testing.T) {
	raw := signedToken(t, testSecret, jwt.MapClaims{
		"sub":  7,
		"role": "ADMIN",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	rec, c := runJWT(t, "Bearer "+raw)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint64(7), UserID(c))
}

func TestJWTAuthRejectsMissingHeader(t *testing.T) {
	rec, _ := runJWT(t, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthRejectsWrongSecret(t *testing.T) {
	raw := signedToken(t, "other-secret", jwt.MapClaims{
		"sub": "7", "role": "USER",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	rec, _ := runJWT(t, "Bearer "+raw)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthRejectsExpiredToken(t *testing.T) {
	raw := signedToken(t, testSecret, jwt.MapClaims{
		"sub": "7", "role": "USER",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	rec, _ := runJWT(t, "Bearer "+raw)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRoleBlocksOtherRoles(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(CtxRole, "USER")

	h := RequireRole("ADMIN")(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
