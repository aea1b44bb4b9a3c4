package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("middleware-test-secret")

func signToken(t *testing.T, claims jwt.MapClaims, method jwt.SigningMethod) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(testSecret)
	require.NoError(t, err)
	return token
}

func validClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"uid":  "5",
		"role": "user",
		"aud":  "recipes-web",
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(time.Hour).Unix(),
	}
}

type fakeVerifier struct {
	revoked map[string]bool
}

func (f *fakeVerifier) VerifyAccessToken(ctx context.Context, access string) error {
	if f.revoked[access] {
		return errors.New("revoked")
	}
	return nil
}

func whoAmI(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"user_id": CurrentUserID(c),
		"admin":   CurrentUserIsAdmin(c),
	})
}

func newAuthRouter(verifier TokenVerifier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/required", OAuth2Auth(testSecret, verifier), whoAmI)
	router.GET("/optional", OptionalAuth(testSecret, verifier), whoAmI)
	router.GET("/admin", OAuth2Auth(testSecret, verifier), RequireRole("admin"), whoAmI)
	return router
}

func get(router http.Handler, path, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestOAuth2Auth(t *testing.T) {
	valid := signToken(t, validClaims(), jwt.SigningMethodHS256)
	revoked := signToken(t, jwt.MapClaims{"uid": "6", "role": "user", "exp": time.Now().Add(time.Hour).Unix()}, jwt.SigningMethodHS256)
	router := newAuthRouter(&fakeVerifier{revoked: map[string]bool{revoked: true}})

	expired := validClaims()
	expired["exp"] = time.Now().Add(-time.Minute).Unix()

	noExp := validClaims()
	delete(noExp, "exp")

	badRole := validClaims()
	badRole["role"] = "superuser"

	noUID := validClaims()
	delete(noUID, "uid")

	tests := []struct {
		name          string
		authorization string
		expectedCode  int
		expectedError string
	}{
		{name: "missing header", expectedCode: http.StatusUnauthorized, expectedError: "authorization_required"},
		{name: "wrong scheme", authorization: "Basic abc", expectedCode: http.StatusUnauthorized, expectedError: "invalid_request"},
		{name: "empty token", authorization: "Bearer ", expectedCode: http.StatusUnauthorized, expectedError: "invalid_token"},
		{name: "garbage", authorization: "Bearer not.a.jwt", expectedCode: http.StatusUnauthorized, expectedError: "invalid_token"},
		{name: "expired", authorization: "Bearer " + signToken(t, expired, jwt.SigningMethodHS256), expectedCode: http.StatusUnauthorized, expectedError: "invalid_token"},
		{name: "no exp", authorization: "Bearer " + signToken(t, noExp, jwt.SigningMethodHS256), expectedCode: http.StatusUnauthorized, expectedError: "invalid_token"},
		{name: "unknown role", authorization: "Bearer " + signToken(t, badRole, jwt.SigningMethodHS256), expectedCode: http.StatusUnauthorized, expectedError: "invalid_token"},
		{name: "missing uid", authorization: "Bearer " + signToken(t, noUID, jwt.SigningMethodHS256), expectedCode: http.StatusUnauthorized, expectedError: "invalid_token"},
		{name: "revoked", authorization: "Bearer " + revoked, expectedCode: http.StatusUnauthorized, expectedError: "invalid_token"},
		{name: "valid", authorization: "Bearer " + valid, expectedCode: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(router, "/required", tt.authorization)

			assert.Equal(t, tt.expectedCode, w.Code)
			if tt.expectedError != "" {
				assert.Contains(t, w.Body.String(), `"error":"`+tt.expectedError+`"`)
			} else {
				assert.JSONEq(t, `{"user_id":5,"admin":false}`, w.Body.String())
			}
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	router := newAuthRouter(nil)

	w := get(router, "/optional", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":0,"admin":false}`, w.Body.String())

	w = get(router, "/optional", "Bearer "+signToken(t, validClaims(), jwt.SigningMethodHS256))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":5,"admin":false}`, w.Body.String())

	w = get(router, "/optional", "Bearer broken")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRole(t *testing.T) {
	router := newAuthRouter(nil)

	w := get(router, "/admin", "Bearer "+signToken(t, validClaims(), jwt.SigningMethodHS256))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"FORBIDDEN"`)

	admin := validClaims()
	admin["role"] = "admin"
	w = get(router, "/admin", "Bearer "+signToken(t, admin, jwt.SigningMethodHS256))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":5,"admin":true}`, w.Body.String())
}

func TestRejectsNonHMACAlgorithm(t *testing.T) {
	router := newAuthRouter(nil)

	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, validClaims()).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	w := get(router, "/required", "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
