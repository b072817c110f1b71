package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasky/model"
	"tasky/services"
)

var secret = []byte("test-secret")

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", AccessTokenMiddleware(secret), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userId": c.GetString(UserIDKey)})
	})
	r.GET("/admin", AccessTokenMiddleware(secret), AdminMiddleware(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func do(r http.Handler, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAccessTokenMiddleware(t *testing.T) {
	r := newRouter()

	userToken, err := services.CreateAccessToken(secret, "user-1", "user", time.Hour)
	require.NoError(t, err)
	w := do(r, "/me", "Bearer "+userToken)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"userId":"user-1"}`, w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, do(r, "/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/me", "Token "+userToken).Code)

	other, err := services.CreateAccessToken([]byte("other-secret"), "user-1", "user", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, do(r, "/me", "Bearer "+other).Code)

	expired, err := services.CreateAccessToken(secret, "user-1", "user", -time.Minute)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, do(r, "/me", "Bearer "+expired).Code)

	noUser, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &model.AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString(secret)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/me", "Bearer "+noUser).Code)
}

func TestAdminMiddleware(t *testing.T) {
	r := newRouter()

	userToken, err := services.CreateAccessToken(secret, "user-1", "user", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, do(r, "/admin", "Bearer "+userToken).Code)

	adminToken, err := services.CreateAccessToken(secret, "admin-1", model.RoleAdmin, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, do(r, "/admin", "Bearer "+adminToken).Code)
}
