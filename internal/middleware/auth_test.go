package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/franciscosanchezn/foodgram-api/internal/auth"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeValidator map[string]*auth.Claims

func (f fakeValidator) ValidateToken(_ context.Context, token string) (*auth.Claims, error) {
	if claims, ok := f[token]; ok {
		return claims, nil
	}
	return nil, auth.ErrInvalidToken
}

var validator = fakeValidator{
	"user-token":  {UserID: 7, Role: "user"},
	"admin-token": {UserID: 1, Role: "admin"},
}

func setupRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handlers = append(handlers, func(c *gin.Context) {
		id, ok := CurrentUserID(c)
		c.JSON(http.StatusOK, gin.H{
			"authenticated": ok,
			"user_id":       id,
			"admin":         IsAdmin(c),
			"token":         AccessToken(c),
		})
	})
	router.GET("/test", handlers...)
	return router
}

func doRequest(router *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestTokenAuth(t *testing.T) {
	router := setupRouter(TokenAuth(validator))

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"token scheme", "Token user-token", http.StatusOK},
		{"bearer scheme", "Bearer user-token", http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"unknown scheme", "Basic dXNlcjpwYXNz", http.StatusUnauthorized},
		{"empty token", "Token ", http.StatusUnauthorized},
		{"invalid token", "Token nope", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(router, tt.header)
			assert.Equal(t, tt.wantStatus, w.Code)
			body := decode(t, w)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, true, body["authenticated"])
				assert.Equal(t, float64(7), body["user_id"])
				assert.Equal(t, "user-token", body["token"])
			} else {
				assert.NotEmpty(t, body["detail"])
			}
		})
	}
}

func TestOptionalTokenAuth(t *testing.T) {
	router := setupRouter(OptionalTokenAuth(validator))

	w := doRequest(router, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode(t, w)["authenticated"])

	w = doRequest(router, "Token admin-token")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["authenticated"])
	assert.Equal(t, true, body["admin"])

	w = doRequest(router, "Token revoked")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRole(t *testing.T) {
	router := setupRouter(TokenAuth(validator), RequireRole("admin"))

	w := doRequest(router, "Token admin-token")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, "Token user-token")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.NotEmpty(t, decode(t, w)["detail"])

	// Without TokenAuth in front there is no identity at all
	anonymous := setupRouter(RequireRole("admin"))
	w = doRequest(anonymous, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
