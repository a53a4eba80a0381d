package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"product_api/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "middleware-test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func setupAuthRouter(handlerCalled *bool, identity **auth.Identity) *gin.Engine {
	router := gin.New()
	router.Use(AuthMiddleware(auth.NewVerifier(testSecret)))
	router.POST("/protected", func(c *gin.Context) {
		*handlerCalled = true
		if id, ok := auth.IdentityFromContext(c.Request.Context()); ok {
			*identity = id
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return router
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	expired, err := auth.GenerateToken("user-1", testSecret, -time.Hour)
	require.NoError(t, err)
	foreign, err := auth.GenerateToken("user-1", "someone-else", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name        string
		header      string
		wantMessage string
	}{
		{name: "no header", header: "", wantMessage: "Access denied"},
		{name: "token without scheme", header: foreign, wantMessage: "Access denied"},
		{name: "wrong scheme", header: "Token abc", wantMessage: "Access denied"},
		{name: "garbage token", header: "Bearer abc.def.ghi", wantMessage: "Invalid token"},
		{name: "expired token", header: "Bearer " + expired, wantMessage: "Invalid token"},
		{name: "foreign signature", header: "Bearer " + foreign, wantMessage: "Invalid token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var called bool
			var identity *auth.Identity
			router := setupAuthRouter(&called, &identity)

			req := httptest.NewRequest(http.MethodPost, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.False(t, called, "handler must not run for rejected requests")

			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantMessage, body["message"])
		})
	}
}

func TestAuthMiddleware_AdmitsValidToken(t *testing.T) {
	token, err := auth.GenerateToken("user-ok", testSecret, time.Hour)
	require.NoError(t, err)

	var called bool
	var identity *auth.Identity
	router := setupAuthRouter(&called, &identity)

	req := httptest.NewRequest(http.MethodPost, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, called)
	require.NotNil(t, identity)
	assert.Equal(t, "user-ok", identity.UserID)
}
