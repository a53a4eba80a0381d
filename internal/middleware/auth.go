package middleware

import (
	"errors"
	"net/http"

	"product_api/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// TokenVerifier is satisfied by *auth.Verifier.
type TokenVerifier interface {
	Verify(rawHeader string) (*auth.Identity, error)
}

// AuthMiddleware admits requests carrying a valid bearer token and attaches
// the caller's identity to the request context.
func AuthMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := verifier.Verify(c.GetHeader("Authorization"))
		if err != nil {
			if errors.Is(err, auth.ErrMissingOrMalformed) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Access denied"})
				return
			}
			logrus.WithError(err).WithField("path", c.Request.URL.Path).Debug("Rejected bearer token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid token"})
			return
		}

		c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), identity))
		c.Next()
	}
}
