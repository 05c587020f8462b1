package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fga-eps-mds/capju-session-go/internal/tokens"
)

// Verifier is the minimal interface the middleware depends on
type Verifier interface {
	Verify(raw string) (*tokens.Claims, error)
}

// SecretVerifier validates tokens against the configured signing secret.
type SecretVerifier struct {
	Secret string
}

func (v SecretVerifier) Verify(raw string) (*tokens.Claims, error) {
	return tokens.Verify(v.Secret, raw)
}

// AuthMiddleware returns a Gin middleware that verifies Bearer tokens using
// the provided verifier and exposes the decoded user to handlers.
func AuthMiddleware(ver Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing Authorization header"})
			return
		}
		// Expect 'Bearer <token>'
		var token string
		if n, _ := fmt.Sscanf(auth, "Bearer %s", &token); n != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid Authorization header"})
			return
		}

		claims, err := ver.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set("claims", claims)
		c.Set("user", claims.User)
		c.Set("cpf", claims.User.CPF)
		c.Next()
	}
}
