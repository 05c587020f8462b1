package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/fga-eps-mds/capju-session-go/internal/models"
	"github.com/fga-eps-mds/capju-session-go/internal/tokens"
)

// fakeVerifier implements Verifier
type fakeVerifier struct{}

func (f *fakeVerifier) Verify(raw string) (*tokens.Claims, error) {
	if raw == "goodtoken" {
		return &tokens.Claims{User: models.User{CPF: "12345678901", FullName: "Usuária de Teste"}}, nil
	}
	return nil, fmt.Errorf("invalid token")
}

func TestAuthMiddleware_NoHeader(t *testing.T) {
	g := gin.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rw := httptest.NewRecorder()

	g.GET("/", AuthMiddleware(&fakeVerifier{}), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	g.ServeHTTP(rw, req)

	require.Equal(t, http.StatusUnauthorized, rw.Code)
}

func TestAuthMiddleware_InvalidHeader(t *testing.T) {
	g := gin.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "BadHeader")
	rw := httptest.NewRecorder()

	g.GET("/", AuthMiddleware(&fakeVerifier{}), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	g.ServeHTTP(rw, req)

	require.Equal(t, http.StatusUnauthorized, rw.Code)
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	g := gin.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer goodtoken")
	rw := httptest.NewRecorder()

	g.GET("/", AuthMiddleware(&fakeVerifier{}), func(c *gin.Context) {
		require.Equal(t, "12345678901", c.GetString("cpf"))
		u, ok := c.Get("user")
		require.True(t, ok)
		resp, _ := json.Marshal(gin.H{"user": u})
		c.Writer.Write(resp)
	})
	g.ServeHTTP(rw, req)

	require.Equal(t, http.StatusOK, rw.Code)
	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &got))
	require.Contains(t, got, "user")
}

func TestAuthMiddleware_SecretVerifier(t *testing.T) {
	const secret = "mw-secret"
	tok, err := tokens.Generate(secret, &models.User{CPF: "98765432100", SessionID: "sess-mw"}, time.Hour)
	require.NoError(t, err)

	g := gin.New()
	g.GET("/", AuthMiddleware(SecretVerifier{Secret: secret}), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"cpf": c.GetString("cpf")})
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rw := httptest.NewRecorder()
	g.ServeHTTP(rw, req)
	require.Equal(t, http.StatusOK, rw.Code)
	require.Contains(t, rw.Body.String(), "98765432100")

	// token signed with another secret must be rejected
	bad, err := tokens.Generate("other-secret", &models.User{CPF: "98765432100"}, time.Hour)
	require.NoError(t, err)
	req2 := httptest.NewRequest(http.MethodGet, "/", nil)
	req2.Header.Set("Authorization", "Bearer "+bad)
	rw2 := httptest.NewRecorder()
	g.ServeHTTP(rw2, req2)
	require.Equal(t, http.StatusUnauthorized, rw2.Code)
}
