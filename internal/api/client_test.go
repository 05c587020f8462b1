package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fga-eps-mds/capju-session-go/internal/models"
)

func staticToken(tok string) TokenSource {
	return func(context.Context) string { return tok }
}

func TestSignIn(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/login", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var creds models.Credentials
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		assert.Equal(t, "12345678901", creds.CPF)
		assert.Equal(t, "senha", creds.Password)

		_ = json.NewEncoder(w).Encode(map[string]string{"token": "jwt-abc"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, nil)
	tok, err := c.SignIn(context.Background(), models.Credentials{CPF: "12345678901", Password: "senha"})
	require.NoError(t, err)
	assert.Equal(t, "jwt-abc", tok)
}

func TestSignIn_ServerErrorMessageSurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "Credenciais inválidas"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, nil)
	_, err := c.SignIn(context.Background(), models.Credentials{CPF: "1", Password: "x"})
	require.Error(t, err)
	assert.Equal(t, "Credenciais inválidas", err.Error())
}

func TestSignIn_EmptyTokenRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, nil)
	_, err := c.SignIn(context.Background(), models.Credentials{CPF: "1", Password: "x"})
	require.Error(t, err)
}

func TestSignOut_PathAndBearerHeader(t *testing.T) {
	var gotPath, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.Equal(t, http.MethodPost, r.Method)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, staticToken("tok-1"))
	require.NoError(t, c.SignOut(context.Background(), "timeoutDueToInactivity"))
	assert.Equal(t, "/logout/timeoutDueToInactivity", gotPath)
	assert.Equal(t, "Bearer tok-1", gotAuth)
}

func TestSignOutExpiredSession(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.Equal(t, http.MethodPost, r.Method)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, staticToken("tok-1"))
	require.NoError(t, c.SignOutExpiredSession(context.Background()))
	assert.Equal(t, "/logoutExpiredSession", gotPath)
}

func TestCheckSessionStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/sessionStatus/sess-1", r.URL.Path)
		_ = json.NewEncoder(w).Encode(SessionStatus{Active: false, Message: "Sessão encerrada"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, staticToken("tok-1"))
	st, err := c.CheckSessionStatus(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.False(t, st.Active)
	assert.Equal(t, "Sessão encerrada", st.Message)
}

func TestCheckSessionStatus_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "Erro ao verificar status da sessão"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, staticToken("tok-1"))
	_, err := c.CheckSessionStatus(context.Background(), "sess-1")
	require.Error(t, err)
	assert.Equal(t, "Erro ao verificar status da sessão", err.Error())
}

func TestLogoutAsAdmin(t *testing.T) {
	var gotPath, gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, staticToken("admin-tok"))
	require.NoError(t, c.LogoutAsAdmin(context.Background(), "sess-9"))
	assert.Equal(t, http.MethodPatch, gotMethod)
	assert.Equal(t, "/logoutAsAdmin/sess-9", gotPath)
}

func TestNoAuthorizationHeaderWithoutToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, staticToken(""))
	require.NoError(t, c.SignOutExpiredSession(context.Background()))
	assert.Empty(t, gotAuth)
}

func TestResponseError_FallsBackToStatusCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, nil)
	err := c.SignOutExpiredSession(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}
