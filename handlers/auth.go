package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fga-eps-mds/capju-session-go/internal/config"
	"github.com/fga-eps-mds/capju-session-go/internal/models"
	"github.com/fga-eps-mds/capju-session-go/internal/sessions"
	"github.com/fga-eps-mds/capju-session-go/internal/tokens"
	"github.com/fga-eps-mds/capju-session-go/internal/users"
	"github.com/fga-eps-mds/capju-session-go/pkg/logger"
	"github.com/fga-eps-mds/capju-session-go/pkg/metrics"
)

// AuthHandler holds dependencies
type AuthHandler struct {
	cfg         *config.Config
	usersSvc    *users.Service
	sessionsSvc *sessions.Service
}

func NewAuthHandler(cfg *config.Config, u *users.Service, s *sessions.Service) *AuthHandler {
	return &AuthHandler{cfg: cfg, usersSvc: u, sessionsSvc: s}
}

// Register wires the session endpoints. Login stays public; everything else
// sits behind the auth middleware.
func (h *AuthHandler) Register(rg *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	rg.POST("/login", h.Login)

	a := rg.Group("", requireAuth)
	a.POST("/logout/:initiator", h.Logout)
	a.POST("/logoutExpiredSession", h.LogoutExpiredSession)
	a.GET("/sessionStatus/:id", h.SessionStatus)
	a.PATCH("/logoutAsAdmin/:id", h.LogoutAsAdmin)
	a.GET("/me", h.Me)
}

// Login validates credentials, opens a session and returns the signed token
// that embeds the user snapshot.
func (h *AuthHandler) Login(c *gin.Context) {
	var creds models.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	account, err := h.usersSvc.Authenticate(c.Request.Context(), creds)
	if err != nil {
		if errors.Is(err, users.ErrInvalidCredentials) || errors.Is(err, users.ErrNotAccepted) {
			metrics.LoginsTotal.WithLabelValues("invalid").Inc()
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		logger.Errorf("authentication error: %v", err)
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao realizar login"})
		return
	}

	sessionID, err := h.sessionsSvc.CreateSession(c.Request.Context(), account.CPF, h.cfg.JWT.SessionTTL)
	if err != nil {
		logger.Errorf("failed to create session: %v", err)
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao realizar login"})
		return
	}

	token, err := tokens.Generate(h.cfg.JWT.Secret, account.Snapshot(sessionID), h.cfg.JWT.SessionTTL)
	if err != nil {
		logger.Errorf("failed to sign token: %v", err)
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao realizar login"})
		return
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	c.JSON(http.StatusOK, gin.H{"token": token})
}

var validInitiators = map[string]bool{
	sessions.InitiatorUserRequested: true,
	sessions.InitiatorInactivity:    true,
	sessions.InitiatorTokenExpired:  true,
	sessions.InitiatorRemoteEnd:     true,
	sessions.InitiatorAdmin:         true,
}

// Logout ends the caller's own session, tagged with the initiator from the
// path so audits can tell an explicit logout from a timeout.
func (h *AuthHandler) Logout(c *gin.Context) {
	initiator := c.Param("initiator")
	if !validInitiators[initiator] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "initiator desconhecido"})
		return
	}
	h.endOwnSession(c, initiator)
}

// LogoutExpiredSession ends the caller's session because its token is about
// to expire.
func (h *AuthHandler) LogoutExpiredSession(c *gin.Context) {
	h.endOwnSession(c, sessions.InitiatorTokenExpired)
}

func (h *AuthHandler) endOwnSession(c *gin.Context, initiator string) {
	u := currentUser(c)
	if u == nil || u.SessionID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "autenticação inválida"})
		return
	}
	if err := h.sessionsSvc.End(c.Request.Context(), u.SessionID, initiator); err != nil {
		logger.Errorf("failed to end session %s: %v", u.SessionID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao realizar logout"})
		return
	}
	metrics.LogoutsTotal.WithLabelValues(initiator).Inc()
	c.JSON(http.StatusOK, gin.H{"message": "Sessão encerrada"})
}

// SessionStatus reports whether the session is still active.
func (h *AuthHandler) SessionStatus(c *gin.Context) {
	st, err := h.sessionsSvc.CheckStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		logger.Errorf("session status check failed: %v", err)
		metrics.SessionStatusChecks.WithLabelValues("error").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Erro ao verificar status da sessão"})
		return
	}
	state := "inactive"
	if st.Active {
		state = "active"
	}
	metrics.SessionStatusChecks.WithLabelValues(state).Inc()
	c.JSON(http.StatusOK, st)
}

// LogoutAsAdmin force-ends another user's session. Restricted to the
// administrator role.
func (h *AuthHandler) LogoutAsAdmin(c *gin.Context) {
	u := currentUser(c)
	if u == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "autenticação inválida"})
		return
	}
	if u.Role.Name != "Administrador" {
		c.JSON(http.StatusForbidden, gin.H{"error": "permissão negada"})
		return
	}
	if err := h.sessionsSvc.End(c.Request.Context(), c.Param("id"), sessions.InitiatorAdmin); err != nil {
		logger.Errorf("admin logout of session %s failed: %v", c.Param("id"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao realizar logout"})
		return
	}
	metrics.LogoutsTotal.WithLabelValues(sessions.InitiatorAdmin).Inc()
	c.JSON(http.StatusOK, gin.H{"message": "Sessão encerrada"})
}

// Me returns the authenticated user's snapshot with the flattened permission
// list.
func (h *AuthHandler) Me(c *gin.Context) {
	u := currentUser(c)
	if u == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "autenticação inválida"})
		return
	}
	c.JSON(http.StatusOK, models.Profile{User: *u, AllowedActions: u.Role.AllowedActions})
}

func currentUser(c *gin.Context) *models.User {
	v, ok := c.Get("user")
	if !ok {
		return nil
	}
	u, ok := v.(models.User)
	if !ok {
		return nil
	}
	return &u
}
