package session

import (
	"context"
	"time"

	"github.com/fga-eps-mds/capju-session-go/internal/api"
	"github.com/fga-eps-mds/capju-session-go/internal/models"
)

// LogoutReason tags every path that can end a session.
type LogoutReason string

const (
	ReasonUserRequested LogoutReason = "userRequested"
	ReasonInactivity    LogoutReason = "timeoutDueToInactivity"
	ReasonTokenExpired  LogoutReason = "tokenExpired"
	ReasonRemoteEnd     LogoutReason = "sessionEndedRemotely"
	ReasonForcedByAdmin LogoutReason = "forcedByAdmin"
)

// Backend is the remote collaborator surface the manager depends on.
// *api.Client implements it.
type Backend interface {
	SignIn(ctx context.Context, creds models.Credentials) (string, error)
	SignOut(ctx context.Context, initiator string) error
	SignOutExpiredSession(ctx context.Context) error
	CheckSessionStatus(ctx context.Context, sessionID string) (*api.SessionStatus, error)
}

// Notification is a transient user-visible message.
type Notification struct {
	ID          string
	Description string
	Status      string // "success" | "error"
	Closable    bool
}

// Notifier receives notifications fire-and-forget.
type Notifier interface {
	Notify(n Notification)
}

// WarningPresenter shows the inactivity warning with its countdown.
type WarningPresenter interface {
	Show(countdown time.Duration)
	Hide()
}

// Reloader restarts the surrounding application after a session ends, the
// equivalent of a full page reload.
type Reloader interface {
	Reload()
}

// ActivitySource delivers user-interaction events. Subscribe returns the
// cancel func that detaches the handler.
type ActivitySource interface {
	Subscribe(handler func()) (cancel func())
}

// NopNotifier discards notifications.
type NopNotifier struct{}

func (NopNotifier) Notify(Notification) {}

// NopWarning ignores the warning surface.
type NopWarning struct{}

func (NopWarning) Show(time.Duration) {}
func (NopWarning) Hide()              {}
