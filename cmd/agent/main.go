// The agent runs the client side of the session lifecycle: it keeps the
// shared token store, the inactivity monitor and the verification timers
// alive for one terminal, talking to the session service over HTTP.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fga-eps-mds/capju-session-go/internal/api"
	"github.com/fga-eps-mds/capju-session-go/internal/config"
	"github.com/fga-eps-mds/capju-session-go/internal/models"
	"github.com/fga-eps-mds/capju-session-go/internal/session"
	"github.com/fga-eps-mds/capju-session-go/internal/store"
	"github.com/fga-eps-mds/capju-session-go/pkg/logger"
)

// logNotifier prints notifications to the terminal.
type logNotifier struct{}

func (logNotifier) Notify(n session.Notification) {
	if n.Status == "error" {
		logger.Warnf("notification: %s", n.Description)
		return
	}
	logger.Infof("notification: %s", n.Description)
}

// logWarning renders the inactivity warning in place of a modal.
type logWarning struct{}

func (logWarning) Show(countdown time.Duration) {
	logger.Warnf("sessão inativa: logout automático em %s (qualquer entrada cancela)", countdown)
}

func (logWarning) Hide() {}

// restartReloader signals the run loop to restart the agent, the terminal
// equivalent of a page reload.
type restartReloader struct {
	ch chan struct{}
}

func (r *restartReloader) Reload() {
	select {
	case r.ch <- struct{}{}:
	default:
	}
}

// stdinActivity treats every line read from stdin as user interaction.
type stdinActivity struct {
	mu      sync.Mutex
	handler func()
	lines   chan string
}

func newStdinActivity() *stdinActivity {
	a := &stdinActivity{lines: make(chan string, 8)}
	go func() {
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			a.mu.Lock()
			h := a.handler
			a.mu.Unlock()
			if h != nil {
				h()
			}
			select {
			case a.lines <- line:
			default:
			}
		}
	}()
	return a
}

func (a *stdinActivity) Subscribe(handler func()) func() {
	a.mu.Lock()
	a.handler = handler
	a.mu.Unlock()
	return func() {
		a.mu.Lock()
		a.handler = nil
		a.mu.Unlock()
	}
}

func main() {
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	if cfg.Redis.Host == "" {
		logger.Fatalf("REDIS_HOST is required: the agent keeps its session in the shared store")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Fatalf("failed to connect to Redis: %v", err)
	}

	st := store.NewRedis(client, "capju")
	backend := api.NewClient(cfg.Session.APIBaseURL, cfg.Session.RequestTimeout, func(ctx context.Context) string {
		raw, _ := st.Get(ctx, store.KeyToken)
		return raw
	})

	activity := newStdinActivity()
	reloader := &restartReloader{ch: make(chan struct{}, 1)}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	for {
		mgr := session.New(cfg.Session, backend, st, session.Collaborators{
			Notifier: logNotifier{},
			Warning:  logWarning{},
			Reloader: reloader,
			Activity: activity,
		})
		mgr.Start(ctx)
		if u := mgr.CurrentUser(); u != nil {
			logger.Infof("sessão ativa para %s", u.FullName)
		} else {
			logger.Infof("nenhuma sessão ativa; use: login <cpf> <senha>")
		}

		if !runOnce(ctx, mgr, activity, reloader, sigs) {
			mgr.Stop()
			return
		}
		mgr.Stop()
		logger.Infof("reiniciando agente")
	}
}

// runOnce drives one manager instance until a reload is requested. Returns
// false when the agent should exit instead of restarting.
func runOnce(ctx context.Context, mgr *session.Manager, activity *stdinActivity, reloader *restartReloader, sigs chan os.Signal) bool {
	for {
		select {
		case <-reloader.ch:
			return true
		case <-sigs:
			return false
		case line := <-activity.lines:
			if line == "" {
				continue
			}
			handleCommand(ctx, mgr, line)
		}
	}
}

func handleCommand(ctx context.Context, mgr *session.Manager, line string) {
	fields := strings.Fields(line)
	switch fields[0] {
	case "login":
		if len(fields) != 3 {
			fmt.Println("uso: login <cpf> <senha>")
			return
		}
		u, err := mgr.Login(ctx, models.Credentials{CPF: fields[1], Password: fields[2]})
		if err != nil {
			logger.Errorf("login falhou: %v", err)
			return
		}
		logger.Infof("bem-vindo(a), %s", u.FullName)
	case "logout":
		if err := mgr.Logout(ctx, session.ReasonUserRequested); err != nil {
			logger.Errorf("logout falhou: %v", err)
		}
	case "whoami":
		p, err := mgr.FetchEnrichedProfile(ctx)
		if err != nil {
			logger.Warnf("%v", err)
			return
		}
		fmt.Printf("%s (%s) ações: %s\n", p.FullName, p.Role.Name, strings.Join(p.AllowedActions, ", "))
	default:
		// any other input only counts as activity
	}
}
