package goConsole

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/MrEthical07/goConsole/session"
)

const (
	aliceJSON = `{"id":1,"username":"alice","nickname":"Alice","roles":[` +
		`{"id":2,"code":"ROLE_USER","permissions":[{"code":"USER_VIEW"},{"code":"ROLE_VIEW"}]}]}`
	adminJSON = `{"id":9,"username":"root","roles":[{"id":1,"code":"ROLE_ADMIN"}]}`
)

// consoleBackend is an httptest stand-in for the RBAC admin backend.
type consoleBackend struct {
	t   *testing.T
	srv *httptest.Server

	mu           sync.Mutex
	loginStatus  int
	loginReply   string
	users        map[string]string
	permsStatus  int
	permsReply   string
	logouts      []string
	userGate     chan struct{}
	loginBodies  []string
	requestIDs   []string
	logoutStatus int

	userCalls   atomic.Int32
	permCalls   atomic.Int32
	logoutCalls atomic.Int32
}

func newConsoleBackend(t *testing.T) *consoleBackend {
	t.Helper()
	be := &consoleBackend{
		t:           t,
		loginStatus: http.StatusOK,
		loginReply:  `{"code":200,"message":"ok","data":{"token":"tok-alice"}}`,
		users:       map[string]string{"tok-alice": aliceJSON},
		permsStatus: http.StatusOK,
		permsReply:  `{"code":"200","data":{"permissions":["MENU_VIEW"]}}`,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		be.mu.Lock()
		be.loginBodies = append(be.loginBodies, string(body))
		status, reply := be.loginStatus, be.loginReply
		be.mu.Unlock()
		writeJSON(w, status, reply)
	})
	mux.HandleFunc("POST /api/auth/register", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, `{"code":200,"message":"registered"}`)
	})
	mux.HandleFunc("POST /api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		be.mu.Lock()
		be.logouts = append(be.logouts, r.Header.Get("Authorization"))
		status := be.logoutStatus
		be.mu.Unlock()
		be.logoutCalls.Add(1)
		if status == 0 {
			status = http.StatusOK
		}
		writeJSON(w, status, `{"code":200}`)
	})
	mux.HandleFunc("GET /api/users/current", func(w http.ResponseWriter, r *http.Request) {
		be.userCalls.Add(1)
		be.mu.Lock()
		gate := be.userGate
		be.requestIDs = append(be.requestIDs, r.Header.Get("X-Request-Id"))
		be.mu.Unlock()
		if gate != nil {
			<-gate
		}

		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		be.mu.Lock()
		user, ok := be.users[token]
		be.mu.Unlock()
		if !ok {
			writeJSON(w, http.StatusUnauthorized, `{"code":401,"message":"token expired"}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"code":200,"message":"ok","data":`+user+`}`)
	})
	mux.HandleFunc("GET /api/users/current/permissions", func(w http.ResponseWriter, _ *http.Request) {
		be.permCalls.Add(1)
		be.mu.Lock()
		status, reply := be.permsStatus, be.permsReply
		be.mu.Unlock()
		writeJSON(w, status, reply)
	})

	be.srv = httptest.NewServer(mux)
	t.Cleanup(be.srv.Close)
	return be
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func (be *consoleBackend) set(fn func(be *consoleBackend)) {
	be.mu.Lock()
	defer be.mu.Unlock()
	fn(be)
}

func (be *consoleBackend) logoutHeaders() []string {
	be.mu.Lock()
	defer be.mu.Unlock()
	return append([]string(nil), be.logouts...)
}

func (be *consoleBackend) baseURL() string { return be.srv.URL + "/api" }

// newTestEngine builds an engine against be over storage (memory when nil).
func newTestEngine(t *testing.T, be *consoleBackend, storage session.Storage, configure ...func(*Builder)) *Engine {
	t.Helper()
	if storage == nil {
		storage = session.NewMemoryStorage()
	}
	b := New().WithBaseURL(be.baseURL()).WithStorage(storage).WithLatencyHistograms(true)
	for _, fn := range configure {
		fn(b)
	}
	engine, err := b.Build()
	if err != nil {
		t.Fatalf("build engine: %v", err)
	}
	t.Cleanup(engine.Close)
	return engine
}

func mustLogin(t *testing.T, engine *Engine) string {
	t.Helper()
	token, err := engine.Login(context.Background(), Credentials{Username: "alice", Password: "secret"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	return token
}

type recordingNotifier struct {
	mu    sync.Mutex
	items []Notification
}

func (n *recordingNotifier) Notify(_ context.Context, item Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.items = append(n.items, item)
}

func (n *recordingNotifier) all() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Notification(nil), n.items...)
}
