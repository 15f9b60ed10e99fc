//go:build integration
// +build integration

package test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	goConsole "github.com/MrEthical07/goConsole"
	"github.com/MrEthical07/goConsole/session"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// redisMode describes which Redis backend the suite is running against.
type redisMode struct {
	name  string
	setup func(t *testing.T) (redis.UniversalClient, func())
}

// redisModes returns miniredis, plus a real server when REDIS_ADDR is set
// (e.g. "127.0.0.1:6379").
func redisModes(t *testing.T) []redisMode {
	t.Helper()
	modes := []redisMode{
		{
			name: "miniredis",
			setup: func(t *testing.T) (redis.UniversalClient, func()) {
				t.Helper()
				mr, err := miniredis.Run()
				if err != nil {
					t.Fatalf("miniredis: %v", err)
				}
				rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
				return rdb, func() { _ = rdb.Close(); mr.Close() }
			},
		},
	}

	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		modes = append(modes, redisMode{
			name: "standalone:" + addr,
			setup: func(t *testing.T) (redis.UniversalClient, func()) {
				t.Helper()
				rdb := redis.NewClient(&redis.Options{Addr: addr})
				ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
				defer cancel()
				if err := rdb.Ping(ctx).Err(); err != nil {
					t.Skipf("cannot connect to Redis at %s: %v", addr, err)
				}
				rdb.FlushDB(context.Background())
				return rdb, func() { rdb.FlushDB(context.Background()); _ = rdb.Close() }
			},
		})
	}
	return modes
}

const aliceJSON = `{"id":1,"username":"alice","roles":[` +
	`{"code":"ROLE_USER","permissions":[{"code":"USER_VIEW"},{"code":"ROLE_VIEW"}]}]}`

func newBackend(t *testing.T) *httptest.Server {
	t.Helper()
	reply := func(w http.ResponseWriter, status int, body string) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, _ *http.Request) {
		reply(w, http.StatusOK, `{"code":200,"data":{"tokenType":"Bearer","accessToken":"tok-alice"}}`)
	})
	mux.HandleFunc("POST /api/auth/logout", func(w http.ResponseWriter, _ *http.Request) {
		reply(w, http.StatusOK, `{"code":200}`)
	})
	mux.HandleFunc("GET /api/users/current", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-alice" {
			reply(w, http.StatusUnauthorized, `{"code":401}`)
			return
		}
		reply(w, http.StatusOK, `{"code":200,"data":`+aliceJSON+`}`)
	})
	mux.HandleFunc("GET /api/users/current/permissions", func(w http.ResponseWriter, _ *http.Request) {
		reply(w, http.StatusOK, `{"code":200,"data":{"permissions":["MENU_VIEW"]}}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newEngine(t *testing.T, srv *httptest.Server, rdb redis.UniversalClient) *goConsole.Engine {
	t.Helper()
	engine, err := goConsole.New().
		WithBaseURL(srv.URL + "/api").
		WithStorage(session.NewRedisStorage(rdb, "it", 0)).
		Build()
	if err != nil {
		t.Fatalf("build engine: %v", err)
	}
	t.Cleanup(engine.Close)
	return engine
}
