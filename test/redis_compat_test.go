//go:build integration
// +build integration

package test

import (
	"context"
	"testing"

	goConsole "github.com/MrEthical07/goConsole"
	"github.com/MrEthical07/goConsole/session"
)

func TestRedisSessionSurvivesRestart(t *testing.T) {
	for _, mode := range redisModes(t) {
		t.Run(mode.name, func(t *testing.T) {
			rdb, cleanup := mode.setup(t)
			defer cleanup()
			srv := newBackend(t)
			ctx := context.Background()

			first := newEngine(t, srv, rdb)
			token, err := first.Login(ctx, goConsole.Credentials{Username: "alice", Password: "pw"})
			if err != nil {
				t.Fatalf("login: %v", err)
			}
			if token != "Bearer tok-alice" {
				t.Fatalf("token = %q", token)
			}
			if _, err := first.FetchCurrentUser(ctx); err != nil {
				t.Fatalf("fetch user: %v", err)
			}
			first.Close()

			second := newEngine(t, srv, rdb)
			if second.Token() != token {
				t.Fatalf("restored token = %q", second.Token())
			}
			// Cached permissions answer before the user is resolved again.
			if !second.HasPermission("MENU_VIEW") || !second.HasPermission("USER_VIEW") {
				t.Fatalf("cached permissions not hydrated: %v", second.Permissions())
			}
			if nav := second.Navigate(ctx, "/role"); !nav.Allowed() {
				t.Fatalf("navigate /role = %s", nav.Outcome)
			}
		})
	}
}

func TestRedisLogoutClearsKeys(t *testing.T) {
	for _, mode := range redisModes(t) {
		t.Run(mode.name, func(t *testing.T) {
			rdb, cleanup := mode.setup(t)
			defer cleanup()
			srv := newBackend(t)
			ctx := context.Background()

			engine := newEngine(t, srv, rdb)
			if _, err := engine.Login(ctx, goConsole.Credentials{Username: "alice", Password: "pw"}); err != nil {
				t.Fatalf("login: %v", err)
			}
			if _, err := engine.FetchCurrentUser(ctx); err != nil {
				t.Fatalf("fetch user: %v", err)
			}
			if err := engine.Logout(ctx); err != nil {
				t.Fatalf("logout: %v", err)
			}

			for _, key := range []string{session.KeyToken, session.KeyPermissions, session.KeyLoadingUserInfo} {
				n, err := rdb.Exists(ctx, "it:"+key).Result()
				if err != nil {
					t.Fatalf("exists %s: %v", key, err)
				}
				if n != 0 {
					t.Fatalf("key %s survived logout", key)
				}
			}
		})
	}
}

func TestRedisStaleMarkerDroppedOnStart(t *testing.T) {
	for _, mode := range redisModes(t) {
		t.Run(mode.name, func(t *testing.T) {
			rdb, cleanup := mode.setup(t)
			defer cleanup()
			srv := newBackend(t)
			ctx := context.Background()

			if err := rdb.Set(ctx, "it:"+session.KeyToken, "Bearer tok-alice", 0).Err(); err != nil {
				t.Fatalf("seed token: %v", err)
			}
			if err := rdb.Set(ctx, "it:"+session.KeyLoadingUserInfo, "true", 0).Err(); err != nil {
				t.Fatalf("seed marker: %v", err)
			}

			engine := newEngine(t, srv, rdb)
			if n, _ := rdb.Exists(ctx, "it:"+session.KeyLoadingUserInfo).Result(); n != 0 {
				t.Fatalf("stale marker kept")
			}
			if _, err := engine.FetchCurrentUser(ctx); err != nil {
				t.Fatalf("fetch user after restart: %v", err)
			}
		})
	}
}
