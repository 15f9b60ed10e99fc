package session

import (
	"context"
	"errors"
	"testing"
)

func TestStoreTokenRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewStore(nil)

	if tok, err := s.Token(ctx); err != nil || tok != "" {
		t.Fatalf("expected empty token, got %q (%v)", tok, err)
	}
	if err := s.SetToken(ctx, "Bearer xyz"); err != nil {
		t.Fatalf("SetToken: %v", err)
	}
	if tok, _ := s.Token(ctx); tok != "Bearer xyz" {
		t.Fatalf("unexpected token %q", tok)
	}
	if err := s.SetToken(ctx, ""); err != nil {
		t.Fatalf("SetToken(empty): %v", err)
	}
	if _, ok, _ := s.Backend().Get(ctx, KeyToken); ok {
		t.Fatal("empty token must delete the key")
	}
}

func TestStorePermissionsFlatArray(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStorage()
	s := NewStore(mem)

	if err := s.SetPermissions(ctx, []string{"USER_VIEW", "ROLE_VIEW", "USER_VIEW", ""}); err != nil {
		t.Fatalf("SetPermissions: %v", err)
	}
	raw, _, _ := mem.Get(ctx, KeyPermissions)
	if raw != `["ROLE_VIEW","USER_VIEW"]` {
		t.Fatalf("unexpected encoding %s", raw)
	}

	if err := s.SetPermissions(ctx, nil); err != nil {
		t.Fatalf("SetPermissions(nil): %v", err)
	}
	codes, ok, err := s.Permissions(ctx)
	if err != nil || !ok || len(codes) != 0 {
		t.Fatalf("expected empty cached array, got %v ok=%v err=%v", codes, ok, err)
	}
}

func TestStoreCorruptPermissionCache(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStorage()
	s := NewStore(mem)

	for _, raw := range []string{"USER_VIEW", "null", `{"a":1}`, `[1,2]`} {
		_ = mem.Set(ctx, KeyPermissions, raw)
		_, ok, err := s.Permissions(ctx)
		if ok || !errors.Is(err, ErrCorruptPermissionCache) {
			t.Fatalf("%q: expected corrupt cache, got ok=%v err=%v", raw, ok, err)
		}
	}

	snap, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load must tolerate corrupt cache: %v", err)
	}
	if snap.HasCache {
		t.Fatal("corrupt cache must load as absent")
	}
}

func TestStoreClearRemovesAllKeys(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStorage()
	s := NewStore(mem)

	_ = s.SetToken(ctx, "abc")
	_ = s.SetPermissions(ctx, []string{"USER_VIEW"})
	_ = s.MarkLoading(ctx)
	_ = mem.Set(ctx, "unrelated", "keep")

	if loading, _ := s.Loading(ctx); !loading {
		t.Fatal("expected marker to be set")
	}
	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	for _, key := range []string{KeyToken, KeyPermissions, KeyLoadingUserInfo} {
		if _, ok, _ := mem.Get(ctx, key); ok {
			t.Fatalf("expected %s to be cleared", key)
		}
	}
	if mem.Len() != 1 {
		t.Fatalf("Clear must only touch session keys, %d keys left", mem.Len())
	}
}

func TestStoreLoad(t *testing.T) {
	ctx := context.Background()
	s := NewStore(NewMemoryStorage())
	_ = s.SetToken(ctx, "abc")
	_ = s.SetPermissions(ctx, []string{"MENU_VIEW"})

	snap, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if snap.Token != "abc" || !snap.HasCache || len(snap.Permissions) != 1 || snap.Loading {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}
