package goConsole

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/MrEthical07/goConsole/api"
	"github.com/MrEthical07/goConsole/permission"
)

// FetchCurrentUser resolves the signed-in user and the effective permission set.
//
// Concurrent callers for the same session share a single backend round trip. The shared
// call keeps running when ctx ends; ctx only bounds how long this caller waits. On
// failure the session is cleared and the error is returned. If the session is cleared
// or replaced while the call is in flight its result is dropped and ErrSessionChanged is
// returned.
func (e *Engine) FetchCurrentUser(ctx context.Context) (UserInfo, error) {
	if e == nil || e.gateways.Auth == nil {
		return UserInfo{}, ErrEngineNotReady
	}

	e.mu.RLock()
	token := e.token
	gen := e.generation
	e.mu.RUnlock()
	if token == "" {
		return UserInfo{}, ErrNotLoggedIn
	}
	e.metricInc(MetricUserFetchCalls)

	detached := context.WithoutCancel(ctx)
	ch := e.userFlight.DoChan(strconv.FormatUint(gen, 10), func() (any, error) {
		return e.resolveCurrentUser(detached, gen)
	})

	select {
	case <-ctx.Done():
		return UserInfo{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return UserInfo{}, res.Err
		}
		return res.Val.(UserInfo), nil
	}
}

func (e *Engine) resolveCurrentUser(ctx context.Context, gen uint64) (UserInfo, error) {
	started := time.Now()

	if err := e.store.MarkLoading(ctx); err != nil {
		e.logger.WarnContext(ctx, "write user-info marker", "error", err)
	}
	defer func() {
		if err := e.store.ClearLoading(ctx); err != nil {
			e.logger.WarnContext(ctx, "clear user-info marker", "error", err)
		}
	}()

	user, perms, err := e.loadUser(ctx)
	e.metricObserve(MetricUserFetchLatency, time.Since(started))
	if err != nil {
		return UserInfo{}, e.failUserFetch(ctx, gen, err)
	}

	if err := e.commitUser(ctx, gen, user, perms); err != nil {
		e.metricInc(MetricUserFetchFailure)
		return UserInfo{}, err
	}

	e.metricInc(MetricUserFetchSuccess)
	e.logger.InfoContext(ctx, "user resolved",
		"username", user.Username,
		"roles", user.RoleCodes(),
		"permissions", perms.Len(),
	)
	e.emitAudit(ctx, auditEventUserResolved, true, user.Username, "", nil, func() map[string]string {
		return map[string]string{"permissions": strconv.Itoa(perms.Len())}
	})
	return user, nil
}

// loadUser fetches the user from the first candidate path that answers, resolves its
// roles and merges the supplementary permission list.
func (e *Engine) loadUser(ctx context.Context) (UserInfo, permission.Set, error) {
	user, err := e.currentUser(ctx)
	if err != nil {
		return UserInfo{}, nil, err
	}

	perms := e.resolver.Resolve(roleGrants(user.Roles))

	if !e.config.Permission.SkipSupplementaryFetch {
		extra, err := e.gateways.Auth.CurrentPermissions(ctx)
		if err != nil {
			err = fmt.Errorf("%w: %w", ErrSecondaryPermissionFetch, err)
			e.metricInc(MetricSecondaryPermissionFailure)
			e.logger.WarnContext(ctx, "supplementary permissions unavailable", "username", user.Username, "error", err)
		} else {
			perms = e.resolver.Augment(perms, extra.Permissions)
		}
	}

	return user, perms, nil
}

func (e *Engine) currentUser(ctx context.Context) (UserInfo, error) {
	var lastErr error
	for _, path := range e.config.Backend.CurrentUserPaths {
		user, err := e.gateways.Auth.CurrentUser(ctx, path)
		if err == nil {
			return user, nil
		}
		if errors.Is(err, ErrAuthenticationExpired) {
			return UserInfo{}, err
		}
		e.logger.DebugContext(ctx, "current user path failed", "path", path, "error", err)
		lastErr = err
	}
	if lastErr == nil {
		lastErr = api.ErrMissingData
	}
	return UserInfo{}, lastErr
}

// commitUser installs the resolved user if gen is still the live session. The durable
// cache is written under the same transition so a later logout cannot be overtaken.
func (e *Engine) commitUser(ctx context.Context, gen uint64, user UserInfo, perms permission.Set) error {
	e.transition.Lock()
	defer e.transition.Unlock()

	e.mu.Lock()
	if e.generation != gen || e.token == "" {
		e.mu.Unlock()
		return ErrSessionChanged
	}
	e.user = &user
	e.permissions = perms
	e.mu.Unlock()

	// A lost cache only costs a refetch after restart.
	if err := e.store.SetPermissions(ctx, perms.Sorted()); err != nil {
		e.metricInc(MetricPermissionCacheWriteFailure)
		e.logger.WarnContext(ctx, "persist permission cache", "error", err)
	}
	return nil
}

func (e *Engine) failUserFetch(ctx context.Context, gen uint64, err error) error {
	e.metricInc(MetricUserFetchFailure)

	// A 401 has already cleared the session through the client hook.
	if !errors.Is(err, ErrAuthenticationExpired) {
		if _, _, clearErr := e.clearSession(ctx, &gen); clearErr != nil {
			e.logger.WarnContext(ctx, "clear session after failed user fetch", "error", clearErr)
		}
	}

	e.logger.InfoContext(ctx, "user resolution failed", "error", err)
	e.emitAudit(ctx, auditEventUserResolveFailure, false, "", "", err, nil)
	return err
}
