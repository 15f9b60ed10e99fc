package goConsole

import (
	"context"
)

// Logout clears the session in memory and in storage, then tells the backend in the
// background. The backend notification is best-effort: its failure is logged and
// counted but never undoes the logout.
func (e *Engine) Logout(ctx context.Context) error {
	if e == nil {
		return ErrEngineNotReady
	}

	username := e.username()
	token, _, err := e.clearSession(ctx, nil)
	e.metricInc(MetricLogout)
	if err != nil {
		e.logger.WarnContext(ctx, "clear session storage on logout", "error", err)
	} else {
		e.logger.InfoContext(ctx, "logged out", "username", username)
	}
	e.emitAudit(ctx, auditEventLogout, err == nil, username, "", err, nil)

	if token != "" && e.config.Session.NotifyBackendOnLogout {
		e.notifyLogout(ctx, token)
	}
	return err
}

func (e *Engine) notifyLogout(ctx context.Context, token string) {
	e.mu.RLock()
	if e.closed.Load() {
		e.mu.RUnlock()
		return
	}
	e.pending.Add(1)
	e.mu.RUnlock()

	base := context.WithoutCancel(ctx)
	go func() {
		defer e.pending.Done()

		nctx, cancel := context.WithTimeout(base, e.config.Session.LogoutNotifyTimeout)
		defer cancel()

		if err := e.gateways.Auth.Logout(nctx, token); err != nil {
			e.metricInc(MetricLogoutNotifyFailure)
			e.logger.WarnContext(nctx, "backend logout notification failed", "error", err)
		}
	}()
}

// handleUnauthorized is wired as the client's 401 hook. token is the value the rejected
// call carried; a session that has since moved on is left alone.
func (e *Engine) handleUnauthorized(ctx context.Context, token string, err error) {
	e.mu.RLock()
	current := e.token
	gen := e.generation
	var username string
	if e.user != nil {
		username = e.user.Username
	}
	e.mu.RUnlock()

	if current == "" || current != token {
		return
	}

	_, cleared, clearErr := e.clearSession(ctx, &gen)
	if !cleared {
		return
	}
	if clearErr != nil {
		e.logger.WarnContext(ctx, "clear session storage after 401", "error", clearErr)
	}

	e.metricInc(MetricAuthExpired)
	e.logger.InfoContext(ctx, "authentication expired, session cleared", "username", username, "error", err)
	e.notifier.Notify(ctx, Notice(ErrAuthenticationExpired))
	e.emitAudit(ctx, auditEventAuthExpired, false, username, "", err, nil)
}

func (e *Engine) username() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.user == nil {
		return ""
	}
	return e.user.Username
}
