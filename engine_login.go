package goConsole

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/MrEthical07/goConsole/api"
	"github.com/MrEthical07/goConsole/permission"
)

// Login sends creds to the backend and stores the normalised bearer token.
//
// The user is not resolved yet; call FetchCurrentUser or Navigate next. On any failure,
// including ErrMalformedLoginResponse, the previous session is left exactly as it was.
func (e *Engine) Login(ctx context.Context, creds Credentials) (string, error) {
	if e == nil || e.gateways.Auth == nil {
		return "", ErrEngineNotReady
	}

	resp, err := e.gateways.Auth.Login(ctx, creds)
	if err != nil {
		err = classifyLoginError(err)
		if errors.Is(err, ErrMalformedLoginResponse) {
			e.metricInc(MetricLoginMalformed)
		} else {
			e.metricInc(MetricLoginFailure)
		}
		e.logger.InfoContext(ctx, "login failed", "username", creds.Username, "error", err)
		e.emitAudit(ctx, auditEventLoginFailure, false, creds.Username, "", err, nil)
		return "", err
	}

	token, err := resp.Bearer()
	if err != nil {
		e.metricInc(MetricLoginMalformed)
		return "", err
	}

	if err := e.commitLogin(ctx, token); err != nil {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, creds.Username, "", err, nil)
		return "", err
	}

	e.metricInc(MetricLoginSuccess)
	e.logger.InfoContext(ctx, "login succeeded", "username", creds.Username, "shape", resp.Shape.String())
	e.emitAudit(ctx, auditEventLoginSuccess, true, creds.Username, "", nil, func() map[string]string {
		return map[string]string{"shape": resp.Shape.String()}
	})

	return token, nil
}

// commitLogin replaces the session with a fresh one holding only token. The durable
// permission cache of a previous user must not survive, so a failure to drop it logs the
// session out completely.
func (e *Engine) commitLogin(ctx context.Context, token string) error {
	e.transition.Lock()
	defer e.transition.Unlock()

	if err := e.store.SetToken(ctx, token); err != nil {
		return err
	}

	if err := e.store.ClearDerived(ctx); err != nil {
		e.mu.Lock()
		e.token = ""
		e.user = nil
		e.permissions = permission.Set{}
		e.generation++
		e.mu.Unlock()
		_ = e.store.Clear(ctx)
		return err
	}

	e.mu.Lock()
	e.token = token
	e.user = nil
	e.permissions = permission.Set{}
	e.generation++
	e.mu.Unlock()

	return nil
}

// Register creates an account through the backend. It does not sign in.
func (e *Engine) Register(ctx context.Context, reg Registration) error {
	err := e.gateways.Auth.Register(ctx, reg)
	e.emitAudit(ctx, auditEventRegister, err == nil, reg.Username, "", err, nil)
	return err
}

// classifyLoginError maps a backend rejection of the credentials to
// ErrInvalidCredentials and leaves every other failure as is.
func classifyLoginError(err error) error {
	if errors.Is(err, api.ErrAuthenticationExpired) {
		return fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}
	if be, ok := api.AsBackendError(err); ok && be.Status == http.StatusBadRequest && be.Code == "" {
		return fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}
	return err
}
