package goConsole

import (
	"context"
	"errors"
	"time"

	"github.com/MrEthical07/goConsole/api"
	"github.com/MrEthical07/goConsole/session"
)

const (
	auditEventLoginSuccess        = "login_success"
	auditEventLoginFailure        = "login_failure"
	auditEventRegister            = "register"
	auditEventUserResolved        = "user_resolved"
	auditEventUserResolveFailure  = "user_resolve_failure"
	auditEventLogout              = "logout"
	auditEventAuthExpired         = "authentication_expired"
	auditEventNavigationForbidden = "navigation_forbidden"
)

// AuditErrorCode is the stable error classification written to audit events.
type AuditErrorCode string

const (
	auditErrMalformedLogin     AuditErrorCode = "malformed_login_response"
	auditErrInvalidCredentials AuditErrorCode = "invalid_credentials"
	auditErrAuthExpired        AuditErrorCode = "authentication_expired"
	auditErrForbidden          AuditErrorCode = "forbidden"
	auditErrTimeout            AuditErrorCode = "timeout"
	auditErrNetwork            AuditErrorCode = "network"
	auditErrSessionChanged     AuditErrorCode = "session_changed"
	auditErrStorage            AuditErrorCode = "storage_unavailable"
	auditErrBackend            AuditErrorCode = "backend_error"
	auditErrInternal           AuditErrorCode = "internal_error"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	username string,
	route string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		Username:  username,
		Route:     route,
		RequestID: api.RequestIDFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrMalformedLoginResponse):
		return auditErrMalformedLogin
	case errors.Is(err, ErrInvalidCredentials):
		return auditErrInvalidCredentials
	case errors.Is(err, ErrAuthenticationExpired):
		return auditErrAuthExpired
	case errors.Is(err, ErrForbidden):
		return auditErrForbidden
	case errors.Is(err, api.ErrTimeout):
		return auditErrTimeout
	case errors.Is(err, ErrNetworkOrTimeout):
		return auditErrNetwork
	case errors.Is(err, ErrSessionChanged):
		return auditErrSessionChanged
	case errors.Is(err, session.ErrStorageUnavailable):
		return auditErrStorage
	}
	if _, ok := api.AsBackendError(err); ok {
		return auditErrBackend
	}
	return auditErrInternal
}
