package goConsole

import (
	"context"
	"errors"

	"github.com/MrEthical07/goConsole/api"
	"github.com/MrEthical07/goConsole/session"
)

// NoticeLevel grades a user-visible notification.
type NoticeLevel int

const (
	NoticeInfo NoticeLevel = iota
	NoticeWarning
	NoticeError
)

func (l NoticeLevel) String() string {
	switch l {
	case NoticeWarning:
		return "warning"
	case NoticeError:
		return "error"
	default:
		return "info"
	}
}

// Notification is a human-readable message for the console user.
type Notification struct {
	Level   NoticeLevel
	Message string
	Err     error
}

// Notifier shows notifications raised by the engine outside of a caller's flow, such as
// the session expiring during a background call.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// NotifierFunc adapts a function to [Notifier].
type NotifierFunc func(ctx context.Context, n Notification)

// Notify calls f(ctx, n).
func (f NotifierFunc) Notify(ctx context.Context, n Notification) { f(ctx, n) }

type noopNotifier struct{}

func (noopNotifier) Notify(context.Context, Notification) {}

// Describe returns the human-readable message shown for err.
func Describe(err error) string {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrAuthenticationExpired):
		return "Your session has expired, please sign in again."
	case errors.Is(err, ErrMalformedLoginResponse):
		return "The login response could not be understood: no token was returned."
	case errors.Is(err, ErrInvalidCredentials):
		return "Incorrect username or password."
	case errors.Is(err, ErrForbidden):
		return "You do not have permission to access this resource."
	case errors.Is(err, ErrNotLoggedIn):
		return "Please sign in first."
	case errors.Is(err, ErrSessionChanged):
		return "The session changed while loading, please try again."
	case errors.Is(err, api.ErrTimeout):
		return "The request timed out, please try again later."
	case errors.Is(err, ErrNetworkOrTimeout):
		return "Network error, please check your connection."
	case errors.Is(err, session.ErrStorageUnavailable):
		return "The local session store is unavailable."
	case errors.Is(err, ErrRouteNotFound):
		return "The requested page does not exist."
	}

	if be, ok := api.AsBackendError(err); ok {
		switch {
		case be.Message != "" && be.Code != "":
			return be.Message
		case be.Forbidden():
			return "You do not have permission to access this resource."
		case be.NotFound():
			return "The requested resource does not exist."
		case be.Message != "":
			return be.Message
		default:
			return "Server error."
		}
	}

	return err.Error()
}

// NoticeReason returns a stable code for err that is safe to carry in a URL.
// [DescribeReason] turns it back into a message.
func NoticeReason(err error) string {
	return string(auditErrorCode(err))
}

var reasonErrors = map[AuditErrorCode]error{
	auditErrMalformedLogin:     ErrMalformedLoginResponse,
	auditErrInvalidCredentials: ErrInvalidCredentials,
	auditErrAuthExpired:        ErrAuthenticationExpired,
	auditErrForbidden:          ErrForbidden,
	auditErrTimeout:            api.ErrTimeout,
	auditErrNetwork:            ErrNetworkOrTimeout,
	auditErrSessionChanged:     ErrSessionChanged,
	auditErrStorage:            session.ErrStorageUnavailable,
}

// DescribeReason returns the message for a code from [NoticeReason], or "" for an
// unknown code. Backend messages are not reproduced.
func DescribeReason(code string) string {
	switch c := AuditErrorCode(code); c {
	case "":
		return ""
	case auditErrBackend:
		return "Server error."
	case auditErrInternal:
		return "Your account could not be loaded, please sign in again."
	default:
		if err, ok := reasonErrors[c]; ok {
			return Describe(err)
		}
		return ""
	}
}

// Notice builds the notification shown for err.
func Notice(err error) Notification {
	level := NoticeError
	if errors.Is(err, ErrAuthenticationExpired) {
		level = NoticeWarning
	}
	return Notification{Level: level, Message: Describe(err), Err: err}
}
