package goConsole

import (
	"errors"

	"github.com/MrEthical07/goConsole/api"
)

var (
	// ErrMalformedLoginResponse is returned by Login when the backend reported success but
	// no bearer token could be extracted. The stored session is left untouched.
	ErrMalformedLoginResponse = api.ErrMalformedLoginResponse
	// ErrAuthenticationExpired is returned when the backend answered 401. The session has
	// been cleared by the time the caller sees it.
	ErrAuthenticationExpired = api.ErrAuthenticationExpired
	// ErrNetworkOrTimeout is returned for transport failures.
	ErrNetworkOrTimeout = api.ErrNetworkOrTimeout
	// ErrForbidden means the signed-in user lacks the permission guarding a route or action.
	ErrForbidden = errors.New("forbidden")
	// ErrSecondaryPermissionFetch wraps failures of the supplementary permission call.
	// It is logged and counted, never returned.
	ErrSecondaryPermissionFetch = errors.New("supplementary permission fetch failed")
	// ErrNotLoggedIn is returned by operations that need a token when none is stored.
	ErrNotLoggedIn = errors.New("not logged in")
	// ErrSessionChanged is returned by FetchCurrentUser when the session was cleared or
	// replaced while the fetch was in flight; the result is discarded.
	ErrSessionChanged = errors.New("session changed during user resolution")
	// ErrInvalidCredentials is returned by Login when the backend rejected the credentials.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrRouteNotFound = errors.New("route not found")
	ErrEngineNotReady = errors.New("engine not initialized")
)
