package goConsole

import (
	"time"

	"github.com/MrEthical07/goConsole/jwt"
)

// Status is a point-in-time view of the session.
type Status struct {
	LoggedIn    bool
	Resolved    bool
	Username    string
	Roles       []string
	Admin       bool
	Permissions int
	// Claims is set when the token is a JWT. The claims are not verified.
	Claims  *jwt.Claims
	Expired bool
}

// Status reports the session state without contacting the backend.
func (e *Engine) Status() Status {
	e.hydratePermissions()

	e.mu.RLock()
	st := Status{
		LoggedIn:    e.token != "",
		Resolved:    e.user != nil,
		Admin:       e.isAdminLocked(),
		Permissions: e.permissions.Len(),
	}
	if e.user != nil {
		st.Username = e.user.Username
		st.Roles = e.user.RoleCodes()
	}
	token := e.token
	e.mu.RUnlock()

	if token != "" {
		if claims, err := jwt.Inspect(token); err == nil {
			st.Claims = &claims
			st.Expired = claims.Expired(time.Now())
			if st.Username == "" {
				st.Username = claims.Subject
			}
		}
	}
	return st
}
