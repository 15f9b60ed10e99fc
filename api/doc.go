// Package api is the HTTP client for the RBAC backend and the thin resource gateways on
// top of it.
//
// Every call goes through [Client.Do]: the bearer token is attached, the
// {code, message, data} envelope is decoded and failures are classified into
// [ErrAuthenticationExpired], [ErrNetworkOrTimeout] or a [*BackendError]. A 401, whether
// reported as the HTTP status or as the envelope code, also fires
// [Config.OnUnauthorized] so the session owner can clear its state.
//
// Gateways ([Auth], [Users], [Roles], [Permissions], [Menus]) pass data straight through.
// They never touch session state.
package api
