// Package permission resolves a signed-in user's effective permission set from the roles
// returned by the backend.
//
// # Universe
//
// A [Registry] holds the fixed universe of permission codes known to the client. The
// administrator role implies every code in the universe regardless of the permissions
// attached to it. [DefaultUniverse] registers the sixteen console codes
// (USER_, ROLE_, PERMISSION_, MENU_ crossed with VIEW, ADD, EDIT, DELETE).
//
// # Resolution
//
// [Resolver.Resolve] is a pure function of the role list. Codes are compared by exact
// string equality; there is no hierarchy and no wildcard matching.
//
// The administrator override only gates the UI. The backend authorizes every call on its
// own and this package must never be treated as an enforcement point.
//
// # What this package must NOT do
//
//   - Access storage or the network.
//   - Import goConsole, api, or session.
package permission
