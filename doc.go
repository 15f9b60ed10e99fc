// Package goConsole is the client-side session engine of an RBAC admin console: it signs
// in against the backend, resolves the signed-in user's effective permission set, gates
// navigation and UI elements by permission, and routes CRUD calls to the backend.
//
// Engine methods are safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// goConsole is the public surface. It exposes [Engine], [Builder], [Config], the route
// guard ([RouteTable], [Navigation]) and value types. The HTTP client and resource
// gateways live in api/, durable storage in session/ and permission resolution in
// permission/.
//
// The backend is authoritative for authorization. Permission checks in this package,
// including the administrator override, only decide what the console shows.
//
// # What this package must NOT do
//
//   - Mutate session state outside Engine methods.
//   - Treat a permission check as authorization of a backend call.
//   - Import any sub-package that re-imports goConsole (no import cycles).
package goConsole
