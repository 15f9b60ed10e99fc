// Package session provides the durable client-side storage behind a console session.
//
// # Keys
//
// Three keys are reserved: [KeyToken] holds the bearer string, [KeyPermissions] holds the
// resolved permission codes as a JSON array, and [KeyLoadingUserInfo] is present with the
// value "true" while a current-user resolution is in flight. [Store.Clear] removes all
// three together.
//
// # Backends
//
// [MemoryStorage] keeps values in process memory, [FileStorage] keeps them in a single
// JSON file, [RedisStorage] and [SQLiteStorage] share a session between console processes.
// [Open] selects a backend by driver name.
//
// # Architecture boundaries
//
// This package only persists values. It does NOT call the backend, resolve permissions or
// decide navigation; those belong to the Engine.
//
// # What this package must NOT do
//
//   - Import goConsole, api, or permission (no upward imports).
//   - Keep derived state (user info) that cannot be rebuilt from the token.
package session
