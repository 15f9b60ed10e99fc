// Package middleware exposes HTTP middleware that puts a goConsole.Engine in front of
// console pages.
//
// # Guards
//
//   - [Guard] runs the route guard for every request and redirects on anything but allow.
//   - [RequirePermission] protects element-level endpoints such as form submissions.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does NOT decide access
// itself: every decision comes from Engine.Navigate or Engine.HasPermission.
package middleware
