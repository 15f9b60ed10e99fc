// Package console serves the admin console as server-rendered HTML.
//
// Every screen passes through middleware.Guard, so the route guard decides what the
// browser sees. List screens hide add, edit and delete controls the signed-in user is
// not allowed to use, and the matching POST endpoints check the same permissions.
package console
