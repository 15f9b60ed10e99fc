package api

import (
	"context"
	"net/http"
	"net/url"
)

// Users is the gateway for /users.
type Users struct {
	client *Client
}

// NewUsers returns the user gateway over c.
func NewUsers(c *Client) *Users {
	return &Users{client: c}
}

// List returns the users matching query. A paged reply yields its current page.
func (u *Users) List(ctx context.Context, query url.Values) ([]User, error) {
	return listResource[User](ctx, u.client, "/users", query)
}

// Get returns the user with id.
func (u *Users) Get(ctx context.Context, id ID) (User, error) {
	return getResource[User](ctx, u.client, "/users/"+seg(id.String()))
}

// Create posts body as a new user and returns the stored record.
func (u *Users) Create(ctx context.Context, body any) (User, error) {
	return writeResource[User](ctx, u.client, http.MethodPost, "/users", body)
}

// Update replaces the user with id by body.
func (u *Users) Update(ctx context.Context, id ID, body any) (User, error) {
	return writeResource[User](ctx, u.client, http.MethodPut, "/users/"+seg(id.String()), body)
}

// Delete removes the user with id.
func (u *Users) Delete(ctx context.Context, id ID) error {
	return deleteResource(ctx, u.client, "/users/"+seg(id.String()))
}

// AddRole links roleCode to username.
func (u *Users) AddRole(ctx context.Context, username, roleCode string) error {
	return link(ctx, u.client, http.MethodPost, "/users/"+seg(username)+"/roles/"+seg(roleCode))
}

// RemoveRole unlinks roleCode from username.
func (u *Users) RemoveRole(ctx context.Context, username, roleCode string) error {
	return link(ctx, u.client, http.MethodDelete, "/users/"+seg(username)+"/roles/"+seg(roleCode))
}

// HasPermission asks the backend whether username holds code.
func (u *Users) HasPermission(ctx context.Context, username, code string) (bool, error) {
	return checkBool(ctx, u.client, "/users/"+seg(username)+"/has-permission/"+seg(code))
}

// HasRole asks the backend whether username holds roleCode.
func (u *Users) HasRole(ctx context.Context, username, roleCode string) (bool, error) {
	return checkBool(ctx, u.client, "/users/"+seg(username)+"/has-role/"+seg(roleCode))
}
