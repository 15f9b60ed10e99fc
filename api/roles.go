package api

import (
	"context"
	"net/http"
	"net/url"
)

// Roles is the gateway for /roles.
type Roles struct {
	client *Client
}

// NewRoles returns the role gateway over c.
func NewRoles(c *Client) *Roles {
	return &Roles{client: c}
}

// List returns the roles matching query. A paged reply yields its current page.
func (r *Roles) List(ctx context.Context, query url.Values) ([]Role, error) {
	return listResource[Role](ctx, r.client, "/roles", query)
}

// Get returns the role with id.
func (r *Roles) Get(ctx context.Context, id ID) (Role, error) {
	return getResource[Role](ctx, r.client, "/roles/"+seg(id.String()))
}

// Create posts body as a new role and returns the stored record.
func (r *Roles) Create(ctx context.Context, body any) (Role, error) {
	return writeResource[Role](ctx, r.client, http.MethodPost, "/roles", body)
}

// Update replaces the role with id by body.
func (r *Roles) Update(ctx context.Context, id ID, body any) (Role, error) {
	return writeResource[Role](ctx, r.client, http.MethodPut, "/roles/"+seg(id.String()), body)
}

// Delete removes the role with id.
func (r *Roles) Delete(ctx context.Context, id ID) error {
	return deleteResource(ctx, r.client, "/roles/"+seg(id.String()))
}

// AddPermission links permissionCode to roleCode.
func (r *Roles) AddPermission(ctx context.Context, roleCode, permissionCode string) error {
	return link(ctx, r.client, http.MethodPost, "/roles/"+seg(roleCode)+"/permissions/"+seg(permissionCode))
}

// RemovePermission unlinks permissionCode from roleCode.
func (r *Roles) RemovePermission(ctx context.Context, roleCode, permissionCode string) error {
	return link(ctx, r.client, http.MethodDelete, "/roles/"+seg(roleCode)+"/permissions/"+seg(permissionCode))
}
