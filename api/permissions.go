package api

import (
	"context"
	"net/http"
	"net/url"
)

// Permissions is the gateway for /permissions.
type Permissions struct {
	client *Client
}

// NewPermissions returns the permission gateway over c.
func NewPermissions(c *Client) *Permissions {
	return &Permissions{client: c}
}

// List returns the permissions matching query. A paged reply yields its current page.
func (p *Permissions) List(ctx context.Context, query url.Values) ([]Permission, error) {
	return listResource[Permission](ctx, p.client, "/permissions", query)
}

// Get returns the permission with id.
func (p *Permissions) Get(ctx context.Context, id ID) (Permission, error) {
	return getResource[Permission](ctx, p.client, "/permissions/"+seg(id.String()))
}

// Create posts body as a new permission and returns the stored record.
func (p *Permissions) Create(ctx context.Context, body any) (Permission, error) {
	return writeResource[Permission](ctx, p.client, http.MethodPost, "/permissions", body)
}

// Update replaces the permission with id by body.
func (p *Permissions) Update(ctx context.Context, id ID, body any) (Permission, error) {
	return writeResource[Permission](ctx, p.client, http.MethodPut, "/permissions/"+seg(id.String()), body)
}

// Delete removes the permission with id.
func (p *Permissions) Delete(ctx context.Context, id ID) error {
	return deleteResource(ctx, p.client, "/permissions/"+seg(id.String()))
}
