package api

import (
	"context"
	"net/http"
	"net/url"
)

// Menus is the gateway for /menus.
type Menus struct {
	client *Client
}

// NewMenus returns the menu gateway over c.
func NewMenus(c *Client) *Menus {
	return &Menus{client: c}
}

// List returns the menus matching query. A paged reply yields its current page.
func (m *Menus) List(ctx context.Context, query url.Values) ([]Menu, error) {
	return listResource[Menu](ctx, m.client, "/menus", query)
}

// Tree returns the menus nested under their parents.
func (m *Menus) Tree(ctx context.Context) ([]Menu, error) {
	return listResource[Menu](ctx, m.client, "/menus/tree", nil)
}

// Get returns the menu with id.
func (m *Menus) Get(ctx context.Context, id ID) (Menu, error) {
	return getResource[Menu](ctx, m.client, "/menus/"+seg(id.String()))
}

// Create posts body as a new menu and returns the stored record.
func (m *Menus) Create(ctx context.Context, body any) (Menu, error) {
	return writeResource[Menu](ctx, m.client, http.MethodPost, "/menus", body)
}

// Update replaces the menu with id by body.
func (m *Menus) Update(ctx context.Context, id ID, body any) (Menu, error) {
	return writeResource[Menu](ctx, m.client, http.MethodPut, "/menus/"+seg(id.String()), body)
}

// Delete removes the menu with id.
func (m *Menus) Delete(ctx context.Context, id ID) error {
	return deleteResource(ctx, m.client, "/menus/"+seg(id.String()))
}
