package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// pageKeys are the object fields searched when a list endpoint answers with a page
// object instead of a bare array.
var pageKeys = []string{"records", "content", "list", "items", "rows"}

func listResource[T any](ctx context.Context, c *Client, path string, query url.Values) ([]T, error) {
	env, err := c.Send(ctx, Request{Method: http.MethodGet, Path: path, Query: query})
	if err != nil {
		return nil, err
	}
	if !env.HasData() {
		return []T{}, nil
	}

	data := env.Data
	if data.IsObject() {
		for _, key := range pageKeys {
			if page := data.Get(key); page.IsArray() {
				data = page
				break
			}
		}
	}
	if !data.IsArray() {
		return nil, fmt.Errorf("%w: expected a list from %s", ErrMalformedResponse, path)
	}

	out := []T{}
	if err := (Envelope{Data: data}).Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

func getResource[T any](ctx context.Context, c *Client, path string) (T, error) {
	var out T
	err := c.Do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

func writeResource[T any](ctx context.Context, c *Client, method, path string, body any) (T, error) {
	var out T
	env, err := c.Send(ctx, Request{Method: method, Path: path, Body: body})
	if err != nil || !env.HasData() || !env.Data.IsObject() {
		return out, err
	}
	err = env.Decode(&out)
	return out, err
}

func deleteResource(ctx context.Context, c *Client, path string) error {
	_, err := c.Send(ctx, Request{Method: http.MethodDelete, Path: path})
	return err
}

func link(ctx context.Context, c *Client, method, path string) error {
	_, err := c.Send(ctx, Request{Method: method, Path: path})
	return err
}

func checkBool(ctx context.Context, c *Client, path string) (bool, error) {
	env, err := c.Send(ctx, Request{Method: http.MethodGet, Path: path})
	if err != nil {
		return false, err
	}
	return env.Data.Bool(), nil
}

func seg(s string) string {
	return url.PathEscape(s)
}

// Gateways bundles every gateway over one client.
type Gateways struct {
	Auth        *Auth
	Users       *Users
	Roles       *Roles
	Permissions *Permissions
	Menus       *Menus
}

// NewGateways builds all gateways over c.
func NewGateways(c *Client) Gateways {
	return Gateways{
		Auth:        NewAuth(c),
		Users:       NewUsers(c),
		Roles:       NewRoles(c),
		Permissions: NewPermissions(c),
		Menus:       NewMenus(c),
	}
}
