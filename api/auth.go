package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"
)

// Backend paths used by the session flows.
const (
	PathLogin              = "/auth/login"
	PathLogout             = "/auth/logout"
	PathRegister           = "/auth/register"
	PathCurrentUser        = "/users/current"
	PathCurrentPermissions = "/users/current/permissions"
)

// Auth is the gateway for authentication and current-user calls.
type Auth struct {
	client *Client
}

// NewAuth returns the auth gateway over c.
func NewAuth(c *Client) *Auth {
	return &Auth{client: c}
}

// Login posts credentials and classifies the reply. A successful envelope from which no
// bearer token can be extracted fails with ErrMalformedLoginResponse.
func (a *Auth) Login(ctx context.Context, creds Credentials) (LoginResponse, error) {
	env, err := a.client.Send(ctx, Request{
		Method: http.MethodPost,
		Path:   PathLogin,
		Body:   creds,
		NoAuth: true,
	})
	if err != nil {
		return LoginResponse{}, err
	}
	if !env.HasData() || !env.Data.IsObject() {
		return LoginResponse{}, fmt.Errorf("%w: missing data", ErrMalformedLoginResponse)
	}

	resp := ParseLoginResponse(env.Data)
	if resp.Shape == LoginShapeUnknown {
		return LoginResponse{}, fmt.Errorf("%w: no token field", ErrMalformedLoginResponse)
	}
	return resp, nil
}

// Register creates an account. It needs no token.
func (a *Auth) Register(ctx context.Context, reg Registration) error {
	_, err := a.client.Send(ctx, Request{
		Method: http.MethodPost,
		Path:   PathRegister,
		Body:   reg,
		NoAuth: true,
	})
	return err
}

// Logout tells the backend to revoke token.
func (a *Auth) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	_, err := a.client.Send(ctx, Request{
		Method: http.MethodPost,
		Path:   PathLogout,
		Token:  token,
	})
	return err
}

// CurrentUser fetches the signed-in user from path. An envelope without data fails
// with ErrMissingData.
func (a *Auth) CurrentUser(ctx context.Context, path string) (User, error) {
	if path == "" {
		path = PathCurrentUser
	}
	var u User
	if err := a.client.Do(ctx, http.MethodGet, path, nil, &u); err != nil {
		return User{}, err
	}
	return u, nil
}

// CurrentPermissions fetches the supplementary permission list. Entries may be plain
// codes or objects carrying a code.
func (a *Auth) CurrentPermissions(ctx context.Context) (CurrentPermissions, error) {
	env, err := a.client.Send(ctx, Request{Method: http.MethodGet, Path: PathCurrentPermissions})
	if err != nil {
		return CurrentPermissions{}, err
	}
	return CurrentPermissions{
		Roles:       codeList(env.Data.Get("roles")),
		Permissions: codeList(env.Data.Get("permissions")),
	}, nil
}

func codeList(r gjson.Result) []string {
	if !r.IsArray() {
		return nil
	}
	var out []string
	r.ForEach(func(_, v gjson.Result) bool {
		switch {
		case v.Type == gjson.String && v.Str != "":
			out = append(out, v.Str)
		case v.IsObject():
			if code := v.Get("code").String(); code != "" {
				out = append(out, code)
			}
		}
		return true
	})
	return out
}
