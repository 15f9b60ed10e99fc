package api

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/tidwall/gjson"
)

// ID is a resource identifier. The backend sends numeric ids; string ids are accepted
// as well.
type ID string

// UnmarshalJSON accepts a JSON number, string or null.
func (id *ID) UnmarshalJSON(data []byte) error {
	r := gjson.ParseBytes(data)
	switch r.Type {
	case gjson.Null:
		*id = ""
	case gjson.String:
		*id = ID(r.Str)
	case gjson.Number:
		*id = ID(r.Raw)
	default:
		return fmt.Errorf("api: invalid id %s", data)
	}
	return nil
}

// MarshalJSON writes numeric ids as JSON numbers and anything else as a string.
func (id ID) MarshalJSON() ([]byte, error) {
	if id == "" {
		return []byte("null"), nil
	}
	if _, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func (id ID) String() string { return string(id) }

// Permission is a permission record. Code is what the route guard matches on.
type Permission struct {
	ID          ID     `json:"id,omitempty"`
	Code        string `json:"code"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Status      *bool  `json:"status,omitempty"`
	CreateTime  string `json:"createTime,omitempty"`
	UpdateTime  string `json:"updateTime,omitempty"`
}

// Role is a role record with the permissions it grants.
type Role struct {
	ID          ID           `json:"id,omitempty"`
	Code        string       `json:"code"`
	Name        string       `json:"name,omitempty"`
	Description string       `json:"description,omitempty"`
	Status      *bool        `json:"status,omitempty"`
	Permissions []Permission `json:"permissions,omitempty"`
	CreateTime  string       `json:"createTime,omitempty"`
	UpdateTime  string       `json:"updateTime,omitempty"`
}

// PermissionCodes returns the non-empty codes attached to the role.
func (r Role) PermissionCodes() []string {
	out := make([]string, 0, len(r.Permissions))
	for _, p := range r.Permissions {
		if p.Code != "" {
			out = append(out, p.Code)
		}
	}
	return out
}

// User is a backend user and, for the current-user endpoint, the signed-in identity.
type User struct {
	ID            ID     `json:"id,omitempty"`
	Username      string `json:"username"`
	Nickname      string `json:"nickname,omitempty"`
	Email         string `json:"email,omitempty"`
	Phone         string `json:"phone,omitempty"`
	Status        *bool  `json:"status,omitempty"`
	Roles         []Role `json:"roles,omitempty"`
	CreateTime    string `json:"createTime,omitempty"`
	UpdateTime    string `json:"updateTime,omitempty"`
	LastLoginTime string `json:"lastLoginTime,omitempty"`
}

// RoleCodes returns the codes of the user's roles in order.
func (u User) RoleCodes() []string {
	out := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		out = append(out, r.Code)
	}
	return out
}

// DisplayName returns the nickname, falling back to the username.
func (u User) DisplayName() string {
	if u.Nickname != "" {
		return u.Nickname
	}
	return u.Username
}

// Menu is a menu record. ParentID is empty for top-level entries.
type Menu struct {
	ID         ID     `json:"id,omitempty"`
	ParentID   ID     `json:"parentId,omitempty"`
	Name       string `json:"name"`
	Path       string `json:"path,omitempty"`
	Component  string `json:"component,omitempty"`
	Icon       string `json:"icon,omitempty"`
	Permission string `json:"permission,omitempty"`
	Sort       int    `json:"sort,omitempty"`
	Status     *bool  `json:"status,omitempty"`
	Children   []Menu `json:"children,omitempty"`
}

// Credentials is the login request body.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Registration is the self-registration request body.
type Registration struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Nickname string `json:"nickname,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

// CurrentPermissions is the reply of the supplementary permission endpoint.
type CurrentPermissions struct {
	Roles       []string
	Permissions []string
}
