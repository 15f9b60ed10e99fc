package goConsole

import "github.com/MrEthical07/goConsole/api"

// UserInfo is the resolved identity of the signed-in user.
type UserInfo = api.User

// Role is a backend role with its attached permissions.
type Role = api.Role

// Permission is a backend permission.
type Permission = api.Permission

// Menu is a backend menu entry.
type Menu = api.Menu

// Credentials is the login request.
type Credentials = api.Credentials

// Registration is the self-registration request.
type Registration = api.Registration
