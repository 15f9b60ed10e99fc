package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	goConsole "github.com/MrEthical07/goConsole"
	"github.com/MrEthical07/goConsole/api"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// resource binds a command name to its console screen, permission prefix and gateway.
type resource struct {
	name   string
	screen string
	prefix string
	list   func(ctx context.Context, q url.Values) (any, error)
	get    func(ctx context.Context, id api.ID) (any, error)
	create func(ctx context.Context, body any) (any, error)
	update func(ctx context.Context, id api.ID, body any) (any, error)
	delete func(ctx context.Context, id api.ID) error
	// link grants or revokes a pair, e.g. a role on a user.
	link func(ctx context.Context, grant bool, a, b string) error
}

func lister[T any](fn func(context.Context, url.Values) ([]T, error)) func(context.Context, url.Values) (any, error) {
	return func(ctx context.Context, q url.Values) (any, error) { return fn(ctx, q) }
}

func getter[T any](fn func(context.Context, api.ID) (T, error)) func(context.Context, api.ID) (any, error) {
	return func(ctx context.Context, id api.ID) (any, error) { return fn(ctx, id) }
}

func creator[T any](fn func(context.Context, any) (T, error)) func(context.Context, any) (any, error) {
	return func(ctx context.Context, body any) (any, error) { return fn(ctx, body) }
}

func updater[T any](fn func(context.Context, api.ID, any) (T, error)) func(context.Context, api.ID, any) (any, error) {
	return func(ctx context.Context, id api.ID, body any) (any, error) { return fn(ctx, id, body) }
}

func (c *cli) resource(name string) (resource, bool) {
	e := c.engine
	switch name {
	case "users":
		return resource{
			name: name, screen: "/user", prefix: "USER",
			list: lister(e.Users().List), get: getter(e.Users().Get),
			create: creator(e.Users().Create), update: updater(e.Users().Update),
			delete: e.Users().Delete,
			link: func(ctx context.Context, grant bool, user, role string) error {
				if grant {
					return e.Users().AddRole(ctx, user, role)
				}
				return e.Users().RemoveRole(ctx, user, role)
			},
		}, true
	case "roles":
		return resource{
			name: name, screen: "/role", prefix: "ROLE",
			list: lister(e.Roles().List), get: getter(e.Roles().Get),
			create: creator(e.Roles().Create), update: updater(e.Roles().Update),
			delete: e.Roles().Delete,
			link: func(ctx context.Context, grant bool, role, perm string) error {
				if grant {
					return e.Roles().AddPermission(ctx, role, perm)
				}
				return e.Roles().RemovePermission(ctx, role, perm)
			},
		}, true
	case "permissions":
		return resource{
			name: name, screen: "/permission", prefix: "PERMISSION",
			list: lister(e.PermissionsAPI().List), get: getter(e.PermissionsAPI().Get),
			create: creator(e.PermissionsAPI().Create), update: updater(e.PermissionsAPI().Update),
			delete: e.PermissionsAPI().Delete,
		}, true
	case "menus":
		return resource{
			name: name, screen: "/menu", prefix: "MENU",
			list: lister(e.Menus().List), get: getter(e.Menus().Get),
			create: creator(e.Menus().Create), update: updater(e.Menus().Update),
			delete: e.Menus().Delete,
		}, true
	}
	return resource{}, false
}

// actionPermission maps a subcommand to the element permission suffix it needs.
var actionPermission = map[string]string{
	"list":   "_VIEW",
	"get":    "_VIEW",
	"tree":   "_VIEW",
	"create": "_ADD",
	"update": "_EDIT",
	"grant":  "_EDIT",
	"revoke": "_EDIT",
	"delete": "_DELETE",
}

// checkArgs validates a subcommand's arguments before anything touches the backend.
func checkArgs(res resource, action string, args []string) error {
	var ok bool
	switch action {
	case "list":
		_, err := parseQuery(args)
		return err
	case "tree":
		ok = res.name == "menus" && len(args) == 0
	case "get", "delete":
		ok = len(args) == 1
	case "create":
		ok = len(args) == 1 && gjson.Valid(args[0]) && gjson.Parse(args[0]).IsObject()
	case "update":
		ok = len(args) >= 2
	case "grant", "revoke":
		ok = res.link != nil && len(args) == 2
	}
	if !ok {
		return fmt.Errorf("%w: %s %s %s", errUsage, res.name, action, strings.Join(args, " "))
	}
	return nil
}

func (c *cli) resourceCommand(ctx context.Context, res resource, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: %s needs a subcommand", errUsage, res.name)
	}
	action, args := args[0], args[1:]
	suffix, ok := actionPermission[action]
	if !ok {
		return fmt.Errorf("%w: unknown %s subcommand %q", errUsage, res.name, action)
	}
	if err := checkArgs(res, action, args); err != nil {
		return err
	}

	if err := c.enter(ctx, res.screen); err != nil {
		return err
	}
	if !c.engine.HasPermission(res.prefix + suffix) {
		return goConsole.ErrForbidden
	}

	switch action {
	case "list":
		q, _ := parseQuery(args)
		return c.print(res.list(ctx, q))
	case "tree":
		menus, err := c.engine.Menus().Tree(ctx)
		if err != nil {
			return err
		}
		c.printTree(menus, 0)
		return nil
	case "get":
		return c.print(res.get(ctx, api.ID(args[0])))
	case "create":
		return c.print(res.create(ctx, json.RawMessage(args[0])))
	case "update":
		id := api.ID(args[0])
		current, err := res.get(ctx, id)
		if err != nil {
			return err
		}
		body, err := patch(current, args[1:])
		if err != nil {
			return err
		}
		return c.print(res.update(ctx, id, json.RawMessage(body)))
	case "delete":
		if err := res.delete(ctx, api.ID(args[0])); err != nil {
			return err
		}
		fmt.Fprintf(c.stdout, "deleted %s\n", args[0])
		return nil
	default: // grant, revoke
		return res.link(ctx, action == "grant", args[0], args[1])
	}
}

func parseQuery(args []string) (url.Values, error) {
	q := url.Values{}
	for _, a := range args {
		k, v, ok := strings.Cut(a, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("%w: query %q is not key=value", errUsage, a)
		}
		q.Add(k, v)
	}
	return q, nil
}

// patch applies field=value pairs onto the JSON form of current. Values that are valid
// JSON (numbers, booleans, arrays, quoted strings) are set raw, anything else as a string.
// Fields use gjson path syntax, so "roles.0.code=ROLE_X" reaches nested values.
func patch(current any, pairs []string) (string, error) {
	raw, err := json.Marshal(current)
	if err != nil {
		return "", err
	}
	body := string(raw)
	for _, p := range pairs {
		field, value, ok := strings.Cut(p, "=")
		if !ok || field == "" {
			return "", fmt.Errorf("%w: %q is not field=value", errUsage, p)
		}
		if gjson.Valid(value) {
			body, err = sjson.SetRaw(body, field, value)
		} else {
			body, err = sjson.Set(body, field, value)
		}
		if err != nil {
			return "", fmt.Errorf("set %s: %w", field, err)
		}
	}
	return body, nil
}

func (c *cli) print(v any, err error) error {
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(c.stdout, string(out))
	return nil
}

func (c *cli) printTree(menus []goConsole.Menu, depth int) {
	for _, m := range menus {
		line := strings.Repeat("  ", depth) + m.Name
		if m.Path != "" {
			line += " " + m.Path
		}
		if m.Permission != "" {
			line += " [" + m.Permission + "]"
		}
		fmt.Fprintln(c.stdout, line)
		c.printTree(m.Children, depth+1)
	}
}
