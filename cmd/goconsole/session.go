package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	goConsole "github.com/MrEthical07/goConsole"
)

func newFlagSet(name string, out io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(out)
	return fs
}

func (c *cli) login(ctx context.Context, args []string) error {
	fs := newFlagSet("login", c.stderr)
	user := fs.String("u", "", "username")
	pass := fs.String("p", "", "password")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if *user == "" {
		return fmt.Errorf("%w: login needs -u", errUsage)
	}
	if *pass == "" {
		line, err := bufio.NewReader(c.stdin).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("read password: %w", err)
		}
		*pass = strings.TrimRight(line, "\r\n")
	}

	if _, err := c.engine.Login(ctx, goConsole.Credentials{Username: *user, Password: *pass}); err != nil {
		return err
	}
	u, err := c.engine.FetchCurrentUser(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "signed in as %s\n", u.DisplayName())
	return nil
}

func (c *cli) logout(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("%w: logout takes no arguments", errUsage)
	}
	return c.engine.Logout(ctx)
}

func (c *cli) register(ctx context.Context, args []string) error {
	fs := newFlagSet("register", c.stderr)
	var reg goConsole.Registration
	fs.StringVar(&reg.Username, "u", "", "username")
	fs.StringVar(&reg.Password, "p", "", "password")
	fs.StringVar(&reg.Nickname, "nickname", "", "display name")
	fs.StringVar(&reg.Email, "email", "", "email address")
	fs.StringVar(&reg.Phone, "phone", "", "phone number")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if reg.Username == "" || reg.Password == "" {
		return fmt.Errorf("%w: register needs -u and -p", errUsage)
	}
	if err := c.engine.Register(ctx, reg); err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "registered %s\n", reg.Username)
	return nil
}

func (c *cli) status(args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("%w: status takes no arguments", errUsage)
	}
	st := c.engine.Status()
	if !st.LoggedIn {
		fmt.Fprintln(c.stdout, "not signed in")
		return nil
	}

	w := c.stdout
	fmt.Fprintf(w, "user:        %s\n", st.Username)
	fmt.Fprintf(w, "resolved:    %t\n", st.Resolved)
	if st.Resolved {
		fmt.Fprintf(w, "roles:       %s\n", strings.Join(st.Roles, ", "))
		fmt.Fprintf(w, "admin:       %t\n", st.Admin)
		fmt.Fprintf(w, "permissions: %d\n", st.Permissions)
	}
	if st.Claims != nil && !st.Claims.ExpiresAt.IsZero() {
		state := "valid"
		if st.Expired {
			state = "expired"
		}
		fmt.Fprintf(w, "token:       %s, expires %s\n", state, st.Claims.ExpiresAt.Format(time.RFC3339))
	}
	return nil
}

func (c *cli) can(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: can takes one permission code", errUsage)
	}
	if err := c.requireUser(ctx); err != nil {
		return err
	}
	if !c.engine.HasPermission(args[0]) {
		fmt.Fprintln(c.stdout, "denied")
		return goConsole.ErrForbidden
	}
	fmt.Fprintln(c.stdout, "granted")
	return nil
}

func (c *cli) open(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: open takes one path", errUsage)
	}
	nav := c.engine.Navigate(ctx, args[0])
	fmt.Fprintf(c.stdout, "%s %s\n", nav.Outcome, nav.Location)
	if nav.Err != nil && nav.Outcome != goConsole.NavigateForbidden {
		return nav.Err
	}
	return nil
}

// requireUser resolves the signed-in user when only a token is stored.
func (c *cli) requireUser(ctx context.Context) error {
	if !c.engine.Authenticated() {
		return goConsole.ErrNotLoggedIn
	}
	if _, ok := c.engine.UserInfo(); ok {
		return nil
	}
	_, err := c.engine.FetchCurrentUser(ctx)
	return err
}

// enter navigates to a screen the way the console does before showing it.
func (c *cli) enter(ctx context.Context, path string) error {
	nav := c.engine.Navigate(ctx, path)
	switch nav.Outcome {
	case goConsole.NavigateAllow:
		return nil
	case goConsole.NavigateLogin:
		if nav.Err != nil {
			return nav.Err
		}
		return goConsole.ErrNotLoggedIn
	case goConsole.NavigateForbidden:
		return goConsole.ErrForbidden
	case goConsole.NavigateCancelled:
		return nav.Err
	default:
		return fmt.Errorf("navigation to %s ended at %s", path, nav.Location)
	}
}
