// Command goconsole drives an RBAC admin backend from the terminal and can serve the
// local web console.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	goConsole "github.com/MrEthical07/goConsole"
	"github.com/MrEthical07/goConsole/internal/settings"
	"github.com/MrEthical07/goConsole/session"
	"github.com/joho/godotenv"
)

const usage = `usage: goconsole [-config file] [-env file] <command> [args]

commands:
  login -u USER [-p PASSWORD]     sign in; the password is read from stdin when omitted
  logout                          sign out and clear the stored session
  register -u USER -p PASSWORD    create an account
  status                          show the current session
  can CODE                        exit 0 when the signed-in user holds CODE
  open PATH                       show where navigating to PATH leads
  users|roles|permissions|menus list [key=value ...]
  users|roles|permissions|menus get ID
  users|roles|permissions|menus create JSON
  users|roles|permissions|menus update ID field=value ...
  users|roles|permissions|menus delete ID
  users grant|revoke USER ROLE
  roles grant|revoke ROLE PERMISSION
  menus tree
  serve                           serve the web console
`

// errUsage marks a malformed command line.
var errUsage = errors.New("invalid usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type cli struct {
	engine   *goConsole.Engine
	settings *settings.Settings
	stdin    io.Reader
	stdout   io.Writer
	stderr   io.Writer
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("goconsole", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.Usage = func() { fmt.Fprint(stderr, usage) }
	configFile := flags.String("config", "", "settings file (default ./goconsole.yaml when present)")
	envFile := flags.String("env", ".env", "dotenv file loaded before the settings")
	if err := flags.Parse(args); err != nil {
		return 2
	}
	if flags.NArg() == 0 {
		flags.Usage()
		return 2
	}

	if err := loadDotenv(*envFile); err != nil {
		fmt.Fprintf(stderr, "goconsole: %v\n", err)
		return 1
	}

	s, err := settings.Load(*configFile)
	if err != nil {
		fmt.Fprintf(stderr, "goconsole: %v\n", err)
		return 1
	}
	logger := s.NewLogger(stderr)

	storage, err := session.Open(ctx, s.StorageOptions())
	if err != nil {
		fmt.Fprintf(stderr, "goconsole: %s\n", goConsole.Describe(err))
		return 1
	}
	defer session.Close(storage)

	b := goConsole.New().
		WithConfig(s.EngineConfig()).
		WithStorage(storage).
		WithLogger(logger).
		WithNotifier(goConsole.NotifierFunc(func(_ context.Context, n goConsole.Notification) {
			fmt.Fprintf(stderr, "goconsole: %s: %s\n", n.Level, n.Message)
		}))
	if s.Audit.Enabled {
		b.WithAuditSink(goConsole.NewSlogSink(logger))
	}
	engine, err := b.BuildContext(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "goconsole: %s\n", goConsole.Describe(err))
		return 1
	}
	defer engine.Close()

	c := &cli{engine: engine, settings: s, stdin: stdin, stdout: stdout, stderr: stderr}
	if err := c.dispatch(ctx, flags.Arg(0), flags.Args()[1:]); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintf(stderr, "goconsole: %v\n\n%s", err, usage)
			return 2
		}
		fmt.Fprintf(stderr, "goconsole: %s\n", goConsole.Describe(err))
		return 1
	}
	return 0
}

// loadDotenv loads path into the environment without overriding set variables.
// A missing file is not an error.
func loadDotenv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func (c *cli) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "login":
		return c.login(ctx, args)
	case "logout":
		return c.logout(ctx, args)
	case "register":
		return c.register(ctx, args)
	case "status":
		return c.status(args)
	case "can":
		return c.can(ctx, args)
	case "open":
		return c.open(ctx, args)
	case "serve":
		return c.serve(ctx, args)
	}
	if res, ok := c.resource(cmd); ok {
		return c.resourceCommand(ctx, res, args)
	}
	return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
}
