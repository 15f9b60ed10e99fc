package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/MrEthical07/goConsole/console"
	promexport "github.com/MrEthical07/goConsole/metrics/export/prometheus"
)

const shutdownTimeout = 10 * time.Second

func (c *cli) serve(ctx context.Context, args []string) error {
	fs := newFlagSet("serve", c.stderr)
	addr := fs.String("addr", c.settings.Console.Addr, "listen address")
	metrics := fs.Bool("metrics", c.settings.Console.Metrics, "expose /metrics")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	logger := c.settings.NewLogger(c.stderr)
	opts := console.Options{Logger: logger}
	if *metrics {
		exp, err := promexport.NewExporter(c.engine)
		if err != nil {
			return err
		}
		opts.Metrics = exp.Handler()
	}
	ui, err := console.NewServer(c.engine, opts)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              *addr,
		Handler:           ui.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("console listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()
	fmt.Fprintf(c.stdout, "console at http://%s/\n", *addr)

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
