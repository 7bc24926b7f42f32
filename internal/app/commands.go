package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rbright/wpactrl/internal/cli"
	"github.com/rbright/wpactrl/internal/config"
	"github.com/rbright/wpactrl/internal/ctrlerr"
	"github.com/rbright/wpactrl/internal/ctrlsock"
	"github.com/rbright/wpactrl/internal/event"
	"github.com/rbright/wpactrl/internal/metrics"
	"github.com/rbright/wpactrl/internal/wpactrl"
)

const (
	minMonitorPoll       = 100 * time.Millisecond
	metricsShutdownGrace = 2 * time.Second
)

func replyCapacity(cfg config.Config, override int) int {
	if override >= 0 {
		return override
	}
	if cfg.Reply.Capacity > 0 {
		return cfg.Reply.Capacity
	}
	return wpactrl.DefaultMaxDatagram
}

func (r Runner) commandRequest(ctx context.Context, cfg config.Config, parsed cli.Parsed, logger *slog.Logger) int {
	if parsed.Timeout > 0 {
		cfg.Timeouts.RequestMS = int(parsed.Timeout / time.Millisecond)
	}

	client, err := openClient(cfg, logger, nil)
	if err != nil {
		return r.fail(logger, "open control channel failed", err)
	}
	defer func() { _ = client.Close() }()

	reply, err := client.Request(ctx, parsed.Request, replyCapacity(cfg, parsed.Capacity))
	if err != nil {
		return r.fail(logger, "request failed", err)
	}

	fmt.Fprint(r.Stdout, reply.Text)
	if reply.Text != "" && !strings.HasSuffix(reply.Text, "\n") {
		fmt.Fprintln(r.Stdout)
	}
	if reply.Truncated {
		fmt.Fprintf(r.Stderr, "warning: reply truncated to %d bytes\n", reply.Len)
	}
	return 0
}

func (r Runner) commandPing(ctx context.Context, cfg config.Config, parsed cli.Parsed, logger *slog.Logger) int {
	timeout := cfg.Timeouts.Ping()
	if parsed.Timeout > 0 {
		timeout = parsed.Timeout
	}

	client, err := openClient(cfg, logger, nil)
	if err != nil {
		return r.fail(logger, "open control channel failed", err)
	}
	defer func() { _ = client.Close() }()

	started := time.Now()
	if err := client.Ping(ctx, timeout); err != nil {
		return r.fail(logger, "ping failed", err)
	}
	fmt.Fprintf(r.Stdout, "PONG from %s in %s\n", cfg.Interface, time.Since(started).Round(time.Microsecond))
	return 0
}

func (r Runner) commandStatus(ctx context.Context, cfg config.Config, logger *slog.Logger) int {
	client, err := openClient(cfg, logger, nil)
	if err != nil {
		return r.fail(logger, "open control channel failed", err)
	}
	defer func() { _ = client.Close() }()

	reply, err := client.Request(ctx, "STATUS", replyCapacity(cfg, -1))
	if err != nil {
		return r.fail(logger, "status request failed", err)
	}
	if strings.HasPrefix(reply.Text, "FAIL") {
		return r.fail(logger, "status request failed", errors.New(strings.TrimSpace(reply.Text)))
	}

	fmt.Fprintln(r.Stdout, renderTable([]string{"KEY", "VALUE"}, parseKeyValues(reply.Text), shouldColorize(r.Stdout)))
	if reply.Truncated {
		fmt.Fprintf(r.Stderr, "warning: reply truncated to %d bytes\n", reply.Len)
	}
	return 0
}

func (r Runner) commandInterfaces(ctx context.Context, cfg config.Config, logger *slog.Logger) int {
	endpoints, err := ctrlsock.Discover(cfg.CtrlDir)
	if err != nil {
		return r.fail(logger, "discover control sockets failed", err)
	}
	if len(endpoints) == 0 {
		fmt.Fprintf(r.Stdout, "no control sockets in %s\n", cfg.CtrlDir)
		return 0
	}

	rows := make([][]string, 0, len(endpoints))
	for _, ep := range endpoints {
		rows = append(rows, []string{ep.Interface, ep.Path, probe(ctx, cfg, ep, logger)})
	}
	fmt.Fprintln(r.Stdout, renderTable([]string{"INTERFACE", "PATH", "PING"}, rows, shouldColorize(r.Stdout)))
	return 0
}

// probe opens ep, pings it once, and describes the outcome.
func probe(ctx context.Context, cfg config.Config, ep ctrlsock.Endpoint, logger *slog.Logger) string {
	client, err := wpactrl.Open(ep.Path, engineOptions(cfg, logger, nil))
	if err != nil {
		return describeFailure(err)
	}
	defer func() { _ = client.Close() }()

	started := time.Now()
	if err := client.Ping(ctx, cfg.Timeouts.Ping()); err != nil {
		return describeFailure(err)
	}
	return time.Since(started).Round(time.Microsecond).String()
}

func describeFailure(err error) string {
	var ce *ctrlerr.Error
	if errors.As(err, &ce) {
		return ce.Kind.String()
	}
	return "error"
}

func (r Runner) commandMonitor(ctx context.Context, cfg config.Config, parsed cli.Parsed, logger *slog.Logger) int {
	var observer wpactrl.Observer
	if cfg.Metrics.Listen != "" {
		registry := metrics.New()
		observer = registry
		stop, err := serveMetrics(cfg.Metrics.Listen, registry, logger)
		if err != nil {
			return r.fail(logger, "metrics listener failed", err)
		}
		defer stop()
	}

	client, err := openClient(cfg, logger, observer)
	if err != nil {
		return r.fail(logger, "open control channel failed", err)
	}
	defer func() { _ = client.Close() }()

	if err := client.Attach(ctx); err != nil {
		return r.fail(logger, "attach failed", err)
	}

	wait := cfg.Timeouts.Poll()
	if wait < minMonitorPoll {
		wait = minMonitorPoll
	}
	colorize := shouldColorize(r.Stdout)

	printed := 0
	for ctx.Err() == nil {
		for ev, err := range client.Events(wait) {
			if err != nil {
				return r.fail(logger, "receive events failed", err)
			}
			if parsed.MinPriority != cli.NoMinPriority && !ev.Priority.AtLeast(event.Priority(parsed.MinPriority)) {
				continue
			}
			fmt.Fprintln(r.Stdout, formatEvent(ev, colorize))
			printed++
			if parsed.Count > 0 && printed >= parsed.Count {
				return 0
			}
			if ev.Name == event.Terminating {
				fmt.Fprintln(r.Stderr, "daemon is terminating")
				return 1
			}
		}
	}
	logger.Info("monitor stopped", "events", printed)
	return 0
}

// serveMetrics exposes registry on listen until the returned stop func runs.
func serveMetrics(listen string, registry *metrics.Registry, logger *slog.Logger) (func(), error) {
	ln, err := net.Listen("tcp", listen)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", listen, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", registry.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", "error", err.Error())
		}
	}()
	logger.Info("metrics listening", "addr", ln.Addr().String())

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsShutdownGrace)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}, nil
}
