// Package app wires parsed CLI commands to config, logging, and the control engine.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/rbright/wpactrl/internal/cli"
	"github.com/rbright/wpactrl/internal/config"
	"github.com/rbright/wpactrl/internal/doctor"
	"github.com/rbright/wpactrl/internal/logging"
	"github.com/rbright/wpactrl/internal/version"
)

type Runner struct {
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	r := Runner{Stdout: stdout, Stderr: stderr}
	return r.Execute(ctx, args)
}

func (r Runner) Execute(ctx context.Context, args []string) int {
	parsed, err := cli.Parse(args)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n\n", err)
		fmt.Fprint(r.Stderr, cli.HelpText("wpactl"))
		return 2
	}

	if parsed.ShowHelp {
		fmt.Fprint(r.Stdout, cli.HelpText("wpactl"))
		return 0
	}

	if parsed.Command == cli.CommandVersion {
		fmt.Fprintln(r.Stdout, version.String())
		return 0
	}

	cfgLoaded, err := config.Load(parsed.ConfigPath)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	applyOverrides(&cfgLoaded.Config, parsed)

	logRuntime, err := logging.New(cfgLoaded.Config.Log.Level)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: setup logging: %v\n", err)
		return 1
	}
	defer func() { _ = logRuntime.Close() }()

	logger := r.Logger
	if logger == nil {
		logger = logRuntime.Logger
	}

	for _, w := range cfgLoaded.Warnings {
		msg := w.Message
		if w.Line > 0 {
			msg = fmt.Sprintf("line %d: %s", w.Line, w.Message)
		}
		if cfgLoaded.Exists {
			fmt.Fprintf(r.Stderr, "warning: %s\n", msg)
		}
		logger.Warn("config warning", "line", w.Line, "message", w.Message)
	}

	logger.Info("command start",
		"command", parsed.Command,
		"config", cfgLoaded.Path,
		"interface", cfgLoaded.Config.Interface,
		"ctrl_dir", cfgLoaded.Config.CtrlDir,
		"log", logRuntime.Path,
	)

	cfg := cfgLoaded.Config
	switch parsed.Command {
	case cli.CommandDoctor:
		report := doctor.Run(ctx, cfgLoaded)
		fmt.Fprintln(r.Stdout, report.String())
		if report.OK() {
			return 0
		}
		return 1
	case cli.CommandRequest:
		return r.commandRequest(ctx, cfg, parsed, logger)
	case cli.CommandPing:
		return r.commandPing(ctx, cfg, parsed, logger)
	case cli.CommandStatus:
		return r.commandStatus(ctx, cfg, logger)
	case cli.CommandInterfaces:
		return r.commandInterfaces(ctx, cfg, logger)
	case cli.CommandMonitor:
		return r.commandMonitor(ctx, cfg, parsed, logger)
	default:
		fmt.Fprintf(r.Stderr, "error: unsupported command %q\n", parsed.Command)
		return 2
	}
}

// applyOverrides lets command-line flags win over config values.
func applyOverrides(cfg *config.Config, parsed cli.Parsed) {
	if iface := strings.TrimSpace(parsed.Interface); iface != "" {
		cfg.Interface = iface
	}
	if dir := strings.TrimSpace(parsed.CtrlDir); dir != "" {
		cfg.CtrlDir = dir
	}
	if listen := strings.TrimSpace(parsed.MetricsListen); listen != "" {
		cfg.Metrics.Listen = listen
	}
}

func (r Runner) fail(logger *slog.Logger, msg string, err error) int {
	fmt.Fprintf(r.Stderr, "error: %v\n", err)
	logger.Error(msg, "error", err.Error())
	return 1
}
