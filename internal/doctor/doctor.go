// Package doctor runs readiness diagnostics for config, control directories, and
// the daemon endpoint.
package doctor

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"github.com/rbright/wpactrl/internal/config"
	"github.com/rbright/wpactrl/internal/ctrlsock"
	"github.com/rbright/wpactrl/internal/wpactrl"
)

// Check is one doctor assertion result.
type Check struct {
	Name    string
	Pass    bool
	Message string
}

// Report is the full doctor output contract.
type Report struct {
	Checks []Check
}

// OK returns true when all checks pass.
func (r Report) OK() bool {
	for _, check := range r.Checks {
		if !check.Pass {
			return false
		}
	}
	return true
}

// String renders the report as user-facing text output.
func (r Report) String() string {
	var b strings.Builder
	for _, check := range r.Checks {
		status := "OK"
		if !check.Pass {
			status = "FAIL"
		}
		b.WriteString(fmt.Sprintf("[%s] %s: %s\n", status, check.Name, check.Message))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Run executes config, filesystem, and live endpoint checks. The ping check is
// skipped when the endpoint is missing.
func Run(ctx context.Context, loaded config.Loaded) Report {
	cfg := loaded.Config
	checks := []Check{checkConfig(loaded)}

	checks = append(checks, checkDir("ctrl_dir", cfg.CtrlDir, unix.R_OK|unix.X_OK))
	checks = append(checks, checkDir("client_dir", cfg.ClientDir, unix.W_OK|unix.X_OK))

	peer := ctrlsock.PeerPath(cfg.CtrlDir, cfg.Interface)
	endpoint := checkEndpoint(peer)
	checks = append(checks, endpoint)
	if endpoint.Pass {
		checks = append(checks, checkPing(ctx, cfg, peer))
	}

	return Report{Checks: checks}
}

func checkConfig(loaded config.Loaded) Check {
	if !loaded.Exists {
		return Check{Name: "config", Pass: true, Message: fmt.Sprintf("%q not found; using defaults", loaded.Path)}
	}
	msg := fmt.Sprintf("loaded %q", loaded.Path)
	if n := len(loaded.Warnings); n > 0 {
		msg += fmt.Sprintf(" with %d warning(s)", n)
	}
	return Check{Name: "config", Pass: true, Message: msg}
}

// checkDir validates that path is a directory the current user can access with mode.
func checkDir(name, path string, mode uint32) Check {
	info, err := os.Stat(path)
	if err != nil {
		return Check{Name: name, Pass: false, Message: err.Error()}
	}
	if !info.IsDir() {
		return Check{Name: name, Pass: false, Message: fmt.Sprintf("%s is not a directory", path)}
	}
	if err := unix.Access(path, mode); err != nil {
		return Check{Name: name, Pass: false, Message: fmt.Sprintf("%s: %v", path, err)}
	}
	return Check{Name: name, Pass: true, Message: path}
}

// checkEndpoint validates that the daemon socket exists.
func checkEndpoint(peer string) Check {
	info, err := os.Stat(peer)
	if err != nil {
		msg := err.Error()
		if errors.Is(err, fs.ErrNotExist) {
			msg = fmt.Sprintf("%s does not exist; is the daemon running for this interface?", peer)
		}
		return Check{Name: "endpoint", Pass: false, Message: msg}
	}
	if info.Mode()&fs.ModeSocket == 0 {
		return Check{Name: "endpoint", Pass: false, Message: fmt.Sprintf("%s is not a socket", peer)}
	}
	return Check{Name: "endpoint", Pass: true, Message: peer}
}

// checkPing opens a short-lived channel and sends one PING.
func checkPing(ctx context.Context, cfg config.Config, peer string) Check {
	client, err := wpactrl.Open(peer, wpactrl.Options{
		ClientDir: cfg.ClientDir,
		Attempts:  cfg.Open.Attempts,
	})
	if err != nil {
		return Check{Name: "ping", Pass: false, Message: err.Error()}
	}
	defer func() { _ = client.Close() }()

	start := time.Now()
	if err := client.Ping(ctx, cfg.Timeouts.Ping()); err != nil {
		return Check{Name: "ping", Pass: false, Message: err.Error()}
	}
	return Check{Name: "ping", Pass: true, Message: fmt.Sprintf("PONG in %s", time.Since(start).Round(time.Microsecond))}
}
