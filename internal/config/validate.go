package config

import (
	"fmt"
	"net"
	"path/filepath"
	"strings"
)

// maxLocalPath is the longest socket path the kernel accepts, minus the NUL.
const maxLocalPath = 107

// localNameBudget covers "wpa_ctrl_" plus a pid-sequence or uuid suffix.
const localNameBudget = len("/wpa_ctrl_") + 36

// Validate enforces config invariants and returns non-fatal warnings.
func Validate(cfg Config) ([]Warning, error) {
	warnings := make([]Warning, 0)

	if strings.TrimSpace(cfg.CtrlDir) == "" {
		return nil, fmt.Errorf("ctrl_dir must not be empty")
	}
	if strings.TrimSpace(cfg.ClientDir) == "" {
		return nil, fmt.Errorf("client_dir must not be empty")
	}
	iface := strings.TrimSpace(cfg.Interface)
	if iface == "" {
		return nil, fmt.Errorf("interface must not be empty")
	}
	if strings.ContainsRune(iface, '/') {
		return nil, fmt.Errorf("interface must be a name, not a path")
	}
	if cfg.Timeouts.RequestMS <= 0 {
		return nil, fmt.Errorf("timeouts.request_ms must be > 0")
	}
	if cfg.Timeouts.PingMS <= 0 {
		return nil, fmt.Errorf("timeouts.ping_ms must be > 0")
	}
	if cfg.Timeouts.PollMS < 0 {
		return nil, fmt.Errorf("timeouts.poll_ms must be >= 0")
	}
	if cfg.Reply.Capacity < 0 {
		return nil, fmt.Errorf("reply.capacity must be >= 0")
	}
	if cfg.Events.QueueLimit <= 0 {
		return nil, fmt.Errorf("events.queue_limit must be > 0")
	}
	if cfg.Open.Attempts <= 0 {
		return nil, fmt.Errorf("open.attempts must be > 0")
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Open.Naming)) {
	case NamingSequence, NamingRandom:
	default:
		return nil, fmt.Errorf("open.naming must be one of: %s, %s", NamingSequence, NamingRandom)
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Log.Level)) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return nil, fmt.Errorf("log.level must be one of: debug, info, warn, error")
	}
	if listen := strings.TrimSpace(cfg.Metrics.Listen); listen != "" {
		if _, _, err := net.SplitHostPort(listen); err != nil {
			return nil, fmt.Errorf("metrics.listen must be host:port: %w", err)
		}
	}

	if cfg.Timeouts.PingMS > cfg.Timeouts.RequestMS {
		warnings = append(warnings, Warning{Message: fmt.Sprintf(
			"timeouts.ping_ms (%d) exceeds timeouts.request_ms (%d)", cfg.Timeouts.PingMS, cfg.Timeouts.RequestMS,
		)})
	}
	if cfg.Reply.Capacity == 0 {
		warnings = append(warnings, Warning{Message: "reply.capacity is 0; every non-empty reply will be truncated"})
	}
	if cfg.Reply.Capacity > 64*1024 {
		warnings = append(warnings, Warning{Message: "reply.capacity exceeds the 64KiB datagram size and will never fill"})
	}
	if len(filepath.Clean(cfg.ClientDir))+localNameBudget > maxLocalPath {
		warnings = append(warnings, Warning{Message: fmt.Sprintf(
			"client_dir %q is long; local socket paths may exceed %d bytes", cfg.ClientDir, maxLocalPath,
		)})
	}
	if !filepath.IsAbs(cfg.CtrlDir) {
		warnings = append(warnings, Warning{Message: fmt.Sprintf("ctrl_dir %q is relative", cfg.CtrlDir)})
	}

	return warnings, nil
}
