// Package config resolves, parses, validates, and defaults wpactl configuration.
package config

import "time"

// Config is the fully materialized runtime configuration used by wpactl.
type Config struct {
	// CtrlDir holds the daemon endpoints, one socket per interface.
	CtrlDir string `toml:"ctrl_dir"`
	// ClientDir holds the local endpoints wpactl binds.
	ClientDir string `toml:"client_dir"`
	// Interface is used when no --interface flag is given.
	Interface string         `toml:"interface"`
	Timeouts  TimeoutsConfig `toml:"timeouts"`
	Reply     ReplyConfig    `toml:"reply"`
	Events    EventsConfig   `toml:"events"`
	Open      OpenConfig     `toml:"open"`
	Log       LogConfig      `toml:"log"`
	Metrics   MetricsConfig  `toml:"metrics"`
}

// TimeoutsConfig bounds blocking operations, in milliseconds.
type TimeoutsConfig struct {
	RequestMS int `toml:"request_ms"`
	PingMS    int `toml:"ping_ms"`
	PollMS    int `toml:"poll_ms"`
}

func (t TimeoutsConfig) Request() time.Duration { return time.Duration(t.RequestMS) * time.Millisecond }
func (t TimeoutsConfig) Ping() time.Duration    { return time.Duration(t.PingMS) * time.Millisecond }
func (t TimeoutsConfig) Poll() time.Duration    { return time.Duration(t.PollMS) * time.Millisecond }

// ReplyConfig sizes the reply buffer handed to each request.
type ReplyConfig struct {
	Capacity int `toml:"capacity"`
}

// EventsConfig bounds the per-channel event queue.
type EventsConfig struct {
	QueueLimit int `toml:"queue_limit"`
}

// OpenConfig controls local endpoint allocation.
type OpenConfig struct {
	Attempts int    `toml:"attempts"`
	Naming   string `toml:"naming"`
}

// LogConfig controls the runtime log level.
type LogConfig struct {
	Level string `toml:"level"`
}

// MetricsConfig controls the optional Prometheus listener used by monitor.
type MetricsConfig struct {
	Listen string `toml:"listen"`
}

// Warning is a non-fatal parse/validation message.
type Warning struct {
	Line    int
	Message string
}
