package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateDefaults(t *testing.T) {
	warnings, err := Validate(Default())
	require.NoError(t, err)
	require.Empty(t, warnings)
}

func TestValidateRejectsInvalidFields(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "empty ctrl dir", mutate: func(c *Config) { c.CtrlDir = " " }, wantErr: "ctrl_dir"},
		{name: "empty client dir", mutate: func(c *Config) { c.ClientDir = "" }, wantErr: "client_dir"},
		{name: "empty interface", mutate: func(c *Config) { c.Interface = "" }, wantErr: "interface must not be empty"},
		{name: "interface path", mutate: func(c *Config) { c.Interface = "../wlan0" }, wantErr: "not a path"},
		{name: "zero request timeout", mutate: func(c *Config) { c.Timeouts.RequestMS = 0 }, wantErr: "timeouts.request_ms"},
		{name: "zero ping timeout", mutate: func(c *Config) { c.Timeouts.PingMS = 0 }, wantErr: "timeouts.ping_ms"},
		{name: "negative poll", mutate: func(c *Config) { c.Timeouts.PollMS = -1 }, wantErr: "timeouts.poll_ms"},
		{name: "negative capacity", mutate: func(c *Config) { c.Reply.Capacity = -1 }, wantErr: "reply.capacity"},
		{name: "zero queue", mutate: func(c *Config) { c.Events.QueueLimit = 0 }, wantErr: "events.queue_limit"},
		{name: "zero attempts", mutate: func(c *Config) { c.Open.Attempts = 0 }, wantErr: "open.attempts"},
		{name: "bad naming", mutate: func(c *Config) { c.Open.Naming = "hash" }, wantErr: "open.naming"},
		{name: "bad level", mutate: func(c *Config) { c.Log.Level = "loud" }, wantErr: "log.level"},
		{name: "bad listen", mutate: func(c *Config) { c.Metrics.Listen = "9101" }, wantErr: "metrics.listen"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			_, err := Validate(cfg)
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestValidateWarnings(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Config)
		wantWarn string
	}{
		{name: "ping slower than request", mutate: func(c *Config) { c.Timeouts.PingMS = 20000 }, wantWarn: "exceeds timeouts.request_ms"},
		{name: "zero capacity", mutate: func(c *Config) { c.Reply.Capacity = 0 }, wantWarn: "truncated"},
		{name: "huge capacity", mutate: func(c *Config) { c.Reply.Capacity = 1 << 20 }, wantWarn: "64KiB"},
		{name: "long client dir", mutate: func(c *Config) { c.ClientDir = "/" + strings.Repeat("d", 80) }, wantWarn: "client_dir"},
		{name: "relative ctrl dir", mutate: func(c *Config) { c.CtrlDir = "run/wpa" }, wantWarn: "relative"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			warnings, err := Validate(cfg)
			require.NoError(t, err)
			require.Len(t, warnings, 1)
			require.Contains(t, warnings[0].Message, tc.wantWarn)
		})
	}
}

func TestTimeoutDurations(t *testing.T) {
	cfg := Default()
	require.Equal(t, "10s", cfg.Timeouts.Request().String())
	require.Equal(t, "1s", cfg.Timeouts.Ping().String())
	require.Equal(t, "1s", cfg.Timeouts.Poll().String())
}
