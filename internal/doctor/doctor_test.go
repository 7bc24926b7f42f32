package doctor

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/rbright/wpactrl/internal/config"
	"github.com/rbright/wpactrl/internal/ctrltest"
)

func loadedFor(d *ctrltest.Daemon) config.Loaded {
	cfg := config.Default()
	cfg.CtrlDir = d.CtrlDir
	cfg.ClientDir = d.ClientDir
	cfg.Interface = d.Iface
	return config.Loaded{Path: "/etc/wpactl.toml", Config: cfg, Exists: true}
}

func checkNamed(t *testing.T, report Report, name string) Check {
	t.Helper()
	for _, check := range report.Checks {
		if check.Name == name {
			return check
		}
	}
	t.Fatalf("no %q check in report:\n%s", name, report.String())
	return Check{}
}

func TestReportOKAndString(t *testing.T) {
	report := Report{Checks: []Check{
		{Name: "one", Pass: true, Message: "good"},
		{Name: "two", Pass: false, Message: "bad"},
	}}

	require.False(t, report.OK())
	text := report.String()
	require.Contains(t, text, "[OK] one: good")
	require.Contains(t, text, "[FAIL] two: bad")
}

func TestRunAgainstLiveDaemon(t *testing.T) {
	d := ctrltest.Start(t, "wlan0")

	report := Run(context.Background(), loadedFor(d))
	require.True(t, report.OK(), report.String())
	require.Len(t, report.Checks, 5)
	require.Contains(t, checkNamed(t, report, "ping").Message, "PONG")
}

func TestRunMissingEndpointSkipsPing(t *testing.T) {
	d := ctrltest.Start(t, "wlan0")
	loaded := loadedFor(d)
	loaded.Config.Interface = "wlan5"

	report := Run(context.Background(), loaded)
	require.False(t, report.OK())
	endpoint := checkNamed(t, report, "endpoint")
	require.False(t, endpoint.Pass)
	require.Contains(t, endpoint.Message, "does not exist")
	for _, check := range report.Checks {
		require.NotEqual(t, "ping", check.Name)
	}
}

func TestRunSilentDaemonFailsPing(t *testing.T) {
	d := ctrltest.Start(t, "wlan0")
	d.Handle("PING", func(string) ctrltest.Response { return ctrltest.Response{NoReply: true} })
	loaded := loadedFor(d)
	loaded.Config.Timeouts.PingMS = 30

	report := Run(context.Background(), loaded)
	ping := checkNamed(t, report, "ping")
	require.False(t, ping.Pass)
	require.Contains(t, ping.Message, "timeout")
}

func TestCheckConfig(t *testing.T) {
	missing := checkConfig(config.Loaded{Path: "/nope.toml"})
	require.True(t, missing.Pass)
	require.Contains(t, missing.Message, "using defaults")

	warned := checkConfig(config.Loaded{Path: "/c.toml", Exists: true, Warnings: []config.Warning{{Message: "x"}}})
	require.Contains(t, warned.Message, "1 warning")
}

func TestCheckDir(t *testing.T) {
	dir := t.TempDir()
	require.True(t, checkDir("client_dir", dir, unix.W_OK).Pass)

	file := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(file, nil, 0o600))
	notDir := checkDir("client_dir", file, unix.W_OK)
	require.False(t, notDir.Pass)
	require.Contains(t, notDir.Message, "not a directory")

	require.False(t, checkDir("ctrl_dir", filepath.Join(dir, "missing"), unix.R_OK).Pass)
}

func TestCheckEndpointRejectsRegularFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wlan0")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	check := checkEndpoint(path)
	require.False(t, check.Pass)
	require.Contains(t, check.Message, "not a socket")
}
