package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseDefaultsToHelp(t *testing.T) {
	parsed, err := Parse(nil)
	require.NoError(t, err)
	require.True(t, parsed.ShowHelp)
	require.Equal(t, CommandHelp, parsed.Command)
}

func TestParseCommandWithGlobalFlags(t *testing.T) {
	parsed, err := Parse([]string{"--config", "/tmp/wpactl.toml", "-i", "wlan1", "--ctrl-dir", "/run/hostapd", "doctor"})
	require.NoError(t, err)
	require.Equal(t, CommandDoctor, parsed.Command)
	require.Equal(t, "/tmp/wpactl.toml", parsed.ConfigPath)
	require.Equal(t, "wlan1", parsed.Interface)
	require.Equal(t, "/run/hostapd", parsed.CtrlDir)
	require.False(t, parsed.ShowHelp)
}

func TestParseRequestKeepsCommandWords(t *testing.T) {
	parsed, err := Parse([]string{"request", "--capacity", "100", "--timeout", "2s", "SET_NETWORK", "0", "ssid", `"home"`})
	require.NoError(t, err)
	require.Equal(t, CommandRequest, parsed.Command)
	require.Equal(t, `SET_NETWORK 0 ssid "home"`, parsed.Request)
	require.Equal(t, 100, parsed.Capacity)
	require.Equal(t, 2*time.Second, parsed.Timeout)
}

func TestParseRequestWordsMayLookLikeFlags(t *testing.T) {
	parsed, err := Parse([]string{"request", "LOG_LEVEL", "-d"})
	require.NoError(t, err)
	require.Equal(t, "LOG_LEVEL -d", parsed.Request)
	require.Equal(t, -1, parsed.Capacity, "unset capacity defers to config")
}

func TestParseMonitorFlags(t *testing.T) {
	parsed, err := Parse([]string{"monitor", "--count", "3", "--min-priority", "2", "--metrics-listen", "127.0.0.1:9101"})
	require.NoError(t, err)
	require.Equal(t, CommandMonitor, parsed.Command)
	require.Equal(t, 3, parsed.Count)
	require.Equal(t, 2, parsed.MinPriority)
	require.Equal(t, "127.0.0.1:9101", parsed.MetricsListen)

	parsed, err = Parse([]string{"monitor"})
	require.NoError(t, err)
	require.Equal(t, NoMinPriority, parsed.MinPriority)
}

func TestParseArgMatrix(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantErr  string
		wantCmd  Command
		wantHelp bool
	}{
		{name: "help short flag", args: []string{"-h"}, wantCmd: CommandHelp, wantHelp: true},
		{name: "help long flag", args: []string{"--help"}, wantCmd: CommandHelp, wantHelp: true},
		{name: "help command", args: []string{"help"}, wantCmd: CommandHelp, wantHelp: true},
		{name: "subcommand help", args: []string{"ping", "--help"}, wantCmd: CommandHelp, wantHelp: true},
		{name: "version flag", args: []string{"--version"}, wantCmd: CommandVersion},
		{name: "version command", args: []string{"version"}, wantCmd: CommandVersion},
		{name: "ping", args: []string{"ping", "--timeout", "500ms"}, wantCmd: CommandPing},
		{name: "status", args: []string{"status"}, wantCmd: CommandStatus},
		{name: "interfaces", args: []string{"interfaces"}, wantCmd: CommandInterfaces},
		{name: "missing config path", args: []string{"--config"}, wantErr: "needs an argument"},
		{name: "unknown flag", args: []string{"--bogus"}, wantErr: "unknown flag"},
		{name: "unknown command", args: []string{"bogus"}, wantErr: "unknown command"},
		{name: "extra args after command", args: []string{"doctor", "extra"}, wantErr: "unknown command"},
		{name: "request without command", args: []string{"request"}, wantErr: "requires at least 1 arg"},
		{name: "negative count", args: []string{"monitor", "--count", "-1"}, wantErr: "--count"},
		{name: "negative timeout", args: []string{"request", "--timeout", "-1s", "PING"}, wantErr: "--timeout"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			parsed, err := Parse(tc.args)
			if tc.wantErr != "" {
				require.Error(t, err)
				require.Contains(t, err.Error(), tc.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.wantCmd, parsed.Command)
			require.Equal(t, tc.wantHelp, parsed.ShowHelp)
		})
	}
}

func TestHelpTextListsCommands(t *testing.T) {
	help := HelpText("wpactl")
	for _, want := range []string{"request", "ping", "status", "interfaces", "monitor", "doctor", "version", "--config", "--interface"} {
		require.Contains(t, help, want)
	}
}
