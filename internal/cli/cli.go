// Package cli parses wpactl arguments into a Parsed command.
package cli

import (
	"errors"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

type Command string

const (
	CommandRequest    Command = "request"
	CommandPing       Command = "ping"
	CommandStatus     Command = "status"
	CommandInterfaces Command = "interfaces"
	CommandMonitor    Command = "monitor"
	CommandDoctor     Command = "doctor"
	CommandVersion    Command = "version"
	CommandHelp       Command = "help"
)

// Parsed is the outcome of argument parsing. Zero-valued options defer to config.
type Parsed struct {
	Command    Command
	ConfigPath string
	Interface  string
	CtrlDir    string
	ShowHelp   bool

	// Request is the raw command line for CommandRequest.
	Request  string
	Capacity int
	Timeout  time.Duration

	Count         int
	MinPriority   int
	MetricsListen string
}

// NoMinPriority disables the monitor priority filter.
const NoMinPriority = -1

// Parse maps args onto a Parsed command.
func Parse(args []string) (Parsed, error) {
	parsed := Parsed{Command: CommandHelp, ShowHelp: true, Capacity: -1, MinPriority: NoMinPriority}
	root := newRoot(&parsed)
	if args == nil {
		args = []string{}
	}
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		return Parsed{}, err
	}
	return parsed, nil
}

// HelpText renders top-level usage.
func HelpText(binaryName string) string {
	var parsed Parsed
	root := newRoot(&parsed)
	root.Use = binaryName
	return root.UsageString()
}

func newRoot(parsed *Parsed) *cobra.Command {
	var showVersion bool

	root := &cobra.Command{
		Use:           "wpactl",
		Short:         "Talk to wpa_supplicant and hostapd over their control sockets",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				parsed.Command = CommandVersion
				parsed.ShowHelp = false
			}
			return nil
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetHelpFunc(func(*cobra.Command, []string) {
		parsed.Command = CommandHelp
		parsed.ShowHelp = true
	})

	root.PersistentFlags().StringVarP(&parsed.ConfigPath, "config", "c", "", "Config file path (default: $XDG_CONFIG_HOME/wpactl/config.toml)")
	root.PersistentFlags().StringVarP(&parsed.Interface, "interface", "i", "", "Interface whose control socket to use")
	root.PersistentFlags().StringVar(&parsed.CtrlDir, "ctrl-dir", "", "Directory holding daemon control sockets")
	root.Flags().BoolVar(&showVersion, "version", false, "Show version")

	request := &cobra.Command{
		Use:   "request <command> [args...]",
		Short: "Send one command and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			line := strings.TrimSpace(strings.Join(args, " "))
			if line == "" {
				return errors.New("request requires a command")
			}
			if parsed.Capacity < -1 {
				return errors.New("--capacity must be >= 0")
			}
			if parsed.Timeout < 0 {
				return errors.New("--timeout must be >= 0")
			}
			parsed.Request = line
			return selectCommand(parsed, CommandRequest)
		},
	}
	request.Flags().SetInterspersed(false)
	request.Flags().IntVar(&parsed.Capacity, "capacity", -1, "Reply buffer size in bytes (default from config)")
	request.Flags().DurationVar(&parsed.Timeout, "timeout", 0, "Reply timeout (default from config)")

	ping := simple(parsed, CommandPing, "Check that the daemon answers PING")
	ping.Flags().DurationVar(&parsed.Timeout, "timeout", 0, "Ping timeout (default from config)")

	monitor := &cobra.Command{
		Use:   string(CommandMonitor),
		Short: "Attach and print events until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if parsed.Count < 0 {
				return errors.New("--count must be >= 0")
			}
			if parsed.MinPriority < NoMinPriority {
				return errors.New("--min-priority must be >= 0")
			}
			return selectCommand(parsed, CommandMonitor)
		},
	}
	monitor.Flags().IntVar(&parsed.Count, "count", 0, "Stop after this many events (0 = unlimited)")
	monitor.Flags().IntVar(&parsed.MinPriority, "min-priority", NoMinPriority, "Only print events at least this severe (lower is more severe)")
	monitor.Flags().StringVar(&parsed.MetricsListen, "metrics-listen", "", "Serve Prometheus metrics on host:port")

	root.AddCommand(
		request,
		ping,
		simple(parsed, CommandStatus, "Print the STATUS reply as a table"),
		simple(parsed, CommandInterfaces, "List control sockets and whether they answer"),
		monitor,
		simple(parsed, CommandDoctor, "Run configuration and environment checks"),
		simple(parsed, CommandVersion, "Print version information"),
	)
	return root
}

func simple(parsed *Parsed, command Command, short string) *cobra.Command {
	return &cobra.Command{
		Use:   string(command),
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return selectCommand(parsed, command)
		},
	}
}

func selectCommand(parsed *Parsed, command Command) error {
	parsed.Command = command
	parsed.ShowHelp = false
	return nil
}
