package config

const (
	NamingSequence = "sequence"
	NamingRandom   = "random"
)

// Default returns the canonical runtime configuration used when no file is present.
func Default() Config {
	return Config{
		CtrlDir:   "/var/run/wpa_supplicant",
		ClientDir: "/tmp",
		Interface: "wlan0",
		Timeouts: TimeoutsConfig{
			RequestMS: 10000,
			PingMS:    1000,
			PollMS:    1000,
		},
		Reply:  ReplyConfig{Capacity: 4096},
		Events: EventsConfig{QueueLimit: 256},
		Open: OpenConfig{
			Attempts: 8,
			Naming:   NamingSequence,
		},
		Log:     LogConfig{Level: "info"},
		Metrics: MetricsConfig{},
	}
}
