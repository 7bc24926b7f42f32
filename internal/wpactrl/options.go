package wpactrl

import (
	"log/slog"
	"time"

	"github.com/rbright/wpactrl/internal/ctrlsock"
)

const (
	// DefaultRequestTimeout bounds one command exchange.
	DefaultRequestTimeout = 10 * time.Second
	// DefaultPingTimeout bounds one liveness probe.
	DefaultPingTimeout = time.Second
	// DefaultMaxDatagram is the receive scratch size. Larger datagrams are cut by
	// the transport and reported as truncated.
	DefaultMaxDatagram = 64 * 1024
	// DefaultEventQueueLimit bounds events held between polls.
	DefaultEventQueueLimit = 256

	closeDetachTimeout = 500 * time.Millisecond
	ctxPollInterval    = 50 * time.Millisecond
)

// Options configures a Client. Zero fields fall back to defaults.
type Options struct {
	// ClientDir holds the local endpoint.
	ClientDir string
	// Namer allocates local endpoint names.
	Namer ctrlsock.Namer
	// Attempts bounds local endpoint allocation.
	Attempts int
	// RequestTimeout bounds every exchange. A negative value waits forever unless
	// the context carries a deadline.
	RequestTimeout  time.Duration
	MaxDatagram     int
	EventQueueLimit int
	Logger          *slog.Logger
	Observer        Observer
}

// DefaultOptions returns the settings used when Open is given a zero Options.
func DefaultOptions() Options {
	return Options{
		ClientDir:       ctrlsock.DefaultClientDir,
		Attempts:        ctrlsock.DefaultAttempts,
		RequestTimeout:  DefaultRequestTimeout,
		MaxDatagram:     DefaultMaxDatagram,
		EventQueueLimit: DefaultEventQueueLimit,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.ClientDir == "" {
		o.ClientDir = def.ClientDir
	}
	if o.Attempts <= 0 {
		o.Attempts = def.Attempts
	}
	if o.RequestTimeout == 0 {
		o.RequestTimeout = def.RequestTimeout
	}
	if o.MaxDatagram <= 0 {
		o.MaxDatagram = def.MaxDatagram
	}
	if o.EventQueueLimit <= 0 {
		o.EventQueueLimit = def.EventQueueLimit
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	if o.Observer == nil {
		o.Observer = NopObserver{}
	}
	return o
}
