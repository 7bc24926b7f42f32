// Package wpactrl is a client for the wpa_supplicant and hostapd control interface.
//
// A Client owns one local datagram endpoint bound to one daemon endpoint. It sends
// commands, returns replies, and when attached queues the unsolicited events the
// daemon interleaves with them.
//
//	c, err := wpactrl.OpenInterface(wpactrl.DefaultCtrlDir, "wlan0", wpactrl.DefaultOptions())
//	if err != nil {
//		return err
//	}
//	defer c.Close()
//
//	reply, err := c.Request(ctx, "STATUS", 4096)
package wpactrl

import (
	"github.com/rbright/wpactrl/internal/ctrlerr"
	"github.com/rbright/wpactrl/internal/ctrlsock"
	"github.com/rbright/wpactrl/internal/event"
	"github.com/rbright/wpactrl/internal/fsm"
	engine "github.com/rbright/wpactrl/internal/wpactrl"
)

type (
	Client   = engine.Client
	Options  = engine.Options
	Reply    = engine.Reply
	Observer = engine.Observer

	Event    = event.Event
	Priority = event.Priority

	State = fsm.State

	Error = ctrlerr.Error
	Kind  = ctrlerr.Kind

	Namer    = ctrlsock.Namer
	Endpoint = ctrlsock.Endpoint
)

const (
	DefaultCtrlDir         = ctrlsock.DefaultCtrlDir
	DefaultRequestTimeout  = engine.DefaultRequestTimeout
	DefaultPingTimeout     = engine.DefaultPingTimeout
	DefaultEventQueueLimit = engine.DefaultEventQueueLimit

	// Forever disables a timeout.
	Forever = ctrlsock.Forever
)

const (
	KindNoSuchPeer        = ctrlerr.KindNoSuchPeer
	KindAddressInUse      = ctrlerr.KindAddressInUse
	KindResourceExhausted = ctrlerr.KindResourceExhausted
	KindTimeout           = ctrlerr.KindTimeout
	KindPeerGone          = ctrlerr.KindPeerGone
	KindProtocolViolation = ctrlerr.KindProtocolViolation
	KindWouldBlock        = ctrlerr.KindWouldBlock
)

// Sentinels for errors.Is.
var (
	ErrNoSuchPeer        = ctrlerr.ErrNoSuchPeer
	ErrAddressInUse      = ctrlerr.ErrAddressInUse
	ErrResourceExhausted = ctrlerr.ErrResourceExhausted
	ErrTimeout           = ctrlerr.ErrTimeout
	ErrPeerGone          = ctrlerr.ErrPeerGone
	ErrProtocolViolation = ctrlerr.ErrProtocolViolation
	ErrWouldBlock        = ctrlerr.ErrWouldBlock
)

// Open binds a fresh local endpoint and connects it to the daemon endpoint at peer.
func Open(peer string, opts Options) (*Client, error) { return engine.Open(peer, opts) }

// OpenInterface opens the endpoint named iface inside ctrlDir.
func OpenInterface(ctrlDir, iface string, opts Options) (*Client, error) {
	return engine.OpenInterface(ctrlDir, iface, opts)
}

// DefaultOptions returns the options Open uses for zero fields.
func DefaultOptions() Options { return engine.DefaultOptions() }

// ParseEvent splits a tagged event datagram into its parts.
func ParseEvent(raw string) (Event, bool) { return event.Parse(raw) }

// Discover lists the daemon endpoints in ctrlDir.
func Discover(ctrlDir string) ([]Endpoint, error) { return ctrlsock.Discover(ctrlDir) }
