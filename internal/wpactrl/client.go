// Package wpactrl drives the wpa_supplicant / hostapd control interface: command
// exchanges, event subscription and liveness probes over one Channel Handle.
//
// A Client runs one operation at a time. Use separate Clients for commands and
// for a dedicated attached event monitor when both are needed concurrently.
package wpactrl

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/rbright/wpactrl/internal/ctrlerr"
	"github.com/rbright/wpactrl/internal/ctrlsock"
	"github.com/rbright/wpactrl/internal/event"
	"github.com/rbright/wpactrl/internal/fsm"
)

// Client is an open control channel to one daemon endpoint.
type Client struct {
	conn     *ctrlsock.Conn
	opts     Options
	logger   *slog.Logger
	observer Observer

	// rbuf is only touched by the goroutine holding busy.
	rbuf []byte

	mu        sync.Mutex
	state     fsm.State
	busy      bool
	attached  bool
	lateReply bool
	queue     []event.Event
}

// Open connects to the daemon endpoint at peer.
func Open(peer string, opts Options) (*Client, error) {
	opts = opts.withDefaults()
	dialer := ctrlsock.Dialer{
		ClientDir: opts.ClientDir,
		Namer:     opts.Namer,
		Attempts:  opts.Attempts,
		Logger:    opts.Logger,
	}
	conn, err := dialer.Open(peer)
	if err != nil {
		return nil, err
	}

	c := &Client{
		conn:     conn,
		opts:     opts,
		observer: opts.Observer,
		rbuf:     make([]byte, opts.MaxDatagram),
		state:    fsm.StateIdle,
	}
	c.logger = opts.Logger.With(
		"component", "wpactrl",
		"peer", conn.PeerPath(),
		"local", conn.LocalPath(),
	)
	c.logger.Debug("channel opened")
	return c, nil
}

// OpenInterface connects to the endpoint for iface under ctrlDir.
func OpenInterface(ctrlDir, iface string, opts Options) (*Client, error) {
	if ctrlDir == "" {
		ctrlDir = ctrlsock.DefaultCtrlDir
	}
	return Open(ctrlsock.PeerPath(ctrlDir, iface), opts)
}

// LocalPath is the client-side endpoint.
func (c *Client) LocalPath() string { return c.conn.LocalPath() }

// PeerPath is the daemon endpoint.
func (c *Client) PeerPath() string { return c.conn.PeerPath() }

// State reports the channel lifecycle state.
func (c *Client) State() fsm.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Attached reports whether the daemon is pushing events onto this channel.
func (c *Client) Attached() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attached
}

// Fd returns the descriptor to wait on for readability in an external event loop.
// Once it signals, call Pending or PollEvents; do not read from it directly.
func (c *Client) Fd() (uintptr, error) {
	return c.conn.Fd()
}

// Close detaches when attached, then releases the channel and unlinks the local
// endpoint. An operation running in another goroutine fails with KindPeerGone.
// Closing twice is a no-op.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.state == fsm.StateClosed {
		c.mu.Unlock()
		return c.conn.Close()
	}
	detach := c.attached && !c.busy && c.state == fsm.StateIdle
	if detach {
		c.busy = true
		c.state, _ = fsm.Transition(c.state, fsm.EventSend)
	}
	c.mu.Unlock()

	if detach {
		deadline := time.Now().Add(closeDetachTimeout)
		if _, _, err := c.roundTrip(context.Background(), "close", "DETACH", make([]byte, 16), deadline, nil); err != nil {
			c.logger.Debug("detach on close failed", "error", err)
		}
	}

	c.mu.Lock()
	c.state, _ = fsm.Transition(c.state, fsm.EventClose)
	c.busy = false
	c.attached = false
	c.queue = nil
	c.mu.Unlock()

	err := c.conn.Close()
	c.logger.Debug("channel closed")
	return err
}

// begin claims the channel for one operation.
func (c *Client) begin(op, command string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case c.state == fsm.StateClosed:
		return ctrlerr.Errorf(ctrlerr.KindPeerGone, op, command, "channel closed")
	case c.state == fsm.StateBroken:
		return ctrlerr.Errorf(ctrlerr.KindProtocolViolation, op, command, "channel broken by an earlier protocol violation")
	case c.busy:
		return ctrlerr.Errorf(ctrlerr.KindProtocolViolation, op, command, "operation in flight")
	}
	c.busy = true
	return nil
}

// end releases the channel and applies the outcome of the operation.
func (c *Client) end(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = false
	c.settle(err)
}

// settle moves the state machine after a failed or finished socket operation.
// Callers hold mu.
func (c *Client) settle(err error) {
	if c.state == fsm.StateClosed {
		return
	}
	var ev fsm.Event
	switch {
	case err == nil:
		if c.state != fsm.StateAwaitingReply {
			return
		}
		ev = fsm.EventReply
		c.lateReply = false
	case errors.Is(err, ctrlerr.ErrPeerGone):
		ev = fsm.EventPeerGone
	case errors.Is(err, ctrlerr.ErrProtocolViolation) && isFraming(err):
		ev = fsm.EventViolation
	default:
		if c.state != fsm.StateAwaitingReply {
			return
		}
		ev = fsm.EventTimeout
		if errors.Is(err, ctrlerr.ErrTimeout) {
			c.lateReply = true
		}
	}

	next, terr := fsm.Transition(c.state, ev)
	if terr != nil {
		c.logger.Warn("state transition rejected", "state", c.state, "event", ev, "error", terr)
		return
	}
	c.state = next
	if next == fsm.StateClosed {
		c.attached = false
		_ = c.conn.Close()
	}
}

// framingError marks violations that leave the channel unusable.
type framingError struct {
	msg string
}

func (e framingError) Error() string { return e.msg }

func isFraming(err error) bool {
	var fe framingError
	return errors.As(err, &fe)
}

func violation(op, command, msg string) error {
	return ctrlerr.New(ctrlerr.KindProtocolViolation, op, command, framingError{msg: msg})
}
