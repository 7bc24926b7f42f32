package wpactrl

import (
	"context"
	"errors"
	"iter"
	"os"
	"time"

	"github.com/rbright/wpactrl/internal/ctrlerr"
	"github.com/rbright/wpactrl/internal/ctrlsock"
	"github.com/rbright/wpactrl/internal/event"
)

const (
	cmdAttach = "ATTACH"
	cmdDetach = "DETACH"
	replyOK   = "OK\n"
)

// Attach asks the daemon to push events onto this channel. Attaching an attached
// channel is a no-op.
func (c *Client) Attach(ctx context.Context) error {
	if c.Attached() {
		return nil
	}
	if err := c.expectOK(ctx, "attach", cmdAttach); err != nil {
		return err
	}
	c.mu.Lock()
	c.attached = true
	c.mu.Unlock()
	c.logger.Debug("attached")
	return nil
}

// Detach stops event delivery. Detaching a detached channel is a no-op. Events
// already queued stay available to PollEvents.
func (c *Client) Detach(ctx context.Context) error {
	if !c.Attached() {
		return nil
	}
	if err := c.expectOK(ctx, "detach", cmdDetach); err != nil {
		return err
	}
	c.mu.Lock()
	c.attached = false
	c.mu.Unlock()
	c.logger.Debug("detached")
	return nil
}

func (c *Client) expectOK(ctx context.Context, op, cmd string) error {
	buf := make([]byte, 32)
	n, _, err := c.exchange(ctx, op, cmd, buf, c.opts.RequestTimeout, nil)
	if err != nil {
		return err
	}
	if got := string(buf[:n]); got != replyOK {
		return ctrlerr.Errorf(ctrlerr.KindProtocolViolation, op, cmd, "unexpected reply %q", got)
	}
	return nil
}

// Events yields queued events, then events read from the channel. When the queue
// is empty it waits up to timeout for the first event, skipping a discarded late
// reply; after that it only takes what is already readable. The sequence ends when nothing more is available.
// Forever waits without bound for the first event.
//
// An error is yielded at most once and ends the sequence. The Client may be used
// from the loop body.
func (c *Client) Events(timeout time.Duration) iter.Seq2[event.Event, error] {
	return func(yield func(event.Event, error) bool) {
		var deadline time.Time
		if timeout > 0 {
			deadline = time.Now().Add(timeout)
		}
		blocking := timeout != 0
		budget := c.opts.EventQueueLimit
		for {
			if ev, ok := c.dequeue(); ok {
				blocking = false
				if !yield(ev, nil) {
					return
				}
				continue
			}
			if budget == 0 {
				return
			}
			budget--

			var wait time.Duration
			switch {
			case !blocking:
			case timeout < 0:
				wait = ctrlsock.Forever
			default:
				if wait = time.Until(deadline); wait <= 0 {
					return
				}
			}

			ev, ok, err := c.receiveEvent("poll_events", wait)
			if err != nil {
				if !errors.Is(err, ctrlerr.ErrTimeout) {
					yield(event.Event{}, err)
				}
				return
			}
			// A discarded late reply keeps the wait for the first event going.
			if !ok {
				continue
			}
			blocking = false
			if !yield(ev, nil) {
				return
			}
		}
	}
}

// PollEvents collects Events(timeout). On error it returns what was read before it.
func (c *Client) PollEvents(timeout time.Duration) ([]event.Event, error) {
	var out []event.Event
	for ev, err := range c.Events(timeout) {
		if err != nil {
			return out, err
		}
		out = append(out, ev)
	}
	return out, nil
}

// Recv blocks until one event is available or ctx ends. The channel must be attached
// or hold queued events.
func (c *Client) Recv(ctx context.Context) (event.Event, error) {
	for {
		if ev, ok := c.dequeue(); ok {
			return ev, nil
		}
		if !c.Attached() {
			return event.Event{}, ctrlerr.Errorf(ctrlerr.KindProtocolViolation, "recv", "", "channel not attached")
		}
		if err := ctx.Err(); err != nil {
			return event.Event{}, ctrlerr.New(ctrlerr.KindTimeout, "recv", "", err)
		}

		wait := ctrlsock.Forever
		if ctx.Done() != nil {
			wait = ctxPollInterval
		}
		if d, ok := ctx.Deadline(); ok {
			left := time.Until(d)
			if left <= 0 {
				return event.Event{}, ctrlerr.New(ctrlerr.KindTimeout, "recv", "", os.ErrDeadlineExceeded)
			}
			if wait < 0 || left < wait {
				wait = left
			}
		}

		ev, ok, err := c.receiveEvent("recv", wait)
		if err != nil {
			if errors.Is(err, ctrlerr.ErrTimeout) {
				continue
			}
			return event.Event{}, err
		}
		if ok {
			return ev, nil
		}
	}
}

// Pending reports whether an event is queued or a datagram is waiting to be read.
func (c *Client) Pending() (bool, error) {
	c.mu.Lock()
	queued := len(c.queue) > 0
	c.mu.Unlock()
	if queued {
		return true, nil
	}
	ok, err := c.conn.Pending()
	if err != nil {
		return false, ctrlerr.WithCommand(err, "pending", "")
	}
	return ok, nil
}

// receiveEvent reads one datagram outside of a command exchange. ok is false when
// the datagram was a discarded late reply.
func (c *Client) receiveEvent(op string, wait time.Duration) (event.Event, bool, error) {
	if err := c.begin(op, ""); err != nil {
		return event.Event{}, false, err
	}

	n, _, err := c.conn.Receive(c.rbuf, wait)
	if err != nil {
		err = ctrlerr.WithCommand(err, op, "")
		c.end(err)
		return event.Event{}, false, err
	}

	ev, kind, err := c.classify(op, "", c.rbuf[:n], false)
	c.end(err)
	if err != nil {
		return event.Event{}, false, err
	}
	return ev, kind == datagramEvent, nil
}
