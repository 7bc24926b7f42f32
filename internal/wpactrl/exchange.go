package wpactrl

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/rbright/wpactrl/internal/ctrlerr"
	"github.com/rbright/wpactrl/internal/ctrlsock"
	"github.com/rbright/wpactrl/internal/event"
	"github.com/rbright/wpactrl/internal/fsm"
)

// Request sends cmd verbatim and returns at most capacity bytes of its reply.
// Events that arrive while waiting are queued for PollEvents.
func (c *Client) Request(ctx context.Context, cmd string, capacity int) (Reply, error) {
	if capacity < 0 {
		return Reply{}, errors.New("wpactrl: negative reply capacity")
	}
	buf := make([]byte, capacity)
	n, truncated, err := c.RequestInto(ctx, cmd, buf)
	if err != nil {
		return Reply{}, err
	}
	return Reply{Text: string(buf[:n]), Len: n, Truncated: truncated}, nil
}

// RequestInto is Request with a caller-owned reply buffer. It never writes past
// len(buf) and returns the number of bytes written.
func (c *Client) RequestInto(ctx context.Context, cmd string, buf []byte) (int, bool, error) {
	return c.exchange(ctx, "request", cmd, buf, c.opts.RequestTimeout, nil)
}

// RequestFunc is Request with events that arrive while waiting handed to onEvent
// instead of the queue. onEvent must not call back into the Client.
func (c *Client) RequestFunc(ctx context.Context, cmd string, capacity int, onEvent func(event.Event)) (Reply, error) {
	if capacity < 0 {
		return Reply{}, errors.New("wpactrl: negative reply capacity")
	}
	buf := make([]byte, capacity)
	n, truncated, err := c.exchange(ctx, "request", cmd, buf, c.opts.RequestTimeout, onEvent)
	if err != nil {
		return Reply{}, err
	}
	return Reply{Text: string(buf[:n]), Len: n, Truncated: truncated}, nil
}

// exchange runs one full command/reply cycle under the single-operation guard.
func (c *Client) exchange(
	ctx context.Context,
	op, cmd string,
	buf []byte,
	timeout time.Duration,
	onEvent func(event.Event),
) (int, bool, error) {
	verb := commandVerb(cmd)
	if err := c.begin(op, cmd); err != nil {
		c.observer.ObserveRequest(verb, 0, err)
		return 0, false, err
	}

	// One spare byte lets a reply that overflows buf be told apart from one that fits.
	if len(buf) >= len(c.rbuf) {
		c.rbuf = make([]byte, len(buf)+1)
	}

	start := time.Now()
	deadline := deadlineFor(ctx, start, timeout)

	n, truncated, err := c.drainThenSend(ctx, op, cmd, buf, deadline, onEvent)
	c.end(err)

	elapsed := time.Since(start)
	c.observer.ObserveRequest(verb, elapsed, err)
	switch {
	case err == nil:
		c.logger.Debug("request completed",
			"command", verb,
			"bytes", n,
			"truncated", truncated,
			"duration_ms", elapsed.Milliseconds(),
		)
	case errors.Is(err, ctrlerr.ErrProtocolViolation):
		c.logger.Warn("protocol violation", "command", verb, "error", err)
	default:
		c.logger.Debug("request failed", "command", verb, "duration_ms", elapsed.Milliseconds(), "error", err)
	}
	return n, truncated, err
}

func (c *Client) drainThenSend(
	ctx context.Context,
	op, cmd string,
	buf []byte,
	deadline time.Time,
	onEvent func(event.Event),
) (int, bool, error) {
	if err := c.drain(op, cmd, onEvent); err != nil {
		return 0, false, err
	}

	c.mu.Lock()
	next, err := fsm.Transition(c.state, fsm.EventSend)
	if err == nil {
		c.state = next
	}
	c.mu.Unlock()
	if err != nil {
		return 0, false, ctrlerr.New(ctrlerr.KindProtocolViolation, op, cmd, err)
	}

	return c.roundTrip(ctx, op, cmd, buf, deadline, onEvent)
}

// drain consumes datagrams that were already waiting before the command is sent,
// so they cannot be mistaken for its reply.
func (c *Client) drain(op, cmd string, onEvent func(event.Event)) error {
	for i := 0; i < c.opts.EventQueueLimit; i++ {
		n, _, err := c.conn.Receive(c.rbuf, 0)
		if err != nil {
			if errors.Is(err, ctrlerr.ErrTimeout) {
				return nil
			}
			return ctrlerr.WithCommand(err, op, cmd)
		}
		ev, kind, err := c.classify(op, cmd, c.rbuf[:n], false)
		if err != nil {
			return err
		}
		if kind == datagramEvent {
			c.deliver(ev, onEvent)
		}
	}
	return nil
}

// roundTrip sends cmd and waits for the first datagram that is not an event.
// The deadline is fixed up front; events never extend it.
func (c *Client) roundTrip(
	ctx context.Context,
	op, cmd string,
	buf []byte,
	deadline time.Time,
	onEvent func(event.Event),
) (int, bool, error) {
	if err := c.conn.Send([]byte(cmd), remaining(deadline)); err != nil {
		return 0, false, ctrlerr.WithCommand(err, op, cmd)
	}
	c.logger.Debug("command sent", "command", commandVerb(cmd), "bytes", len(cmd))

	for {
		if err := ctx.Err(); err != nil {
			return 0, false, ctrlerr.New(ctrlerr.KindTimeout, op, cmd, err)
		}
		wait := remaining(deadline)
		if wait == 0 {
			return 0, false, ctrlerr.New(ctrlerr.KindTimeout, op, cmd, os.ErrDeadlineExceeded)
		}
		if ctx.Done() != nil && (wait < 0 || wait > ctxPollInterval) {
			wait = ctxPollInterval
		}

		n, cut, err := c.conn.Receive(c.rbuf, wait)
		if err != nil {
			if errors.Is(err, ctrlerr.ErrTimeout) {
				continue
			}
			return 0, false, ctrlerr.WithCommand(err, op, cmd)
		}

		data := c.rbuf[:n]
		ev, kind, err := c.classify(op, cmd, data, true)
		if err != nil {
			return 0, false, err
		}
		switch kind {
		case datagramEvent:
			c.deliver(ev, onEvent)
		case datagramReply:
			written, truncated := fillReply(buf, data, cut)
			return written, truncated, nil
		}
	}
}

type datagramKind int

const (
	datagramDiscard datagramKind = iota
	datagramEvent
	datagramReply
)

// classify applies the demux rule to one received datagram. While attached a tagged
// datagram is an event. Otherwise the first datagram after a command is its reply,
// whatever its leading bytes. With nothing awaited an untagged datagram can only be
// the late reply of a timed out request.
func (c *Client) classify(op, cmd string, data []byte, awaiting bool) (event.Event, datagramKind, error) {
	tagged := event.IsTagged(data)

	c.mu.Lock()
	attached := c.attached
	late := c.lateReply
	if !awaiting && late && !tagged {
		c.lateReply = false
	}
	c.mu.Unlock()

	if tagged && attached {
		ev, _ := event.Parse(string(data))
		c.observer.ObserveEvent(ev)
		return ev, datagramEvent, nil
	}
	if tagged && !awaiting {
		if late {
			c.logger.Warn("discarding event on detached channel", "bytes", len(data))
			return event.Event{}, datagramDiscard, nil
		}
		return event.Event{}, datagramDiscard, violation(op, cmd, "event received on detached channel")
	}

	if awaiting {
		if tagged {
			c.logger.Warn("tagged datagram taken as reply on detached channel", "command", commandVerb(cmd), "bytes", len(data))
		}
		return event.Event{}, datagramReply, nil
	}
	if late {
		c.logger.Warn("discarding late reply", "bytes", len(data))
		return event.Event{}, datagramDiscard, nil
	}
	return event.Event{}, datagramDiscard, violation(op, cmd, "unsolicited reply datagram")
}

func (c *Client) deliver(ev event.Event, onEvent func(event.Event)) {
	if onEvent != nil {
		onEvent(ev)
		return
	}
	c.enqueue(ev)
}

func (c *Client) enqueue(ev event.Event) {
	c.mu.Lock()
	dropped := false
	if len(c.queue) >= c.opts.EventQueueLimit {
		c.queue = append(c.queue[:0], c.queue[1:]...)
		dropped = true
	}
	c.queue = append(c.queue, ev)
	c.mu.Unlock()

	if dropped {
		c.logger.Warn("event queue full, dropped oldest event", "limit", c.opts.EventQueueLimit)
		c.observer.ObserveDroppedEvent()
	}
}

func (c *Client) dequeue() (event.Event, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.queue) == 0 {
		return event.Event{}, false
	}
	ev := c.queue[0]
	c.queue = c.queue[1:]
	return ev, true
}

// deadlineFor combines the context deadline with a relative timeout. A zero
// result means no deadline.
func deadlineFor(ctx context.Context, now time.Time, timeout time.Duration) time.Time {
	var deadline time.Time
	if timeout >= 0 {
		deadline = now.Add(timeout)
	}
	if d, ok := ctx.Deadline(); ok && (deadline.IsZero() || d.Before(deadline)) {
		deadline = d
	}
	return deadline
}

// remaining converts a deadline into a ctrlsock timeout.
func remaining(deadline time.Time) time.Duration {
	if deadline.IsZero() {
		return ctrlsock.Forever
	}
	left := time.Until(deadline)
	if left <= 0 {
		return 0
	}
	return left
}

// commandVerb is the first word of cmd. Arguments may carry secrets and stay out
// of logs and metric labels.
func commandVerb(cmd string) string {
	verb, _, _ := strings.Cut(strings.TrimSpace(cmd), " ")
	if verb == "" {
		return "EMPTY"
	}
	return verb
}
