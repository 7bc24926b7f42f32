// Package ctrlerr defines the error kinds reported by the control-interface client.
package ctrlerr

import (
	"errors"
	"fmt"
)

// Kind classifies a control-interface failure so callers can choose retry or abort.
type Kind int

const (
	KindUnknown Kind = iota
	// KindNoSuchPeer means the daemon endpoint does not exist or nobody is bound to it.
	KindNoSuchPeer
	// KindAddressInUse means no free local endpoint name could be bound.
	KindAddressInUse
	// KindResourceExhausted means the OS refused a socket or buffer for the local endpoint.
	KindResourceExhausted
	// KindTimeout means no reply arrived within the bound. The handle stays usable.
	KindTimeout
	// KindPeerGone means the daemon went away or the handle was closed mid-operation.
	KindPeerGone
	// KindProtocolViolation means the peer (or a concurrent caller) broke the
	// request/reply and event framing rules. Framing violations break the handle.
	KindProtocolViolation
	// KindWouldBlock means the daemon's receive queue is full.
	KindWouldBlock
)

func (k Kind) String() string {
	switch k {
	case KindNoSuchPeer:
		return "no such peer"
	case KindAddressInUse:
		return "address in use"
	case KindResourceExhausted:
		return "resource exhausted"
	case KindTimeout:
		return "timeout"
	case KindPeerGone:
		return "peer gone"
	case KindProtocolViolation:
		return "protocol violation"
	case KindWouldBlock:
		return "would block"
	default:
		return fmt.Sprintf("unknown error kind %d", int(k))
	}
}

// Error carries the kind plus the operation and command that failed.
type Error struct {
	Kind    Kind
	Op      string
	Command string
	Err     error
}

func (e *Error) Error() string {
	msg := "wpactrl: " + e.Op
	if e.Command != "" {
		msg += fmt.Sprintf(" %q", e.Command)
	}
	msg += ": " + e.Kind.String()
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any kind sentinel, so errors.Is(err, ErrTimeout) works through wrapping.
func (e *Error) Is(target error) bool {
	var s sentinel
	if errors.As(target, &s) {
		return e.Kind == s.kind
	}
	return false
}

type sentinel struct {
	kind Kind
}

func (s sentinel) Error() string {
	return "wpactrl: " + s.kind.String()
}

var (
	ErrNoSuchPeer        error = sentinel{KindNoSuchPeer}
	ErrAddressInUse      error = sentinel{KindAddressInUse}
	ErrResourceExhausted error = sentinel{KindResourceExhausted}
	ErrTimeout           error = sentinel{KindTimeout}
	ErrPeerGone          error = sentinel{KindPeerGone}
	ErrProtocolViolation error = sentinel{KindProtocolViolation}
	ErrWouldBlock        error = sentinel{KindWouldBlock}
)

// New builds an *Error.
func New(kind Kind, op, command string, err error) *Error {
	return &Error{Kind: kind, Op: op, Command: command, Err: err}
}

// Errorf builds an *Error whose cause is a formatted message.
func Errorf(kind Kind, op, command, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Command: command, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// WithCommand returns err with Op and Command filled in when it is an *Error that
// lacks them. Lower layers know the kind; higher layers know the command.
func WithCommand(err error, op, command string) error {
	var e *Error
	if !errors.As(err, &e) {
		return err
	}
	out := *e
	if out.Command == "" {
		out.Command = command
	}
	if op != "" {
		out.Op = op
	}
	return &out
}
