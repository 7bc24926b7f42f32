package ctrlsock

import (
	"errors"
	"net"
	"os"

	"golang.org/x/sys/unix"

	"github.com/rbright/wpactrl/internal/ctrlerr"
)

// classifyBind maps a socket/bind failure to a kind and whether another name may help.
func classifyBind(err error) (ctrlerr.Kind, bool) {
	switch {
	case errors.Is(err, unix.EADDRINUSE):
		return ctrlerr.KindAddressInUse, true
	case isResourceShortage(err):
		return ctrlerr.KindResourceExhausted, true
	default:
		return ctrlerr.KindResourceExhausted, false
	}
}

// classifyConnect maps a connect failure at open time.
func classifyConnect(err error) ctrlerr.Kind {
	switch {
	case isPeerMissing(err), isConnectionRefused(err), errors.Is(err, unix.ENOTDIR):
		return ctrlerr.KindNoSuchPeer
	case isResourceShortage(err):
		return ctrlerr.KindResourceExhausted
	default:
		return ctrlerr.KindUnknown
	}
}

func classifySend(err error) ctrlerr.Kind {
	switch {
	case errors.Is(err, os.ErrDeadlineExceeded),
		errors.Is(err, unix.EAGAIN),
		errors.Is(err, unix.ENOBUFS):
		return ctrlerr.KindWouldBlock
	case isPeerGone(err):
		return ctrlerr.KindPeerGone
	default:
		return ctrlerr.KindUnknown
	}
}

func classifyReceive(err error) ctrlerr.Kind {
	switch {
	case errors.Is(err, os.ErrDeadlineExceeded), errors.Is(err, unix.EAGAIN):
		return ctrlerr.KindTimeout
	case isPeerGone(err):
		return ctrlerr.KindPeerGone
	default:
		return ctrlerr.KindUnknown
	}
}

// isPeerGone reports failures meaning the daemon side (or our own handle) is gone.
func isPeerGone(err error) bool {
	return errors.Is(err, net.ErrClosed) ||
		isPeerMissing(err) ||
		isConnectionRefused(err) ||
		errors.Is(err, unix.EPIPE) ||
		errors.Is(err, unix.ECONNRESET) ||
		errors.Is(err, unix.ENOTCONN)
}

// isPeerMissing reports absent-socket failures.
func isPeerMissing(err error) bool {
	return errors.Is(err, unix.ENOENT)
}

// isConnectionRefused reports a socket file with no process bound to it.
func isConnectionRefused(err error) bool {
	return errors.Is(err, unix.ECONNREFUSED)
}

func isResourceShortage(err error) bool {
	return errors.Is(err, unix.EMFILE) ||
		errors.Is(err, unix.ENFILE) ||
		errors.Is(err, unix.ENOBUFS) ||
		errors.Is(err, unix.ENOMEM)
}
