package ctrlsock

import (
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sys/unix"

	"github.com/rbright/wpactrl/internal/ctrlerr"
)

// Forever makes Send and Receive block without a deadline.
const Forever time.Duration = -1

// Conn is one open Channel Handle: a bound local datagram endpoint connected to a
// daemon endpoint. The local endpoint file is owned exclusively by this Conn.
type Conn struct {
	uc    *net.UnixConn
	local string
	peer  string

	closeOnce sync.Once
	closed    atomic.Bool
	closeErr  error
}

// LocalPath is the bound local endpoint.
func (c *Conn) LocalPath() string { return c.local }

// PeerPath is the daemon endpoint fixed at open time.
func (c *Conn) PeerPath() string { return c.peer }

// Closed reports whether Close has been called.
func (c *Conn) Closed() bool { return c.closed.Load() }

// Close releases the socket and unlinks the local endpoint. Closing twice is a no-op.
// Any Send or Receive blocked in another goroutine fails with KindPeerGone.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		var errs []error
		if err := c.uc.Close(); err != nil {
			errs = append(errs, err)
		}
		if err := os.Remove(c.local); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, fmt.Errorf("remove %s: %w", c.local, err))
		}
		c.closeErr = errors.Join(errs...)
	})
	return c.closeErr
}

// Send writes one datagram. A zero timeout never blocks; Forever waits for buffer space.
func (c *Conn) Send(b []byte, timeout time.Duration) error {
	if c.closed.Load() {
		return ctrlerr.New(ctrlerr.KindPeerGone, "send", "", net.ErrClosed)
	}

	var err error
	if timeout == 0 {
		err = c.sendNow(b)
	} else {
		if err = c.uc.SetWriteDeadline(deadline(timeout)); err == nil {
			_, err = c.uc.Write(b)
		}
	}
	if err != nil {
		return ctrlerr.New(classifySend(err), "send", "", err)
	}
	return nil
}

func (c *Conn) sendNow(b []byte) error {
	raw, err := c.uc.SyscallConn()
	if err != nil {
		return err
	}
	var sendErr error
	err = raw.Write(func(fd uintptr) bool {
		sendErr = unix.Sendto(int(fd), b, unix.MSG_DONTWAIT, nil)
		return true
	})
	if err != nil {
		return err
	}
	if sendErr != nil {
		return os.NewSyscallError("sendto", sendErr)
	}
	return nil
}

// Receive reads one datagram into buf. It reports truncated when the datagram was
// larger than buf. A zero timeout returns KindTimeout at once when nothing is queued;
// Forever blocks until a datagram arrives or the Conn is closed.
func (c *Conn) Receive(buf []byte, timeout time.Duration) (int, bool, error) {
	if c.closed.Load() {
		return 0, false, ctrlerr.New(ctrlerr.KindPeerGone, "receive", "", net.ErrClosed)
	}

	var (
		n     int
		flags int
		err   error
	)
	if timeout == 0 {
		n, flags, err = c.receiveNow(buf)
	} else {
		if err = c.uc.SetReadDeadline(deadline(timeout)); err == nil {
			n, _, flags, _, err = c.uc.ReadMsgUnix(buf, nil)
		}
	}
	if err != nil {
		return 0, false, ctrlerr.New(classifyReceive(err), "receive", "", err)
	}
	return n, flags&unix.MSG_TRUNC != 0, nil
}

func (c *Conn) receiveNow(buf []byte) (int, int, error) {
	raw, err := c.uc.SyscallConn()
	if err != nil {
		return 0, 0, err
	}
	var (
		n       int
		flags   int
		recvErr error
	)
	err = raw.Read(func(fd uintptr) bool {
		n, _, flags, _, recvErr = unix.Recvmsg(int(fd), buf, nil, unix.MSG_DONTWAIT)
		return true
	})
	if err != nil {
		return 0, 0, err
	}
	if recvErr != nil {
		return 0, 0, os.NewSyscallError("recvmsg", recvErr)
	}
	return n, flags, nil
}

// Pending reports whether a datagram is waiting to be read.
func (c *Conn) Pending() (bool, error) {
	if c.closed.Load() {
		return false, ctrlerr.New(ctrlerr.KindPeerGone, "pending", "", net.ErrClosed)
	}
	raw, err := c.uc.SyscallConn()
	if err != nil {
		return false, ctrlerr.New(ctrlerr.KindPeerGone, "pending", "", err)
	}

	var (
		ready   bool
		pollErr error
	)
	err = raw.Control(func(fd uintptr) {
		fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
		for {
			n, perr := unix.Poll(fds, 0)
			if errors.Is(perr, unix.EINTR) {
				continue
			}
			pollErr = perr
			ready = n > 0 && fds[0].Revents&unix.POLLIN != 0
			return
		}
	})
	if err != nil {
		return false, ctrlerr.New(ctrlerr.KindPeerGone, "pending", "", err)
	}
	if pollErr != nil {
		return false, ctrlerr.New(ctrlerr.KindUnknown, "pending", "", os.NewSyscallError("poll", pollErr))
	}
	return ready, nil
}

// Fd returns the descriptor an external poller can wait on for readability.
// It stays valid until Close. Reading from it directly bypasses the event queue.
func (c *Conn) Fd() (uintptr, error) {
	if c.closed.Load() {
		return 0, ctrlerr.New(ctrlerr.KindPeerGone, "fd", "", net.ErrClosed)
	}
	raw, err := c.uc.SyscallConn()
	if err != nil {
		return 0, ctrlerr.New(ctrlerr.KindPeerGone, "fd", "", err)
	}
	var out uintptr
	if err := raw.Control(func(fd uintptr) { out = fd }); err != nil {
		return 0, ctrlerr.New(ctrlerr.KindPeerGone, "fd", "", err)
	}
	return out, nil
}

func deadline(timeout time.Duration) time.Time {
	if timeout < 0 {
		return time.Time{}
	}
	return time.Now().Add(timeout)
}
