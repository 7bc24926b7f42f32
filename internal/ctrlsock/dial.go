package ctrlsock

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sys/unix"

	"github.com/rbright/wpactrl/internal/ctrlerr"
)

const (
	// DefaultCtrlDir is where wpa_supplicant places one endpoint per interface.
	DefaultCtrlDir = "/var/run/wpa_supplicant"
	// DefaultClientDir holds the caller-side endpoints.
	DefaultClientDir = "/tmp"
	// DefaultAttempts bounds local endpoint allocation retries.
	DefaultAttempts = 8
)

var (
	defaultNamerOnce sync.Once
	defaultNamer     Namer
)

func processNamer() Namer {
	defaultNamerOnce.Do(func() {
		defaultNamer = NewSequenceNamer(os.Getpid())
	})
	return defaultNamer
}

// Dialer opens Channel Handles. The zero value uses DefaultClientDir, a per-process
// SequenceNamer and DefaultAttempts.
type Dialer struct {
	ClientDir string
	Namer     Namer
	Attempts  int
	Logger    *slog.Logger
}

// Open opens a handle to the daemon endpoint at peer using the default Dialer.
func Open(peer string) (*Conn, error) {
	var d Dialer
	return d.Open(peer)
}

// OpenIn opens a handle whose local endpoint lives in clientDir.
func OpenIn(peer, clientDir string) (*Conn, error) {
	d := Dialer{ClientDir: clientDir}
	return d.Open(peer)
}

// PeerPath returns the daemon endpoint path for one interface.
func PeerPath(ctrlDir, iface string) string {
	return filepath.Join(ctrlDir, iface)
}

// Open binds a fresh local endpoint and connects it to peer. Address collisions and
// transient resource shortages are retried with new names, up to Attempts.
func (d *Dialer) Open(peer string) (*Conn, error) {
	dir := d.ClientDir
	if dir == "" {
		dir = DefaultClientDir
	}
	namer := d.Namer
	if namer == nil {
		namer = processNamer()
	}
	attempts := d.Attempts
	if attempts <= 0 {
		attempts = DefaultAttempts
	}
	logger := d.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		local := namer.LocalPath(dir)
		fd, err := bindLocal(local)
		if err == nil {
			conn, err := connectPeer(fd, local, peer)
			if err != nil {
				return nil, err
			}
			logger.Debug("control socket open", "local", local, "peer", peer, "attempt", attempt)
			return conn, nil
		}

		kind, retry := classifyBind(err)
		lastErr = ctrlerr.New(kind, "open", "", fmt.Errorf("bind %s: %w", local, err))
		if !retry {
			return nil, lastErr
		}

		logger.Debug("local endpoint allocation failed", "local", local, "attempt", attempt, "error", err.Error())
		switch kind {
		case ctrlerr.KindAddressInUse:
			rescueStale(local, logger)
		case ctrlerr.KindResourceExhausted:
			time.Sleep(time.Duration(10*(attempt+1)) * time.Millisecond)
		}
	}

	return nil, lastErr
}

func bindLocal(local string) (int, error) {
	fd, err := unix.Socket(unix.AF_UNIX, unix.SOCK_DGRAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return -1, os.NewSyscallError("socket", err)
	}
	if err := unix.Bind(fd, &unix.SockaddrUnix{Name: local}); err != nil {
		_ = unix.Close(fd)
		return -1, os.NewSyscallError("bind", err)
	}
	return fd, nil
}

func connectPeer(fd int, local, peer string) (*Conn, error) {
	if err := unix.Connect(fd, &unix.SockaddrUnix{Name: peer}); err != nil {
		_ = unix.Close(fd)
		_ = os.Remove(local)
		err = os.NewSyscallError("connect", err)
		return nil, ctrlerr.New(classifyConnect(err), "open", "", fmt.Errorf("connect %s: %w", peer, err))
	}

	file := os.NewFile(uintptr(fd), local)
	fc, err := net.FileConn(file)
	_ = file.Close()
	if err != nil {
		_ = os.Remove(local)
		return nil, ctrlerr.New(ctrlerr.KindResourceExhausted, "open", "", fmt.Errorf("wrap socket: %w", err))
	}
	uc, ok := fc.(*net.UnixConn)
	if !ok {
		_ = fc.Close()
		_ = os.Remove(local)
		return nil, ctrlerr.Errorf(ctrlerr.KindUnknown, "open", "", "unexpected connection type %T", fc)
	}

	return &Conn{uc: uc, local: local, peer: peer}, nil
}

// rescueStale unlinks a leftover endpoint file when nothing is bound to it anymore.
// A live endpoint is left alone; the caller moves on to the next name.
func rescueStale(path string, logger *slog.Logger) {
	if !isStale(path) {
		return
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Debug("remove stale endpoint failed", "local", path, "error", err.Error())
		return
	}
	logger.Debug("removed stale endpoint", "local", path)
}

func isStale(path string) bool {
	fd, err := unix.Socket(unix.AF_UNIX, unix.SOCK_DGRAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return false
	}
	defer unix.Close(fd)

	err = unix.Connect(fd, &unix.SockaddrUnix{Name: path})
	return isConnectionRefused(err)
}
