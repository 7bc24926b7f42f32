// Package ctrltest runs a scripted stand-in for the wpa_supplicant control endpoint
// so client code can be tested against real unix datagram sockets.
package ctrltest

import (
	"errors"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

// Response scripts how the daemon answers one command.
type Response struct {
	// Before is sent to the requester, in order, ahead of the reply.
	Before []string
	// Delay is slept before the reply. The daemon serves one command at a time.
	Delay time.Duration
	// Reply is the reply datagram.
	Reply string
	// NoReply drops the command without answering.
	NoReply bool
}

// HandlerFunc answers a full command line.
type HandlerFunc func(cmd string) Response

// Daemon is a fake control endpoint bound in a short-lived temp directory.
type Daemon struct {
	CtrlDir   string
	ClientDir string
	Iface     string
	Path      string

	conn *net.UnixConn

	mu       sync.Mutex
	handlers map[string]HandlerFunc
	attached map[string]*net.UnixAddr
	commands []string

	stopOnce sync.Once
	done     chan struct{}
}

// Start binds a fake endpoint for iface and serves until the test ends.
// Paths are kept short because unix socket names are limited to 108 bytes.
func Start(t testing.TB, iface string) *Daemon {
	t.Helper()

	base, err := os.MkdirTemp("", "wpa")
	if err != nil {
		t.Fatalf("MkdirTemp() error = %v", err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(base) })

	d := &Daemon{
		CtrlDir:   filepath.Join(base, "run"),
		ClientDir: filepath.Join(base, "cli"),
		Iface:     iface,
		handlers:  map[string]HandlerFunc{},
		attached:  map[string]*net.UnixAddr{},
		done:      make(chan struct{}),
	}
	d.Path = filepath.Join(d.CtrlDir, iface)
	for _, dir := range []string{d.CtrlDir, d.ClientDir} {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			t.Fatalf("MkdirAll(%s) error = %v", dir, err)
		}
	}

	conn, err := net.ListenUnixgram("unixgram", &net.UnixAddr{Name: d.Path, Net: "unixgram"})
	if err != nil {
		t.Fatalf("ListenUnixgram(%s) error = %v", d.Path, err)
	}
	d.conn = conn

	go d.serve()
	t.Cleanup(d.Stop)
	return d
}

// Handle scripts the answer for every command whose first word is verb.
func (d *Daemon) Handle(verb string, fn HandlerFunc) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[verb] = fn
}

// Reply scripts a fixed reply for verb.
func (d *Daemon) Reply(verb, reply string) {
	d.Handle(verb, func(string) Response { return Response{Reply: reply} })
}

// Emit sends an event datagram to every attached client.
func (d *Daemon) Emit(text string) {
	d.mu.Lock()
	targets := make([]*net.UnixAddr, 0, len(d.attached))
	for _, addr := range d.attached {
		targets = append(targets, addr)
	}
	d.mu.Unlock()

	for _, addr := range targets {
		_, _ = d.conn.WriteToUnix([]byte(text), addr)
	}
}

// SendTo writes a raw datagram to the client bound at local, attached or not.
func (d *Daemon) SendTo(local, text string) error {
	_, err := d.conn.WriteToUnix([]byte(text), &net.UnixAddr{Name: local, Net: "unixgram"})
	return err
}

// Attached returns how many clients are currently attached.
func (d *Daemon) Attached() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.attached)
}

// Commands returns every command received so far, in order.
func (d *Daemon) Commands() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.commands...)
}

// Stop closes the endpoint and removes its file, as a daemon exit would.
func (d *Daemon) Stop() {
	d.stopOnce.Do(func() {
		_ = d.conn.Close()
		<-d.done
		_ = os.Remove(d.Path)
	})
}

func (d *Daemon) serve() {
	defer close(d.done)

	buf := make([]byte, 64*1024)
	for {
		n, addr, err := d.conn.ReadFromUnix(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			continue
		}
		if addr == nil || addr.Name == "" {
			continue
		}

		cmd := string(buf[:n])
		resp := d.respond(cmd, addr)
		for _, raw := range resp.Before {
			_, _ = d.conn.WriteToUnix([]byte(raw), addr)
		}
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}
		if !resp.NoReply {
			_, _ = d.conn.WriteToUnix([]byte(resp.Reply), addr)
		}
	}
}

func (d *Daemon) respond(cmd string, addr *net.UnixAddr) Response {
	verb := cmd
	if i := strings.IndexByte(cmd, ' '); i >= 0 {
		verb = cmd[:i]
	}

	d.mu.Lock()
	d.commands = append(d.commands, cmd)
	fn, ok := d.handlers[verb]
	d.mu.Unlock()
	if ok {
		return fn(cmd)
	}

	switch verb {
	case "PING":
		return Response{Reply: "PONG\n"}
	case "ATTACH":
		d.mu.Lock()
		d.attached[addr.Name] = addr
		d.mu.Unlock()
		return Response{Reply: "OK\n"}
	case "DETACH":
		d.mu.Lock()
		delete(d.attached, addr.Name)
		d.mu.Unlock()
		return Response{Reply: "OK\n"}
	default:
		return Response{Reply: "UNKNOWN COMMAND\n"}
	}
}
