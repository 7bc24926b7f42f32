package ctrlsock

import (
	"fmt"
	"path/filepath"
	"sync/atomic"

	"github.com/google/uuid"
)

const localPrefix = "wpa_ctrl_"

// Namer allocates local endpoint paths. Every call must return a name that has not
// been handed out before by the same Namer.
type Namer interface {
	LocalPath(dir string) string
}

// NamerFunc adapts a function to the Namer interface.
type NamerFunc func(dir string) string

func (f NamerFunc) LocalPath(dir string) string {
	return f(dir)
}

// SequenceNamer names endpoints after a process id and its own monotonic counter,
// e.g. /tmp/wpa_ctrl_1234-0, /tmp/wpa_ctrl_1234-1.
type SequenceNamer struct {
	PID int
	seq atomic.Uint64
}

func NewSequenceNamer(pid int) *SequenceNamer {
	return &SequenceNamer{PID: pid}
}

func (n *SequenceNamer) LocalPath(dir string) string {
	seq := n.seq.Add(1) - 1
	return filepath.Join(dir, fmt.Sprintf("%s%d-%d", localPrefix, n.PID, seq))
}

// RandomNamer names endpoints with a random UUID. Use it when several PID namespaces
// share one client directory and pids can repeat.
type RandomNamer struct{}

func (RandomNamer) LocalPath(dir string) string {
	return filepath.Join(dir, localPrefix+uuid.NewString())
}
