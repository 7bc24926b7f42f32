package ctrlsock

import (
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSequenceNamerIsDeterministic(t *testing.T) {
	t.Parallel()

	n := NewSequenceNamer(4242)
	require.Equal(t, "/tmp/wpa_ctrl_4242-0", n.LocalPath("/tmp"))
	require.Equal(t, "/tmp/wpa_ctrl_4242-1", n.LocalPath("/tmp"))
	require.Equal(t, "/run/c/wpa_ctrl_4242-2", n.LocalPath("/run/c"))
}

func TestSequenceNamerInstancesAreIndependent(t *testing.T) {
	t.Parallel()

	a := NewSequenceNamer(1)
	b := NewSequenceNamer(1)
	require.Equal(t, a.LocalPath("/d"), b.LocalPath("/d"))
}

func TestSequenceNamerUniqueUnderConcurrency(t *testing.T) {
	t.Parallel()

	n := NewSequenceNamer(7)
	const workers, per = 8, 50

	var (
		mu   sync.Mutex
		seen = map[string]struct{}{}
		wg   sync.WaitGroup
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < per; i++ {
				name := n.LocalPath("/tmp")
				mu.Lock()
				seen[name] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	require.Len(t, seen, workers*per)
}

func TestRandomNamer(t *testing.T) {
	t.Parallel()

	var n RandomNamer
	first := n.LocalPath("/tmp")
	second := n.LocalPath("/tmp")

	require.NotEqual(t, first, second)
	require.Equal(t, "/tmp", filepath.Dir(first))
	require.True(t, strings.HasPrefix(filepath.Base(first), "wpa_ctrl_"))
	require.Less(t, len(first), 108)
}
