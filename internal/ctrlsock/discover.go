package ctrlsock

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Endpoint is one daemon control endpoint found in a control directory.
type Endpoint struct {
	Interface string
	Path      string
}

// Discover lists the socket files in ctrlDir. The daemon creates one per managed
// interface, named after the interface.
func Discover(ctrlDir string) ([]Endpoint, error) {
	entries, err := os.ReadDir(ctrlDir)
	if err != nil {
		return nil, fmt.Errorf("read control dir %s: %w", ctrlDir, err)
	}

	out := make([]Endpoint, 0, len(entries))
	for _, entry := range entries {
		if entry.Type()&fs.ModeSocket == 0 {
			continue
		}
		out = append(out, Endpoint{
			Interface: entry.Name(),
			Path:      filepath.Join(ctrlDir, entry.Name()),
		})
	}
	return out, nil
}
