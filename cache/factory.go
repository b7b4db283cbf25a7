package cache

import (
	"fmt"
	"github.com/kardolus/jssdk/internal"
)

const (
	BackendFile   = "file"
	BackendMemory = "memory"
)

// NewStore builds the Store named by backend. The file backend is the
// default since it is the only one shared between processes.
func NewStore(backend, baseDir string, timer internal.Timer) (Store, error) {
	switch backend {
	case BackendFile, "":
		if baseDir == "" {
			return nil, fmt.Errorf("cache: the %s backend needs a directory", BackendFile)
		}
		return NewFileStore(baseDir, timer), nil
	case BackendMemory:
		return NewMemoryStore(timer), nil
	default:
		return nil, fmt.Errorf("cache: unknown backend %q", backend)
	}
}
