//go:build !linux

package display

import (
	"fmt"
	"runtime"
)

// Framebuffer is unavailable off Linux.
type Framebuffer struct {
	mapped
}

// OpenFramebuffer always fails off Linux.
func OpenFramebuffer(path string) (*Framebuffer, error) {
	return nil, fmt.Errorf("open framebuffer %s: not supported on %s", path, runtime.GOOS)
}

func (fb *Framebuffer) Close() error { return nil }
