//go:build !linux && !darwin && !windows

package clip

import "time"

// New returns a no-op backend on platforms without clipboard support.
func New(_ time.Duration) Backend {
	return newHeadless()
}
