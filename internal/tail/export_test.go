package tail

import (
	"context"
	"time"
)

// SetWait replaces the engine's timed wait.
func (e *Engine) SetWait(wait func(ctx context.Context, d time.Duration) error) {
	e.wait = wait
}
