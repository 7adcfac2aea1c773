package service

import (
	"context"
	"time"
)

// DefaultTimeout bounds every collaborator call when no timeout is configured.
const DefaultTimeout = 5 * time.Second

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = DefaultTimeout
	}
	return context.WithTimeout(ctx, d)
}
