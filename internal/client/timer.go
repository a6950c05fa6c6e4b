package client

import (
	"context"
	"fmt"
	"time"
)

// FormatRemaining renders d as mm:ss, rounding up to the next second so that
// 00:00 only shows once time is up.
func FormatRemaining(d time.Duration) string {
	if d <= 0 {
		return "00:00"
	}
	secs := int((d + time.Second - 1) / time.Second)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

// Countdown sends the time left until expiresAt on every tick, starting
// immediately. After sending zero, or when ctx ends, the channel is closed.
func Countdown(ctx context.Context, expiresAt time.Time, tick time.Duration) <-chan time.Duration {
	out := make(chan time.Duration)
	go func() {
		defer close(out)
		ticker := time.NewTicker(tick)
		defer ticker.Stop()
		for {
			left := time.Until(expiresAt)
			if left < 0 {
				left = 0
			}
			select {
			case out <- left:
			case <-ctx.Done():
				return
			}
			if left == 0 {
				return
			}
			select {
			case <-ticker.C:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
