package discord

import (
	"context"
	"net/http"
	"sync"
	"testing"
)

// The client is shared by HTTP handlers and background workers; concurrent
// rate limiter access must not race.
func TestRateLimiterConcurrentAccess(t *testing.T) {
	client := NewClient("token")

	headers := http.Header{}
	headers.Set("X-RateLimit-Remaining", "4")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				client.updateRateLimit("channel_delete", headers)
				// An endpoint with no recorded request returns without waiting.
				if err := client.checkRateLimit(context.Background(), "message_create"); err != nil {
					t.Errorf("checkRateLimit: %v", err)
				}
			}
		}()
	}
	wg.Wait()
}
