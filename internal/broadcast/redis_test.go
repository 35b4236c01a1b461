//go:build integration

package broadcast

import (
	"context"
	"os"
	"testing"
	"time"

	"dahabiya-site/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Requires a Redis server; set NILE_TEST_REDIS_URL to run.
func TestRedisRelay_CrossInstance(t *testing.T) {
	url := os.Getenv("NILE_TEST_REDIS_URL")
	if url == "" {
		t.Skip("NILE_TEST_REDIS_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	a, err := NewRedisRelay(ctx, url, "content-updates-test", logger.Nop())
	require.NoError(t, err)
	defer a.Close()
	b, err := NewRedisRelay(ctx, url, "content-updates-test", logger.Nop())
	require.NoError(t, err)
	defer b.Close()

	hubA, hubB := NewHub(4), NewHub(4)
	hubA.SetRelay(a)
	go b.Run(ctx, hubB)
	go a.Run(ctx, hubA)

	eventsA, unsubA := hubA.Subscribe()
	defer unsubA()
	eventsB, unsubB := hubB.Subscribe()
	defer unsubB()

	// Give the subscriptions time to register with the server.
	time.Sleep(200 * time.Millisecond)
	require.NoError(t, hubA.Publish(ctx, NewEvent(ContentUpdated, "homepage", "hero_video_title", "NEW")))

	select {
	case e := <-eventsB:
		assert.Equal(t, "hero_video_title", e.Key)
	case <-ctx.Done():
		t.Fatal("event not relayed")
	}

	// The publishing instance sees its own event once, not again via Redis.
	<-eventsA
	select {
	case e := <-eventsA:
		t.Fatalf("unexpected echo %+v", e)
	case <-time.After(300 * time.Millisecond):
	}
}
