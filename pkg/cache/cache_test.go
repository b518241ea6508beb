package cache

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHelpersNoOpWithoutClient(t *testing.T) {
	RDB = nil
	ctx := context.Background()

	var out string
	assert.False(t, Get(ctx, "k", &out))
	assert.NoError(t, Set(ctx, "k", "v", time.Minute))
	assert.NoError(t, Forget(ctx, "k"))
	assert.NoError(t, Close())
}

func TestRememberLoadsOnMiss(t *testing.T) {
	RDB = nil
	calls := 0

	var out []string
	err := Remember(context.Background(), "k", time.Minute, &out, func() ([]string, error) {
		calls++
		return []string{"a", "b"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, out)
	assert.Equal(t, 1, calls)
}

func TestRememberPropagatesLoadError(t *testing.T) {
	RDB = nil
	boom := errors.New("store down")

	var out []string
	err := Remember(context.Background(), "k", time.Minute, &out, func() ([]string, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, out)
}

// recordingHook answers every command locally: GET returns a canned
// payload as if another instance had cached it.
type recordingHook struct {
	cached string
	seen   []string
}

func (h *recordingHook) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		return nil, errors.New("no dialing in tests")
	}
}

func (h *recordingHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		h.seen = append(h.seen, cmd.Name())
		if c, ok := cmd.(*redis.StringCmd); ok && cmd.Name() == "get" {
			c.SetVal(h.cached)
		}
		return nil
	}
}

func (h *recordingHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

func withHookedClient(t *testing.T, cached string) *recordingHook {
	t.Helper()
	hook := &recordingHook{cached: cached}
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	client.AddHook(hook)
	RDB = client
	t.Cleanup(func() { _ = Close() })
	return hook
}

func TestRememberServesSharedEntry(t *testing.T) {
	hook := withHookedClient(t, `["from-redis"]`)

	var out []string
	err := Remember(context.Background(), "pricing:discounts", time.Minute, &out, func() ([]string, error) {
		t.Fatal("load must not run on a hit")
		return nil, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"from-redis"}, out)
	assert.Equal(t, []string{"get"}, hook.seen)
}

func TestRememberBypassesCacheWithoutTTL(t *testing.T) {
	hook := withHookedClient(t, `["stale"]`)

	var out []string
	err := Remember(context.Background(), "pricing:discounts", 0, &out, func() ([]string, error) {
		return []string{"from-store"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"from-store"}, out)
	assert.Empty(t, hook.seen)
}
