package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateKey(t *testing.T) {
	c := NewRedisCache(Options{Addr: "127.0.0.1:0"}, "order-console")
	defer c.Close()

	assert.Equal(t, "order-console:draft:abc", c.GenerateKey("draft", "abc"))
}

func TestUnreachableRedis(t *testing.T) {
	// Port 1 is never a redis server; the error must surface, not a miss.
	c := NewRedisCache(Options{Addr: "127.0.0.1:1"}, "order-console")
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	require.Error(t, c.Ping(ctx))
	_, err := c.Get(ctx, c.GenerateKey("draft", "abc"))
	assert.Error(t, err)
}
