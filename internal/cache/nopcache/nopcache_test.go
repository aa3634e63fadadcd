package nopcache

import (
	"context"
	"testing"
	"time"

	"github.com/BearBump/FoodTrack/internal/cache"
	"github.com/stretchr/testify/require"
)

func TestNopCache_AlwaysMisses(t *testing.T) {
	var c cache.Cache = New()
	ctx := context.Background()

	c.Set(ctx, "order:1", []byte("v"), time.Minute)
	b, ok := c.Get(ctx, "order:1")
	require.False(t, ok)
	require.Nil(t, b)
	require.False(t, c.Exists(ctx, "order:1"))

	require.NotPanics(t, func() {
		c.Remove(ctx, "order:1", "timeline:1")
		c.RemoveByPrefix(ctx, "user_orders:1:")
	})
}
