package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRegister_Idempotent(t *testing.T) {
	require.NotPanics(t, func() {
		Register()
		Register()
	})
}

func TestCacheCounters(t *testing.T) {
	before := testutil.ToFloat64(CacheLookupsTotal.WithLabelValues("order", "hit"))
	CacheHit("order")
	CacheMiss("order")
	require.Equal(t, before+1, testutil.ToFloat64(CacheLookupsTotal.WithLabelValues("order", "hit")))
}

func TestObserveDelivery(t *testing.T) {
	d := testutil.ToFloat64(BroadcastDeliveriesTotal.WithLabelValues("delivered"))
	x := testutil.ToFloat64(BroadcastDeliveriesTotal.WithLabelValues("dropped"))
	ObserveDelivery(true)
	ObserveDelivery(false)
	ObserveDelivery(false)
	require.Equal(t, d+1, testutil.ToFloat64(BroadcastDeliveriesTotal.WithLabelValues("delivered")))
	require.Equal(t, x+2, testutil.ToFloat64(BroadcastDeliveriesTotal.WithLabelValues("dropped")))
}
