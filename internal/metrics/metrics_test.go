package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/oggyb/vibecheck/internal/metrics"
)

func TestCountersAreRegistered(t *testing.T) {
	before := testutil.ToFloat64(metrics.SwipesTotal.WithLabelValues("right"))
	metrics.SwipesTotal.WithLabelValues("right").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.SwipesTotal.WithLabelValues("right")))

	metrics.CircuitBreakerState.WithLabelValues("spotify").Set(2)
	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.CircuitBreakerState.WithLabelValues("spotify")))
}
