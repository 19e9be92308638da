package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ChunkSpawned("w")
		m.ChunkDespawned("w")
		m.SetChunksLoaded("w", 3)
		m.Event("w", "spawn")
		m.TaskSubmitted("w")
		m.TaskCompleted("w")
		m.TaskFailed("w")
		m.TaskDropped("w")
		m.SetCacheStats(1, 2, 3)
		m.ObservePhase("spawn", time.Millisecond)
	})
}

func TestInstancesDoNotCollide(t *testing.T) {
	a, b := New(), New()
	a.ChunkSpawned("w")
	a.ChunkSpawned("w")
	b.ChunkSpawned("w")
	assert.Equal(t, 2.0, testutil.ToFloat64(a.chunksSpawned.WithLabelValues("w")))
	assert.Equal(t, 1.0, testutil.ToFloat64(b.chunksSpawned.WithLabelValues("w")))
}

func TestCacheStatsAddDeltas(t *testing.T) {
	m := New()
	m.SetCacheStats(4, 10, 2)
	m.SetCacheStats(5, 15, 2)
	assert.Equal(t, 5.0, testutil.ToFloat64(m.cacheEntries))
	assert.Equal(t, 15.0, testutil.ToFloat64(m.cacheHits))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.cacheMisses))
}

func TestHandlerServesMetrics(t *testing.T) {
	m := New()
	m.SetChunksLoaded("overworld", 12)
	m.ObservePhase("spawn", 2*time.Millisecond)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()
	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `voxelworld_chunks_loaded{world="overworld"} 12`)
	assert.Contains(t, string(body), `voxelworld_tick_phase_seconds_count{phase="spawn"} 1`)
}
