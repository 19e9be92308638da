// Package metrics exposes the engine's Prometheus collectors. Every Metrics
// value owns its registry, and a nil *Metrics is a valid no-op.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "voxelworld"

type Metrics struct {
	registry *prometheus.Registry

	chunksSpawned   *prometheus.CounterVec
	chunksDespawned *prometheus.CounterVec
	chunksLoaded    *prometheus.GaugeVec
	events          *prometheus.CounterVec

	tasksSubmitted *prometheus.CounterVec
	tasksCompleted *prometheus.CounterVec
	tasksFailed    *prometheus.CounterVec
	tasksDropped   *prometheus.CounterVec

	cacheEntries prometheus.Gauge
	cacheHits    prometheus.Counter
	cacheMisses  prometheus.Counter

	tickPhase *prometheus.HistogramVec

	mu                   sync.Mutex
	lastHits, lastMisses uint64
}

// New builds the collectors and registers them, together with the Go and
// process collectors, on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		chunksSpawned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chunks",
			Name:      "spawned_total",
			Help:      "Chunk entities created by the scheduler.",
		}, []string{"world"}),
		chunksDespawned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chunks",
			Name:      "despawned_total",
			Help:      "Chunk entities removed after retirement.",
		}, []string{"world"}),
		chunksLoaded: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "chunks",
			Name:      "loaded",
			Help:      "Chunks currently present in the chunk map.",
		}, []string{"world"}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Chunk lifecycle events emitted.",
		}, []string{"world", "kind"}),
		tasksSubmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tasks",
			Name:      "submitted_total",
			Help:      "Generation tasks handed to the worker pool.",
		}, []string{"world"}),
		tasksCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tasks",
			Name:      "completed_total",
			Help:      "Generation tasks integrated into the world.",
		}, []string{"world"}),
		tasksFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tasks",
			Name:      "failed_total",
			Help:      "Generation tasks that panicked.",
		}, []string{"world"}),
		tasksDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tasks",
			Name:      "dropped_total",
			Help:      "Task results discarded because the chunk was despawned, or submissions refused by a full queue.",
		}, []string{"world"}),
		cacheEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "mesh_cache",
			Name:      "entries",
			Help:      "Meshes held by the mesh cache.",
		}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mesh_cache",
			Name:      "hits_total",
			Help:      "Mesh cache lookups that found a live mesh.",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mesh_cache",
			Name:      "misses_total",
			Help:      "Mesh cache lookups that found nothing.",
		}),
		tickPhase: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "tick",
			Name:      "phase_seconds",
			Help:      "Time spent in each tick phase.",
			Buckets:   prometheus.ExponentialBuckets(0.00005, 2, 14),
		}, []string{"phase"}),
	}

	m.registry.MustRegister(
		m.chunksSpawned, m.chunksDespawned, m.chunksLoaded, m.events,
		m.tasksSubmitted, m.tasksCompleted, m.tasksFailed, m.tasksDropped,
		m.cacheEntries, m.cacheHits, m.cacheMisses,
		m.tickPhase,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry is the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ChunkSpawned(world string) {
	if m == nil {
		return
	}
	m.chunksSpawned.WithLabelValues(world).Inc()
}

func (m *Metrics) ChunkDespawned(world string) {
	if m == nil {
		return
	}
	m.chunksDespawned.WithLabelValues(world).Inc()
}

func (m *Metrics) SetChunksLoaded(world string, n int) {
	if m == nil {
		return
	}
	m.chunksLoaded.WithLabelValues(world).Set(float64(n))
}

func (m *Metrics) Event(world, kind string) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(world, kind).Inc()
}

func (m *Metrics) TaskSubmitted(world string) {
	if m == nil {
		return
	}
	m.tasksSubmitted.WithLabelValues(world).Inc()
}

func (m *Metrics) TaskCompleted(world string) {
	if m == nil {
		return
	}
	m.tasksCompleted.WithLabelValues(world).Inc()
}

func (m *Metrics) TaskFailed(world string) {
	if m == nil {
		return
	}
	m.tasksFailed.WithLabelValues(world).Inc()
}

func (m *Metrics) TaskDropped(world string) {
	if m == nil {
		return
	}
	m.tasksDropped.WithLabelValues(world).Inc()
}

// SetCacheStats publishes the mesh cache size and its cumulative lookup
// counters.
func (m *Metrics) SetCacheStats(entries int, hits, misses uint64) {
	if m == nil {
		return
	}
	m.cacheEntries.Set(float64(entries))

	m.mu.Lock()
	defer m.mu.Unlock()
	if hits >= m.lastHits {
		m.cacheHits.Add(float64(hits - m.lastHits))
	}
	if misses >= m.lastMisses {
		m.cacheMisses.Add(float64(misses - m.lastMisses))
	}
	m.lastHits, m.lastMisses = hits, misses
}

// ObservePhase records the duration of one tick phase.
func (m *Metrics) ObservePhase(phase string, d time.Duration) {
	if m == nil {
		return
	}
	m.tickPhase.WithLabelValues(phase).Observe(d.Seconds())
}
