package api

import (
	"sort"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/labstack/echo/v4"
)

const maxTrackedLatency = int64(time.Minute / time.Microsecond)

// RouteLatency summarises one route's request latencies in microseconds.
type RouteLatency struct {
	Route string  `json:"route"`
	Count int64   `json:"count"`
	Mean  float64 `json:"mean_us"`
	P50   int64   `json:"p50_us"`
	P95   int64   `json:"p95_us"`
	P99   int64   `json:"p99_us"`
	Max   int64   `json:"max_us"`
}

// LatencyRecorder keeps one histogram per route.
type LatencyRecorder struct {
	mu     sync.Mutex
	routes map[string]*hdrhistogram.Histogram
}

func NewLatencyRecorder() *LatencyRecorder {
	return &LatencyRecorder{routes: make(map[string]*hdrhistogram.Histogram)}
}

// Record adds one request duration to route's histogram.
func (r *LatencyRecorder) Record(route string, d time.Duration) {
	us := d.Microseconds()
	if us < 1 {
		us = 1
	}
	if us > maxTrackedLatency {
		us = maxTrackedLatency
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.routes[route]
	if !ok {
		h = hdrhistogram.New(1, maxTrackedLatency, 3)
		r.routes[route] = h
	}
	_ = h.RecordValue(us) // in range by construction
}

// Middleware records the latency of every request under its route path.
func (r *LatencyRecorder) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			r.Record(c.Path(), time.Since(start))
			return err
		}
	}
}

// Snapshot returns every route's summary ordered by route.
func (r *LatencyRecorder) Snapshot() []RouteLatency {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]RouteLatency, 0, len(r.routes))
	for route, h := range r.routes {
		out = append(out, RouteLatency{
			Route: route,
			Count: h.TotalCount(),
			Mean:  h.Mean(),
			P50:   h.ValueAtQuantile(50),
			P95:   h.ValueAtQuantile(95),
			P99:   h.ValueAtQuantile(99),
			Max:   h.Max(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Route < out[j].Route })
	return out
}
