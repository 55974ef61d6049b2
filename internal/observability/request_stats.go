// Package observability provides request statistics tracking for performance monitoring.
package observability

import (
	"sort"
	"sync"
	"time"
)

// RequestStats tracks per-endpoint request counts and latencies.
type RequestStats struct {
	mu        sync.RWMutex
	endpoints map[string]*EndpointStats
	window    time.Duration
}

// EndpointStats holds statistics for a single endpoint.
type EndpointStats struct {
	Endpoint      string
	Count         int64
	ClientErrors  int64 // 4xx responses
	ServerErrors  int64 // 5xx responses
	TotalDuration time.Duration
	MaxDuration   time.Duration
	LastSeen      time.Time
}

// AvgDuration returns the mean request duration for the endpoint.
func (e *EndpointStats) AvgDuration() time.Duration {
	if e.Count == 0 {
		return 0
	}
	return e.TotalDuration / time.Duration(e.Count)
}

// NewRequestStats creates a new request statistics tracker.
// window: time duration for pruning stale entries (e.g., 1 hour)
func NewRequestStats(window time.Duration) *RequestStats {
	return &RequestStats{
		endpoints: make(map[string]*EndpointStats),
		window:    window,
	}
}

// Record records one served request for an endpoint.
// endpoint: method plus path (e.g., "POST /api/attrition/analyze")
// This method is O(1) and thread-safe.
func (s *RequestStats) Record(endpoint string, status int, duration time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats, exists := s.endpoints[endpoint]
	if !exists {
		stats = &EndpointStats{Endpoint: endpoint}
		s.endpoints[endpoint] = stats
	}

	stats.Count++
	stats.TotalDuration += duration
	if duration > stats.MaxDuration {
		stats.MaxDuration = duration
	}
	stats.LastSeen = time.Now()

	switch {
	case status >= 500:
		stats.ServerErrors++
	case status >= 400:
		stats.ClientErrors++
	}
}

// Top returns the top N endpoints by request count, as copies sorted by
// count descending.
func (s *RequestStats) Top(n int) []EndpointStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if n <= 0 || len(s.endpoints) == 0 {
		return []EndpointStats{}
	}

	stats := make([]EndpointStats, 0, len(s.endpoints))
	for _, e := range s.endpoints {
		stats = append(stats, *e)
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Count != stats[j].Count {
			return stats[i].Count > stats[j].Count
		}
		return stats[i].Endpoint < stats[j].Endpoint
	})

	if n > len(stats) {
		n = len(stats)
	}
	return stats[:n]
}

// Snapshot returns all endpoint stats sorted by count descending.
func (s *RequestStats) Snapshot() []EndpointStats {
	return s.Top(len(s.Endpoints()))
}

// Endpoints returns the tracked endpoint names in no particular order.
func (s *RequestStats) Endpoints() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.endpoints))
	for name := range s.endpoints {
		names = append(names, name)
	}
	return names
}

// Prune removes entries where time.Since(LastSeen) > window.
// This should be called periodically (e.g., every 5 minutes).
func (s *RequestStats) Prune() {
	s.mu.Lock()
	defer s.mu.Unlock()

	threshold := time.Now().Add(-s.window)
	for name, stats := range s.endpoints {
		if stats.LastSeen.Before(threshold) {
			delete(s.endpoints, name)
		}
	}
}
