// Package observability provides in-process upload statistics for
// monitoring pipeline throughput and data quality trends.
package observability

import (
	"sort"
	"sync"
	"time"

	"github.com/ayusingh-54/supply-chain-analytics/pkg/types"
)

// UploadStats tracks per-category upload counters. All methods are
// O(1) and thread-safe.
type UploadStats struct {
	mu         sync.RWMutex
	categories map[types.Category]*categoryCounters
	window     time.Duration
	now        func() time.Time
}

type categoryCounters struct {
	uploads     int64
	rejected    int64
	rowsLoaded  int64
	rowsDropped int64
	scoreSum    float64
	lastUpload  time.Time
}

// CategoryStats is a point-in-time copy of one category's counters.
type CategoryStats struct {
	Category        types.Category `json:"category"`
	Uploads         int64          `json:"uploads"`
	Rejected        int64          `json:"rejected"`
	RowsLoaded      int64          `json:"rows_loaded"`
	RowsDropped     int64          `json:"rows_dropped"`
	AvgQualityScore float64        `json:"avg_quality_score"`
	LastUpload      time.Time      `json:"last_upload"`
}

// Totals aggregates counters across all categories.
type Totals struct {
	Uploads     int64 `json:"uploads"`
	Rejected    int64 `json:"rejected"`
	RowsLoaded  int64 `json:"rows_loaded"`
	RowsDropped int64 `json:"rows_dropped"`
}

// NewUploadStats creates a tracker. window bounds how long an idle
// category's counters survive a Prune call.
func NewUploadStats(window time.Duration) *UploadStats {
	return &UploadStats{
		categories: make(map[types.Category]*categoryCounters),
		window:     window,
		now:        time.Now,
	}
}

func (s *UploadStats) counters(category types.Category) *categoryCounters {
	c, ok := s.categories[category]
	if !ok {
		c = &categoryCounters{}
		s.categories[category] = c
	}
	return c
}

// RecordUpload records one accepted upload.
func (s *UploadStats) RecordUpload(category types.Category, originalRows, cleanedRows int, score float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.counters(category)
	c.uploads++
	c.rowsLoaded += int64(cleanedRows)
	c.rowsDropped += int64(originalRows - cleanedRows)
	c.scoreSum += score
	c.lastUpload = s.now()
}

// RecordRejection records one schema-rejected upload.
func (s *UploadStats) RecordRejection(category types.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.counters(category)
	c.rejected++
	c.lastUpload = s.now()
}

// Snapshot returns per-category stats sorted by upload count
// descending, category name as the tiebreak.
func (s *UploadStats) Snapshot() []CategoryStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]CategoryStats, 0, len(s.categories))
	for category, c := range s.categories {
		stats := CategoryStats{
			Category:    category,
			Uploads:     c.uploads,
			Rejected:    c.rejected,
			RowsLoaded:  c.rowsLoaded,
			RowsDropped: c.rowsDropped,
			LastUpload:  c.lastUpload,
		}
		if c.uploads > 0 {
			stats.AvgQualityScore = c.scoreSum / float64(c.uploads)
		}
		out = append(out, stats)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Uploads != out[j].Uploads {
			return out[i].Uploads > out[j].Uploads
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// TotalStats aggregates every category's counters.
func (s *UploadStats) TotalStats() Totals {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var t Totals
	for _, c := range s.categories {
		t.Uploads += c.uploads
		t.Rejected += c.rejected
		t.RowsLoaded += c.rowsLoaded
		t.RowsDropped += c.rowsDropped
	}
	return t
}

// Prune drops counters for categories whose last activity is older
// than the window. Call periodically from a maintenance loop.
func (s *UploadStats) Prune() {
	s.mu.Lock()
	defer s.mu.Unlock()

	threshold := s.now().Add(-s.window)
	for category, c := range s.categories {
		if c.lastUpload.Before(threshold) {
			delete(s.categories, category)
		}
	}
}
