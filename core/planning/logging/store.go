package logging

import (
	"context"
	"time"

	"github.com/kilianp07/loadplan/core/model"
)

// LogRecord captures one planning decision.
type LogRecord struct {
	Timestamp time.Time  `json:"timestamp"`
	PlanID    string     `json:"plan_id"`
	VehicleID string     `json:"vehicle_id,omitempty"`
	Capacity  float64    `json:"capacity"`
	OrderIDs  []string   `json:"order_ids"`
	Plan      model.Plan `json:"plan"`
}

// NewLogRecord builds the record stored for p.
func NewLogRecord(p model.Plan) LogRecord {
	ids := make([]string, len(p.Selected))
	for i, o := range p.Selected {
		ids[i] = o.ID
	}
	return LogRecord{
		Timestamp: p.CreatedAt,
		PlanID:    p.ID,
		VehicleID: p.VehicleID,
		Capacity:  p.Capacity,
		OrderIDs:  ids,
		Plan:      p,
	}
}

// LogQuery defines filters for retrieving records. Zero fields match
// everything.
type LogQuery struct {
	Start     time.Time
	End       time.Time
	VehicleID string
	OrderID   string
	Limit     int
}

// Match reports whether r satisfies every filter of q except Limit.
func (q LogQuery) Match(r LogRecord) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.VehicleID != "" && r.VehicleID != q.VehicleID {
		return false
	}
	if q.OrderID != "" {
		for _, id := range r.OrderIDs {
			if id == q.OrderID {
				return true
			}
		}
		return false
	}
	return true
}

// LogStore persists LogRecords and supports querying.
type LogStore interface {
	Append(ctx context.Context, rec LogRecord) error
	Query(ctx context.Context, q LogQuery) ([]LogRecord, error)
	Close() error
}

// Config selects and tunes the plan log backend.
type Config struct {
	// Backend selects the log store type: "jsonl" or "sqlite".
	Backend string `json:"backend"`
	// Path is the file location of the log store.
	Path string `json:"path"`
	// MaxSizeMB triggers rotation when the file exceeds this size in megabytes.
	MaxSizeMB int `json:"max_size_mb"`
	// MaxBackups limits the number of rotated files to keep.
	MaxBackups int `json:"max_backups"`
	// MaxAgeDays removes rotated files older than this number of days.
	MaxAgeDays int `json:"max_age_days"`
}
