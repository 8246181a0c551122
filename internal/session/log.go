package session

import (
	"time"

	"studio/internal/domain"
)

// RecordStatus enumerates a log record's lifecycle states.
type RecordStatus string

const (
	RecordLoading RecordStatus = "loading"
	RecordDone    RecordStatus = "done"
)

// Record is one entry in the chronological creation log. The id is its sole
// stable identity; ids are never reused and never reordered. Failed
// generations leave no record at all.
type Record struct {
	ID        int64                   `json:"id"`
	Feature   domain.FeatureKey       `json:"feature"`
	Status    RecordStatus            `json:"status"`
	Image     *domain.ImageResult     `json:"image,omitempty"`
	Snapshot  domain.SettingsSnapshot `json:"snapshot"`
	CreatedAt time.Time               `json:"created_at"`
}

// Log is the append-only, globally ordered list of generation attempts for
// one session. Independent of the per-feature stacks: deleting a record never
// touches the image's stack entry and vice versa.
type Log struct {
	records []*Record
	nextID  int64
}

// NewLog returns an empty log whose ids start at 1.
func NewLog() *Log {
	return &Log{nextID: 1}
}

// Append creates a Loading record carrying the snapshot and returns it so the
// caller can correlate the eventual completion.
func (l *Log) Append(feature domain.FeatureKey, snapshot domain.SettingsSnapshot) *Record {
	rec := &Record{
		ID:        l.nextID,
		Feature:   feature,
		Status:    RecordLoading,
		Snapshot:  snapshot,
		CreatedAt: time.Now(),
	}
	l.nextID++
	l.records = append(l.records, rec)
	return rec
}

// Complete fills the record's image and marks it Done.
func (l *Log) Complete(id int64, img domain.ImageResult) bool {
	rec := l.Find(id)
	if rec == nil {
		return false
	}
	copied := img
	rec.Image = &copied
	rec.Status = RecordDone
	return true
}

// Fail removes the record. Error detail lives in the status tracker; the log
// only keeps successful outputs and their in-flight placeholders.
func (l *Log) Fail(id int64) bool { return l.remove(id) }

// Delete removes the record by user request.
func (l *Log) Delete(id int64) bool { return l.remove(id) }

func (l *Log) remove(id int64) bool {
	for i, rec := range l.records {
		if rec.ID == id {
			l.records = append(l.records[:i], l.records[i+1:]...)
			return true
		}
	}
	return false
}

// Find returns the record with the given id, or nil.
func (l *Log) Find(id int64) *Record {
	for _, rec := range l.records {
		if rec.ID == id {
			return rec
		}
	}
	return nil
}

// List returns the records newest-first. Each record is copied so callers can
// hold and encode the result outside the session lock while in-flight
// completions keep mutating the originals.
func (l *Log) List() []*Record {
	out := make([]*Record, len(l.records))
	for i, rec := range l.records {
		copied := *rec
		if rec.Image != nil {
			img := *rec.Image
			copied.Image = &img
		}
		out[len(l.records)-1-i] = &copied
	}
	return out
}

// Len returns the number of live records.
func (l *Log) Len() int { return len(l.records) }

// Clear drops every record. Ids keep counting up so a late completion for a
// cleared record can never collide with a new one.
func (l *Log) Clear() {
	l.records = nil
}
