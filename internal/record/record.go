// Package record persists attendance. Records are append-only: the
// service exposes writes and reads, never updates or deletes.
package record

import "time"

// Record is one logged attendance entry. Image carries the captured
// still as a JPEG data URI, stored verbatim. CreatedAt is assigned by
// the store at insert and never accepted from callers.
type Record struct {
	ID         string    `json:"id"`
	PersonName string    `json:"person_name"`
	Image      string    `json:"image"`
	LoggedBy   string    `json:"logged_by"`
	CreatedAt  time.Time `json:"created_at"`
}

// Archive is a worker-written mirror of a record's image in external
// storage, kept for audit review. Also append-only.
type Archive struct {
	ID        string    `json:"id"`
	RecordID  string    `json:"record_id"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}
