package record

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/shubham852v/ai-attendance/internal/metrics"
	"github.com/shubham852v/ai-attendance/internal/queue"
)

// Service validates and writes attendance records and announces each
// write to the worker queue.
type Service struct {
	repo  *Repository
	queue queue.Queue
}

// NewService creates a service backed by a repository. The queue is
// optional; without one, post-log processing is simply skipped.
func NewService(repo *Repository, q queue.Queue) *Service {
	return &Service{repo: repo, queue: q}
}

// Log writes one attendance record. The name must be non-empty and the
// image is stored exactly as given.
func (s *Service) Log(ctx context.Context, personName, image, loggedBy string) (Record, error) {
	name := strings.TrimSpace(personName)
	if name == "" {
		return Record{}, errors.New("person name required")
	}
	if image == "" {
		return Record{}, errors.New("image required")
	}

	rec, err := s.repo.Insert(ctx, Record{
		PersonName: name,
		Image:      image,
		LoggedBy:   loggedBy,
	})
	if err != nil {
		return Record{}, err
	}
	metrics.RecordsLogged.Inc()

	if s.queue != nil {
		if err := s.queue.Publish(ctx, queue.RecordLogged(rec.ID)); err != nil {
			log.Printf("publish %s for %s: %v", queue.TypeRecordLogged, rec.ID, err)
		}
	}
	return rec, nil
}

// Get returns one record by id.
func (s *Service) Get(ctx context.Context, id string) (Record, error) {
	return s.repo.Get(ctx, id)
}

// List returns records newest first.
func (s *Service) List(ctx context.Context, personName string, limit, offset int) ([]Record, error) {
	return s.repo.List(ctx, personName, limit, offset)
}

// ListDay returns the records logged on one calendar day (UTC).
func (s *Service) ListDay(ctx context.Context, day string) ([]Record, error) {
	from, err := parseDay(day)
	if err != nil {
		return nil, err
	}
	return s.repo.ListRange(ctx, from, from.AddDate(0, 0, 1))
}

// Archives returns the external mirrors of one record's image.
func (s *Service) Archives(ctx context.Context, recordID string) ([]Archive, error) {
	return s.repo.ListArchives(ctx, recordID)
}

// parseDay interprets a YYYY-MM-DD string as a UTC day, defaulting to
// today when empty.
func parseDay(day string) (time.Time, error) {
	if day == "" {
		now := time.Now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	t, err := time.Parse("2006-01-02", day)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day %q: %w", day, err)
	}
	return t, nil
}
