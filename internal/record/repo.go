package record

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Repository persists attendance records. The SQL sticks to $n
// placeholders in first-occurrence order, which both the pgx and
// sqlite3 drivers bind positionally.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Insert writes a new record. The store assigns created_at so row
// order never depends on kiosk clocks.
func (r *Repository) Insert(ctx context.Context, rec Record) (Record, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO attendance_records (id, person_name, image, logged_by)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, rec.ID, rec.PersonName, rec.Image, rec.LoggedBy)
	if err := row.Scan(&rec.CreatedAt); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// Get returns a single record by id.
func (r *Repository) Get(ctx context.Context, id string) (Record, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, person_name, image, logged_by, created_at
		FROM attendance_records WHERE id = $1
	`, id)
	var rec Record
	if err := row.Scan(&rec.ID, &rec.PersonName, &rec.Image, &rec.LoggedBy, &rec.CreatedAt); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// List returns records newest first with basic filters.
func (r *Repository) List(ctx context.Context, personName string, limit, offset int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	query := `SELECT id, person_name, image, logged_by, created_at FROM attendance_records`
	args := []any{}
	if personName != "" {
		query += " WHERE person_name = $1"
		args = append(args, personName)
	}
	query += " ORDER BY created_at DESC LIMIT $" + itoa(len(args)+1) + " OFFSET $" + itoa(len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.PersonName, &rec.Image, &rec.LoggedBy, &rec.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, rec)
	}
	return res, rows.Err()
}

// ListRange returns records logged in [from, to), oldest first.
func (r *Repository) ListRange(ctx context.Context, from, to time.Time) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, person_name, image, logged_by, created_at
		FROM attendance_records
		WHERE created_at >= $1 AND created_at < $2
		ORDER BY created_at ASC
	`, from.UTC(), to.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.PersonName, &rec.Image, &rec.LoggedBy, &rec.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, rec)
	}
	return res, rows.Err()
}

// InsertArchive appends an external mirror entry for a record's image.
func (r *Repository) InsertArchive(ctx context.Context, recordID, url string) (Archive, error) {
	arc := Archive{
		ID:       uuid.NewString(),
		RecordID: recordID,
		URL:      url,
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO image_archives (id, record_id, url)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`, arc.ID, arc.RecordID, arc.URL)
	if err := row.Scan(&arc.CreatedAt); err != nil {
		return Archive{}, err
	}
	return arc, nil
}

// ListArchives returns the mirror entries for one record.
func (r *Repository) ListArchives(ctx context.Context, recordID string) ([]Archive, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, record_id, url, created_at
		FROM image_archives WHERE record_id = $1
		ORDER BY created_at ASC
	`, recordID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Archive
	for rows.Next() {
		var arc Archive
		if err := rows.Scan(&arc.ID, &arc.RecordID, &arc.URL, &arc.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, arc)
	}
	return res, rows.Err()
}

func itoa(i int) string { return fmt.Sprintf("%d", i) }
