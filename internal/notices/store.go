package notices

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB abstracts the pgx pool interface for testing.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store persists notices.
type Store struct {
	db DB
}

// NewStore creates a notice store.
func NewStore(db DB) *Store {
	return &Store{db: db}
}

const noticeColumns = `id, to_char(date, 'YYYY-MM-DD'), text, completed, created_at`

// Create inserts a notice; new notices start open.
func (s *Store) Create(ctx context.Context, req *UpsertRequest) (*Notice, error) {
	n := &Notice{
		ID:        uuid.New(),
		Date:      req.Date,
		Text:      req.Text,
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO notices (id, date, text, completed, created_at)
		VALUES ($1, $2, $3, false, $4)`,
		n.ID, n.Date, n.Text, n.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("notices: insert: %w", err)
	}
	return n, nil
}

// Update rewrites a notice's date and text.
func (s *Store) Update(ctx context.Context, id uuid.UUID, req *UpsertRequest) (*Notice, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE notices SET date = $1, text = $2 WHERE id = $3`,
		req.Date, req.Text, id,
	)
	if err != nil {
		return nil, fmt.Errorf("notices: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNoticeNotFound
	}
	return s.GetByID(ctx, id)
}

// Toggle flips the completed flag and returns the new state.
func (s *Store) Toggle(ctx context.Context, id uuid.UUID) (*Notice, error) {
	row := s.db.QueryRow(ctx, `
		UPDATE notices SET completed = NOT completed
		WHERE id = $1
		RETURNING `+noticeColumns, id)
	n, err := scanNotice(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoticeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("notices: toggle: %w", err)
	}
	return n, nil
}

// Delete removes a notice.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM notices WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("notices: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNoticeNotFound
	}
	return nil
}

// GetByID fetches a single notice.
func (s *Store) GetByID(ctx context.Context, id uuid.UUID) (*Notice, error) {
	row := s.db.QueryRow(ctx, `SELECT `+noticeColumns+` FROM notices WHERE id = $1`, id)
	n, err := scanNotice(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoticeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("notices: get: %w", err)
	}
	return n, nil
}

// List returns all notices, most recent date first, open before completed.
func (s *Store) List(ctx context.Context) ([]Notice, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+noticeColumns+` FROM notices
		ORDER BY completed, date DESC`)
	if err != nil {
		return nil, fmt.Errorf("notices: list: %w", err)
	}
	defer rows.Close()

	var notices []Notice
	for rows.Next() {
		var n Notice
		if err := rows.Scan(&n.ID, &n.Date, &n.Text, &n.Completed, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("notices: scan: %w", err)
		}
		notices = append(notices, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("notices: iterate: %w", err)
	}
	return notices, nil
}

func scanNotice(row pgx.Row) (*Notice, error) {
	var n Notice
	if err := row.Scan(&n.ID, &n.Date, &n.Text, &n.Completed, &n.CreatedAt); err != nil {
		return nil, err
	}
	return &n, nil
}
