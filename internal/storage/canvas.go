package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"sketchbook/internal/domain"
)

// CanvasStore implements domain.CanvasStore on any SQL dialect.
type CanvasStore struct {
	db *DB
}

func NewCanvasStore(db *DB) *CanvasStore {
	return &CanvasStore{db: db}
}

const canvasColumns = `id, notebook_id, orientation, data, created_at, updated_at`

func (s *CanvasStore) ListPages(notebookID string) ([]domain.PageRecord, error) {
	rows, err := s.db.conn.Query(
		s.db.rebind(`SELECT `+canvasColumns+` FROM canvases WHERE notebook_id = ? ORDER BY id ASC`),
		notebookID,
	)
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	defer rows.Close()

	var pages []domain.PageRecord
	for rows.Next() {
		var p domain.PageRecord
		if err := rows.Scan(&p.ID, &p.NotebookID, &p.Orientation, &p.Data, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan page: %w", err)
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

func (s *CanvasStore) GetPage(id int64) (*domain.PageRecord, error) {
	p := &domain.PageRecord{}
	err := s.db.conn.QueryRow(
		s.db.rebind(`SELECT `+canvasColumns+` FROM canvases WHERE id = ?`), id,
	).Scan(&p.ID, &p.NotebookID, &p.Orientation, &p.Data, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get page %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get page %d: %w", id, err)
	}
	return p, nil
}

// CreatePage inserts p and sets its ID and timestamps.
func (s *CanvasStore) CreatePage(p *domain.PageRecord) error {
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	const insert = `INSERT INTO canvases (notebook_id, orientation, data, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`
	args := []any{p.NotebookID, p.Orientation, p.Data, p.CreatedAt, p.UpdatedAt}

	if s.db.dialect == DialectPostgres {
		if err := s.db.conn.QueryRow(s.db.rebind(insert+` RETURNING id`), args...).Scan(&p.ID); err != nil {
			return fmt.Errorf("create page: %w", err)
		}
		return nil
	}

	res, err := s.db.conn.Exec(insert, args...)
	if err != nil {
		return fmt.Errorf("create page: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create page: last insert id: %w", err)
	}
	p.ID = id
	return nil
}

// UpdatePage replaces the raster and orientation of an existing page.
func (s *CanvasStore) UpdatePage(p *domain.PageRecord) error {
	p.UpdatedAt = time.Now().UTC()
	res, err := s.db.conn.Exec(
		s.db.rebind(`UPDATE canvases SET orientation = ?, data = ?, updated_at = ? WHERE id = ?`),
		p.Orientation, p.Data, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return fmt.Errorf("update page %d: %w", p.ID, err)
	}
	return expectRow(res, "update page", p.ID)
}

func (s *CanvasStore) DeletePage(id int64) error {
	res, err := s.db.conn.Exec(s.db.rebind(`DELETE FROM canvases WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete page %d: %w", id, err)
	}
	return expectRow(res, "delete page", id)
}

func expectRow(res sql.Result, op string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s %d: %w", op, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", op, id, ErrNotFound)
	}
	return nil
}

var _ domain.CanvasStore = (*CanvasStore)(nil)
