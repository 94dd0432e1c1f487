package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// CreateSnippet inserts a time-range selection. Duration is derived from
// start and end.
func (s *Store) CreateSnippet(ctx context.Context, snippet *Snippet) (*Snippet, error) {
	if snippet.EndTime <= snippet.StartTime {
		return nil, fmt.Errorf("snippet end %.3f must be after start %.3f", snippet.EndTime, snippet.StartTime)
	}
	ts := now()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO snippets (asset_id, record_id, title, description, start_time, end_time, duration, export_path, thumbnail_path, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		snippet.AssetID, snippet.RecordID, snippet.Title, snippet.Description,
		snippet.StartTime, snippet.EndTime, snippet.EndTime-snippet.StartTime,
		snippet.ExportPath, snippet.ThumbnailPath, ts, ts,
	)
	if err != nil {
		return nil, fmt.Errorf("insert snippet: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetSnippet(ctx, id)
}

// UpdateSnippet rewrites the snippet's editable fields, recomputing duration.
func (s *Store) UpdateSnippet(ctx context.Context, snippet *Snippet) (*Snippet, error) {
	if snippet.EndTime <= snippet.StartTime {
		return nil, fmt.Errorf("snippet end %.3f must be after start %.3f", snippet.EndTime, snippet.StartTime)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE snippets SET title = ?, description = ?, start_time = ?, end_time = ?, duration = ?, updated_at = ?
         WHERE id = ?`,
		snippet.Title, snippet.Description, snippet.StartTime, snippet.EndTime,
		snippet.EndTime-snippet.StartTime, now(), snippet.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update snippet: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return nil, fmt.Errorf("snippet %d: %w", snippet.ID, ErrNotFound)
	}
	return s.GetSnippet(ctx, snippet.ID)
}

// GetSnippet fetches a snippet by identifier.
func (s *Store) GetSnippet(ctx context.Context, id int64) (*Snippet, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+snippetColumns+" FROM snippets WHERE id = ?", id)
	snippet, err := scanSnippet(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("snippet %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get snippet: %w", err)
	}
	return snippet, nil
}

// ListSnippetsByRecord returns a record's snippets ordered by start time.
func (s *Store) ListSnippetsByRecord(ctx context.Context, recordID int64) ([]*Snippet, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+snippetColumns+" FROM snippets WHERE record_id = ? ORDER BY start_time, id", recordID)
	if err != nil {
		return nil, fmt.Errorf("list snippets: %w", err)
	}
	defer rows.Close()

	var snippets []*Snippet
	for rows.Next() {
		snippet, err := scanSnippet(rows)
		if err != nil {
			return nil, fmt.Errorf("scan snippet: %w", err)
		}
		snippets = append(snippets, snippet)
	}
	return snippets, rows.Err()
}

// SetSnippetExportPath records (or overwrites) the snippet's export artifact.
func (s *Store) SetSnippetExportPath(ctx context.Context, id int64, path string) error {
	return s.setSnippetPath(ctx, id, "export_path", path)
}

// SetSnippetThumbnailPath records the snippet's thumbnail artifact.
func (s *Store) SetSnippetThumbnailPath(ctx context.Context, id int64, path string) error {
	return s.setSnippetPath(ctx, id, "thumbnail_path", path)
}

func (s *Store) setSnippetPath(ctx context.Context, id int64, column, path string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE snippets SET "+column+" = ?, updated_at = ? WHERE id = ?", path, now(), id)
	if err != nil {
		return fmt.Errorf("update snippet %s: %w", column, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("snippet %d: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteSnippet removes the snippet row, returning the export and thumbnail
// paths so the caller can clean up the files.
func (s *Store) DeleteSnippet(ctx context.Context, id int64) (exportPath, thumbnailPath string, err error) {
	snippet, err := s.GetSnippet(ctx, id)
	if err != nil {
		return "", "", err
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM snippets WHERE id = ?", id); err != nil {
		return "", "", fmt.Errorf("delete snippet: %w", err)
	}
	return snippet.ExportPath, snippet.ThumbnailPath, nil
}

const snippetColumns = "id, asset_id, record_id, title, description, start_time, end_time, duration, export_path, thumbnail_path, created_at, updated_at"

func scanSnippet(scanner interface{ Scan(dest ...any) error }) (*Snippet, error) {
	var (
		sn         Snippet
		createdRaw string
		updatedRaw string
	)
	if err := scanner.Scan(&sn.ID, &sn.AssetID, &sn.RecordID, &sn.Title, &sn.Description,
		&sn.StartTime, &sn.EndTime, &sn.Duration, &sn.ExportPath, &sn.ThumbnailPath,
		&createdRaw, &updatedRaw); err != nil {
		return nil, err
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		sn.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		sn.UpdatedAt = updated
	}
	return &sn, nil
}
