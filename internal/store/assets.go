package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const assetColumns = "id, record_id, name, file_path, mime_type, created_at, updated_at"

// CreateAsset inserts a new asset row.
func (s *Store) CreateAsset(ctx context.Context, asset *Asset) (*Asset, error) {
	ts := now()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO assets (record_id, name, file_path, mime_type, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		asset.RecordID, asset.Name, asset.FilePath, asset.MimeType, ts, ts,
	)
	if err != nil {
		return nil, fmt.Errorf("insert asset: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetAsset(ctx, id)
}

// GetAsset fetches an asset by identifier.
func (s *Store) GetAsset(ctx context.Context, id int64) (*Asset, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+assetColumns+" FROM assets WHERE id = ?", id)
	asset, err := scanAsset(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("asset %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get asset: %w", err)
	}
	return asset, nil
}

// ListAssetsByRecord returns a record's assets ordered by identifier.
func (s *Store) ListAssetsByRecord(ctx context.Context, recordID int64) ([]*Asset, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+assetColumns+" FROM assets WHERE record_id = ? ORDER BY id", recordID)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	defer rows.Close()

	var assets []*Asset
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		assets = append(assets, asset)
	}
	return assets, rows.Err()
}

// UpdateAssetPath rewrites the stored file path after a move or rename.
func (s *Store) UpdateAssetPath(ctx context.Context, id int64, filePath string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE assets SET file_path = ?, updated_at = ? WHERE id = ?", filePath, now(), id)
	if err != nil {
		return fmt.Errorf("update asset path: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("asset %d: %w", id, ErrNotFound)
	}
	return nil
}

func scanAsset(scanner interface{ Scan(dest ...any) error }) (*Asset, error) {
	var (
		asset      Asset
		name       sql.NullString
		mimeType   sql.NullString
		createdRaw string
		updatedRaw string
	)
	if err := scanner.Scan(&asset.ID, &asset.RecordID, &name, &asset.FilePath, &mimeType, &createdRaw, &updatedRaw); err != nil {
		return nil, err
	}
	asset.Name = name.String
	asset.MimeType = mimeType.String
	if created, err := parseTimeString(createdRaw); err == nil {
		asset.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		asset.UpdatedAt = updated
	}
	return &asset, nil
}

// CreateRecord inserts a new archival record.
func (s *Store) CreateRecord(ctx context.Context, record *Record) (*Record, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO records (identifier, title, repository, level_of_description, created_at)
         VALUES (?, ?, ?, ?, ?)`,
		record.Identifier, record.Title, record.Repository, record.LevelOfDescription, now(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert record: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetRecord(ctx, id)
}

// GetRecord fetches an archival record by identifier.
func (s *Store) GetRecord(ctx context.Context, id int64) (*Record, error) {
	var (
		record     Record
		createdRaw string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT id, identifier, title, repository, level_of_description, created_at FROM records WHERE id = ?", id,
	).Scan(&record.ID, &record.Identifier, &record.Title, &record.Repository, &record.LevelOfDescription, &createdRaw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("record %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get record: %w", err)
	}
	if created, parseErr := parseTimeString(createdRaw); parseErr == nil {
		record.CreatedAt = created
	}
	return &record, nil
}
