package store

import (
	"context"
	"database/sql"
	"fmt"
)

// ReplaceDerivatives deletes all prior derivative rows for the asset and
// inserts the new set in one transaction. Passing an empty set clears the
// asset's derivatives.
func (s *Store) ReplaceDerivatives(ctx context.Context, assetID int64, derivatives []Derivative) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM media_derivatives WHERE asset_id = ?", assetID); err != nil {
			return fmt.Errorf("delete prior derivatives: %w", err)
		}
		ts := now()
		for _, d := range derivatives {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO media_derivatives (asset_id, derivative_type, derivative_index, file_path, width, height, duration, created_at)
                 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				assetID, d.Type, d.Index, d.FilePath, d.Width, d.Height, d.Duration, ts,
			); err != nil {
				return fmt.Errorf("insert derivative %s[%d]: %w", d.Type, d.Index, err)
			}
		}
		return nil
	})
}

// ListDerivativesByAsset returns the asset's derivatives ordered by
// (type, index).
func (s *Store) ListDerivativesByAsset(ctx context.Context, assetID int64) ([]Derivative, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, asset_id, derivative_type, derivative_index, file_path, width, height, duration, created_at
         FROM media_derivatives WHERE asset_id = ? ORDER BY derivative_type, derivative_index`, assetID)
	if err != nil {
		return nil, fmt.Errorf("list derivatives: %w", err)
	}
	defer rows.Close()

	var derivatives []Derivative
	for rows.Next() {
		var (
			d          Derivative
			createdRaw string
		)
		if err := rows.Scan(&d.ID, &d.AssetID, &d.Type, &d.Index, &d.FilePath, &d.Width, &d.Height, &d.Duration, &createdRaw); err != nil {
			return nil, fmt.Errorf("scan derivative: %w", err)
		}
		if created, parseErr := parseTimeString(createdRaw); parseErr == nil {
			d.CreatedAt = created
		}
		derivatives = append(derivatives, d)
	}
	return derivatives, rows.Err()
}

// DerivativesByType groups an asset's derivatives by type, each group ordered
// by index.
func (s *Store) DerivativesByType(ctx context.Context, assetID int64) (map[string][]Derivative, error) {
	derivatives, err := s.ListDerivativesByAsset(ctx, assetID)
	if err != nil {
		return nil, err
	}
	grouped := make(map[string][]Derivative, len(derivatives))
	for _, d := range derivatives {
		grouped[d.Type] = append(grouped[d.Type], d)
	}
	return grouped, nil
}

// CountDerivatives returns the number of derivative rows stored for an asset.
func (s *Store) CountDerivatives(ctx context.Context, assetID int64) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM media_derivatives WHERE asset_id = ?", assetID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count derivatives: %w", err)
	}
	return count, nil
}
