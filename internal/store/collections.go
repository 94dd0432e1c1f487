package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// CreateCollection inserts a curated collection.
func (s *Store) CreateCollection(ctx context.Context, collection *Collection) (*Collection, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO collections (name, description, created_at) VALUES (?, ?, ?)",
		collection.Name, collection.Description, now())
	if err != nil {
		return nil, fmt.Errorf("insert collection: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetCollection(ctx, id)
}

// GetCollection fetches a collection by identifier.
func (s *Store) GetCollection(ctx context.Context, id int64) (*Collection, error) {
	var (
		c          Collection
		createdRaw string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, description, created_at FROM collections WHERE id = ?", id,
	).Scan(&c.ID, &c.Name, &c.Description, &createdRaw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("collection %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get collection: %w", err)
	}
	if created, parseErr := parseTimeString(createdRaw); parseErr == nil {
		c.CreatedAt = created
	}
	return &c, nil
}

// AddCollectionItem places a record into a collection at a display position.
func (s *Store) AddCollectionItem(ctx context.Context, collectionID, recordID int64, displayOrder int) error {
	if _, err := s.db.ExecContext(ctx,
		"INSERT INTO collection_items (collection_id, record_id, display_order) VALUES (?, ?, ?)",
		collectionID, recordID, displayOrder); err != nil {
		return fmt.Errorf("insert collection item: %w", err)
	}
	return nil
}

// ListCollectionItems returns a collection's items ordered by display order.
func (s *Store) ListCollectionItems(ctx context.Context, collectionID int64) ([]CollectionItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, collection_id, record_id, display_order
         FROM collection_items WHERE collection_id = ? ORDER BY display_order, id`, collectionID)
	if err != nil {
		return nil, fmt.Errorf("list collection items: %w", err)
	}
	defer rows.Close()

	var items []CollectionItem
	for rows.Next() {
		var item CollectionItem
		if err := rows.Scan(&item.ID, &item.CollectionID, &item.RecordID, &item.DisplayOrder); err != nil {
			return nil, fmt.Errorf("scan collection item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
