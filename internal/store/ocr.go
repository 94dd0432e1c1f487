package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// ReplaceOCRDocument deletes any prior OCR document (and cascaded blocks) for
// the asset and inserts the document with its blocks in one transaction.
// Block order within each page follows slice order.
func (s *Store) ReplaceOCRDocument(ctx context.Context, doc *OCRDocument, blocks []OCRBlock) (*OCRDocument, error) {
	var newID int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM ocr_documents WHERE asset_id = ?", doc.AssetID); err != nil {
			return fmt.Errorf("delete prior ocr document: %w", err)
		}
		res, err := tx.ExecContext(ctx,
			`INSERT INTO ocr_documents (asset_id, record_id, language, source_format, full_text, created_at)
             VALUES (?, ?, ?, ?, ?, ?)`,
			doc.AssetID, doc.RecordID, doc.Language, doc.SourceFormat, doc.FullText, now(),
		)
		if err != nil {
			return fmt.Errorf("insert ocr document: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("last insert id: %w", err)
		}
		newID = id

		for _, block := range blocks {
			if err := insertOCRBlock(ctx, tx, id, block); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.getOCRDocumentByID(ctx, newID)
}

// AddOCRBlock appends a single block to an existing document.
func (s *Store) AddOCRBlock(ctx context.Context, documentID int64, block OCRBlock) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return insertOCRBlock(ctx, tx, documentID, block)
	})
}

func insertOCRBlock(ctx context.Context, tx *sql.Tx, documentID int64, block OCRBlock) error {
	blockType := block.BlockType
	if blockType == "" {
		blockType = "word"
	}
	page := block.PageNumber
	if page <= 0 {
		page = 1
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO ocr_blocks (document_id, page_number, block_type, text, x, y, width, height, confidence, block_order)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		documentID, page, blockType, block.Text, block.X, block.Y, block.Width, block.Height, block.Confidence, block.BlockOrder,
	); err != nil {
		return fmt.Errorf("insert ocr block: %w", err)
	}
	return nil
}

// GetOCRDocumentByAsset returns the OCR document for an asset.
func (s *Store) GetOCRDocumentByAsset(ctx context.Context, assetID int64) (*OCRDocument, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, asset_id, record_id, language, source_format, full_text, created_at
         FROM ocr_documents WHERE asset_id = ?`, assetID)
	doc, err := scanOCRDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("ocr document for asset %d: %w", assetID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get ocr document: %w", err)
	}
	return doc, nil
}

func (s *Store) getOCRDocumentByID(ctx context.Context, id int64) (*OCRDocument, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, asset_id, record_id, language, source_format, full_text, created_at
         FROM ocr_documents WHERE id = ?`, id)
	doc, err := scanOCRDocument(row)
	if err != nil {
		return nil, fmt.Errorf("get ocr document: %w", err)
	}
	return doc, nil
}

// ListOCRBlocks returns all blocks of a document ordered by
// (page_number, block_order).
func (s *Store) ListOCRBlocks(ctx context.Context, documentID int64) ([]OCRBlock, error) {
	return s.queryOCRBlocks(ctx,
		`SELECT `+ocrBlockColumns+` FROM ocr_blocks
         WHERE document_id = ? ORDER BY page_number, block_order`, documentID)
}

// SearchOCRBlocks returns the asset's blocks whose text contains the query,
// case-insensitively, ordered by (page_number, block_order).
func (s *Store) SearchOCRBlocks(ctx context.Context, assetID int64, query string) ([]OCRBlock, error) {
	doc, err := s.GetOCRDocumentByAsset(ctx, assetID)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	pattern := "%" + strings.ToLower(query) + "%"
	return s.queryOCRBlocks(ctx,
		`SELECT `+ocrBlockColumns+` FROM ocr_blocks
         WHERE document_id = ? AND LOWER(text) LIKE ?
         ORDER BY page_number, block_order`, doc.ID, pattern)
}

func (s *Store) queryOCRBlocks(ctx context.Context, query string, args ...any) ([]OCRBlock, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query ocr blocks: %w", err)
	}
	defer rows.Close()

	var blocks []OCRBlock
	for rows.Next() {
		var b OCRBlock
		if err := rows.Scan(&b.ID, &b.DocumentID, &b.PageNumber, &b.BlockType, &b.Text,
			&b.X, &b.Y, &b.Width, &b.Height, &b.Confidence, &b.BlockOrder); err != nil {
			return nil, fmt.Errorf("scan ocr block: %w", err)
		}
		blocks = append(blocks, b)
	}
	return blocks, rows.Err()
}

const ocrBlockColumns = "id, document_id, page_number, block_type, text, x, y, width, height, confidence, block_order"

func scanOCRDocument(scanner interface{ Scan(dest ...any) error }) (*OCRDocument, error) {
	var (
		doc        OCRDocument
		createdRaw string
	)
	if err := scanner.Scan(&doc.ID, &doc.AssetID, &doc.RecordID, &doc.Language,
		&doc.SourceFormat, &doc.FullText, &createdRaw); err != nil {
		return nil, err
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		doc.CreatedAt = created
	}
	return &doc, nil
}
