package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// CreateAnnotation inserts an annotation and its bodies in one transaction.
func (s *Store) CreateAnnotation(ctx context.Context, annotation *Annotation) (*Annotation, error) {
	var newID int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		ts := now()
		motivation := annotation.Motivation
		if motivation == "" {
			motivation = MotivationCommenting
		}
		res, err := tx.ExecContext(ctx,
			`INSERT INTO annotations (record_id, canvas_id, target_selector, selector_type, motivation, creator, created_at, updated_at)
             VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			annotation.RecordID, annotation.CanvasID, annotation.TargetSelector,
			annotation.SelectorType, motivation, annotation.Creator, ts, ts,
		)
		if err != nil {
			return fmt.Errorf("insert annotation: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("last insert id: %w", err)
		}
		newID = id
		for _, body := range annotation.Bodies {
			if err := insertAnnotationBody(ctx, tx, id, body); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetAnnotation(ctx, newID)
}

// UpdateAnnotation rewrites an annotation's mutable fields and replaces its
// bodies.
func (s *Store) UpdateAnnotation(ctx context.Context, annotation *Annotation) (*Annotation, error) {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE annotations SET canvas_id = ?, target_selector = ?, selector_type = ?, motivation = ?, creator = ?, updated_at = ?
             WHERE id = ?`,
			annotation.CanvasID, annotation.TargetSelector, annotation.SelectorType,
			annotation.Motivation, annotation.Creator, now(), annotation.ID,
		)
		if err != nil {
			return fmt.Errorf("update annotation: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("annotation %d: %w", annotation.ID, ErrNotFound)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM annotation_bodies WHERE annotation_id = ?", annotation.ID); err != nil {
			return fmt.Errorf("delete prior bodies: %w", err)
		}
		for _, body := range annotation.Bodies {
			if err := insertAnnotationBody(ctx, tx, annotation.ID, body); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetAnnotation(ctx, annotation.ID)
}

func insertAnnotationBody(ctx context.Context, tx *sql.Tx, annotationID int64, body AnnotationBody) error {
	format := body.Format
	if format == "" {
		format = "text/plain"
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO annotation_bodies (annotation_id, value, format, language, purpose)
         VALUES (?, ?, ?, ?, ?)`,
		annotationID, body.Value, format, body.Language, body.Purpose,
	); err != nil {
		return fmt.Errorf("insert annotation body: %w", err)
	}
	return nil
}

// GetAnnotation fetches an annotation with its bodies.
func (s *Store) GetAnnotation(ctx context.Context, id int64) (*Annotation, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+annotationColumns+" FROM annotations WHERE id = ?", id)
	annotation, err := scanAnnotation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("annotation %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get annotation: %w", err)
	}
	if err := s.attachBodies(ctx, []*Annotation{annotation}); err != nil {
		return nil, err
	}
	return annotation, nil
}

// DeleteAnnotation removes an annotation and its bodies.
func (s *Store) DeleteAnnotation(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM annotations WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete annotation: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("annotation %d: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteAnnotationsByCanvasMotivation removes derived annotations (OCR and
// transcript pages are regenerated, not edited) for one canvas and
// motivation.
func (s *Store) DeleteAnnotationsByCanvasMotivation(ctx context.Context, canvasID, motivation string) error {
	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM annotations WHERE canvas_id = ? AND motivation = ?", canvasID, motivation); err != nil {
		return fmt.Errorf("delete annotations: %w", err)
	}
	return nil
}

// ListAnnotationsByRecord returns a record's annotations, optionally filtered
// by motivation, ordered by creation.
func (s *Store) ListAnnotationsByRecord(ctx context.Context, recordID int64, motivation string) ([]*Annotation, error) {
	query := "SELECT " + annotationColumns + " FROM annotations WHERE record_id = ?"
	args := []any{recordID}
	if motivation != "" {
		query += " AND motivation = ?"
		args = append(args, motivation)
	}
	query += " ORDER BY id"
	return s.queryAnnotations(ctx, query, args...)
}

// ListAnnotationsByCanvas returns annotations targeting one canvas.
func (s *Store) ListAnnotationsByCanvas(ctx context.Context, canvasID string, motivation string) ([]*Annotation, error) {
	query := "SELECT " + annotationColumns + " FROM annotations WHERE canvas_id = ?"
	args := []any{canvasID}
	if motivation != "" {
		query += " AND motivation = ?"
		args = append(args, motivation)
	}
	query += " ORDER BY id"
	return s.queryAnnotations(ctx, query, args...)
}

// SearchAnnotations returns a record's annotations whose body text contains
// the query, case-insensitively.
func (s *Store) SearchAnnotations(ctx context.Context, recordID int64, query string) ([]*Annotation, error) {
	pattern := "%" + strings.ToLower(query) + "%"
	return s.queryAnnotations(ctx,
		`SELECT DISTINCT `+annotationColumnsQualified+` FROM annotations a
         JOIN annotation_bodies b ON b.annotation_id = a.id
         WHERE a.record_id = ? AND LOWER(b.value) LIKE ?
         ORDER BY a.id`, recordID, pattern)
}

// ListTags returns the record's deduplicated tag values in alphabetical
// order.
func (s *Store) ListTags(ctx context.Context, recordID int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT b.value FROM annotations a
         JOIN annotation_bodies b ON b.annotation_id = a.id
         WHERE a.record_id = ? AND a.motivation = ? AND b.value != ''
         ORDER BY b.value`, recordID, MotivationTagging)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

// AnnotationStats counts a record's annotations per motivation.
func (s *Store) AnnotationStats(ctx context.Context, recordID int64) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT motivation, COUNT(1) FROM annotations WHERE record_id = ? GROUP BY motivation`, recordID)
	if err != nil {
		return nil, fmt.Errorf("annotation stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]int)
	for rows.Next() {
		var (
			motivation string
			count      int
		)
		if err := rows.Scan(&motivation, &count); err != nil {
			return nil, fmt.Errorf("scan stat: %w", err)
		}
		stats[motivation] = count
	}
	return stats, rows.Err()
}

func (s *Store) queryAnnotations(ctx context.Context, query string, args ...any) ([]*Annotation, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query annotations: %w", err)
	}
	defer rows.Close()

	var annotations []*Annotation
	for rows.Next() {
		annotation, err := scanAnnotation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan annotation: %w", err)
		}
		annotations = append(annotations, annotation)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := s.attachBodies(ctx, annotations); err != nil {
		return nil, err
	}
	return annotations, nil
}

func (s *Store) attachBodies(ctx context.Context, annotations []*Annotation) error {
	for _, annotation := range annotations {
		rows, err := s.db.QueryContext(ctx,
			`SELECT id, annotation_id, value, format, language, purpose
             FROM annotation_bodies WHERE annotation_id = ? ORDER BY id`, annotation.ID)
		if err != nil {
			return fmt.Errorf("query bodies: %w", err)
		}
		var bodies []AnnotationBody
		for rows.Next() {
			var body AnnotationBody
			if err := rows.Scan(&body.ID, &body.AnnotationID, &body.Value, &body.Format, &body.Language, &body.Purpose); err != nil {
				rows.Close()
				return fmt.Errorf("scan body: %w", err)
			}
			bodies = append(bodies, body)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return err
		}
		rows.Close()
		annotation.Bodies = bodies
	}
	return nil
}

const annotationColumns = "id, record_id, canvas_id, target_selector, selector_type, motivation, creator, created_at, updated_at"

const annotationColumnsQualified = "a.id, a.record_id, a.canvas_id, a.target_selector, a.selector_type, a.motivation, a.creator, a.created_at, a.updated_at"

func scanAnnotation(scanner interface{ Scan(dest ...any) error }) (*Annotation, error) {
	var (
		a          Annotation
		createdRaw string
		updatedRaw string
	)
	if err := scanner.Scan(&a.ID, &a.RecordID, &a.CanvasID, &a.TargetSelector,
		&a.SelectorType, &a.Motivation, &a.Creator, &createdRaw, &updatedRaw); err != nil {
		return nil, err
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		a.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		a.UpdatedAt = updated
	}
	return &a, nil
}
