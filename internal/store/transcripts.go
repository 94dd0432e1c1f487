package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// ReplaceTranscript deletes any prior transcript for the asset and inserts
// the new one in a single transaction.
func (s *Store) ReplaceTranscript(ctx context.Context, transcript *Transcript) (*Transcript, error) {
	segmentsJSON, err := json.Marshal(transcript.Segments)
	if err != nil {
		return nil, fmt.Errorf("marshal segments: %w", err)
	}

	var newID int64
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM transcripts WHERE asset_id = ?", transcript.AssetID); err != nil {
			return fmt.Errorf("delete prior transcript: %w", err)
		}
		res, err := tx.ExecContext(ctx,
			`INSERT INTO transcripts (
                asset_id, record_id, language, model, full_text, duration,
                confidence, segments_json, vtt_path, srt_path, text_path, created_at
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			transcript.AssetID, transcript.RecordID, transcript.Language, transcript.Model,
			transcript.FullText, transcript.Duration, nullableFloat(transcript.Confidence),
			string(segmentsJSON), transcript.VTTPath, transcript.SRTPath, transcript.TextPath, now(),
		)
		if err != nil {
			return fmt.Errorf("insert transcript: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("last insert id: %w", err)
		}
		newID = id
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.getTranscriptByID(ctx, newID)
}

// GetTranscriptByAsset returns the transcript stored for an asset.
func (s *Store) GetTranscriptByAsset(ctx context.Context, assetID int64) (*Transcript, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+transcriptColumns+" FROM transcripts WHERE asset_id = ?", assetID)
	transcript, err := scanTranscript(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("transcript for asset %d: %w", assetID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get transcript: %w", err)
	}
	return transcript, nil
}

func (s *Store) getTranscriptByID(ctx context.Context, id int64) (*Transcript, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+transcriptColumns+" FROM transcripts WHERE id = ?", id)
	transcript, err := scanTranscript(row)
	if err != nil {
		return nil, fmt.Errorf("get transcript: %w", err)
	}
	return transcript, nil
}

// DeleteTranscriptByAsset removes an asset's transcript, returning the paths
// of its generated artifacts so the caller can remove the files.
func (s *Store) DeleteTranscriptByAsset(ctx context.Context, assetID int64) ([]string, error) {
	transcript, err := s.GetTranscriptByAsset(ctx, assetID)
	if err != nil {
		return nil, err
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM transcripts WHERE asset_id = ?", assetID); err != nil {
		return nil, fmt.Errorf("delete transcript: %w", err)
	}
	var paths []string
	for _, p := range []string{transcript.VTTPath, transcript.SRTPath, transcript.TextPath} {
		if p != "" {
			paths = append(paths, p)
		}
	}
	return paths, nil
}

const transcriptColumns = "id, asset_id, record_id, language, model, full_text, duration, confidence, segments_json, vtt_path, srt_path, text_path, created_at"

func scanTranscript(scanner interface{ Scan(dest ...any) error }) (*Transcript, error) {
	var (
		t            Transcript
		confidence   sql.NullFloat64
		segmentsJSON string
		createdRaw   string
	)
	if err := scanner.Scan(&t.ID, &t.AssetID, &t.RecordID, &t.Language, &t.Model,
		&t.FullText, &t.Duration, &confidence, &segmentsJSON,
		&t.VTTPath, &t.SRTPath, &t.TextPath, &createdRaw); err != nil {
		return nil, err
	}
	if confidence.Valid {
		v := confidence.Float64
		t.Confidence = &v
	}
	if segmentsJSON != "" {
		if err := json.Unmarshal([]byte(segmentsJSON), &t.Segments); err != nil {
			return nil, fmt.Errorf("unmarshal segments: %w", err)
		}
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		t.CreatedAt = created
	}
	return &t, nil
}
