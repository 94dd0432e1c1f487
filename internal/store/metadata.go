package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ReplaceMetadata deletes any prior metadata record (and cascaded chapters)
// for the asset and inserts the new consolidated record with its chapters,
// all in one transaction. Returns the stored record.
func (s *Store) ReplaceMetadata(ctx context.Context, meta *MediaMetadata, chapters []Chapter) (*MediaMetadata, error) {
	var newID int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM media_metadata WHERE asset_id = ?", meta.AssetID); err != nil {
			return fmt.Errorf("delete prior metadata: %w", err)
		}
		res, err := tx.ExecContext(ctx,
			`INSERT INTO media_metadata (
                asset_id, media_type, format_name, duration, duration_formatted,
                bitrate, bitrate_formatted, file_size, width, height, frame_rate,
                video_codec, pixel_format, audio_codec, audio_sample_rate,
                audio_channels, audio_channel_layout, audio_bit_depth,
                audio_stream_count, video_stream_count, subtitle_stream_count,
                tags_json, wav_json, quicktime_json, waveform_path, extracted_at
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			meta.AssetID, meta.MediaType, meta.FormatName, meta.Duration, meta.DurationFormatted,
			meta.Bitrate, meta.BitrateFormatted, meta.FileSize, meta.Width, meta.Height, meta.FrameRate,
			meta.VideoCodec, meta.PixelFormat, meta.AudioCodec, meta.AudioSampleRate,
			meta.AudioChannels, meta.AudioChannelLayout, meta.AudioBitDepth,
			meta.AudioStreamCount, meta.VideoStreamCount, meta.SubtitleStreamCount,
			meta.TagsJSON, meta.WavJSON, meta.QuickTimeJSON, meta.WaveformPath, now(),
		)
		if err != nil {
			return fmt.Errorf("insert metadata: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("last insert id: %w", err)
		}
		newID = id

		for i, chapter := range chapters {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO media_chapters (metadata_id, start_time, end_time, title, chapter_order)
                 VALUES (?, ?, ?, ?, ?)`,
				id, chapter.StartTime, chapter.EndTime, chapter.Title, i,
			); err != nil {
				return fmt.Errorf("insert chapter %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.getMetadataByID(ctx, newID)
}

// GetMetadataByAsset returns the consolidated metadata for an asset.
func (s *Store) GetMetadataByAsset(ctx context.Context, assetID int64) (*MediaMetadata, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+metadataColumns+" FROM media_metadata WHERE asset_id = ?", assetID)
	meta, err := scanMetadata(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("metadata for asset %d: %w", assetID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get metadata: %w", err)
	}
	return meta, nil
}

func (s *Store) getMetadataByID(ctx context.Context, id int64) (*MediaMetadata, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+metadataColumns+" FROM media_metadata WHERE id = ?", id)
	meta, err := scanMetadata(row)
	if err != nil {
		return nil, fmt.Errorf("get metadata: %w", err)
	}
	return meta, nil
}

// ListChapters returns a metadata record's chapters in order.
func (s *Store) ListChapters(ctx context.Context, metadataID int64) ([]Chapter, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, metadata_id, start_time, end_time, title, chapter_order
         FROM media_chapters WHERE metadata_id = ? ORDER BY chapter_order`, metadataID)
	if err != nil {
		return nil, fmt.Errorf("list chapters: %w", err)
	}
	defer rows.Close()

	var chapters []Chapter
	for rows.Next() {
		var ch Chapter
		if err := rows.Scan(&ch.ID, &ch.MetadataID, &ch.StartTime, &ch.EndTime, &ch.Title, &ch.ChapterOrder); err != nil {
			return nil, fmt.Errorf("scan chapter: %w", err)
		}
		chapters = append(chapters, ch)
	}
	return chapters, rows.Err()
}

// DeleteMetadataByAsset removes the metadata record and its chapters,
// returning the waveform path that was recorded so the caller can clean up
// the file. Returns ErrNotFound when no record exists.
func (s *Store) DeleteMetadataByAsset(ctx context.Context, assetID int64) (string, error) {
	var waveformPath string
	err := s.db.QueryRowContext(ctx,
		"SELECT waveform_path FROM media_metadata WHERE asset_id = ?", assetID).Scan(&waveformPath)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("metadata for asset %d: %w", assetID, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("lookup metadata: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM media_metadata WHERE asset_id = ?", assetID); err != nil {
		return "", fmt.Errorf("delete metadata: %w", err)
	}
	return waveformPath, nil
}

const metadataColumns = `id, asset_id, media_type, format_name, duration, duration_formatted,
    bitrate, bitrate_formatted, file_size, width, height, frame_rate,
    video_codec, pixel_format, audio_codec, audio_sample_rate,
    audio_channels, audio_channel_layout, audio_bit_depth,
    audio_stream_count, video_stream_count, subtitle_stream_count,
    tags_json, wav_json, quicktime_json, waveform_path, extracted_at`

func scanMetadata(scanner interface{ Scan(dest ...any) error }) (*MediaMetadata, error) {
	var (
		meta         MediaMetadata
		extractedRaw string
	)
	if err := scanner.Scan(
		&meta.ID, &meta.AssetID, &meta.MediaType, &meta.FormatName, &meta.Duration, &meta.DurationFormatted,
		&meta.Bitrate, &meta.BitrateFormatted, &meta.FileSize, &meta.Width, &meta.Height, &meta.FrameRate,
		&meta.VideoCodec, &meta.PixelFormat, &meta.AudioCodec, &meta.AudioSampleRate,
		&meta.AudioChannels, &meta.AudioChannelLayout, &meta.AudioBitDepth,
		&meta.AudioStreamCount, &meta.VideoStreamCount, &meta.SubtitleStreamCount,
		&meta.TagsJSON, &meta.WavJSON, &meta.QuickTimeJSON, &meta.WaveformPath, &extractedRaw,
	); err != nil {
		return nil, err
	}
	if extracted, err := parseTimeString(extractedRaw); err == nil {
		meta.ExtractedAt = extracted
	}
	return &meta, nil
}
