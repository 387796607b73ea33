package store

import (
	"database/sql"
	"fmt"

	"github.com/jbodctl/jbodctl/internal/model"
)

// UpsertFile inserts or refreshes a discovered file, keyed by its
// globally unique AbsolutePath.
func (s *Store) UpsertFile(f model.FileRecord) error {
	_, err := s.db.Exec(`
		INSERT INTO files (absolute_path, relative_path, size_bytes, source_volume)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(absolute_path) DO UPDATE SET
			relative_path = excluded.relative_path,
			size_bytes = excluded.size_bytes,
			source_volume = excluded.source_volume,
			last_seen_at = CURRENT_TIMESTAMP
	`, f.AbsolutePath, f.RelativePath, f.SizeBytes, f.SourceVolume)
	if err != nil {
		return fmt.Errorf("failed to upsert file: %w", err)
	}
	return nil
}

// UpsertFileBatch upserts multiple files in a single transaction,
// mirroring the scanner's batch-writer goroutine.
func (s *Store) UpsertFileBatch(files []model.FileRecord) error {
	if len(files) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO files (absolute_path, relative_path, size_bytes, source_volume)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(absolute_path) DO UPDATE SET
			relative_path = excluded.relative_path,
			size_bytes = excluded.size_bytes,
			source_volume = excluded.source_volume,
			last_seen_at = CURRENT_TIMESTAMP
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, f := range files {
		if _, err := stmt.Exec(f.AbsolutePath, f.RelativePath, f.SizeBytes, f.SourceVolume); err != nil {
			return fmt.Errorf("failed to upsert file %s: %w", f.AbsolutePath, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetFileByPath retrieves a file by its absolute path.
func (s *Store) GetFileByPath(absolutePath string) (*model.FileRecord, error) {
	f := &model.FileRecord{}
	err := s.db.QueryRow(`
		SELECT absolute_path, relative_path, size_bytes, source_volume
		FROM files WHERE absolute_path = ?
	`, absolutePath).Scan(&f.AbsolutePath, &f.RelativePath, &f.SizeBytes, &f.SourceVolume)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get file: %w", err)
	}
	return f, nil
}

// GetAllFiles retrieves every known file, ordered by absolute_path for
// determinism.
func (s *Store) GetAllFiles() ([]model.FileRecord, error) {
	rows, err := s.db.Query(`
		SELECT absolute_path, relative_path, size_bytes, source_volume
		FROM files ORDER BY absolute_path
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query files: %w", err)
	}
	defer rows.Close()

	var files []model.FileRecord
	for rows.Next() {
		var f model.FileRecord
		if err := rows.Scan(&f.AbsolutePath, &f.RelativePath, &f.SizeBytes, &f.SourceVolume); err != nil {
			return nil, fmt.Errorf("failed to scan file: %w", err)
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

// GetFilesByVolume retrieves every file sourced from volumePath.
func (s *Store) GetFilesByVolume(volumePath string) ([]model.FileRecord, error) {
	rows, err := s.db.Query(`
		SELECT absolute_path, relative_path, size_bytes, source_volume
		FROM files WHERE source_volume = ? ORDER BY absolute_path
	`, volumePath)
	if err != nil {
		return nil, fmt.Errorf("failed to query files: %w", err)
	}
	defer rows.Close()

	var files []model.FileRecord
	for rows.Next() {
		var f model.FileRecord
		if err := rows.Scan(&f.AbsolutePath, &f.RelativePath, &f.SizeBytes, &f.SourceVolume); err != nil {
			return nil, fmt.Errorf("failed to scan file: %w", err)
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

// CountFiles returns the total number of discovered files.
func (s *Store) CountFiles() (int, error) {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM files").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count files: %w", err)
	}
	return count, nil
}

// DeleteFile removes a file row. The inventory scanner does not call
// it; rows for paths that disappeared stay until removed this way.
func (s *Store) DeleteFile(absolutePath string) error {
	_, err := s.db.Exec("DELETE FROM files WHERE absolute_path = ?", absolutePath)
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
