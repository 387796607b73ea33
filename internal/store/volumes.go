package store

import (
	"database/sql"
	"fmt"

	"github.com/jbodctl/jbodctl/internal/model"
)

// UpsertVolume records a probed volume's capacity, keyed by its path.
func (s *Store) UpsertVolume(v model.VolumeState) error {
	_, err := s.db.Exec(`
		INSERT INTO volumes (path, total_bytes, free_bytes)
		VALUES (?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			total_bytes = excluded.total_bytes,
			free_bytes = excluded.free_bytes,
			probed_at = CURRENT_TIMESTAMP
	`, v.Path, v.TotalBytes, v.FreeBytes)
	if err != nil {
		return fmt.Errorf("failed to upsert volume: %w", err)
	}
	return nil
}

// GetVolume retrieves one volume's last-probed state.
func (s *Store) GetVolume(path string) (*model.VolumeState, error) {
	v := &model.VolumeState{}
	err := s.db.QueryRow(`
		SELECT path, total_bytes, free_bytes FROM volumes WHERE path = ?
	`, path).Scan(&v.Path, &v.TotalBytes, &v.FreeBytes)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get volume: %w", err)
	}
	return v, nil
}

// GetAllVolumes retrieves every known volume, ordered by path for
// determinism.
func (s *Store) GetAllVolumes() ([]model.VolumeState, error) {
	rows, err := s.db.Query(`SELECT path, total_bytes, free_bytes FROM volumes ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("failed to query volumes: %w", err)
	}
	defer rows.Close()

	var volumes []model.VolumeState
	for rows.Next() {
		var v model.VolumeState
		if err := rows.Scan(&v.Path, &v.TotalBytes, &v.FreeBytes); err != nil {
			return nil, fmt.Errorf("failed to scan volume: %w", err)
		}
		volumes = append(volumes, v)
	}
	return volumes, rows.Err()
}

// LoadWorldView assembles a model.WorldView from the persisted volumes
// and files tables, the store's contribution to the plan command's
// input assembly.
func (s *Store) LoadWorldView() (model.WorldView, error) {
	volumes, err := s.GetAllVolumes()
	if err != nil {
		return model.WorldView{}, err
	}
	files, err := s.GetAllFiles()
	if err != nil {
		return model.WorldView{}, err
	}
	return model.WorldView{Volumes: volumes, Files: files}, nil
}
