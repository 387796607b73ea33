package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jbodctl/jbodctl/internal/model"
)

// ReplaceSnapshots clears the previous run's audit trail and inserts the
// given snapshots in a single transaction, keyed by their Step.
func (s *Store) ReplaceSnapshots(snapshots []model.Snapshot) error {
	return s.Transaction(func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM snapshots"); err != nil {
			return fmt.Errorf("failed to clear snapshots: %w", err)
		}

		stmt, err := tx.Prepare(`
			INSERT INTO snapshots (step, action, world_json, metadata_json)
			VALUES (?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, snap := range snapshots {
			worldJSON, err := json.Marshal(snap.World)
			if err != nil {
				return fmt.Errorf("failed to marshal world at step %d: %w", snap.Step, err)
			}
			var metaJSON []byte
			if snap.Metadata != nil {
				metaJSON, err = json.Marshal(snap.Metadata)
				if err != nil {
					return fmt.Errorf("failed to marshal metadata at step %d: %w", snap.Step, err)
				}
			}
			if _, err := stmt.Exec(snap.Step, snap.Action, string(worldJSON), nullableString(metaJSON)); err != nil {
				return fmt.Errorf("failed to insert snapshot at step %d: %w", snap.Step, err)
			}
		}
		return nil
	})
}

// GetAllSnapshots retrieves the full audit trail written by
// ReplaceSnapshots, ordered by step.
func (s *Store) GetAllSnapshots() ([]model.Snapshot, error) {
	rows, err := s.db.Query(`
		SELECT step, action, world_json, COALESCE(metadata_json, '')
		FROM snapshots ORDER BY step
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []model.Snapshot
	for rows.Next() {
		var snap model.Snapshot
		var worldJSON, metaJSON string
		if err := rows.Scan(&snap.Step, &snap.Action, &worldJSON, &metaJSON); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		if err := json.Unmarshal([]byte(worldJSON), &snap.World); err != nil {
			return nil, fmt.Errorf("failed to unmarshal world at step %d: %w", snap.Step, err)
		}
		if metaJSON != "" {
			if err := json.Unmarshal([]byte(metaJSON), &snap.Metadata); err != nil {
				return nil, fmt.Errorf("failed to unmarshal metadata at step %d: %w", snap.Step, err)
			}
		}
		snapshots = append(snapshots, snap)
	}
	return snapshots, rows.Err()
}

// CountSnapshots returns the number of steps in the persisted audit trail.
func (s *Store) CountSnapshots() (int, error) {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM snapshots").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count snapshots: %w", err)
	}
	return count, nil
}

func nullableString(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
