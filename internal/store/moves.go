package store

import (
	"database/sql"
	"fmt"

	"github.com/jbodctl/jbodctl/internal/model"
)

// ReplaceMoves clears the previous plan's moves and inserts the given
// set in a single transaction, the persistence analog of materializing
// a fresh Plan.
func (s *Store) ReplaceMoves(moves []model.FileMove) error {
	return s.Transaction(func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM moves"); err != nil {
			return fmt.Errorf("failed to clear moves: %w", err)
		}

		stmt, err := tx.Prepare(`
			INSERT INTO moves (absolute_path, target_volume, status, reason)
			VALUES (?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, m := range moves {
			if _, err := stmt.Exec(m.File.AbsolutePath, m.TargetVolume, string(m.Status), m.Reason); err != nil {
				return fmt.Errorf("failed to insert move for %s: %w", m.File.AbsolutePath, err)
			}
		}
		return nil
	})
}

// GetMovesByStatus returns the moves with the given status, ordered by
// insertion order.
func (s *Store) GetMovesByStatus(status model.MoveStatus) ([]model.FileMove, error) {
	rows, err := s.db.Query(`
		SELECT absolute_path, COALESCE(target_volume, ''), status, COALESCE(reason, '')
		FROM moves WHERE status = ? ORDER BY id
	`, string(status))
	if err != nil {
		return nil, fmt.Errorf("failed to query moves: %w", err)
	}
	defer rows.Close()

	var moves []model.FileMove
	for rows.Next() {
		var m model.FileMove
		var statusStr string
		if err := rows.Scan(&m.File.AbsolutePath, &m.TargetVolume, &statusStr, &m.Reason); err != nil {
			return nil, fmt.Errorf("failed to scan move: %w", err)
		}
		m.Status = model.MoveStatus(statusStr)
		moves = append(moves, m)
	}
	return moves, rows.Err()
}

// UpdateMoveStatus transitions a move to a new status, used by the
// executor to mark a move completed or failed as it applies it, and by
// the apply command to mark moves completed after the plan script runs.
func (s *Store) UpdateMoveStatus(absolutePath string, status model.MoveStatus, reason string) error {
	_, err := s.db.Exec(`
		UPDATE moves SET status = ?, reason = ? WHERE absolute_path = ?
	`, string(status), reason, absolutePath)
	if err != nil {
		return fmt.Errorf("failed to update move status: %w", err)
	}
	return nil
}

// CountMovesByStatus returns the number of moves with the given status.
func (s *Store) CountMovesByStatus(status model.MoveStatus) (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM moves WHERE status = ?", string(status)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count moves: %w", err)
	}
	return count, nil
}
