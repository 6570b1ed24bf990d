package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
)

var _ VoteStore = (*VoteRepository)(nil)

// VoteRepository persists likes. Each voter counts once per event and each
// client IP may cast at most ipLimit votes per event.
type VoteRepository struct {
	db      *DB
	ipLimit int
}

func NewVoteRepository(db *DB, ipLimit int) *VoteRepository {
	return &VoteRepository{db: db, ipLimit: ipLimit}
}

// RecordVote applies a vote. It reports false, without error, when the IP cap
// is reached or the voter already liked the event.
func (r *VoteRepository) RecordVote(eventID, voterID, ipAddress string, action VoteAction) (bool, error) {
	switch action {
	case VoteAdd:
		return r.addVote(eventID, voterID, ipAddress)
	case VoteRemove:
		return r.removeVote(eventID, voterID)
	default:
		return false, fmt.Errorf("%w: %q", ErrUnknownVoteAction, action)
	}
}

func (r *VoteRepository) addVote(eventID, voterID, ipAddress string) (bool, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return false, fmt.Errorf("failed to begin vote transaction: %w", err)
	}
	defer tx.Rollback()

	if r.ipLimit > 0 {
		var count int
		err := tx.QueryRow(`
			SELECT COUNT(*) FROM votes
			WHERE event_id = ? AND ip_address = ?
		`, eventID, ipAddress).Scan(&count)
		if err != nil {
			return false, fmt.Errorf("failed to count votes by ip: %w", err)
		}

		if count >= r.ipLimit {
			slog.Warn("Vote rejected, IP limit reached", "event_id", eventID, "ip", ipAddress, "limit", r.ipLimit)
			return false, nil
		}
	}

	result, err := tx.Exec(`
		INSERT INTO votes (user_id, event_id, ip_address)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id, event_id) DO NOTHING
	`, voterID, eventID, ipAddress)
	if err != nil {
		return false, fmt.Errorf("failed to insert vote: %w", err)
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check inserted vote: %w", err)
	}
	if inserted == 0 {
		return false, nil
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit vote: %w", err)
	}

	return true, nil
}

func (r *VoteRepository) removeVote(eventID, voterID string) (bool, error) {
	_, err := r.db.Exec(`
		DELETE FROM votes WHERE user_id = ? AND event_id = ?
	`, voterID, eventID)
	if err != nil {
		return false, fmt.Errorf("failed to delete vote: %w", err)
	}

	return true, nil
}

func (r *VoteRepository) GetAllLikes() (map[string]int, error) {
	rows, err := r.db.Query(`SELECT id, count FROM likes WHERE count > 0`)
	if err != nil {
		return nil, fmt.Errorf("failed to get likes: %w", err)
	}
	defer rows.Close()

	likes := make(map[string]int)
	for rows.Next() {
		var id string
		var count int
		if err := rows.Scan(&id, &count); err != nil {
			return nil, fmt.Errorf("failed to scan like row: %w", err)
		}
		likes[id] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating likes: %w", err)
	}

	return likes, nil
}

func (r *VoteRepository) GetLikes(eventID string) (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT count FROM likes WHERE id = ?`, eventID).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get likes: %w", err)
	}

	return count, nil
}
