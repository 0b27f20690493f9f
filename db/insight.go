package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
)

// InsightRecord is a cached insight payload, keyed by the
// (user, range key, repo selector) triple. Data holds the raw JSON
// blob; the schema changed once, so rows may carry either the
// paragraph shape or the legacy fixed-field shape.
type InsightRecord struct {
	ID       int             `db:"id"`
	UserID   string          `db:"user_id"`
	RangeKey string          `db:"range_key"`
	Repo     string          `db:"repo"`
	Data     json.RawMessage `db:"data"`
}

// GetInsight retrieves the cached insight for the exact key triple.
// Returns ErrInsightNotFound when no row exists.
func (db *DB) GetInsight(ctx context.Context, userID, rangeKey, repo string) (*InsightRecord, error) {
	if userID == "" || rangeKey == "" || repo == "" {
		return nil, fmt.Errorf("%w: insight key fields cannot be empty", ErrInvalidInput)
	}

	var record InsightRecord
	query := `
		SELECT id, user_id, range_key, repo, data
		FROM insights
		WHERE user_id = $1 AND range_key = $2 AND repo = $3
		LIMIT 1
	`

	if err := db.conn.GetContext(ctx, &record, query, userID, rangeKey, repo); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: no insight for user %s", ErrInsightNotFound, userID)
		}
		return nil, fmt.Errorf("%w: get insight: %v", ErrCacheUnavailable, err)
	}

	return &record, nil
}

// ReplaceInsight deletes any existing record for the key triple and
// inserts the new payload. The two steps are intentionally not wrapped
// in a transaction: a concurrent regeneration for the same key races
// and the last write wins, which is acceptable for a cache that is
// idempotently regenerable. Callers are allowed to log and ignore the
// returned error.
func (db *DB) ReplaceInsight(ctx context.Context, userID, rangeKey, repo string, data []byte) error {
	if userID == "" || rangeKey == "" || repo == "" {
		return fmt.Errorf("%w: insight key fields cannot be empty", ErrInvalidInput)
	}

	safeLogInfo("Replacing insight",
		zap.String("user_id", userID),
		zap.String("range_key", rangeKey),
		zap.String("repo", repo))

	deleteQuery := `DELETE FROM insights WHERE user_id = $1 AND range_key = $2 AND repo = $3`
	if _, err := db.conn.ExecContext(ctx, deleteQuery, userID, rangeKey, repo); err != nil {
		return fmt.Errorf("%w: delete insight: %v", ErrCacheUnavailable, err)
	}

	insertQuery := `INSERT INTO insights (user_id, range_key, repo, data) VALUES ($1, $2, $3, $4)`
	if _, err := db.conn.ExecContext(ctx, insertQuery, userID, rangeKey, repo, data); err != nil {
		return fmt.Errorf("%w: insert insight: %v", ErrCacheUnavailable, err)
	}

	return nil
}
