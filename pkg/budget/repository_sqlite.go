package budget

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteBudgetRepo(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) LoadSnapshot(ctx context.Context, userId int) ([]byte, error) {
	query := `SELECT data FROM budget_snapshot WHERE user_id = ? AND storage_key = ?`

	var data string
	err := r.db.QueryRowContext(ctx, query, userId, StorageKey).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		err := fmt.Errorf("could not load budget snapshot: %w", err)
		log.Error(err)
		return nil, err
	}
	return []byte(data), nil
}

func (r *SQLiteRepository) SaveSnapshot(ctx context.Context, userId int, data []byte) error {
	query := `INSERT INTO budget_snapshot (user_id, storage_key, data, updated_at)
				VALUES (?, ?, ?, CURRENT_TIMESTAMP)
				ON CONFLICT (user_id, storage_key) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`

	_, err := r.db.ExecContext(ctx, query, userId, StorageKey, string(data))
	if err != nil {
		err := fmt.Errorf("could not save budget snapshot: %w", err)
		log.Error(err)
		return err
	}
	return nil
}
