package budget

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

var ErrSnapshotNotFound = errors.New("budget snapshot not found")

// Repository stores one opaque snapshot document per user under StorageKey.
type Repository interface {
	LoadSnapshot(ctx context.Context, userId int) ([]byte, error)
	SaveSnapshot(ctx context.Context, userId int, data []byte) error
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewBudgetRepo(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) LoadSnapshot(ctx context.Context, userId int) ([]byte, error) {
	query := `SELECT data FROM budget_snapshot WHERE user_id = $1 AND storage_key = $2`

	var data []byte
	err := r.db.QueryRow(ctx, query, userId, StorageKey).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		err := fmt.Errorf("could not load budget snapshot: %w", err)
		log.Error(err)
		return nil, err
	}
	return data, nil
}

func (r *RepositoryImpl) SaveSnapshot(ctx context.Context, userId int, data []byte) error {
	query := `INSERT INTO budget_snapshot (user_id, storage_key, data, updated_at)
				VALUES ($1, $2, $3::jsonb, now())
				ON CONFLICT (user_id, storage_key) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`

	_, err := r.db.Exec(ctx, query, userId, StorageKey, string(data))
	if err != nil {
		err := fmt.Errorf("could not save budget snapshot: %w", err)
		log.Error(err)
		return err
	}
	return nil
}
