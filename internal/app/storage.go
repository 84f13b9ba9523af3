package app

import (
	"context"
	"fmt"

	"github.com/forgevyn/zenzero/internal/config"
	"github.com/forgevyn/zenzero/internal/database"
	"github.com/forgevyn/zenzero/pkg/budget"
	"github.com/forgevyn/zenzero/pkg/user"
	log "github.com/sirupsen/logrus"
)

// OpenStorage opens and migrates the configured database and builds its repositories.
func OpenStorage(ctx context.Context, cfg config.Application) (Storage, error) {
	switch cfg.Storage.Driver {
	case config.PostgresStorage:
		if err := database.Migrate(cfg.Database); err != nil {
			return Storage{}, err
		}
		pool, err := database.Open(ctx, cfg.Database)
		if err != nil {
			return Storage{}, err
		}
		log.Infof("Using postgres storage at %s:%d", cfg.Database.Host, cfg.Database.Port)
		return Storage{
			UserRepo:   user.NewUserRepo(pool),
			BudgetRepo: budget.NewBudgetRepo(pool),
			Close:      pool.Close,
		}, nil
	case config.SQLiteStorage:
		db, err := database.OpenSQLite(cfg.Storage.SQLitePath)
		if err != nil {
			return Storage{}, err
		}
		if err := database.MigrateSQLite(db); err != nil {
			db.Close()
			return Storage{}, err
		}
		log.Infof("Using sqlite storage at %s", cfg.Storage.SQLitePath)
		return Storage{
			UserRepo:   user.NewSQLiteUserRepo(db),
			BudgetRepo: budget.NewSQLiteBudgetRepo(db),
			Close:      func() { db.Close() },
		}, nil
	case config.MemoryStorage:
		log.Warn("Using in-memory storage, nothing survives a restart")
		return Storage{
			UserRepo:   user.NewStubUserRepository(),
			BudgetRepo: budget.NewStubBudgetRepo(),
			Close:      func() {},
		}, nil
	}
	return Storage{}, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}
