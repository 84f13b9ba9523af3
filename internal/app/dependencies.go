package app

import (
	"context"
	"fmt"

	"github.com/forgevyn/zenzero/internal/config"
	"github.com/forgevyn/zenzero/internal/event_bus"
	"github.com/forgevyn/zenzero/internal/utils"
	"github.com/forgevyn/zenzero/pkg/advisor"
	"github.com/forgevyn/zenzero/pkg/budget"
	"github.com/forgevyn/zenzero/pkg/user"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	Clock    utils.Clock
	EventBus *event_bus.EventBus

	Sessions    user.SessionStore
	UserService user.Service
	UserHandler *user.Handler

	Advisor        budget.Advisor
	BudgetRepo     budget.Repository
	SnapshotWriter *budget.SnapshotWriter
	BudgetService  budget.Service
	BudgetHandler  *budget.Handler
}

// Storage bundles the repositories of the selected storage driver.
type Storage struct {
	UserRepo   user.Repo
	BudgetRepo budget.Repository
	Close      func()
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(ctx context.Context, storage Storage, cfg config.Application) (*Dependencies, error) {
	deps := &Dependencies{}

	deps.Clock = utils.SystemClock{}
	deps.EventBus = event_bus.NewEventBus()

	sessions, err := newSessionStore(ctx, cfg.Session, deps.Clock)
	if err != nil {
		return nil, err
	}
	deps.Sessions = sessions
	deps.UserService = user.NewUserService(storage.UserRepo, deps.Sessions)
	deps.UserHandler = user.NewHandler(deps.UserService)

	deps.Advisor, err = newAdvisor(ctx, cfg.Advisor)
	if err != nil {
		return nil, err
	}
	deps.BudgetRepo = storage.BudgetRepo
	deps.SnapshotWriter = budget.NewSnapshotWriter(deps.BudgetRepo)
	deps.BudgetService = budget.NewBudgetService(
		deps.BudgetRepo,
		deps.SnapshotWriter,
		deps.Advisor,
		deps.EventBus,
		deps.Clock,
		cfg.Advisor.Timeout,
	)
	deps.BudgetHandler = budget.NewBudgetHandler(deps.BudgetService)

	subscribeEventLogging(deps.EventBus)
	return deps, nil
}

func newSessionStore(ctx context.Context, cfg config.Session, clock utils.Clock) (user.SessionStore, error) {
	switch cfg.Store {
	case config.RedisSessions:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		log.Infof("Sessions stored in redis at %s", cfg.RedisAddr)
		return user.NewRedisSessionStore(client, cfg.TTL), nil
	case config.MemorySessions, "":
		log.Info("Sessions stored in memory")
		return user.NewMemorySessionStore(cfg.TTL, clock), nil
	}
	return nil, fmt.Errorf("unknown session store %q", cfg.Store)
}

func newAdvisor(ctx context.Context, cfg config.Advisor) (budget.Advisor, error) {
	if !cfg.Enabled {
		log.Warn("Advisor disabled, using built-in suggestions")
		return advisor.NewStubClient(), nil
	}
	if cfg.ApiKey == "" {
		return nil, fmt.Errorf("advisor is enabled but no api key is configured")
	}
	return advisor.NewGeminiClient(ctx, cfg)
}

func subscribeEventLogging(bus *event_bus.EventBus) {
	event_bus.SubscribeTyped(bus, event_bus.BadgeAwardedType, func(e event_bus.EventT[event_bus.BadgeAwarded]) error {
		log.Infof("user %d earned badge %s %s (%d total)", e.Data.UserId, e.Data.Icon, e.Data.Name, e.Data.TotalBadges)
		return nil
	})
	event_bus.SubscribeTyped(bus, event_bus.BudgetStateChangedType, func(e event_bus.EventT[event_bus.BudgetStateChanged]) error {
		if !e.Data.IsZeroBalanced {
			log.Debugf("budget of user %d is not zero-balanced after %s", e.Data.UserId, e.Data.Operation)
		}
		return nil
	})
}
