package db

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/wuwenbin0122/applytrackr/internal/models"
	"github.com/wuwenbin0122/applytrackr/internal/utils"
)

// Users is implemented by every user backend in this package.
type Users interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}

// Applications is implemented by every application backend in this package.
// Every method is scoped to ownerID.
type Applications interface {
	Create(ctx context.Context, ownerID string, app *models.Application) error
	Get(ctx context.Context, ownerID, id string) (*models.Application, error)
	List(ctx context.Context, ownerID string, opts models.ListOptions) ([]models.Application, error)
	Update(ctx context.Context, ownerID, id string, patch models.ApplicationPatch) (*models.Application, error)
	Delete(ctx context.Context, ownerID, id string) (bool, error)
}

type Stores struct {
	Users        Users
	Applications Applications
	close        func()
}

func (s *Stores) Close() {
	if s.close != nil {
		s.close()
	}
}

// Open connects the backend named by cfg.StoreDriver and prepares its schema.
func Open(ctx context.Context, cfg *utils.Config, logger *zap.Logger) (*Stores, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.StoreDriver {
	case utils.StoreMongo:
		store, err := NewMongo(ctx, cfg.Mongo)
		if err != nil {
			return nil, fmt.Errorf("connect: %w", err)
		}
		if err := store.EnsureCollections(ctx); err != nil {
			_ = store.Close(context.Background())
			return nil, fmt.Errorf("ensure collections: %w", err)
		}
		return &Stores{
			Users:        NewMongoUsers(store),
			Applications: NewMongoApplications(store),
			close: func() {
				if err := store.Close(context.Background()); err != nil {
					logger.Warn("mongo close error", zap.Error(err))
				}
			},
		}, nil

	case utils.StorePostgres:
		store, err := NewPostgres(ctx, cfg.Postgres)
		if err != nil {
			return nil, fmt.Errorf("connect: %w", err)
		}
		if err := store.Ping(ctx); err != nil {
			store.Close()
			return nil, fmt.Errorf("ping: %w", err)
		}
		if err := store.EnsureSchema(ctx); err != nil {
			store.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		return &Stores{
			Users:        NewPostgresUsers(store),
			Applications: NewPostgresApplications(store),
			close:        store.Close,
		}, nil

	case utils.StoreMemory:
		logger.Warn("using in-memory store; data is lost on restart")
		return &Stores{
			Users:        NewMemoryUsers(),
			Applications: NewMemoryApplications(),
		}, nil
	}

	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}
