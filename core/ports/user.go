package ports

import (
	"context"
	"time"

	"github.com/gruzdev-dev/codex-users/core/domain"
)

//go:generate mockgen -source=user.go -destination=user_mocks.go -package=ports UserRepository,UserCache

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetActiveByEmail(ctx context.Context, email string) (*domain.User, error)
	GetActiveByUsername(ctx context.Context, username string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) (*domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	CountActive(ctx context.Context) (int64, error)
	ListActive(ctx context.Context) ([]*domain.User, error)
}

type UserCache interface {
	Get(ctx context.Context, id string) (*domain.User, error)
	Set(ctx context.Context, user *domain.User, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}
