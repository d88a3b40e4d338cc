package services

import (
	"context"
	"fmt"
	"time"

	"github.com/gruzdev-dev/codex-users/core/domain"
	"github.com/gruzdev-dev/codex-users/core/ports"
)

// DefaultCacheTTL is how long a user entry stays in the cache after a
// read-through or a write.
const DefaultCacheTTL = 24 * time.Hour

type UserService struct {
	repo     ports.UserRepository
	cache    ports.UserCache
	cacheTTL time.Duration
}

func NewUserService(repo ports.UserRepository, cache ports.UserCache, cacheTTL time.Duration) *UserService {
	return &UserService{
		repo:     repo,
		cache:    cache,
		cacheTTL: cacheTTL,
	}
}

type CreateUserInput struct {
	Username string
	Email    string
	Name     string
	Avatar   string
}

type UpdateUserInput struct {
	Username      *string
	Email         *string
	Name          *string
	Avatar        *string
	EmailVerified *bool
}

func (s *UserService) ListActive(ctx context.Context) ([]*domain.User, error) {
	users, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list users: %v", domain.ErrInternal, err)
	}
	return users, nil
}

// GetByID reads through the cache. A cache hit is returned as-is without
// re-checking the active flag; a user soft-deleted after being cached is
// served until the entry expires.
func (s *UserService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if id == "" {
		return nil, domain.ErrUserIDRequired
	}

	cached, err := s.cache.Get(ctx, id)
	if err == nil {
		return cached, nil
	}
	if err != domain.ErrCacheMiss {
		return nil, fmt.Errorf("%w: failed to read cache: %v", domain.ErrInternal, err)
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if err == domain.ErrUserNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("%w: failed to get user: %v", domain.ErrInternal, err)
	}
	if !user.IsActive {
		return nil, domain.ErrUserNotFound
	}

	if err := s.cache.Set(ctx, user, s.cacheTTL); err != nil {
		return nil, fmt.Errorf("%w: failed to cache user: %v", domain.ErrInternal, err)
	}

	return user, nil
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", domain.ErrInvalidInput)
	}

	user, err := s.repo.GetActiveByEmail(ctx, email)
	if err != nil {
		if err == domain.ErrUserNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("%w: failed to get user by email: %v", domain.ErrInternal, err)
	}
	return user, nil
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", domain.ErrInvalidInput)
	}

	user, err := s.repo.GetActiveByUsername(ctx, username)
	if err != nil {
		if err == domain.ErrUserNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("%w: failed to get user by username: %v", domain.ErrInternal, err)
	}
	return user, nil
}

// Create persists a new user and seeds the cache. Uniqueness of email and
// username is checked by the caller beforehand; the database constraints
// are the backstop when two creates race.
func (s *UserService) Create(ctx context.Context, input CreateUserInput) (*domain.User, error) {
	if input.Username == "" {
		return nil, fmt.Errorf("%w: username is required", domain.ErrInvalidInput)
	}
	if input.Email == "" {
		return nil, fmt.Errorf("%w: email is required", domain.ErrInvalidInput)
	}
	if input.Name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}

	user := domain.NewUser(input.Username, input.Email, input.Name, input.Avatar)

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create user: %v", domain.ErrInternal, err)
	}

	if err := s.cache.Set(ctx, created, s.cacheTTL); err != nil {
		return nil, fmt.Errorf("%w: failed to cache user: %v", domain.ErrInternal, err)
	}

	return created, nil
}

// Update overwrites only the fields present in input and refreshes the
// cache entry. An inactive user is reported as not found.
func (s *UserService) Update(ctx context.Context, id string, input UpdateUserInput) (*domain.User, error) {
	if id == "" {
		return nil, domain.ErrUserIDRequired
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if err == domain.ErrUserNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("%w: failed to get user: %v", domain.ErrInternal, err)
	}
	if !user.IsActive {
		return nil, domain.ErrUserNotFound
	}

	if input.Username != nil {
		user.Username = *input.Username
	}
	if input.Email != nil {
		user.Email = *input.Email
	}
	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.Avatar != nil {
		user.Avatar = *input.Avatar
	}
	if input.EmailVerified != nil {
		user.EmailVerified = *input.EmailVerified
	}
	user.UpdatedAt = time.Now()

	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		if err == domain.ErrUserNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("%w: failed to update user: %v", domain.ErrInternal, err)
	}

	if err := s.cache.Set(ctx, updated, s.cacheTTL); err != nil {
		return nil, fmt.Errorf("%w: failed to cache user: %v", domain.ErrInternal, err)
	}

	return updated, nil
}

// Delete flips the active flag and evicts the cache entry. The row is kept.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return domain.ErrUserIDRequired
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if err == domain.ErrUserNotFound {
			return err
		}
		return fmt.Errorf("%w: failed to get user: %v", domain.ErrInternal, err)
	}
	if !user.IsActive {
		return domain.ErrUserNotFound
	}

	user.MarkAsDeleted()
	if _, err := s.repo.Update(ctx, user); err != nil {
		return fmt.Errorf("%w: failed to delete user: %v", domain.ErrInternal, err)
	}

	if err := s.cache.Delete(ctx, id); err != nil {
		return fmt.Errorf("%w: failed to evict cached user: %v", domain.ErrInternal, err)
	}

	return nil
}

func (s *UserService) CountActive(ctx context.Context) (int64, error) {
	count, err := s.repo.CountActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to count users: %v", domain.ErrInternal, err)
	}
	return count, nil
}

func (s *UserService) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	exists, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return false, fmt.Errorf("%w: failed to check email: %v", domain.ErrInternal, err)
	}
	return exists, nil
}

func (s *UserService) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	exists, err := s.repo.ExistsByUsername(ctx, username)
	if err != nil {
		return false, fmt.Errorf("%w: failed to check username: %v", domain.ErrInternal, err)
	}
	return exists, nil
}

// TouchLastLogin stamps the login timestamp and refreshes the cache entry.
// Missing or inactive users are a silent no-op.
func (s *UserService) TouchLastLogin(ctx context.Context, id string) error {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if err == domain.ErrUserNotFound {
			return nil
		}
		return fmt.Errorf("%w: failed to get user: %v", domain.ErrInternal, err)
	}
	if !user.IsActive {
		return nil
	}

	user.TouchLastLogin()
	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		return fmt.Errorf("%w: failed to update last login: %v", domain.ErrInternal, err)
	}

	if err := s.cache.Set(ctx, updated, s.cacheTTL); err != nil {
		return fmt.Errorf("%w: failed to cache user: %v", domain.ErrInternal, err)
	}

	return nil
}
