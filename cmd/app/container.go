package main

import (
	redisAdapter "github.com/gruzdev-dev/codex-users/adapters/cache/redis"
	httpAdapter "github.com/gruzdev-dev/codex-users/adapters/http"
	postgresAdapter "github.com/gruzdev-dev/codex-users/adapters/storage/postgres"
	"github.com/gruzdev-dev/codex-users/configs"
	"github.com/gruzdev-dev/codex-users/core/ports"
	"github.com/gruzdev-dev/codex-users/core/services"
	httpServer "github.com/gruzdev-dev/codex-users/servers/http"

	"go.uber.org/dig"
)

func newUserService(repo ports.UserRepository, cache ports.UserCache) *services.UserService {
	return services.NewUserService(repo, cache, services.DefaultCacheTTL)
}

func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	if err := container.Provide(configs.NewConfig); err != nil {
		return nil, err
	}
	if err := container.Provide(postgresAdapter.NewPool); err != nil {
		return nil, err
	}
	if err := container.Provide(redisAdapter.NewClient); err != nil {
		return nil, err
	}
	if err := container.Provide(postgresAdapter.NewUserRepo); err != nil {
		return nil, err
	}
	if err := container.Provide(redisAdapter.NewUserCache); err != nil {
		return nil, err
	}
	if err := container.Provide(newUserService); err != nil {
		return nil, err
	}
	if err := container.Provide(httpAdapter.NewHandler); err != nil {
		return nil, err
	}
	if err := container.Provide(httpAdapter.NewHealthHandler); err != nil {
		return nil, err
	}
	if err := container.Provide(httpServer.NewServer); err != nil {
		return nil, err
	}

	return container, nil
}
