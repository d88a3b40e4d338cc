package http

import (
	"context"
	"fmt"
	"log"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpAdapter "github.com/gruzdev-dev/codex-users/adapters/http"
	"github.com/gruzdev-dev/codex-users/configs"
	middleware "github.com/gruzdev-dev/codex-users/middleware/http"

	"github.com/gorilla/mux"
)

type Server struct {
	cfg     *configs.Config
	handler *httpAdapter.Handler
	health  *httpAdapter.HealthHandler
}

func NewServer(cfg *configs.Config, handler *httpAdapter.Handler, health *httpAdapter.HealthHandler) *Server {
	return &Server{
		cfg:     cfg,
		handler: handler,
		health:  health,
	}
}

func (s *Server) Start() error {
	router := mux.NewRouter()
	router.Use(middleware.Logging())

	s.health.RegisterRoutes(router)

	api := router.PathPrefix("/api").Subrouter()
	s.handler.RegisterRoutes(api)

	srv := &nethttp.Server{
		Addr:    ":" + s.cfg.HTTP.Port,
		Handler: router,
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Printf("Starting server on port %s", s.cfg.HTTP.Port)
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Printf("shutting down server... signal: %v", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
	}

	log.Println("server exited")
	return nil
}
