package main

import (
	"log"

	"github.com/joho/godotenv"

	httpServer "github.com/gruzdev-dev/codex-users/servers/http"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	container, err := BuildContainer()
	if err != nil {
		log.Fatalf("Fatal error building container: %v", err)
	}

	if err := container.Invoke(func(srv *httpServer.Server) error {
		return srv.Start()
	}); err != nil {
		log.Fatalf("Fatal error running application: %v", err)
	}
}
