package cli

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"tasksync/internal/api"
	"tasksync/internal/backend/googletasks"
	"tasksync/internal/backend/rest"
	"tasksync/internal/commands"
	"tasksync/internal/config"
	"tasksync/internal/service"
)

// NewBackend builds the backend named by cfg.Backend.
func NewBackend(ctx context.Context, cfg *config.Config, logger *log.Logger) (service.Service, error) {
	switch cfg.Backend {
	case config.BackendREST, "":
		client := api.New(cfg.APIURL,
			api.WithLogger(logger),
			api.WithUserAgent(config.AppName+"/"+commands.Version),
		)
		return rest.New(client), nil
	case config.BackendGoogleTasks:
		return googletasks.New(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown backend: %s", cfg.Backend)
	}
}
