package app

import (
	"context"
	"fmt"
	"os"

	dockerCli "github.com/docker/docker/client"
	"github.com/rs/zerolog"

	"github.com/auto-dns/docker-hosts-sync/internal/config"
	"github.com/auto-dns/docker-hosts-sync/internal/core"
	"github.com/auto-dns/docker-hosts-sync/internal/event"
	"github.com/auto-dns/docker-hosts-sync/internal/hostsfile"
	"github.com/auto-dns/docker-hosts-sync/internal/state"
)

type App struct {
	cfg          *config.Config
	dockerClient *dockerCli.Client
	engine       *core.SyncEngine
	logger       zerolog.Logger
}

// New creates a new App by wiring up all dependencies.
func New(cfg *config.Config, logger zerolog.Logger) (*App, error) {
	dockerClient, err := dockerCli.NewClientWithOpts(dockerCli.FromEnv, dockerCli.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("creating docker client: %w", err)
	}

	src := event.NewDockerSource(dockerClient, cfg.App.DomainEnvVar, cfg.App.DomainLabel, logger)
	store := state.NewStore()
	writer := hostsfile.NewWriter(cfg.App.HostsFile, cfg.App.Tld, cfg.App.Write, logger)
	engine := core.NewSyncEngine(logger, &cfg.App, src, store, writer)

	return &App{
		cfg:          cfg,
		dockerClient: dockerClient,
		engine:       engine,
		logger:       logger,
	}, nil
}

// Run verifies the environment and starts the sync engine. In once mode it
// performs the initial synchronization and returns without listening for
// events.
func (a *App) Run(ctx context.Context) error {
	version, err := a.dockerClient.ServerVersion(ctx)
	if err != nil {
		return fmt.Errorf("verifying docker connection: %w", err)
	}
	a.logger.Info().Str("version", version.Version).Msg("Connected to Docker")

	if a.cfg.App.Write {
		if _, err := os.Stat(a.cfg.App.HostsFile); err != nil {
			return fmt.Errorf("hosts file %s not accessible: %w", a.cfg.App.HostsFile, err)
		}
		a.logger.Info().Str("path", a.cfg.App.HostsFile).Msg("Write mode enabled")
	} else {
		a.logger.Info().Msg("Dry-run mode - run with write enabled to update the hosts file")
	}

	if a.cfg.App.Once {
		a.logger.Info().Msg("Running single synchronization")
		return a.engine.FullResync(ctx)
	}

	return a.engine.Run(ctx)
}

func (a *App) Close() error {
	if a.dockerClient != nil {
		if err := a.dockerClient.Close(); err != nil {
			return fmt.Errorf("close docker client: %w", err)
		}
	}
	return nil
}
