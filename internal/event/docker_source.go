package event

import (
	"context"
	"fmt"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/events"
	"github.com/docker/docker/api/types/filters"
	"github.com/rs/zerolog"

	"github.com/auto-dns/docker-hosts-sync/internal/domain"
)

// DockerSource adapts the Docker API to the synchronizer's runtime surface:
// listing running containers, inspecting them into domain records, and
// streaming lifecycle events.
type DockerSource struct {
	logger       zerolog.Logger
	cli          dockerClient
	domainEnvVar string
	domainLabel  string
}

func NewDockerSource(cli dockerClient, domainEnvVar, domainLabel string, logger zerolog.Logger) *DockerSource {
	return &DockerSource{
		logger:       logger,
		cli:          cli,
		domainEnvVar: domainEnvVar,
		domainLabel:  domainLabel,
	}
}

// Subscribe starts consuming the runtime's container event stream and returns
// a channel of domain events. The channel is closed when the stream closes or
// the context is cancelled. Individual delivery errors are logged and the
// stream continues.
func (ds *DockerSource) Subscribe(ctx context.Context) (<-chan domain.ContainerEvent, error) {
	const bufferSize = 100
	out := make(chan domain.ContainerEvent, bufferSize)

	filterArgs := filters.NewArgs()
	filterArgs.Add("type", "container")

	eventCh, errCh := ds.cli.Events(ctx, events.ListOptions{Filters: filterArgs})

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				ds.logger.Info().Msg("Docker event source cancelled by context")
				return
			case err, ok := <-errCh:
				if !ok {
					// The client delivers one terminal error and then
					// closes the error channel; the message channel
					// never closes. Treat this as stream termination.
					ds.logger.Info().Msg("Docker events error channel closed, stream terminated")
					return
				}
				if err != nil {
					ds.logger.Error().Err(err).Msg("Error from Docker events stream")
				}
			case msg, ok := <-eventCh:
				if !ok {
					ds.logger.Info().Msg("Docker events channel closed")
					return
				}
				if msg.Actor.ID == "" {
					ds.logger.Debug().Str("action", string(msg.Action)).Msg("Skipping event without actor id")
					continue
				}
				evt := domain.ContainerEvent{
					Action:      string(msg.Action),
					ContainerId: msg.Actor.ID,
				}
				ds.logger.Debug().
					Str("action", evt.Action).
					Str("container_id", shortId(evt.ContainerId)).
					Msg("Received Docker event")
				select {
				case out <- evt:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

// ListRunningContainerIds returns the ids of all currently running containers.
func (ds *DockerSource) ListRunningContainerIds(ctx context.Context) ([]string, error) {
	containers, err := ds.cli.ContainerList(ctx, container.ListOptions{All: false})
	if err != nil {
		return nil, fmt.Errorf("listing containers: %w", err)
	}
	ids := make([]string, 0, len(containers))
	for _, c := range containers {
		if c.ID == "" {
			continue
		}
		ids = append(ids, c.ID)
	}
	return ids, nil
}

// Inspect fetches a container's details and converts them into a domain
// record. Stale or unknown ids surface as an inspection error.
func (ds *DockerSource) Inspect(ctx context.Context, containerId string) (domain.ContainerRecord, error) {
	resp, err := ds.cli.ContainerInspect(ctx, containerId)
	if err != nil {
		return domain.ContainerRecord{}, fmt.Errorf("inspecting container %s: %w", shortId(containerId), err)
	}
	return fromInspectResponse(resp, ds.domainEnvVar, ds.domainLabel), nil
}

func shortId(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
