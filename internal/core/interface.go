package core

import (
	"context"

	"github.com/auto-dns/docker-hosts-sync/internal/domain"
)

type source interface {
	Subscribe(ctx context.Context) (<-chan domain.ContainerEvent, error)
	ListRunningContainerIds(ctx context.Context) ([]string, error)
	Inspect(ctx context.Context, containerId string) (domain.ContainerRecord, error)
}

type snapshotWriter interface {
	WriteSnapshot(recs []domain.ContainerRecord) error
}
