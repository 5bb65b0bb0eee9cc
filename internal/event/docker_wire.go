package event

import (
	"strings"

	"github.com/docker/docker/api/types/container"

	"github.com/auto-dns/docker-hosts-sync/internal/domain"
)

// fromInspectResponse converts an inspect response into a domain record.
// Domain tokens come from two signals: an environment variable and a label,
// each a comma-separated list.
func fromInspectResponse(resp container.InspectResponse, domainEnvVar, domainLabel string) domain.ContainerRecord {
	var rec domain.ContainerRecord
	if resp.ContainerJSONBase != nil {
		rec.Id = resp.ID
		rec.Name = strings.TrimPrefix(resp.Name, "/")
		if resp.State != nil {
			rec.Running = resp.State.Running
		}
	}

	if resp.NetworkSettings != nil {
		rec.GlobalAddress = resp.NetworkSettings.IPAddress

		networks := make(map[string]domain.NetworkAttachment)
		for networkName, endpoint := range resp.NetworkSettings.Networks {
			if endpoint == nil || endpoint.IPAddress == "" {
				continue
			}
			networks[networkName] = domain.NetworkAttachment{
				Address: endpoint.IPAddress,
				Aliases: withOwnName(endpoint.Aliases, rec.Name),
			}
		}
		if len(networks) > 0 {
			rec.Networks = networks
		}
	}

	if resp.Config != nil {
		envPrefix := domainEnvVar + "="
		for _, env := range resp.Config.Env {
			if value, ok := strings.CutPrefix(env, envPrefix); ok {
				rec.DomainTokens = append(rec.DomainTokens, splitTokens(value)...)
			}
		}
		if value, ok := resp.Config.Labels[domainLabel]; ok {
			rec.DomainTokens = append(rec.DomainTokens, splitTokens(value)...)
		}
	}

	return rec
}

// withOwnName deduplicates aliases and guarantees the container's own name
// appears exactly once.
func withOwnName(aliases []string, name string) []string {
	seen := make(map[string]struct{}, len(aliases)+1)
	out := make([]string, 0, len(aliases)+1)
	for _, alias := range aliases {
		if alias == "" {
			continue
		}
		if _, ok := seen[alias]; ok {
			continue
		}
		seen[alias] = struct{}{}
		out = append(out, alias)
	}
	if _, ok := seen[name]; !ok && name != "" {
		out = append(out, name)
	}
	return out
}

func splitTokens(value string) []string {
	var tokens []string
	for _, part := range strings.Split(value, ",") {
		if token := strings.TrimSpace(part); token != "" {
			tokens = append(tokens, token)
		}
	}
	return tokens
}
