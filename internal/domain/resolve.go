package domain

import (
	"sort"
	"strings"
)

// AddressGroup is one hosts-file line worth of data: an address and the
// hostnames that should resolve to it.
type AddressGroup struct {
	Address   string
	Hostnames []string
}

// Resolve derives the address-to-hostname groupings for a container. It is a
// pure function: no I/O, no shared state.
//
// The global-address group receives every domain token verbatim, including
// "network:host"-shaped ones, while per-network groups parse and filter by
// the colon syntax. The asymmetry is inherited behavior; the per-network
// filtering semantics are the authoritative ones.
func Resolve(rec ContainerRecord, tld string) []AddressGroup {
	var groups []AddressGroup

	if rec.GlobalAddress != "" {
		hosts := newHostnameSet()
		hosts.add(rec.Name + tld)
		for _, token := range rec.DomainTokens {
			hosts.add(token)
		}
		groups = append(groups, AddressGroup{Address: rec.GlobalAddress, Hostnames: hosts.ordered})
	}

	for _, networkName := range sortedNetworkNames(rec.Networks) {
		attachment := rec.Networks[networkName]
		hosts := newHostnameSet()
		hosts.add(rec.Name + "." + networkName)
		for _, alias := range attachment.Aliases {
			hosts.add(alias + "." + networkName)
		}
		for _, token := range rec.DomainTokens {
			if net, hostname, ok := strings.Cut(token, ":"); ok {
				if networkMatchesToken(networkName, net) {
					hosts.add(hostname)
				}
			} else if rec.GlobalAddress == "" {
				// No global entry to receive bare tokens; fan out to
				// every network instead.
				hosts.add(token)
			}
		}
		if len(hosts.ordered) > 0 {
			groups = append(groups, AddressGroup{Address: attachment.Address, Hostnames: hosts.ordered})
		}
	}

	return groups
}

// networkMatchesToken reports whether a token's network qualifier selects the
// given network. A bare qualifier like "default" matches a compose-style
// network named "project_default" or "stack-default", but not "mydefault".
func networkMatchesToken(networkName, net string) bool {
	return networkName == net ||
		strings.HasSuffix(networkName, "_"+net) ||
		strings.HasSuffix(networkName, "-"+net)
}

func sortedNetworkNames(networks map[string]NetworkAttachment) []string {
	names := make([]string, 0, len(networks))
	for name := range networks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// hostnameSet keeps insertion order while deduplicating.
type hostnameSet struct {
	seen    map[string]struct{}
	ordered []string
}

func newHostnameSet() *hostnameSet {
	return &hostnameSet{seen: make(map[string]struct{})}
}

func (s *hostnameSet) add(h string) {
	if h == "" {
		return
	}
	if _, ok := s.seen[h]; ok {
		return
	}
	s.seen[h] = struct{}{}
	s.ordered = append(s.ordered, h)
}
