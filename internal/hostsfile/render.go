package hostsfile

import (
	"strings"

	"github.com/auto-dns/docker-hosts-sync/internal/domain"
)

// RenderEntries resolves each record and formats the managed lines, one per
// address group: "<address> <hostname> [<hostname>...]".
func RenderEntries(recs []domain.ContainerRecord, tld string) []string {
	var entries []string
	for _, rec := range recs {
		for _, group := range domain.Resolve(rec, tld) {
			if len(group.Hostnames) == 0 {
				continue
			}
			entries = append(entries, group.Address+" "+strings.Join(group.Hostnames, " "))
		}
	}
	return entries
}

// CountHostnames totals the hostnames across a rendered snapshot, for log
// summaries.
func CountHostnames(recs []domain.ContainerRecord, tld string) int {
	n := 0
	for _, rec := range recs {
		for _, group := range domain.Resolve(rec, tld) {
			n += len(group.Hostnames)
		}
	}
	return n
}
