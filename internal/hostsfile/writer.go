package hostsfile

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/auto-dns/docker-hosts-sync/internal/domain"
)

// Writer commits a snapshot of active containers to the hosts file. When
// write mode is disabled it renders the same entries but only logs them.
type Writer struct {
	path         string
	tld          string
	writeEnabled bool
	logger       zerolog.Logger
}

func NewWriter(path, tld string, writeEnabled bool, logger zerolog.Logger) *Writer {
	return &Writer{
		path:         path,
		tld:          tld,
		writeEnabled: writeEnabled,
		logger:       logger,
	}
}

// WriteSnapshot renders the snapshot and rewrites the managed section of the
// hosts file as a single complete replacement. The caller must not hold any
// lock over the snapshot's source while this runs.
func (w *Writer) WriteSnapshot(recs []domain.ContainerRecord) error {
	entries := RenderEntries(recs, w.tld)
	hostnames := CountHostnames(recs, w.tld)

	if !w.writeEnabled {
		for _, entry := range entries {
			w.logger.Info().Str("entry", entry).Msg("Generated hosts entry")
		}
		w.logger.Info().
			Int("containers", len(recs)).
			Int("hostnames", hostnames).
			Msg("Dry-run mode - hosts file not modified")
		return nil
	}

	content, err := os.ReadFile(w.path)
	if err != nil {
		return fmt.Errorf("reading hosts file %s: %w", w.path, err)
	}

	patched := Serialize(Patch(SplitLines(string(content)), entries))

	if err := os.WriteFile(w.path, []byte(patched), 0o644); err != nil {
		return fmt.Errorf("writing hosts file %s: %w", w.path, err)
	}

	if len(entries) == 0 {
		w.logger.Info().Str("path", w.path).Msg("Removed empty managed section from hosts file")
	} else {
		w.logger.Info().
			Str("path", w.path).
			Int("containers", len(recs)).
			Int("hostnames", hostnames).
			Msg("Updated hosts file")
	}
	return nil
}
