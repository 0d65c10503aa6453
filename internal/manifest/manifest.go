// Package manifest writes the operational run-summary artifact that rides
// alongside a build's three required outputs. It is never read back by the
// builder itself — it exists for build dashboards and postmortems, the way
// the teacher's build-artifact detector reaches for TOML for config, not
// for anything the cross-reference tables depend on.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/standardbeagle/xref-builder/internal/xref"
)

// Stats is the on-disk shape of crossref-stats.toml.
type Stats struct {
	Tree           string    `toml:"tree"`
	GeneratedAt    time.Time `toml:"generated_at"`
	FilesProcessed int       `toml:"files_processed"`
	RecordsDropped int       `toml:"records_dropped"`
	SymbolCount    int       `toml:"symbol_count"`
	PathLeafCount  int       `toml:"path_leaf_count"`
	ElapsedSeconds float64   `toml:"elapsed_seconds"`
}

// FromAggregator builds a Stats snapshot for tree from agg's run counters.
func FromAggregator(tree string, agg *xref.Aggregator, generatedAt time.Time) Stats {
	s := agg.Stats()
	return Stats{
		Tree:           tree,
		GeneratedAt:    generatedAt,
		FilesProcessed: s.FilesProcessed,
		RecordsDropped: s.RecordsDropped,
		SymbolCount:    s.SymbolCount,
		PathLeafCount:  s.PathLeafCount,
		ElapsedSeconds: s.ElapsedSeconds,
	}
}

// Write encodes stats as TOML and writes it to <indexPath>/crossref-stats.toml.
// A write failure here is never fatal to the build — callers should log and
// continue, since this file is not one of the three required artifacts.
func Write(indexPath string, stats Stats) error {
	data, err := toml.Marshal(stats)
	if err != nil {
		return fmt.Errorf("manifest: encoding stats: %w", err)
	}
	path := filepath.Join(indexPath, "crossref-stats.toml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("manifest: writing %s: %w", path, err)
	}
	return nil
}
