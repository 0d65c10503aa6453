// Discover implements the directory-based filenames-file convenience:
// when a tree has no hand-maintained filenames file, Discover walks the
// tree root and derives one from include/exclude glob patterns plus the
// tree's .gitignore. This is a pre-pass — it runs to completion and
// hands the aggregator (internal/xref) a single deterministic, sorted
// filename list before ingestion starts; the aggregator itself stays
// single-threaded per the builder's concurrency model.
package discover

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"
)

const maxWalkers = 8

// Discover returns the sorted, slash-separated, root-relative paths of
// every regular file under root that matches one of include (or every
// file, if include is empty) and none of exclude, and that the tree's
// .gitignore (if any) does not ignore. A file that a negated ("!")
// .gitignore rule re-includes is still dropped when a non-negated rule's
// glob matches it.
func Discover(root string, include, exclude []string) ([]string, error) {
	gp := NewGitignoreParser()
	if err := gp.LoadGitignore(root); err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	// ShouldIgnore prunes ignored directories and drops ignored files
	// during the walk below, but matches directory rules only against
	// root-relative paths that start with the directory name. The same
	// patterns, recast as doublestar globs ("build/" becomes
	// "**/build/**"), are folded into the exclude list so files under such
	// directories deeper in the tree are still caught by the final
	// include/exclude filter. Negated rules are not folded in.
	exclude = append(append([]string{}, exclude...), gp.GetExclusionPatterns()...)

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}

	var (
		mu      sync.Mutex
		results []string
	)

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(maxWalkers)

	visit := func(relPath string, d fs.DirEntry) error {
		if d.IsDir() {
			if gp.ShouldIgnore(relPath, true) {
				return filepath.SkipDir
			}
			return nil
		}
		if gp.ShouldIgnore(relPath, false) {
			return nil
		}
		if !matchesAny(relPath, include) {
			return nil
		}
		if matchesAnyExclude(relPath, exclude) {
			return nil
		}
		mu.Lock()
		results = append(results, relPath)
		mu.Unlock()
		return nil
	}

	for _, entry := range entries {
		entry := entry
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			full := filepath.Join(root, entry.Name())
			return filepath.WalkDir(full, func(path string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				rel, relErr := filepath.Rel(root, path)
				if relErr != nil {
					return relErr
				}
				rel = filepath.ToSlash(rel)
				return visit(rel, d)
			})
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Strings(results)
	return results, nil
}

// matchesAny reports whether path matches any of patterns, or whether
// patterns is empty (the "match everything" convention used for an
// empty include list).
func matchesAny(path string, patterns []string) bool {
	if len(patterns) == 0 {
		return true
	}
	return matchesAnyExclude(path, patterns)
}

// matchesAnyExclude reports whether path matches any of patterns. Unlike
// matchesAny, an empty patterns list matches nothing — the correct
// identity for exclude, where "no patterns" means "exclude nothing".
func matchesAnyExclude(path string, patterns []string) bool {
	for _, p := range patterns {
		if ok, err := doublestar.Match(p, path); err == nil && ok {
			return true
		}
	}
	return false
}
