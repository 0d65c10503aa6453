package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/xref-builder/internal/analysisfile"
	"github.com/standardbeagle/xref-builder/internal/config"
	"github.com/standardbeagle/xref-builder/internal/discover"
	xrerrors "github.com/standardbeagle/xref-builder/internal/errors"
	"github.com/standardbeagle/xref-builder/internal/intern"
	"github.com/standardbeagle/xref-builder/internal/linecache"
	"github.com/standardbeagle/xref-builder/internal/manifest"
	"github.com/standardbeagle/xref-builder/internal/sourcelocate"
	"github.com/standardbeagle/xref-builder/internal/version"
	"github.com/standardbeagle/xref-builder/internal/xref"
	"github.com/standardbeagle/xref-builder/internal/xrefio"
	"github.com/standardbeagle/xref-builder/pkg/pathutil"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if lvl, err := logrus.ParseLevel(os.Getenv("XREF_LOG_LEVEL")); err == nil {
		log.SetLevel(lvl)
	} else {
		log.SetLevel(logrus.InfoLevel)
	}
}

func main() {
	app := &cli.App{
		Name:      "xref-builder",
		Usage:     "build crossref, jumps, and identifiers artifacts for one tree",
		Version:   version.Version,
		ArgsUsage: "<config_path> <tree_name> <filenames_file_or_dir>",
		Action:    build,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "xref-builder: %v\n", err)
		os.Exit(1)
	}
}

func build(c *cli.Context) error {
	if c.NArg() != 3 {
		return xrerrors.NewConfigError("args", fmt.Errorf("expected <config_path> <tree_name> <filenames_file_or_dir>, got %d args", c.NArg()))
	}
	configPath := c.Args().Get(0)
	treeName := c.Args().Get(1)
	filenamesArg := c.Args().Get(2)

	log.WithField("tree", treeName).Info(version.FullInfo())

	cfg, err := config.Load(configPath)
	if err != nil {
		return xrerrors.NewConfigError("config_path", err)
	}

	tree, err := cfg.Tree(treeName)
	if err != nil {
		return xrerrors.NewConfigError("tree_name", err)
	}

	filenames, err := resolveFilenames(filenamesArg, tree)
	if err != nil {
		return xrerrors.NewConfigError("filenames_file", err)
	}

	in := intern.New()
	agg := xref.New(in, log)

	for _, logicalPath := range filenames {
		ingestOne(agg, in, tree, logicalPath)
	}

	agg.LinkIPC()

	if err := writeArtifacts(tree.Paths.IndexPath, agg); err != nil {
		return err
	}

	stats := manifest.FromAggregator(treeName, agg, time.Now())
	if err := manifest.Write(tree.Paths.IndexPath, stats); err != nil {
		log.WithError(err).Warn("failed to write run manifest")
	}

	log.WithFields(logrus.Fields{
		"tree":            treeName,
		"files_processed": stats.FilesProcessed,
		"records_dropped": stats.RecordsDropped,
		"symbols":         stats.SymbolCount,
	}).Info("build complete")

	return nil
}

// resolveFilenames returns filenamesArg's lines, unless it names a
// directory, in which case it is discovered via internal/discover using
// the tree's include/exclude glob lists (SPEC_FULL.md §6).
func resolveFilenames(filenamesArg string, tree config.TreeConfig) ([]string, error) {
	info, err := os.Stat(filenamesArg)
	if err != nil {
		return nil, fmt.Errorf("reading filenames argument %s: %w", filenamesArg, err)
	}
	if info.IsDir() {
		return discover.Discover(filenamesArg, tree.Include, tree.Exclude)
	}
	return readFilenamesFile(filenamesArg)
}

func readFilenamesFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var names []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		names = append(names, line)
	}
	return names, scanner.Err()
}

// ingestOne reads one logical file's analysis records and source lines,
// feeding them to agg. Per-file I/O failures are logged and skipped —
// the build continues with a partial index (spec §7).
func ingestOne(agg *xref.Aggregator, in *intern.Interner, tree config.TreeConfig, logicalPath string) {
	analysisPath := sourcelocate.AnalysisPath(tree.Paths.IndexPath, logicalPath)
	logAnalysisPath := pathutil.ToRelative(analysisPath, tree.Paths.IndexPath)

	targets, err := analysisfile.ReadTargets(analysisPath, log)
	if err != nil {
		log.WithError(xrerrors.NewIOError("read analysis targets", logAnalysisPath, err)).Warn("skipping file")
		return
	}
	sources, err := analysisfile.ReadSources(analysisPath, log)
	if err != nil {
		log.WithError(xrerrors.NewIOError("read analysis sources", logAnalysisPath, err)).Warn("skipping file")
		return
	}

	sourcePath, err := sourcelocate.Locate(logicalPath, tree.Paths.FilesPath, tree.Paths.ObjdirPath)
	if err != nil {
		log.WithError(xrerrors.NewIOError("locate source", logicalPath, err)).Warn("skipping file")
		return
	}
	logSourcePath := pathutil.ToRelative(sourcePath, tree.Paths.FilesPath)

	lc, err := linecache.Load(sourcePath, in)
	if err != nil {
		log.WithError(xrerrors.NewIOError("read source", logSourcePath, err)).Warn("skipping file")
		return
	}

	agg.IngestTargets(logicalPath, targets, lc)
	agg.IngestSources(logicalPath, sources)
}

// writeArtifacts writes all three output files, continuing past a failure
// on one so a caller sees every broken output rather than just the first —
// each is still fatal to the build (spec §7), but the operator gets the
// full picture in one run.
func writeArtifacts(indexPath string, agg *xref.Aggregator) error {
	crossrefPath := filepath.Join(indexPath, "crossref")
	jumpsPath := filepath.Join(indexPath, "jumps")
	identifiersPath := filepath.Join(indexPath, "identifiers")

	errs := []error{
		writeOne(crossrefPath, func(f *os.File) error { return xrefio.WriteCrossref(f, agg) }),
		writeOne(jumpsPath, func(f *os.File) error { return xrefio.WriteJumps(f, agg) }),
		writeOne(identifiersPath, func(f *os.File) error { return xrefio.WriteIdentifiers(f, agg) }),
	}

	multi := xrerrors.NewMultiError(errs)
	if len(multi.Errors) == 0 {
		return nil
	}
	return multi
}

func writeOne(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return xrerrors.NewIOError("create output", path, err)
	}
	defer f.Close()
	if err := write(f); err != nil {
		return xrerrors.NewIOError("write output", path, err)
	}
	return nil
}
