// Package xref is the aggregator (C4) and IPC linker (C5): it owns the
// five cross-referenced tables built up while ingesting one tree's
// analysis records, and the post-pass that links IDL/IPC symbols into
// their src/target sides. internal/xrefio walks the finished tables to
// produce the on-disk artifacts.
package xref

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/standardbeagle/xref-builder/internal/alloc"
	xrerrors "github.com/standardbeagle/xref-builder/internal/errors"
	"github.com/standardbeagle/xref-builder/internal/intern"
	"github.com/standardbeagle/xref-builder/internal/linecache"
	"github.com/standardbeagle/xref-builder/internal/types"
)

// SearchResult is one occurrence of a symbol: where it happened, the
// trimmed source line it happened on, and the enclosing context.
type SearchResult struct {
	Lineno      uint32
	BoundsStart uint32
	BoundsEnd   uint32
	Line        intern.Handle
	Context     intern.Handle
	ContextSym  intern.Handle
	PeekLines   intern.Handle
}

// SymbolMeta is the metadata record a symbol's defining source annotation
// carries, enriched in place by LinkIPC for the IDL/IPC side of the
// relationship.
type SymbolMeta struct {
	SyntaxKind intern.Handle
	TypePretty intern.Handle
	TypeSym    intern.Handle
	SrcSym     intern.Handle
	TargetSym  intern.Handle
	IdlSym     intern.Handle
}

// PathTable maps a source path to the SearchResults recorded against it,
// in path order once sorted by the serialiser.
type PathTable map[intern.Handle][]SearchResult

// KindTable maps an occurrence kind to the paths it was seen at.
type KindTable map[types.OccurrenceKind]PathTable

// SymbolSet is an unordered set of interned symbol handles; the
// serialiser sorts it by underlying bytes at output time.
type SymbolSet map[intern.Handle]struct{}

// Aggregator owns the builder's cross-referenced state for one tree. It
// is not safe for concurrent use — the build is single-threaded by
// design (see the concurrency notes in SPEC_FULL.md).
type Aggregator struct {
	interner *intern.Interner
	log      logrus.FieldLogger

	Table         map[intern.Handle]KindTable
	PrettyTable   map[intern.Handle]intern.Handle
	IDTable       map[intern.Handle]SymbolSet
	MetaTable     map[intern.Handle]*SymbolMeta
	ConsumesTable map[intern.Handle]SymbolSet

	ipcToLink []intern.Handle

	resultAlloc *alloc.SlabAllocator[SearchResult]

	DroppedRecords int
	FilesProcessed int

	started time.Time
}

// RunStats is an observability snapshot taken after a build finishes; it
// never feeds back into crossref/jumps/identifiers output. internal/manifest
// is its only consumer.
type RunStats struct {
	FilesProcessed int
	RecordsDropped int
	SymbolCount    int
	PathLeafCount  int
	ElapsedSeconds float64
}

// Stats snapshots the aggregator's bookkeeping counters for internal/manifest.
// Call it after LinkIPC so leaf counts reflect the final tables.
func (a *Aggregator) Stats() RunStats {
	leafCount := 0
	for _, kinds := range a.Table {
		for _, paths := range kinds {
			leafCount += len(paths)
		}
	}
	return RunStats{
		FilesProcessed: a.FilesProcessed,
		RecordsDropped: a.DroppedRecords,
		SymbolCount:    len(a.Table),
		PathLeafCount:  leafCount,
		ElapsedSeconds: time.Since(a.started).Seconds(),
	}
}

// New creates an empty Aggregator backed by in. log receives a warning
// for every per-file or per-record anomaly the ingest loop recovers from.
func New(in *intern.Interner, log logrus.FieldLogger) *Aggregator {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Aggregator{
		interner:      in,
		log:           log,
		Table:         make(map[intern.Handle]KindTable),
		PrettyTable:   make(map[intern.Handle]intern.Handle),
		IDTable:       make(map[intern.Handle]SymbolSet),
		MetaTable:     make(map[intern.Handle]*SymbolMeta),
		ConsumesTable: make(map[intern.Handle]SymbolSet),
		resultAlloc:   alloc.NewSearchResultSlabAllocator[SearchResult](),
		started:       time.Now(),
	}
}

// legalPretty reports whether pretty may be used as an id_table key: it
// must be non-empty, must not start with an ASCII digit, and must
// contain no space.
func legalPretty(pretty string) bool {
	if pretty == "" {
		return false
	}
	if pretty[0] >= '0' && pretty[0] <= '9' {
		return false
	}
	for i := 0; i < len(pretty); i++ {
		if pretty[i] == ' ' {
			return false
		}
	}
	return true
}

// IngestTargets consumes path's target record stream (one record per
// symbol occurrence), resolving each record's line against lc. A record
// whose line number is out of range is logged and dropped; ingest of the
// rest of the file continues.
func (a *Aggregator) IngestTargets(path string, targets []types.AnalysisTarget, lc *linecache.Cache) {
	a.FilesProcessed++
	pathHandle := a.interner.Add(path)

	for _, t := range targets {
		line, ok := lc.At(t.Loc.Lineno)
		if !ok {
			err := xrerrors.NewRecordError(path, t.Loc.Lineno, "Bad line number in file")
			a.log.WithError(err).Warn("dropping record")
			a.DroppedRecords++
			continue
		}

		sym := a.interner.Add(t.Sym)
		pretty := a.interner.Add(t.Pretty)
		context := a.interner.Add(t.Context)
		contextSym := a.interner.Add(t.ContextSym)

		sr := SearchResult{
			Lineno:      t.Loc.Lineno,
			BoundsStart: t.Loc.ColStart - line.LeftOffset,
			BoundsEnd:   t.Loc.ColEnd - line.LeftOffset,
			Line:        line.Text,
			Context:     context,
			ContextSym:  contextSym,
			PeekLines:   lc.Peek(t.PeekRange.StartLineno, t.PeekRange.EndLineno, a.interner),
		}

		kinds, ok := a.Table[sym]
		if !ok {
			kinds = make(KindTable)
			a.Table[sym] = kinds
		}
		paths, ok := kinds[t.Kind]
		if !ok {
			paths = make(PathTable)
			kinds[t.Kind] = paths
		}
		leaf := paths[pathHandle]
		if len(leaf) == cap(leaf) {
			leaf = a.resultAlloc.GrowSlice(leaf, 1)
		}
		paths[pathHandle] = append(leaf, sr)

		a.PrettyTable[sym] = pretty

		if t.Kind == types.KindUse && t.ContextSym != "" {
			set, ok := a.ConsumesTable[contextSym]
			if !ok {
				set = make(SymbolSet)
				a.ConsumesTable[contextSym] = set
			}
			set[sym] = struct{}{}
		}

		if legalPretty(t.Pretty) {
			set, ok := a.IDTable[pretty]
			if !ok {
				set = make(SymbolSet)
				a.IDTable[pretty] = set
			}
			set[sym] = struct{}{}
		}
	}
}

// IngestSources consumes path's source record stream: definitions with a
// syntax kind populate MetaTable (first writer wins), and definitions
// that are also IPC symbols are queued for LinkIPC.
func (a *Aggregator) IngestSources(path string, sources []types.AnalysisSource) {
	for _, s := range sources {
		if !s.IsDef || s.SyntaxKind == "" {
			continue
		}
		if len(s.Sym) == 0 {
			a.log.WithField("path", path).Warn("source def record with no symbols")
			a.DroppedRecords++
			continue
		}

		first := a.interner.Add(s.Sym[0])
		if _, exists := a.MetaTable[first]; exists {
			continue
		}

		a.MetaTable[first] = &SymbolMeta{
			SyntaxKind: a.interner.Add(s.SyntaxKind),
			TypePretty: a.interner.Add(s.TypePretty),
			TypeSym:    a.interner.Add(s.TypeSym),
			SrcSym:     a.interner.Add(s.SrcSym),
			TargetSym:  a.interner.Add(s.TargetSym),
			IdlSym:     a.interner.Empty(),
		}

		if s.IsIPC {
			a.ipcToLink = append(a.ipcToLink, first)
		}
	}
}

// LinkIPC runs the post-ingest IPC linking pass (C5): for every deferred
// IPC symbol, it reads the symbol's src/target sides and writes back the
// bidirectional idl_sym/src_sym/target_sym links. Lookups are staged
// before any write, so linking one symbol never observes a partially
// updated sibling.
func (a *Aggregator) LinkIPC() {
	for _, ipcSym := range a.ipcToLink {
		meta, ok := a.MetaTable[ipcSym]
		if !ok {
			continue
		}
		src, tgt := meta.SrcSym, meta.TargetSym

		srcMeta, srcOK := a.MetaTable[src]
		tgtMeta, tgtOK := a.MetaTable[tgt]

		if srcOK && src != a.interner.Empty() {
			srcMeta.IdlSym = ipcSym
			srcMeta.TargetSym = tgt
		}
		if tgtOK && tgt != a.interner.Empty() {
			tgtMeta.IdlSym = ipcSym
			tgtMeta.SrcSym = src
		}
	}
}
