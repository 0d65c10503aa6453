// Package xrefio is the serialiser (C6): it walks a finished xref.Aggregator
// in deterministic key order and writes the three on-disk artifacts —
// crossref, jumps, identifiers — that the search front-end consumes.
//
// Go's encoding/json sorts map[string]... keys alphabetically when
// marshalling, which is exactly the BTreeMap ordering the artifacts need
// for the kindmap; the per-record objects (search results, meta, consumes
// entries) are structs and keep their declared field order. No third-party JSON library
// in the reference corpus offers anything this package doesn't already
// get from the standard library for free.
package xrefio

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/standardbeagle/xref-builder/internal/intern"
	"github.com/standardbeagle/xref-builder/internal/scopesplit"
	"github.com/standardbeagle/xref-builder/internal/types"
	"github.com/standardbeagle/xref-builder/internal/xref"
)

// sortHandles returns the handles of set ordered lexicographically over
// the underlying string bytes, the ordering every "ordered map" and
// "sorted set" in the data model resolves to at serialisation time.
func sortHandles(set xref.SymbolSet) []intern.Handle {
	out := make([]intern.Handle, 0, len(set))
	for h := range set {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return *out[i] < *out[j] })
	return out
}

func sortedSymbols(table map[intern.Handle]xref.KindTable) []intern.Handle {
	out := make([]intern.Handle, 0, len(table))
	for h := range table {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return *out[i] < *out[j] })
	return out
}

func sortedPaths(paths xref.PathTable) []intern.Handle {
	out := make([]intern.Handle, 0, len(paths))
	for h := range paths {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return *out[i] < *out[j] })
	return out
}

// kindOrder lists the kinds in the fixed order the aggregator ever
// populates KindTable with; only entries actually present are emitted.
var kindOrder = []types.OccurrenceKind{
	types.KindUse,
	types.KindDef,
	types.KindAssign,
	types.KindDecl,
	types.KindIdl,
	types.KindIpc,
}

type searchResultJSON struct {
	Lno        uint32    `json:"lno"`
	Bounds     [2]uint32 `json:"bounds"`
	Line       string    `json:"line"`
	Context    string    `json:"context"`
	ContextSym string    `json:"contextsym"`
	PeekLines  string    `json:"peekLines,omitempty"`
}

type pathEntryJSON struct {
	Path  string             `json:"path"`
	Lines []searchResultJSON `json:"lines"`
}

type consumeEntryJSON struct {
	Sym    string `json:"sym"`
	Pretty string `json:"pretty"`
	Syntax string `json:"syntax"`
}

type metaJSON struct {
	Syntax    string `json:"syntax"`
	Type      string `json:"type"`
	TypeSym   string `json:"typesym"`
	SrcSym    string `json:"srcsym"`
	TargetSym string `json:"targetsym"`
	IdlSym    string `json:"idlsym"`
}

func toSearchResultJSON(sr xref.SearchResult) searchResultJSON {
	j := searchResultJSON{
		Lno:        sr.Lineno,
		Bounds:     [2]uint32{sr.BoundsStart, sr.BoundsEnd},
		Line:       *sr.Line,
		Context:    *sr.Context,
		ContextSym: *sr.ContextSym,
	}
	if *sr.PeekLines != "" {
		j.PeekLines = *sr.PeekLines
	}
	return j
}

// WriteCrossref emits the crossref artifact: two lines per symbol, the
// raw symbol followed by the compact JSON of its kindmap, in sorted
// symbol order.
func WriteCrossref(w io.Writer, agg *xref.Aggregator) error {
	bw := bufio.NewWriter(w)

	for _, sym := range sortedSymbols(agg.Table) {
		kindmap := make(map[string]any)

		for _, kind := range kindOrder {
			paths, ok := agg.Table[sym][kind]
			if !ok {
				continue
			}
			var entries []pathEntryJSON
			for _, p := range sortedPaths(paths) {
				results := paths[p]
				lines := make([]searchResultJSON, len(results))
				for i, sr := range results {
					lines[i] = toSearchResultJSON(sr)
				}
				entries = append(entries, pathEntryJSON{Path: *p, Lines: lines})
			}
			kindmap[kind.String()] = entries
		}

		if consumed, ok := agg.ConsumesTable[sym]; ok {
			entries := []consumeEntryJSON{}
			for _, csym := range sortHandles(consumed) {
				meta, ok := agg.MetaTable[csym]
				if !ok {
					continue
				}
				pretty := agg.PrettyTable[csym]
				prettyStr := ""
				if pretty != nil {
					prettyStr = *pretty
				}
				entries = append(entries, consumeEntryJSON{
					Sym:    *csym,
					Pretty: prettyStr,
					Syntax: *meta.SyntaxKind,
				})
			}
			kindmap["consumes"] = entries
		}

		if meta, ok := agg.MetaTable[sym]; ok {
			kindmap["meta"] = metaJSON{
				Syntax:    *meta.SyntaxKind,
				Type:      *meta.TypePretty,
				TypeSym:   *meta.TypeSym,
				SrcSym:    *meta.SrcSym,
				TargetSym: *meta.TargetSym,
				IdlSym:    *meta.IdlSym,
			}
		}

		encoded, err := json.Marshal(kindmap)
		if err != nil {
			return fmt.Errorf("xrefio: encoding kindmap for %s: %w", *sym, err)
		}
		if _, err := fmt.Fprintf(bw, "%s\n%s\n", *sym, encoded); err != nil {
			return err
		}
	}

	return bw.Flush()
}

// WriteJumps emits the jumps artifact: one JSON array per line, for
// every symbol with exactly one Def entry across exactly one path with
// exactly one recorded line.
func WriteJumps(w io.Writer, agg *xref.Aggregator) error {
	bw := bufio.NewWriter(w)

	for _, sym := range sortedSymbols(agg.Table) {
		defs, ok := agg.Table[sym][types.KindDef]
		if !ok || len(defs) != 1 {
			continue
		}
		for path, results := range defs {
			if len(results) != 1 {
				continue
			}
			pretty := agg.PrettyTable[sym]
			prettyStr := ""
			if pretty != nil {
				prettyStr = *pretty
			}
			entry := []any{*sym, *path, results[0].Lineno, prettyStr}
			encoded, err := json.Marshal(entry)
			if err != nil {
				return fmt.Errorf("xrefio: encoding jump for %s: %w", *sym, err)
			}
			if _, err := fmt.Fprintf(bw, "%s\n", encoded); err != nil {
				return err
			}
		}
	}

	return bw.Flush()
}

// WriteIdentifiers emits the identifiers artifact: for every (pretty,
// sym) pair, one "<suffix> <sym>" line per non-empty scope-suffix of
// pretty, so both fully- and tail-qualified lookups resolve.
func WriteIdentifiers(w io.Writer, agg *xref.Aggregator) error {
	bw := bufio.NewWriter(w)

	prettyHandles := make([]intern.Handle, 0, len(agg.IDTable))
	for h := range agg.IDTable {
		prettyHandles = append(prettyHandles, h)
	}
	sort.Slice(prettyHandles, func(i, j int) bool { return *prettyHandles[i] < *prettyHandles[j] })

	for _, pretty := range prettyHandles {
		for _, sym := range sortHandles(agg.IDTable[pretty]) {
			for _, suffix := range scopesplit.Suffixes(*pretty) {
				if _, err := fmt.Fprintf(bw, "%s %s\n", suffix, *sym); err != nil {
					return err
				}
			}
		}
	}

	return bw.Flush()
}
