package xref

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/standardbeagle/xref-builder/internal/intern"
	"github.com/standardbeagle/xref-builder/internal/linecache"
	"github.com/standardbeagle/xref-builder/internal/types"
)

func loadCache(t *testing.T, content string, in *intern.Interner) *linecache.Cache {
	t.Helper()
	path := filepath.Join(t.TempDir(), "a.cpp")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing test source: %v", err)
	}
	cache, err := linecache.Load(path, in)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return cache
}

// S1 — single definition, jump emitted.
func TestIngestTargetsSingleDefinition(t *testing.T) {
	in := intern.New()
	lc := loadCache(t, "    foo()", in)

	agg := New(in, nil)
	agg.IngestTargets("a.cpp", []types.AnalysisTarget{
		{
			Sym:    "S1",
			Pretty: "foo",
			Kind:   types.KindDef,
			Loc:    types.Location{Lineno: 1, ColStart: 4, ColEnd: 7},
		},
	}, lc)

	sym := in.Add("S1")
	kinds, ok := agg.Table[sym]
	if !ok {
		t.Fatal("expected table entry for S1")
	}
	paths, ok := kinds[types.KindDef]
	if !ok {
		t.Fatal("expected defs entry for S1")
	}
	pathHandle := in.Add("a.cpp")
	results, ok := paths[pathHandle]
	if !ok || len(results) != 1 {
		t.Fatalf("expected exactly one SearchResult, got %v", results)
	}
	sr := results[0]
	if sr.Lineno != 1 || sr.BoundsStart != 0 || sr.BoundsEnd != 3 {
		t.Errorf("unexpected SearchResult: %+v", sr)
	}
	if *sr.Line != "foo()" {
		t.Errorf("line = %q, want foo()", *sr.Line)
	}

	pretty, ok := agg.PrettyTable[sym]
	if !ok || *pretty != "foo" {
		t.Errorf("PrettyTable[S1] = %v, want foo", pretty)
	}

	idSet, ok := agg.IDTable[in.Add("foo")]
	if !ok || len(idSet) != 1 {
		t.Fatalf("expected foo in id_table, got %v", idSet)
	}
	if _, ok := idSet[sym]; !ok {
		t.Error("expected S1 in id_table[foo]")
	}
}

// S3 — consumes reverse edge.
func TestConsumesReverseEdge(t *testing.T) {
	in := intern.New()
	lc := loadCache(t, "line one\nline two\n", in)

	agg := New(in, nil)
	agg.IngestTargets("a.cpp", []types.AnalysisTarget{
		{Sym: "F", Pretty: "F", Kind: types.KindDef, Loc: types.Location{Lineno: 1, ColStart: 0, ColEnd: 1}},
		{Sym: "G", Pretty: "G", ContextSym: "F", Kind: types.KindUse, Loc: types.Location{Lineno: 2, ColStart: 0, ColEnd: 1}},
	}, lc)

	fSym := in.Add("F")
	gSym := in.Add("G")
	set, ok := agg.ConsumesTable[fSym]
	if !ok {
		t.Fatal("expected consumes entry for F")
	}
	if _, ok := set[gSym]; !ok {
		t.Error("expected G in consumes_table[F]")
	}
}

func TestConsumesEdgeRequiresNonEmptyContextSym(t *testing.T) {
	in := intern.New()
	lc := loadCache(t, "line one\n", in)

	agg := New(in, nil)
	agg.IngestTargets("a.cpp", []types.AnalysisTarget{
		{Sym: "G", Pretty: "G", Kind: types.KindUse, Loc: types.Location{Lineno: 1, ColStart: 0, ColEnd: 1}},
	}, lc)

	if len(agg.ConsumesTable) != 0 {
		t.Errorf("expected no consumes edges, got %v", agg.ConsumesTable)
	}
}

func TestUseSelfEdgePermitted(t *testing.T) {
	in := intern.New()
	lc := loadCache(t, "line one\n", in)

	agg := New(in, nil)
	agg.IngestTargets("a.cpp", []types.AnalysisTarget{
		{Sym: "F", Pretty: "F", ContextSym: "F", Kind: types.KindUse, Loc: types.Location{Lineno: 1, ColStart: 0, ColEnd: 1}},
	}, lc)

	fSym := in.Add("F")
	set, ok := agg.ConsumesTable[fSym]
	if !ok {
		t.Fatal("expected self-edge consumes entry")
	}
	if _, ok := set[fSym]; !ok {
		t.Error("expected F to consume itself")
	}
}

// S4 — illegal pretty.
func TestIllegalPrettyExcludedFromIDTable(t *testing.T) {
	in := intern.New()
	lc := loadCache(t, "line one\nline two\n", in)

	agg := New(in, nil)
	agg.IngestTargets("a.cpp", []types.AnalysisTarget{
		{Sym: "X1", Pretty: "123abc", Kind: types.KindDef, Loc: types.Location{Lineno: 1, ColStart: 0, ColEnd: 1}},
		{Sym: "X2", Pretty: "with space", Kind: types.KindDef, Loc: types.Location{Lineno: 2, ColStart: 0, ColEnd: 1}},
	}, lc)

	if _, ok := agg.IDTable[in.Add("123abc")]; ok {
		t.Error("digit-leading pretty should not appear in id_table")
	}
	if _, ok := agg.IDTable[in.Add("with space")]; ok {
		t.Error("pretty containing a space should not appear in id_table")
	}
}

func TestEmptyPrettyExcludedFromIDTable(t *testing.T) {
	in := intern.New()
	lc := loadCache(t, "line one\n", in)

	agg := New(in, nil)
	agg.IngestTargets("a.cpp", []types.AnalysisTarget{
		{Sym: "X3", Pretty: "", Kind: types.KindDef, Loc: types.Location{Lineno: 1, ColStart: 0, ColEnd: 1}},
	}, lc)

	if _, ok := agg.IDTable[in.Empty()]; ok {
		t.Error("empty pretty should not appear in id_table")
	}
}

func TestOutOfRangeLineDropsRecord(t *testing.T) {
	in := intern.New()
	lc := loadCache(t, "only line\n", in)

	agg := New(in, nil)
	agg.IngestTargets("a.cpp", []types.AnalysisTarget{
		{Sym: "X4", Pretty: "x4", Kind: types.KindDef, Loc: types.Location{Lineno: 99, ColStart: 0, ColEnd: 1}},
	}, lc)

	if agg.DroppedRecords != 1 {
		t.Errorf("DroppedRecords = %d, want 1", agg.DroppedRecords)
	}
	if _, ok := agg.Table[in.Add("X4")]; ok {
		t.Error("expected out-of-range record to be dropped entirely")
	}
}

// S5 — IPC link.
func TestLinkIPC(t *testing.T) {
	in := intern.New()
	agg := New(in, nil)

	agg.IngestSources("a.idl", []types.AnalysisSource{
		{Sym: []string{"I"}, SyntaxKind: "idl_interface", SrcSym: "P", TargetSym: "C", IsDef: true, IsIPC: true},
		{Sym: []string{"P"}, SyntaxKind: "function", IsDef: true},
		{Sym: []string{"C"}, SyntaxKind: "function", IsDef: true},
	})
	agg.LinkIPC()

	iSym, pSym, cSym := in.Add("I"), in.Add("P"), in.Add("C")

	pMeta := agg.MetaTable[pSym]
	if *pMeta.IdlSym != *iSym {
		t.Errorf("P.idl_sym = %q, want I", *pMeta.IdlSym)
	}
	if *pMeta.TargetSym != *cSym {
		t.Errorf("P.target_sym = %q, want C", *pMeta.TargetSym)
	}

	cMeta := agg.MetaTable[cSym]
	if *cMeta.IdlSym != *iSym {
		t.Errorf("C.idl_sym = %q, want I", *cMeta.IdlSym)
	}
	if *cMeta.SrcSym != *pSym {
		t.Errorf("C.src_sym = %q, want P", *cMeta.SrcSym)
	}
}

func TestMetaTableFirstWriterWins(t *testing.T) {
	in := intern.New()
	agg := New(in, nil)

	agg.IngestSources("a.cpp", []types.AnalysisSource{
		{Sym: []string{"S"}, SyntaxKind: "function", IsDef: true},
		{Sym: []string{"S"}, SyntaxKind: "overridden", IsDef: true},
	})

	meta := agg.MetaTable[in.Add("S")]
	if *meta.SyntaxKind != "function" {
		t.Errorf("SyntaxKind = %q, want the first record's value \"function\"", *meta.SyntaxKind)
	}
}

func TestIngestSourcesSkipsRecordsWithoutSyntaxKind(t *testing.T) {
	in := intern.New()
	agg := New(in, nil)

	agg.IngestSources("a.cpp", []types.AnalysisSource{
		{Sym: []string{"S"}, IsDef: true},
	})

	if _, ok := agg.MetaTable[in.Add("S")]; ok {
		t.Error("expected no meta entry when syntax_kind is absent")
	}
}
