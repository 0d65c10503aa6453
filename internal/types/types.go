// Package types holds the value types shared across the xref builder:
// the input records a caller feeds the aggregator, and the records it
// produces. None of these types own long-lived string storage themselves —
// that's the interner's job (see internal/intern) — they just describe shape.
package types

// FileID identifies a file within a single build and has no meaning
// across builds.
type FileID uint32

// OccurrenceKind is the closed set of occurrence kinds an analysis record
// can carry, plus the derived Consumes kind that names the "consumes"
// crossref key.
type OccurrenceKind uint8

const (
	KindUse OccurrenceKind = iota
	KindDef
	KindAssign
	KindDecl
	KindIdl
	KindIpc
	// KindConsumes never appears on an AnalysisTarget and is never stored
	// in the aggregator's Table; Use occurrences that carry a ContextSym
	// are recorded as reverse edges in its ConsumesTable instead.
	KindConsumes
)

// String returns the crossref JSON key for the kind (§4.6 of the spec).
func (k OccurrenceKind) String() string {
	switch k {
	case KindUse:
		return "uses"
	case KindDef:
		return "defs"
	case KindAssign:
		return "assignments"
	case KindDecl:
		return "decls"
	case KindIdl:
		return "idl"
	case KindIpc:
		return "ipc"
	case KindConsumes:
		return "consumes"
	default:
		return "unknown"
	}
}

// Location is a 1-based line number and a half-open column range in the
// original, untrimmed source line.
type Location struct {
	Lineno   uint32
	ColStart uint32
	ColEnd   uint32
}

// PeekRange is a 1-based inclusive line range. StartLineno == 0 means
// "no peek" — the zero value is the correct default.
type PeekRange struct {
	StartLineno uint32
	EndLineno   uint32
}

// Empty reports whether the range names no peek lines.
func (p PeekRange) Empty() bool {
	return p.StartLineno == 0
}

// AnalysisTarget is one occurrence of a symbol, as produced by the
// upstream analysis-record reader (internal/analysisfile). Sym is the
// opaque raw identifier; Pretty is the human-readable name; Context and
// ContextSym name the enclosing entity and may both be empty.
type AnalysisTarget struct {
	Sym        string
	Pretty     string
	Context    string
	ContextSym string
	Kind       OccurrenceKind
	Loc        Location
	PeekRange  PeekRange
}

// AnalysisSource is a source-level annotation that may apply to several
// symbols at once (Sym is never empty). Only fields relevant to this
// record's purpose are populated; the rest are the zero value.
type AnalysisSource struct {
	Sym         []string
	Pretty      string
	SyntaxKind  string
	TypePretty  string
	TypeSym     string
	SrcSym      string
	TargetSym   string
	IsDef       bool
	IsIPC       bool
}
