// Package analysisfile reads the on-disk analysis records a tree's
// language analysers produce: one JSON object per line, each carrying an
// optional target fact, an optional source fact, or both. This is the
// "analysis-record reader" collaborator the cross-reference builder spec
// names but does not design; its on-disk shape is this repository's own
// concrete choice; internal/xref depends only on the types.AnalysisTarget
// and types.AnalysisSource shapes this package produces.
package analysisfile

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/standardbeagle/xref-builder/internal/types"
)

type locJSON struct {
	Lineno   uint32 `json:"lineno"`
	ColStart uint32 `json:"col_start"`
	ColEnd   uint32 `json:"col_end"`
}

type peekRangeJSON struct {
	StartLineno uint32 `json:"start_lineno"`
	EndLineno   uint32 `json:"end_lineno"`
}

type targetJSON struct {
	Sym        string `json:"sym"`
	Pretty     string `json:"pretty"`
	Context    string `json:"context"`
	ContextSym string `json:"contextsym"`
	Kind       string `json:"kind"`
}

type sourceJSON struct {
	Sym        []string `json:"sym"`
	Pretty     string   `json:"pretty"`
	SyntaxKind string   `json:"syntax_kind"`
	TypePretty string   `json:"type_pretty"`
	TypeSym    string   `json:"type_sym"`
	SrcSym     string   `json:"src_sym"`
	TargetSym  string   `json:"target_sym"`
	IsDef      bool     `json:"is_def"`
	IsIPC      bool     `json:"is_ipc"`
}

type recordJSON struct {
	Loc       *locJSON       `json:"loc"`
	PeekRange *peekRangeJSON `json:"peek_range"`
	Target    *targetJSON    `json:"target"`
	Source    *sourceJSON    `json:"source"`
}

var kindNames = map[string]types.OccurrenceKind{
	"use":    types.KindUse,
	"def":    types.KindDef,
	"assign": types.KindAssign,
	"decl":   types.KindDecl,
	"idl":    types.KindIdl,
	"ipc":    types.KindIpc,
}

func scanRecords(path string, log logrus.FieldLogger, visit func(recordJSON)) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec recordJSON
		if err := json.Unmarshal(line, &rec); err != nil {
			log.WithFields(logrus.Fields{"path": path, "line": lineno}).WithError(err).
				Warn("skipping undecodable analysis record")
			continue
		}
		visit(rec)
	}
	return scanner.Err()
}

// ReadTargets reads path's target record stream: every line carrying a
// "target" object and a "loc". Lines without either are silently skipped
// (they contribute only to the source stream, or to neither).
func ReadTargets(path string, log logrus.FieldLogger) ([]types.AnalysisTarget, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	var out []types.AnalysisTarget
	err := scanRecords(path, log, func(rec recordJSON) {
		if rec.Target == nil || rec.Loc == nil {
			return
		}
		kind, ok := kindNames[rec.Target.Kind]
		if !ok {
			log.WithFields(logrus.Fields{"path": path, "kind": rec.Target.Kind}).
				Warn("skipping target record with unknown kind")
			return
		}
		t := types.AnalysisTarget{
			Sym:        rec.Target.Sym,
			Pretty:     rec.Target.Pretty,
			Context:    rec.Target.Context,
			ContextSym: rec.Target.ContextSym,
			Kind:       kind,
			Loc: types.Location{
				Lineno:   rec.Loc.Lineno,
				ColStart: rec.Loc.ColStart,
				ColEnd:   rec.Loc.ColEnd,
			},
		}
		if rec.PeekRange != nil {
			t.PeekRange = types.PeekRange{
				StartLineno: rec.PeekRange.StartLineno,
				EndLineno:   rec.PeekRange.EndLineno,
			}
		}
		out = append(out, t)
	})
	if err != nil {
		return nil, fmt.Errorf("analysisfile: reading targets from %s: %w", path, err)
	}
	return out, nil
}

// ReadSources reads path's source record stream: every line carrying a
// "source" object with at least one symbol.
func ReadSources(path string, log logrus.FieldLogger) ([]types.AnalysisSource, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	var out []types.AnalysisSource
	err := scanRecords(path, log, func(rec recordJSON) {
		if rec.Source == nil || len(rec.Source.Sym) == 0 {
			return
		}
		out = append(out, types.AnalysisSource{
			Sym:        rec.Source.Sym,
			Pretty:     rec.Source.Pretty,
			SyntaxKind: rec.Source.SyntaxKind,
			TypePretty: rec.Source.TypePretty,
			TypeSym:    rec.Source.TypeSym,
			SrcSym:     rec.Source.SrcSym,
			TargetSym:  rec.Source.TargetSym,
			IsDef:      rec.Source.IsDef,
			IsIPC:      rec.Source.IsIPC,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("analysisfile: reading sources from %s: %w", path, err)
	}
	return out, nil
}
