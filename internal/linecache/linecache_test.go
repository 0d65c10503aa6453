package linecache

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/standardbeagle/xref-builder/internal/intern"
)

func writeSource(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "source.cpp")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing test source: %v", err)
	}
	return path
}

func TestLoadTrimsAndCountsLines(t *testing.T) {
	path := writeSource(t, "  foo  \n\tbar\n")
	in := intern.New()

	cache, err := Load(path, in)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cache.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", cache.Len())
	}

	line1, ok := cache.At(1)
	if !ok {
		t.Fatal("At(1) not ok")
	}
	if *line1.Text != "foo" {
		t.Errorf("line 1 text = %q, want %q", *line1.Text, "foo")
	}
	if line1.LeftOffset != 2 {
		t.Errorf("line 1 LeftOffset = %d, want 2", line1.LeftOffset)
	}

	line2, ok := cache.At(2)
	if !ok {
		t.Fatal("At(2) not ok")
	}
	if *line2.Text != "bar" {
		t.Errorf("line 2 text = %q, want %q", *line2.Text, "bar")
	}
	if line2.LeftOffset != 1 {
		t.Errorf("line 2 LeftOffset = %d, want 1", line2.LeftOffset)
	}
}

func TestLoadTruncatesAt100Runes(t *testing.T) {
	long := strings.Repeat("a", 150)
	path := writeSource(t, long+"\n")
	in := intern.New()

	cache, err := Load(path, in)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	line, ok := cache.At(1)
	if !ok {
		t.Fatal("At(1) not ok")
	}
	if len([]rune(*line.Text)) != 100 {
		t.Errorf("truncated length = %d, want 100", len([]rune(*line.Text)))
	}
}

func TestAtOutOfRange(t *testing.T) {
	path := writeSource(t, "only\n")
	in := intern.New()
	cache, err := Load(path, in)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, ok := cache.At(0); ok {
		t.Error("At(0) should not be ok")
	}
	if _, ok := cache.At(99); ok {
		t.Error("At(99) should not be ok")
	}
}

func TestPeekAlignsToFirstLineIndent(t *testing.T) {
	path := writeSource(t, "foo\n  bar\n")
	in := intern.New()
	cache, err := Load(path, in)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	h := cache.Peek(1, 2, in)
	want := "foo\n  bar\n"
	if *h != want {
		t.Errorf("Peek = %q, want %q", *h, want)
	}
}

func TestPeekClampsNegativeOffsetDifferenceToZero(t *testing.T) {
	path := writeSource(t, "    foo\nbar\n")
	in := intern.New()
	cache, err := Load(path, in)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	h := cache.Peek(1, 2, in)
	want := "foo\nbar\n"
	if *h != want {
		t.Errorf("Peek = %q, want %q (negative offset must clamp to zero, not underflow)", *h, want)
	}
}

func TestPeekZeroStartReturnsEmpty(t *testing.T) {
	path := writeSource(t, "foo\n")
	in := intern.New()
	cache, err := Load(path, in)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	h := cache.Peek(0, 0, in)
	if *h != "" {
		t.Errorf("Peek(0, 0) = %q, want empty", *h)
	}
}

func TestPeekOutOfRangeReturnsEmpty(t *testing.T) {
	path := writeSource(t, "foo\n")
	in := intern.New()
	cache, err := Load(path, in)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	h := cache.Peek(5, 6, in)
	if *h != "" {
		t.Errorf("Peek out of range = %q, want empty", *h)
	}
}
