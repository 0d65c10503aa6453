// Package linecache turns a source file into a sequence of trimmed,
// offset-adjusted lines, and extracts "peek" excerpts from them. It is the
// only component that reads source files (as opposed to analysis files).
package linecache

import (
	"bufio"
	"os"
	"unicode/utf8"

	"github.com/standardbeagle/xref-builder/internal/intern"
)

// Line is one line of source, trimmed of trailing and leading ASCII
// whitespace and capped at 100 Unicode scalar values. LeftOffset is the
// number of leading whitespace bytes stripped, used to adjust column
// bounds recorded against the untrimmed line.
type Line struct {
	Text       intern.Handle
	LeftOffset uint32
}

// Cache holds the trimmed lines of a single source file.
type Cache struct {
	lines []Line
}

// Load reads path and builds a Cache. A line that can't be decoded as
// valid UTF-8 is substituted with an empty interned line at offset 0
// rather than aborting the whole file.
func Load(path string, in *intern.Interner) (*Cache, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []Line
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		raw := scanner.Text()
		if !isValidUTF8Line(raw) {
			lines = append(lines, Line{Text: in.Empty(), LeftOffset: 0})
			continue
		}
		lines = append(lines, trimLine(raw, in))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return &Cache{lines: lines}, nil
}

func isValidUTF8Line(s string) bool {
	return utf8.ValidString(s)
}

func trimLine(raw string, in *intern.Interner) Line {
	cut := trimTrailingASCIISpace(raw)
	lengthBefore := len(cut)
	cut = trimLeadingASCIISpace(cut)
	offset := uint32(lengthBefore - len(cut))

	truncated := take100Runes(cut)
	return Line{Text: in.Add(truncated), LeftOffset: offset}
}

func take100Runes(s string) string {
	count := 0
	for i, r := range s {
		_ = r
		count++
		if count > 100 {
			return s[:i]
		}
	}
	return s
}

func trimTrailingASCIISpace(s string) string {
	end := len(s)
	for end > 0 && isASCIISpace(s[end-1]) {
		end--
	}
	return s[:end]
}

func trimLeadingASCIISpace(s string) string {
	start := 0
	for start < len(s) && isASCIISpace(s[start]) {
		start++
	}
	return s[start:]
}

func isASCIISpace(b byte) bool {
	switch b {
	case ' ', '\t', '\r', '\n', '\v', '\f':
		return true
	default:
		return false
	}
}

// Len reports the number of lines in the file.
func (c *Cache) Len() int {
	return len(c.lines)
}

// At returns line number lineno (1-based). ok is false when lineno is out
// of range [1, Len()].
func (c *Cache) At(lineno uint32) (Line, bool) {
	if lineno < 1 || int(lineno) > len(c.lines) {
		return Line{}, false
	}
	return c.lines[lineno-1], true
}

// Peek builds the peek-lines block for the inclusive range [start, end],
// left-aligning subsequent lines to the first line's indentation. Returns
// the empty handle when start is 0, start is out of bounds, or end is
// before start; lines after start that are past the end of the file are
// omitted from the block.
func (c *Cache) Peek(start, end uint32, in *intern.Interner) intern.Handle {
	if start == 0 {
		return in.Empty()
	}
	first, ok := c.At(start)
	if !ok {
		return in.Empty()
	}
	left0 := first.LeftOffset

	var b []byte
	for lineno := start; lineno <= end; lineno++ {
		line, ok := c.At(lineno)
		if !ok {
			continue
		}
		pad := 0
		if line.LeftOffset > left0 {
			pad = int(line.LeftOffset - left0)
		}
		for i := 0; i < pad; i++ {
			b = append(b, ' ')
		}
		b = append(b, *line.Text...)
		b = append(b, '\n')
	}
	return in.Add(string(b))
}
