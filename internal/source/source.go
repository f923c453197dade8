package source

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// File is one translation unit's text plus a line table for diagnostics.
type File struct {
	Name        string
	Input       string
	lineOffsets []int // byte offset of each line start
}

func NewFile(name string, input string) *File {
	f := &File{Name: name, Input: input}
	f.lineOffsets = []int{0}
	for i := 0; i < len(input); i++ {
		if input[i] == '\n' {
			f.lineOffsets = append(f.lineOffsets, i+1)
		}
	}
	return f
}

// LineCol returns the 1-based line and column of a byte offset.
// Columns count runes, not bytes.
func (f *File) LineCol(off int) (int, int) {
	if off < 0 {
		off = 0
	}
	if off > len(f.Input) {
		off = len(f.Input)
	}
	i := sort.Search(len(f.lineOffsets), func(i int) bool { return f.lineOffsets[i] > off }) - 1
	if i < 0 {
		i = 0
	}
	lineStart := f.lineOffsets[i]
	col := 1
	pos := lineStart
	for pos < off {
		_, sz := utf8.DecodeRuneInString(f.Input[pos:])
		if sz <= 0 {
			sz = 1
		}
		// an offset inside a multi-byte rune keeps the rune's column
		if pos+sz > off {
			break
		}
		col++
		pos += sz
	}
	return i + 1, col
}

// Line returns the text of a 1-based line without its newline.
func (f *File) Line(n int) (string, bool) {
	if n < 1 || n > len(f.lineOffsets) {
		return "", false
	}
	start := f.lineOffsets[n-1]
	end := len(f.Input)
	if n < len(f.lineOffsets) {
		end = f.lineOffsets[n] - 1
	}
	return strings.TrimSuffix(f.Input[start:end], "\r"), true
}

// EOF is the empty span at the end of the file.
func (f *File) EOF() Span {
	return Span{File: f, Start: len(f.Input), End: len(f.Input)}
}

type Span struct {
	File       *File
	Start, End int // byte offsets [start, end)
}

func (s Span) LocStart() (filename string, line int, col int) {
	if s.File == nil {
		return "", 0, 0
	}
	line, col = s.File.LineCol(s.Start)
	return s.File.Name, line, col
}

func (s Span) Text() string {
	if s.File == nil || s.Start < 0 || s.End > len(s.File.Input) || s.Start > s.End {
		return ""
	}
	return s.File.Input[s.Start:s.End]
}

// Join returns the smallest span covering a and b.
func Join(a, b Span) Span {
	if a.File == nil {
		return b
	}
	if b.File == nil {
		return a
	}
	start := a.Start
	if b.Start < start {
		start = b.Start
	}
	end := a.End
	if b.End > end {
		end = b.End
	}
	return Span{File: a.File, Start: start, End: end}
}
