package diag

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"minicc/internal/source"
)

// Class separates the user-facing error kinds.
type Class int

const (
	Semantic Class = iota
	Syntax
	Lexical
)

func (c Class) String() string {
	switch c {
	case Lexical:
		return "lexical error"
	case Syntax:
		return "syntax error"
	default:
		return "error"
	}
}

type Item struct {
	Filename string
	Line     int
	Col      int
	Class    Class
	Msg      string
}

func (it Item) String() string {
	return fmt.Sprintf("%s:%d:%d: %s: %s", it.Filename, it.Line, it.Col, it.Class, it.Msg)
}

type Bag struct {
	Items []Item
}

func (b *Bag) Add(filename string, line int, col int, msg string) {
	b.Items = append(b.Items, Item{Filename: filename, Line: line, Col: col, Msg: msg})
}

// AddSpan records a semantic error at the start of s.
func (b *Bag) AddSpan(s source.Span, msg string) {
	fn, line, col := s.LocStart()
	b.Add(fn, line, col, msg)
}

func (b *Bag) Empty() bool { return b == nil || len(b.Items) == 0 }

func Print(w io.Writer, b *Bag) {
	if b.Empty() {
		return
	}
	for _, it := range sorted(b) {
		fmt.Fprintln(w, it.String())
	}
}

// PrintWithSource is Print followed, for each item, by the offending line and a caret.
func PrintWithSource(w io.Writer, b *Bag, f *source.File) {
	if b.Empty() {
		return
	}
	for _, it := range sorted(b) {
		fmt.Fprintln(w, it.String())
		if f == nil || it.Filename != f.Name {
			continue
		}
		line, ok := f.Line(it.Line)
		if !ok {
			continue
		}
		fmt.Fprintln(w, line)
		fmt.Fprintln(w, caret(line, it.Col))
	}
}

// caret lines up '^' under a 1-based rune column; tabs are copied so the
// marker stays aligned regardless of tab width.
func caret(line string, col int) string {
	var sb strings.Builder
	i := 1
	for _, r := range line {
		if i >= col {
			break
		}
		if r == '\t' {
			sb.WriteByte('\t')
		} else {
			sb.WriteByte(' ')
		}
		i++
	}
	for ; i < col; i++ {
		sb.WriteByte(' ')
	}
	sb.WriteByte('^')
	return sb.String()
}

func sorted(b *Bag) []Item {
	items := make([]Item, 0, len(b.Items))
	items = append(items, b.Items...)
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Filename != items[j].Filename {
			return items[i].Filename < items[j].Filename
		}
		if items[i].Line != items[j].Line {
			return items[i].Line < items[j].Line
		}
		return items[i].Col < items[j].Col
	})
	return items
}
