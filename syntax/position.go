package syntax

import (
	"unicode/utf8"
)

// Resolve returns the smallest node covering p, or nil when p lies outside
// the root. A cursor sitting exactly at the end of the document still counts
// as inside the root. Below the root a child covers p when
// start <= p < end, and the first covering child in order wins.
func Resolve(root Node, p Point) Node {
	path := ResolvePath(root, p)
	if len(path) == 0 {
		return nil
	}
	return path[len(path)-1]
}

// ResolvePath is Resolve keeping every node on the way down, root first.
func ResolvePath(root Node, p Point) []Node {
	if root == nil {
		return nil
	}
	if p.Less(root.StartPoint()) || root.EndPoint().Less(p) {
		return nil
	}

	path := []Node{root}
	node := root
descend:
	for {
		for i := 0; i < node.ChildCount(); i++ {
			child := node.Child(i)
			if child == nil {
				continue
			}
			if covers(child, p) {
				node = child
				path = append(path, child)
				continue descend
			}
		}
		return path
	}
}

func covers(node Node, p Point) bool {
	return !p.Less(node.StartPoint()) && p.Less(node.EndPoint())
}

// PointFromUTF16 converts an editor position (zero-based line, UTF-16 code
// unit offset) into a byte-column Point for text. Characters past the end of
// the line clamp to the line end; lines past the end of the text are passed
// through unchanged so that they resolve to nothing.
func PointFromUTF16(text []byte, line, character uint32) Point {
	start, ok := lineStart(text, line)
	if !ok {
		return Point{Row: line, Column: character}
	}

	column := uint32(0)
	units := uint32(0)
	for i := start; i < len(text) && units < character; {
		r, size := utf8.DecodeRune(text[i:])
		if r == '\n' {
			break
		}
		if r >= 0x10000 {
			units += 2
		} else {
			units++
		}
		column += uint32(size)
		i += size
	}
	return Point{Row: line, Column: column}
}

// UTF16Column converts the byte column of p into a UTF-16 code unit offset
// on the same line of text.
func UTF16Column(text []byte, p Point) uint32 {
	start, ok := lineStart(text, p.Row)
	if !ok {
		return p.Column
	}

	end := start + int(p.Column)
	if end > len(text) {
		end = len(text)
	}

	units := uint32(0)
	for i := start; i < end; {
		r, size := utf8.DecodeRune(text[i:])
		if r == '\n' {
			break
		}
		if r >= 0x10000 {
			units += 2
		} else {
			units++
		}
		i += size
	}
	return units
}

// ByteOffset converts p into an absolute byte offset in text, or -1 when the
// row does not exist.
func ByteOffset(text []byte, p Point) int {
	start, ok := lineStart(text, p.Row)
	if !ok {
		return -1
	}
	offset := start + int(p.Column)
	if offset > len(text) {
		offset = len(text)
	}
	return offset
}

func lineStart(text []byte, line uint32) (int, bool) {
	if line == 0 {
		return 0, true
	}
	row := uint32(0)
	for i, b := range text {
		if b == '\n' {
			row++
			if row == line {
				return i + 1, true
			}
		}
	}
	return 0, false
}
