package syntax

// Edit describes a single contiguous replacement: the bytes
// [StartByte, OldEndByte) of the old text became [StartByte, NewEndByte) of
// the new text.
type Edit struct {
	StartByte   uint32
	OldEndByte  uint32
	NewEndByte  uint32
	StartPoint  Point
	OldEndPoint Point
	NewEndPoint Point
}

// Empty reports whether the edit changes nothing.
func (e Edit) Empty() bool {
	return e.OldEndByte == e.StartByte && e.NewEndByte == e.StartByte
}

// DiffEdit computes the smallest single edit turning before into after by
// trimming their common prefix and suffix. Editors send the whole document on
// every change; this recovers the edited span so the grammar engine can reuse
// the untouched parts of the previous tree.
func DiffEdit(before, after []byte) Edit {
	limit := len(before)
	if len(after) < limit {
		limit = len(after)
	}

	prefix := 0
	for prefix < limit && before[prefix] == after[prefix] {
		prefix++
	}

	suffix := 0
	for suffix < limit-prefix && before[len(before)-1-suffix] == after[len(after)-1-suffix] {
		suffix++
	}

	oldEnd := len(before) - suffix
	newEnd := len(after) - suffix

	return Edit{
		StartByte:   uint32(prefix),
		OldEndByte:  uint32(oldEnd),
		NewEndByte:  uint32(newEnd),
		StartPoint:  pointAt(before, prefix),
		OldEndPoint: pointAt(before, oldEnd),
		NewEndPoint: pointAt(after, newEnd),
	}
}

// pointAt converts a byte offset into a (row, byte column) point.
func pointAt(text []byte, offset int) Point {
	var p Point
	for i := 0; i < offset && i < len(text); i++ {
		if text[i] == '\n' {
			p.Row++
			p.Column = 0
		} else {
			p.Column++
		}
	}
	return p
}
