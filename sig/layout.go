package sig

import (
	"strconv"
	"strings"
)

// Field is one named, fixed-width field of a Layout, in declaration order.
type Field struct {
	Name  string
	Width uint32 // bits
}

// Layout is a named, typed record: an ordered list of Fields. Two layouts
// are structurally equal iff they have the same field names, widths and
// order (spec.md §4.1).
type Layout []Field

// Bits returns the total bit width of the layout.
func (l Layout) Bits() uint32 {
	var total uint32
	for _, f := range l {
		total += f.Width
	}
	return total
}

// Equal reports whether l and other describe the same record shape.
func (l Layout) Equal(other Layout) bool {
	if len(l) != len(other) {
		return false
	}
	for i := range l {
		if l[i].Name != other[i].Name || l[i].Width != other[i].Width {
			return false
		}
	}
	return true
}

// key returns a stable string uniquely identifying the layout's shape, used
// only for human-readable diagnostics — identity comparisons always use
// Equal, never this string, so two layouts that differ only by a field name
// containing the separator below still compare correctly via Equal.
func (l Layout) key() string {
	var b strings.Builder
	for i, f := range l {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(f.Name)
		b.WriteByte(':')
		b.WriteString(strconv.FormatUint(uint64(f.Width), 10))
	}
	return b.String()
}
