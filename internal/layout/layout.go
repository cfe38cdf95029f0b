// Package layout builds the variable layout index: the ordered list of every
// structure and variable path in the project, together with each variable's
// byte offset relative to its root structure. Offsets account for bit-field
// packing, and each root structure's slot in the offset list holds the
// structure's total size in bytes instead of an offset. The index is the
// authority the link catalog consults for adjacency and sizing decisions.
package layout

import (
	"strconv"
	"strings"
)

// ExpandFunc normalizes a path or value by expanding macro references.
// A nil ExpandFunc is treated as the identity function.
type ExpandFunc func(string) string

// Entry is one row of the ordered variable tree. Path is either a root
// structure name ("Root") or a full variable path
// ("Root,type.name[,type.name...][:bitLength]"). Order is significant:
// entries must appear in their structural (preorder) position, since
// bit-packing is detected between consecutive entries.
type Entry struct {
	Path string
}

// Index holds the variable paths and their computed offsets. Paths keep the
// order in which they were supplied; offsets are parallel to paths.
type Index struct {
	paths   []string
	offsets []int
	byPath  map[string]int
	types   *TypeTable
	expand  ExpandFunc

	// Running bit-pack state used while building.
	bitCount      int
	lastByteSize  int
	lastDataType  string
	lastBitLength int
}

// Build walks the ordered variable entries and computes the offset of every
// variable relative to its root structure. Consecutive bit-field variables of
// the same primitive type share storage (and an offset) as long as their
// accumulated bits fit in the type. Bit lengths may contain macro references,
// which are expanded before parsing.
func Build(entries []Entry, types *TypeTable, expand ExpandFunc) *Index {
	if expand == nil {
		expand = func(s string) string { return s }
	}
	idx := &Index{
		byPath: make(map[string]int, len(entries)),
		types:  types,
		expand: expand,
	}

	offset := 0
	lastIndex := 0
	structIndex := 0

	for _, entry := range entries {
		path := entry.Path

		// A path with a data type segment is a variable; without one it is a
		// root structure reference.
		if hasDataType(path) {
			dataType := dataTypeOf(path)

			if types.IsPrimitive(dataType) {
				bitLength := ""

				if colon := strings.Index(path, ":"); colon != -1 {
					// The bit length may be macro-defined.
					bitLength = expand(path[colon+1:])
					path = path[:colon]
				}

				offset = idx.adjustOffset(dataType, bitLength, offset)
			} else {
				// A child structure ends any bit-pack run.
				offset += idx.lastByteSize
				idx.resetBitState()
			}
		} else {
			// Start of a new root structure. Store the previous structure's
			// size in its own list slot before resetting the offset.
			if lastIndex != 0 {
				offset = idx.adjustOffset(idx.lastDataType, "", offset)
				idx.offsets[structIndex] = offset
				structIndex = lastIndex
			}
			offset = 0
			idx.resetBitState()
		}

		idx.paths = append(idx.paths, path)
		idx.offsets = append(idx.offsets, offset)
		if _, exists := idx.byPath[path]; !exists {
			// First occurrence wins, matching ordered-list search semantics.
			idx.byPath[path] = lastIndex
		}
		lastIndex++
	}

	// Close out the final structure.
	if lastIndex != 0 {
		offset = idx.adjustOffset(idx.lastDataType, "", offset)
		idx.offsets[structIndex] = offset
	}

	return idx
}

// Position returns the ordinal position of the given structure or variable
// path within the index. Any bit length suffix is ignored.
func (x *Index) Position(path string) (int, bool) {
	i, ok := x.byPath[stripBitLength(path)]
	return i, ok
}

// OffsetAt returns the stored offset value at the given position. For a root
// structure position this is the structure's total size.
func (x *Index) OffsetAt(i int) int {
	return x.offsets[i]
}

// Offset returns the byte offset of the given variable relative to its root
// structure. A root structure reference (a path without a variable) has
// offset 0. The second return is false if the path is not in the index.
func (x *Index) Offset(path string) (int, bool) {
	i, ok := x.Position(path)
	if !ok {
		return 0, false
	}
	if !strings.Contains(path, ",") {
		// The list slot for a root structure holds its size, not an offset.
		return 0, true
	}
	return x.offsets[i], true
}

// TypeSize returns the size in bytes of a primitive or structure type name.
// Structure sizes come from the index; unknown names yield 0.
func (x *Index) TypeSize(name string) int {
	if x.types.IsPrimitive(name) {
		return x.types.SizeOf(name)
	}
	if i, ok := x.byPath[name]; ok {
		return x.offsets[i]
	}
	return 0
}

// Len returns the number of entries in the index.
func (x *Index) Len() int {
	return len(x.paths)
}

// adjustOffset advances the offset past the previous variable, unless the
// current variable bit-packs with it. Variables pack when both carry a bit
// length, share a data type, and the accumulated bits still fit in the type.
func (x *Index) adjustOffset(dataType, bitLength string, offset int) int {
	byteSize := x.types.SizeOf(dataType)

	bits := 0
	if n, err := strconv.Atoi(bitLength); err == nil && n >= 0 {
		bits = n
	}
	x.bitCount += bits

	if bits == 0 ||
		x.lastBitLength == 0 ||
		dataType != x.lastDataType ||
		x.bitCount > byteSize*8 {
		x.bitCount = bits
		offset += x.lastByteSize
	}

	x.lastByteSize = byteSize
	x.lastDataType = dataType
	x.lastBitLength = bits

	return offset
}

// resetBitState clears the running bit-pack state between structures.
func (x *Index) resetBitState() {
	x.bitCount = 0
	x.lastByteSize = 0
	x.lastDataType = ""
	x.lastBitLength = 0
}

// hasDataType reports whether the path contains a data type segment,
// i.e. it names a variable rather than a root structure.
func hasDataType(path string) bool {
	comma := strings.Index(path, ",")
	if comma == -1 {
		return false
	}
	return strings.Contains(path[comma+1:], ".")
}

// dataTypeOf extracts the data type from the final path segment: the text
// between the last comma and the last dot.
func dataTypeOf(path string) string {
	return path[strings.LastIndex(path, ",")+1 : strings.LastIndex(path, ".")]
}

// stripBitLength removes a ":bitLength" suffix, if present.
func stripBitLength(path string) string {
	if colon := strings.Index(path, ":"); colon != -1 {
		return path[:colon]
	}
	return path
}
