package layout

// TypeTable resolves primitive data type names to their size in bytes.
type TypeTable struct {
	sizes map[string]int
}

// NewTypeTable creates a TypeTable from a name → byte-size map.
func NewTypeTable(sizes map[string]int) *TypeTable {
	t := &TypeTable{sizes: make(map[string]int, len(sizes))}
	for name, size := range sizes {
		t.sizes[name] = size
	}
	return t
}

// IsPrimitive reports whether the given name is a known primitive type.
func (t *TypeTable) IsPrimitive(name string) bool {
	if t == nil {
		return false
	}
	_, ok := t.sizes[name]
	return ok
}

// SizeOf returns the size in bytes of a primitive type, or 0 if the name is
// not a known primitive.
func (t *TypeTable) SizeOf(name string) int {
	if t == nil {
		return 0
	}
	return t.sizes[name]
}
