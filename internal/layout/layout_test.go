package layout

import "testing"

// testTypes is the primitive size table used throughout the tests.
func testTypes() *TypeTable {
	return NewTypeTable(map[string]int{
		"uint8":  1,
		"uint16": 2,
		"uint32": 4,
		"int32":  4,
		"float":  4,
	})
}

// buildIndex builds an index from bare path strings.
func buildIndex(t *testing.T, paths []string, expand ExpandFunc) *Index {
	t.Helper()
	entries := make([]Entry, len(paths))
	for i, p := range paths {
		entries[i] = Entry{Path: p}
	}
	return Build(entries, testTypes(), expand)
}

func TestBuildOffsets(t *testing.T) {
	t.Parallel()

	idx := buildIndex(t, []string{
		"HK",
		"HK,uint32.counter",
		"HK,uint8.flags:4",
		"HK,uint8.mode:4",
		"HK,uint16.volts",
	}, nil)

	tests := []struct {
		path   string
		offset int
	}{
		{"HK,uint32.counter", 0},
		{"HK,uint8.flags", 4},
		{"HK,uint8.mode", 4}, // bit-packed with flags
		{"HK,uint16.volts", 5},
	}
	for _, tt := range tests {
		got, ok := idx.Offset(tt.path)
		if !ok {
			t.Fatalf("Offset(%q): not found", tt.path)
		}
		if got != tt.offset {
			t.Errorf("Offset(%q) = %d, want %d", tt.path, got, tt.offset)
		}
	}

	// The root structure's slot holds its total size: 4 + 1 (packed pair) + 2.
	if size := idx.TypeSize("HK"); size != 7 {
		t.Errorf("TypeSize(HK) = %d, want 7", size)
	}
}

func TestBuildBitPacking(t *testing.T) {
	t.Parallel()

	t.Run("overflow starts a new byte", func(t *testing.T) {
		t.Parallel()
		idx := buildIndex(t, []string{
			"S",
			"S,uint8.a:4",
			"S,uint8.b:4",
			"S,uint8.c:4", // 12 bits > 8: cannot pack with a and b
		}, nil)

		if off, _ := idx.Offset("S,uint8.b"); off != 0 {
			t.Errorf("Offset(b) = %d, want 0", off)
		}
		if off, _ := idx.Offset("S,uint8.c"); off != 1 {
			t.Errorf("Offset(c) = %d, want 1", off)
		}
	})

	t.Run("type change breaks the run", func(t *testing.T) {
		t.Parallel()
		idx := buildIndex(t, []string{
			"S",
			"S,uint8.a:4",
			"S,uint16.b:4",
		}, nil)

		if off, _ := idx.Offset("S,uint16.b"); off != 1 {
			t.Errorf("Offset(b) = %d, want 1", off)
		}
	})

	t.Run("non-bit variable breaks the run", func(t *testing.T) {
		t.Parallel()
		idx := buildIndex(t, []string{
			"S",
			"S,uint8.a:4",
			"S,uint8.b",
		}, nil)

		if off, _ := idx.Offset("S,uint8.b"); off != 1 {
			t.Errorf("Offset(b) = %d, want 1", off)
		}
	})

	t.Run("macro-defined bit length", func(t *testing.T) {
		t.Parallel()
		expand := func(s string) string {
			if s == "##FLAG_BITS##" {
				return "4"
			}
			return s
		}
		idx := buildIndex(t, []string{
			"S",
			"S,uint8.a:##FLAG_BITS##",
			"S,uint8.b:4",
		}, expand)

		// Both fit in one byte, so b shares a's offset.
		if off, _ := idx.Offset("S,uint8.b"); off != 0 {
			t.Errorf("Offset(b) = %d, want 0", off)
		}
	})
}

func TestBuildMultipleRoots(t *testing.T) {
	t.Parallel()

	idx := buildIndex(t, []string{
		"HK",
		"HK,uint32.counter",
		"ACS",
		"ACS,float.rate",
		"ACS,float.bias",
	}, nil)

	if size := idx.TypeSize("HK"); size != 4 {
		t.Errorf("TypeSize(HK) = %d, want 4", size)
	}
	if size := idx.TypeSize("ACS"); size != 8 {
		t.Errorf("TypeSize(ACS) = %d, want 8", size)
	}
	if off, _ := idx.Offset("ACS,float.bias"); off != 4 {
		t.Errorf("Offset(ACS,float.bias) = %d, want 4", off)
	}

	// A root structure reference has offset 0.
	if off, ok := idx.Offset("ACS"); !ok || off != 0 {
		t.Errorf("Offset(ACS) = %d, %v; want 0, true", off, ok)
	}
}

func TestPosition(t *testing.T) {
	t.Parallel()

	idx := buildIndex(t, []string{
		"S",
		"S,uint8.a:4",
		"S,uint8.b:4",
	}, nil)

	// Bit lengths are ignored when resolving a position.
	i, ok := idx.Position("S,uint8.a:4")
	if !ok || i != 1 {
		t.Errorf("Position(a:4) = %d, %v; want 1, true", i, ok)
	}
	j, ok := idx.Position("S,uint8.b")
	if !ok || j != 2 {
		t.Errorf("Position(b) = %d, %v; want 2, true", j, ok)
	}
	if _, ok := idx.Position("S,uint8.missing"); ok {
		t.Error("Position(missing) = ok, want not found")
	}
}

func TestTypeSize(t *testing.T) {
	t.Parallel()

	idx := buildIndex(t, []string{
		"S",
		"S,uint16.a",
	}, nil)

	if size := idx.TypeSize("uint16"); size != 2 {
		t.Errorf("TypeSize(uint16) = %d, want 2", size)
	}
	if size := idx.TypeSize("S"); size != 2 {
		t.Errorf("TypeSize(S) = %d, want 2", size)
	}
	if size := idx.TypeSize("nonexistent"); size != 0 {
		t.Errorf("TypeSize(nonexistent) = %d, want 0", size)
	}
}

func TestBuildEmpty(t *testing.T) {
	t.Parallel()

	idx := Build(nil, testTypes(), nil)
	if idx.Len() != 0 {
		t.Errorf("Len() = %d, want 0", idx.Len())
	}
	if _, ok := idx.Offset("anything"); ok {
		t.Error("Offset on empty index = ok, want not found")
	}
}
