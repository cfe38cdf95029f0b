// Package macro loads the project's macro table and expands ##name##
// references inside variable paths and bit lengths. Expansion is the
// normalization step injected into the layout and link packages, keeping
// them decoupled from how macros are stored.
package macro

import (
	"fmt"
	"os"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// maxDepth bounds nested expansion so a self-referencing macro table cannot
// loop forever.
const maxDepth = 10

// Expander substitutes macro references of the form ##name## with their
// values. A nil *Expander expands nothing and is safe to use.
type Expander struct {
	values map[string]string
}

// Load reads a macros.toml file mapping macro names to replacement values.
// A missing file yields an empty expander and no error, so projects without
// macros need no sidecar file.
func Load(path string) (*Expander, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Expander{}, nil
		}
		return nil, fmt.Errorf("macro: reading %s: %w", path, err)
	}

	var values map[string]string
	if err := toml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("macro: parsing %s: %w", path, err)
	}
	return &Expander{values: values}, nil
}

// New creates an expander from an in-memory macro table.
func New(values map[string]string) *Expander {
	return &Expander{values: values}
}

// Expand replaces every ##name## reference in s with the macro's value.
// Values may themselves contain references; expansion repeats until the
// string is stable or the depth bound is reached. Unknown macro names are
// left in place.
func (e *Expander) Expand(s string) string {
	if e == nil || len(e.values) == 0 {
		return s
	}

	for i := 0; i < maxDepth; i++ {
		expanded := s
		for name, value := range e.values {
			expanded = strings.ReplaceAll(expanded, "##"+name+"##", value)
		}
		if expanded == s {
			break
		}
		s = expanded
	}
	return s
}

// Func returns the expander as a plain function, the shape the layout and
// link packages accept. Safe on a nil receiver.
func (e *Expander) Func() func(string) string {
	return e.Expand
}
