// Package link maintains the telemetry link catalog: named, rate-scoped
// groups of telemetry variables destined for a single downlink message.
// The catalog answers size, description, and membership queries over the
// link rows loaded from the project database. Sizing accounts for bit-field
// packing: a member that is structurally adjacent to the previous member and
// shares its byte offset contributes no additional bytes.
//
// None of the catalog operations fail: a missing link, header row, or
// variable is reported through an empty or zero result, which callers must
// treat as a legitimate outcome.
package link

import (
	"strings"

	"github.com/mderrick/schedgen/internal/layout"
)

// Definition is one persisted link row. Member is either the link's header
// ("<sampleRate>,<description>", recognizable because it starts with a
// digit) or a member variable path
// ("<structurePath>.<dataType>.<variableName>[:<bitLength>]").
type Definition struct {
	RateName string
	LinkName string
	Member   string
}

// ID names a link by its (rate column, link name) pair.
type ID struct {
	Rate string
	Name string
}

// Catalog owns the link definitions for one build invocation. Member row
// order is preserved exactly as loaded; it drives bit-pack adjacency
// detection and must not be reordered.
type Catalog struct {
	defs   []Definition
	index  *layout.Index
	expand layout.ExpandFunc

	// StreamName translates a rate column name to its human-readable data
	// stream name. Optional; a nil func leaves rate names untranslated.
	streamName func(rateName string) (string, bool)

	// onPrune, when set, observes each row dropped during construction.
	onPrune func(Definition)
}

// Option configures optional catalog collaborators.
type Option func(*Catalog)

// WithStreamNames supplies the rate-column-to-data-stream translation used
// by VariableLinks.
func WithStreamNames(fn func(rateName string) (string, bool)) Option {
	return func(c *Catalog) { c.streamName = fn }
}

// WithPruneObserver registers a callback invoked for every link row dropped
// because its variable no longer resolves. The prune itself stays silent;
// the observer exists for telemetry.
func WithPruneObserver(fn func(Definition)) Option {
	return func(c *Catalog) { c.onPrune = fn }
}

// NewCatalog indexes the given link rows against the variable layout index.
// Any non-header row whose macro-expanded variable path does not resolve in
// the index is silently dropped: a link member for a vanished variable is
// not an error, it simply no longer exists.
func NewCatalog(defs []Definition, index *layout.Index, expand layout.ExpandFunc, opts ...Option) *Catalog {
	if expand == nil {
		expand = func(s string) string { return s }
	}
	c := &Catalog{
		defs:   make([]Definition, 0, len(defs)),
		index:  index,
		expand: expand,
	}
	for _, opt := range opts {
		opt(c)
	}

	for _, def := range defs {
		if isVariableRow(def.Member) {
			if _, ok := index.Position(expand(def.Member)); !ok {
				if c.onPrune != nil {
					c.onPrune(def)
				}
				continue
			}
		}
		c.defs = append(c.defs, def)
	}
	return c
}

// Definitions returns the catalog's surviving link rows in stored order.
func (c *Catalog) Definitions() []Definition {
	return c.defs
}

// Links returns the distinct (rate, link) pairs present in the catalog, in
// first-seen row order.
func (c *Catalog) Links() []ID {
	var ids []ID
	seen := make(map[ID]bool)
	for _, def := range c.defs {
		id := ID{Rate: def.RateName, Name: def.LinkName}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}

// DefinitionsByName returns the member rows (header excluded) of the link
// with the given name and rate.
func (c *Catalog) DefinitionsByName(linkName, rateName string) []Definition {
	var defs []Definition
	for _, def := range c.defs {
		if def.RateName == rateName &&
			def.LinkName == linkName &&
			!isHeaderRow(def.Member) {
			defs = append(defs, def)
		}
	}
	return defs
}

// DefinitionIndex returns the row index of the definition exactly matching
// the given rate name, link name, and member, or -1 if no row matches.
func (c *Catalog) DefinitionIndex(rateName, linkName, member string) int {
	for i, def := range c.defs {
		if def.RateName == rateName &&
			def.LinkName == linkName &&
			def.Member == member {
			return i
		}
	}
	return -1
}

// SizeInBytes totals the byte footprint of the named link. Member rows are
// walked in stored order; a member bit-packed with the previous one (same
// rate and link, position immediately following, identical byte offset)
// contributes no additional bytes. Returns 0 for an empty or unknown link.
func (c *Catalog) SizeInBytes(rateName, name string) int {
	lastRate := ""
	lastName := ""
	lastIndex := -1
	lastOffset := -1
	size := 0

	for _, def := range c.defs {
		if def.RateName != rateName ||
			def.LinkName != name ||
			!isVariableRow(def.Member) {
			continue
		}

		member := c.expand(def.Member)

		// The data type is the path segment between the last comma and the
		// last dot.
		dataType := member[strings.LastIndex(member, ",")+1 : strings.LastIndex(member, ".")]

		// A variable's bit length is ignored when resolving its position.
		index, ok := c.index.Position(member)
		if !ok {
			continue
		}
		offset := c.index.OffsetAt(index)

		// The member is bit-packed with the previous one only if it
		// immediately follows it in the layout and shares its offset.
		if !(def.RateName == lastRate &&
			def.LinkName == lastName &&
			index == lastIndex+1 &&
			offset == lastOffset) {
			size += c.index.TypeSize(dataType)
		}

		lastRate = def.RateName
		lastName = def.LinkName
		lastIndex = index
		lastOffset = offset
	}

	return size
}

// Description returns the description of the named link, taken from its
// header row. Returns a blank string if the link or its header row does not
// exist.
func (c *Catalog) Description(rateName, name string) string {
	if header, ok := c.headerRow(rateName, name); ok {
		if _, desc, found := strings.Cut(header, ","); found {
			return desc
		}
	}
	return ""
}

// Rate returns the sample rate of the named link, taken from its header
// row. Returns a blank string if the link or its header row does not exist.
func (c *Catalog) Rate(rateName, name string) string {
	if header, ok := c.headerRow(rateName, name); ok {
		rate, _, _ := strings.Cut(header, ",")
		return rate
	}
	return ""
}

// VariableLinks returns every (rate, link) pair the given variable belongs
// to. Both sides of the comparison are macro-expanded first. When useStream
// is true the rate column name is replaced with its data stream name, where
// a translation exists.
func (c *Catalog) VariableLinks(variable string, useStream bool) []ID {
	target := c.expand(variable)

	var links []ID
	for _, def := range c.defs {
		if isHeaderRow(def.Member) || c.expand(def.Member) != target {
			continue
		}

		rateName := def.RateName
		if useStream && c.streamName != nil {
			if stream, ok := c.streamName(rateName); ok {
				rateName = stream
			}
		}
		links = append(links, ID{Rate: rateName, Name: def.LinkName})
	}
	return links
}

// VariableLink returns the name of the link the given variable belongs to
// for the given rate. Unlike VariableLinks the comparison is exact, with no
// macro expansion. The second return is false if no match exists.
func (c *Catalog) VariableLink(variable, rateName string) (string, bool) {
	for _, def := range c.defs {
		if !isHeaderRow(def.Member) &&
			def.Member == variable &&
			def.RateName == rateName {
			return def.LinkName, true
		}
	}
	return "", false
}

// ApplicationNames collects the distinct application-name field values of
// the parent tables referenced by the catalog's member rows. fieldValue
// looks up the application-name data field of a parent table; an empty
// return means the table has no such field.
func (c *Catalog) ApplicationNames(fieldValue func(owner string) string) []string {
	var names []string
	seen := make(map[string]bool)

	for _, def := range c.defs {
		if isHeaderRow(def.Member) {
			continue
		}

		// The parent table is the path up to the first comma.
		owner, _, _ := strings.Cut(def.Member, ",")

		name := fieldValue(owner)
		if name != "" && !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

// headerRow locates the header row for the named link and returns its
// member field.
func (c *Catalog) headerRow(rateName, name string) (string, bool) {
	for _, def := range c.defs {
		if def.RateName == rateName &&
			def.LinkName == name &&
			isHeaderRow(def.Member) {
			return def.Member, true
		}
	}
	return "", false
}

// isHeaderRow reports whether the member field is a link's rate/description
// header. Header rows start with a digit (the sample rate); variable paths
// never do.
func isHeaderRow(member string) bool {
	return len(member) > 0 && member[0] >= '0' && member[0] <= '9'
}

// isVariableRow reports whether the member field references a variable path.
func isVariableRow(member string) bool {
	return strings.Contains(member, ".") && !isHeaderRow(member)
}
