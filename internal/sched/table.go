package sched

import (
	"sort"
	"strings"
)

// Define is one wake-up message ID define statement: a symbolic constant
// and its numeric value.
type Define struct {
	Symbol string
	ID     int
}

// Cell is one sub-slot entry of the schedule definition table. The six
// fields are emitted as-is by the exporters.
type Cell struct {
	Enable       string // SCH_ENABLED or SCH_UNUSED
	Activity     string // SCH_ACTIVITY_SEND_MSG or "0"
	Frequency    string // "1" for a used cell, "0" otherwise
	Remainder    string // always "0"
	MessageIndex string // wake-up define symbol, or "0" for unused
	Group        string // schedule group symbol, or SCH_GROUP_NONE
}

// unusedCell fills sub-slots with no scheduled application.
var unusedCell = Cell{
	Enable:       SymbolUnused,
	Activity:     "0",
	Frequency:    "0",
	Remainder:    "0",
	MessageIndex: "0",
	Group:        SymbolGroupNone,
}

// Builder emits the scheduler tables from a validated roster and its slot
// assignment. Each build method is a pure function of its inputs; the
// builder holds only the table dimensions.
type Builder struct {
	// SlotsPerPeriod is the fixed number of sub-slot activations per
	// period. Every emitted schedule row has exactly this many cells.
	SlotsPerPeriod int

	// CommandsPerTable is the length of the flat command-index table.
	CommandsPerTable int
}

// Defines collects each application's numeric wake-up ID and emits one
// define per distinct ID, sorted ascending by numeric value. On an ID
// collision the first application encountered in the sorted order wins.
// Applications with an unparseable ID are skipped.
func (b *Builder) Defines(apps []*Entry) []Define {
	type appID struct {
		app *Entry
		id  int
	}

	ids := make([]appID, 0, len(apps))
	for _, app := range apps {
		if id, ok := decodeWakeUpID(app.WakeUpID); ok {
			ids = append(ids, appID{app: app, id: id})
		}
	}
	sort.SliceStable(ids, func(i, j int) bool { return ids[i].id < ids[j].id })

	defines := make([]Define, 0, len(ids))
	for _, ai := range ids {
		if n := len(defines); n > 0 && defines[n-1].ID == ai.id {
			continue
		}
		defines = append(defines, Define{Symbol: defineSymbol(ai.app), ID: ai.id})
	}
	return defines
}

// CommandTable allocates the flat command-index table. Index i holds the
// define symbol of the first application whose numeric wake-up ID equals i,
// or the SCH_UNUSED_MID sentinel when no application matches.
func (b *Builder) CommandTable(apps []*Entry) []string {
	commands := make([]string, b.CommandsPerTable)

	for i := range commands {
		commands[i] = SymbolUnusedMID

		for _, app := range apps {
			if id, ok := decodeWakeUpID(app.WakeUpID); ok && id == i {
				commands[i] = defineSymbol(app)
				break
			}
		}
	}

	return commands
}

// ScheduleEntries builds the 2-D schedule definition table: one row per
// period, exactly SlotsPerPeriod cells per row. Within a period the
// applications are ordered by priority descending, stable on ties, so equal
// priorities keep their stored order. Sub-slots past the period's last
// application are filled with the unused sentinel cell.
func (b *Builder) ScheduleEntries(slots []*Slot, defines []Define) [][]Cell {
	rows := make([][]Cell, 0, len(slots))

	for _, slot := range slots {
		apps := prioritized(slot.Entries)

		row := make([]Cell, b.SlotsPerPeriod)
		for i := range row {
			if i >= len(apps) {
				row[i] = unusedCell
				continue
			}

			app := apps[i]
			row[i] = Cell{
				Enable:       SymbolEnabled,
				Activity:     SymbolActivitySendMsg,
				Frequency:    "1",
				Remainder:    "0",
				MessageIndex: messageIndex(defines, app),
				Group:        app.SchedGroup,
			}
		}
		rows = append(rows, row)
	}

	return rows
}

// Groups returns every distinct, non-empty schedule group referenced by the
// roster, in first-seen order.
func (b *Builder) Groups(apps []*Entry) []string {
	var groups []string
	seen := make(map[string]bool)
	for _, app := range apps {
		if app.SchedGroup != "" && !seen[app.SchedGroup] {
			seen[app.SchedGroup] = true
			groups = append(groups, app.SchedGroup)
		}
	}
	return groups
}

// prioritized returns the slot's applications sorted by priority
// descending. The sort is stable so equal priorities keep their stored
// order; the slot's own list is left untouched.
func prioritized(apps []*Entry) []*Entry {
	sorted := make([]*Entry, len(apps))
	copy(sorted, apps)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority > sorted[j].Priority
	})
	return sorted
}

// messageIndex resolves an application's wake-up define symbol from the
// define table; "0" if the ID has no define.
func messageIndex(defines []Define, app *Entry) string {
	if id, ok := decodeWakeUpID(app.WakeUpID); ok {
		for _, d := range defines {
			if d.ID == id {
				return d.Symbol
			}
		}
	}
	return "0"
}

// defineSymbol is the generated constant name for an application's wake-up
// message ID.
func defineSymbol(app *Entry) string {
	return strings.ToUpper(app.Name) + "_WAKEUP_MID"
}
