// Package sched turns the persisted application roster and its time-slot
// assignment into the flight-software scheduler tables: the wake-up message
// ID defines, the flat command-index table, the 2-D schedule definition
// table, and the distinct schedule-group enumeration. Before any table is
// built the roster is reconciled against the authoritative per-application
// records; an application that no longer matches its record is pruned, not
// reported as a failure.
package sched

import "strconv"

// Symbols emitted into the generated tables.
const (
	SymbolEnabled         = "SCH_ENABLED"
	SymbolActivitySendMsg = "SCH_ACTIVITY_SEND_MSG"
	SymbolUnused          = "SCH_UNUSED"
	SymbolGroupNone       = "SCH_GROUP_NONE"
	SymbolUnusedMID       = "SCH_UNUSED_MID"
)

// Entry is one scheduled application as cached in the project database.
// Slots lists the indices of the time slots the application currently
// occupies, so a pruned application can be purged from every slot that
// references it.
type Entry struct {
	Name          string
	WakeUpID      string // hex-encoded, e.g. "0x1A"
	WakeUpName    string
	Priority      int
	ExecutionTime int
	Rate          float64
	SchedGroup    string
	HkSendRate    int
	Slots         []int
}

// Slot is one period of the cyclic scheduler table: an ordered container of
// up to slots-per-period application activations.
type Slot struct {
	Entries []*Entry
}

// Remove deletes the named application from the slot, preserving the order
// of the remaining entries.
func (s *Slot) Remove(name string) {
	kept := s.Entries[:0]
	for _, e := range s.Entries {
		if e.Name != name {
			kept = append(kept, e)
		}
	}
	s.Entries = kept
}

// Record is the authoritative per-application metadata, already typed by
// the store's mapping layer.
type Record struct {
	Rate          float64
	ExecutionTime int
	Priority      int
	WakeUpID      string
	WakeUpName    string
	HkSendRate    int
	SchedGroup    string
}

// decodeWakeUpID parses a wake-up ID string. Base is inferred from the
// prefix, so "0x1A", "26", and "032" all decode. The second return is false
// for an unparseable ID.
func decodeWakeUpID(s string) (int, bool) {
	n, err := strconv.ParseInt(s, 0, 32)
	if err != nil {
		return 0, false
	}
	return int(n), true
}
