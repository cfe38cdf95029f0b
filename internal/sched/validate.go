package sched

// Validator reconciles cached application entries with the authoritative
// records before scheduling. An entry is either fully refreshed from its
// record or removed; no partially-valid entry survives validation.
type Validator struct {
	// Records maps application name to its authoritative record.
	Records map[string]Record
}

// Validate checks every roster entry against its record. An entry with no
// record, or whose cached rate differs from the record's rate (exact
// equality, no tolerance), is invalid: it is removed from the roster and
// purged from every time slot that references it. A valid entry has every
// other cached attribute refreshed from the record.
//
// The returned roster preserves the order of the surviving entries; removed
// lists the pruned entries so the caller can report them as one aggregate
// warning. Validation is idempotent: a second pass over an already
// consistent roster removes nothing.
func (v *Validator) Validate(roster []*Entry, slots []*Slot) (remaining, removed []*Entry) {
	for _, app := range roster {
		rec, ok := v.Records[app.Name]
		if !ok || rec.Rate != app.Rate {
			removed = append(removed, app)
			continue
		}

		refresh(app, rec)
		remaining = append(remaining, app)
	}

	// Purge pruned applications from the slots that reference them so no
	// slot retains a dangling entry.
	for _, app := range removed {
		for _, i := range app.Slots {
			if i >= 0 && i < len(slots) {
				slots[i].Remove(app.Name)
			}
		}
	}

	return remaining, removed
}

// refresh overwrites every cached attribute other than the rate (already
// known to match) from the authoritative record.
func refresh(app *Entry, rec Record) {
	if app.ExecutionTime != rec.ExecutionTime {
		app.ExecutionTime = rec.ExecutionTime
	}
	if app.Priority != rec.Priority {
		app.Priority = rec.Priority
	}
	if app.WakeUpID != rec.WakeUpID {
		app.WakeUpID = rec.WakeUpID
	}
	if app.WakeUpName != rec.WakeUpName {
		app.WakeUpName = rec.WakeUpName
	}
	if app.HkSendRate != rec.HkSendRate {
		app.HkSendRate = rec.HkSendRate
	}
	if app.SchedGroup != rec.SchedGroup {
		app.SchedGroup = rec.SchedGroup
	}
}
