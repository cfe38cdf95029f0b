package sched

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDefines(t *testing.T) {
	t.Parallel()

	b := &Builder{SlotsPerPeriod: 4, CommandsPerTable: 8}

	t.Run("sorted ascending by numeric value", func(t *testing.T) {
		t.Parallel()
		apps := []*Entry{
			{Name: "cs", WakeUpID: "0x10"},
			{Name: "ci", WakeUpID: "0x2"},
		}
		want := []Define{
			{Symbol: "CI_WAKEUP_MID", ID: 2},
			{Symbol: "CS_WAKEUP_MID", ID: 16},
		}
		if diff := cmp.Diff(want, b.Defines(apps)); diff != "" {
			t.Errorf("Defines mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("collision keeps first application", func(t *testing.T) {
		t.Parallel()
		apps := []*Entry{
			{Name: "ci", WakeUpID: "0x1"},
			{Name: "cs", WakeUpID: "0x1"},
		}
		want := []Define{{Symbol: "CI_WAKEUP_MID", ID: 1}}
		if diff := cmp.Diff(want, b.Defines(apps)); diff != "" {
			t.Errorf("Defines mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("unparseable ID skipped", func(t *testing.T) {
		t.Parallel()
		apps := []*Entry{
			{Name: "ci", WakeUpID: "garbage"},
			{Name: "cs", WakeUpID: "0x3"},
		}
		want := []Define{{Symbol: "CS_WAKEUP_MID", ID: 3}}
		if diff := cmp.Diff(want, b.Defines(apps)); diff != "" {
			t.Errorf("Defines mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestCommandTable(t *testing.T) {
	t.Parallel()

	b := &Builder{SlotsPerPeriod: 4, CommandsPerTable: 4}
	apps := []*Entry{
		{Name: "A", WakeUpID: "0x1"},
		{Name: "B", WakeUpID: "0x2"},
	}

	want := []string{"SCH_UNUSED_MID", "A_WAKEUP_MID", "B_WAKEUP_MID", "SCH_UNUSED_MID"}
	if diff := cmp.Diff(want, b.CommandTable(apps)); diff != "" {
		t.Errorf("CommandTable mismatch (-want +got):\n%s", diff)
	}
}

func TestScheduleEntries(t *testing.T) {
	t.Parallel()

	b := &Builder{SlotsPerPeriod: 4, CommandsPerTable: 8}

	t.Run("priority descending", func(t *testing.T) {
		t.Parallel()
		a := &Entry{Name: "A", WakeUpID: "0x1", Priority: 5, SchedGroup: "SCH_GROUP_CDH"}
		bb := &Entry{Name: "B", WakeUpID: "0x2", Priority: 10, SchedGroup: "SCH_GROUP_GNC"}
		apps := []*Entry{a, bb}
		slots := []*Slot{{Entries: []*Entry{a, bb}}}

		rows := b.ScheduleEntries(slots, b.Defines(apps))
		if len(rows) != 1 {
			t.Fatalf("rows = %d, want 1", len(rows))
		}

		want := []Cell{
			{Enable: "SCH_ENABLED", Activity: "SCH_ACTIVITY_SEND_MSG", Frequency: "1", Remainder: "0", MessageIndex: "B_WAKEUP_MID", Group: "SCH_GROUP_GNC"},
			{Enable: "SCH_ENABLED", Activity: "SCH_ACTIVITY_SEND_MSG", Frequency: "1", Remainder: "0", MessageIndex: "A_WAKEUP_MID", Group: "SCH_GROUP_CDH"},
			unusedCell,
			unusedCell,
		}
		if diff := cmp.Diff(want, rows[0]); diff != "" {
			t.Errorf("row mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("stable on priority ties", func(t *testing.T) {
		t.Parallel()
		first := &Entry{Name: "FIRST", WakeUpID: "0x1", Priority: 5}
		second := &Entry{Name: "SECOND", WakeUpID: "0x2", Priority: 5}
		apps := []*Entry{first, second}
		slots := []*Slot{{Entries: []*Entry{first, second}}}

		rows := b.ScheduleEntries(slots, b.Defines(apps))
		if rows[0][0].MessageIndex != "FIRST_WAKEUP_MID" || rows[0][1].MessageIndex != "SECOND_WAKEUP_MID" {
			t.Errorf("tied priorities reordered: %q, %q",
				rows[0][0].MessageIndex, rows[0][1].MessageIndex)
		}
	})

	t.Run("sort does not mutate the slot", func(t *testing.T) {
		t.Parallel()
		lo := &Entry{Name: "LO", WakeUpID: "0x1", Priority: 1}
		hi := &Entry{Name: "HI", WakeUpID: "0x2", Priority: 9}
		slot := &Slot{Entries: []*Entry{lo, hi}}

		b.ScheduleEntries([]*Slot{slot}, b.Defines([]*Entry{lo, hi}))
		if slot.Entries[0] != lo {
			t.Error("slot order mutated by table generation")
		}
	})

	t.Run("empty period is all unused at fixed width", func(t *testing.T) {
		t.Parallel()
		rows := b.ScheduleEntries([]*Slot{{}}, nil)
		if len(rows[0]) != b.SlotsPerPeriod {
			t.Fatalf("row width = %d, want %d", len(rows[0]), b.SlotsPerPeriod)
		}
		for i, cell := range rows[0] {
			if diff := cmp.Diff(unusedCell, cell); diff != "" {
				t.Errorf("cell %d not unused (-want +got):\n%s", i, diff)
			}
		}
	})
}

func TestGroups(t *testing.T) {
	t.Parallel()

	b := &Builder{}
	apps := []*Entry{
		{Name: "A", SchedGroup: "SCH_GROUP_CDH"},
		{Name: "B", SchedGroup: "SCH_GROUP_GNC"},
		{Name: "C", SchedGroup: "SCH_GROUP_CDH"},
		{Name: "D"}, // no group
	}

	want := []string{"SCH_GROUP_CDH", "SCH_GROUP_GNC"}
	if diff := cmp.Diff(want, b.Groups(apps)); diff != "" {
		t.Errorf("Groups mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildDeterminism(t *testing.T) {
	t.Parallel()

	build := func() ([]Define, []string, [][]Cell) {
		a := &Entry{Name: "A", WakeUpID: "0x1", Priority: 5, SchedGroup: "SCH_GROUP_CDH"}
		bb := &Entry{Name: "B", WakeUpID: "0x2", Priority: 10, SchedGroup: "SCH_GROUP_GNC"}
		apps := []*Entry{a, bb}
		slots := []*Slot{{Entries: []*Entry{a, bb}}, {Entries: []*Entry{bb}}}

		b := &Builder{SlotsPerPeriod: 3, CommandsPerTable: 6}
		defines := b.Defines(apps)
		return defines, b.CommandTable(apps), b.ScheduleEntries(slots, defines)
	}

	d1, c1, s1 := build()
	d2, c2, s2 := build()
	if diff := cmp.Diff(d1, d2); diff != "" {
		t.Errorf("defines differ between identical builds:\n%s", diff)
	}
	if diff := cmp.Diff(c1, c2); diff != "" {
		t.Errorf("command tables differ between identical builds:\n%s", diff)
	}
	if diff := cmp.Diff(s1, s2); diff != "" {
		t.Errorf("schedule tables differ between identical builds:\n%s", diff)
	}
}
