package export

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mderrick/schedgen/internal/gen"
	"github.com/mderrick/schedgen/internal/sched"
)

// testResult builds a small but complete build result.
func testResult() *gen.Result {
	return &gen.Result{
		Defines: []sched.Define{
			{Symbol: "CI_WAKEUP_MID", ID: 1},
			{Symbol: "CS_WAKEUP_MID", ID: 2},
		},
		Commands: []string{"SCH_UNUSED_MID", "CI_WAKEUP_MID", "CS_WAKEUP_MID"},
		Schedule: [][]sched.Cell{
			{
				{Enable: "SCH_ENABLED", Activity: "SCH_ACTIVITY_SEND_MSG", Frequency: "1", Remainder: "0", MessageIndex: "CI_WAKEUP_MID", Group: "SCH_GROUP_CDH"},
				{Enable: "SCH_UNUSED", Activity: "0", Frequency: "0", Remainder: "0", MessageIndex: "0", Group: "SCH_GROUP_NONE"},
			},
		},
		Groups:  []string{"SCH_GROUP_CDH"},
		Removed: []string{"STALE_APP"},
		Links: []gen.LinkReport{
			{RateName: "1", LinkName: "HK_LINK", SampleRate: "1", Description: "Housekeeping", SizeBytes: 12},
		},
	}
}

func TestRenderDefines(t *testing.T) {
	t.Parallel()

	out := string(RenderDefines(testResult().Defines))
	if !strings.Contains(out, "#define CI_WAKEUP_MID") {
		t.Errorf("defines output missing CI symbol:\n%s", out)
	}
	if !strings.Contains(out, " 2\n") {
		t.Errorf("defines output missing numeric value:\n%s", out)
	}
}

func TestRenderMessageTable(t *testing.T) {
	t.Parallel()

	out := string(RenderMessageTable(testResult().Commands))
	if !strings.Contains(out, "SCH_DefaultMessageTable[3]") {
		t.Errorf("message table missing sized declaration:\n%s", out)
	}
	if !strings.Contains(out, "{ SCH_UNUSED_MID }") {
		t.Errorf("message table missing unused sentinel:\n%s", out)
	}
}

func TestRenderScheduleTable(t *testing.T) {
	t.Parallel()

	res := testResult()
	out := string(RenderScheduleTable(res.Schedule, res.Groups))
	if !strings.Contains(out, "SCH_DefaultScheduleTable[1][2]") {
		t.Errorf("schedule table missing sized declaration:\n%s", out)
	}
	if !strings.Contains(out, "{ SCH_ENABLED, SCH_ACTIVITY_SEND_MSG, 1, 0, CI_WAKEUP_MID, SCH_GROUP_CDH }") {
		t.Errorf("schedule table missing used cell:\n%s", out)
	}
	if !strings.Contains(out, "SCH_GROUP_NONE") {
		t.Errorf("schedule table missing unused filler:\n%s", out)
	}
}

func TestRenderDeterminism(t *testing.T) {
	t.Parallel()

	res := testResult()
	a := string(RenderScheduleTable(res.Schedule, res.Groups))
	b := string(RenderScheduleTable(res.Schedule, res.Groups))
	if a != b {
		t.Error("schedule rendering differs between identical inputs")
	}
}

func TestWrite(t *testing.T) {
	t.Parallel()

	t.Run("writes all artifacts", func(t *testing.T) {
		t.Parallel()
		out := filepath.Join(t.TempDir(), "generated")
		if err := Write(testResult(), out, WriteOptions{}); err != nil {
			t.Fatalf("Write: %v", err)
		}

		for _, name := range []string{DefinesFile, MessageFile, ScheduleFile, ReportFile} {
			if _, err := os.Stat(filepath.Join(out, name)); err != nil {
				t.Errorf("missing artifact %s: %v", name, err)
			}
		}

		report, err := os.ReadFile(filepath.Join(out, ReportFile))
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(report), "STALE_APP") {
			t.Errorf("report missing removed application:\n%s", report)
		}
		if !strings.Contains(string(report), "HK_LINK") {
			t.Errorf("report missing link summary:\n%s", report)
		}
	})

	t.Run("refuses to overwrite without force", func(t *testing.T) {
		t.Parallel()
		out := filepath.Join(t.TempDir(), "generated")
		if err := Write(testResult(), out, WriteOptions{}); err != nil {
			t.Fatalf("first Write: %v", err)
		}

		err := Write(testResult(), out, WriteOptions{})
		if !errors.Is(err, ErrDirExists) {
			t.Errorf("got %v, want ErrDirExists", err)
		}

		if err := Write(testResult(), out, WriteOptions{Overwrite: true}); err != nil {
			t.Errorf("overwrite Write: %v", err)
		}
	})
}
