// Package export writes the generated scheduler tables to disk: the
// wake-up message ID defines header, the message definition table source,
// the schedule definition table source, and a TOML build report. Output is
// written to a temp directory and swapped in atomically, so a failed build
// never leaves a half-written artifact set behind.
package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/mderrick/schedgen/internal/gen"
	"github.com/mderrick/schedgen/internal/sched"
)

// ErrDirExists indicates the output directory already exists and Overwrite
// was not set.
var ErrDirExists = errors.New("output directory already exists")

// Output file names.
const (
	DefinesFile  = "sch_def_ids.h"
	MessageFile  = "sch_def_msgtbl.c"
	ScheduleFile = "sch_def_schtbl.c"
	ReportFile   = "build_report.toml"
)

// WriteOptions controls how a result is written to disk.
type WriteOptions struct {
	Overwrite bool // If true, overwrite an existing output directory.
}

// Write renders all artifacts of the build result into outputDir. If the
// directory already exists and opts.Overwrite is false, Write returns
// ErrDirExists. On failure any partially written directory is removed.
func Write(res *gen.Result, outputDir string, opts WriteOptions) error {
	if info, err := os.Stat(outputDir); err == nil && info.IsDir() {
		if !opts.Overwrite {
			return fmt.Errorf("%w: %s; use --force to overwrite", ErrDirExists, outputDir)
		}
	}

	// Write to a temp directory first; rename atomically on success.
	tmpDir := outputDir + ".tmp"
	if err := os.RemoveAll(tmpDir); err != nil {
		return fmt.Errorf("export: cleaning temp directory: %w", err)
	}

	success := false
	defer func() {
		if !success {
			os.RemoveAll(tmpDir)
		}
	}()

	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		return fmt.Errorf("export: creating temp directory: %w", err)
	}

	files := map[string][]byte{
		DefinesFile:  RenderDefines(res.Defines),
		MessageFile:  RenderMessageTable(res.Commands),
		ScheduleFile: RenderScheduleTable(res.Schedule, res.Groups),
	}
	for name, data := range files {
		if err := os.WriteFile(filepath.Join(tmpDir, name), data, 0o644); err != nil {
			return fmt.Errorf("export: writing %s: %w", name, err)
		}
	}

	report, err := renderReport(res)
	if err != nil {
		return fmt.Errorf("export: marshaling report: %w", err)
	}
	if err := os.WriteFile(filepath.Join(tmpDir, ReportFile), report, 0o644); err != nil {
		return fmt.Errorf("export: writing %s: %w", ReportFile, err)
	}

	if err := os.RemoveAll(outputDir); err != nil {
		return fmt.Errorf("export: removing existing directory: %w", err)
	}
	if err := os.Rename(tmpDir, outputDir); err != nil {
		return fmt.Errorf("export: renaming temp to output directory: %w", err)
	}

	success = true
	return nil
}

// RenderDefines renders the wake-up message ID defines header.
func RenderDefines(defines []sched.Define) []byte {
	var b strings.Builder
	b.WriteString("/* Wake-up message ID defines. Generated by schedgen; do not edit. */\n\n")
	for _, d := range defines {
		fmt.Fprintf(&b, "#define %-40s %d\n", d.Symbol, d.ID)
	}
	return []byte(b.String())
}

// RenderMessageTable renders the flat command-index table source.
func RenderMessageTable(commands []string) []byte {
	var b strings.Builder
	b.WriteString("/* Message definition table. Generated by schedgen; do not edit. */\n\n")
	fmt.Fprintf(&b, "SCH_MessageEntry_t SCH_DefaultMessageTable[%d] =\n{\n", len(commands))
	for i, command := range commands {
		fmt.Fprintf(&b, "    /* %3d */  { %s },\n", i, command)
	}
	b.WriteString("};\n")
	return []byte(b.String())
}

// RenderScheduleTable renders the 2-D schedule definition table source. One
// block per period, one brace-wrapped line per sub-slot cell.
func RenderScheduleTable(rows [][]sched.Cell, groups []string) []byte {
	var b strings.Builder
	b.WriteString("/* Schedule definition table. Generated by schedgen; do not edit. */\n\n")

	if len(groups) > 0 {
		b.WriteString("/* Schedule groups: " + strings.Join(groups, ", ") + " */\n\n")
	}

	width := 0
	if len(rows) > 0 {
		width = len(rows[0])
	}
	fmt.Fprintf(&b, "SCH_ScheduleEntry_t SCH_DefaultScheduleTable[%d][%d] =\n{\n", len(rows), width)
	for period, row := range rows {
		fmt.Fprintf(&b, "    /* slot %d */\n", period)
		for _, cell := range row {
			fmt.Fprintf(&b, "    { %s, %s, %s, %s, %s, %s },\n",
				cell.Enable, cell.Activity, cell.Frequency,
				cell.Remainder, cell.MessageIndex, cell.Group)
		}
	}
	b.WriteString("};\n")
	return []byte(b.String())
}

// report is the TOML shape of the build report.
type report struct {
	Defines  int          `toml:"defines"`
	Periods  int          `toml:"periods"`
	Removed  []string     `toml:"removed_applications,omitempty"`
	Groups   []string     `toml:"schedule_groups,omitempty"`
	Links    []linkReport `toml:"links,omitempty"`
	Commands int          `toml:"commands_per_table"`
}

type linkReport struct {
	Rate        string `toml:"rate"`
	Name        string `toml:"name"`
	SampleRate  string `toml:"sample_rate,omitempty"`
	Description string `toml:"description,omitempty"`
	SizeBytes   int    `toml:"size_bytes"`
}

// renderReport marshals the build summary as TOML.
func renderReport(res *gen.Result) ([]byte, error) {
	r := report{
		Defines:  len(res.Defines),
		Periods:  len(res.Schedule),
		Removed:  res.Removed,
		Groups:   res.Groups,
		Commands: len(res.Commands),
	}
	for _, l := range res.Links {
		r.Links = append(r.Links, linkReport{
			Rate:        l.RateName,
			Name:        l.LinkName,
			SampleRate:  l.SampleRate,
			Description: l.Description,
			SizeBytes:   l.SizeBytes,
		})
	}
	return toml.Marshal(r)
}
