// Package ui provides stderr/stdout-oriented plain-text rendering of the
// generated tables for the show and links subcommands.
package ui

import (
	"fmt"
	"strings"

	"github.com/mderrick/schedgen/internal/gen"
	"github.com/mderrick/schedgen/internal/sched"
)

// RenderSchedule renders the 2-D schedule table as a text grid: one line
// per period, one column per sub-slot. Used cells show the wake-up define
// symbol; unused cells show a dash.
func RenderSchedule(rows [][]sched.Cell) string {
	if len(rows) == 0 {
		return "(empty schedule)\n"
	}

	// Column width from the longest symbol.
	width := 1
	for _, row := range rows {
		for _, cell := range row {
			if s := cellLabel(cell); len(s) > width {
				width = len(s)
			}
		}
	}

	var b strings.Builder
	for period, row := range rows {
		fmt.Fprintf(&b, "%4d |", period)
		for _, cell := range row {
			fmt.Fprintf(&b, " %-*s", width, cellLabel(cell))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// RenderLinks renders the per-link report as an aligned table.
func RenderLinks(links []gen.LinkReport) string {
	if len(links) == 0 {
		return "(no links)\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-12s %-24s %6s %8s  %s\n", "RATE", "LINK", "SAMPLE", "BYTES", "DESCRIPTION")
	for _, l := range links {
		fmt.Fprintf(&b, "%-12s %-24s %6s %8d  %s\n",
			l.RateName, l.LinkName, l.SampleRate, l.SizeBytes, l.Description)
	}
	return b.String()
}

// cellLabel picks the short display form of a schedule cell.
func cellLabel(cell sched.Cell) string {
	if cell.Enable != sched.SymbolEnabled {
		return "-"
	}
	return cell.MessageIndex
}
