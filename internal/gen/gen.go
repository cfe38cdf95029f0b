// Package gen runs the full generation pipeline over a loaded project:
// layout index construction, link catalog pruning and sizing, roster
// validation, and scheduler table generation. The pipeline is a pure
// transform of the rows the store hands it; given identical inputs it
// produces byte-identical tables.
package gen

import (
	"context"

	"github.com/mderrick/schedgen/internal/layout"
	"github.com/mderrick/schedgen/internal/link"
	"github.com/mderrick/schedgen/internal/macro"
	"github.com/mderrick/schedgen/internal/sched"
	"github.com/mderrick/schedgen/internal/store"
	"github.com/mderrick/schedgen/internal/telemetry"
)

// Params are the fixed table dimensions and lookup names, supplied by
// configuration.
type Params struct {
	SlotsPerPeriod   int
	CommandsPerTable int

	// AppFieldName is the data field naming the application that owns a
	// parent table, used to resolve link members to applications.
	AppFieldName string
}

// LinkReport summarizes one link for the build report and the links
// subcommand.
type LinkReport struct {
	RateName    string
	LinkName    string
	SampleRate  string
	Description string
	SizeBytes   int
}

// Result holds everything one build produced.
type Result struct {
	Defines  []sched.Define
	Commands []string
	Schedule [][]sched.Cell
	Groups   []string

	// Removed names the applications pruned by validation, in roster order.
	Removed []string

	// Links summarizes the surviving links in first-seen row order.
	Links []LinkReport

	// Apps names the distinct applications whose tables contribute link
	// members, in first-seen row order.
	Apps []string

	// Catalog is retained for follow-up membership queries.
	Catalog *link.Catalog
}

// Build loads the project through the store and runs the whole pipeline.
// Telemetry receives one itemized event per pruned link row and removed
// application; em may be nil. A nil expander disables macro expansion.
func Build(ctx context.Context, st *store.Store, params Params, exp *macro.Expander, em *telemetry.Emitter) (*Result, error) {
	_ = em.Emit(telemetry.Event{Kind: telemetry.KindBuildStart})

	// Layout index: ordered variable tree + type sizes.
	types, err := st.TypeTable(ctx)
	if err != nil {
		return nil, err
	}
	variables, err := st.Variables(ctx)
	if err != nil {
		return nil, err
	}
	index := layout.Build(variables, types, exp.Func())

	// Link catalog: prune and size.
	catalog, reports, err := buildCatalog(ctx, st, index, exp, em)
	if err != nil {
		return nil, err
	}

	apps := catalog.ApplicationNames(func(owner string) string {
		value, err := st.FieldValue(ctx, owner, params.AppFieldName)
		if err != nil {
			return ""
		}
		return value
	})

	// Roster validation and table generation.
	roster, slots, err := st.Schedule(ctx)
	if err != nil {
		return nil, err
	}
	records, err := st.Records(ctx)
	if err != nil {
		return nil, err
	}

	validator := &sched.Validator{Records: records}
	roster, removed := validator.Validate(roster, slots)

	removedNames := make([]string, 0, len(removed))
	for _, app := range removed {
		removedNames = append(removedNames, app.Name)
		_ = em.Emit(telemetry.Event{Kind: telemetry.KindAppRemoved, App: app.Name})
	}
	_ = em.Emit(telemetry.Event{
		Kind: telemetry.KindValidateDone,
		Data: map[string]int{"removed": len(removed), "remaining": len(roster)},
	})

	builder := &sched.Builder{
		SlotsPerPeriod:   params.SlotsPerPeriod,
		CommandsPerTable: params.CommandsPerTable,
	}
	defines := builder.Defines(roster)

	res := &Result{
		Defines:  defines,
		Commands: builder.CommandTable(roster),
		Schedule: builder.ScheduleEntries(slots, defines),
		Groups:   builder.Groups(roster),
		Removed:  removedNames,
		Links:    reports,
		Apps:     apps,
		Catalog:  catalog,
	}

	_ = em.Emit(telemetry.Event{
		Kind: telemetry.KindBuildDone,
		Data: map[string]int{
			"defines": len(res.Defines),
			"periods": len(res.Schedule),
			"links":   len(res.Links),
		},
	})
	return res, nil
}

// buildCatalog loads the link rows, constructs the pruned catalog, and
// summarizes every surviving link.
func buildCatalog(ctx context.Context, st *store.Store, index *layout.Index, exp *macro.Expander, em *telemetry.Emitter) (*link.Catalog, []LinkReport, error) {
	defs, err := st.Links(ctx)
	if err != nil {
		return nil, nil, err
	}
	streams, err := st.RateStreams(ctx)
	if err != nil {
		return nil, nil, err
	}

	catalog := link.NewCatalog(defs, index, exp.Func(),
		link.WithStreamNames(func(rateName string) (string, bool) {
			stream, ok := streams[rateName]
			return stream, ok
		}),
		link.WithPruneObserver(func(d link.Definition) {
			_ = em.Emit(telemetry.Event{
				Kind: telemetry.KindLinkPruned,
				Link: d.LinkName,
				Rate: d.RateName,
				Data: d.Member,
			})
		}),
	)

	var reports []LinkReport
	for _, id := range catalog.Links() {
		reports = append(reports, LinkReport{
			RateName:    id.Rate,
			LinkName:    id.Name,
			SampleRate:  catalog.Rate(id.Rate, id.Name),
			Description: catalog.Description(id.Rate, id.Name),
			SizeBytes:   catalog.SizeInBytes(id.Rate, id.Name),
		})
	}
	return catalog, reports, nil
}
