// Package store reads the project database: the persisted link rows,
// application roster, time-slot assignment, authoritative field records,
// rate metadata, data-type sizes, and the ordered variable tree. The store
// is strictly read-only; generated tables are never written back.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.

	"github.com/mderrick/schedgen/internal/layout"
	"github.com/mderrick/schedgen/internal/link"
	"github.com/mderrick/schedgen/internal/sched"
)

// ErrNoProject is returned when the project database file does not exist.
var ErrNoProject = errors.New("project database not found")

// Authoritative field names of the per-application records.
const (
	FieldScheduleRate = "Schedule Rate"
	FieldExecTime     = "Execution Time"
	FieldPriority     = "Execution Priority"
	FieldWakeUpID     = "Wake_Up ID"
	FieldWakeUpName   = "Wake_Up Name"
	FieldHkSendRate   = "HK Send Rate"
	FieldSchedGroup   = "SCH_GROUP Name"
)

// Store provides read access to one project database.
type Store struct {
	db *sql.DB
}

// Open opens the project database at dbPath. Returns ErrNoProject if the
// file does not exist; the store never creates a database.
func Open(ctx context.Context, dbPath string) (*Store, error) {
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrNoProject, dbPath)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}

	// One connection is plenty for a sequential, read-only consumer and
	// avoids SQLITE_BUSY contention with the editor that owns the file.
	db.SetMaxOpenConns(1)

	// Busy timeout avoids SQLITE_BUSY if the editor is mid-write.
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: set busy timeout: %w", err)
	}

	return &Store{db: db}, nil
}

// Links returns the persisted link rows in stored order.
func (s *Store) Links(ctx context.Context) ([]link.Definition, error) {
	const q = `SELECT rate_name, link_name, member FROM links ORDER BY row_index`

	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("store: query links: %w", err)
	}
	defer rows.Close()

	var defs []link.Definition
	for rows.Next() {
		var d link.Definition
		if err := rows.Scan(&d.RateName, &d.LinkName, &d.Member); err != nil {
			return nil, fmt.Errorf("store: scan link row: %w", err)
		}
		defs = append(defs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate links: %w", err)
	}
	return defs, nil
}

// Schedule returns the application roster and the persisted time-slot
// assignment. Roster entries and slot members share identity, so a refresh
// of a roster entry is visible through every slot that holds it.
func (s *Store) Schedule(ctx context.Context) ([]*sched.Entry, []*sched.Slot, error) {
	const appQuery = `SELECT name, wakeup_id, wakeup_name, priority, execution_time,
		rate, sch_group, hk_send_rate FROM applications ORDER BY name`

	rows, err := s.db.QueryContext(ctx, appQuery)
	if err != nil {
		return nil, nil, fmt.Errorf("store: query applications: %w", err)
	}
	defer rows.Close()

	var roster []*sched.Entry
	byName := make(map[string]*sched.Entry)
	for rows.Next() {
		e := &sched.Entry{}
		if err := rows.Scan(&e.Name, &e.WakeUpID, &e.WakeUpName, &e.Priority,
			&e.ExecutionTime, &e.Rate, &e.SchedGroup, &e.HkSendRate); err != nil {
			return nil, nil, fmt.Errorf("store: scan application: %w", err)
		}
		roster = append(roster, e)
		byName[e.Name] = e
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("store: iterate applications: %w", err)
	}

	slots, err := s.slotMembers(ctx, byName)
	if err != nil {
		return nil, nil, err
	}
	return roster, slots, nil
}

// slotMembers loads the time-slot membership rows and threads the shared
// roster entries into their slots.
func (s *Store) slotMembers(ctx context.Context, byName map[string]*sched.Entry) ([]*sched.Slot, error) {
	const q = `SELECT slot_index, app_name FROM slot_members ORDER BY slot_index, position`

	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("store: query slot members: %w", err)
	}
	defer rows.Close()

	var slots []*sched.Slot
	for rows.Next() {
		var index int
		var appName string
		if err := rows.Scan(&index, &appName); err != nil {
			return nil, fmt.Errorf("store: scan slot member: %w", err)
		}
		if index < 0 {
			continue
		}

		for len(slots) <= index {
			slots = append(slots, &sched.Slot{})
		}

		// A member naming an application absent from the roster is dropped
		// here; validation would prune it anyway.
		app, ok := byName[appName]
		if !ok {
			continue
		}
		slots[index].Entries = append(slots[index].Entries, app)
		app.Slots = append(app.Slots, index)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate slot members: %w", err)
	}
	return slots, nil
}

// Records returns the authoritative per-application records, typed from the
// string field rows. Numeric fields that fail to parse are left at their
// zero value; the validator treats the resulting mismatch as any other
// stale entry.
func (s *Store) Records(ctx context.Context) (map[string]sched.Record, error) {
	const q = `SELECT owner, field, value FROM field_values ORDER BY owner, field`

	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("store: query field values: %w", err)
	}
	defer rows.Close()

	records := make(map[string]sched.Record)
	for rows.Next() {
		var owner, field, value string
		if err := rows.Scan(&owner, &field, &value); err != nil {
			return nil, fmt.Errorf("store: scan field value: %w", err)
		}

		rec := records[owner]
		switch field {
		case FieldScheduleRate:
			rec.Rate, _ = strconv.ParseFloat(value, 64)
		case FieldExecTime:
			rec.ExecutionTime, _ = strconv.Atoi(value)
		case FieldPriority:
			rec.Priority, _ = strconv.Atoi(value)
		case FieldWakeUpID:
			rec.WakeUpID = value
		case FieldWakeUpName:
			rec.WakeUpName = value
		case FieldHkSendRate:
			rec.HkSendRate, _ = strconv.Atoi(value)
		case FieldSchedGroup:
			rec.SchedGroup = value
		}
		records[owner] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate field values: %w", err)
	}
	return records, nil
}

// FieldValue returns the value of one data field of the given owner table,
// or empty string if the field does not exist.
func (s *Store) FieldValue(ctx context.Context, owner, field string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM field_values WHERE owner = ? AND field = ?",
		owner, field).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("store: field value %q/%q: %w", owner, field, err)
	}
	return value, nil
}

// RateStreams returns the rate column name → data stream name translation
// table.
func (s *Store) RateStreams(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT column_name, stream_name FROM rate_streams")
	if err != nil {
		return nil, fmt.Errorf("store: query rate streams: %w", err)
	}
	defer rows.Close()

	streams := make(map[string]string)
	for rows.Next() {
		var column, stream string
		if err := rows.Scan(&column, &stream); err != nil {
			return nil, fmt.Errorf("store: scan rate stream: %w", err)
		}
		streams[column] = stream
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate rate streams: %w", err)
	}
	return streams, nil
}

// TypeTable returns the primitive data-type size table.
func (s *Store) TypeTable(ctx context.Context) (*layout.TypeTable, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name, size_bytes FROM data_types")
	if err != nil {
		return nil, fmt.Errorf("store: query data types: %w", err)
	}
	defer rows.Close()

	sizes := make(map[string]int)
	for rows.Next() {
		var name string
		var size int
		if err := rows.Scan(&name, &size); err != nil {
			return nil, fmt.Errorf("store: scan data type: %w", err)
		}
		sizes[name] = size
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate data types: %w", err)
	}
	return layout.NewTypeTable(sizes), nil
}

// Variables returns the ordered variable tree rows used to build the
// layout index.
func (s *Store) Variables(ctx context.Context) ([]layout.Entry, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT path FROM variables ORDER BY row_index")
	if err != nil {
		return nil, fmt.Errorf("store: query variables: %w", err)
	}
	defer rows.Close()

	var entries []layout.Entry
	for rows.Next() {
		var e layout.Entry
		if err := rows.Scan(&e.Path); err != nil {
			return nil, fmt.Errorf("store: scan variable: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate variables: %w", err)
	}
	return entries, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
