package database

import (
	"fmt"
	"io"
	"sort"
	"sync"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

/*
Column Mismatch Report

Lists database columns that no model field maps to, which usually means a
manual schema edit or a model field that was removed without a migration.

	go run ./cmd/migrate -report

Example output:
=== COLUMN MISMATCH REPORT ===
--- Table: projects ---
Found 1 columns not accounted for in model:
  - legacy_rank

--- Table: comments ---
All columns are accounted for in the model.

=== SUMMARY ===
Total mismatched columns across all tables: 1
*/

// TableMismatch holds the unmapped columns of one table. Missing is set when
// the table has not been created yet.
type TableMismatch struct {
	Table   string
	Columns []string
	Missing bool
}

// ColumnMismatches compares every model table against the live schema.
func ColumnMismatches(db *gorm.DB) ([]TableMismatch, error) {
	var report []TableMismatch
	cache := &sync.Map{}

	for _, model := range Models() {
		s, err := schema.Parse(model, cache, db.NamingStrategy)
		if err != nil {
			return nil, fmt.Errorf("parse model %T: %w", model, err)
		}

		entry := TableMismatch{Table: s.Table}
		if !db.Migrator().HasTable(s.Table) {
			entry.Missing = true
			report = append(report, entry)
			continue
		}

		columnTypes, err := db.Migrator().ColumnTypes(model)
		if err != nil {
			return nil, fmt.Errorf("read columns of %s: %w", s.Table, err)
		}

		var dbColumns []string
		for _, ct := range columnTypes {
			dbColumns = append(dbColumns, ct.Name())
		}
		entry.Columns = findColumnMismatches(dbColumns, modelColumns(s))
		report = append(report, entry)
	}

	return report, nil
}

// WriteColumnMismatchReport renders the report in the format shown above.
func WriteColumnMismatchReport(w io.Writer, report []TableMismatch) int {
	fmt.Fprintln(w, "=== COLUMN MISMATCH REPORT ===")

	total := 0
	for _, entry := range report {
		fmt.Fprintf(w, "\n--- Table: %s ---\n", entry.Table)
		switch {
		case entry.Missing:
			fmt.Fprintln(w, "Table does not exist yet (will be created during migration)")
		case len(entry.Columns) > 0:
			fmt.Fprintf(w, "Found %d columns not accounted for in model:\n", len(entry.Columns))
			for _, col := range entry.Columns {
				fmt.Fprintf(w, "  - %s\n", col)
			}
			total += len(entry.Columns)
		default:
			fmt.Fprintln(w, "All columns are accounted for in the model.")
		}
	}

	fmt.Fprintf(w, "\n=== SUMMARY ===\n")
	fmt.Fprintf(w, "Total mismatched columns across all tables: %d\n", total)
	return total
}

// modelColumns returns the column names gorm maps for s, relations excluded.
func modelColumns(s *schema.Schema) []string {
	var columns []string
	for _, field := range s.Fields {
		if field.DBName != "" {
			columns = append(columns, field.DBName)
		}
	}
	return columns
}

// findColumnMismatches finds columns that exist in the database but not in the model
func findColumnMismatches(dbColumns, modelFields []string) []string {
	modelFieldSet := make(map[string]bool)
	for _, field := range modelFields {
		modelFieldSet[field] = true
	}

	var mismatches []string
	for _, col := range dbColumns {
		if !modelFieldSet[col] {
			mismatches = append(mismatches, col)
		}
	}

	sort.Strings(mismatches)
	return mismatches
}
