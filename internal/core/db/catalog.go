package db

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/solatis/rulefold/internal/types"
)

// ReferenceFile is one delivered reference file.
// Only files loaded, archived, flagged for use and not rejected feed
// consolidation.
type ReferenceFile struct {
	Instrument   string
	FileName     string
	Expansion    int
	Reftype      string
	UseAfter     time.Time
	Opus         bool
	Rejected     bool
	OpusLoadDate time.Time // zero means not loaded
	ArchiveDate  time.Time // zero means not archived
	Comment      string
}

// Reftype is one (instrument, reference file type) pair present in the catalog.
type Reftype struct {
	Instrument string `db:"instrument"`
	Reftype    string `db:"reference_file_type"`
}

type catalogRow struct {
	ID       int64     `db:"id"`
	FileName string    `db:"file_name"`
	Comment  string    `db:"comment"`
	UseAfter Timestamp `db:"useafter_date"`
}

type catalogValue struct {
	RowID  int64  `db:"row_id"`
	Parkey string `db:"parkey"`
	Value  string `db:"value"`
}

// Catalog reads and writes catalog rows.
type Catalog struct {
	db *sqlx.DB
	q  *Queries
}

// NewCatalog loads the named catalog queries for db.
func NewCatalog(db *sqlx.DB) (*Catalog, error) {
	q, err := LoadQueries(db)
	if err != nil {
		return nil, err
	}
	return &Catalog{db: db, q: q}, nil
}

func flag(b bool) string {
	if b {
		return "Y"
	}
	return "N"
}

// AddReferenceFile records a delivered file.
func (c *Catalog) AddReferenceFile(ctx context.Context, f ReferenceFile) error {
	expansion := f.Expansion
	if expansion == 0 {
		expansion = 1
	}
	_, err := c.q.Exec(ctx, "insert-reference-file",
		strings.ToLower(f.Instrument), f.FileName, expansion, strings.ToLower(f.Reftype),
		NewTimestamp(f.UseAfter), flag(f.Opus), flag(f.Rejected),
		NewTimestamp(f.OpusLoadDate), NewTimestamp(f.ArchiveDate), f.Comment,
	)
	if err != nil {
		return fmt.Errorf("failed to insert reference file %s: %w", f.FileName, err)
	}
	return nil
}

// AddRow stores one discrete parameter row selecting file and returns its id.
// The row and its values are written in one transaction.
func (c *Catalog) AddRow(ctx context.Context, instrument, file string, expansion int, comment string, values map[string]string) (int64, error) {
	if expansion == 0 {
		expansion = 1
	}
	rowQuery, err := c.q.raw("insert-catalog-row")
	if err != nil {
		return 0, err
	}
	valueQuery, err := c.q.raw("insert-catalog-value")
	if err != nil {
		return 0, err
	}

	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var id int64
	if err := tx.GetContext(ctx, &id, rowQuery, strings.ToLower(instrument), file, expansion, comment); err != nil {
		return 0, fmt.Errorf("failed to insert catalog row for %s: %w", file, err)
	}
	for _, k := range sortedKeys(values) {
		if _, err := tx.ExecContext(ctx, valueQuery, id, strings.ToLower(k), values[k]); err != nil {
			return 0, fmt.Errorf("failed to insert value %s for row %d: %w", k, id, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit catalog row: %w", err)
	}
	return id, nil
}

// LoadRecords returns the usable catalog rows for one instrument and
// reference file type, in row id order. Only parameters named in columns are
// kept; an empty columns list keeps every stored parameter.
func (c *Catalog) LoadRecords(ctx context.Context, instrument, reftype string, columns []string) ([]types.Record, error) {
	instrument, reftype = strings.ToLower(instrument), strings.ToLower(reftype)

	var rows []catalogRow
	if err := c.q.Select(ctx, "list-catalog-rows", &rows, instrument, reftype); err != nil {
		return nil, fmt.Errorf("failed to list catalog rows: %w", err)
	}
	var values []catalogValue
	if err := c.q.Select(ctx, "list-catalog-values", &values, instrument, reftype); err != nil {
		return nil, fmt.Errorf("failed to list catalog values: %w", err)
	}

	keep := make(map[string]bool, len(columns))
	for _, col := range columns {
		keep[strings.ToLower(col)] = true
	}

	byRow := make(map[int64]map[string]string, len(rows))
	for _, v := range values {
		key := strings.ToLower(v.Parkey)
		if len(keep) > 0 && !keep[key] {
			continue
		}
		m, ok := byRow[v.RowID]
		if !ok {
			m = make(map[string]string)
			byRow[v.RowID] = m
		}
		m[key] = v.Value
	}

	out := make([]types.Record, 0, len(rows))
	for _, r := range rows {
		if !r.UseAfter.Valid {
			return nil, fmt.Errorf("catalog row %d has no useafter date", r.ID)
		}
		vals := byRow[r.ID]
		if vals == nil {
			vals = map[string]string{}
		}
		out = append(out, types.Record{
			Values:  vals,
			File:    r.FileName,
			Comment: r.Comment,
			Date:    r.UseAfter.Time,
			Source:  fmt.Sprintf("%s row %d", instrument, r.ID),
		})
	}
	return out, nil
}

// Reftypes lists every (instrument, reference file type) pair with files.
func (c *Catalog) Reftypes(ctx context.Context) ([]Reftype, error) {
	var out []Reftype
	if err := c.q.Select(ctx, "list-reftypes", &out); err != nil {
		return nil, fmt.Errorf("failed to list reftypes: %w", err)
	}
	return out, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
