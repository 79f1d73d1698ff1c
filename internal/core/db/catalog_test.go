package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.db")
	db, err := Open(context.Background(), "sqlite://"+path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	_, err = MigrateUp(context.Background(), db)
	require.NoError(t, err)
	return db
}

func usable(file string, useafter time.Time) ReferenceFile {
	loaded := useafter.Add(24 * time.Hour)
	return ReferenceFile{
		Instrument:   "acs",
		FileName:     file,
		Reftype:      "drk",
		UseAfter:     useafter,
		Opus:         true,
		OpusLoadDate: loaded,
		ArchiveDate:  loaded,
	}
}

func TestParseURL(t *testing.T) {
	tests := []struct {
		url     string
		driver  string
		source  string
		wantErr bool
	}{
		{url: "sqlite://catalog.db", driver: "sqlite3", source: "catalog.db?" + sqliteParams},
		{url: "sqlite:///var/lib/catalog.db", driver: "sqlite3", source: "/var/lib/catalog.db?" + sqliteParams},
		{url: "sqlite://catalog.db?cache=shared", driver: "sqlite3", source: "catalog.db?cache=shared&" + sqliteParams},
		{url: "postgres://u@localhost/cdbs", driver: "postgres", source: "postgres://u@localhost/cdbs"},
		{url: "postgresql://u@localhost/cdbs", driver: "postgres", source: "postgresql://u@localhost/cdbs"},
		{url: "mysql://localhost/cdbs", wantErr: true},
		{url: "sqlite://", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			driver, source, err := parseURL(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.driver, driver)
			assert.Equal(t, tt.source, source)
		})
	}
}

func TestMigrateUpIdempotent(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	applied, err := MigrateUp(ctx, db)
	require.NoError(t, err)
	assert.Empty(t, applied)

	statuses, err := MigrateStatus(ctx, db)
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.Equal(t, "001_catalog.sql", statuses[0].ID)
	assert.True(t, statuses[0].Applied)
	require.NotNil(t, statuses[0].AppliedAt)
	assert.WithinDuration(t, time.Now(), *statuses[0].AppliedAt, time.Hour)
}

func TestMigrateStatusPending(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "fresh.db")
	db, err := Open(ctx, "sqlite://"+path)
	require.NoError(t, err)
	defer db.Close()

	statuses, err := MigrateStatus(ctx, db)
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.False(t, statuses[0].Applied)
	assert.Nil(t, statuses[0].AppliedAt)
	assert.NotEmpty(t, statuses[0].Checksum)
}

func TestMigrateUpChecksumMismatch(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	_, err := db.ExecContext(ctx, "UPDATE migrations SET checksum = 'tampered'")
	require.NoError(t, err)

	_, err = MigrateUp(ctx, db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "checksum mismatch")
}

func TestSplitStatements(t *testing.T) {
	sql := "-- header\n-- more\n\nCREATE TABLE a (x INTEGER);\n-- between\nCREATE INDEX i ON a (x);\n"
	assert.Equal(t, []string{
		"CREATE TABLE a (x INTEGER)",
		"CREATE INDEX i ON a (x)",
	}, splitStatements(sql))
}

func TestLoadRecords(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	cat, err := NewCatalog(db)
	require.NoError(t, err)

	d1 := time.Date(2002, 3, 1, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2003, 7, 15, 12, 30, 0, 0, time.UTC)

	require.NoError(t, cat.AddReferenceFile(ctx, usable("a_drk.fits", d1)))
	require.NoError(t, cat.AddReferenceFile(ctx, usable("b_drk.fits", d2)))

	rejected := usable("r_drk.fits", d1)
	rejected.Rejected = true
	require.NoError(t, cat.AddReferenceFile(ctx, rejected))

	unloaded := usable("u_drk.fits", d1)
	unloaded.OpusLoadDate = time.Time{}
	require.NoError(t, cat.AddReferenceFile(ctx, unloaded))

	other := usable("o_bia.fits", d1)
	other.Reftype = "bia"
	require.NoError(t, cat.AddReferenceFile(ctx, other))

	row := map[string]string{"DETECTOR": "WFC", "ccdamp": "A", "ccdgain": "1.0", "extra": "x"}
	id1, err := cat.AddRow(ctx, "ACS", "a_drk.fits", 0, "first", row)
	require.NoError(t, err)
	id2, err := cat.AddRow(ctx, "acs", "b_drk.fits", 1, "", map[string]string{"detector": "HRC", "ccdamp": "B"})
	require.NoError(t, err)
	for _, f := range []string{"r_drk.fits", "u_drk.fits", "o_bia.fits"} {
		_, err := cat.AddRow(ctx, "acs", f, 1, "", row)
		require.NoError(t, err)
	}
	assert.Less(t, id1, id2)

	records, err := cat.LoadRecords(ctx, "ACS", "DRK", []string{"detector", "CCDAMP", "ccdgain"})
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, map[string]string{"detector": "WFC", "ccdamp": "A", "ccdgain": "1.0"}, records[0].Values)
	assert.Equal(t, "a_drk.fits", records[0].File)
	assert.Equal(t, "first", records[0].Comment)
	assert.True(t, records[0].Date.Equal(d1))

	assert.Equal(t, map[string]string{"detector": "HRC", "ccdamp": "B"}, records[1].Values)
	assert.True(t, records[1].Date.Equal(d2))
	assert.Contains(t, records[1].Source, "acs row")

	all, err := cat.LoadRecords(ctx, "acs", "drk", nil)
	require.NoError(t, err)
	assert.Equal(t, "x", all[0].Values["extra"])

	reftypes, err := cat.Reftypes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Reftype{{Instrument: "acs", Reftype: "bia"}, {Instrument: "acs", Reftype: "drk"}}, reftypes)
}

func TestAddRowRequiresReferenceFile(t *testing.T) {
	ctx := context.Background()
	cat, err := NewCatalog(openTestDB(t))
	require.NoError(t, err)

	_, err = cat.AddRow(ctx, "acs", "missing.fits", 1, "", map[string]string{"detector": "WFC"})
	assert.Error(t, err)
}

func TestTimestampScan(t *testing.T) {
	want := time.Date(2002, 3, 1, 4, 5, 6, 0, time.UTC)
	for _, src := range []any{
		want,
		"2002-03-01T04:05:06Z",
		"2002-03-01 04:05:06",
		[]byte("2002-03-01 04:05:06+00:00"),
	} {
		var ts Timestamp
		require.NoError(t, ts.Scan(src), "%v", src)
		assert.True(t, ts.Valid)
		assert.True(t, ts.Time.Equal(want), "%v scanned as %v", src, ts.Time)
	}

	var ts Timestamp
	require.NoError(t, ts.Scan(nil))
	assert.False(t, ts.Valid)
	assert.Error(t, ts.Scan("yesterday"))
	assert.Error(t, ts.Scan(42))

	v, err := NewTimestamp(time.Time{}).Value()
	require.NoError(t, err)
	assert.Nil(t, v)
}
