package fold

import (
	"testing"
	"time"

	"github.com/solatis/rulefold/internal/types"
)

func day(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func tup(values ...string) types.MatchTuple {
	vals := make([]types.Value, len(values))
	for i, v := range values {
		vals[i] = types.Value(v)
	}
	return types.NewMatchTuple(vals...)
}

func rec(params []string, values []string, file, date string) types.Record {
	m := make(map[string]string, len(params))
	for i, p := range params {
		m[p] = values[i]
	}
	return types.Record{Values: m, File: file, Date: day(date), Comment: "delivered " + file, Source: file}
}

func newTestEngine(t *testing.T, opts Options) *Engine {
	t.Helper()
	e, err := New(opts)
	if err != nil {
		t.Fatalf("New() error = %v, want nil", err)
	}
	return e
}

func sameTuples(a, b []types.MatchTuple) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func countKind(ws []types.Warning, kind types.WarningKind) int {
	n := 0
	for _, w := range ws {
		if w.Kind == kind {
			n++
		}
	}
	return n
}
