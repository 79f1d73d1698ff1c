// internal/fold/invert.go
package fold

import (
	"sort"
	"strings"
	"time"

	"github.com/solatis/rulefold/internal/types"
)

// Cluster is the set of tuples resolving to one identical sorted entry list.
// Folding never crosses cluster boundaries.
type Cluster struct {
	Key     string             // comment-free entry list identity
	Entries []types.FileEntry  // sorted, comments merged across tuples
	Tuples  []types.MatchTuple // sorted
}

// Invert groups tuples by their sorted, comment-stripped entry lists.
// Clusters are returned sorted by key. Comments are merged per entry: the
// first non-empty comment in tuple order wins, and the ambiguity marker is
// kept if any tuple carries it for that entry.
func Invert(g *Grouping) []Cluster {
	byKey := make(map[string]*Cluster)
	for _, t := range g.Tuples() {
		entries := g.Entries(t)
		key := clusterKey(entries)
		c, ok := byKey[key]
		if !ok {
			byKey[key] = &Cluster{Key: key, Entries: entries, Tuples: []types.MatchTuple{t}}
			continue
		}
		c.Tuples = append(c.Tuples, t)
		mergeComments(c.Entries, entries)
	}

	keys := make([]string, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]Cluster, 0, len(keys))
	for _, k := range keys {
		out = append(out, *byKey[k])
	}
	return out
}

// clusterKey renders a sorted entry list without comments.
func clusterKey(entries []types.FileEntry) string {
	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteByte('\n')
		}
		k := e.Key()
		b.WriteString(k.Date.Format(time.RFC3339Nano))
		b.WriteByte(' ')
		b.WriteString(k.File)
	}
	return b.String()
}

// mergeComments folds src comments into dst; both lists share one key order.
func mergeComments(dst, src []types.FileEntry) {
	for i := range dst {
		if dst[i].Comment == "" && src[i].Comment != "" {
			dst[i].Comment = src[i].Comment
		}
		if src[i].Ambiguous() {
			dst[i] = dst[i].MarkAmbiguous()
		}
	}
}
