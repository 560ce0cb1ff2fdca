package alias

import (
	"strings"
	"sync"
)

// Resolver maps free-text field names onto canonical metric ids. Matching is
// intentionally permissive: after normalization, an alias matches a field name
// when either string contains the other, which tolerates truncated or suffixed
// column headers ("营业收入(万元)", "Revenue 2023").
//
// Resolutions are memoized per resolver. The cache is a pure optimization:
// the same key always maps to the same value, so concurrent store-once writes
// need no further synchronization.
type Resolver struct {
	table []Entry
	cache sync.Map // normalized name -> MetricID
}

// NewResolver creates a resolver over the static alias table.
func NewResolver() *Resolver {
	return NewResolverWithTable(Table)
}

// NewResolverWithTable creates a resolver over a custom table. Declaration
// order of the entries decides ties.
func NewResolverWithTable(table []Entry) *Resolver {
	return &Resolver{table: table}
}

// Resolve returns the canonical metric id for a raw field name, or false when
// no alias matches. Empty and whitespace-only names never resolve.
func (r *Resolver) Resolve(rawName string) (MetricID, bool) {
	norm := Normalize(rawName)
	if norm == "" || norm == "_" {
		return "", false
	}

	if cached, ok := r.cache.Load(norm); ok {
		return cached.(MetricID), true
	}

	for _, entry := range r.table {
		for _, a := range entry.Aliases {
			na := Normalize(a)
			if na == "" {
				continue
			}
			if strings.Contains(norm, na) || strings.Contains(na, norm) {
				r.cache.Store(norm, entry.Metric)
				return entry.Metric, true
			}
		}
	}
	return "", false
}

// Normalize lower-cases the name and strips everything outside [a-z0-9_] and
// the CJK ideograph range, collapsing each run of stripped characters into a
// single underscore.
func Normalize(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	b.Grow(len(lower))
	pendingSep := false
	for _, r := range lower {
		if isAliasRune(r) {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
		} else {
			pendingSep = true
		}
	}
	return b.String()
}

func isAliasRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r == '_':
		return true
	case r >= 0x4E00 && r <= 0x9FA5: // CJK unified ideographs
		return true
	}
	return false
}
