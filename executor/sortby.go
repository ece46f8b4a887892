package executor

import (
	"sort"

	"github.com/mdql/mdql/parser"
	"github.com/mdql/mdql/value"
)

// sortRecords stable-sorts records in place using a Null-biased
// comparator: Null sorts Less under ascending order (Greater under
// descending), incomparable variants compare Equal, and the first
// non-equal field decides.
func sortRecords(records []value.Value, orderBy []parser.OrderField) {
	if len(orderBy) == 0 {
		return
	}
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		for _, of := range orderBy {
			cmp := compareNullBiased(a.NestedGet(of.Field), b.NestedGet(of.Field))
			if of.Desc {
				cmp = -cmp
			}
			if cmp != 0 {
				return cmp < 0
			}
		}
		return false
	})
}

func compareNullBiased(a, b value.Value) int {
	switch {
	case a.IsNull() && b.IsNull():
		return 0
	case a.IsNull():
		return -1
	case b.IsNull():
		return 1
	}
	if cmp, ok := a.Compare(b); ok {
		return cmp
	}
	return 0
}
