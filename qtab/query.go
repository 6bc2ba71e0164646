package qtab

import (
	"errors"
	"math"
)

// Options control how the query key-set is admitted against the
// table's criterion key-set.
type Options uint8

const (
	// Exactly requires the query keys and criterion keys to coincide.
	Exactly Options = 0

	// Subset lets the query omit criterion keys; an unmatched
	// criterion becomes a no-constraint column.
	Subset Options = 1 << 0

	// Superset lets the query carry keys no criterion claims.
	Superset Options = 1 << 1
)

// queryInfo is the per-criterion scoring record of one query run.
type queryInfo struct {
	crit *Criteria

	// index of the query kv chosen for this criterion:
	// -1 not chosen yet, -2 no query kv applies.
	index int
}

// Query returns the 1-based index of the data row minimising the
// summed criterion distance, or 0 when no row matches. A header-only
// table returns 0 without error.
//
// The scan is best-first: a row is abandoned as soon as its partial
// sum reaches the best complete sum, and the whole scan stops on a
// perfect zero. Ties go to the lowest row index.
func (t *Table) Query(kvs []KeyValue, options Options) (int, error) {
	if t.Rows() <= 1 {
		return 0, nil
	}

	infos := make([]queryInfo, t.criteria)
	for j := 0; j < t.criteria; j++ {
		c, err := NewCriteria(t.cells[0][j])
		if err != nil {
			return 0, &TableFormatError{Row: 0, Col: j, Cause: err}
		}
		infos[j] = queryInfo{crit: c, index: -1}
	}

	subset := options&Subset != 0
	superset := options&Superset != 0
	chosen := make([]bool, len(kvs))

	minD := math.Inf(1)
	minI := 0
	matched := 0

	for i := 1; i < t.Rows(); i++ {
		sum := 0.0
		pruned := false

		for j := 0; j < t.criteria; j++ {
			info := &infos[j]
			if info.index == -2 {
				continue
			}
			if err := info.crit.BindString(t.cells[i][j]); err != nil {
				return 0, &TableFormatError{Row: i, Col: j, Cause: err}
			}

			if info.index >= 0 {
				d, err := info.crit.Distance(kvs[info.index])
				if err != nil {
					return 0, err
				}
				sum += d
				if sum >= minD {
					pruned = true
					break
				}
				continue
			}

			// First row to score this criterion: pick the first
			// query kv it applies to.
			found := false
			for k := range kvs {
				d, err := info.crit.Distance(kvs[k])
				if errors.Is(err, ErrKeyMismatch) {
					continue
				}
				if err != nil {
					return 0, err
				}
				info.index = k
				chosen[k] = true
				matched++
				sum += d
				found = true
				break
			}
			if !found {
				info.index = -2
				if !subset {
					return 0, &TooFewKeysError{Key: info.crit.Key}
				}
				continue
			}
			if sum >= minD {
				pruned = true
				break
			}
		}
		if pruned {
			continue
		}

		// First fully scored row: every query kv must have been
		// claimed by some criterion, extras included.
		if !superset {
			for k := range kvs {
				if !chosen[k] {
					return 0, &TooManyKeysError{Key: kvs[k].Key, What: "Criteria"}
				}
			}
			superset = true
		}

		if matched == 0 {
			break
		}
		if sum < minD {
			minD = sum
			minI = i
			if minD == 0 {
				break
			}
		}
	}

	return minI, nil
}
