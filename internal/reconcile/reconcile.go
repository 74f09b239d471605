package reconcile

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/rickgao/eedraws/internal/model"
)

// Fields reported by MalformedRecordError.
const (
	FieldNumber = "draw_number"
	FieldDate   = "draw_date"
)

// MalformedRecordError describes a fetched draw that was skipped because a
// required field was missing.
type MalformedRecordError struct {
	Index  int    // Position in the fetched batch
	Number int    // Draw number, 0 if missing
	Field  string // FieldNumber or FieldDate
}

func (e *MalformedRecordError) Error() string {
	if e.Number > 0 {
		return fmt.Sprintf("fetched draw #%d (index %d): missing %s", e.Number, e.Index, e.Field)
	}
	return fmt.Sprintf("fetched draw at index %d: missing %s", e.Index, e.Field)
}

// Validate checks that d carries the fields needed to store it.
// index is only used for error reporting.
func Validate(d model.Draw, index int) error {
	if err := check(d, index); err != nil {
		return err
	}
	return nil
}

func check(d model.Draw, index int) *MalformedRecordError {
	if d.Number <= 0 {
		return &MalformedRecordError{Index: index, Number: d.Number, Field: FieldNumber}
	}
	if d.Date.IsZero() {
		return &MalformedRecordError{Index: index, Number: d.Number, Field: FieldDate}
	}
	return nil
}

// Result is the outcome of a merge.
type Result struct {
	Draws   []model.Draw            // Full reconciled dataset, sorted
	Added   int                     // Fetched draws that were new
	Skipped []*MalformedRecordError // Fetched draws rejected by Validate
}

// HasNew reports whether the merge inserted anything. Callers use it to skip
// rewriting an unchanged dataset.
func (r Result) HasNew() bool {
	return r.Added > 0
}

// NewDraws returns the draws in r that are not in existing, in sorted order.
func (r Result) NewDraws(existing []model.Draw) []model.Draw {
	seen := make(map[int]struct{}, len(existing))
	for _, d := range existing {
		seen[d.Number] = struct{}{}
	}

	var out []model.Draw
	for _, d := range r.Draws {
		if _, ok := seen[d.Number]; !ok {
			out = append(out, d)
		}
	}
	return out
}

// Merge returns existing ∪ fetched, deduplicated by draw number.
//
// Existing draws are carried over as they are. If existing itself holds a
// duplicate number, the first occurrence is kept. A fetched draw is inserted
// only when its number is unseen; duplicates inside fetched keep the first
// occurrence. Neither input is modified.
func Merge(existing, fetched []model.Draw) Result {
	index := make(map[int]struct{}, len(existing)+len(fetched))
	draws := make([]model.Draw, 0, len(existing)+len(fetched))

	for _, d := range existing {
		if _, ok := index[d.Number]; ok {
			continue
		}
		index[d.Number] = struct{}{}
		draws = append(draws, d)
	}

	var res Result
	for i, d := range fetched {
		if err := check(d, i); err != nil {
			res.Skipped = append(res.Skipped, err)
			continue
		}
		if _, ok := index[d.Number]; ok {
			continue
		}
		index[d.Number] = struct{}{}
		draws = append(draws, d)
		res.Added++
	}

	Sort(draws)
	res.Draws = draws
	return res
}

// Sort orders draws by date ascending, breaking ties by draw number.
func Sort(draws []model.Draw) {
	slices.SortStableFunc(draws, Compare)
}

// Compare orders a before b by date, then by draw number.
func Compare(a, b model.Draw) int {
	if c := a.Date.Compare(b.Date); c != 0 {
		return c
	}
	return cmp.Compare(a.Number, b.Number)
}
