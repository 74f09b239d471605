// Package report selects the latest draw in the dataset and renders a
// summary of it.
package report

import (
	"slices"
	"time"

	"github.com/rickgao/eedraws/internal/model"
	"github.com/rickgao/eedraws/internal/reconcile"
)

// EmptyDatasetError is returned when a report is requested before any draw
// has been stored.
type EmptyDatasetError struct{}

func (e *EmptyDatasetError) Error() string {
	return "no draw data available: run update to initialize the dataset"
}

// ErrEmptyDataset is the EmptyDatasetError returned by Latest.
var ErrEmptyDataset error = &EmptyDatasetError{}

// DrawInfo is the reported view of a single draw.
type DrawInfo struct {
	Number      int    `json:"draw_number"`
	Date        string `json:"draw_date"`
	DateFull    string `json:"draw_date_full,omitempty"`
	Name        string `json:"draw_name"`
	CRSCutoff   int    `json:"crs_cutoff"`
	Invitations int    `json:"invitations_issued"`
}

// Summary describes the latest draw.
type Summary struct {
	DrawInfo
	DaysSince int `json:"days_since"`

	// Set only when the dataset holds at least two draws.
	Previous    *DrawInfo `json:"previous,omitempty"`
	DaysBetween *int      `json:"days_between,omitempty"`
}

// Latest returns a summary of the draw with the greatest date, ties going to
// the greatest draw number. DaysSince counts calendar days from that draw to
// today's date.
func Latest(draws []model.Draw, today time.Time) (Summary, error) {
	if len(draws) == 0 {
		return Summary{}, ErrEmptyDataset
	}

	sorted := slices.Clone(draws)
	reconcile.Sort(sorted)

	latest := sorted[len(sorted)-1]
	s := Summary{
		DrawInfo:  infoOf(latest),
		DaysSince: DaysBetween(latest.Date, today),
	}

	if len(sorted) > 1 {
		prev := sorted[len(sorted)-2]
		info := infoOf(prev)
		between := DaysBetween(prev.Date, latest.Date)
		s.Previous = &info
		s.DaysBetween = &between
	}

	return s, nil
}

// DaysBetween returns the number of calendar days from a to b.
// Only the year, month and day of each value are considered.
func DaysBetween(a, b time.Time) int {
	from := model.Civil(a)
	to := model.Civil(b)
	return int(to.Sub(from).Hours() / 24)
}

func infoOf(d model.Draw) DrawInfo {
	return DrawInfo{
		Number:      d.Number,
		Date:        d.DateString(),
		DateFull:    d.DateFull,
		Name:        d.Name,
		CRSCutoff:   d.CRSCutoff,
		Invitations: d.Invitations,
	}
}
