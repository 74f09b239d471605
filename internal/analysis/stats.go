// Package analysis computes summary statistics over the draw history and
// the distribution of the times of day draws are held.
package analysis

import (
	"math"
	"time"

	"github.com/rickgao/eedraws/internal/model"
)

// Stats is the summary written to analysis.json.
type Stats struct {
	GeneratedAt string     `json:"generated_at"`
	Draws       DrawCount  `json:"draws"`
	DrawDate    DateRange  `json:"draw_date"`
	Size        *Aggregate `json:"size"`
	Score       *Aggregate `json:"score"`
}

// DrawCount holds the number of draws analyzed.
type DrawCount struct {
	Total int `json:"total"`
}

// DateRange spans the earliest and latest draw dates.
type DateRange struct {
	Earliest string `json:"earliest,omitempty"`
	Latest   string `json:"latest,omitempty"`
}

// Aggregate describes one numeric column. Nil when the column has no values.
type Aggregate struct {
	Highest                int     `json:"highest"`
	Average                float64 `json:"average"`
	Lowest                 int     `json:"lowest"`
	CoefficientOfVariation float64 `json:"coefficient_of_variation"`
}

// ComputeStats summarizes draws. Zero invitation counts and CRS cutoffs are
// treated as missing.
func ComputeStats(draws []model.Draw, now time.Time) Stats {
	s := Stats{
		GeneratedAt: now.UTC().Format(time.RFC3339),
		Draws:       DrawCount{Total: len(draws)},
	}

	var earliest, latest time.Time
	sizes := make([]int, 0, len(draws))
	scores := make([]int, 0, len(draws))

	for _, d := range draws {
		if !d.Date.IsZero() {
			if earliest.IsZero() || d.Date.Before(earliest) {
				earliest = d.Date
			}
			if latest.IsZero() || d.Date.After(latest) {
				latest = d.Date
			}
		}
		if d.Invitations > 0 {
			sizes = append(sizes, d.Invitations)
		}
		if d.CRSCutoff > 0 {
			scores = append(scores, d.CRSCutoff)
		}
	}

	if !earliest.IsZero() {
		s.DrawDate.Earliest = earliest.Format(model.DateLayout)
		s.DrawDate.Latest = latest.Format(model.DateLayout)
	}
	s.Size = aggregate(sizes)
	s.Score = aggregate(scores)

	return s
}

func aggregate(values []int) *Aggregate {
	if len(values) == 0 {
		return nil
	}

	lo, hi, sum := values[0], values[0], 0
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
		sum += v
	}
	mean := float64(sum) / float64(len(values))

	a := &Aggregate{
		Highest: hi,
		Average: round2(mean),
		Lowest:  lo,
	}

	// Sample standard deviation; undefined for a single value.
	if len(values) > 1 && mean != 0 {
		var sq float64
		for _, v := range values {
			diff := float64(v) - mean
			sq += diff * diff
		}
		std := math.Sqrt(sq / float64(len(values)-1))
		a.CoefficientOfVariation = round2(std / mean * 100)
	}

	return a
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
