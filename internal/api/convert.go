package api

import (
	"strconv"
	"strings"
	"time"

	"github.com/rickgao/eedraws/internal/model"
)

// ParseCount converts a published count to an int.
// "1,510" -> 1510, " 481 " -> 481, "1 510" -> 1510, "481.0" -> 481
// Returns 0 for empty or invalid input.
func ParseCount(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}

	s = strings.NewReplacer(",", "", " ", "", "\u00a0", "", "+", "").Replace(s)

	n, err := strconv.Atoi(s)
	if err != nil {
		// Some rounds publish "481.0"
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return 0
		}
		return int(f)
	}
	return n
}

// ParseDrawDate parses a published draw date.
// Returns the zero time for empty or invalid input.
func ParseDrawDate(s string) time.Time {
	if strings.TrimSpace(s) == "" {
		return time.Time{}
	}

	t, err := model.ParseDate(s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// ToModel converts an APIRound to model.Draw.
// Missing or invalid fields are left at their zero value; validation is the
// reconciler's job.
func (r *APIRound) ToModel() model.Draw {
	name := strings.TrimSpace(r.DrawName.String())
	invitations := ParseCount(r.DrawSize.String())

	pool := make(map[model.PoolKey]int, len(model.PoolKeys))
	for i, v := range r.poolValues() {
		pool[model.PoolKeys[i]] = ParseCount(v.String())
	}

	return model.Draw{
		Number:           ParseCount(r.DrawNumber.String()),
		Date:             ParseDrawDate(r.DrawDate.String()),
		Name:             name,
		CRSCutoff:        ParseCount(r.DrawCRS.String()),
		Invitations:      invitations,
		Categories:       model.CategoryCounts(name, invitations),
		Pool:             pool,
		DateFull:         strings.TrimSpace(r.DrawDateFull.String()),
		DateTime:         strings.TrimSpace(r.DrawDateTime.String()),
		Text2:            strings.TrimSpace(r.DrawText2.String()),
		CutOff:           strings.TrimSpace(r.DrawCutOff.String()),
		DistributionAsOn: strings.TrimSpace(r.DrawDistribution.String()),
	}
}

// poolValues returns dd1-dd18 in model.PoolKeys order.
func (r *APIRound) poolValues() []FlexString {
	return []FlexString{
		r.DD1, r.DD2, r.DD3, r.DD4, r.DD5, r.DD6,
		r.DD7, r.DD8, r.DD9, r.DD10, r.DD11, r.DD12,
		r.DD13, r.DD14, r.DD15, r.DD16, r.DD17, r.DD18,
	}
}

// ToModel converts every round in the response, preserving feed order.
func (r *RoundsResponse) ToModel() []model.Draw {
	draws := make([]model.Draw, 0, len(r.Rounds))
	for i := range r.Rounds {
		draws = append(draws, r.Rounds[i].ToModel())
	}
	return draws
}
