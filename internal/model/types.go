package model

import (
	"strings"
	"time"
)

// DateLayout is the layout of draw dates in the source feed and the CSV store.
const DateLayout = "2006-01-02"

// -----------------------------------------------------------------------------
// Draw
// -----------------------------------------------------------------------------

// Draw is one Express Entry invitation round.
type Draw struct {
	Number      int       // Primary key (drawNumber)
	Date        time.Time // Calendar date of the round, UTC midnight
	Name        string    // Program label as published (drawName)
	CRSCutoff   int       // Lowest CRS score invited (drawCRS)
	Invitations int       // Invitations issued (drawSize)

	Categories map[Category]int // Invitations attributed per program category
	Pool       map[PoolKey]int  // CRS score distribution of the pool (dd1-dd18)

	// Source text kept verbatim
	DateFull         string // e.g. "January 10, 2024"
	DateTime         string // e.g. "January 10, 2024 at 14:20:33 UTC"
	Text2            string // Free-form invitation text
	CutOff           string // Tie-breaking rule text
	DistributionAsOn string // Date the pool distribution was captured
}

// DateString returns the draw date in DateLayout, or "" for a zero date.
func (d Draw) DateString() string {
	if d.Date.IsZero() {
		return ""
	}
	return d.Date.Format(DateLayout)
}

// ParseDate parses a draw date. Surrounding whitespace is ignored.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
}

// Civil truncates t to its calendar date at UTC midnight, keeping t's own
// year, month and day.
func Civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// -----------------------------------------------------------------------------
// Categories
// -----------------------------------------------------------------------------

// Category is a program category a round can target.
type Category string

const (
	CategoryGeneral     Category = "General"
	CategoryCEC         Category = "Canadian Experience Class"
	CategoryFSW         Category = "Federal Skilled Worker"
	CategoryFST         Category = "Federal Skilled Trades"
	CategoryPNP         Category = "Provincial Nominee Program"
	CategoryFrench      Category = "French language proficiency"
	CategoryHealthcare  Category = "Healthcare and social services occupations"
	CategorySTEM        Category = "STEM occupations"
	CategoryTrades      Category = "Trade occupations"
	CategoryTransport   Category = "Transport occupations"
	CategoryAgriculture Category = "Agriculture and agri-food occupations"
	CategoryEducation   Category = "Education occupations"
	CategoryOther       Category = "Other"
)

// Categories is the fixed set of category keys, in display order.
var Categories = []Category{
	CategoryGeneral,
	CategoryCEC,
	CategoryFSW,
	CategoryFST,
	CategoryPNP,
	CategoryFrench,
	CategoryHealthcare,
	CategorySTEM,
	CategoryTrades,
	CategoryTransport,
	CategoryAgriculture,
	CategoryEducation,
	CategoryOther,
}

// categoryMatchers is checked in order; the first keyword found in the
// lowercased draw name wins.
var categoryMatchers = []struct {
	keyword  string
	category Category
}{
	{"no program specified", CategoryGeneral},
	{"general", CategoryGeneral},
	{"experience class", CategoryCEC},
	{"provincial nominee", CategoryPNP},
	{"skilled trades", CategoryFST},
	{"skilled worker", CategoryFSW},
	{"french", CategoryFrench},
	{"healthcare", CategoryHealthcare},
	{"stem", CategorySTEM},
	{"trade occupations", CategoryTrades},
	{"transport", CategoryTransport},
	{"agriculture", CategoryAgriculture},
	{"education", CategoryEducation},
}

// CategoryFromName maps a published draw name to its category.
// Unrecognized names map to CategoryOther.
func CategoryFromName(name string) Category {
	lower := strings.ToLower(strings.TrimSpace(name))
	if lower == "" {
		return CategoryOther
	}
	for _, m := range categoryMatchers {
		if strings.Contains(lower, m.keyword) {
			return m.category
		}
	}
	return CategoryOther
}

// CategoryCounts returns a map holding every category key, with the
// invitations attributed to the category of the draw name.
func CategoryCounts(name string, invitations int) map[Category]int {
	counts := make(map[Category]int, len(Categories))
	for _, c := range Categories {
		counts[c] = 0
	}
	counts[CategoryFromName(name)] = invitations
	return counts
}

// -----------------------------------------------------------------------------
// Pool distribution
// -----------------------------------------------------------------------------

// PoolKey names one of the dd1-dd18 pool distribution columns.
type PoolKey string

const (
	PoolDD1  PoolKey = "dd1"
	PoolDD2  PoolKey = "dd2"
	PoolDD3  PoolKey = "dd3"
	PoolDD4  PoolKey = "dd4"
	PoolDD5  PoolKey = "dd5"
	PoolDD6  PoolKey = "dd6"
	PoolDD7  PoolKey = "dd7"
	PoolDD8  PoolKey = "dd8"
	PoolDD9  PoolKey = "dd9"
	PoolDD10 PoolKey = "dd10"
	PoolDD11 PoolKey = "dd11"
	PoolDD12 PoolKey = "dd12"
	PoolDD13 PoolKey = "dd13"
	PoolDD14 PoolKey = "dd14"
	PoolDD15 PoolKey = "dd15"
	PoolDD16 PoolKey = "dd16"
	PoolDD17 PoolKey = "dd17"
	PoolDD18 PoolKey = "dd18"
)

// PoolKeys is the fixed set of pool columns, in column order.
var PoolKeys = []PoolKey{
	PoolDD1, PoolDD2, PoolDD3, PoolDD4, PoolDD5, PoolDD6,
	PoolDD7, PoolDD8, PoolDD9, PoolDD10, PoolDD11, PoolDD12,
	PoolDD13, PoolDD14, PoolDD15, PoolDD16, PoolDD17, PoolDD18,
}

// PoolTotal is the column holding the total pool size.
const PoolTotal = PoolDD18

var poolLabels = map[PoolKey]string{
	PoolDD1:  "601-1200",
	PoolDD2:  "501-600",
	PoolDD3:  "451-500",
	PoolDD4:  "491-500",
	PoolDD5:  "481-490",
	PoolDD6:  "471-480",
	PoolDD7:  "461-470",
	PoolDD8:  "451-460",
	PoolDD9:  "401-450",
	PoolDD10: "441-450",
	PoolDD11: "431-440",
	PoolDD12: "421-430",
	PoolDD13: "411-420",
	PoolDD14: "401-410",
	PoolDD15: "351-400",
	PoolDD16: "301-350",
	PoolDD17: "0-300",
	PoolDD18: "Total",
}

// Label returns the CRS score range the column counts.
// dd4-dd8 and dd10-dd14 are sub-ranges of dd3 and dd9.
func (k PoolKey) Label() string {
	if l, ok := poolLabels[k]; ok {
		return l
	}
	return string(k)
}
