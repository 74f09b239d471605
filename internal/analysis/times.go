package analysis

import (
	"cmp"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/rickgao/eedraws/internal/model"
)

var (
	isoDateTimeRe = regexp.MustCompile(`(\d{4}-\d{2}-\d{2})\s+(\d{1,2}:\d{2}:\d{2})`)
	monthDateRe   = regexp.MustCompile(`([A-Za-z]+)\.?\s+(\d{1,2}),?\s*(\d{4})`)
	clockRe       = regexp.MustCompile(`(\d{1,2}):(\d{2}):(\d{2})\s*([AaPp][Mm])?`)
)

// ParseDrawTime parses the published draw timestamp, which comes in many
// hand-typed shapes:
//
//	"January 31, 2015 at 11:59:48 UTC"
//	"May 31, 2024 at12:48:30 UTC"
//	"March 01, 2023, at 17:24:39 UTC"
//	"February 02 2022 at 14:16:27 UTC"
//	"October 25, 2023 03:48:39 PM UTC"
//	"January 23, 2025 2025-01-23 15:30:04 UTC"
//
// Times are UTC. A 12-hour suffix is ignored when the hour is already on the
// 24-hour clock ("15:48:39 AM").
func ParseDrawTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	if m := isoDateTimeRe.FindStringSubmatch(s); m != nil {
		t, err := time.Parse("2006-01-02 15:04:05", m[1]+" "+zeroPadClock(m[2]))
		if err == nil {
			return t, true
		}
	}

	dm := monthDateRe.FindStringSubmatch(s)
	cm := clockRe.FindStringSubmatch(s)
	if dm == nil || cm == nil {
		return time.Time{}, false
	}

	month, ok := parseMonth(dm[1])
	if !ok {
		return time.Time{}, false
	}
	day, _ := strconv.Atoi(dm[2])
	year, _ := strconv.Atoi(dm[3])

	hour, _ := strconv.Atoi(cm[1])
	minute, _ := strconv.Atoi(cm[2])
	second, _ := strconv.Atoi(cm[3])
	switch strings.ToUpper(cm[4]) {
	case "PM":
		if hour < 12 {
			hour += 12
		}
	case "AM":
		if hour == 12 {
			hour = 0
		}
	}

	if hour > 23 || minute > 59 || second > 59 || day < 1 {
		return time.Time{}, false
	}
	t := time.Date(year, month, day, hour, minute, second, 0, time.UTC)
	if t.Day() != day {
		// Date normalized, e.g. February 30
		return time.Time{}, false
	}
	return t, true
}

func zeroPadClock(c string) string {
	if len(c) == 7 {
		return "0" + c
	}
	return c
}

func parseMonth(name string) (time.Month, bool) {
	for _, layout := range []string{"January", "Jan"} {
		if t, err := time.Parse(layout, name); err == nil {
			return t.Month(), true
		}
	}
	if strings.EqualFold(name, "Sept") {
		return time.September, true
	}
	return 0, false
}

// TimeAnalysis is the summary written to time_analysis.json.
type TimeAnalysis struct {
	TotalDrawsWithTimes int             `json:"total_draws_with_times"`
	HourDistribution    [24]int         `json:"hour_distribution"`
	MostCommonHour      *string         `json:"most_common_hour"`
	AverageHour         *float64        `json:"average_hour"`
	DrawTimes           []DrawTime      `json:"draw_times"`
	DrawTimeline        []TimelinePoint `json:"draw_timeline"`
	AnalysisDate        string          `json:"analysis_date"`
}

// DrawTime is one draw whose timestamp could be parsed.
type DrawTime struct {
	DrawNumber     int    `json:"drawNumber"`
	Hour           int    `json:"hour"`
	Time           string `json:"time"`
	Date           string `json:"date"`
	DateTimeISO    string `json:"datetime_iso"`
	DrawName       string `json:"drawName"`
	OriginalString string `json:"original_string"`
}

// TimelinePoint is one entry of the chronological timeline.
// Time is the hour of day as a decimal (14.5 = 14:30).
type TimelinePoint struct {
	Date       string  `json:"date"`
	DateTime   string  `json:"datetime"`
	Time       float64 `json:"time"`
	Hour       int     `json:"hour"`
	Minute     int     `json:"minute"`
	DrawNumber int     `json:"drawNumber"`
	DrawName   string  `json:"drawName"`
	DrawSize   int     `json:"drawSize"`
	DrawCRS    int     `json:"drawCRS"`
}

// AnalyzeTimes builds the hour-of-day distribution of draws. Draws whose
// timestamp cannot be parsed are left out.
func AnalyzeTimes(draws []model.Draw, now time.Time) TimeAnalysis {
	ta := TimeAnalysis{
		DrawTimes:    []DrawTime{},
		DrawTimeline: []TimelinePoint{},
		AnalysisDate: now.Format("2006-01-02 15:04:05"),
	}

	type parsed struct {
		at   time.Time
		draw model.Draw
	}
	var points []parsed

	for _, d := range draws {
		at, ok := ParseDrawTime(d.DateTime)
		if !ok {
			continue
		}
		ta.HourDistribution[at.Hour()]++
		ta.DrawTimes = append(ta.DrawTimes, DrawTime{
			DrawNumber:     d.Number,
			Hour:           at.Hour(),
			Time:           at.Format("15:04"),
			Date:           at.Format(model.DateLayout),
			DateTimeISO:    at.Format("2006-01-02T15:04:05"),
			DrawName:       d.Name,
			OriginalString: d.DateTime,
		})
		points = append(points, parsed{at: at, draw: d})
	}

	slices.SortStableFunc(points, func(a, b parsed) int {
		if c := a.at.Compare(b.at); c != 0 {
			return c
		}
		return cmp.Compare(a.draw.Number, b.draw.Number)
	})
	for _, p := range points {
		ta.DrawTimeline = append(ta.DrawTimeline, TimelinePoint{
			Date:       p.at.Format(model.DateLayout),
			DateTime:   p.at.Format("2006-01-02T15:04:05"),
			Time:       round2(float64(p.at.Hour()) + float64(p.at.Minute())/60),
			Hour:       p.at.Hour(),
			Minute:     p.at.Minute(),
			DrawNumber: p.draw.Number,
			DrawName:   p.draw.Name,
			DrawSize:   p.draw.Invitations,
			DrawCRS:    p.draw.CRSCutoff,
		})
	}

	ta.TotalDrawsWithTimes = len(ta.DrawTimes)
	if ta.TotalDrawsWithTimes == 0 {
		return ta
	}

	window := MostCommonHourWindow(ta.HourDistribution)
	ta.MostCommonHour = &window

	sum := 0
	for h, n := range ta.HourDistribution {
		sum += h * n
	}
	avg := round2(float64(sum) / float64(ta.TotalDrawsWithTimes))
	ta.AverageHour = &avg

	return ta
}

// MostCommonHourWindow returns the longest run of consecutive hours sharing
// the highest count, formatted as "2 PM - 4 PM". Ties go to the earliest run.
func MostCommonHourWindow(hours [24]int) string {
	best := 0
	for _, n := range hours {
		best = max(best, n)
	}

	bestStart, bestLen := -1, 0
	for h := 0; h < 24; {
		if hours[h] != best {
			h++
			continue
		}
		start := h
		for h < 24 && hours[h] == best {
			h++
		}
		if h-start > bestLen {
			bestStart, bestLen = start, h-start
		}
	}

	return fmt.Sprintf("%s - %s", formatHour(bestStart), formatHour(bestStart+bestLen))
}

func formatHour(h int) string {
	h %= 24
	suffix := "AM"
	if h >= 12 {
		suffix = "PM"
	}
	h12 := h % 12
	if h12 == 0 {
		h12 = 12
	}
	return fmt.Sprintf("%d %s", h12, suffix)
}
