package statement

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Period is the date range declared in the statement header, detected once per
// document and used to resolve month/day-only row dates to full dates.
type Period struct {
	StartMonth time.Month
	StartYear  int
	EndMonth   time.Month
	EndYear    int
}

var monthNames = map[string]time.Month{
	"january": time.January, "february": time.February, "march": time.March,
	"april": time.April, "may": time.May, "june": time.June,
	"july": time.July, "august": time.August, "september": time.September,
	"october": time.October, "november": time.November, "december": time.December,
}

// "March 1, 2024 through March 31, 2024"
var periodPattern = regexp.MustCompile(
	`(?i)\b(January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2},?\s+(\d{4})\s+through\s+` +
		`(January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2},?\s+(\d{4})`)

// DetectPeriod scans reconstructed lines for a statement-period phrase.
// Returns nil when no period is declared anywhere in the document.
func DetectPeriod(lines []string) *Period {
	for _, line := range lines {
		m := periodPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		startYear, err1 := strconv.Atoi(m[2])
		endYear, err2 := strconv.Atoi(m[4])
		if err1 != nil || err2 != nil {
			continue
		}
		return &Period{
			StartMonth: monthNames[strings.ToLower(m[1])],
			StartYear:  startYear,
			EndMonth:   monthNames[strings.ToLower(m[3])],
			EndYear:    endYear,
		}
	}
	return nil
}

// YearFor picks the year for a month/day row date. Months at or after the
// period's start month belong to the start year; earlier months belong to the
// end year, which handles statements spanning a December–January boundary.
// With no detected period the current calendar year is the fallback.
func (p *Period) YearFor(month time.Month, now time.Time) int {
	if p == nil {
		return now.Year()
	}
	if month >= p.StartMonth || p.StartYear == p.EndYear {
		return p.StartYear
	}
	return p.EndYear
}
