package reports

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

var quarterMonths = map[string][]int{
	"q1": {1, 2, 3},
	"q2": {4, 5, 6},
	"q3": {7, 8, 9},
	"q4": {10, 11, 12},
}

var monthNames = []struct {
	name  string
	month int
}{
	{"january", 1}, {"february", 2}, {"march", 3}, {"april", 4},
	{"may", 5}, {"june", 6}, {"july", 7}, {"august", 8},
	{"september", 9}, {"october", 10}, {"november", 11}, {"december", 12},
}

// ParseMonthsSpec turns a human-entered period label into a sorted set of
// month numbers. Precedence: comma-separated numeric list, then quarter
// keyword, then month-name substrings, then the full calendar year.
func ParseMonthsSpec(spec string) []int {
	spec = strings.TrimSpace(spec)

	if months := numericMonths(spec); len(months) > 0 {
		return months
	}
	if months, ok := quarterMonths[strings.ToLower(spec)]; ok {
		return append([]int(nil), months...)
	}
	if months := namedMonths(spec); len(months) > 0 {
		return months
	}

	all := make([]int, 12)
	for i := range all {
		all[i] = i + 1
	}
	return all
}

func numericMonths(spec string) []int {
	if spec == "" {
		return nil
	}
	seen := map[int]bool{}
	for _, part := range strings.Split(spec, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 1 || n > 12 {
			return nil
		}
		seen[n] = true
	}
	return sortedKeys(seen)
}

func namedMonths(spec string) []int {
	lower := strings.ToLower(spec)
	seen := map[int]bool{}
	for _, m := range monthNames {
		if strings.Contains(lower, m.name) {
			seen[m.month] = true
		}
	}
	return sortedKeys(seen)
}

func sortedKeys(seen map[int]bool) []int {
	if len(seen) == 0 {
		return nil
	}
	months := make([]int, 0, len(seen))
	for m := range seen {
		months = append(months, m)
	}
	sort.Ints(months)
	return months
}

// PeriodRange computes the inclusive [start, end] date range covering the
// parsed months in the given year: the first day of the earliest month
// through the last day of the latest month.
func PeriodRange(spec string, year int) (time.Time, time.Time) {
	months := ParseMonthsSpec(spec)
	minMonth := months[0]
	maxMonth := months[len(months)-1]

	start := time.Date(year, time.Month(minMonth), 1, 0, 0, 0, 0, time.UTC)
	// Day zero of the following month is the last day of maxMonth.
	end := time.Date(year, time.Month(maxMonth)+1, 0, 0, 0, 0, 0, time.UTC)
	return start, end
}
