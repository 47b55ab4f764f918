package layout

import (
	"strconv"
	"strings"
)

// FormatMonth renders a "YYYY-MM" wire date as "Month Year" using the locale table
// picked by style. Empty input gives an empty string; input that does not parse is
// returned unchanged.
func FormatMonth(date string, loc Locale, style MonthStyle) string {
	date = strings.TrimSpace(date)
	if date == "" {
		return ""
	}

	year, month, ok := splitYearMonth(date)
	if !ok {
		return date
	}

	switch style {
	case MonthLong:
		return loc.MonthsLong[month-1] + " " + year
	case MonthASCII:
		return loc.MonthsASCII[month-1] + " " + year
	case MonthNumeric:
		return strconv.Itoa(month) + "/" + year
	default:
		return loc.MonthsShort[month-1] + " " + year
	}
}

func splitYearMonth(date string) (string, int, bool) {
	year, rest, found := strings.Cut(date, "-")
	if !found || len(year) != 4 {
		return "", 0, false
	}
	if _, err := strconv.Atoi(year); err != nil {
		return "", 0, false
	}
	// tolerate a trailing day component ("2020-01-15")
	monthPart, _, _ := strings.Cut(rest, "-")
	month, err := strconv.Atoi(monthPart)
	if err != nil || month < 1 || month > 12 {
		return "", 0, false
	}
	return year, month, true
}

// DateRange formats "start - end". A current entry always ends with the locale's
// Present label whatever its stored end date. Missing sides collapse the separator.
func DateRange(start, end string, current bool, loc Locale, style MonthStyle) string {
	from := FormatMonth(start, loc, style)
	to := FormatMonth(end, loc, style)
	if current {
		to = loc.Present
	}

	switch {
	case from == "" && to == "":
		return ""
	case from == "":
		return to
	case to == "":
		return from
	}
	return from + " - " + to
}
