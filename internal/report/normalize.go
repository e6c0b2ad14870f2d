package report

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// The exports mix German-style grouping ("1.999,55") with English-style or
// ambiguous output depending on report type and revision. Every parser in
// this file is total: malformed, empty, or missing input resolves to 0.0
// (or to no value for dates), never to an error. Callers cannot distinguish
// "genuinely zero" from "failed to parse", which is the intended dashboard
// degradation.

// ParseCurrency converts a currency cell such as "1.999,55 €" or "368,14 €"
// to its numeric value.
func ParseCurrency(raw string) float64 {
	s := stripSpaces(raw)
	s = strings.ReplaceAll(s, "€", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}

	hasDot := strings.Contains(s, ".")
	hasComma := strings.Contains(s, ",")
	switch {
	case hasDot && hasComma:
		// "1.999,55": dot groups thousands, comma is the decimal mark.
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	case hasComma:
		// "368,14": comma is the decimal mark.
		s = strings.ReplaceAll(s, ",", ".")
	case strings.Count(s, ".") > 1:
		// "1.999.550": dots can only be grouping.
		s = strings.ReplaceAll(s, ".", "")
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// ParsePercent converts a percentage cell such as "16,40%" or "16.40%" to
// its numeric value (16.4, not 0.164).
func ParsePercent(raw string) float64 {
	s := stripSpaces(raw)
	s = strings.ReplaceAll(s, "%", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	s = strings.ReplaceAll(s, ",", ".")

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// ParseNumeric converts a plain numeric cell with ambiguous separator usage.
//
// When both "." and "," are present, the separator that appears later in the
// string is taken as the decimal mark and the other is stripped as grouping.
// A lone comma is a decimal mark only when at most two digits follow it and
// it occurs once; otherwise it is grouping ("9,778" -> 9778). Multiple dots
// without a comma are grouping. This is documented best-effort behavior:
// "12,345" is genuinely ambiguous in the source exports and resolves to
// 12345 here.
func ParseNumeric(raw string) float64 {
	s := stripSpaces(raw)
	if s == "" {
		return 0
	}

	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")
	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			// "1.234,56": dot groups, comma decimal.
			s = strings.ReplaceAll(s, ".", "")
			s = strings.ReplaceAll(s, ",", ".")
		} else {
			// "1,234.56": comma groups, dot decimal.
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		digitsAfter := len(s) - lastComma - 1
		if strings.Count(s, ",") == 1 && digitsAfter <= 2 {
			// "123,45": decimal mark.
			s = strings.ReplaceAll(s, ",", ".")
		} else {
			// "9,778" or "1,234,567": grouping.
			s = strings.ReplaceAll(s, ",", "")
		}
	case strings.Count(s, ".") > 1:
		s = strings.ReplaceAll(s, ".", "")
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// reportDatePattern matches the DD.MM.YY stamp the exports use both in the
// explicit date column and embedded in product-level file names.
var reportDatePattern = regexp.MustCompile(`(\d{2})\.(\d{2})\.(\d{2})`)

// ParseReportDate extracts a DD.MM.YY date from s. Two-digit years below 50
// map to 20YY, the rest to 19YY. The second return value is false when no
// date is present; callers must not treat that as a zero date.
func ParseReportDate(s string) (time.Time, bool) {
	m := reportDatePattern.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}

	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	if year < 50 {
		year += 2000
	} else {
		year += 1900
	}

	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// Reject normalized overflows such as 31.02.25.
	if t.Day() != day || t.Month() != time.Month(month) {
		return time.Time{}, false
	}
	return t, true
}

// stripSpaces removes regular and non-breaking spaces anywhere in s.
func stripSpaces(s string) string {
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, " ", "")
	return strings.TrimSpace(s)
}
