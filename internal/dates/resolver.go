package dates

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"go.uber.org/zap"
)

// Resolver turns a free-text fragment into one or more concrete dates.
// Strategies are tried in a fixed priority order and the first one that
// yields at least one date wins. An empty result means the caller should
// ask the user to clarify, never "assume today".
type Resolver struct {
	cal    *Calendar
	logger *zap.Logger
}

// NewResolver creates a resolver bound to a working-day calendar
func NewResolver(cal *Calendar, logger *zap.Logger) *Resolver {
	return &Resolver{cal: cal, logger: logger}
}

// ResolveRangeInclusive resolves text against ref. Explicit date ranges
// expand to every calendar day between the endpoints, weekends included.
func (r *Resolver) ResolveRangeInclusive(text string, ref time.Time) []time.Time {
	return r.resolve(text, ref, true)
}

// ResolveRangeWorkdaysOnly resolves text against ref. Explicit date ranges
// expand to the days between the endpoints with weekends dropped. The two
// range behaviors are deliberately kept separate: the guided flow skips
// weekends up front, the single-shot flow leaves them in and lets the
// validator report them.
func (r *Resolver) ResolveRangeWorkdaysOnly(text string, ref time.Time) []time.Time {
	return r.resolve(text, ref, false)
}

var (
	reDMY = regexp.MustCompile(`\b(\d{1,2})[-/](\d{1,2})[-/](\d{4})\b`)
	reYMD = regexp.MustCompile(`\b(\d{4})[-/](\d{1,2})[-/](\d{1,2})\b`)
	reDM  = regexp.MustCompile(`\b(\d{1,2})[-/](\d{1,2})\b`)

	reRangeSep  = regexp.MustCompile(`\s+(?:to|until|till|through)\s+`)
	reDashRange = regexp.MustCompile(`(\d{1,2}[-/]\d{1,2}(?:[-/]\d{4})?)\s*-\s*(\d{1,2}[-/]\d{1,2}(?:[-/]\d{4})?)`)

	// Matches "sep 25", "september25", "25sep2024", "sep 25 2024"
	reMonthDate = regexp.MustCompile(`(?:(\d{1,2})\s*)?(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s*(\d{1,2})?(?:,?\s*(\d{4}))?`)

	reWeekday  = regexp.MustCompile(`\b(monday|tuesday|wednesday|thursday|friday|saturday|sunday|mon|tue|wed|thu|fri|sat|sun)\b`)
	reDaysAgo  = regexp.MustCompile(`(\d+)\s*days?\s*ago`)
	reDaysFrom = regexp.MustCompile(`(\d+)\s*days?\s*(?:from\s+now|later)`)
)

var monthNumbers = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

var weekdayNumbers = map[string]time.Weekday{
	"monday": time.Monday, "mon": time.Monday,
	"tuesday": time.Tuesday, "tue": time.Tuesday,
	"wednesday": time.Wednesday, "wed": time.Wednesday,
	"thursday": time.Thursday, "thu": time.Thursday,
	"friday": time.Friday, "fri": time.Friday,
	"saturday": time.Saturday, "sat": time.Saturday,
	"sunday": time.Sunday, "sun": time.Sunday,
}

// noiseTokens are application verbs, leave-type tags and stray articles that
// precede the actual date fragment in a typical message. They are dropped
// before any strategy runs.
var noiseTokens = map[string]bool{
	"i": true, "want": true, "need": true, "would": true, "like": true,
	"can": true, "please": true, "apply": true, "applying": true,
	"application": true, "request": true, "take": true, "taking": true,
	"leave": true, "leaves": true, "for": true, "a": true, "an": true,
	"the": true, "my": true, "on": true, "of": true,
	"el": true, "sl": true, "cl": true, "sick": true, "earned": true,
	"casual": true, "medical": true,
}

func (r *Resolver) resolve(text string, ref time.Time, includeWeekends bool) []time.Time {
	ref = Midnight(ref)
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "" {
		return nil
	}

	// Ranges are detected before noise stripping so the separator word
	// survives.
	if dates := r.resolveRange(lower, ref, includeWeekends); len(dates) > 0 {
		return dedupSort(dates)
	}

	clean := stripNoise(lower)
	r.logger.Debug("resolving date fragment", zap.String("clean", clean))

	if dates := parseNumeric(clean, ref); len(dates) > 0 {
		return dedupSort(dates)
	}
	if d, ok := parseMonthName(clean, ref); ok {
		return []time.Time{d}
	}
	if d, ok := parseAnchor(clean, ref); ok {
		return []time.Time{d}
	}
	if d, ok := parseRelative(clean, ref); ok {
		return []time.Time{d}
	}
	if d, ok := parseFreeText(clean, ref); ok {
		return []time.Time{d}
	}

	r.logger.Debug("no date strategy matched", zap.String("text", text))
	return nil
}

// resolveRange expands "<date> to <date>" (and dash-joined numeric pairs)
// into the days between the endpoints inclusive. Every occurrence of the
// separator word is tried, since the message may contain an unrelated "to".
func (r *Resolver) resolveRange(text string, ref time.Time, includeWeekends bool) []time.Time {
	for _, loc := range reRangeSep.FindAllStringIndex(text, -1) {
		start, okS := r.parseEndpoint(text[:loc[0]], ref)
		end, okE := r.parseEndpoint(text[loc[1]:], ref)
		if okS && okE && !end.Before(start) {
			return r.expandRange(start, end, includeWeekends)
		}
	}
	if m := reDashRange.FindStringSubmatch(text); m != nil {
		start, okS := r.parseEndpoint(m[1], ref)
		end, okE := r.parseEndpoint(m[2], ref)
		if okS && okE && !end.Before(start) {
			return r.expandRange(start, end, includeWeekends)
		}
	}
	return nil
}

func (r *Resolver) expandRange(start, end time.Time, includeWeekends bool) []time.Time {
	var dates []time.Time
	for cur := start; !cur.After(end); cur = cur.AddDate(0, 0, 1) {
		if includeWeekends || !r.cal.IsWeekend(cur) {
			dates = append(dates, cur)
		}
	}
	return dates
}

// parseEndpoint parses one side of a range using the single-date strategies
func (r *Resolver) parseEndpoint(tok string, ref time.Time) (time.Time, bool) {
	tok = stripNoise(strings.TrimSpace(tok))
	if tok == "" {
		return time.Time{}, false
	}
	if ds := parseNumeric(tok, ref); len(ds) == 1 {
		return ds[0], true
	}
	if d, ok := parseMonthName(tok, ref); ok {
		return d, true
	}
	if d, ok := parseAnchor(tok, ref); ok {
		return d, true
	}
	if d, ok := parseRelative(tok, ref); ok {
		return d, true
	}
	return parseFreeText(tok, ref)
}

func stripNoise(text string) string {
	fields := strings.Fields(text)
	kept := fields[:0]
	for _, f := range fields {
		if !noiseTokens[strings.Trim(f, ".,!?")] {
			kept = append(kept, f)
		}
	}
	return strings.Join(kept, " ")
}

// parseNumeric extracts explicit D-M-Y, Y-M-D and D-M dates. All matches of
// the first pattern that hits are returned.
func parseNumeric(text string, ref time.Time) []time.Time {
	var dates []time.Time
	for _, m := range reDMY.FindAllStringSubmatch(text, -1) {
		if d, ok := makeDate(atoi(m[3]), atoi(m[2]), atoi(m[1]), ref); ok {
			dates = append(dates, d)
		}
	}
	if len(dates) > 0 {
		return dates
	}
	for _, m := range reYMD.FindAllStringSubmatch(text, -1) {
		if d, ok := makeDate(atoi(m[1]), atoi(m[2]), atoi(m[3]), ref); ok {
			dates = append(dates, d)
		}
	}
	if len(dates) > 0 {
		return dates
	}
	for _, m := range reDM.FindAllStringSubmatch(text, -1) {
		if d, ok := makeDate(ref.Year(), atoi(m[2]), atoi(m[1]), ref); ok {
			dates = append(dates, d)
		}
	}
	return dates
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func makeDate(year, month, day int, ref time.Time) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, ref.Location())
	// time.Date normalizes out-of-range days (e.g. Feb 30), so reject any
	// date that did not round-trip.
	if d.Day() != day || d.Month() != time.Month(month) {
		return time.Time{}, false
	}
	return d, true
}

// parseMonthName resolves "sep 25" / "25sep2024" style fragments. Without a
// year the current year is assumed; a result before ref is discarded rather
// than rolled to next year.
func parseMonthName(text string, ref time.Time) (time.Time, bool) {
	m := reMonthDate.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, false
	}
	month, ok := monthNumbers[m[2]]
	if !ok {
		return time.Time{}, false
	}
	day := m[1]
	if day == "" {
		day = m[3]
	}
	if day == "" {
		return time.Time{}, false
	}
	year := ref.Year()
	if m[4] != "" {
		year = atoi(m[4])
	}
	d, ok := makeDate(year, int(month), atoi(day), ref)
	if !ok || d.Before(ref) {
		return time.Time{}, false
	}
	return d, true
}

// parseAnchor handles the fixed single-word offsets around the reference
// date. Multi-word forms are checked first so "day after tomorrow" does not
// collapse into "tomorrow".
func parseAnchor(text string, ref time.Time) (time.Time, bool) {
	switch {
	case strings.Contains(text, "day after tomorrow"):
		return ref.AddDate(0, 0, 2), true
	case strings.Contains(text, "day before yesterday"):
		return ref.AddDate(0, 0, -2), true
	case strings.Contains(text, "tomorrow"):
		return ref.AddDate(0, 0, 1), true
	case strings.Contains(text, "yesterday"):
		return ref.AddDate(0, 0, -1), true
	case strings.Contains(text, "today"), text == "now":
		return ref, true
	}
	return time.Time{}, false
}

// parseRelative handles week shifts, weekday names and numeric day offsets
func parseRelative(text string, ref time.Time) (time.Time, bool) {
	// "last week" / "next week" shift the reference date before the
	// remaining rules run on the residual text.
	if strings.Contains(text, "last week") {
		ref = ref.AddDate(0, 0, -7)
		text = strings.TrimSpace(strings.ReplaceAll(text, "last week", ""))
	} else if strings.Contains(text, "next week") {
		ref = ref.AddDate(0, 0, 7)
		text = strings.TrimSpace(strings.ReplaceAll(text, "next week", ""))
	}

	if m := reWeekday.FindStringSubmatch(text); m != nil {
		target := weekdayNumbers[m[1]]
		cur := ref.Weekday()
		if strings.Contains(text, "last") {
			back := (int(cur) - int(target) + 7) % 7
			if back == 0 {
				back = 7
			}
			return ref.AddDate(0, 0, -back), true
		}
		// Bare and "next" weekday mentions both mean the nearest future
		// occurrence; an exact same-day match rolls a full week forward.
		ahead := (int(target) - int(cur) + 7) % 7
		if ahead == 0 {
			ahead = 7
		}
		return ref.AddDate(0, 0, ahead), true
	}

	if m := reDaysAgo.FindStringSubmatch(text); m != nil {
		return ref.AddDate(0, 0, -atoi(m[1])), true
	}
	if m := reDaysFrom.FindStringSubmatch(text); m != nil {
		return ref.AddDate(0, 0, atoi(m[1])), true
	}
	return time.Time{}, false
}

// parseFreeText is the last-resort general parser over the cleaned remainder
func parseFreeText(text string, ref time.Time) (time.Time, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, false
	}
	parsed, err := dateparse.ParseIn(text, ref.Location())
	if err != nil {
		return time.Time{}, false
	}
	return Midnight(parsed), true
}

func dedupSort(dates []time.Time) []time.Time {
	seen := make(map[string]bool, len(dates))
	out := dates[:0]
	for _, d := range dates {
		key := d.Format("2006-01-02")
		if !seen[key] {
			seen[key] = true
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}
