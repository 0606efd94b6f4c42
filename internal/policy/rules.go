// Package policy evaluates leave requests against the company rule set.
// Validation is pure: it never touches the store beyond the injected
// overlap check.
package policy

import (
	"fmt"
	"strings"
	"time"

	"github.com/hrdesk/leave-assistant/internal/dates"
	"github.com/hrdesk/leave-assistant/internal/models"
)

// Violation codes
const (
	CodeWeekend    = "weekend"
	CodeHoliday    = "public_holiday"
	CodeSickFuture = "sl_future_date"
	CodeSickTooOld = "sl_past_window"
	CodeDateRange  = "date_range"
	CodeMinDays    = "el_min_days"
	CodeMaxDays    = "cl_max_days"
	CodeBalance    = "insufficient_balance"
	CodeOverlap    = "date_conflict"
)

// Violation is one failed policy rule with the offending values spelled out
type Violation struct {
	Code    string
	Message string
}

// Input carries everything one validation pass needs. Ref is the date all
// relative windows are measured from, normally today.
type Input struct {
	Type    models.LeaveType
	Dates   []time.Time
	Balance *models.Balance
	Ref     time.Time

	// HasOverlap reports whether the user already holds a non-rejected
	// request or history row on the date. A lookup error counts as an
	// overlap so a broken store never lets a double-booking through.
	HasOverlap func(date time.Time) bool
}

// Validator applies the rule categories in a fixed order and returns every
// violation found. An empty result means the request may be committed.
type Validator struct {
	pol *Policy
	cal *dates.Calendar
}

// NewValidator creates a validator over the given policy and calendar
func NewValidator(pol *Policy, cal *dates.Calendar) *Validator {
	return &Validator{pol: pol, cal: cal}
}

// Validate checks (type, dates, balance, existing records) against every
// rule category. Independent categories are all evaluated and their
// violations concatenated; the overlap scan stops at the first conflicting
// date.
func (v *Validator) Validate(in Input) []Violation {
	var out []Violation
	ref := dates.Midnight(in.Ref)
	rule := v.pol.Rule(in.Type)

	out = append(out, v.checkCalendar(in.Dates)...)
	out = append(out, v.checkWindows(in.Type, rule, in.Dates, ref)...)
	out = append(out, checkDuration(in.Type, rule, len(in.Dates))...)
	out = append(out, checkBalance(in.Type, in.Balance, len(in.Dates))...)
	out = append(out, checkOverlap(in)...)
	return out
}

func (v *Validator) checkCalendar(ds []time.Time) []Violation {
	var weekends, holidays []string
	for _, d := range ds {
		if v.cal.IsWeekend(d) {
			weekends = append(weekends, d.Format("2006-01-02 (Monday)"))
		}
		if v.cal.IsHoliday(d) {
			holidays = append(holidays, d.Format("2006-01-02"))
		}
	}
	var out []Violation
	if len(weekends) > 0 {
		out = append(out, Violation{CodeWeekend,
			fmt.Sprintf("leave cannot fall on a weekend: %s", strings.Join(weekends, ", "))})
	}
	if len(holidays) > 0 {
		out = append(out, Violation{CodeHoliday,
			fmt.Sprintf("leave cannot fall on a public holiday: %s", strings.Join(holidays, ", "))})
	}
	return out
}

func (v *Validator) checkWindows(typ models.LeaveType, rule Rule, ds []time.Time, ref time.Time) []Violation {
	var out []Violation
	if rule.PastOnly {
		var future, tooOld []string
		for _, d := range ds {
			if d.After(ref) {
				future = append(future, d.Format("2006-01-02"))
			} else if daysBetween(d, ref) > rule.PastWindowDays {
				tooOld = append(tooOld, d.Format("2006-01-02"))
			}
		}
		if len(future) > 0 {
			out = append(out, Violation{CodeSickFuture,
				fmt.Sprintf("sick leave cannot be applied for future dates: %s (allowed: today %s or earlier)",
					strings.Join(future, ", "), ref.Format("2006-01-02"))})
		}
		if len(tooOld) > 0 {
			out = append(out, Violation{CodeSickTooOld,
				fmt.Sprintf("sick leave is limited to the past %d days: %s",
					rule.PastWindowDays, strings.Join(tooOld, ", "))})
		}
		return out
	}

	if rule.DateRangeDays > 0 {
		var outside []string
		for _, d := range ds {
			dist := daysBetween(d, ref)
			if dist < 0 {
				dist = -dist
			}
			if dist > rule.DateRangeDays {
				outside = append(outside, d.Format("2006-01-02"))
			}
		}
		if len(outside) > 0 {
			out = append(out, Violation{CodeDateRange,
				fmt.Sprintf("%s must be within %d days of today (%s): %s",
					typ, rule.DateRangeDays, ref.Format("2006-01-02"), strings.Join(outside, ", "))})
		}
	}
	return out
}

func checkDuration(typ models.LeaveType, rule Rule, count int) []Violation {
	if typ == models.LeaveEarned && rule.MinDays > 0 && count < rule.MinDays {
		return []Violation{{CodeMinDays,
			fmt.Sprintf("earned leave requires a minimum of %d consecutive days, requested %d", rule.MinDays, count)}}
	}
	if typ == models.LeaveCasual && rule.MaxConsecutive > 0 && count > rule.MaxConsecutive {
		return []Violation{{CodeMaxDays,
			fmt.Sprintf("casual leave allows a maximum of %d consecutive days, requested %d", rule.MaxConsecutive, count)}}
	}
	return nil
}

func checkBalance(typ models.LeaveType, bal *models.Balance, count int) []Violation {
	available := 0
	if bal != nil {
		available = bal.Days(typ)
	}
	if available < count {
		return []Violation{{CodeBalance,
			fmt.Sprintf("insufficient %s balance: available %d days, required %d days", typ, available, count)}}
	}
	return nil
}

func checkOverlap(in Input) []Violation {
	if in.HasOverlap == nil {
		return nil
	}
	for _, d := range in.Dates {
		if in.HasOverlap(d) {
			// First conflict aborts the remaining date-by-date scan.
			return []Violation{{CodeOverlap,
				fmt.Sprintf("you already have leave on %s", d.Format("2006-01-02"))}}
		}
	}
	return nil
}

// daysBetween returns the whole calendar days from a to b (positive when a
// precedes b). Both dates are renormalized to UTC midnights first so that a
// daylight-saving jump never shortens a day to 23 hours and truncates the
// count.
func daysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	ua := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	ub := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}
