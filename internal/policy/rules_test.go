package policy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hrdesk/leave-assistant/internal/dates"
	"github.com/hrdesk/leave-assistant/internal/models"
)

// Reference date for all validator tests: Wednesday 2025-09-03.
var ref = time.Date(2025, time.September, 3, 0, 0, 0, 0, time.Local)

func day(m time.Month, d int) time.Time {
	return time.Date(2025, m, d, 0, 0, 0, 0, time.Local)
}

func codes(vs []Violation) []string {
	if len(vs) == 0 {
		return nil
	}
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.Code
	}
	return out
}

func fullBalance(userID int) *models.Balance {
	return &models.Balance{UserID: userID, EL: 12, SL: 7, CL: 5, TL: 24}
}

func TestValidate(t *testing.T) {
	v := NewValidator(Defaults(), dates.NewCalendar([]string{"2025-09-09"}))

	tests := []struct {
		name      string
		typ       models.LeaveType
		dates     []time.Time
		balance   *models.Balance
		wantCodes []string
	}{
		{
			name:    "el three working days accepted",
			typ:     models.LeaveEarned,
			dates:   []time.Time{day(time.September, 4), day(time.September, 5), day(time.September, 8)},
			balance: fullBalance(1001),
		},
		{
			name:      "el below minimum days",
			typ:       models.LeaveEarned,
			dates:     []time.Time{day(time.September, 4)},
			balance:   fullBalance(1001),
			wantCodes: []string{CodeMinDays},
		},
		{
			name:      "el outside thirty day window",
			typ:       models.LeaveEarned,
			dates:     []time.Time{day(time.October, 10), day(time.October, 13), day(time.October, 14)},
			balance:   fullBalance(1001),
			wantCodes: []string{CodeDateRange},
		},
		{
			name:    "cl two days accepted",
			typ:     models.LeaveCasual,
			dates:   []time.Time{day(time.September, 4), day(time.September, 5)},
			balance: fullBalance(1002),
		},
		{
			name:      "cl over consecutive limit",
			typ:       models.LeaveCasual,
			dates:     []time.Time{day(time.September, 4), day(time.September, 5), day(time.September, 8)},
			balance:   fullBalance(1002),
			wantCodes: []string{CodeMaxDays},
		},
		{
			name:    "sl yesterday accepted",
			typ:     models.LeaveSick,
			dates:   []time.Time{day(time.September, 2)},
			balance: fullBalance(1004),
		},
		{
			name:    "sl at window boundary accepted",
			typ:     models.LeaveSick,
			dates:   []time.Time{day(time.August, 19)},
			balance: fullBalance(1004),
		},
		{
			name:      "sl future rejected",
			typ:       models.LeaveSick,
			dates:     []time.Time{day(time.September, 4)},
			balance:   fullBalance(1004),
			wantCodes: []string{CodeSickFuture},
		},
		{
			name:      "sl beyond past window rejected",
			typ:       models.LeaveSick,
			dates:     []time.Time{day(time.August, 18)},
			balance:   fullBalance(1004),
			wantCodes: []string{CodeSickTooOld},
		},
		{
			name:      "weekend rejected",
			typ:       models.LeaveCasual,
			dates:     []time.Time{day(time.September, 6)},
			balance:   fullBalance(1002),
			wantCodes: []string{CodeWeekend},
		},
		{
			name:      "public holiday rejected",
			typ:       models.LeaveCasual,
			dates:     []time.Time{day(time.September, 9)},
			balance:   fullBalance(1002),
			wantCodes: []string{CodeHoliday},
		},
		{
			name:      "insufficient balance",
			typ:       models.LeaveCasual,
			dates:     []time.Time{day(time.September, 4), day(time.September, 5)},
			balance:   &models.Balance{UserID: 1002, EL: 1, SL: 1, CL: 1, TL: 3},
			wantCodes: []string{CodeBalance},
		},
		{
			name:      "nil balance counts as zero",
			typ:       models.LeaveCasual,
			dates:     []time.Time{day(time.September, 4)},
			balance:   nil,
			wantCodes: []string{CodeBalance},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := v.Validate(Input{
				Type:    tt.typ,
				Dates:   tt.dates,
				Balance: tt.balance,
				Ref:     ref,
			})
			assert.Equal(t, tt.wantCodes, codes(got))
		})
	}
}

func TestValidateOverlapStopsAtFirstConflict(t *testing.T) {
	v := NewValidator(Defaults(), dates.NewCalendar(nil))

	calls := 0
	got := v.Validate(Input{
		Type:    models.LeaveCasual,
		Dates:   []time.Time{day(time.September, 4), day(time.September, 5)},
		Balance: fullBalance(1002),
		Ref:     ref,
		HasOverlap: func(time.Time) bool {
			calls++
			return true
		},
	})

	assert.Equal(t, []string{CodeOverlap}, codes(got))
	assert.Equal(t, 1, calls)
}

func TestValidateCollectsIndependentViolations(t *testing.T) {
	v := NewValidator(Defaults(), dates.NewCalendar(nil))

	// One weekend date and a single-day EL request trip two separate rules.
	got := v.Validate(Input{
		Type:    models.LeaveEarned,
		Dates:   []time.Time{day(time.September, 6)},
		Balance: fullBalance(1001),
		Ref:     ref,
	})

	assert.Equal(t, []string{CodeWeekend, CodeMinDays}, codes(got))
}

func TestDaysBetweenAcrossClockChange(t *testing.T) {
	// Model a spring-forward month: the wall clock offset moves one hour
	// between the two midnights, so the raw duration is 30 days minus one
	// hour. The count must still be 30 whole calendar days.
	before := time.FixedZone("UTC-5", -5*3600)
	after := time.FixedZone("UTC-4", -4*3600)
	a := time.Date(2025, time.March, 1, 0, 0, 0, 0, before)
	b := time.Date(2025, time.March, 31, 0, 0, 0, 0, after)

	assert.Equal(t, 30, daysBetween(a, b))
	assert.Equal(t, -30, daysBetween(b, a))
	assert.Equal(t, 0, daysBetween(a, a))
}
