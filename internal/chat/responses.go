package chat

import (
	"fmt"
	"strings"
	"time"

	"github.com/hrdesk/leave-assistant/internal/models"
	"github.com/hrdesk/leave-assistant/internal/policy"
)

// Canned dialogue texts. Kept in one place so the bots stay logic-only.

const msgInternalError = "I apologize, but I'm having trouble processing your request right now. Please try again."

const msgEmptyMessage = "Please provide a valid message."

func msgAskLeaveType() string {
	return strings.TrimSpace(`
What type of leave? (EL/SL/CL)

- EL: Earned Leave (minimum 3 days, for vacations)
- SL: Sick Leave (today or past dates, for medical reasons)
- CL: Casual Leave (maximum 2 days, for emergencies)

You can just type EL, SL or CL.`)
}

func msgAskLeaveTypeAgain() string {
	return strings.TrimSpace(`
I didn't catch the leave type. Please specify EL, SL or CL.

- EL: Earned Leave (minimum 3 days)
- SL: Sick Leave (today or past dates)
- CL: Casual Leave (maximum 2 days)`)
}

func msgAskDates(typ models.LeaveType, today time.Time) string {
	return fmt.Sprintf(strings.TrimSpace(`
When for %s? Please specify the date or dates:

- "today" or "tomorrow"
- "25-09-2025" or "25Sep2025"
- "25Sep2025 to 27Sep2025"
- "from Friday to Monday"

Today is %s.`), typ, today.Format("02-Jan-2006"))
}

func msgAskDatesAgain(typ models.LeaveType, today time.Time) string {
	return fmt.Sprintf(strings.TrimSpace(`
I need the dates for your %s. Please specify when:

- "today" or "tomorrow"
- "25-09-2025" or "25Sep2025"
- "from Friday to Monday"

Today is %s.`), typ, today.Format("02-Jan-2006"))
}

func msgDateNotUnderstood(typ models.LeaveType) string {
	return fmt.Sprintf(strings.TrimSpace(`
I couldn't figure out which date you want to apply %[1]s for.

Please try formats like:
- "Apply %[1]s for today"
- "Apply %[1]s for 25-09-2025"
- "Apply %[1]s for last Monday"
- "Apply %[1]s for next Friday"`), typ)
}

func msgSpecifyType() string {
	return strings.TrimSpace(`
To apply for leave, please specify the type:

- EL (Earned Leave): planned vacations, minimum 3 consecutive days
- SL (Sick Leave): medical reasons, past dates only
- CL (Casual Leave): emergencies, maximum 2 days`)
}

func msgViolations(violations []policy.Violation) string {
	lines := make([]string, len(violations))
	for i, v := range violations {
		lines[i] = "- " + v.Message
	}
	return "Your application cannot be submitted:\n\n" + strings.Join(lines, "\n") +
		"\n\nPlease start over with \"Apply for leave\"."
}

func msgSubmitted(typ models.LeaveType, submitted []time.Time, balanceAfter int) string {
	dateRange := submitted[0].Format("02-Jan-2006")
	if len(submitted) > 1 {
		dateRange = fmt.Sprintf("%s to %s",
			submitted[0].Format("02-Jan-2006"),
			submitted[len(submitted)-1].Format("02-Jan-2006"))
	}
	plural := "day"
	if len(submitted) > 1 {
		plural = "days"
	}
	return fmt.Sprintf(strings.TrimSpace(`
Leave application submitted.

- Type: %s
- Date: %s (%d %s)
- Status: Pending approval
- Balance after approval: %d %s days

Your manager will review your request.`),
		typ, dateRange, len(submitted), plural, balanceAfter, typ)
}

func msgStoreBusy(date time.Time) string {
	return fmt.Sprintf("Failed to submit the application for %s: the leave file appears to be in use. Please try again in a moment.",
		date.Format("2006-01-02"))
}

func msgBalance(b *models.Balance, today time.Time) string {
	if b == nil {
		return "I couldn't retrieve your leave balance at the moment. Please try again later."
	}
	return fmt.Sprintf(strings.TrimSpace(`
Your leave balance:

- EL (Earned Leave): %d days
- SL (Sick Leave): %d days
- CL (Casual Leave): %d days
- Total available: %d days

Today is %s.`), b.EL, b.SL, b.CL, b.TL, today.Format("02-Jan-2006"))
}

func msgStatus(requests []models.LeaveRequest) string {
	if len(requests) == 0 {
		return "You have no leave applications."
	}
	var sb strings.Builder
	sb.WriteString("Your leave applications:\n\n")
	start := 0
	if len(requests) > 5 {
		start = len(requests) - 5
	}
	for _, r := range requests[start:] {
		sb.WriteString(fmt.Sprintf("- %s: %s - %s\n",
			r.LeaveDate.Format("2006-01-02"), r.LeaveType, r.Status))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func msgPolicy(pol *policy.Policy) string {
	el := pol.Rule(models.LeaveEarned)
	sl := pol.Rule(models.LeaveSick)
	cl := pol.Rule(models.LeaveCasual)
	return fmt.Sprintf(strings.TrimSpace(`
Leave policies:

- EL: %d days per year, minimum %d consecutive days, within %d days of today
- SL: %d days per year, today or past dates only, up to %d days back
- CL: %d days per year, maximum %d consecutive days, within %d days of today
- No leave on weekends or public holidays

Questions? Contact %s (%s).`),
		el.MaxPerYear, el.MinDays, el.DateRangeDays,
		sl.MaxPerYear, sl.PastWindowDays,
		cl.MaxPerYear, cl.MaxConsecutive, cl.DateRangeDays,
		pol.Contact.Name, pol.Contact.Email)
}

func msgGreeting(b *models.Balance) string {
	if b == nil {
		return "Hello! I'm your leave management assistant. How can I help you with leave policies, applications, or balances today?"
	}
	return fmt.Sprintf(strings.TrimSpace(`
Hello! I'm your leave management assistant.

Your current balance: EL %d, SL %d, CL %d (total %d days).

I can help you apply for leave, check your balance, or review your
application status. Try "Apply for leave" to get started.`),
		b.EL, b.SL, b.CL, b.TL)
}

func msgHelp() string {
	return strings.TrimSpace(`
How to apply for leave:

1. Say "Apply for leave" or "I want to apply leave"
2. I'll ask for the type (EL/SL/CL)
3. I'll ask for the dates
4. I'll validate and submit your application

Other commands: "Check balance", "Application status", "Leave policies".`)
}

func msgTypeInfo(typ models.LeaveType) string {
	switch typ {
	case models.LeaveEarned:
		return strings.TrimSpace(`
Earned Leave (EL): for planned vacations, minimum 3 consecutive days,
apply within 30 days of today.

Try: "Apply EL from 25-12-2025 to 29-12-2025"`)
	case models.LeaveSick:
		return strings.TrimSpace(`
Sick Leave (SL): for medical reasons, today and past dates only,
up to 15 days back.

Try: "Apply SL for today" or "Apply SL for yesterday"`)
	case models.LeaveCasual:
		return strings.TrimSpace(`
Casual Leave (CL): for emergencies, maximum 2 consecutive days,
apply within 30 days of today.

Try: "Apply CL for tomorrow"`)
	}
	return "Please specify a valid leave type: EL, SL, or CL."
}

func msgFallback() string {
	return strings.TrimSpace(`
I specialize in leave management. I can help you with:

- Applying for leave ("Apply for leave")
- Checking your balance ("What's my leave balance?")
- Application status ("My application status")
- Leave policies ("What are the leave rules?")

Type "help" for the full list.`)
}
