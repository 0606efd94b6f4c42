package models

import "time"

// LeaveType identifies one of the three leave categories
type LeaveType string

const (
	LeaveEarned LeaveType = "EL"
	LeaveSick   LeaveType = "SL"
	LeaveCasual LeaveType = "CL"
)

var validLeaveTypes = map[LeaveType]bool{
	LeaveEarned: true,
	LeaveSick:   true,
	LeaveCasual: true,
}

// IsValid returns true if the leave type is one of EL, SL, CL
func (t LeaveType) IsValid() bool {
	return validLeaveTypes[t]
}

// String returns the string representation of the leave type
func (t LeaveType) String() string {
	return string(t)
}

// Status represents the lifecycle status of a leave request
type Status string

const (
	StatusPending  Status = "Pending"
	StatusApproved Status = "Approved"
	StatusRejected Status = "Rejected"
)

// IsTerminal returns true once a request can no longer change status
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// String returns the string representation of the status
func (s Status) String() string {
	return string(s)
}

// Duration tags a leave day as full or half
type Duration string

const (
	FullDay Duration = "Full Day"
	HalfDay Duration = "Half Day"
)

// Chat roles stored in the chat log
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Date layouts used in the workbook
const (
	LeaveDateLayout = "2006-01-02 00:00:00"
	TimestampLayout = "2006-01-02 15:04:05"
	DayLayout       = "2006-01-02"
)

// Balance is one row of the Available sheet. TL is derived and must equal
// EL+SL+CL after every mutation.
type Balance struct {
	UserID   int
	EL       int
	SL       int
	CL       int
	TL       int
	AdminID  int
	JoinDate string
}

// Days returns the counter for the given leave type
func (b *Balance) Days(t LeaveType) int {
	switch t {
	case LeaveEarned:
		return b.EL
	case LeaveSick:
		return b.SL
	case LeaveCasual:
		return b.CL
	}
	return 0
}

// Deduct removes days from the given counter and recomputes the total.
// Returns false if the counter would go negative.
func (b *Balance) Deduct(t LeaveType, days int) bool {
	if b.Days(t) < days {
		return false
	}
	switch t {
	case LeaveEarned:
		b.EL -= days
	case LeaveSick:
		b.SL -= days
	case LeaveCasual:
		b.CL -= days
	default:
		return false
	}
	b.TL = b.EL + b.SL + b.CL
	return true
}

// LeaveRequest is one row of the Hierarchy sheet
type LeaveRequest struct {
	AdminID   int
	UserID    int
	LeaveDate time.Time
	Status    Status
	LeaveType LeaveType
	Reason    string
	AppliedAt time.Time
	Duration  Duration
}

// UsedLeave is one row of the Used sheet, appended on approval
type UsedLeave struct {
	UserID    int
	LeaveDate time.Time
	LeaveType LeaveType
	Duration  Duration
}

// ChatMessage is one row of the ChatHistory sheet
type ChatMessage struct {
	UserID    int
	Role      string
	Message   string
	Timestamp time.Time
}

// Exchange is one (user message, assistant reply) pair from the chat log
type Exchange struct {
	User      string
	Assistant string
}
