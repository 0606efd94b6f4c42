package ledger

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/hrdesk/leave-assistant/internal/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func openTestLedger(t *testing.T) (*Ledger, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "leave.xlsx")

	err := Seed(path,
		[]models.Balance{
			{UserID: 1001, EL: 4, SL: 5, CL: 3, TL: 12, AdminID: 5000, JoinDate: "2025-01-15"},
			{UserID: 1002, EL: 1, SL: 1, CL: 2, TL: 4, AdminID: 5000, JoinDate: "2025-05-01"},
		},
		nil, nil, nil)
	require.NoError(t, err)

	l, err := Open(path, DefaultRetryPolicy(), zap.NewNop())
	require.NoError(t, err)
	return l, path
}

func TestOpenCreatesWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fresh.xlsx")

	l, err := Open(path, DefaultRetryPolicy(), zap.NewNop())
	require.NoError(t, err)

	b, err := l.Balance(1001)
	require.NoError(t, err)
	assert.Nil(t, b, "empty workbook has no balances")
}

func TestBalanceLookup(t *testing.T) {
	l, _ := openTestLedger(t)

	b, err := l.Balance(1001)
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.Equal(t, 4, b.EL)
	assert.Equal(t, 5, b.SL)
	assert.Equal(t, 3, b.CL)
	assert.Equal(t, 12, b.TL)
	assert.Equal(t, 5000, b.AdminID)
	assert.Equal(t, "2025-01-15", b.JoinDate)

	unknown, err := l.Balance(9999)
	require.NoError(t, err)
	assert.Nil(t, unknown)
}

func TestAddRequest(t *testing.T) {
	l, _ := openTestLedger(t)
	date := day(2025, time.September, 10)

	require.NoError(t, l.AddRequest(1001, date, models.LeaveCasual, "Personal work", models.FullDay))

	requests, err := l.RequestsFor(1001)
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, 5000, requests[0].AdminID, "admin id copied from the balance row")
	assert.Equal(t, models.StatusPending, requests[0].Status)
	assert.Equal(t, models.LeaveCasual, requests[0].LeaveType)
	assert.Equal(t, date, requests[0].LeaveDate)

	pending, err := l.PendingFor(5000)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestAddRequestUnknownUser(t *testing.T) {
	l, _ := openTestLedger(t)

	err := l.AddRequest(9999, day(2025, time.September, 10), models.LeaveCasual, "x", models.FullDay)
	assert.Error(t, err)
}

func TestApprovalDeductsBalance(t *testing.T) {
	l, _ := openTestLedger(t)
	date := day(2025, time.September, 10)

	require.NoError(t, l.AddRequest(1001, date, models.LeaveCasual, "Personal work", models.FullDay))
	require.NoError(t, l.UpdateStatus(1001, date, models.StatusApproved))

	b, err := l.Balance(1001)
	require.NoError(t, err)
	assert.Equal(t, 2, b.CL)
	assert.Equal(t, b.EL+b.SL+b.CL, b.TL, "total stays the sum of the counters")

	requests, err := l.RequestsFor(1001)
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, models.StatusApproved, requests[0].Status)

	// The approved day is now booked for good.
	assert.True(t, l.HasOverlap(1001, date))
}

func TestRejectionKeepsBalance(t *testing.T) {
	l, _ := openTestLedger(t)
	date := day(2025, time.September, 10)

	require.NoError(t, l.AddRequest(1001, date, models.LeaveEarned, "Vacation", models.FullDay))
	require.NoError(t, l.UpdateStatus(1001, date, models.StatusRejected))

	b, err := l.Balance(1001)
	require.NoError(t, err)
	assert.Equal(t, 4, b.EL)
	assert.Equal(t, 12, b.TL)

	// A rejected day can be requested again.
	assert.False(t, l.HasOverlap(1001, date))
}

func TestUpdateStatusUnknownRequest(t *testing.T) {
	l, _ := openTestLedger(t)

	err := l.UpdateStatus(1001, day(2025, time.September, 10), models.StatusApproved)
	assert.Error(t, err)
}

func TestApprovalAbortsOnInsufficientBalance(t *testing.T) {
	l, _ := openTestLedger(t)
	d1 := day(2025, time.September, 10)
	d2 := day(2025, time.September, 11)

	// User 1002 holds one SL day; the second approval must fail whole.
	require.NoError(t, l.AddRequest(1002, d1, models.LeaveSick, "Fever", models.FullDay))
	require.NoError(t, l.AddRequest(1002, d2, models.LeaveSick, "Fever", models.FullDay))

	require.NoError(t, l.UpdateStatus(1002, d1, models.StatusApproved))
	err := l.UpdateStatus(1002, d2, models.StatusApproved)
	require.Error(t, err)

	requests, err2 := l.RequestsFor(1002)
	require.NoError(t, err2)
	require.Len(t, requests, 2)
	assert.Equal(t, models.StatusApproved, requests[0].Status)
	assert.Equal(t, models.StatusPending, requests[1].Status, "failed approval leaves the request pending")

	b, err3 := l.Balance(1002)
	require.NoError(t, err3)
	assert.Equal(t, 0, b.SL)
}

func TestApprovalAfterRejectionTargetsNewRequest(t *testing.T) {
	l, _ := openTestLedger(t)
	date := day(2025, time.September, 10)

	require.NoError(t, l.AddRequest(1001, date, models.LeaveCasual, "Personal work", models.FullDay))
	require.NoError(t, l.UpdateStatus(1001, date, models.StatusRejected))

	// A rejected date is free again, so the user applies once more. The
	// decision must land on the fresh row, never the dead rejected one.
	require.NoError(t, l.AddRequest(1001, date, models.LeaveCasual, "Personal work", models.FullDay))

	approved, total, err := l.ApproveAll(5000)
	require.NoError(t, err)
	assert.Equal(t, 1, approved)
	assert.Equal(t, 1, total)

	requests, err := l.RequestsFor(1001)
	require.NoError(t, err)
	require.Len(t, requests, 2)
	assert.Equal(t, models.StatusRejected, requests[0].Status, "the old row stays rejected")
	assert.Equal(t, models.StatusApproved, requests[1].Status)

	pending, err := l.PendingFor(5000)
	require.NoError(t, err)
	assert.Empty(t, pending)

	b, err := l.Balance(1001)
	require.NoError(t, err)
	assert.Equal(t, 2, b.CL, "exactly one day deducted")
	assert.True(t, l.HasOverlap(1001, date))
}

func TestApproveAll(t *testing.T) {
	l, _ := openTestLedger(t)

	require.NoError(t, l.AddRequest(1001, day(2025, time.September, 10), models.LeaveCasual, "a", models.FullDay))
	require.NoError(t, l.AddRequest(1002, day(2025, time.September, 11), models.LeaveCasual, "b", models.FullDay))

	approved, total, err := l.ApproveAll(5000)
	require.NoError(t, err)
	assert.Equal(t, 2, approved)
	assert.Equal(t, 2, total)

	pending, err := l.PendingFor(5000)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestApproveAllNoPending(t *testing.T) {
	l, _ := openTestLedger(t)

	approved, total, err := l.ApproveAll(5000)
	require.NoError(t, err)
	assert.Equal(t, 0, approved)
	assert.Equal(t, 0, total)
}

func TestHasOverlapPendingRequest(t *testing.T) {
	l, _ := openTestLedger(t)
	date := day(2025, time.September, 10)

	assert.False(t, l.HasOverlap(1001, date))
	require.NoError(t, l.AddRequest(1001, date, models.LeaveCasual, "x", models.FullDay))
	assert.True(t, l.HasOverlap(1001, date), "pending requests block the date")
	assert.False(t, l.HasOverlap(1002, date), "other users are unaffected")
}

func TestChatLog(t *testing.T) {
	l, _ := openTestLedger(t)

	require.NoError(t, l.AppendChat(1001, models.RoleUser, "hi"))
	require.NoError(t, l.AppendChat(1001, models.RoleAssistant, "hello"))
	require.NoError(t, l.AppendChat(1002, models.RoleUser, "balance please"))

	msgs, err := l.ChatHistory(1001, 10)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "hi", msgs[0].Message)
	assert.Equal(t, "hello", msgs[1].Message)

	// Limit keeps the most recent tail.
	msgs, err = l.ChatHistory(1001, 1)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "hello", msgs[0].Message)
}

func TestClearChatIsUserScoped(t *testing.T) {
	l, _ := openTestLedger(t)

	require.NoError(t, l.AppendChat(1001, models.RoleUser, "hi"))
	require.NoError(t, l.AppendChat(1002, models.RoleUser, "hello"))

	require.NoError(t, l.ClearChat(1001))

	mine, err := l.ChatHistory(1001, 10)
	require.NoError(t, err)
	assert.Empty(t, mine)

	theirs, err := l.ChatHistory(1002, 10)
	require.NoError(t, err)
	assert.Len(t, theirs, 1)
}

func TestSaveRetryExhaustionSurfacesStoreBusy(t *testing.T) {
	l, path := openTestLedger(t)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	// Point the save target at a directory so every attempt fails, then
	// shrink the budget so exhaustion is quick.
	l.path = t.TempDir()
	l.retry = RetryPolicy{MaxAttempts: 2, Backoff: time.Millisecond}

	err = l.saveWithRetry(f)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStoreBusy)
}

func TestMissingSheetIsRecreated(t *testing.T) {
	l, path := openTestLedger(t)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	require.NoError(t, f.DeleteSheet(SheetChat))
	require.NoError(t, f.SaveAs(path))
	f.Close()

	msgs, err := l.ChatHistory(1001, 10)
	require.NoError(t, err, "a dropped sheet is recreated, not a fault")
	assert.Empty(t, msgs)

	require.NoError(t, l.AppendChat(1001, models.RoleUser, "still works"))
	msgs, err = l.ChatHistory(1001, 10)
	require.NoError(t, err)
	assert.Len(t, msgs, 1)
}
