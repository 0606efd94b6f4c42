// Package ledger is the persistent multi-table store for balances, leave
// requests, approved history and the chat log. All tables live in one
// shared workbook file, one sheet per table.
//
// Every mutation is a whole-sheet read-modify-write followed by a single
// save. Within one process mutations are serialized by a mutex; across
// processes there is no lock primitive, so a writer that persists last
// silently overwrites a concurrent writer's update. That last-write-wins
// race is an accepted, documented weakness; the only mitigation is the
// bounded save retry in RetryPolicy.
package ledger

import (
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/xuri/excelize/v2"

	"go.uber.org/zap"

	"github.com/hrdesk/leave-assistant/internal/dates"
	"github.com/hrdesk/leave-assistant/internal/models"
)

// Ledger provides the leave-store operations over one workbook file
type Ledger struct {
	mu     sync.Mutex
	path   string
	retry  RetryPolicy
	now    func() time.Time
	logger *zap.Logger
}

// Open creates a ledger over the workbook at path, creating the file with
// empty schema-correct sheets if it does not exist.
func Open(path string, retry RetryPolicy, logger *zap.Logger) (*Ledger, error) {
	l := &Ledger{
		path:   path,
		retry:  retry,
		now:    time.Now,
		logger: logger,
	}
	f, err := l.open()
	if err != nil {
		return nil, err
	}
	f.Close()
	return l, nil
}

// Balance returns the balance row for a user, or nil if the user is unknown
func (l *Ledger) Balance(userID int) (*models.Balance, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := l.open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	balances, err := l.readBalances(f)
	if err != nil {
		return nil, err
	}
	for i := range balances {
		if balances[i].UserID == userID {
			b := balances[i]
			return &b, nil
		}
	}
	return nil, nil
}

// AddRequest appends a Pending request row for one leave day. The owning
// administrator id is copied from the user's balance row at creation time.
func (l *Ledger) AddRequest(userID int, date time.Time, typ models.LeaveType, reason string, dur models.Duration) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := l.open()
	if err != nil {
		return err
	}
	defer f.Close()

	balances, err := l.readBalances(f)
	if err != nil {
		return err
	}
	adminID := 0
	found := false
	for _, b := range balances {
		if b.UserID == userID {
			adminID = b.AdminID
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("ledger: user %d not found", userID)
	}

	requests, err := l.readRequests(f)
	if err != nil {
		return err
	}
	requests = append(requests, models.LeaveRequest{
		AdminID:   adminID,
		UserID:    userID,
		LeaveDate: dates.Midnight(date),
		Status:    models.StatusPending,
		LeaveType: typ,
		Reason:    reason,
		AppliedAt: l.now(),
		Duration:  dur,
	})

	if err := replaceSheet(f, SheetRequests, requestRows(requests)); err != nil {
		return err
	}
	if err := l.saveWithRetry(f); err != nil {
		return err
	}
	l.logger.Info("leave request added",
		zap.Int("user_id", userID),
		zap.String("date", date.Format(models.DayLayout)),
		zap.String("type", typ.String()))
	return nil
}

// UpdateStatus locates the unique (user, date) request and sets its status.
// An Approved transition additionally deducts one day from the matching
// balance counter, recomputes the total and appends a history row; all
// affected sheets are persisted in the same save. If the deduction fails
// the whole update is aborted and the status stays unchanged.
func (l *Ledger) UpdateStatus(userID int, date time.Time, status models.Status) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.updateStatusLocked(userID, date, status)
}

func (l *Ledger) updateStatusLocked(userID int, date time.Time, status models.Status) error {
	f, err := l.open()
	if err != nil {
		return err
	}
	defer f.Close()

	requests, err := l.readRequests(f)
	if err != nil {
		return err
	}
	day := dates.Midnight(date)
	idx := -1
	for i, r := range requests {
		// Rejected rows are dead: the user may hold a fresh request for the
		// same date, and that one is the decision target.
		if r.UserID == userID && dates.SameDay(r.LeaveDate, day) && r.Status != models.StatusRejected {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("ledger: no request for user %d on %s", userID, day.Format(models.DayLayout))
	}
	requests[idx].Status = status

	if status != models.StatusApproved {
		if err := replaceSheet(f, SheetRequests, requestRows(requests)); err != nil {
			return err
		}
		return l.saveWithRetry(f)
	}

	// Approval: deduct the balance and append history in the same write.
	balances, err := l.readBalances(f)
	if err != nil {
		return err
	}
	typ := requests[idx].LeaveType
	deducted := false
	for i := range balances {
		if balances[i].UserID == userID {
			// Re-checked defensively even though validation already
			// guaranteed sufficient balance at application time.
			if !balances[i].Deduct(typ, 1) {
				return fmt.Errorf("ledger: insufficient %s balance for user %d", typ, userID)
			}
			deducted = true
			break
		}
	}
	if !deducted {
		return fmt.Errorf("ledger: user %d has no balance row", userID)
	}

	used, err := l.readUsed(f)
	if err != nil {
		return err
	}
	used = append(used, models.UsedLeave{
		UserID:    userID,
		LeaveDate: day,
		LeaveType: typ,
		Duration:  requests[idx].Duration,
	})

	if err := replaceSheet(f, SheetRequests, requestRows(requests)); err != nil {
		return err
	}
	if err := replaceSheet(f, SheetAvailable, balanceRows(balances)); err != nil {
		return err
	}
	if err := replaceSheet(f, SheetUsed, usedRows(used)); err != nil {
		return err
	}
	if err := l.saveWithRetry(f); err != nil {
		return err
	}
	l.logger.Info("leave request approved",
		zap.Int("user_id", userID),
		zap.String("date", day.Format(models.DayLayout)),
		zap.String("type", typ.String()))
	return nil
}

// PendingFor returns the Pending requests owned by an administrator
func (l *Ledger) PendingFor(adminID int) ([]models.LeaveRequest, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pendingForLocked(adminID)
}

func (l *Ledger) pendingForLocked(adminID int) ([]models.LeaveRequest, error) {
	f, err := l.open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	requests, err := l.readRequests(f)
	if err != nil {
		return nil, err
	}
	var pending []models.LeaveRequest
	for _, r := range requests {
		if r.AdminID == adminID && r.Status == models.StatusPending {
			pending = append(pending, r)
		}
	}
	return pending, nil
}

// ApproveAll approves every pending request for an administrator. A failure
// on one record is logged and does not block the rest; the counts let the
// caller report partial success.
func (l *Ledger) ApproveAll(adminID int) (approved, total int, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	pending, err := l.pendingForLocked(adminID)
	if err != nil {
		return 0, 0, err
	}
	for _, r := range pending {
		if err := l.updateStatusLocked(r.UserID, r.LeaveDate, models.StatusApproved); err != nil {
			l.logger.Warn("approve-all: skipping request",
				zap.Int("user_id", r.UserID),
				zap.String("date", r.LeaveDate.Format(models.DayLayout)),
				zap.Error(err))
			continue
		}
		approved++
	}
	return approved, len(pending), nil
}

// RequestsFor returns all requests of one user, oldest first
func (l *Ledger) RequestsFor(userID int) ([]models.LeaveRequest, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := l.open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	requests, err := l.readRequests(f)
	if err != nil {
		return nil, err
	}
	var out []models.LeaveRequest
	for _, r := range requests {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

// HasOverlap reports whether the user already holds the date in a
// non-Rejected request or in the approved history. Lookup failures count
// as an overlap so a broken store never admits a double-booking.
func (l *Ledger) HasOverlap(userID int, date time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := l.open()
	if err != nil {
		l.logger.Error("overlap check failed open", zap.Error(err))
		return true
	}
	defer f.Close()

	day := dates.Midnight(date)
	requests, err := l.readRequests(f)
	if err != nil {
		l.logger.Error("overlap check failed reading requests", zap.Error(err))
		return true
	}
	for _, r := range requests {
		if r.UserID == userID && r.Status != models.StatusRejected && dates.SameDay(r.LeaveDate, day) {
			return true
		}
	}

	used, err := l.readUsed(f)
	if err != nil {
		l.logger.Error("overlap check failed reading history", zap.Error(err))
		return true
	}
	for _, u := range used {
		if u.UserID == userID && dates.SameDay(u.LeaveDate, day) {
			return true
		}
	}
	return false
}

// AppendChat appends one message to the user's chat log
func (l *Ledger) AppendChat(userID int, role, message string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := l.open()
	if err != nil {
		return err
	}
	defer f.Close()

	msgs, err := l.readChat(f)
	if err != nil {
		return err
	}
	msgs = append(msgs, models.ChatMessage{
		UserID:    userID,
		Role:      role,
		Message:   message,
		Timestamp: l.now(),
	})
	if err := replaceSheet(f, SheetChat, chatRows(msgs)); err != nil {
		return err
	}
	return l.saveWithRetry(f)
}

// ChatHistory returns up to limit of the user's most recent messages in
// timestamp order. Only that user's rows are ever visible.
func (l *Ledger) ChatHistory(userID, limit int) ([]models.ChatMessage, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := l.open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	msgs, err := l.readChat(f)
	if err != nil {
		return nil, err
	}
	var mine []models.ChatMessage
	for _, m := range msgs {
		if m.UserID == userID {
			mine = append(mine, m)
		}
	}
	sort.SliceStable(mine, func(i, j int) bool { return mine[i].Timestamp.Before(mine[j].Timestamp) })
	if limit > 0 && len(mine) > limit {
		mine = mine[len(mine)-limit:]
	}
	return mine, nil
}

// ClearChat removes the user's chat rows. Rows of every other user are
// untouched; that boundary is the privacy contract of the chat log.
func (l *Ledger) ClearChat(userID int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := l.open()
	if err != nil {
		return err
	}
	defer f.Close()

	msgs, err := l.readChat(f)
	if err != nil {
		return err
	}
	kept := msgs[:0]
	for _, m := range msgs {
		if m.UserID != userID {
			kept = append(kept, m)
		}
	}
	if err := replaceSheet(f, SheetChat, chatRows(kept)); err != nil {
		return err
	}
	return l.saveWithRetry(f)
}

// --- row codecs ---

func (l *Ledger) readBalances(f *excelize.File) ([]models.Balance, error) {
	rows, err := l.readSheet(f, SheetAvailable)
	if err != nil {
		return nil, err
	}
	out := make([]models.Balance, 0, len(rows))
	for _, row := range rows {
		if len(row) < 6 {
			continue
		}
		b := models.Balance{
			UserID:  atoiCell(row[0]),
			EL:      atoiCell(row[1]),
			SL:      atoiCell(row[2]),
			CL:      atoiCell(row[3]),
			TL:      atoiCell(row[4]),
			AdminID: atoiCell(row[5]),
		}
		if len(row) > 6 {
			b.JoinDate = row[6]
		}
		out = append(out, b)
	}
	return out, nil
}

func (l *Ledger) readRequests(f *excelize.File) ([]models.LeaveRequest, error) {
	rows, err := l.readSheet(f, SheetRequests)
	if err != nil {
		return nil, err
	}
	out := make([]models.LeaveRequest, 0, len(rows))
	for _, row := range rows {
		if len(row) < 8 {
			continue
		}
		out = append(out, models.LeaveRequest{
			AdminID:   atoiCell(row[0]),
			UserID:    atoiCell(row[1]),
			LeaveDate: parseCellDate(row[2]),
			Status:    models.Status(row[3]),
			LeaveType: models.LeaveType(row[4]),
			Reason:    row[5],
			AppliedAt: parseCellDate(row[6]),
			Duration:  models.Duration(row[7]),
		})
	}
	return out, nil
}

func (l *Ledger) readUsed(f *excelize.File) ([]models.UsedLeave, error) {
	rows, err := l.readSheet(f, SheetUsed)
	if err != nil {
		return nil, err
	}
	out := make([]models.UsedLeave, 0, len(rows))
	for _, row := range rows {
		if len(row) < 4 {
			continue
		}
		out = append(out, models.UsedLeave{
			UserID:    atoiCell(row[0]),
			LeaveDate: parseCellDate(row[1]),
			LeaveType: models.LeaveType(row[2]),
			Duration:  models.Duration(row[3]),
		})
	}
	return out, nil
}

func (l *Ledger) readChat(f *excelize.File) ([]models.ChatMessage, error) {
	rows, err := l.readSheet(f, SheetChat)
	if err != nil {
		return nil, err
	}
	out := make([]models.ChatMessage, 0, len(rows))
	for _, row := range rows {
		if len(row) < 4 {
			continue
		}
		out = append(out, models.ChatMessage{
			UserID:    atoiCell(row[0]),
			Role:      row[1],
			Message:   row[2],
			Timestamp: parseCellDate(row[3]),
		})
	}
	return out, nil
}

func balanceRows(balances []models.Balance) [][]interface{} {
	rows := make([][]interface{}, len(balances))
	for i, b := range balances {
		rows[i] = []interface{}{b.UserID, b.EL, b.SL, b.CL, b.TL, b.AdminID, b.JoinDate}
	}
	return rows
}

func requestRows(requests []models.LeaveRequest) [][]interface{} {
	rows := make([][]interface{}, len(requests))
	for i, r := range requests {
		rows[i] = []interface{}{
			r.AdminID, r.UserID,
			r.LeaveDate.Format(models.LeaveDateLayout),
			r.Status.String(), r.LeaveType.String(), r.Reason,
			r.AppliedAt.Format(models.TimestampLayout),
			string(r.Duration),
		}
	}
	return rows
}

func usedRows(used []models.UsedLeave) [][]interface{} {
	rows := make([][]interface{}, len(used))
	for i, u := range used {
		rows[i] = []interface{}{
			u.UserID,
			u.LeaveDate.Format(models.LeaveDateLayout),
			u.LeaveType.String(), string(u.Duration),
		}
	}
	return rows
}

func chatRows(msgs []models.ChatMessage) [][]interface{} {
	rows := make([][]interface{}, len(msgs))
	for i, m := range msgs {
		rows[i] = []interface{}{
			m.UserID, m.Role, m.Message,
			m.Timestamp.Format(models.TimestampLayout),
		}
	}
	return rows
}

func atoiCell(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		// Numeric cells sometimes come back as floats.
		if fl, ferr := strconv.ParseFloat(s, 64); ferr == nil {
			return int(fl)
		}
		return 0
	}
	return n
}

func parseCellDate(s string) time.Time {
	for _, layout := range []string{
		models.LeaveDateLayout,
		models.TimestampLayout,
		models.DayLayout,
	} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t
		}
	}
	return time.Time{}
}
