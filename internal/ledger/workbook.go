package ledger

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// Sheet names of the shared workbook, one sheet per logical table
const (
	SheetAvailable = "Available"   // balances
	SheetRequests  = "Hierarchy"   // pending/approved/rejected requests
	SheetUsed      = "Used"        // approved history, append-only
	SheetChat      = "ChatHistory" // chat log, append-only per user
)

var sheetHeaders = map[string][]string{
	SheetAvailable: {"UserId", "EL", "SL", "CL", "TL", "Admin ID", "JoinDate"},
	SheetRequests:  {"Admin ID", "UserId", "Leave_Date", "Status", "LeaveType", "Reason", "AppliedDate", "Duration"},
	SheetUsed:      {"UserId", "Leave_Date", "LeaveType", "Duration"},
	SheetChat:      {"UserID", "Role", "Message", "Timestamp"},
}

// ErrStoreBusy is returned when the workbook could not be persisted within
// the retry budget, typically because another writer holds the file. It is
// a transient-storage failure, not a policy failure.
var ErrStoreBusy = errors.New("ledger: workbook busy, try again")

// RetryPolicy bounds how save contention is handled. Attempts are fixed,
// the delay between them is fixed; after exhaustion the operation fails
// rather than retrying indefinitely.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
}

// DefaultRetryPolicy mirrors the documented 3-attempt, 1-second behavior
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, Backoff: time.Second}
}

// open loads the workbook, creating a schema-correct empty one on first use
func (l *Ledger) open() (*excelize.File, error) {
	if _, err := os.Stat(l.path); os.IsNotExist(err) {
		if err := l.create(); err != nil {
			return nil, err
		}
	}
	f, err := excelize.OpenFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	return f, nil
}

// create writes a fresh workbook containing all four sheets with headers
func (l *Ledger) create() error {
	if dir := filepath.Dir(l.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create workbook dir: %w", err)
		}
	}
	f := excelize.NewFile()
	defer f.Close()

	for _, sheet := range []string{SheetAvailable, SheetRequests, SheetUsed, SheetChat} {
		if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("create sheet %s: %w", sheet, err)
		}
		if err := writeHeader(f, sheet); err != nil {
			return err
		}
	}
	// Drop the default sheet excelize starts with.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("remove default sheet: %w", err)
	}
	if err := f.SaveAs(l.path); err != nil {
		return fmt.Errorf("save new workbook: %w", err)
	}
	l.logger.Info("created new ledger workbook", zap.String("path", l.path))
	return nil
}

// readSheet returns all rows of a sheet excluding the header. A missing or
// malformed sheet is recreated empty rather than propagated as a fault, so
// the chat session stays usable.
func (l *Ledger) readSheet(f *excelize.File, sheet string) ([][]string, error) {
	idx, err := f.GetSheetIndex(sheet)
	if err != nil || idx < 0 {
		l.logger.Warn("sheet missing, recreating empty", zap.String("sheet", sheet))
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, fmt.Errorf("recreate sheet %s: %w", sheet, err)
		}
		if err := writeHeader(f, sheet); err != nil {
			return nil, err
		}
		return nil, nil
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	if len(rows) <= 1 {
		return nil, nil
	}
	return rows[1:], nil
}

// replaceSheet rewrites a whole sheet: header plus the given rows. This is
// the whole-table write the store model is built on.
func replaceSheet(f *excelize.File, sheet string, rows [][]interface{}) error {
	if idx, err := f.GetSheetIndex(sheet); err == nil && idx >= 0 {
		if err := f.DeleteSheet(sheet); err != nil {
			return fmt.Errorf("clear sheet %s: %w", sheet, err)
		}
	}
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("rewrite sheet %s: %w", sheet, err)
	}
	if err := writeHeader(f, sheet); err != nil {
		return err
	}
	for i, row := range rows {
		for j, val := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return fmt.Errorf("cell name: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, val); err != nil {
				return fmt.Errorf("write cell %s!%s: %w", sheet, cell, err)
			}
		}
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string) error {
	for j, name := range sheetHeaders[sheet] {
		cell, err := excelize.CoordinatesToCellName(j+1, 1)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return fmt.Errorf("write header %s: %w", sheet, err)
		}
	}
	return nil
}

// saveWithRetry persists the workbook, retrying on contention with a fixed
// backoff. After exhaustion the caller gets ErrStoreBusy; nothing already
// committed is touched.
func (l *Ledger) saveWithRetry(f *excelize.File) error {
	attempts := l.retry.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		if err := f.SaveAs(l.path); err != nil {
			lastErr = err
			l.logger.Warn("workbook save failed, retrying",
				zap.Int("attempt", i+1), zap.Int("max_attempts", attempts), zap.Error(err))
			if i < attempts-1 {
				time.Sleep(l.retry.Backoff)
			}
			continue
		}
		return nil
	}
	return fmt.Errorf("%w: %v", ErrStoreBusy, lastErr)
}
