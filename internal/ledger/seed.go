package ledger

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/hrdesk/leave-assistant/internal/models"
)

// Seed overwrites the workbook at path with the given tables. It exists for
// demo fixtures and tests; the running service never calls it.
func Seed(path string, balances []models.Balance, requests []models.LeaveRequest, used []models.UsedLeave, chat []models.ChatMessage) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create workbook dir: %w", err)
		}
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := replaceSheet(f, SheetAvailable, balanceRows(balances)); err != nil {
		return err
	}
	if err := replaceSheet(f, SheetRequests, requestRows(requests)); err != nil {
		return err
	}
	if err := replaceSheet(f, SheetUsed, usedRows(used)); err != nil {
		return err
	}
	if err := replaceSheet(f, SheetChat, chatRows(chat)); err != nil {
		return err
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("remove default sheet: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}
