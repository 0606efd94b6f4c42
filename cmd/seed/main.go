// Command seed writes a demo leave workbook with a handful of users,
// balances, a short approved history, pending requests and chat rows. Dates
// are relative to today so the dataset stays usable for manual testing.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/hrdesk/leave-assistant/internal/ledger"
	"github.com/hrdesk/leave-assistant/internal/models"
)

func main() {
	path := flag.String("path", "data/leave_data.xlsx", "workbook path to write")
	flag.Parse()

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)

	if err := ledger.Seed(*path, balances(today), requests(today, now), used(today), chat(now)); err != nil {
		fmt.Fprintf(os.Stderr, "seed failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("wrote demo workbook to %s\n", *path)
}

func balances(today time.Time) []models.Balance {
	joined := func(daysAgo int) string {
		return today.AddDate(0, 0, -daysAgo).Format(models.DayLayout)
	}
	return []models.Balance{
		{UserID: 1000, EL: 8, SL: 1, CL: 0, TL: 9, AdminID: 5000, JoinDate: joined(365)},
		{UserID: 1001, EL: 4, SL: 5, CL: 3, TL: 12, AdminID: 5000, JoinDate: joined(200)},
		{UserID: 1002, EL: 1, SL: 1, CL: 2, TL: 4, AdminID: 5000, JoinDate: joined(100)},
		{UserID: 1003, EL: 2, SL: 1, CL: 2, TL: 5, AdminID: 8001, JoinDate: joined(50)},
		{UserID: 1004, EL: 2, SL: 6, CL: 0, TL: 8, AdminID: 8001, JoinDate: joined(80)},
		{UserID: 1005, EL: 7, SL: 2, CL: 0, TL: 9, AdminID: 8001, JoinDate: joined(30)},
		{UserID: 1006, EL: 2, SL: 4, CL: 4, TL: 10, AdminID: 8001, JoinDate: joined(120)},
		{UserID: 1007, EL: 0, SL: 3, CL: 5, TL: 8, AdminID: 6099, JoinDate: joined(150)},
		{UserID: 1008, EL: 4, SL: 6, CL: 4, TL: 14, AdminID: 6099, JoinDate: joined(180)},
		{UserID: 1009, EL: 2, SL: 3, CL: 2, TL: 7, AdminID: 6099, JoinDate: joined(95)},
		{UserID: 1010, EL: 0, SL: 0, CL: 0, TL: 0, AdminID: 6099, JoinDate: joined(20)},
	}
}

func requests(today time.Time, now time.Time) []models.LeaveRequest {
	req := func(adminID, userID, inDays int, typ models.LeaveType, reason string, appliedDaysAgo int, dur models.Duration) models.LeaveRequest {
		return models.LeaveRequest{
			AdminID:   adminID,
			UserID:    userID,
			LeaveDate: today.AddDate(0, 0, inDays),
			Status:    models.StatusPending,
			LeaveType: typ,
			Reason:    reason,
			AppliedAt: now.AddDate(0, 0, -appliedDaysAgo),
			Duration:  dur,
		}
	}
	return []models.LeaveRequest{
		req(5000, 1001, 2, models.LeaveEarned, "Family vacation", 1, models.FullDay),
		req(5000, 1002, 3, models.LeaveSick, "Medical appointment", 2, models.FullDay),
		req(8001, 1004, 5, models.LeaveCasual, "Personal work", 1, models.FullDay),
		req(6099, 1009, 7, models.LeaveEarned, "Wedding function", 3, models.FullDay),
		req(5000, 1000, 1, models.LeaveSick, "Dental checkup", 0, models.HalfDay),
		req(8001, 1006, 4, models.LeaveCasual, "Family emergency", 1, models.FullDay),
	}
}

func used(today time.Time) []models.UsedLeave {
	rec := func(userID, daysAgo int, typ models.LeaveType, dur models.Duration) models.UsedLeave {
		return models.UsedLeave{
			UserID:    userID,
			LeaveDate: today.AddDate(0, 0, -daysAgo),
			LeaveType: typ,
			Duration:  dur,
		}
	}
	return []models.UsedLeave{
		rec(1000, 10, models.LeaveEarned, models.FullDay),
		rec(1000, 9, models.LeaveCasual, models.HalfDay),
		rec(1009, 8, models.LeaveSick, models.FullDay),
		rec(1000, 7, models.LeaveSick, models.FullDay),
		rec(1002, 6, models.LeaveSick, models.FullDay),
		rec(1002, 5, models.LeaveEarned, models.FullDay),
		rec(1001, 4, models.LeaveSick, models.FullDay),
		rec(1004, 3, models.LeaveSick, models.FullDay),
		rec(1006, 15, models.LeaveEarned, models.FullDay),
		rec(1006, 14, models.LeaveEarned, models.FullDay),
		rec(1006, 13, models.LeaveEarned, models.FullDay),
		rec(1006, 12, models.LeaveEarned, models.FullDay),
		rec(1008, 11, models.LeaveEarned, models.FullDay),
		rec(1008, 10, models.LeaveEarned, models.FullDay),
		rec(1008, 9, models.LeaveEarned, models.FullDay),
	}
}

func chat(now time.Time) []models.ChatMessage {
	const greeting = "Hello! I'm your leave management assistant. How can I help you with leave policies, applications, or balances today?"
	msg := func(userID int, role, text string, minutesAgo int) models.ChatMessage {
		return models.ChatMessage{
			UserID:    userID,
			Role:      role,
			Message:   text,
			Timestamp: now.Add(-time.Duration(minutesAgo) * time.Minute),
		}
	}
	return []models.ChatMessage{
		msg(1000, models.RoleUser, "hi", 120),
		msg(1000, models.RoleAssistant, greeting, 120),
		msg(1002, models.RoleUser, "hi", 60),
		msg(1002, models.RoleAssistant, greeting, 60),
		msg(1001, models.RoleUser, "hi", 30),
		msg(1001, models.RoleAssistant, greeting, 30),
		msg(1001, models.RoleUser, "i want to apply SL tomorrow", 10),
		msg(1001, models.RoleAssistant, "Sick leave cannot be applied for future dates.", 10),
	}
}
