// Package chat turns free-text messages into leave applications and
// answers. Two bot variants exist: SessionBot runs an explicit multi-turn
// state machine, ClassicBot resolves everything from a single message with
// chat-history continuation. Both speak through the same store and policy
// validator.
package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hrdesk/leave-assistant/internal/assistant"
	"github.com/hrdesk/leave-assistant/internal/dates"
	"github.com/hrdesk/leave-assistant/internal/ledger"
	"github.com/hrdesk/leave-assistant/internal/models"
	"github.com/hrdesk/leave-assistant/internal/policy"
)

// Bot is the caller-facing message processor. ProcessMessage persists both
// the user turn and the assistant turn as a side effect and never lets an
// internal fault escape as anything but a user-safe reply.
type Bot interface {
	ProcessMessage(userID int, text string) string
	History(userID int) ([]models.Exchange, error)
	ClearHistory(userID int) bool
}

// Store is the slice of the ledger the bots depend on
type Store interface {
	Balance(userID int) (*models.Balance, error)
	AddRequest(userID int, date time.Time, typ models.LeaveType, reason string, dur models.Duration) error
	RequestsFor(userID int) ([]models.LeaveRequest, error)
	HasOverlap(userID int, date time.Time) bool
	AppendChat(userID int, role, message string) error
	ChatHistory(userID, limit int) ([]models.ChatMessage, error)
	ClearChat(userID int) error
}

// core bundles the collaborators both bot variants share
type core struct {
	store     Store
	resolver  *dates.Resolver
	validator *policy.Validator
	pol       *policy.Policy
	answerer  assistant.Answerer
	now       func() time.Time
	logger    *zap.Logger
}

func newCore(store Store, resolver *dates.Resolver, validator *policy.Validator, pol *policy.Policy, answerer assistant.Answerer, logger *zap.Logger) *core {
	return &core{
		store:     store,
		resolver:  resolver,
		validator: validator,
		pol:       pol,
		answerer:  answerer,
		now:       time.Now,
		logger:    logger,
	}
}

func (c *core) today() time.Time {
	return dates.Midnight(c.now())
}

// process is the shared message-processing boundary: persist the user turn,
// generate, persist the assistant turn. Store failures on the chat log are
// logged but never block the reply.
func (c *core) process(userID int, text string, generate func() string) string {
	if strings.TrimSpace(text) == "" {
		return msgEmptyMessage
	}
	if err := c.store.AppendChat(userID, models.RoleUser, text); err != nil {
		c.logger.Warn("failed to persist user message", zap.Int("user_id", userID), zap.Error(err))
	}

	response := c.safeGenerate(userID, generate)

	if err := c.store.AppendChat(userID, models.RoleAssistant, response); err != nil {
		c.logger.Warn("failed to persist assistant message", zap.Int("user_id", userID), zap.Error(err))
	}
	return response
}

// safeGenerate converts any panic in a handler into the generic apology so
// no internal fault terminates the chat session.
func (c *core) safeGenerate(userID int, generate func() string) (response string) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("message handler panicked",
				zap.Int("user_id", userID), zap.Any("panic", r))
			response = msgInternalError
		}
	}()
	return generate()
}

// submit validates a complete (type, dates) application and commits it one
// date at a time. A validation failure submits nothing. A storage failure
// mid-loop halts the remaining dates and reports the failing one; dates
// already committed stay committed (no rollback).
func (c *core) submit(userID int, typ models.LeaveType, ds []time.Time, reason string) string {
	today := c.today()

	balance, err := c.store.Balance(userID)
	if err != nil {
		c.logger.Error("balance lookup failed", zap.Int("user_id", userID), zap.Error(err))
		return msgInternalError
	}
	if balance == nil {
		return "I couldn't find your leave balance. Please contact HR."
	}

	violations := c.validator.Validate(policy.Input{
		Type:    typ,
		Dates:   ds,
		Balance: balance,
		Ref:     today,
		HasOverlap: func(d time.Time) bool {
			return c.store.HasOverlap(userID, d)
		},
	})
	if len(violations) > 0 {
		return msgViolations(violations)
	}

	var submitted []time.Time
	for _, d := range ds {
		if err := c.store.AddRequest(userID, d, typ, reason, models.FullDay); err != nil {
			c.logger.Error("request submission failed",
				zap.Int("user_id", userID),
				zap.String("date", d.Format(models.DayLayout)),
				zap.Error(err))
			if errors.Is(err, ledger.ErrStoreBusy) {
				return msgStoreBusy(d)
			}
			return msgInternalError
		}
		submitted = append(submitted, d)
	}

	return msgSubmitted(typ, submitted, balance.Days(typ)-len(submitted))
}

// Non-application intents shared by both bots.

func (c *core) balanceReply(userID int) string {
	b, err := c.store.Balance(userID)
	if err != nil {
		c.logger.Error("balance lookup failed", zap.Int("user_id", userID), zap.Error(err))
		return msgBalance(nil, c.today())
	}
	return msgBalance(b, c.today())
}

func (c *core) statusReply(userID int) string {
	requests, err := c.store.RequestsFor(userID)
	if err != nil {
		c.logger.Error("status lookup failed", zap.Int("user_id", userID), zap.Error(err))
		return msgInternalError
	}
	return msgStatus(requests)
}

func (c *core) greetingReply(userID int) string {
	b, err := c.store.Balance(userID)
	if err != nil {
		b = nil
	}
	return msgGreeting(b)
}

// generalReply delegates open-ended questions to the configured answerer
// and falls back to the canned reply when it cannot help.
func (c *core) generalReply(question string) string {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	answer, err := c.answerer.Answer(ctx, question)
	if err != nil || strings.TrimSpace(answer) == "" {
		return msgFallback()
	}
	return answer
}

// history pairs the persisted chat rows into (user, assistant) exchanges
func (c *core) history(userID int) ([]models.Exchange, error) {
	msgs, err := c.store.ChatHistory(userID, 50)
	if err != nil {
		return nil, err
	}
	var pairs []models.Exchange
	var pendingUser string
	var havePending bool
	for _, m := range msgs {
		switch m.Role {
		case models.RoleUser:
			pendingUser = m.Message
			havePending = true
		case models.RoleAssistant:
			if havePending {
				pairs = append(pairs, models.Exchange{User: pendingUser, Assistant: m.Message})
				havePending = false
			}
		}
	}
	return pairs, nil
}

func containsAnyWord(text string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// isApplicationIntent detects a message that starts a leave application
func isApplicationIntent(lower string) bool {
	return containsAnyWord(lower, "apply", "want", "need", "request", "would like") &&
		strings.Contains(lower, "leave")
}

// inferReason picks a request reason category from the message text
func inferReason(lower string) string {
	switch {
	case strings.Contains(lower, "vacation"):
		return "Vacation"
	case containsAnyWord(lower, "sick", "fever", "medical"):
		return "Medical"
	case strings.Contains(lower, "emergency"):
		return "Emergency"
	case containsAnyWord(lower, "family", "wedding"):
		return "Family function"
	}
	return "Personal"
}
