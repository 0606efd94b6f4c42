package chat

import (
	"strings"

	"go.uber.org/zap"

	"github.com/hrdesk/leave-assistant/internal/assistant"
	"github.com/hrdesk/leave-assistant/internal/dates"
	"github.com/hrdesk/leave-assistant/internal/intent"
	"github.com/hrdesk/leave-assistant/internal/models"
	"github.com/hrdesk/leave-assistant/internal/policy"
)

// SessionBot walks the user through a leave application step by step:
// idle -> awaiting type -> awaiting dates -> commit, tracked per user in an
// injected session store. Date ranges resolve to working days only.
type SessionBot struct {
	*core
	sessions *SessionStore
}

// NewSessionBot creates the multi-turn conversational bot
func NewSessionBot(store Store, sessions *SessionStore, resolver *dates.Resolver, validator *policy.Validator, pol *policy.Policy, answerer assistant.Answerer, logger *zap.Logger) *SessionBot {
	return &SessionBot{
		core:     newCore(store, resolver, validator, pol, answerer, logger),
		sessions: sessions,
	}
}

// ProcessMessage handles one user turn and returns the reply. Both turns
// are persisted to the chat log.
func (b *SessionBot) ProcessMessage(userID int, text string) string {
	return b.process(userID, text, func() string {
		return b.respond(userID, strings.TrimSpace(text))
	})
}

func (b *SessionBot) respond(userID int, text string) string {
	session := b.sessions.Get(userID)
	lower := strings.ToLower(text)

	b.logger.Debug("session turn",
		zap.Int("user_id", userID),
		zap.String("flow", string(session.Flow)),
		zap.Int("step", int(session.Step)))

	switch {
	case session.Flow == FlowNone:
		if isApplicationIntent(lower) {
			return b.startApplication(userID, text, session)
		}
		return b.handleOther(userID, lower, text)

	case session.Flow == FlowLeaveApplication && session.Step == StepAwaitingType:
		if typ, ok := intent.Classify(lower); ok {
			session.PendingType = typ
			session.Step = StepAwaitingDates
			return msgAskDates(typ, b.today())
		}
		return msgAskLeaveTypeAgain()

	case session.Flow == FlowLeaveApplication && session.Step == StepAwaitingDates:
		ds := b.resolver.ResolveRangeWorkdaysOnly(text, b.today())
		if len(ds) == 0 {
			return msgAskDatesAgain(session.PendingType, b.today())
		}
		typ := session.PendingType
		session.Reset()
		return b.submit(userID, typ, ds, inferReason(lower))

	default:
		// Unexpected state: start over rather than wedge the user.
		session.Reset()
		return "I lost track of our conversation. How can I help you?"
	}
}

// startApplication seeds the flow from whatever the opening message already
// contains. With both type and dates present the application is validated
// and committed immediately.
func (b *SessionBot) startApplication(userID int, text string, session *Session) string {
	lower := strings.ToLower(text)
	typ, haveType := intent.Classify(lower)
	ds := b.resolver.ResolveRangeWorkdaysOnly(text, b.today())

	session.Flow = FlowLeaveApplication

	switch {
	case haveType && len(ds) > 0:
		session.Reset()
		return b.submit(userID, typ, ds, inferReason(lower))
	case haveType:
		session.PendingType = typ
		session.Step = StepAwaitingDates
		return msgAskDates(typ, b.today())
	default:
		session.Step = StepAwaitingType
		return msgAskLeaveType()
	}
}

func (b *SessionBot) handleOther(userID int, lower, original string) string {
	switch {
	case containsAnyWord(lower, "balance", "remaining"):
		return b.balanceReply(userID)
	case containsAnyWord(lower, "status", "pending"):
		return b.statusReply(userID)
	case containsAnyWord(lower, "policy", "rule"):
		return msgPolicy(b.pol)
	case containsAnyWord(lower, "hello", "hi", "hey"):
		return b.greetingReply(userID)
	case strings.Contains(lower, "help"):
		return msgHelp()
	default:
		return b.generalReply(original)
	}
}

// History returns the user's persisted (user, assistant) exchange pairs
func (b *SessionBot) History(userID int) ([]models.Exchange, error) {
	return b.history(userID)
}

// ClearHistory wipes the user's chat log and conversation state
func (b *SessionBot) ClearHistory(userID int) bool {
	b.sessions.Clear(userID)
	if err := b.store.ClearChat(userID); err != nil {
		b.logger.Error("failed to clear chat history", zap.Int("user_id", userID), zap.Error(err))
		return false
	}
	return true
}
