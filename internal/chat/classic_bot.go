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

// ClassicBot resolves a whole application from a single message. It keeps
// no session state; a follow-up that only names a leave type is detected
// from the persisted chat history and replayed against the message that
// started the application. Date ranges resolve inclusive of weekends.
type ClassicBot struct {
	*core
}

// NewClassicBot creates the single-shot bot
func NewClassicBot(store Store, resolver *dates.Resolver, validator *policy.Validator, pol *policy.Policy, answerer assistant.Answerer, logger *zap.Logger) *ClassicBot {
	return &ClassicBot{
		core: newCore(store, resolver, validator, pol, answerer, logger),
	}
}

// ProcessMessage handles one user turn and returns the reply
func (b *ClassicBot) ProcessMessage(userID int, text string) string {
	return b.process(userID, text, func() string {
		return b.respond(userID, strings.TrimSpace(text))
	})
}

func (b *ClassicBot) respond(userID int, text string) string {
	lower := strings.ToLower(text)

	if combined, ok := b.continuation(userID, lower); ok {
		b.logger.Debug("continuation detected", zap.Int("user_id", userID))
		return b.handleApplication(userID, combined)
	}

	switch {
	case containsAnyWord(lower, "apply", "application", "request", "need leave", "i want", "can i apply"):
		return b.handleApplication(userID, text)
	case containsAnyWord(lower, "balance", "remaining", "available", "leave left"):
		return b.balanceReply(userID)
	case containsAnyWord(lower, "status", "pending", "approved"):
		return b.statusReply(userID)
	case containsAnyWord(lower, "policy", "rule", "regulation"):
		return msgPolicy(b.pol)
	case containsAnyWord(lower, "hello", "hi", "hey", "greetings"):
		return b.greetingReply(userID)
	case containsAnyWord(lower, "help", "what can you do", "options"):
		return msgHelp()
	case lower == "el" || lower == "sl" || lower == "cl":
		return msgTypeInfo(models.LeaveType(strings.ToUpper(lower)))
	default:
		return b.generalReply(text)
	}
}

// continuation checks whether the previous assistant turn asked the user to
// specify the leave type and this message is exactly one of EL/SL/CL. If
// so, the most recent prior user message that mentioned applying for leave
// is replayed with the supplied type appended.
func (b *ClassicBot) continuation(userID int, lower string) (string, bool) {
	if lower != "el" && lower != "sl" && lower != "cl" {
		return "", false
	}
	recent, err := b.store.ChatHistory(userID, 5)
	if err != nil || len(recent) == 0 {
		return "", false
	}

	var lastAssistant string
	for i := len(recent) - 1; i >= 0; i-- {
		if recent[i].Role == models.RoleAssistant {
			lastAssistant = strings.ToLower(recent[i].Message)
			break
		}
	}
	if !strings.Contains(lastAssistant, "specify the type") &&
		!strings.Contains(lastAssistant, "leave types") {
		return "", false
	}

	for i := len(recent) - 1; i >= 0; i-- {
		m := recent[i]
		if m.Role != models.RoleUser {
			continue
		}
		ml := strings.ToLower(m.Message)
		if containsAnyWord(ml, "apply", "leave") {
			return m.Message + " " + strings.ToUpper(lower), true
		}
	}
	return "", false
}

// handleApplication runs the full single-shot pipeline: type, dates,
// reason, then the shared validate-and-commit path.
func (b *ClassicBot) handleApplication(userID int, text string) string {
	lower := strings.ToLower(text)

	typ, ok := intent.Classify(lower)
	if !ok {
		return msgSpecifyType()
	}

	ds := b.resolver.ResolveRangeInclusive(text, b.today())
	if len(ds) == 0 {
		return msgDateNotUnderstood(typ)
	}

	return b.submit(userID, typ, ds, inferReason(lower))
}

// History returns the user's persisted (user, assistant) exchange pairs
func (b *ClassicBot) History(userID int) ([]models.Exchange, error) {
	return b.history(userID)
}

// ClearHistory wipes the user's chat log
func (b *ClassicBot) ClearHistory(userID int) bool {
	if err := b.store.ClearChat(userID); err != nil {
		b.logger.Error("failed to clear chat history", zap.Int("user_id", userID), zap.Error(err))
		return false
	}
	return true
}
