// Package intent maps free text to a leave-type tag using an ordered list
// of (predicate, tag) pairs evaluated first-match-wins.
package intent

import (
	"strings"

	"github.com/hrdesk/leave-assistant/internal/models"
)

type rule struct {
	match func(string) bool
	tag   models.LeaveType
}

func containsAny(words ...string) func(string) bool {
	return func(text string) bool {
		for _, w := range words {
			if hasWord(text, w) {
				return true
			}
		}
		return false
	}
}

// hasWord checks for a whole-word occurrence so "sl" does not fire inside
// "slow" or "el" inside "help".
func hasWord(text, word string) bool {
	for _, f := range strings.Fields(text) {
		if strings.Trim(f, ".,!?:;") == word {
			return true
		}
	}
	return false
}

// Priority order is fixed: EL, SL, CL. The first matching set wins.
var rules = []rule{
	{containsAny("el", "earned", "vacation"), models.LeaveEarned},
	{containsAny("sl", "sick", "medical"), models.LeaveSick},
	{containsAny("cl", "casual", "emergency"), models.LeaveCasual},
}

// Classify returns the leave type mentioned in the text. The second return
// is false when no type was found, which callers must treat as "ask the
// user to choose".
func Classify(text string) (models.LeaveType, bool) {
	lower := strings.ToLower(text)
	for _, r := range rules {
		if r.match(lower) {
			return r.tag, true
		}
	}
	return "", false
}
