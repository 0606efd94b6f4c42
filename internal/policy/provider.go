package policy

import (
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/gen2brain/go-fitz"
	"go.uber.org/zap"

	"github.com/hrdesk/leave-assistant/internal/models"
)

// Rule holds the numeric policy parameters for one leave type
type Rule struct {
	MaxPerYear        int
	AdvanceNoticeDays int
	MinDays           int // EL only: minimum consecutive days
	MaxConsecutive    int // CL only: maximum consecutive days
	DateRangeDays     int // EL/CL: allowed distance from today, past or future
	PastWindowDays    int // SL: how far back a sick day may be claimed
	PastOnly          bool
}

// Contact is the HR contact block surfaced in policy answers
type Contact struct {
	Name  string
	Email string
	Phone string
	Hours string
}

// Policy is the read-only configuration consumed by the validator and the
// dialogue responder.
type Policy struct {
	Rules   map[models.LeaveType]Rule
	Contact Contact
}

// Rule returns the parameters for a leave type, falling back to defaults
// for unknown types.
func (p *Policy) Rule(t models.LeaveType) Rule {
	if r, ok := p.Rules[t]; ok {
		return r
	}
	return Defaults().Rules[t]
}

// Defaults returns the documented policy parameters used whenever the rules
// document yields no override.
func Defaults() *Policy {
	return &Policy{
		Rules: map[models.LeaveType]Rule{
			models.LeaveEarned: {
				MaxPerYear:        12,
				AdvanceNoticeDays: 7,
				MinDays:           3,
				DateRangeDays:     30,
			},
			models.LeaveSick: {
				MaxPerYear:     7,
				PastOnly:       true,
				PastWindowDays: 15,
			},
			models.LeaveCasual: {
				MaxPerYear:     5,
				MaxConsecutive: 2,
				DateRangeDays:  30,
			},
		},
		Contact: Contact{
			Name:  "HR Department",
			Email: "hr@company.com",
			Phone: "+1-555-0123",
			Hours: "Monday-Friday, 9 AM - 6 PM",
		},
	}
}

type extractor struct {
	keywords []string
	maxDays  []*regexp.Regexp
	notice   []*regexp.Regexp
	minDays  []*regexp.Regexp
	maxCons  []*regexp.Regexp
}

var extractors = map[models.LeaveType]extractor{
	models.LeaveEarned: {
		keywords: []string{"earned leave", "annual leave", "vacation leave"},
		maxDays: compile(
			`earned leave.*?(\d+).*?days`,
			`annual leave.*?(\d+)`,
		),
		notice: compile(`notice.*?(\d+).*?days`, `advance.*?(\d+).*?days`),
		minDays: compile(
			`minimum.*?(\d+).*?days`,
			`at least.*?(\d+).*?days`,
		),
	},
	models.LeaveSick: {
		keywords: []string{"sick leave", "medical leave"},
		maxDays: compile(
			`sick leave.*?(\d+).*?days`,
			`medical leave.*?(\d+)`,
		),
		notice: compile(`sick leave.*?notice.*?(\d+)`),
	},
	models.LeaveCasual: {
		keywords: []string{"casual leave", "emergency leave"},
		maxDays:  compile(`casual leave.*?(\d+).*?days`),
		notice:   compile(`casual leave.*?notice.*?(\d+)`),
		maxCons: compile(
			`maximum.*?(\d+).*?consecutive`,
			`not more than.*?(\d+).*?days`,
		),
	},
}

var (
	reEmail = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	rePhone = regexp.MustCompile(`\+?[\d-]{10,}`)
)

func compile(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(p)
	}
	return out
}

// LoadFromPDF extracts policy parameters from a rules document. Any field
// the document does not state keeps its default; a missing or unreadable
// file yields the full defaults. This never fails hard: the chat session
// must stay usable without the document.
func LoadFromPDF(path string, logger *zap.Logger) *Policy {
	pol := Defaults()

	if _, err := os.Stat(path); err != nil {
		logger.Warn("policy document not found, using defaults", zap.String("path", path))
		return pol
	}

	text, err := extractText(path)
	if err != nil {
		logger.Warn("failed to read policy document, using defaults",
			zap.String("path", path), zap.Error(err))
		return pol
	}
	if len(strings.TrimSpace(text)) < 50 {
		logger.Warn("policy document has too little text, using defaults",
			zap.String("path", path))
		return pol
	}

	ParseText(text, pol, logger)
	logger.Info("policy parameters loaded", zap.String("path", path))
	return pol
}

func extractText(path string) (string, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return "", err
	}
	defer doc.Close()

	var sb strings.Builder
	for i := 0; i < doc.NumPage(); i++ {
		page, err := doc.Text(i)
		if err != nil {
			continue
		}
		sb.WriteString(page)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

// ParseText scans policy text and overrides pol in place with any numeric
// parameters it can find. Exported so a plain-text rules file can feed it
// in tests.
func ParseText(text string, pol *Policy, logger *zap.Logger) {
	lower := strings.ToLower(text)

	for typ, ex := range extractors {
		if !mentionsAny(lower, ex.keywords) {
			continue
		}
		rule := pol.Rules[typ]
		if n, ok := firstNumber(lower, ex.maxDays); ok {
			rule.MaxPerYear = n
		}
		if n, ok := firstNumber(lower, ex.notice); ok {
			rule.AdvanceNoticeDays = n
		}
		if typ == models.LeaveEarned {
			if n, ok := firstNumber(lower, ex.minDays); ok {
				rule.MinDays = n
			}
		}
		if typ == models.LeaveCasual {
			if n, ok := firstNumber(lower, ex.maxCons); ok {
				rule.MaxConsecutive = n
			}
		}
		pol.Rules[typ] = rule
		logger.Debug("policy rule overridden from document", zap.String("type", typ.String()))
	}

	if m := reEmail.FindString(text); m != "" {
		pol.Contact.Email = m
	}
	if m := rePhone.FindString(text); m != "" {
		pol.Contact.Phone = m
	}
}

func mentionsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

func firstNumber(text string, patterns []*regexp.Regexp) (int, bool) {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(text); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				return n, true
			}
		}
	}
	return 0, false
}
