package rule

import (
	"fmt"
	"regexp"
)

// OverdueDaysBefore is the DaysBefore sentinel marking the overdue rule.
const OverdueDaysBefore = -1

// DefaultEscalationWindow is how many days of overdue reminders are issued
// after a missed due date unless the rule overrides it.
const DefaultEscalationWindow = 7

var timeOfDayPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// Rule configures one reminder: fire at each listed time of day, DaysBefore
// days ahead of the due date. DaysBefore == OverdueDaysBefore marks the
// distinguished overdue rule, which instead fires daily after the due date
// for EscalationWindow days.
type Rule struct {
	ID               string
	DaysBefore       int
	Times            []string // HH:MM, minute granularity
	Enabled          bool
	EscalationWindow int // overdue rule only
}

// IsOverdue reports whether this is the overdue-escalation rule.
func (r Rule) IsOverdue() bool {
	return r.DaysBefore == OverdueDaysBefore
}

// Window returns the overdue escalation window, falling back to the default.
func (r Rule) Window() int {
	if r.EscalationWindow > 0 {
		return r.EscalationWindow
	}
	return DefaultEscalationWindow
}

// Validate checks rule shape: a non-empty well-formed time set and a sane
// offset.
func (r Rule) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("rule id must not be empty")
	}
	if r.DaysBefore < OverdueDaysBefore {
		return fmt.Errorf("rule %s: daysBefore must be >= %d, got %d", r.ID, OverdueDaysBefore, r.DaysBefore)
	}
	if len(r.Times) == 0 {
		return fmt.Errorf("rule %s: at least one time of day is required", r.ID)
	}
	for _, t := range r.Times {
		if !timeOfDayPattern.MatchString(t) {
			return fmt.Errorf("rule %s: invalid time of day %q, want HH:MM", r.ID, t)
		}
	}
	if r.IsOverdue() && r.EscalationWindow < 0 {
		return fmt.Errorf("rule %s: escalation window must not be negative", r.ID)
	}
	return nil
}

// Set is a card's effective reminder configuration.
type Set struct {
	Rules []Rule
}

// Validate validates every rule and rejects duplicate IDs.
func (s Set) Validate() error {
	seen := make(map[string]bool, len(s.Rules))
	for _, r := range s.Rules {
		if err := r.Validate(); err != nil {
			return err
		}
		if seen[r.ID] {
			return fmt.Errorf("duplicate rule id %s", r.ID)
		}
		seen[r.ID] = true
	}
	return nil
}

// Enabled returns only the enabled rules.
func (s Set) Enabled() []Rule {
	out := make([]Rule, 0, len(s.Rules))
	for _, r := range s.Rules {
		if r.Enabled {
			out = append(out, r)
		}
	}
	return out
}

// DefaultSet is the global fallback: a same-day morning reminder, a
// three-days-ahead reminder, and the overdue escalation.
func DefaultSet() Set {
	return Set{Rules: []Rule{
		{ID: "due-day", DaysBefore: 0, Times: []string{"09:00"}, Enabled: true},
		{ID: "ahead-3d", DaysBefore: 3, Times: []string{"19:00"}, Enabled: true},
		{ID: "overdue", DaysBefore: OverdueDaysBefore, Times: []string{"10:00"}, Enabled: true, EscalationWindow: DefaultEscalationWindow},
	}}
}
