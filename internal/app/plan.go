// internal/app/plan.go
package app

import (
	"fmt"
	"time"

	"card_reminder_bot/internal/domain/billing"
	"card_reminder_bot/internal/domain/card"
	"card_reminder_bot/internal/domain/notify"
	"card_reminder_bot/internal/domain/rule"
)

// ForwardIdentifier derives the key for a pre-due reminder entry. The same
// derivation is used when scheduling and when reasoning about cancellation,
// so a cancel covers exactly what a schedule could have produced.
func ForwardIdentifier(cardID, ruleID, timeOfDay string) string {
	return fmt.Sprintf("%s:%s:%s", cardID, ruleID, timeOfDay)
}

// OverdueIdentifier derives the key for the i-th overdue escalation entry.
func OverdueIdentifier(cardID string, dayOffset int, timeOfDay string) string {
	return fmt.Sprintf("%s:overdue:%d:%s", cardID, dayOffset, timeOfDay)
}

// Plan derives the full set of reminder entries for one card from its
// resolved cycle and effective rules. Pure: replaying it with the same inputs
// always yields the same identifier set.
//
// Forward rules fire daysBefore days ahead of the due date at each configured
// time. An occurrence already in the past is never silently dropped; it rolls
// to the next month's occurrence of the same rule (same identifier), so the
// card always has a next reminder.
//
// The overdue rule fires only once the cycle is unpaid and its due date has
// passed: daily for the escalation window, with the message urgency rising by
// tier. Only entries strictly after now materialize.
func Plan(c *card.Card, cycle billing.Cycle, rules rule.Set, now time.Time) []notify.Scheduled {
	var out []notify.Scheduled
	loc := now.Location()

	// Forward reminders anchor on the nearest unpaid due date. When the
	// resolved cycle is already paid ahead, that is the following month.
	baseDue := cycle.DueDate
	if cycle.IsPaid {
		next := billing.MonthKeyOf(baseDue).Next()
		year, month := next.Date()
		baseDue = billing.DueDate(year, month, c.DueDay, loc)
	}

	for _, r := range rules.Enabled() {
		if r.IsOverdue() {
			if cycle.IsPaid || !now.After(cycle.DueDate) {
				continue
			}
			for i := 1; i <= r.Window(); i++ {
				day := cycle.DueDate.AddDate(0, 0, i)
				for _, t := range r.Times {
					fireAt := atTimeOfDay(day, t, loc)
					if !fireAt.After(now) {
						continue
					}
					out = append(out, notify.Scheduled{
						Identifier: OverdueIdentifier(c.ID, i, t),
						CardID:     c.ID,
						FireAt:     fireAt,
						Content:    overdueContent(c, i),
					})
				}
			}
			continue
		}

		for _, t := range r.Times {
			due := baseDue
			fireAt := atTimeOfDay(due.AddDate(0, 0, -r.DaysBefore), t, loc)
			// Roll past occurrences forward month by month. Bounded: the due
			// day recurs monthly, so a handful of steps always lands ahead of
			// now even for large daysBefore offsets.
			for steps := 0; !fireAt.After(now) && steps < 24; steps++ {
				next := billing.MonthKeyOf(due).Next()
				year, month := next.Date()
				due = billing.DueDate(year, month, c.DueDay, loc)
				fireAt = atTimeOfDay(due.AddDate(0, 0, -r.DaysBefore), t, loc)
			}
			out = append(out, notify.Scheduled{
				Identifier: ForwardIdentifier(c.ID, r.ID, t),
				CardID:     c.ID,
				FireAt:     fireAt,
				Content:    forwardContent(c, r.DaysBefore, due),
			})
		}
	}

	return out
}

// atTimeOfDay places an HH:MM time of day onto a calendar day. Times are
// validated at rule edit time; a malformed stored value falls back to
// midnight rather than dropping the entry.
func atTimeOfDay(day time.Time, timeOfDay string, loc *time.Location) time.Time {
	parsed, err := time.Parse("15:04", timeOfDay)
	if err != nil {
		return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), parsed.Hour(), parsed.Minute(), 0, 0, loc)
}

func forwardContent(c *card.Card, daysBefore int, due time.Time) notify.Content {
	title := fmt.Sprintf("%s bill reminder", c.Name)
	switch {
	case daysBefore == 0:
		return notify.Content{Title: title, Body: fmt.Sprintf("Your %s bill is due today. Don't forget to pay it.", c.Name)}
	case daysBefore == 1:
		return notify.Content{Title: title, Body: fmt.Sprintf("Your %s bill is due tomorrow (%s).", c.Name, due.Format("Jan 2"))}
	default:
		return notify.Content{Title: title, Body: fmt.Sprintf("Your %s bill is due in %d days, on %s.", c.Name, daysBefore, due.Format("Jan 2"))}
	}
}

func overdueContent(c *card.Card, dayOverdue int) notify.Content {
	title := fmt.Sprintf("%s bill overdue", c.Name)
	switch {
	case dayOverdue == 1:
		return notify.Content{Title: title, Body: fmt.Sprintf("Your %s bill was due yesterday. Pay it today to avoid late fees.", c.Name)}
	case dayOverdue <= 3:
		return notify.Content{Title: title, Body: fmt.Sprintf("Your %s bill is %d days overdue. Please pay it soon.", c.Name, dayOverdue)}
	default:
		return notify.Content{Title: title, Body: fmt.Sprintf("Urgent: your %s bill is %d days overdue. Pay it now to protect your credit record.", c.Name, dayOverdue)}
	}
}
