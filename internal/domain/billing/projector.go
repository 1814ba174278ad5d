// internal/domain/billing/projector.go
package billing

import (
	"fmt"
	"sort"
)

// StatusKind classifies a card's user-facing payment status.
type StatusKind string

const (
	StatusNotificationDisabled StatusKind = "notification_disabled"
	StatusPaid                 StatusKind = "paid"
	StatusOverdue              StatusKind = "overdue"
	StatusDueToday             StatusKind = "due_today"
	StatusUpcoming             StatusKind = "upcoming"
)

// DisplayStatus is the presentation of a resolved cycle for one card.
// Days carries the overdue magnitude or the days-left count, 0 otherwise.
type DisplayStatus struct {
	Kind StatusKind
	Text string
	Days int
}

// Project maps a resolved cycle to its display status. shownMonth is the
// calendar month the caller is currently presenting; a day count is only
// rendered when the due date falls inside it, because "N days left" against a
// later month's date is misleading.
func Project(cycle Cycle, notificationsEnabled bool, shownMonth MonthKey) DisplayStatus {
	if !notificationsEnabled {
		return DisplayStatus{Kind: StatusNotificationDisabled, Text: "reminders off"}
	}
	if cycle.IsPaid {
		return DisplayStatus{Kind: StatusPaid, Text: "paid"}
	}
	if cycle.IsOverdue() {
		days := cycle.DaysOverdue()
		return DisplayStatus{
			Kind: StatusOverdue,
			Text: fmt.Sprintf("%d day(s) overdue", days),
			Days: days,
		}
	}
	if cycle.IsDueToday() {
		return DisplayStatus{Kind: StatusDueToday, Text: "due today"}
	}
	if cycle.MonthKey() == shownMonth {
		return DisplayStatus{
			Kind: StatusUpcoming,
			Text: fmt.Sprintf("%d day(s) left", cycle.DaysUntilDue),
			Days: cycle.DaysUntilDue,
		}
	}
	return DisplayStatus{Kind: StatusUpcoming, Text: "upcoming"}
}

// BoardEntry pairs a card's name with its resolved cycle for aggregation.
type BoardEntry struct {
	CardID   string
	CardName string
	Cycle    Cycle
	Status   DisplayStatus
}

// Board is the "what's due next" view across cards: the highest-priority
// non-empty bucket, or an all-paid indicator.
type Board struct {
	Kind    StatusKind
	Entries []BoardEntry
	AllPaid bool
}

// BuildBoard partitions entries into overdue / due-today / upcoming / paid
// buckets and returns only the most urgent non-empty one. Cards with
// notifications disabled never appear. Overdue cards sort most-overdue first,
// upcoming cards soonest first. AllPaid is set only when no unpaid cards
// remain among the visible ones.
func BuildBoard(entries []BoardEntry) Board {
	buckets := map[StatusKind][]BoardEntry{}
	for _, e := range entries {
		if e.Status.Kind == StatusNotificationDisabled {
			continue
		}
		buckets[e.Status.Kind] = append(buckets[e.Status.Kind], e)
	}

	for _, kind := range []StatusKind{StatusOverdue, StatusDueToday, StatusUpcoming} {
		bucket := buckets[kind]
		if len(bucket) == 0 {
			continue
		}
		switch kind {
		case StatusOverdue:
			sort.SliceStable(bucket, func(i, j int) bool {
				return bucket[i].Cycle.DaysOverdue() > bucket[j].Cycle.DaysOverdue()
			})
		case StatusUpcoming:
			sort.SliceStable(bucket, func(i, j int) bool {
				return bucket[i].Cycle.DaysUntilDue < bucket[j].Cycle.DaysUntilDue
			})
		}
		return Board{Kind: kind, Entries: bucket}
	}

	return Board{Kind: StatusPaid, Entries: buckets[StatusPaid], AllPaid: true}
}
