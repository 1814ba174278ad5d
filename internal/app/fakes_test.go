package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"card_reminder_bot/internal/domain/billing"
	"card_reminder_bot/internal/domain/card"
	"card_reminder_bot/internal/domain/ledger"
	"card_reminder_bot/internal/domain/notify"
	"card_reminder_bot/internal/domain/rule"
	idb "card_reminder_bot/internal/infra/database"

	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return logrus.NewEntry(l)
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

type fakeCardRepo struct {
	cards []*card.Card
}

func (f *fakeCardRepo) Create(_ context.Context, c *card.Card) error {
	f.cards = append(f.cards, c)
	return nil
}

func (f *fakeCardRepo) GetByID(_ context.Context, id string) (*card.Card, error) {
	for _, c := range f.cards {
		if c.ID == id {
			copied := *c
			return &copied, nil
		}
	}
	return nil, idb.ErrCardNotFound
}

func (f *fakeCardRepo) GetByName(_ context.Context, name string) (*card.Card, error) {
	for _, c := range f.cards {
		if c.Name == name {
			copied := *c
			return &copied, nil
		}
	}
	return nil, idb.ErrCardNotFound
}

func (f *fakeCardRepo) Update(_ context.Context, updated *card.Card) error {
	for i, c := range f.cards {
		if c.ID == updated.ID {
			copied := *updated
			f.cards[i] = &copied
			return nil
		}
	}
	return idb.ErrCardNotFound
}

func (f *fakeCardRepo) List(_ context.Context) ([]*card.Card, error) {
	out := make([]*card.Card, 0, len(f.cards))
	for _, c := range f.cards {
		copied := *c
		out = append(out, &copied)
	}
	return out, nil
}

func (f *fakeCardRepo) SetNotificationsEnabled(_ context.Context, id string, enabled bool) error {
	for _, c := range f.cards {
		if c.ID == id {
			c.NotificationsEnabled = enabled
			return nil
		}
	}
	return idb.ErrCardNotFound
}

func (f *fakeCardRepo) SetAllNotificationsEnabled(_ context.Context, enabled bool) error {
	for _, c := range f.cards {
		c.NotificationsEnabled = enabled
	}
	return nil
}

type fakeLedgerRepo struct {
	records map[string]*ledger.PaymentRecord // key: cardID|month
	nextID  int64
}

func newFakeLedgerRepo() *fakeLedgerRepo {
	return &fakeLedgerRepo{records: map[string]*ledger.PaymentRecord{}}
}

func ledgerKey(cardID string, month billing.MonthKey) string {
	return cardID + "|" + month.String()
}

func (f *fakeLedgerRepo) ListByCard(_ context.Context, cardID string) ([]*ledger.PaymentRecord, error) {
	out := make([]*ledger.PaymentRecord, 0)
	for _, r := range f.records {
		if r.CardID == cardID {
			copied := *r
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeLedgerRepo) Get(_ context.Context, cardID string, month billing.MonthKey) (*ledger.PaymentRecord, error) {
	r, ok := f.records[ledgerKey(cardID, month)]
	if !ok {
		return nil, idb.ErrPaymentNotFound
	}
	copied := *r
	return &copied, nil
}

func (f *fakeLedgerRepo) Create(_ context.Context, r *ledger.PaymentRecord) error {
	key := ledgerKey(r.CardID, r.BillingMonth)
	if _, exists := f.records[key]; exists {
		return idb.ErrDuplicatePayment
	}
	f.nextID++
	r.ID = f.nextID
	copied := *r
	f.records[key] = &copied
	return nil
}

func (f *fakeLedgerRepo) Delete(_ context.Context, cardID string, month billing.MonthKey) error {
	delete(f.records, ledgerKey(cardID, month))
	return nil
}

type fakeRuleRepo struct {
	def       rule.Set
	overrides map[string]rule.Set
}

func newFakeRuleRepo() *fakeRuleRepo {
	return &fakeRuleRepo{def: rule.DefaultSet(), overrides: map[string]rule.Set{}}
}

func (f *fakeRuleRepo) GetDefault(context.Context) (rule.Set, error) { return f.def, nil }
func (f *fakeRuleRepo) SaveDefault(_ context.Context, s rule.Set) error {
	f.def = s
	return nil
}
func (f *fakeRuleRepo) GetOverride(_ context.Context, cardID string) (rule.Set, error) {
	s, ok := f.overrides[cardID]
	if !ok {
		return rule.Set{}, rule.ErrNoOverride
	}
	return s, nil
}
func (f *fakeRuleRepo) SaveOverride(_ context.Context, cardID string, s rule.Set) error {
	f.overrides[cardID] = s
	return nil
}
func (f *fakeRuleRepo) DeleteOverride(_ context.Context, cardID string) error {
	delete(f.overrides, cardID)
	return nil
}

type fakeSettingsRepo struct {
	global    bool
	globalSet bool
}

func (f *fakeSettingsRepo) GlobalNotificationsEnabled(context.Context) (bool, error) {
	if !f.globalSet {
		return true, nil
	}
	return f.global, nil
}

func (f *fakeSettingsRepo) SetGlobalNotificationsEnabled(_ context.Context, enabled bool) error {
	f.global = enabled
	f.globalSet = true
	return nil
}

// fakeGateway records every call so tests can assert ordering and the final
// entry set.
type fakeGateway struct {
	mu         sync.Mutex
	entries    map[string]notify.Scheduled
	ops        []string
	permission bool
	failIDs    map[string]bool // identifiers whose registration fails
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		entries:    map[string]notify.Scheduled{},
		permission: true,
		failIDs:    map[string]bool{},
	}
}

func (g *fakeGateway) ScheduleAt(_ context.Context, s notify.Scheduled) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ops = append(g.ops, "schedule:"+s.Identifier)
	if g.failIDs[s.Identifier] {
		return fmt.Errorf("registration quota exceeded")
	}
	g.entries[s.Identifier] = s
	return nil
}

func (g *fakeGateway) Cancel(_ context.Context, identifier string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ops = append(g.ops, "cancel:"+identifier)
	delete(g.entries, identifier)
	return nil
}

func (g *fakeGateway) CancelAllForCard(_ context.Context, cardID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ops = append(g.ops, "cancelAll:"+cardID)
	for id, e := range g.entries {
		if e.CardID == cardID {
			delete(g.entries, id)
		}
	}
	return nil
}

func (g *fakeGateway) HasPermission(context.Context) bool {
	return g.permission
}

func (g *fakeGateway) identifierSet() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	ids := make([]string, 0, len(g.entries))
	for id := range g.entries {
		ids = append(ids, id)
	}
	return ids
}
