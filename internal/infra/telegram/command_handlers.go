// internal/infra/telegram/command_handlers.go
package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"card_reminder_bot/internal/app"
	"card_reminder_bot/internal/domain/billing"
	"card_reminder_bot/internal/domain/rule"
	idb "card_reminder_bot/internal/infra/database" // For ErrCardNotFound

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// Services bundles what the command surface needs.
type Services struct {
	Cards     *app.CardService
	Ledger    *app.LedgerService
	Settings  *app.SettingsService
	Reminders *app.ReminderService
	Rules     rule.Repository
}

// RegisterCommandHandlers wires the cardholder command surface. The bot is
// single-user: every command is gated on the configured cardholder chat.
func RegisterCommandHandlers(
	ctx context.Context,
	b *telebot.Bot,
	cardholderID int64,
	svc Services,
	baseLogger *logrus.Entry,
) {
	guard := func(handler func(telebot.Context) error) func(telebot.Context) error {
		return func(c telebot.Context) error {
			if c.Sender().ID != cardholderID {
				return c.Send("This bot only serves its configured cardholder.")
			}
			return handler(c)
		}
	}

	b.Handle("/start", guard(func(c telebot.Context) error {
		baseLogger.WithField("command", "/start").Info("Processing /start command")
		return c.Send(fmt.Sprintf("Hi %s! I track your credit-card due dates and remind you before (and after) each bill is due. Use /help for commands.", c.Sender().FirstName))
	}))

	b.Handle("/help", guard(func(c telebot.Context) error {
		var help strings.Builder
		help.WriteString("Available commands:\n\n")
		help.WriteString("`/cards`\n - What's due next across all cards.\n\n")
		help.WriteString("`/addcard <name> <dueDay> [issuer]`\n - Track a new card (dueDay 1-31).\n\n")
		help.WriteString("`/duedate <name> <day>`\n - Change a card's monthly due day.\n\n")
		help.WriteString("`/paid <name> [YYYY-MM]`\n - Mark a bill paid (defaults to the cycle due next).\n\n")
		help.WriteString("`/unpaid <name> <YYYY-MM>`\n - Undo a paid mark.\n\n")
		help.WriteString("`/notify <name> on|off`\n - Toggle reminders for one card.\n\n")
		help.WriteString("`/notifyall on|off`\n - Toggle reminders for every card.\n\n")
		help.WriteString("`/rules [name]`\n - Show the reminder rules in effect.")
		return c.Send(help.String(), &telebot.SendOptions{ParseMode: telebot.ModeMarkdown})
	}))

	b.Handle("/cards", guard(func(c telebot.Context) error {
		logCtx := baseLogger.WithField("command", "/cards")
		board, err := svc.Cards.Board(ctx)
		if err != nil {
			logCtx.WithError(err).Error("Failed to build board")
			return c.Send("Could not load your cards right now. Please try again later.")
		}
		return c.Send(renderBoard(board))
	}))

	b.Handle("/addcard", guard(func(c telebot.Context) error {
		logCtx := baseLogger.WithField("command", "/addcard")
		args := c.Args()
		if len(args) < 2 {
			return c.Send("Usage: /addcard <name> <dueDay> [issuer]")
		}
		dueDay, err := strconv.Atoi(args[1])
		if err != nil {
			return c.Send(fmt.Sprintf("Invalid due day %q, expected a number 1-31.", args[1]))
		}
		issuer := ""
		if len(args) > 2 {
			issuer = strings.Join(args[2:], " ")
		}
		newCard, err := svc.Cards.AddCard(ctx, args[0], issuer, dueDay)
		if err != nil {
			if err == idb.ErrDuplicateCardName {
				return c.Send(fmt.Sprintf("A card named %q already exists.", args[0]))
			}
			logCtx.WithError(err).Error("Failed to add card")
			return c.Send(fmt.Sprintf("Could not add the card: %v", err))
		}
		return c.Send(fmt.Sprintf("Added card %s, bill due on day %d of each month. Reminders are on.", newCard.Name, newCard.DueDay))
	}))

	b.Handle("/duedate", guard(func(c telebot.Context) error {
		args := c.Args()
		if len(args) != 2 {
			return c.Send("Usage: /duedate <name> <day>")
		}
		day, err := strconv.Atoi(args[1])
		if err != nil {
			return c.Send(fmt.Sprintf("Invalid due day %q, expected a number 1-31.", args[1]))
		}
		target, err := svc.Cards.GetByName(ctx, args[0])
		if err != nil {
			return sendCardLookupError(c, args[0], err, baseLogger)
		}
		if _, err := svc.Cards.SetDueDay(ctx, target.ID, day); err != nil {
			return c.Send(fmt.Sprintf("Could not update the due day: %v", err))
		}
		return c.Send(fmt.Sprintf("%s now bills on day %d of each month.", target.Name, day))
	}))

	b.Handle("/paid", guard(func(c telebot.Context) error {
		logCtx := baseLogger.WithField("command", "/paid")
		args := c.Args()
		if len(args) < 1 {
			return c.Send("Usage: /paid <name> [YYYY-MM]")
		}
		target, err := svc.Cards.GetByName(ctx, args[0])
		if err != nil {
			return sendCardLookupError(c, args[0], err, baseLogger)
		}

		var month billing.MonthKey
		if len(args) > 1 {
			month, err = billing.ParseMonthKey(args[1])
			if err != nil {
				return c.Send(fmt.Sprintf("Invalid billing month %q, expected YYYY-MM.", args[1]))
			}
		} else {
			// Default to the cycle due next: the earliest unpaid month.
			cycle, err := svc.Reminders.ResolveCycle(ctx, target)
			if err != nil {
				logCtx.WithError(err).Error("Failed to resolve cycle")
				return c.Send("Could not work out which bill to mark. Please pass the month explicitly.")
			}
			month = cycle.MonthKey()
		}

		record, err := svc.Ledger.MarkPaid(ctx, target.ID, month)
		if err != nil {
			logCtx.WithError(err).Error("Failed to mark paid")
			return c.Send("Could not mark the bill paid. Please try again later.")
		}
		if record.OnTime {
			return c.Send(fmt.Sprintf("Marked %s paid for %s — on time. 🎉", target.Name, month))
		}
		return c.Send(fmt.Sprintf("Marked %s paid for %s (after the due date).", target.Name, month))
	}))

	b.Handle("/unpaid", guard(func(c telebot.Context) error {
		args := c.Args()
		if len(args) != 2 {
			return c.Send("Usage: /unpaid <name> <YYYY-MM>")
		}
		target, err := svc.Cards.GetByName(ctx, args[0])
		if err != nil {
			return sendCardLookupError(c, args[0], err, baseLogger)
		}
		month, err := billing.ParseMonthKey(args[1])
		if err != nil {
			return c.Send(fmt.Sprintf("Invalid billing month %q, expected YYYY-MM.", args[1]))
		}
		if err := svc.Ledger.UnmarkPaid(ctx, target.ID, month); err != nil {
			return c.Send("Could not undo the paid mark. Please try again later.")
		}
		return c.Send(fmt.Sprintf("Removed the paid mark for %s, %s.", target.Name, month))
	}))

	b.Handle("/notify", guard(func(c telebot.Context) error {
		args := c.Args()
		if len(args) != 2 || (args[1] != "on" && args[1] != "off") {
			return c.Send("Usage: /notify <name> on|off")
		}
		target, err := svc.Cards.GetByName(ctx, args[0])
		if err != nil {
			return sendCardLookupError(c, args[0], err, baseLogger)
		}
		enabled := args[1] == "on"
		if err := svc.Settings.SetCardNotifications(ctx, target.ID, enabled); err != nil {
			return c.Send("Could not change the reminder setting. Please try again later.")
		}
		if enabled {
			return c.Send(fmt.Sprintf("Reminders are on for %s.", target.Name))
		}
		return c.Send(fmt.Sprintf("Reminders are off for %s. It will also be hidden from /cards.", target.Name))
	}))

	b.Handle("/notifyall", guard(func(c telebot.Context) error {
		args := c.Args()
		if len(args) != 1 || (args[0] != "on" && args[0] != "off") {
			return c.Send("Usage: /notifyall on|off")
		}
		enabled := args[0] == "on"
		if err := svc.Settings.SetAllNotifications(ctx, enabled); err != nil {
			return c.Send("Could not change the reminder settings. Please try again later.")
		}
		if enabled {
			return c.Send("Reminders are on for all cards.")
		}
		return c.Send("Reminders are off for all cards.")
	}))

	b.Handle("/rules", guard(func(c telebot.Context) error {
		args := c.Args()
		var (
			set     rule.Set
			err     error
			caption = "Default reminder rules"
		)
		if len(args) == 0 {
			set, err = svc.Rules.GetDefault(ctx)
		} else {
			target, lookupErr := svc.Cards.GetByName(ctx, args[0])
			if lookupErr != nil {
				return sendCardLookupError(c, args[0], lookupErr, baseLogger)
			}
			set, err = svc.Rules.GetOverride(ctx, target.ID)
			if err == rule.ErrNoOverride {
				set, err = svc.Rules.GetDefault(ctx)
				caption = fmt.Sprintf("Rules for %s (following the default)", target.Name)
			} else {
				caption = fmt.Sprintf("Rules for %s (card override)", target.Name)
			}
		}
		if err != nil {
			baseLogger.WithError(err).Error("Failed to load rules")
			return c.Send("Could not load the reminder rules right now.")
		}
		return c.Send(renderRules(caption, set))
	}))
}

func sendCardLookupError(c telebot.Context, name string, err error, logger *logrus.Entry) error {
	if err == idb.ErrCardNotFound {
		return c.Send(fmt.Sprintf("No card named %q. Use /cards to list them.", name))
	}
	logger.WithError(err).WithField("card_name", name).Error("Card lookup failed")
	return c.Send("Something went wrong looking up that card. Please try again later.")
}

func renderBoard(board billing.Board) string {
	if board.AllPaid {
		return "✅ All bills paid. Nothing due."
	}
	var out strings.Builder
	switch board.Kind {
	case billing.StatusOverdue:
		out.WriteString("⚠️ Overdue:\n")
	case billing.StatusDueToday:
		out.WriteString("⏰ Due today:\n")
	case billing.StatusUpcoming:
		out.WriteString("📅 Coming up:\n")
	}
	for _, e := range board.Entries {
		out.WriteString(fmt.Sprintf("  %s — %s (due %s)\n", e.CardName, e.Status.Text, e.Cycle.DueDate.Format("Jan 2")))
	}
	return out.String()
}

func renderRules(caption string, set rule.Set) string {
	var out strings.Builder
	out.WriteString(caption + ":\n")
	for _, r := range set.Rules {
		state := "on"
		if !r.Enabled {
			state = "off"
		}
		if r.IsOverdue() {
			out.WriteString(fmt.Sprintf("  overdue: daily for %d days after the due date at %s [%s]\n", r.Window(), strings.Join(r.Times, ", "), state))
			continue
		}
		switch r.DaysBefore {
		case 0:
			out.WriteString(fmt.Sprintf("  %s: on the due day at %s [%s]\n", r.ID, strings.Join(r.Times, ", "), state))
		default:
			out.WriteString(fmt.Sprintf("  %s: %d day(s) before at %s [%s]\n", r.ID, r.DaysBefore, strings.Join(r.Times, ", "), state))
		}
	}
	return out.String()
}
