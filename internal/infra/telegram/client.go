package telegram

import (
	"gopkg.in/telebot.v3"
)

// TelebotAdapter wraps a telebot.Bot behind the domain Client interface so
// the dispatcher never imports the bot library directly.
type TelebotAdapter struct {
	bot *telebot.Bot
}

func NewTelebotAdapter(b *telebot.Bot) *TelebotAdapter {
	return &TelebotAdapter{bot: b}
}

// SendMessage delivers a text message to the cardholder's direct chat.
func (a *TelebotAdapter) SendMessage(recipientChatID int64, text string, options *telebot.SendOptions) error {
	if options == nil {
		options = &telebot.SendOptions{}
	}
	_, err := a.bot.Send(&telebot.User{ID: recipientChatID}, text, options)
	return err
}
