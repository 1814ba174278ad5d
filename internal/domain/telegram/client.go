package telegram

import "gopkg.in/telebot.v3"

// Client defines an interface for sending messages via a Telegram bot.
// The reminder dispatcher depends on this rather than on the bot library
// directly so tests can substitute a fake delivery channel.
type Client interface {
	SendMessage(recipientChatID int64, text string, options *telebot.SendOptions) error
}
