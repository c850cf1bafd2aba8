package telegram

import (
	tele "gopkg.in/telebot.v4"

	"travelbot/internal/conversation"
)

// InlineBtn describes a convenience wrapper for inline button properties.
type InlineBtn struct {
	Text   string
	Unique string
	Data   string
}

// InlineButtons builds an inline keyboard where each button sits on its own
// row.
func InlineButtons(buttons []InlineBtn) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	inline := make([][]tele.InlineButton, len(buttons))
	for i, btn := range buttons {
		inline[i] = []tele.InlineButton{*markup.Data(btn.Text, btn.Unique, btn.Data).Inline()}
	}
	markup.InlineKeyboard = inline
	return markup
}

// MainMenu returns the fixed four-option action menu.
func MainMenu() *tele.ReplyMarkup {
	return InlineButtons([]InlineBtn{
		{Text: "✈️ Flight search", Unique: conversation.ActionFlight},
		{Text: "🏨 Hotel search", Unique: conversation.ActionHotel},
		{Text: "🗺️ Route", Unique: conversation.ActionRoute},
		{Text: "⏰ Reminder", Unique: conversation.ActionRemind},
	})
}
