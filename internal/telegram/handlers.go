package telegram

import (
	tele "gopkg.in/telebot.v4"

	"travelbot/internal/conversation"
)

func chatIDOf(c tele.Context) int64 {
	if chat := c.Chat(); chat != nil {
		return chat.ID
	}
	if user := c.Sender(); user != nil {
		return user.ID
	}
	return 0
}

// sendReply delivers an engine reply, re-attaching the main menu when asked.
func sendReply(c tele.Context, reply conversation.Reply) error {
	if reply.ShowMenu {
		return c.Send(reply.Text, MainMenu())
	}
	return c.Send(reply.Text)
}

// registerHandlers wires the /start command, the four menu callbacks, and
// the free-text fallback into the registry.
func registerHandlers(reg *Registry, engine *conversation.Engine) {
	reg.RegisterCommand("/start", Command{
		Description: "Show the main menu",
		Handler: func(c tele.Context) error {
			return sendReply(c, engine.Start(buildContext(c), chatIDOf(c)))
		},
	})

	for _, action := range []string{
		conversation.ActionFlight,
		conversation.ActionHotel,
		conversation.ActionRoute,
		conversation.ActionRemind,
	} {
		action := action
		_ = reg.RegisterCallback(action, func(c tele.Context) error {
			_ = c.Respond()
			reply := engine.Choose(buildContext(c), chatIDOf(c), action)
			// Replace the menu message with the format prompt, as the
			// prompt needs no keyboard.
			if err := c.EditOrSend(reply.Text); err != nil {
				return err
			}
			return nil
		})
	}

	reg.SetTextFallback(func(c tele.Context) error {
		return sendReply(c, engine.Start(buildContext(c), chatIDOf(c)))
	})
}

// textHandler routes free text into the engine while a conversation is in
// progress, and to the fallback otherwise.
func textHandler(reg *Registry, engine *conversation.Engine) tele.HandlerFunc {
	return func(c tele.Context) error {
		chatID := chatIDOf(c)
		if engine.InProgress(chatID) {
			return sendReply(c, engine.Input(buildContext(c), chatID, c.Text()))
		}
		if fb := reg.TextFallback(); fb != nil {
			return fb(c)
		}
		return nil
	}
}

// callbackHandler routes button presses through the registry.
func callbackHandler(reg *Registry) tele.HandlerFunc {
	return func(c tele.Context) error {
		cb := c.Callback()
		if cb == nil {
			return nil
		}
		key, _ := parseCallback(cb)
		handler, ok := reg.GetCallback(key)
		if !ok || handler == nil {
			if fallback := reg.CallbackNotFound(); fallback != nil {
				return fallback(c)
			}
			return nil
		}
		return handler(c)
	}
}
