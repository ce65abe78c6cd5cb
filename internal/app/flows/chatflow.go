package flows

import (
	"context"
	"errors"
	"strings"

	"baraholka/internal/domain/chat"
	"baraholka/internal/domain/listing"
	"baraholka/internal/flow"
	"baraholka/internal/session"
	"baraholka/internal/transport"
)

// handleOpenChat enters a conversation about a listing. The identity is
// derived the same way for both sides, so either participant lands in
// the same thread.
func (b *Bot) handleOpenChat(ctx context.Context, sess *flow.Session, ev flow.Event) error {
	if ev.Action.Partner == sess.User {
		return b.Sink.Notify(ctx, sess.User, "Это ваше объявление.")
	}
	if _, err := b.Listings.ByID(ctx, ev.Action.Listing); err != nil {
		if errors.Is(err, listing.ErrNotFound) {
			return b.notFound(ctx, sess, "Лот не доступен.")
		}
		return b.fail(ctx, sess.User, err)
	}
	key, err := b.Relay.Open(ctx, sess.User, ev.Action.Partner, ev.Action.Listing)
	if err != nil {
		return b.fail(ctx, sess.User, err)
	}
	window, err := b.Relay.Window(ctx, key, 0, PageSize, chat.Newest)
	if err != nil {
		return b.fail(ctx, sess.User, err)
	}
	c := sess.Begin(flow.FlowChat, flow.StepActive)
	c.Chat = &key
	c.ChatShown = len(window)
	if c.ChatShown < PageSize {
		c.ChatShown = PageSize
	}
	return b.renderChatWindow(ctx, sess, window)
}

// handleChatActive serves the live conversation state: free text is
// relayed to the partner, the load-more action extends the visible
// window backwards.
func (b *Bot) handleChatActive(ctx context.Context, sess *flow.Session, ev flow.Event) error {
	c := sess.Context()
	if c.Chat == nil {
		return b.notFound(ctx, sess, "Чат не найден.")
	}
	key := *c.Chat

	if ev.Action != nil {
		if ev.Action.Name != flow.ActionLoadMore {
			return b.Renderer.Refresh(ctx, sess.User)
		}
		// the merged window is re-read in one shot: older messages
		// join the displayed ones with no duplication or reorder
		c.ChatShown += PageSize
		window, err := b.Relay.Window(ctx, key, 0, c.ChatShown, chat.Newest)
		if err != nil {
			return b.fail(ctx, sess.User, err)
		}
		return b.renderChatWindow(ctx, sess, window)
	}

	text := strings.TrimSpace(ev.Text)
	if text == "" {
		return b.Renderer.Refresh(ctx, sess.User)
	}
	if _, err := b.Relay.Send(ctx, key, sess.User, text); err != nil {
		if errors.Is(err, chat.ErrNotFound) {
			return b.notFound(ctx, sess, "Чат не найден.")
		}
		return b.fail(ctx, sess.User, err)
	}
	window, err := b.Relay.Window(ctx, key, 0, c.ChatShown, chat.Newest)
	if err != nil {
		return b.fail(ctx, sess.User, err)
	}
	return b.renderChatWindow(ctx, sess, window)
}

func (b *Bot) renderChatWindow(ctx context.Context, sess *flow.Session, window []chat.Message) error {
	lines := make([]string, 0, len(window))
	for _, msg := range window {
		label := "Собеседник"
		if msg.Sender == sess.User {
			label = "Вы"
		}
		lines = append(lines, label+": "+msg.Text)
	}
	text := strings.Join(lines, "\n")
	if text == "" {
		text = "Начните беседу..."
	}
	_, err := b.Renderer.Render(ctx, sess.User, session.View{
		Text: text,
		Keyboard: transport.Keyboard{
			transport.Row(transport.Button{Label: "Загрузить ещё", Action: flow.Action{Name: flow.ActionLoadMore}}),
			backRow(),
		},
	})
	return err
}
