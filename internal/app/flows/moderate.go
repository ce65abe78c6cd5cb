package flows

import (
	"context"
	"errors"
	"fmt"

	"baraholka/internal/app/moderation"
	"baraholka/internal/domain/listing"
	"baraholka/internal/domain/user"
	"baraholka/internal/flow"
	"baraholka/internal/transport"
)

// handleModerate lists pending listings for the admin, each with its
// accept/deny keyboard. Non-admins get the permission signal.
func (b *Bot) handleModerate(ctx context.Context, sess *flow.Session, _ flow.Event) error {
	pending, err := b.Gate.Pending(ctx, sess.User, 0, 10)
	if err != nil {
		if errors.Is(err, moderation.ErrPermission) {
			return b.Sink.Notify(ctx, sess.User, "Недостаточно прав для модерации.")
		}
		return b.fail(ctx, sess.User, err)
	}
	if len(pending) == 0 {
		return b.Sink.Notify(ctx, sess.User, "Нет лотов на модерации.")
	}
	for _, item := range pending {
		text := fmt.Sprintf(
			"ID: %s\nПродавец: %d\nНазвание: %s\nКатегория: %s\nЦена: %d₽",
			item.ID, item.Owner, item.Title, item.Category, item.Price,
		)
		kb := transport.Keyboard{transport.Row(
			transport.Button{Label: "✅ Принять", Action: flow.Action{Name: flow.ActionApprove, Listing: item.ID}},
			transport.Button{Label: "❌ Отклонить", Action: flow.Action{Name: flow.ActionDeny, Listing: item.ID}},
		)}
		if _, err := b.Sink.Send(ctx, sess.User, text, kb); err != nil {
			return b.fail(ctx, sess.User, err)
		}
	}
	return nil
}

// moderationHandler executes one gate transition from an inline action.
func (b *Bot) moderationHandler(apply func(*moderation.Gate, context.Context, user.ID, listing.ID) (*listing.Listing, error), confirmation string) flow.HandlerFunc {
	return func(ctx context.Context, sess *flow.Session, ev flow.Event) error {
		if _, err := apply(b.Gate, ctx, sess.User, ev.Action.Listing); err != nil {
			switch {
			case errors.Is(err, moderation.ErrPermission):
				return b.Sink.Notify(ctx, sess.User, "Недостаточно прав")
			case errors.Is(err, listing.ErrNotFound):
				return b.notFound(ctx, sess, "Лот не доступен.")
			case errors.Is(err, listing.ErrInvalidState):
				return b.Sink.Notify(ctx, sess.User, "Лот уже прошёл модерацию.")
			default:
				return b.fail(ctx, sess.User, err)
			}
		}
		return b.Sink.Notify(ctx, sess.User, confirmation)
	}
}
