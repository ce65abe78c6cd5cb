package flows

import (
	"context"
	"errors"
	"time"

	"baraholka/internal/domain/listing"
	"baraholka/internal/flow"
	"baraholka/internal/session"
	"baraholka/internal/transport"
)

func (b *Bot) handleEditListings(ctx context.Context, sess *flow.Session, _ flow.Event) error {
	sess.End()
	items, err := b.Listings.ByOwner(ctx, sess.User, 0, 50)
	if err != nil {
		return b.fail(ctx, sess.User, err)
	}
	if len(items) == 0 {
		_, err = b.Renderer.Render(ctx, sess.User, session.View{
			Text:     "У вас нет объявлений для редактирования.",
			Keyboard: transport.Keyboard{backRow()},
		})
		return err
	}
	kb := transport.Keyboard{}
	for _, item := range items {
		kb = append(kb, transport.Row(transport.Button{
			Label:  "✏️ " + clip(item.Title, 25),
			Action: flow.Action{Name: flow.ActionEditListing, Listing: item.ID},
		}))
	}
	kb = append(kb, backRow())
	_, err = b.Renderer.Render(ctx, sess.User, session.View{
		Text:     "Выберите объявление для редактирования:",
		Keyboard: kb,
	})
	return err
}

// handleEditListing shows the field picker: the edit variant is
// field-targeted, not sequential.
func (b *Bot) handleEditListing(ctx context.Context, sess *flow.Session, ev flow.Event) error {
	sess.End()
	id := ev.Action.Listing
	_, err := b.Renderer.Render(ctx, sess.User, session.View{
		Text: "Что вы хотите изменить?",
		Keyboard: transport.Keyboard{
			transport.Row(transport.Button{Label: "🖼️ Фото", Action: flow.Action{Name: flow.ActionEditPhotos, Listing: id}}),
			transport.Row(transport.Button{Label: "💰 Цена", Action: flow.Action{Name: flow.ActionEditPrice, Listing: id}}),
			transport.Row(transport.Button{Label: "📝 Описание", Action: flow.Action{Name: flow.ActionEditCategoryDesc, Listing: id}}),
			transport.Row(transport.Button{Label: "⬅️ Назад", Action: flow.Action{Name: flow.ActionEditListings}}),
		},
	})
	return err
}

// editFieldHandler begins the edit flow at the chosen field's step.
func (b *Bot) editFieldHandler(step flow.Step) flow.HandlerFunc {
	return func(ctx context.Context, sess *flow.Session, ev flow.Event) error {
		c := sess.Begin(flow.FlowEdit, step)
		c.Listing = ev.Action.Listing
		switch step {
		case flow.StepPhotos:
			return b.prompt(ctx, sess.User, "Отправьте новые фото (до 3). Введите «Пропустить», чтобы оставить фото без изменений.")
		case flow.StepPrice:
			return b.prompt(ctx, sess.User, "Введите новую цену (в рублях):")
		default:
			return b.prompt(ctx, sess.User, "Выберите новую категорию: "+categoryPrompt())
		}
	}
}

func (b *Bot) handleEditPhotos(ctx context.Context, sess *flow.Session, ev flow.Event) error {
	c := sess.Context()
	if skipRequested(ev.Text) {
		// keep the photos; the listing still goes back through moderation
		return b.finishEdit(ctx, sess, func(l *listing.Listing, now time.Time) error {
			if len(c.Photos) == 0 {
				l.Resubmit(now)
				return nil
			}
			return l.ReplacePhotos(c.Photos, now)
		})
	}
	if ev.Photo == "" {
		return b.prompt(ctx, sess.User, photoRetryPrompt)
	}
	c.Photos = append(c.Photos, ev.Photo)
	if len(c.Photos) < listing.MaxPhotos {
		return b.prompt(ctx, sess.User, "Фото добавлено. Добавьте ещё фото или отправьте «Пропустить».")
	}
	return b.finishEdit(ctx, sess, func(l *listing.Listing, now time.Time) error {
		return l.ReplacePhotos(c.Photos, now)
	})
}

func (b *Bot) handleEditPrice(ctx context.Context, sess *flow.Session, ev flow.Event) error {
	price := listing.ParsePrice(ev.Text)
	return b.finishEdit(ctx, sess, func(l *listing.Listing, now time.Time) error {
		return l.SetPrice(price, now)
	})
}

func (b *Bot) handleEditCategory(ctx context.Context, sess *flow.Session, ev flow.Event) error {
	category, ok := listing.MatchCategory(ev.Text)
	if !ok {
		return b.prompt(ctx, sess.User, categoryNotFound)
	}
	sess.Context().Category = category
	sess.Advance(flow.StepDescription)
	return b.prompt(ctx, sess.User, "Введите новое описание (до 150 символов):")
}

func (b *Bot) handleEditDescription(ctx context.Context, sess *flow.Session, ev flow.Event) error {
	c := sess.Context()
	description := ev.Text
	return b.finishEdit(ctx, sess, func(l *listing.Listing, now time.Time) error {
		return l.SetCategoryAndDescription(c.Category, description, now)
	})
}

// finishEdit applies one typed field setter, saves, and re-triggers
// moderation. Every successful edit overrides a prior approved/denied
// outcome with pending.
func (b *Bot) finishEdit(ctx context.Context, sess *flow.Session, apply func(*listing.Listing, time.Time) error) error {
	c := sess.Context()
	l, err := b.Listings.ByID(ctx, c.Listing)
	if err != nil {
		if errors.Is(err, listing.ErrNotFound) {
			return b.notFound(ctx, sess, "Лот не доступен.")
		}
		return b.fail(ctx, sess.User, err)
	}
	if l.Owner != sess.User {
		return b.notFound(ctx, sess, "Лот не доступен.")
	}
	if err := apply(l, b.now()); err != nil {
		return b.fail(ctx, sess.User, err)
	}
	if err := b.Listings.Save(ctx, l); err != nil {
		return b.fail(ctx, sess.User, err)
	}
	sess.End()
	b.Gate.SubmitForReview(ctx, l)
	if err := b.Sink.Notify(ctx, sess.User, "Лот обновлён и отправлен на модерацию."); err != nil && b.Logger != nil {
		b.Logger.Warn("edit confirmation failed", "user", sess.User, "error", err)
	}
	return b.showMainMenu(ctx, sess.User)
}
