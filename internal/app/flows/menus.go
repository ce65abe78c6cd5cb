package flows

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"baraholka/internal/domain/listing"
	"baraholka/internal/domain/user"
	"baraholka/internal/flow"
	"baraholka/internal/session"
	"baraholka/internal/transport"
)

func (b *Bot) showMainMenu(ctx context.Context, to user.ID) error {
	_, err := b.Renderer.Render(ctx, to, session.View{
		Text: "Главное меню\nВыберите действие:",
		Keyboard: transport.Keyboard{
			transport.Row(
				transport.Button{Label: "🔍 Поиск", Action: flow.Action{Name: flow.ActionMenuSearch}},
				transport.Button{Label: "📦 Твои объявления", Action: flow.Action{Name: flow.ActionMenuListings}},
			),
			transport.Row(
				transport.Button{Label: "💬 Чаты", Action: flow.Action{Name: flow.ActionMenuChats}},
				transport.Button{Label: "⭐ Избранное", Action: flow.Action{Name: flow.ActionMenuFavourites}},
			),
			transport.Row(
				transport.Button{Label: "⚙️ Настройки", Action: flow.Action{Name: flow.ActionMenuSettings}},
			),
		},
	})
	return err
}

func (b *Bot) handleMenuSettings(ctx context.Context, sess *flow.Session, _ flow.Event) error {
	sess.End()
	_, err := b.Renderer.Render(ctx, sess.User, session.View{
		Text: "Настройки\nВыберите параметр для изменения:",
		Keyboard: transport.Keyboard{
			transport.Row(transport.Button{Label: "Изменить город", Action: flow.Action{Name: flow.ActionChangeCity}}),
			backRow(),
		},
	})
	return err
}

func (b *Bot) handleMenuListings(ctx context.Context, sess *flow.Session, _ flow.Event) error {
	sess.End()
	items, err := b.Listings.ByOwner(ctx, sess.User, 0, PageSize)
	if err != nil {
		return b.fail(ctx, sess.User, err)
	}
	kb := transport.Keyboard{}
	for _, item := range items {
		kb = append(kb, transport.Row(transport.Button{
			Label:  clip(item.Title, 25),
			Action: flow.Action{Name: flow.ActionViewListing, Listing: item.ID},
		}))
	}
	kb = append(kb,
		transport.Row(transport.Button{Label: "➕ Создать новое", Action: flow.Action{Name: flow.ActionCreateListing}}),
		transport.Row(transport.Button{Label: "✏️ Редактировать", Action: flow.Action{Name: flow.ActionEditListings}}),
		backRow(),
	)
	_, err = b.Renderer.Render(ctx, sess.User, session.View{Text: "Ваши объявления", Keyboard: kb})
	return err
}

func (b *Bot) handleMenuFavourites(ctx context.Context, sess *flow.Session, _ flow.Event) error {
	sess.End()
	ids, err := b.Favourites.ListByUser(ctx, sess.User, 0, PageSize)
	if err != nil {
		return b.fail(ctx, sess.User, err)
	}
	kb := transport.Keyboard{}
	for _, id := range ids {
		item, err := b.Listings.ByID(ctx, id)
		if err != nil {
			if errors.Is(err, listing.ErrNotFound) {
				continue
			}
			return b.fail(ctx, sess.User, err)
		}
		// favourites only surface published listings
		if item.Status != listing.StatusApproved {
			continue
		}
		kb = append(kb, transport.Row(transport.Button{
			Label:  fmt.Sprintf("%s — %d₽", clip(item.Title, 25), item.Price),
			Action: flow.Action{Name: flow.ActionViewListing, Listing: item.ID},
		}))
	}
	text := "Избранные лоты:"
	if len(kb) == 0 {
		text = "У вас нет избранных лотов."
	}
	kb = append(kb, backRow())
	_, err = b.Renderer.Render(ctx, sess.User, session.View{Text: text, Keyboard: kb})
	return err
}

func (b *Bot) handleMenuChats(ctx context.Context, sess *flow.Session, _ flow.Event) error {
	sess.End()
	chats, err := b.Relay.Chats.ListByUser(ctx, sess.User, 0, PageSize)
	if err != nil {
		return b.fail(ctx, sess.User, err)
	}
	if len(chats) == 0 {
		_, err = b.Renderer.Render(ctx, sess.User, session.View{
			Text:     "У вас нет чатов.",
			Keyboard: transport.Keyboard{backRow()},
		})
		return err
	}
	kb := transport.Keyboard{}
	for _, c := range chats {
		kb = append(kb, transport.Row(transport.Button{
			Label: fmt.Sprintf("Чат по лоту %s", clip(string(c.Key.Listing), 8)),
			Action: flow.Action{
				Name:    flow.ActionOpenChat,
				Listing: c.Key.Listing,
				Partner: c.Key.Partner(sess.User),
			},
		}))
	}
	kb = append(kb, backRow())
	_, err = b.Renderer.Render(ctx, sess.User, session.View{Text: "Ваши чаты:", Keyboard: kb})
	return err
}

// handleViewListing shows one approved listing (or the owner's own
// listing in any status). Photo-bearing listings render as a composite:
// media group plus a control surface.
func (b *Bot) handleViewListing(ctx context.Context, sess *flow.Session, ev flow.Event) error {
	item, err := b.Listings.ByID(ctx, ev.Action.Listing)
	if err != nil {
		if errors.Is(err, listing.ErrNotFound) {
			return b.notFound(ctx, sess, "Лот не доступен.")
		}
		return b.fail(ctx, sess.User, err)
	}
	if item.Status != listing.StatusApproved && item.Owner != sess.User {
		return b.notFound(ctx, sess, "Лот не доступен.")
	}

	fav, err := b.Favourites.Has(ctx, sess.User, item.ID)
	if err != nil {
		return b.fail(ctx, sess.User, err)
	}

	var buttons []transport.Button
	if fav {
		buttons = append(buttons, transport.Button{Label: "❌ Удалить из избранного", Action: flow.Action{Name: flow.ActionUnfavourite, Listing: item.ID}})
	} else {
		buttons = append(buttons, transport.Button{Label: "⭐ В избранное", Action: flow.Action{Name: flow.ActionFavourite, Listing: item.ID}})
	}
	buttons = append(buttons, transport.Button{Label: "🚩 Пожаловаться", Action: flow.Action{Name: flow.ActionReport, Listing: item.ID}})
	if item.Owner != sess.User {
		buttons = append(buttons, transport.Button{
			Label:  "✉️ Написать продавцу",
			Action: flow.Action{Name: flow.ActionStartChat, Listing: item.ID, Partner: item.Owner},
		})
	}
	buttons = append(buttons, transport.Button{Label: "⬅️ Назад", Action: flow.Action{Name: flow.ActionBack}})

	kb := transport.Keyboard{}
	for i := 0; i < len(buttons); i += 2 {
		end := i + 2
		if end > len(buttons) {
			end = len(buttons)
		}
		kb = append(kb, buttons[i:end])
	}

	text := listingText(item)
	if len(item.Photos) > 0 {
		media := make([]transport.Media, 0, len(item.Photos))
		for i, ref := range item.Photos {
			m := transport.Media{Ref: ref}
			if i == 0 {
				m.Caption = text
			}
			media = append(media, m)
		}
		_, err = b.Renderer.RenderComposite(ctx, sess.User, media, session.View{
			Text:     "Дополнительные действия:",
			Keyboard: kb,
		})
		return err
	}
	_, err = b.Renderer.Render(ctx, sess.User, session.View{Text: text, Keyboard: kb})
	return err
}

func (b *Bot) favouriteHandler(add bool) flow.HandlerFunc {
	return func(ctx context.Context, sess *flow.Session, ev flow.Event) error {
		var err error
		if add {
			err = b.Favourites.Add(ctx, sess.User, ev.Action.Listing)
		} else {
			err = b.Favourites.Remove(ctx, sess.User, ev.Action.Listing)
		}
		if err != nil {
			return b.fail(ctx, sess.User, err)
		}
		// refresh the card so the toggle button flips
		return b.handleViewListing(ctx, sess, ev)
	}
}

func (b *Bot) handleReport(ctx context.Context, sess *flow.Session, ev flow.Event) error {
	if err := b.Gate.Report(ctx, sess.User, ev.Action.Listing); err != nil {
		if errors.Is(err, listing.ErrNotFound) {
			return b.notFound(ctx, sess, "Лот не доступен.")
		}
		return b.fail(ctx, sess.User, err)
	}
	return b.Sink.Notify(ctx, sess.User, "Спасибо, ваша жалоба отправлена модератору.")
}

func listingText(item *listing.Listing) string {
	lines := []string{
		item.Title,
		"Категория: " + item.Category,
		"Состояние: " + item.Condition,
		fmt.Sprintf("Цена: %d₽", item.Price),
	}
	location := item.City
	if item.Microdistrict != "" {
		location += ", " + item.Microdistrict
	}
	lines = append(lines, "Локация: "+location)
	if item.Description != "" {
		lines = append(lines, item.Description)
	}
	return strings.Join(lines, "\n")
}

func clip(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max])
}
