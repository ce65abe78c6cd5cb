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

func (b *Bot) handleMenuSearch(ctx context.Context, sess *flow.Session, _ flow.Event) error {
	sess.Begin(flow.FlowSearch, flow.StepFilters)
	return b.renderSearchFilters(ctx, sess.User, "Поиск лотов\nВыберите фильтры или перейдите к поиску.")
}

// handleSearchFilters drives the filter hub: pick a category filter, a
// condition filter, or go straight to the query.
func (b *Bot) handleSearchFilters(ctx context.Context, sess *flow.Session, ev flow.Event) error {
	if ev.Action == nil {
		return b.Renderer.Refresh(ctx, sess.User)
	}
	switch ev.Action.Name {
	case flow.ActionSearchCategory:
		sess.Advance(flow.StepCategory)
		kb := transport.Keyboard{}
		row := []transport.Button{}
		for _, category := range listing.Categories {
			row = append(row, transport.Button{
				Label:  category,
				Action: flow.Action{Name: flow.ActionFilterCategory, Category: category},
			})
			if len(row) == 2 {
				kb = append(kb, row)
				row = nil
			}
		}
		if len(row) > 0 {
			kb = append(kb, row)
		}
		kb = append(kb, transport.Row(transport.Button{Label: "Пропустить", Action: flow.Action{Name: flow.ActionFilterAny}}))
		_, err := b.Renderer.Render(ctx, sess.User, session.View{Text: "Выберите категорию:", Keyboard: kb})
		return err
	case flow.ActionSearchCondition:
		sess.Advance(flow.StepCondition)
		kb := transport.Keyboard{}
		for _, condition := range listing.Conditions {
			kb = append(kb, transport.Row(transport.Button{
				Label:  condition,
				Action: flow.Action{Name: flow.ActionFilterCondition, Condition: condition},
			}))
		}
		kb = append(kb, transport.Row(transport.Button{Label: "Пропустить", Action: flow.Action{Name: flow.ActionFilterAny}}))
		_, err := b.Renderer.Render(ctx, sess.User, session.View{Text: "Выберите состояние товара:", Keyboard: kb})
		return err
	case flow.ActionSearchGo:
		sess.Advance(flow.StepQuery)
		return b.prompt(ctx, sess.User, "Введите поисковую фразу. Фильтры применяются автоматически. Отправьте «-» для поиска без слов.")
	default:
		return b.Renderer.Refresh(ctx, sess.User)
	}
}

func (b *Bot) handleSearchCategory(ctx context.Context, sess *flow.Session, ev flow.Event) error {
	if ev.Action == nil {
		return b.Renderer.Refresh(ctx, sess.User)
	}
	switch ev.Action.Name {
	case flow.ActionFilterCategory:
		sess.Context().Category = ev.Action.Category
	case flow.ActionFilterAny:
		sess.Context().Category = ""
	default:
		return b.Renderer.Refresh(ctx, sess.User)
	}
	sess.Advance(flow.StepFilters)
	return b.renderSearchFilters(ctx, sess.User, "Категория выбрана. Выберите следующие действия:")
}

func (b *Bot) handleSearchCondition(ctx context.Context, sess *flow.Session, ev flow.Event) error {
	if ev.Action == nil {
		return b.Renderer.Refresh(ctx, sess.User)
	}
	switch ev.Action.Name {
	case flow.ActionFilterCondition:
		sess.Context().Condition = ev.Action.Condition
	case flow.ActionFilterAny:
		sess.Context().Condition = ""
	default:
		return b.Renderer.Refresh(ctx, sess.User)
	}
	sess.Advance(flow.StepFilters)
	return b.renderSearchFilters(ctx, sess.User, "Состояние выбрано. Выберите следующие действия:")
}

// handleSearchQuery performs the search. Scope is the user's stored
// city only: the microdistrict collected at registration is ignored on
// purpose, breadth over precision.
func (b *Bot) handleSearchQuery(ctx context.Context, sess *flow.Session, ev flow.Event) error {
	query := strings.TrimSpace(ev.Text)
	if query == "-" {
		query = ""
	}
	u, err := b.Users.ByID(ctx, sess.User)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return b.notFound(ctx, sess, "Не удалось определить ваш город. Попробуйте начать сначала.")
		}
		return b.fail(ctx, sess.User, err)
	}
	c := sess.Context()
	results, err := b.Listings.Search(ctx, listing.SearchParams{
		City:      u.City,
		Category:  c.Category,
		Condition: c.Condition,
		Terms:     listing.Tokenize(query),
		Offset:    0,
		Limit:     PageSize,
	})
	if err != nil {
		return b.fail(ctx, sess.User, err)
	}
	sess.End()
	if len(results) == 0 {
		_, err := b.Renderer.Render(ctx, sess.User, session.View{
			Text:     "Ничего не найдено.",
			Keyboard: transport.Keyboard{backRow()},
		})
		return err
	}
	kb := transport.Keyboard{}
	for _, item := range results {
		kb = append(kb, transport.Row(transport.Button{
			Label:  fmt.Sprintf("%s — %d₽", clip(item.Title, 30), item.Price),
			Action: flow.Action{Name: flow.ActionViewListing, Listing: item.ID},
		}))
	}
	kb = append(kb, backRow())
	_, err = b.Renderer.Render(ctx, sess.User, session.View{Text: "Результаты поиска:", Keyboard: kb})
	return err
}

func (b *Bot) renderSearchFilters(ctx context.Context, to user.ID, text string) error {
	_, err := b.Renderer.Render(ctx, to, session.View{
		Text: text,
		Keyboard: transport.Keyboard{
			transport.Row(
				transport.Button{Label: "Категория", Action: flow.Action{Name: flow.ActionSearchCategory}},
				transport.Button{Label: "Состояние", Action: flow.Action{Name: flow.ActionSearchCondition}},
			),
			transport.Row(
				transport.Button{Label: "Перейти к поиску", Action: flow.Action{Name: flow.ActionSearchGo}},
			),
			backRow(),
		},
	})
	return err
}
