package flows

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"baraholka/internal/domain/listing"
	"baraholka/internal/domain/user"
	"baraholka/internal/flow"
)

const (
	photoPrompt       = "Загрузите фото товара (до 3). Отправьте «Пропустить», чтобы продолжить без фото."
	photoRetryPrompt  = "Пожалуйста, отправьте фото или «Пропустить»."
	priceQuery        = "Укажите цену (в рублях):"
	titleQuery        = "Введите название товара:"
	descriptionQuery  = "Введите описание (до 150 символов):"
	categoryNotFound  = "Категория не найдена. Попробуйте выбрать из списка или указать более точно."
	conditionNotFound = "Пожалуйста, выберите состояние из предложенных."
)

func (b *Bot) handleCreateListing(ctx context.Context, sess *flow.Session, _ flow.Event) error {
	sess.Begin(flow.FlowCreate, flow.StepPhotos)
	return b.prompt(ctx, sess.User, photoPrompt)
}

// handleCreatePhotos loops within the photo step until the user skips
// or the cap is reached.
func (b *Bot) handleCreatePhotos(ctx context.Context, sess *flow.Session, ev flow.Event) error {
	c := sess.Context()
	if skipRequested(ev.Text) {
		sess.Advance(flow.StepCategory)
		return b.prompt(ctx, sess.User, categoryPrompt())
	}
	if ev.Photo == "" {
		return b.prompt(ctx, sess.User, photoRetryPrompt)
	}
	if len(c.Photos) >= listing.MaxPhotos {
		return b.prompt(ctx, sess.User, "Максимум 3 фото. Введите «Пропустить», чтобы продолжить.")
	}
	c.Photos = append(c.Photos, ev.Photo)
	if len(c.Photos) < listing.MaxPhotos {
		return b.prompt(ctx, sess.User, "Фото добавлено. Вы можете добавить ещё фото или написать «Пропустить».")
	}
	sess.Advance(flow.StepCategory)
	return b.prompt(ctx, sess.User, "Вы достигли максимума (3 фото). Давайте продолжим.\n"+categoryPrompt())
}

func (b *Bot) handleCreateCategory(ctx context.Context, sess *flow.Session, ev flow.Event) error {
	category, ok := listing.MatchCategory(ev.Text)
	if !ok {
		return b.prompt(ctx, sess.User, categoryNotFound)
	}
	sess.Context().Category = category
	sess.Advance(flow.StepCondition)
	return b.prompt(ctx, sess.User, conditionPrompt())
}

func (b *Bot) handleCreateCondition(ctx context.Context, sess *flow.Session, ev flow.Event) error {
	condition, ok := listing.MatchCondition(ev.Text)
	if !ok {
		return b.prompt(ctx, sess.User, conditionNotFound)
	}
	sess.Context().Condition = condition
	sess.Advance(flow.StepPrice)
	return b.prompt(ctx, sess.User, priceQuery)
}

func (b *Bot) handleCreatePrice(ctx context.Context, sess *flow.Session, ev flow.Event) error {
	sess.Context().Price = listing.ParsePrice(ev.Text)
	sess.Advance(flow.StepTitle)
	return b.prompt(ctx, sess.User, titleQuery)
}

func (b *Bot) handleCreateTitle(ctx context.Context, sess *flow.Session, ev flow.Event) error {
	sess.Context().Title = listing.Truncate(ev.Text, listing.MaxTitleLen)
	sess.Advance(flow.StepDescription)
	return b.prompt(ctx, sess.User, descriptionQuery)
}

// handleCreateDescription completes the flow: the draft is persisted as
// pending with its photos attached and handed to the moderation gate.
func (b *Bot) handleCreateDescription(ctx context.Context, sess *flow.Session, ev flow.Event) error {
	c := sess.Context()
	owner, err := b.Users.ByID(ctx, sess.User)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return b.notFound(ctx, sess, "Не удалось определить ваш город. Отправьте /start.")
		}
		return b.fail(ctx, sess.User, err)
	}
	item, err := listing.New(listing.CreateParams{
		ID:            listing.ID(uuid.NewString()),
		Owner:         sess.User,
		City:          owner.City,
		Microdistrict: owner.Microdistrict,
		Category:      c.Category,
		Condition:     c.Condition,
		Title:         c.Title,
		Description:   ev.Text,
		Price:         c.Price,
		Photos:        c.Photos,
		Now:           b.now(),
	})
	if err != nil {
		return b.fail(ctx, sess.User, err)
	}
	if err := b.Listings.Save(ctx, item); err != nil {
		return b.fail(ctx, sess.User, err)
	}
	sess.End()
	b.Gate.SubmitForReview(ctx, item)
	if err := b.Sink.Notify(ctx, sess.User, "Лот создан и отправлен на модерацию."); err != nil && b.Logger != nil {
		b.Logger.Warn("creation confirmation failed", "user", sess.User, "error", err)
	}
	return b.showMainMenu(ctx, sess.User)
}

func categoryPrompt() string {
	return "Категория: " + strings.Join(listing.Categories, " / ")
}

func conditionPrompt() string {
	return "Состояние товара: " + strings.Join(listing.Conditions, " / ")
}

// skipRequested matches the «Пропустить» convention, prefix-based and
// case-insensitive, the same way the button label is typed by users.
func skipRequested(text string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(text)), "проп")
}
