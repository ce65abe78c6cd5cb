package flows

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"baraholka/internal/domain/user"
	"baraholka/internal/flow"
)

const (
	cityPromptRetry  = "Название города должно содержать только буквы, пробелы или дефис и быть не короче 2 символов. Попробуйте ещё раз."
	microPromptRetry = "Название микрорайона может содержать буквы, цифры, пробелы и дефис и должно быть не короче 2 символов. Попробуйте ещё раз, либо отправьте «-» чтобы пропустить."
	microPrompt      = "Укажите ваш микрорайон (можно пропустить, отправив «-»)."
)

func (b *Bot) handleRegistrationCity(ctx context.Context, sess *flow.Session, ev flow.Event) error {
	city := strings.TrimSpace(ev.Text)
	if !user.ValidCity(city) {
		return b.prompt(ctx, sess.User, cityPromptRetry)
	}
	sess.Context().City = city
	sess.Advance(flow.StepMicrodistrict)
	return b.prompt(ctx, sess.User, microPrompt)
}

func (b *Bot) handleRegistrationMicrodistrict(ctx context.Context, sess *flow.Session, ev flow.Event) error {
	micro, ok := microdistrictInput(ev.Text)
	if !ok {
		return b.prompt(ctx, sess.User, microPromptRetry)
	}
	u, err := user.New(user.CreateParams{
		ID:            sess.User,
		City:          sess.Context().City,
		Microdistrict: micro,
		Now:           b.now(),
	})
	if err != nil {
		return b.fail(ctx, sess.User, err)
	}
	if err := b.Users.Save(ctx, u); err != nil {
		return b.fail(ctx, sess.User, err)
	}
	sess.End()
	if err := b.Sink.Notify(ctx, sess.User, fmt.Sprintf("Город сохранён: %s. Вы можете изменить его в настройках позже.", u.City)); err != nil && b.Logger != nil {
		b.Logger.Warn("registration confirmation failed", "user", sess.User, "error", err)
	}
	return b.showMainMenu(ctx, sess.User)
}

func (b *Bot) handleChangeCity(ctx context.Context, sess *flow.Session, _ flow.Event) error {
	sess.Begin(flow.FlowLocation, flow.StepCity)
	return b.prompt(ctx, sess.User, "Введите новый город:")
}

func (b *Bot) handleLocationCity(ctx context.Context, sess *flow.Session, ev flow.Event) error {
	city := strings.TrimSpace(ev.Text)
	if !user.ValidCity(city) {
		return b.prompt(ctx, sess.User, cityPromptRetry)
	}
	sess.Context().City = city
	sess.Advance(flow.StepMicrodistrict)
	return b.prompt(ctx, sess.User, "Введите новый микрорайон (или «-» чтобы пропустить):")
}

func (b *Bot) handleLocationMicrodistrict(ctx context.Context, sess *flow.Session, ev flow.Event) error {
	micro, ok := microdistrictInput(ev.Text)
	if !ok {
		return b.prompt(ctx, sess.User, microPromptRetry)
	}
	u, err := b.Users.ByID(ctx, sess.User)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return b.notFound(ctx, sess, "Не удалось определить ваш профиль. Отправьте /start.")
		}
		return b.fail(ctx, sess.User, err)
	}
	if err := u.SetLocation(sess.Context().City, micro, b.now()); err != nil {
		return b.prompt(ctx, sess.User, cityPromptRetry)
	}
	if err := b.Users.Save(ctx, u); err != nil {
		return b.fail(ctx, sess.User, err)
	}
	sess.End()
	if err := b.Sink.Notify(ctx, sess.User, fmt.Sprintf("Ваш город обновлён на: %s.", u.City)); err != nil && b.Logger != nil {
		b.Logger.Warn("location confirmation failed", "user", sess.User, "error", err)
	}
	return b.showMainMenu(ctx, sess.User)
}

// microdistrictInput interprets "-" as an explicit skip.
func microdistrictInput(text string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "-" {
		return "", true
	}
	if !user.ValidMicrodistrict(trimmed) {
		return "", false
	}
	return trimmed, true
}
