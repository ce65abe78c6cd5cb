// Package flows wires the conversation flows of the classifieds bot
// onto the flow engine: registration, listing creation and editing,
// filtered search, favourites, anonymous chat and moderation actions.
package flows

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"baraholka/internal/app/moderation"
	"baraholka/internal/app/relay"
	"baraholka/internal/domain/listing"
	"baraholka/internal/domain/user"
	"baraholka/internal/flow"
	"baraholka/internal/session"
	"baraholka/internal/transport"
)

// PageSize bounds every paginated menu.
const PageSize = 5

// Bot carries the collaborators shared by all flow handlers.
type Bot struct {
	Users      user.Repository
	Listings   listing.Repository
	Favourites listing.FavouriteRepository
	Relay      *relay.Relay
	Gate       *moderation.Gate
	Renderer   *session.Renderer
	Sink       transport.Sink
	Logger     *slog.Logger
	Clock      func() time.Time
}

// Register binds every command, stateless action and flow state to the
// engine. The registration table below is the complete transition map.
func (b *Bot) Register(e *flow.Engine) error {
	commands := map[flow.Command]flow.HandlerFunc{
		flow.CommandStart:    b.handleStart,
		flow.CommandMute:     b.muteHandler(true),
		flow.CommandUnmute:   b.muteHandler(false),
		flow.CommandModerate: b.handleModerate,
	}
	actions := map[flow.ActionName]flow.HandlerFunc{
		flow.ActionBack:             b.handleBack,
		flow.ActionMenuSearch:       b.handleMenuSearch,
		flow.ActionMenuListings:     b.handleMenuListings,
		flow.ActionMenuChats:        b.handleMenuChats,
		flow.ActionMenuFavourites:   b.handleMenuFavourites,
		flow.ActionMenuSettings:     b.handleMenuSettings,
		flow.ActionChangeCity:       b.handleChangeCity,
		flow.ActionViewListing:      b.handleViewListing,
		flow.ActionFavourite:        b.favouriteHandler(true),
		flow.ActionUnfavourite:      b.favouriteHandler(false),
		flow.ActionReport:           b.handleReport,
		flow.ActionCreateListing:    b.handleCreateListing,
		flow.ActionEditListings:     b.handleEditListings,
		flow.ActionEditListing:      b.handleEditListing,
		flow.ActionEditPhotos:       b.editFieldHandler(flow.StepPhotos),
		flow.ActionEditPrice:        b.editFieldHandler(flow.StepPrice),
		flow.ActionEditCategoryDesc: b.editFieldHandler(flow.StepCategory),
		flow.ActionStartChat:        b.handleOpenChat,
		flow.ActionOpenChat:         b.handleOpenChat,
		flow.ActionApprove:          b.moderationHandler((*moderation.Gate).Approve, "Лот одобрен."),
		flow.ActionDeny:             b.moderationHandler((*moderation.Gate).Deny, "Лот отклонён."),
	}
	states := map[flow.State]flow.HandlerFunc{
		{Flow: flow.FlowRegistration, Step: flow.StepCity}:          b.handleRegistrationCity,
		{Flow: flow.FlowRegistration, Step: flow.StepMicrodistrict}: b.handleRegistrationMicrodistrict,
		{Flow: flow.FlowLocation, Step: flow.StepCity}:              b.handleLocationCity,
		{Flow: flow.FlowLocation, Step: flow.StepMicrodistrict}:     b.handleLocationMicrodistrict,
		{Flow: flow.FlowSearch, Step: flow.StepFilters}:             b.handleSearchFilters,
		{Flow: flow.FlowSearch, Step: flow.StepCategory}:            b.handleSearchCategory,
		{Flow: flow.FlowSearch, Step: flow.StepCondition}:           b.handleSearchCondition,
		{Flow: flow.FlowSearch, Step: flow.StepQuery}:               b.handleSearchQuery,
		{Flow: flow.FlowCreate, Step: flow.StepPhotos}:              b.handleCreatePhotos,
		{Flow: flow.FlowCreate, Step: flow.StepCategory}:            b.handleCreateCategory,
		{Flow: flow.FlowCreate, Step: flow.StepCondition}:           b.handleCreateCondition,
		{Flow: flow.FlowCreate, Step: flow.StepPrice}:               b.handleCreatePrice,
		{Flow: flow.FlowCreate, Step: flow.StepTitle}:               b.handleCreateTitle,
		{Flow: flow.FlowCreate, Step: flow.StepDescription}:         b.handleCreateDescription,
		{Flow: flow.FlowEdit, Step: flow.StepPhotos}:                b.handleEditPhotos,
		{Flow: flow.FlowEdit, Step: flow.StepPrice}:                 b.handleEditPrice,
		{Flow: flow.FlowEdit, Step: flow.StepCategory}:              b.handleEditCategory,
		{Flow: flow.FlowEdit, Step: flow.StepDescription}:           b.handleEditDescription,
		{Flow: flow.FlowChat, Step: flow.StepActive}:                b.handleChatActive,
	}

	for cmd, h := range commands {
		if err := e.HandleCommand(cmd, h); err != nil {
			return err
		}
	}
	for name, h := range actions {
		if err := e.HandleAction(name, h); err != nil {
			return err
		}
	}
	for state, h := range states {
		if err := e.Handle(state, h); err != nil {
			return err
		}
	}
	e.Root(b.handleRoot)
	e.Fallback(b.handleStale)
	return nil
}

// handleRoot is the idle-state default: open the main menu.
func (b *Bot) handleRoot(ctx context.Context, sess *flow.Session, _ flow.Event) error {
	return b.showMainMenu(ctx, sess.User)
}

// handleStale re-renders the current surface unchanged; presses from a
// superseded keyboard go nowhere.
func (b *Bot) handleStale(ctx context.Context, sess *flow.Session, _ flow.Event) error {
	return b.Renderer.Refresh(ctx, sess.User)
}

func (b *Bot) handleStart(ctx context.Context, sess *flow.Session, ev flow.Event) error {
	sess.End()
	_, err := b.Users.ByID(ctx, sess.User)
	switch {
	case err == nil:
		return b.showMainMenu(ctx, sess.User)
	case errors.Is(err, user.ErrNotFound):
		sess.Begin(flow.FlowRegistration, flow.StepCity)
		return b.prompt(ctx, sess.User, "Добро пожаловать в барахолку! Пожалуйста, укажите ваш город.")
	default:
		return b.fail(ctx, sess.User, err)
	}
}

func (b *Bot) handleBack(ctx context.Context, sess *flow.Session, _ flow.Event) error {
	sess.End()
	return b.showMainMenu(ctx, sess.User)
}

func (b *Bot) muteHandler(muted bool) flow.HandlerFunc {
	return func(ctx context.Context, sess *flow.Session, _ flow.Event) error {
		u, err := b.Users.ByID(ctx, sess.User)
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				return b.Sink.Notify(ctx, sess.User, "Сначала зарегистрируйтесь: /start")
			}
			return b.fail(ctx, sess.User, err)
		}
		u.SetMuted(muted, b.now())
		if err := b.Users.Save(ctx, u); err != nil {
			return b.fail(ctx, sess.User, err)
		}
		text := "Уведомления от бота включены."
		if muted {
			text = "Уведомления от бота выключены. Используйте /unmute, чтобы включить."
		}
		return b.Sink.Notify(ctx, sess.User, text)
	}
}

// prompt renders a plain text step prompt with only a back button.
func (b *Bot) prompt(ctx context.Context, to user.ID, text string) error {
	_, err := b.Renderer.Render(ctx, to, session.View{
		Text:     text,
		Keyboard: transport.Keyboard{backRow()},
	})
	return err
}

// fail surfaces a store-level error as a generic failure. The flow
// context is left as it was: the user re-issues the action.
func (b *Bot) fail(ctx context.Context, to user.ID, err error) error {
	if b.Logger != nil {
		b.Logger.Error("operation failed", "user", to, "error", err)
	}
	return b.Sink.Notify(ctx, to, "Произошла ошибка. Попробуйте ещё раз.")
}

// notFound reports a missing listing or chat and routes back to the
// main menu with a cleared context.
func (b *Bot) notFound(ctx context.Context, sess *flow.Session, what string) error {
	sess.End()
	if err := b.Sink.Notify(ctx, sess.User, what); err != nil && b.Logger != nil {
		b.Logger.Warn("not-found notification failed", "user", sess.User, "error", err)
	}
	return b.showMainMenu(ctx, sess.User)
}

func (b *Bot) now() time.Time {
	if b.Clock != nil {
		return b.Clock().UTC()
	}
	return time.Now().UTC()
}

func backRow() []transport.Button {
	return transport.Row(transport.Button{Label: "⬅️ Назад", Action: flow.Action{Name: flow.ActionBack}})
}
