// Package moderation holds the admin-only approve/deny transition on
// listings and the notifications around it.
package moderation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"baraholka/internal/domain/listing"
	"baraholka/internal/domain/user"
	"baraholka/internal/flow"
	"baraholka/internal/transport"
)

// ErrPermission is the signal returned to any non-admin actor; the
// listing status is left untouched.
var ErrPermission = errors.New("moderation: admin identity required")

// EventPublisher emits moderation outcomes; failures are logged by the
// publisher, never propagated.
type EventPublisher interface {
	ListingSubmitted(ctx context.Context, l listing.Listing)
	ListingModerated(ctx context.Context, l listing.Listing)
}

// Gate owns the pending → approved|denied transitions. Exactly one
// admin identity may execute them.
type Gate struct {
	Admin    user.ID
	Listings listing.Repository
	Sink     transport.Sink
	Events   EventPublisher
	Logger   *slog.Logger
	Clock    func() time.Time
}

// SubmitForReview notifies the admin about a listing awaiting
// moderation. Called on creation and after every owner edit.
func (g *Gate) SubmitForReview(ctx context.Context, l *listing.Listing) {
	if g.Events != nil {
		g.Events.ListingSubmitted(ctx, *l)
	}
	if g.Admin == 0 {
		return
	}
	text := fmt.Sprintf(
		"Заявка на модерацию:\nID лота: %s\nПродавец: %d\nНазвание: %s\nКатегория: %s\nЦена: %d₽",
		l.ID, l.Owner, l.Title, l.Category, l.Price,
	)
	kb := transport.Keyboard{transport.Row(
		transport.Button{Label: "✅ Принять", Action: flow.Action{Name: flow.ActionApprove, Listing: l.ID}},
		transport.Button{Label: "❌ Отклонить", Action: flow.Action{Name: flow.ActionDeny, Listing: l.ID}},
	)}
	if _, err := g.Sink.Send(ctx, g.Admin, text, kb); err != nil && g.Logger != nil {
		g.Logger.Warn("admin review notification failed", "listing", l.ID, "error", err)
	}
}

// Approve publishes the listing. Only the admin identity may call it.
func (g *Gate) Approve(ctx context.Context, actor user.ID, id listing.ID) (*listing.Listing, error) {
	return g.transition(ctx, actor, id, (*listing.Listing).Approve,
		"Ваш лот «%s» принят и опубликован!")
}

// Deny rejects the listing. Only the admin identity may call it.
func (g *Gate) Deny(ctx context.Context, actor user.ID, id listing.ID) (*listing.Listing, error) {
	return g.transition(ctx, actor, id, (*listing.Listing).Deny,
		"Ваш лот «%s» отклонён. Пожалуйста, проверьте правила размещения.")
}

// Pending lists listings awaiting moderation, admin-only.
func (g *Gate) Pending(ctx context.Context, actor user.ID, offset, limit int) ([]*listing.Listing, error) {
	if actor != g.Admin {
		return nil, ErrPermission
	}
	return g.Listings.Pending(ctx, offset, limit)
}

// Report forwards a complaint about a listing to the admin.
func (g *Gate) Report(ctx context.Context, reporter user.ID, id listing.ID) error {
	l, err := g.Listings.ByID(ctx, id)
	if err != nil {
		return err
	}
	text := fmt.Sprintf(
		"Поступила жалоба на лот %s от пользователя %d.\nНазвание: %s\nКатегория: %s\nЦена: %d₽\nОписание: %s\nПродавец: %d",
		l.ID, reporter, l.Title, l.Category, l.Price, l.Description, l.Owner,
	)
	return g.Sink.Notify(ctx, g.Admin, text)
}

func (g *Gate) transition(ctx context.Context, actor user.ID, id listing.ID, apply func(*listing.Listing, time.Time) error, ownerText string) (*listing.Listing, error) {
	if actor != g.Admin {
		return nil, ErrPermission
	}
	l, err := g.Listings.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(l, g.now()); err != nil {
		return nil, err
	}
	if err := g.Listings.Save(ctx, l); err != nil {
		return nil, err
	}
	if g.Events != nil {
		g.Events.ListingModerated(ctx, *l)
	}
	if err := g.Sink.Notify(ctx, l.Owner, fmt.Sprintf(ownerText, l.Title)); err != nil && g.Logger != nil {
		g.Logger.Warn("owner moderation notification failed", "listing", l.ID, "owner", l.Owner, "error", err)
	}
	return l, nil
}

func (g *Gate) now() time.Time {
	if g.Clock != nil {
		return g.Clock().UTC()
	}
	return time.Now().UTC()
}
