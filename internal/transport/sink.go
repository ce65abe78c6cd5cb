// Package transport defines the outward delivery boundary: everything
// the core needs from the messaging transport, without knowing how
// surfaces are delivered.
package transport

import (
	"context"
	"errors"

	"baraholka/internal/domain/user"
	"baraholka/internal/flow"
)

// ErrEditFailed signals the target surface is stale, missing or not
// editable; callers are expected to fall back to a fresh send.
var ErrEditFailed = errors.New("transport: surface edit failed")

// SurfaceID identifies one delivered UI message.
type SurfaceID string

// Button is one keyboard entry with its structured action payload.
type Button struct {
	Label  string
	Action flow.Action
}

// Keyboard is rendered as rows of buttons under a surface.
type Keyboard [][]Button

// Media references one photo by its stored ref.
type Media struct {
	Ref     string
	Caption string
}

// Sink delivers UI surfaces and out-of-band notifications.
type Sink interface {
	Send(ctx context.Context, to user.ID, text string, kb Keyboard) (SurfaceID, error)
	Edit(ctx context.Context, to user.ID, id SurfaceID, text string, kb Keyboard) error
	Delete(ctx context.Context, to user.ID, id SurfaceID) error
	SendMediaGroup(ctx context.Context, to user.ID, media []Media) (SurfaceID, error)
	Notify(ctx context.Context, to user.ID, text string) error
}

// Row is a keyboard row construction helper.
func Row(buttons ...Button) []Button { return buttons }
