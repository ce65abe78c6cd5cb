// Package session keeps exactly one live control surface per user and
// updates it in place instead of accumulating messages.
package session

import (
	"context"
	"log/slog"
	"sync"

	"baraholka/internal/domain/user"
	"baraholka/internal/transport"
)

// View is the content of one control surface.
type View struct {
	Text     string
	Keyboard transport.Keyboard
}

type surface struct {
	id   transport.SurfaceID
	view View
}

// Renderer tracks the last rendered surface per user. Renders edit it
// in place; a failed edit falls back to a fresh send and re-anchors
// tracking, so the user never collects more than one control surface.
type Renderer struct {
	sink   transport.Sink
	logger *slog.Logger

	mu       sync.Mutex
	surfaces map[user.ID]*surface
}

func NewRenderer(sink transport.Sink, logger *slog.Logger) *Renderer {
	return &Renderer{
		sink:     sink,
		logger:   logger,
		surfaces: make(map[user.ID]*surface),
	}
}

// Render shows the view on the user's live surface.
func (r *Renderer) Render(ctx context.Context, to user.ID, view View) (transport.SurfaceID, error) {
	r.mu.Lock()
	current := r.surfaces[to]
	r.mu.Unlock()

	if current != nil {
		if err := r.sink.Edit(ctx, to, current.id, view.Text, view.Keyboard); err == nil {
			r.track(to, current.id, view)
			return current.id, nil
		} else if r.logger != nil {
			r.logger.Warn("surface edit failed, sending fresh", "user", to, "surface", current.id, "error", err)
		}
	}

	id, err := r.sink.Send(ctx, to, view.Text, view.Keyboard)
	if err != nil {
		return "", err
	}
	r.track(to, id, view)
	return id, nil
}

// RenderComposite shows media-bearing content: the previous surface is
// torn down, a media group goes out, and a fresh control surface is
// sent and becomes the tracked one.
func (r *Renderer) RenderComposite(ctx context.Context, to user.ID, media []transport.Media, view View) (transport.SurfaceID, error) {
	r.mu.Lock()
	current := r.surfaces[to]
	delete(r.surfaces, to)
	r.mu.Unlock()

	if current != nil {
		if err := r.sink.Delete(ctx, to, current.id); err != nil && r.logger != nil {
			r.logger.Warn("stale surface delete failed", "user", to, "surface", current.id, "error", err)
		}
	}
	if _, err := r.sink.SendMediaGroup(ctx, to, media); err != nil {
		return "", err
	}
	id, err := r.sink.Send(ctx, to, view.Text, view.Keyboard)
	if err != nil {
		return "", err
	}
	r.track(to, id, view)
	return id, nil
}

// Refresh re-renders the tracked surface unchanged. It is the no-op
// path for stale button presses; users without a surface are left alone.
func (r *Renderer) Refresh(ctx context.Context, to user.ID) error {
	r.mu.Lock()
	current := r.surfaces[to]
	r.mu.Unlock()
	if current == nil {
		return nil
	}
	_, err := r.Render(ctx, to, current.view)
	return err
}

func (r *Renderer) track(to user.ID, id transport.SurfaceID, view View) {
	r.mu.Lock()
	r.surfaces[to] = &surface{id: id, view: view}
	r.mu.Unlock()
}
