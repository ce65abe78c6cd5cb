package ginserver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"baraholka/internal/domain/user"
	"baraholka/internal/flow"
	"baraholka/internal/infra/obs"
)

// Dispatcher is the slice of the flow engine the gateway needs.
type Dispatcher interface {
	Dispatch(ctx context.Context, ev flow.Event) error
}

// EventHandler accepts inbound user interactions from the upstream
// messaging gateway and feeds them to the conversation engine.
type EventHandler struct {
	Engine Dispatcher
	Logger *slog.Logger
}

type eventRequest struct {
	User    int64        `json:"user"`
	Command string       `json:"command,omitempty"`
	Text    string       `json:"text,omitempty"`
	Photo   string       `json:"photo,omitempty"`
	Action  *flow.Action `json:"action,omitempty"`
}

func (h EventHandler) Ingest(c *gin.Context) {
	if h.Engine == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "engine unavailable"})
		return
	}
	var req eventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ev := flow.Event{
		User:    user.ID(req.User),
		Command: flow.Command(req.Command),
		Text:    req.Text,
		Photo:   req.Photo,
		Action:  req.Action,
	}
	if err := h.Engine.Dispatch(c.Request.Context(), ev); err != nil {
		if errors.Is(err, flow.ErrNoUser) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if h.Logger != nil {
			h.Logger.Error("event dispatch failed",
				"user", req.User,
				"request_id", obs.RequestIDFromContext(c.Request.Context()),
				"error", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "dispatch failed"})
		return
	}
	c.Status(http.StatusAccepted)
}

var _ EventHTTP = EventHandler{}
