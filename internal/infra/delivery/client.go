// Package delivery implements the transport sink over the HTTP API of
// the downstream messaging gateway.
package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"baraholka/internal/domain/user"
	"baraholka/internal/transport"
)

// Client posts render operations to the gateway. One endpoint per
// operation, JSON in, JSON out.
type Client struct {
	HTTP     *http.Client
	Endpoint string
	Logger   *slog.Logger
}

type buttonPayload struct {
	Label  string          `json:"label"`
	Action json.RawMessage `json:"action"`
}

type sendRequest struct {
	To       int64             `json:"to"`
	Text     string            `json:"text,omitempty"`
	Keyboard [][]buttonPayload `json:"keyboard,omitempty"`
}

type editRequest struct {
	To       int64             `json:"to"`
	Surface  string            `json:"surface"`
	Text     string            `json:"text,omitempty"`
	Keyboard [][]buttonPayload `json:"keyboard,omitempty"`
}

type deleteRequest struct {
	To      int64  `json:"to"`
	Surface string `json:"surface"`
}

type mediaGroupRequest struct {
	To    int64          `json:"to"`
	Media []mediaPayload `json:"media"`
}

type mediaPayload struct {
	Ref     string `json:"ref"`
	Caption string `json:"caption,omitempty"`
}

type surfaceResponse struct {
	Surface string `json:"surface"`
}

func (c *Client) Send(ctx context.Context, to user.ID, text string, kb transport.Keyboard) (transport.SurfaceID, error) {
	req := sendRequest{To: int64(to), Text: text, Keyboard: encodeKeyboard(kb)}
	var resp surfaceResponse
	if err := c.post(ctx, "/v1/messages", req, &resp); err != nil {
		return "", err
	}
	return transport.SurfaceID(resp.Surface), nil
}

func (c *Client) Edit(ctx context.Context, to user.ID, id transport.SurfaceID, text string, kb transport.Keyboard) error {
	req := editRequest{To: int64(to), Surface: string(id), Text: text, Keyboard: encodeKeyboard(kb)}
	err := c.post(ctx, "/v1/messages/edit", req, nil)
	if err != nil {
		var se *statusError
		if errors.As(err, &se) && se.code >= http.StatusBadRequest && se.code < http.StatusInternalServerError {
			return transport.ErrEditFailed
		}
	}
	return err
}

func (c *Client) Delete(ctx context.Context, to user.ID, id transport.SurfaceID) error {
	return c.post(ctx, "/v1/messages/delete", deleteRequest{To: int64(to), Surface: string(id)}, nil)
}

func (c *Client) SendMediaGroup(ctx context.Context, to user.ID, media []transport.Media) (transport.SurfaceID, error) {
	req := mediaGroupRequest{To: int64(to)}
	for _, m := range media {
		req.Media = append(req.Media, mediaPayload{Ref: m.Ref, Caption: m.Caption})
	}
	var resp surfaceResponse
	if err := c.post(ctx, "/v1/media-groups", req, &resp); err != nil {
		return "", err
	}
	return transport.SurfaceID(resp.Surface), nil
}

func (c *Client) Notify(ctx context.Context, to user.ID, text string) error {
	return c.post(ctx, "/v1/notifications", sendRequest{To: int64(to), Text: text}, nil)
}

type statusError struct {
	code    int
	snippet string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("delivery: gateway returned status %d: %s", e.code, e.snippet)
}

func (c *Client) post(ctx context.Context, path string, payload any, out any) error {
	if c == nil || c.HTTP == nil {
		return errors.New("delivery: http client not configured")
	}
	if c.Endpoint == "" {
		return errors.New("delivery: endpoint not configured")
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	request.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(request)
	if err != nil {
		c.logError("delivery request failed", path, err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := &statusError{code: resp.StatusCode, snippet: string(snippet)}
		c.logError("delivery returned error", path, err)
		return err
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			c.logError("delivery decode failed", path, err)
			return err
		}
	}
	return nil
}

func (c *Client) logError(msg, path string, err error) {
	if c.Logger == nil {
		return
	}
	c.Logger.Error(msg, "path", path, "error", err)
}

func encodeKeyboard(kb transport.Keyboard) [][]buttonPayload {
	if len(kb) == 0 {
		return nil
	}
	out := make([][]buttonPayload, 0, len(kb))
	for _, row := range kb {
		encoded := make([]buttonPayload, 0, len(row))
		for _, b := range row {
			action, err := json.Marshal(b.Action)
			if err != nil {
				continue
			}
			encoded = append(encoded, buttonPayload{Label: b.Label, Action: action})
		}
		out = append(out, encoded)
	}
	return out
}

var _ transport.Sink = (*Client)(nil)
