package ginserver

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	gin "github.com/gin-gonic/gin"

	"baraholka/internal/app/moderation"
	"baraholka/internal/domain/listing"
	"baraholka/internal/domain/user"
)

// AdminHandler is the REST moderation surface. Requests that pass the
// bearer token check act as the configured admin identity.
type AdminHandler struct {
	Gate  *moderation.Gate
	Admin user.ID
}

type listingResponse struct {
	ID          string   `json:"id"`
	Owner       int64    `json:"owner"`
	City        string   `json:"city"`
	Category    string   `json:"category"`
	Condition   string   `json:"condition"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       int64    `json:"price"`
	Status      string   `json:"status"`
	Photos      []string `json:"photos,omitempty"`
}

func toListingResponse(l *listing.Listing) listingResponse {
	return listingResponse{
		ID:          string(l.ID),
		Owner:       int64(l.Owner),
		City:        l.City,
		Category:    l.Category,
		Condition:   l.Condition,
		Title:       l.Title,
		Description: l.Description,
		Price:       l.Price,
		Status:      string(l.Status),
		Photos:      l.Photos,
	}
}

func (h AdminHandler) Pending(c *gin.Context) {
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	items, err := h.Gate.Pending(c.Request.Context(), h.Admin, offset, limit)
	if err != nil {
		writeModerationError(c, err)
		return
	}
	out := make([]listingResponse, 0, len(items))
	for _, l := range items {
		out = append(out, toListingResponse(l))
	}
	c.JSON(http.StatusOK, gin.H{"items": out})
}

func (h AdminHandler) Approve(c *gin.Context) {
	h.transition(c, h.Gate.Approve)
}

func (h AdminHandler) Deny(c *gin.Context) {
	h.transition(c, h.Gate.Deny)
}

func (h AdminHandler) transition(c *gin.Context, apply func(ctx context.Context, actor user.ID, id listing.ID) (*listing.Listing, error)) {
	id := listing.ID(c.Param("id"))
	l, err := apply(c.Request.Context(), h.Admin, id)
	if err != nil {
		writeModerationError(c, err)
		return
	}
	c.JSON(http.StatusOK, toListingResponse(l))
}

func writeModerationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, moderation.ErrPermission):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, listing.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, listing.ErrInvalidState):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

var _ AdminHTTP = AdminHandler{}
