package listing

import (
	"context"
	"errors"
	"strings"
	"time"

	"baraholka/internal/domain/user"
)

var (
	ErrIDRequired       = errors.New("listing: id is required")
	ErrOwnerRequired    = errors.New("listing: owner is required")
	ErrCityRequired     = errors.New("listing: city is required")
	ErrUnknownCategory  = errors.New("listing: unknown category")
	ErrUnknownCondition = errors.New("listing: unknown condition")
	ErrTooManyPhotos    = errors.New("listing: at most 3 photos allowed")
	ErrNegativePrice    = errors.New("listing: price must be non-negative")
	ErrInvalidState     = errors.New("listing: invalid status transition")
	ErrNotFound         = errors.New("listing: not found")
)

type ID string

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusDenied   Status = "denied"
)

// MaxPhotos caps the ordered photo list on a listing.
const MaxPhotos = 3

const (
	MaxTitleLen       = 80
	MaxDescriptionLen = 150
)

type Listing struct {
	ID            ID
	Owner         user.ID
	City          string
	Microdistrict string
	Category      string
	Condition     string
	Title         string
	Description   string
	Price         int64
	Status        Status
	Photos        []string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*Listing, error)
	Save(ctx context.Context, listing *Listing) error
	ByOwner(ctx context.Context, owner user.ID, offset, limit int) ([]*Listing, error)
	Pending(ctx context.Context, offset, limit int) ([]*Listing, error)
	Search(ctx context.Context, params SearchParams) ([]*Listing, error)
}

// FavouriteRepository stores unique (user, listing) pairs. Add is
// idempotent: repeating it for the same pair keeps a single record.
type FavouriteRepository interface {
	Add(ctx context.Context, userID user.ID, listingID ID) error
	Remove(ctx context.Context, userID user.ID, listingID ID) error
	Has(ctx context.Context, userID user.ID, listingID ID) (bool, error)
	ListByUser(ctx context.Context, userID user.ID, offset, limit int) ([]ID, error)
}

type CreateParams struct {
	ID            ID
	Owner         user.ID
	City          string
	Microdistrict string
	Category      string
	Condition     string
	Title         string
	Description   string
	Price         int64
	Photos        []string
	Now           time.Time
}

// New builds a pending listing. Title and description are truncated to
// their caps rather than rejected; the photo cap is a hard error.
func New(params CreateParams) (*Listing, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, ErrIDRequired
	}
	if params.Owner == 0 {
		return nil, ErrOwnerRequired
	}
	city := strings.TrimSpace(params.City)
	if city == "" {
		return nil, ErrCityRequired
	}
	category, ok := MatchCategory(params.Category)
	if !ok {
		return nil, ErrUnknownCategory
	}
	condition, ok := MatchCondition(params.Condition)
	if !ok {
		return nil, ErrUnknownCondition
	}
	if params.Price < 0 {
		return nil, ErrNegativePrice
	}
	if len(params.Photos) > MaxPhotos {
		return nil, ErrTooManyPhotos
	}
	now := params.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()

	return &Listing{
		ID:            params.ID,
		Owner:         params.Owner,
		City:          city,
		Microdistrict: strings.TrimSpace(params.Microdistrict),
		Category:      category,
		Condition:     condition,
		Title:         Truncate(params.Title, MaxTitleLen),
		Description:   Truncate(params.Description, MaxDescriptionLen),
		Price:         params.Price,
		Status:        StatusPending,
		Photos:        append([]string(nil), params.Photos...),
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// SetPrice updates the price and returns the listing to moderation.
func (l *Listing) SetPrice(price int64, now time.Time) error {
	if price < 0 {
		return ErrNegativePrice
	}
	l.Price = price
	l.resubmit(now)
	return nil
}

// SetCategoryAndDescription updates the paired category+description edit
// target and returns the listing to moderation.
func (l *Listing) SetCategoryAndDescription(category, description string, now time.Time) error {
	matched, ok := MatchCategory(category)
	if !ok {
		return ErrUnknownCategory
	}
	l.Category = matched
	l.Description = Truncate(description, MaxDescriptionLen)
	l.resubmit(now)
	return nil
}

// ReplacePhotos swaps the photo set wholesale and returns the listing to
// moderation.
func (l *Listing) ReplacePhotos(photos []string, now time.Time) error {
	if len(photos) > MaxPhotos {
		return ErrTooManyPhotos
	}
	l.Photos = append([]string(nil), photos...)
	l.resubmit(now)
	return nil
}

// Approve transitions pending → approved.
func (l *Listing) Approve(now time.Time) error {
	if l.Status != StatusPending {
		return ErrInvalidState
	}
	l.Status = StatusApproved
	l.touch(now)
	return nil
}

// Deny transitions pending → denied.
func (l *Listing) Deny(now time.Time) error {
	if l.Status != StatusPending {
		return ErrInvalidState
	}
	l.Status = StatusDenied
	l.touch(now)
	return nil
}

// Resubmit drops any prior moderation outcome without changing fields.
// Used when an edit round finishes with the field left as-is.
func (l *Listing) Resubmit(now time.Time) {
	l.resubmit(now)
}

// resubmit drops any prior moderation outcome: every successful owner
// edit sends the listing back through the gate.
func (l *Listing) resubmit(now time.Time) {
	l.Status = StatusPending
	l.touch(now)
}

func (l *Listing) touch(now time.Time) {
	if now.IsZero() {
		now = time.Now()
	}
	l.UpdatedAt = now.UTC()
}
