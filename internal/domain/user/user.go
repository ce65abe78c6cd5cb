package user

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"
)

var (
	ErrIDRequired   = errors.New("user: id is required")
	ErrInvalidCity  = errors.New("user: city must be 2-50 cyrillic letters, spaces or hyphens")
	ErrInvalidMicro = errors.New("user: microdistrict must be 2-50 cyrillic letters, digits, spaces or hyphens")
	ErrNotFound     = errors.New("user: not found")
)

// ID is the external numeric identity assigned by the transport.
type ID int64

var (
	cityPattern  = regexp.MustCompile(`^[А-Яа-яЁё\s\-]{2,50}$`)
	microPattern = regexp.MustCompile(`^[А-Яа-яЁё0-9\s\-]{2,50}$`)
)

// ValidCity reports whether the input is an acceptable city name.
func ValidCity(city string) bool {
	return cityPattern.MatchString(strings.TrimSpace(city))
}

// ValidMicrodistrict reports whether the input is an acceptable microdistrict name.
func ValidMicrodistrict(micro string) bool {
	return microPattern.MatchString(strings.TrimSpace(micro))
}

type User struct {
	ID            ID
	City          string
	Microdistrict string
	Muted         bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*User, error)
	Save(ctx context.Context, user *User) error
}

type CreateParams struct {
	ID            ID
	City          string
	Microdistrict string
	Now           time.Time
}

func New(params CreateParams) (*User, error) {
	if params.ID == 0 {
		return nil, ErrIDRequired
	}
	city := strings.TrimSpace(params.City)
	if !ValidCity(city) {
		return nil, ErrInvalidCity
	}
	micro := strings.TrimSpace(params.Microdistrict)
	if micro != "" && !ValidMicrodistrict(micro) {
		return nil, ErrInvalidMicro
	}
	now := params.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()
	return &User{
		ID:            params.ID,
		City:          city,
		Microdistrict: micro,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// SetLocation replaces the stored city and microdistrict. An empty
// microdistrict clears the previous value.
func (u *User) SetLocation(city, microdistrict string, now time.Time) error {
	city = strings.TrimSpace(city)
	if !ValidCity(city) {
		return ErrInvalidCity
	}
	micro := strings.TrimSpace(microdistrict)
	if micro != "" && !ValidMicrodistrict(micro) {
		return ErrInvalidMicro
	}
	u.City = city
	u.Microdistrict = micro
	u.touch(now)
	return nil
}

func (u *User) SetMuted(muted bool, now time.Time) {
	u.Muted = muted
	u.touch(now)
}

func (u *User) touch(now time.Time) {
	if now.IsZero() {
		now = time.Now()
	}
	u.UpdatedAt = now.UTC()
}
