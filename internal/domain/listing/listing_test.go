package listing

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validParams(now time.Time) CreateParams {
	return CreateParams{
		ID:        "lst-1",
		Owner:     100,
		City:      "Москва",
		Category:  "Электроника",
		Condition: "Новое",
		Title:     "Телефон",
		Price:     15000,
		Photos:    []string{"a", "b"},
		Now:       now,
	}
}

func TestNew(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	l, err := New(validParams(now))
	require.NoError(t, err)
	assert.Equal(t, StatusPending, l.Status)
	assert.Equal(t, "Электроника", l.Category)
	assert.Equal(t, now, l.CreatedAt)
	assert.Equal(t, []string{"a", "b"}, l.Photos)
}

func TestNewValidation(t *testing.T) {
	now := time.Now()

	params := validParams(now)
	params.ID = ""
	_, err := New(params)
	assert.ErrorIs(t, err, ErrIDRequired)

	params = validParams(now)
	params.Owner = 0
	_, err = New(params)
	assert.ErrorIs(t, err, ErrOwnerRequired)

	params = validParams(now)
	params.Category = "еда"
	_, err = New(params)
	assert.ErrorIs(t, err, ErrUnknownCategory)

	params = validParams(now)
	params.Condition = "новое"
	_, err = New(params)
	assert.ErrorIs(t, err, ErrUnknownCondition)

	params = validParams(now)
	params.Photos = []string{"a", "b", "c", "d"}
	_, err = New(params)
	assert.ErrorIs(t, err, ErrTooManyPhotos)

	params = validParams(now)
	params.Price = -1
	_, err = New(params)
	assert.ErrorIs(t, err, ErrNegativePrice)
}

func TestNewTruncatesText(t *testing.T) {
	params := validParams(time.Now())
	params.Title = strings.Repeat("а", MaxTitleLen+10)
	params.Description = strings.Repeat("б", MaxDescriptionLen+1)
	l, err := New(params)
	require.NoError(t, err)
	assert.Len(t, []rune(l.Title), MaxTitleLen)
	assert.Len(t, []rune(l.Description), MaxDescriptionLen)
}

func TestEditsResetStatus(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	l, err := New(validParams(now))
	require.NoError(t, err)
	require.NoError(t, l.Approve(now.Add(time.Minute)))
	require.Equal(t, StatusApproved, l.Status)

	require.NoError(t, l.SetPrice(9000, now.Add(2*time.Minute)))
	assert.Equal(t, StatusPending, l.Status, "price edit returns the listing to moderation")

	require.NoError(t, l.Approve(now.Add(3*time.Minute)))
	require.NoError(t, l.SetCategoryAndDescription("Транспорт", "описание", now.Add(4*time.Minute)))
	assert.Equal(t, StatusPending, l.Status)
	assert.Equal(t, "Транспорт", l.Category)

	require.NoError(t, l.Approve(now.Add(5*time.Minute)))
	require.NoError(t, l.ReplacePhotos([]string{"x"}, now.Add(6*time.Minute)))
	assert.Equal(t, StatusPending, l.Status)
	assert.Equal(t, []string{"x"}, l.Photos)
}

func TestReplacePhotosCap(t *testing.T) {
	l, err := New(validParams(time.Now()))
	require.NoError(t, err)
	assert.ErrorIs(t, l.ReplacePhotos([]string{"1", "2", "3", "4"}, time.Now()), ErrTooManyPhotos)
}

func TestModerationTransitions(t *testing.T) {
	now := time.Now().UTC()
	l, err := New(validParams(now))
	require.NoError(t, err)

	require.NoError(t, l.Approve(now))
	assert.ErrorIs(t, l.Approve(now), ErrInvalidState, "approve requires pending")
	assert.ErrorIs(t, l.Deny(now), ErrInvalidState, "deny requires pending")

	l.Resubmit(now)
	require.Equal(t, StatusPending, l.Status)
	require.NoError(t, l.Deny(now))
	assert.Equal(t, StatusDenied, l.Status)
}
