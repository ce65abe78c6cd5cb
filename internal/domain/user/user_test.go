package user

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidCity(t *testing.T) {
	assert.True(t, ValidCity("Москва"))
	assert.True(t, ValidCity("Нижний Новгород"))
	assert.True(t, ValidCity("Ростов-на-Дону"))
	assert.True(t, ValidCity("  Казань  "))

	assert.False(t, ValidCity("Moscow"))
	assert.False(t, ValidCity("М"))
	assert.False(t, ValidCity(""))
	assert.False(t, ValidCity("Москва1"))
}

func TestValidMicrodistrict(t *testing.T) {
	assert.True(t, ValidMicrodistrict("Северный 3"))
	assert.True(t, ValidMicrodistrict("Академгородок"))

	assert.False(t, ValidMicrodistrict("North"))
	assert.False(t, ValidMicrodistrict("5"))
}

func TestNew(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	u, err := New(CreateParams{ID: 42, City: " Москва ", Microdistrict: "Южный 2", Now: now})
	require.NoError(t, err)
	assert.Equal(t, ID(42), u.ID)
	assert.Equal(t, "Москва", u.City)
	assert.Equal(t, "Южный 2", u.Microdistrict)
	assert.False(t, u.Muted)
	assert.Equal(t, now, u.CreatedAt)

	_, err = New(CreateParams{City: "Москва"})
	assert.ErrorIs(t, err, ErrIDRequired)

	_, err = New(CreateParams{ID: 1, City: "NYC"})
	assert.ErrorIs(t, err, ErrInvalidCity)

	_, err = New(CreateParams{ID: 1, City: "Москва", Microdistrict: "West"})
	assert.ErrorIs(t, err, ErrInvalidMicro)
}

func TestNewMicrodistrictOptional(t *testing.T) {
	u, err := New(CreateParams{ID: 7, City: "Тверь"})
	require.NoError(t, err)
	assert.Empty(t, u.Microdistrict)
}

func TestSetLocation(t *testing.T) {
	u, err := New(CreateParams{ID: 9, City: "Москва", Microdistrict: "Северный"})
	require.NoError(t, err)

	later := u.CreatedAt.Add(time.Hour)
	require.NoError(t, u.SetLocation("Казань", "", later))
	assert.Equal(t, "Казань", u.City)
	assert.Empty(t, u.Microdistrict, "empty microdistrict clears the previous value")
	assert.Equal(t, later, u.UpdatedAt)

	assert.ErrorIs(t, u.SetLocation("Kazan", "", later), ErrInvalidCity)
	assert.Equal(t, "Казань", u.City, "failed update leaves the user unchanged")
}

func TestSetMuted(t *testing.T) {
	u, err := New(CreateParams{ID: 5, City: "Омск"})
	require.NoError(t, err)

	u.SetMuted(true, time.Time{})
	assert.True(t, u.Muted)
	u.SetMuted(false, time.Time{})
	assert.False(t, u.Muted)
}
