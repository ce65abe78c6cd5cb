package listing

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchCategory(t *testing.T) {
	got, ok := MatchCategory("электроника")
	assert.True(t, ok)
	assert.Equal(t, "Электроника", got)

	got, ok = MatchCategory("  ТРАНСПОРТ ")
	assert.True(t, ok)
	assert.Equal(t, "Транспорт", got)

	// Substring input resolves to the full vocabulary entry.
	got, ok = MatchCategory("дом")
	assert.True(t, ok)
	assert.Equal(t, "Для дома и дачи", got)

	_, ok = MatchCategory("еда")
	assert.False(t, ok)
	_, ok = MatchCategory("")
	assert.False(t, ok)
	_, ok = MatchCategory("   ")
	assert.False(t, ok)
}

func TestMatchCondition(t *testing.T) {
	got, ok := MatchCondition(" Новое ")
	assert.True(t, ok)
	assert.Equal(t, "Новое", got)

	got, ok = MatchCondition("Б/у")
	assert.True(t, ok)
	assert.Equal(t, "Б/у", got)

	_, ok = MatchCondition("новое")
	assert.False(t, ok, "condition match is exact, not case-folded")
	_, ok = MatchCondition("бу")
	assert.False(t, ok)
}

func TestParsePrice(t *testing.T) {
	assert.Equal(t, int64(15000), ParsePrice("15000"))
	assert.Equal(t, int64(15000), ParsePrice("15 000 руб."))
	assert.Equal(t, int64(1500), ParsePrice("примерно 1.500"))
	assert.Equal(t, int64(0), ParsePrice("договорная"))
	assert.Equal(t, int64(0), ParsePrice(""))
	assert.Equal(t, int64(0), ParsePrice(strings.Repeat("9", 30)), "overflow clamps to zero")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "абв", Truncate("  абв  ", 10))
	assert.Equal(t, "абв", Truncate("абвгд", 3), "cut at rune boundary, not byte")
	assert.Equal(t, "", Truncate("   ", 5))
}
