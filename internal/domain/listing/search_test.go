package listing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"телефон", "чехлом"}, Tokenize("Телефон с чехлом"))
	assert.Equal(t, []string{"велосипед"}, Tokenize("велосипед, и ... да"))
	assert.Nil(t, Tokenize("и не на"), "pure stopword input yields no terms")
	assert.Nil(t, Tokenize(""))
}

func TestMatchesTerms(t *testing.T) {
	params := validParams(time.Now())
	params.Title = "Смартфон Samsung"
	params.Description = "Отличное состояние, чехол в комплекте"
	l, err := New(params)
	require.NoError(t, err)

	assert.True(t, l.MatchesTerms([]string{"смартфон"}))
	assert.True(t, l.MatchesTerms([]string{"samsung", "чехол"}), "terms match across title and description")
	assert.False(t, l.MatchesTerms([]string{"samsung", "зарядка"}), "all terms must match")
	assert.True(t, l.MatchesTerms(nil))
}

func TestSearchParamsNormalized(t *testing.T) {
	p := SearchParams{City: " Москва ", Offset: -5}.Normalized()
	assert.Equal(t, "Москва", p.City)
	assert.Equal(t, 0, p.Offset)
	assert.Equal(t, 10, p.Limit)

	p = SearchParams{Limit: 3}.Normalized()
	assert.Equal(t, 3, p.Limit)
}
