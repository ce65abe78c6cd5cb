package listing

import (
	"regexp"
	"strings"
)

// Categories is the fixed top-level vocabulary for listings.
var Categories = []string{
	"Личные вещи",
	"Транспорт",
	"Работа",
	"Для дома и дачи",
	"Недвижимость",
	"Предложение услуг",
	"Хобби и отдых",
	"Электроника",
}

// Conditions is the fixed item-condition vocabulary.
var Conditions = []string{"Новое", "Б/у"}

// MatchCategory resolves free-text input against the category vocabulary
// with a case-insensitive substring match; the first match wins.
func MatchCategory(input string) (string, bool) {
	needle := strings.ToLower(strings.TrimSpace(input))
	if needle == "" {
		return "", false
	}
	for _, category := range Categories {
		if strings.Contains(strings.ToLower(category), needle) {
			return category, true
		}
	}
	return "", false
}

// MatchCondition requires an exact vocabulary entry.
func MatchCondition(input string) (string, bool) {
	trimmed := strings.TrimSpace(input)
	for _, condition := range Conditions {
		if trimmed == condition {
			return condition, true
		}
	}
	return "", false
}

var nonDigits = regexp.MustCompile(`\D`)

// ParsePrice extracts digits from free text. Input without digits yields
// zero, not an error.
func ParsePrice(text string) int64 {
	digits := nonDigits.ReplaceAllString(text, "")
	if digits == "" {
		return 0
	}
	var price int64
	for _, r := range digits {
		price = price*10 + int64(r-'0')
		if price < 0 {
			// overflow; clamp rather than wrap
			return 0
		}
	}
	return price
}

// Truncate bounds free-text input by rune count.
func Truncate(text string, max int) string {
	trimmed := strings.TrimSpace(text)
	runes := []rune(trimmed)
	if len(runes) <= max {
		return trimmed
	}
	return string(runes[:max])
}
