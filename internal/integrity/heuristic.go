// Package integrity finds program rows whose text was mangled by a bad
// character-set conversion and overwrites them with fixed placeholders. It
// does not try to decode the damaged text.
package integrity

import (
	"fmt"
	"regexp"

	"policymatcher/internal/models"
)

const (
	FallbackGenre       = "기타"
	RepairedDescription = "데이터 인코딩 오류로 인해 자동 복구된 항목입니다."
	RepairedPeriod      = "확인 필요"

	ReasonTitle       = "title"
	ReasonDescription = "description"
	ReasonCategory    = "category"
)

var readable = regexp.MustCompile(`[가-힣a-zA-Z0-9]`)

// IsValidText reports whether s is empty or carries at least one Hangul
// syllable, ASCII letter or digit.
func IsValidText(s string) bool {
	return s == "" || readable.MatchString(s)
}

// Classify reports whether p is broken and which field gave it away. Title is
// checked first, then description, then category.
func Classify(p models.Program) (bool, string) {
	switch {
	case !IsValidText(p.Title):
		return true, ReasonTitle
	case !IsValidText(p.Description):
		return true, ReasonDescription
	case !IsValidText(p.Category):
		return true, ReasonCategory
	}
	return false, ""
}

// SafeGenre keeps the category when it is readable and falls back otherwise.
func SafeGenre(category string) string {
	if category != "" && IsValidText(category) {
		return category
	}
	return FallbackGenre
}

// Repair returns the placeholder rewrite for p. The result always classifies
// as valid.
func Repair(p models.Program) models.ProgramRepair {
	genre := SafeGenre(p.Category)
	return models.ProgramRepair{
		ID:          p.ID,
		Title:       fmt.Sprintf("[자동복구] %s 정책 %d", genre, p.ID),
		Description: RepairedDescription,
		Category:    genre,
		Period:      RepairedPeriod,
	}
}
