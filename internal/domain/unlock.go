package domain

import "strings"

// MinNameLength is the shortest accepted display name after trimming.
const MinNameLength = 2

// IsUnlocked is the single gate rule for categories, levels and avatars.
func IsUnlocked(totalPoints, requiredPoints int) bool {
	return totalPoints >= requiredPoints
}

// NormalizeName trims a display name and enforces MinNameLength.
func NormalizeName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if len([]rune(trimmed)) < MinNameLength {
		return "", ErrNameTooShort
	}
	return trimmed, nil
}

// LevelUnlocked applies the in-category sequencing rule: level 0 follows the
// category gate, every later level needs a passing result on the previous one.
func LevelUnlocked(category Category, index int, totalPoints int, results map[string]QuizResult) bool {
	if index < 0 || index >= len(category.Quizzes) {
		return false
	}
	if !IsUnlocked(totalPoints, category.RequiredPoints) {
		return false
	}
	if index == 0 {
		return true
	}
	prev, ok := results[category.Quizzes[index-1].ID]
	return ok && prev.Passed()
}
