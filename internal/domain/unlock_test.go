package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"quiz-progress-service/internal/domain"
)

func TestIsUnlockedBoundary(t *testing.T) {
	for _, required := range []int{-10, 0, 1, 60, 100, 500} {
		assert.True(t, domain.IsUnlocked(required, required), "equal to %d", required)
		assert.True(t, domain.IsUnlocked(required+1, required))
		assert.False(t, domain.IsUnlocked(required-1, required))
	}
}

func TestNormalizeName(t *testing.T) {
	name, err := domain.NormalizeName("  Ana ")
	assert.NoError(t, err)
	assert.Equal(t, "Ana", name)

	_, err = domain.NormalizeName(" a  ")
	assert.ErrorIs(t, err, domain.ErrNameTooShort)

	name, err = domain.NormalizeName("Éa")
	assert.NoError(t, err)
	assert.Equal(t, "Éa", name)
}

func TestLevelUnlockedSequencing(t *testing.T) {
	category := domain.Category{
		ID:             "ranks",
		RequiredPoints: 50,
		Quizzes:        []domain.Quiz{{ID: "l0"}, {ID: "l1"}, {ID: "l2"}},
	}
	results := map[string]domain.QuizResult{}

	assert.False(t, domain.LevelUnlocked(category, 0, 40, results), "category gate closed")
	assert.True(t, domain.LevelUnlocked(category, 0, 50, results))
	assert.False(t, domain.LevelUnlocked(category, 1, 50, results))

	results["l0"] = domain.QuizResult{QuizID: "l0", Score: 2, TotalQuestions: 5}
	assert.False(t, domain.LevelUnlocked(category, 1, 50, results), "40% does not pass")

	results["l0"] = domain.QuizResult{QuizID: "l0", Score: 3, TotalQuestions: 5}
	assert.True(t, domain.LevelUnlocked(category, 1, 50, results), "60% passes")
	assert.False(t, domain.LevelUnlocked(category, 2, 50, results))
	assert.False(t, domain.LevelUnlocked(category, 3, 50, results), "out of range")
}

func TestCatalogValidate(t *testing.T) {
	good := domain.Catalog{
		Categories: []domain.Category{{
			ID: "c1",
			Quizzes: []domain.Quiz{{
				ID:        "q1",
				Questions: []domain.Question{{ID: "a", Options: []string{"x", "y"}, CorrectAnswer: 1}},
			}},
		}},
		Avatars: []domain.Avatar{{ID: "1"}, {ID: "2", RequiredPoints: 50}},
	}
	assert.NoError(t, good.Validate())
	assert.Equal(t, []string{"1"}, good.FreeAvatarIDs())
	assert.Equal(t, 1, good.QuizCount())

	bad := good
	bad.Categories = []domain.Category{{
		ID: "c1",
		Quizzes: []domain.Quiz{{
			ID:        "q1",
			Questions: []domain.Question{{ID: "a", Options: []string{"x"}, CorrectAnswer: 3}},
		}},
	}}
	assert.ErrorIs(t, bad.Validate(), domain.ErrInvalidCatalog)
}
