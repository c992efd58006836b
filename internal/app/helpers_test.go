package app_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"quiz-progress-service/internal/app"
	"quiz-progress-service/internal/domain"
	"quiz-progress-service/internal/infra/memory"
)

// testClock is a manually advanced clock.
type testClock struct{ now time.Time }

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time          { return c.now }
func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestEngine(t *testing.T, kv app.KeyValueStore, clock *testClock) *app.Engine {
	t.Helper()
	engine, err := app.NewEngine(context.Background(), app.EngineConfig{
		KV:      kv,
		Catalog: memory.NewCatalogRepository(memory.NewStaticCatalogLoader(testCatalog()), 0),
		Clock:   clock.Now,
	})
	require.NoError(t, err)
	engine.Load(context.Background())
	return engine
}

// testCatalog: "recruits" is open with three 5-question levels whose correct
// answer is always option 0; "officers" needs 100 points.
func testCatalog() domain.Catalog {
	return domain.Catalog{
		Categories: []domain.Category{
			{
				ID:             "recruits",
				Title:          "Recruits",
				RequiredPoints: 0,
				Quizzes: []domain.Quiz{
					testQuiz("recruits-1", 5),
					testQuiz("recruits-2", 5),
					testQuiz("recruits-3", 5),
				},
			},
			{
				ID:             "officers",
				Title:          "Officers",
				RequiredPoints: 100,
				Quizzes:        []domain.Quiz{testQuiz("officers-1", 10)},
			},
		},
		Avatars: []domain.Avatar{
			{ID: "1", Emoji: "🪖", BackgroundColor: "#3B82F6"},
			{ID: "2", Emoji: "⚔️", BackgroundColor: "#8B5CF6"},
			{ID: "3", Emoji: "🏆", BackgroundColor: "#14B8A6", RequiredPoints: 50},
		},
	}
}

func testQuiz(id string, n int) domain.Quiz {
	questions := make([]domain.Question, n)
	for i := range questions {
		questions[i] = domain.Question{
			ID:            fmt.Sprintf("%s-q%d", id, i+1),
			Prompt:        fmt.Sprintf("Question %d", i+1),
			Options:       []string{"right", "wrong", "wrong", "wrong"},
			CorrectAnswer: 0,
			Points:        10,
		}
	}
	return domain.Quiz{ID: id, Title: id, Questions: questions}
}

func quizResult(quizID string, score, total int) domain.QuizResult {
	return domain.QuizResult{QuizID: quizID, Score: score, TotalQuestions: total, TimeSpent: 42}
}
