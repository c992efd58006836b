package app_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quiz-progress-service/internal/app"
	"quiz-progress-service/internal/domain"
	"quiz-progress-service/internal/infra/memory"
)

func TestAttemptCompletesAndClearsSnapshot(t *testing.T) {
	ctx := context.Background()
	clock := newTestClock()
	engine := newTestEngine(t, memory.NewKVStore(), clock)

	attempt, err := engine.StartAttempt(ctx, "recruits-1")
	require.NoError(t, err)
	assert.Equal(t, app.AttemptInProgress, attempt.State())
	assert.False(t, attempt.Resumed())

	answers := []int{0, 0, 1, 0, 2} // three correct
	var final *domain.QuizResult
	for i, option := range answers {
		clock.Advance(3 * time.Second)
		outcome, res, err := attempt.Answer(ctx, option)
		require.NoError(t, err)
		assert.Equal(t, option == 0, outcome.Correct)
		if i < len(answers)-1 {
			assert.Nil(t, res)
			snap, ok := engine.LoadInProgress("recruits-1")
			require.True(t, ok, "snapshot after every transition")
			assert.Equal(t, i+1, snap.CurrentQuestionIndex)
			assert.Nil(t, snap.SelectedAnswer)
		}
		final = res
	}

	require.NotNil(t, final)
	assert.Equal(t, 3, final.Score)
	assert.Equal(t, 5, final.TotalQuestions)
	assert.Equal(t, 15, final.TimeSpent)
	assert.Equal(t, domain.BadgeSilver, final.Badge)
	assert.Equal(t, app.AttemptCompleted, attempt.State())

	_, ok := engine.LoadInProgress("recruits-1")
	assert.False(t, ok, "completion clears the snapshot")
	saved, ok := engine.GetQuizResult("recruits-1")
	require.True(t, ok)
	assert.Equal(t, *final, saved)
	assert.Equal(t, 30, engine.Progress().TotalPoints)

	_, _, err = attempt.Answer(ctx, 0)
	assert.ErrorIs(t, err, domain.ErrAttemptFinished)

	attempt.Teardown(ctx)
	_, ok = engine.LoadInProgress("recruits-1")
	assert.False(t, ok, "teardown after completion writes nothing")
}

func TestAttemptResumesFromTeardownSnapshot(t *testing.T) {
	ctx := context.Background()
	clock := newTestClock()
	kv := memory.NewKVStore()
	engine := newTestEngine(t, kv, clock)

	attempt, err := engine.StartAttempt(ctx, "recruits-1")
	require.NoError(t, err)
	_, _, err = attempt.Answer(ctx, 0)
	require.NoError(t, err)
	_, err = attempt.Select(ctx, 1)
	require.NoError(t, err)
	clock.Advance(20 * time.Second)
	attempt.Teardown(ctx)

	snap, ok := engine.LoadInProgress("recruits-1")
	require.True(t, ok)
	assert.Equal(t, 1, snap.CurrentQuestionIndex)
	assert.Equal(t, 1, snap.CorrectAnswers)
	assert.Equal(t, 20, snap.TimeElapsed)
	require.NotNil(t, snap.SelectedAnswer)
	assert.Equal(t, 1, *snap.SelectedAnswer)

	// A fresh engine over the same storage stands in for reopening the app.
	reopened := newTestEngine(t, kv, clock)
	resumed, err := reopened.StartAttempt(ctx, "recruits-1")
	require.NoError(t, err)
	assert.True(t, resumed.Resumed())
	view := resumed.Current()
	assert.Equal(t, 1, view.Index)
	require.NotNil(t, view.Selected)

	_, err = resumed.Select(ctx, 0)
	assert.ErrorIs(t, err, domain.ErrAlreadyAnswered)
	_, err = resumed.Advance(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, resumed.Current().Index)
	assert.Equal(t, 1, resumed.Snapshot().CorrectAnswers)
	assert.Equal(t, 20, resumed.Snapshot().TimeElapsed)
}

func TestCompletedQuizRestartsFresh(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t, memory.NewKVStore(), newTestClock())

	_, err := engine.SaveQuizResult(ctx, quizResult("recruits-1", 4, 5))
	require.NoError(t, err)
	// A stale snapshot written after completion must not be resumed.
	engine.SaveInProgress(ctx, "recruits-1", domain.InProgressSnapshot{CurrentQuestionIndex: 3, CorrectAnswers: 2})

	attempt, err := engine.StartAttempt(ctx, "recruits-1")
	require.NoError(t, err)
	assert.False(t, attempt.Resumed())
	assert.Equal(t, 0, attempt.Current().Index)
	assert.Equal(t, 0, attempt.Snapshot().CorrectAnswers)
}

func TestReplayWithLowerScoreReducesPoints(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t, memory.NewKVStore(), newTestClock())
	_, err := engine.SaveQuizResult(ctx, quizResult("recruits-1", 5, 5))
	require.NoError(t, err)

	attempt, err := engine.StartAttempt(ctx, "recruits-1")
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		option := 1
		if i < 2 {
			option = 0
		}
		_, _, err := attempt.Answer(ctx, option)
		require.NoError(t, err)
	}
	assert.Equal(t, 20, engine.Progress().TotalPoints)
}

func TestStartAttemptGates(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t, memory.NewKVStore(), newTestClock())

	_, err := engine.StartAttempt(ctx, "officers-1")
	assert.ErrorIs(t, err, domain.ErrLevelLocked, "category below 100 points")
	_, err = engine.StartAttempt(ctx, "recruits-2")
	assert.ErrorIs(t, err, domain.ErrLevelLocked, "previous level not passed")
	_, err = engine.StartAttempt(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrQuizNotFound)
}

func TestAttemptRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t, memory.NewKVStore(), newTestClock())
	attempt, err := engine.StartAttempt(ctx, "recruits-1")
	require.NoError(t, err)

	_, err = attempt.Select(ctx, 7)
	assert.ErrorIs(t, err, domain.ErrAnswerOutOfRange)
	_, err = attempt.Advance(ctx)
	assert.ErrorIs(t, err, domain.ErrNoAnswer)
}

func TestResetDropsAttemptSnapshots(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t, memory.NewKVStore(), newTestClock())
	attempt, err := engine.StartAttempt(ctx, "recruits-1")
	require.NoError(t, err)
	_, _, err = attempt.Answer(ctx, 0)
	require.NoError(t, err)

	engine.ResetProgress(ctx)
	_, ok := engine.LoadInProgress("recruits-1")
	assert.False(t, ok)

	fresh, err := engine.StartAttempt(ctx, "recruits-1")
	require.NoError(t, err)
	assert.False(t, fresh.Resumed())
}

func TestCorruptSnapshotIsIgnored(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t, memory.NewKVStore(), newTestClock())
	engine.SaveInProgress(ctx, "recruits-1", domain.InProgressSnapshot{CurrentQuestionIndex: 40})

	attempt, err := engine.StartAttempt(ctx, "recruits-1")
	require.NoError(t, err)
	assert.False(t, attempt.Resumed())
	assert.Equal(t, 0, attempt.Current().Index)
}

func TestSnapshotCountingUnansweredQuestionIsIgnored(t *testing.T) {
	ctx := context.Background()
	badOption := 9
	cases := map[string]domain.InProgressSnapshot{
		"no selection":           {CurrentQuestionIndex: 0, CorrectAnswers: 1},
		"out of range selection": {CurrentQuestionIndex: 2, CorrectAnswers: 3, SelectedAnswer: &badOption},
	}
	for name, snap := range cases {
		t.Run(name, func(t *testing.T) {
			engine := newTestEngine(t, memory.NewKVStore(), newTestClock())
			engine.SaveInProgress(ctx, "recruits-1", snap)

			attempt, err := engine.StartAttempt(ctx, "recruits-1")
			require.NoError(t, err)
			assert.False(t, attempt.Resumed())

			var final *domain.QuizResult
			for n := 0; n < 5; n++ {
				_, res, err := attempt.Answer(ctx, 0)
				require.NoError(t, err)
				final = res
			}
			require.NotNil(t, final)
			assert.Equal(t, 5, final.Score)
			assert.Equal(t, app.AttemptCompleted, attempt.State())
		})
	}
}

func TestSnapshotWithSelectionMayCountCurrentQuestion(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t, memory.NewKVStore(), newTestClock())
	selected := 0
	engine.SaveInProgress(ctx, "recruits-1", domain.InProgressSnapshot{CurrentQuestionIndex: 1, CorrectAnswers: 2, SelectedAnswer: &selected})

	attempt, err := engine.StartAttempt(ctx, "recruits-1")
	require.NoError(t, err)
	assert.True(t, attempt.Resumed())

	res, err := attempt.Advance(ctx)
	require.NoError(t, err)
	assert.Nil(t, res)
	var final *domain.QuizResult
	for n := 0; n < 3; n++ {
		_, final, err = attempt.Answer(ctx, 0)
		require.NoError(t, err)
	}
	require.NotNil(t, final)
	assert.Equal(t, 5, final.Score)
}

func TestAttemptStateString(t *testing.T) {
	assert.Equal(t, "not_started", app.AttemptNotStarted.String())
	assert.Equal(t, "in_progress", app.AttemptInProgress.String())
	assert.Equal(t, "completed", app.AttemptCompleted.String())
}
