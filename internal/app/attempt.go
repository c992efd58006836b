package app

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"quiz-progress-service/internal/domain"
)

// AttemptState is the lifecycle of one quiz attempt.
type AttemptState int

const (
	AttemptNotStarted AttemptState = iota
	AttemptInProgress
	AttemptCompleted
)

func (s AttemptState) String() string {
	switch s {
	case AttemptInProgress:
		return "in_progress"
	case AttemptCompleted:
		return "completed"
	default:
		return "not_started"
	}
}

// QuestionView is what the player sees; the correct answer is withheld.
type QuestionView struct {
	Index    int      `json:"index"`
	Total    int      `json:"total"`
	ID       string   `json:"id"`
	Prompt   string   `json:"question"`
	Image    string   `json:"image,omitempty"`
	Options  []string `json:"options"`
	Selected *int     `json:"selected,omitempty"`
	Elapsed  int      `json:"elapsed"`
}

// SelectOutcome reports the feedback for one selected option.
type SelectOutcome struct {
	QuestionID     string `json:"questionId"`
	Correct        bool   `json:"correct"`
	CorrectAnswers int    `json:"correctAnswers"`
}

// Attempt drives one quiz through NotStarted -> InProgress -> Completed.
// Every transition persists a snapshot; completion saves the result and
// drops the snapshot.
type Attempt struct {
	engine *Engine
	quiz   domain.Quiz

	mu          sync.Mutex
	state       AttemptState
	resumed     bool
	index       int
	correct     int
	selected    *int
	baseElapsed int
	startedAt   time.Time
	result      *domain.QuizResult
}

// StartAttempt opens quizID. A quiz that already has a result always
// restarts at question 0; otherwise a stored snapshot is resumed.
func (e *Engine) StartAttempt(ctx context.Context, quizID string) (*Attempt, error) {
	catalog, err := e.catalog.GetCatalog(ctx)
	if err != nil {
		return nil, err
	}
	quiz, category, level, ok := catalog.Quiz(quizID)
	if !ok {
		return nil, domain.ErrQuizNotFound
	}
	progress := e.progress.Progress()
	if !domain.LevelUnlocked(category, level, progress.TotalPoints, progress.QuizResults) {
		return nil, domain.ErrLevelLocked
	}

	a := &Attempt{
		engine:    e,
		quiz:      quiz,
		state:     AttemptInProgress,
		startedAt: e.now(),
	}
	if snap, ok := e.resumable(quiz); ok {
		a.resumed = true
		a.index = snap.CurrentQuestionIndex
		a.correct = snap.CorrectAnswers
		a.selected = snap.SelectedAnswer
		a.baseElapsed = snap.TimeElapsed
	}
	e.log.Debug("attempt started",
		zap.String("quiz_id", quizID),
		zap.Bool("resumed", a.resumed),
		zap.Int("index", a.index),
	)
	return a, nil
}

// resumable is the one place deciding resume vs restart.
func (e *Engine) resumable(quiz domain.Quiz) (domain.InProgressSnapshot, bool) {
	if _, done := e.progress.GetResult(quiz.ID); done {
		return domain.InProgressSnapshot{}, false
	}
	snap, ok := e.snapshots.Load(quiz.ID)
	if !ok {
		return domain.InProgressSnapshot{}, false
	}
	n := len(quiz.Questions)
	if snap.CurrentQuestionIndex < 0 || snap.CurrentQuestionIndex >= n {
		return domain.InProgressSnapshot{}, false
	}
	if snap.SelectedAnswer != nil && (*snap.SelectedAnswer < 0 || *snap.SelectedAnswer >= len(quiz.Questions[snap.CurrentQuestionIndex].Options)) {
		snap.SelectedAnswer = nil
	}
	// Only answered questions may count: the current one only once selected.
	answered := snap.CurrentQuestionIndex
	if snap.SelectedAnswer != nil {
		answered++
	}
	if snap.CorrectAnswers < 0 || snap.CorrectAnswers > answered {
		return domain.InProgressSnapshot{}, false
	}
	return snap, true
}

func (a *Attempt) QuizID() string { return a.quiz.ID }

func (a *Attempt) State() AttemptState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Resumed reports whether the attempt continued from a snapshot.
func (a *Attempt) Resumed() bool { return a.resumed }

// Result is set once the attempt completes.
func (a *Attempt) Result() (domain.QuizResult, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.result == nil {
		return domain.QuizResult{}, false
	}
	return *a.result, true
}

// Current returns the question being answered.
func (a *Attempt) Current() QuestionView {
	a.mu.Lock()
	defer a.mu.Unlock()
	idx := min(a.index, len(a.quiz.Questions)-1)
	q := a.quiz.Questions[idx]
	view := QuestionView{
		Index:   idx,
		Total:   len(a.quiz.Questions),
		ID:      q.ID,
		Prompt:  q.Prompt,
		Image:   q.Image,
		Options: append([]string(nil), q.Options...),
		Elapsed: a.elapsedLocked(),
	}
	if a.selected != nil {
		v := *a.selected
		view.Selected = &v
	}
	return view
}

// Select records the chosen option for the current question and snapshots it.
func (a *Attempt) Select(ctx context.Context, option int) (SelectOutcome, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state == AttemptCompleted {
		return SelectOutcome{}, domain.ErrAttemptFinished
	}
	if a.selected != nil {
		return SelectOutcome{}, domain.ErrAlreadyAnswered
	}
	q := a.quiz.Questions[a.index]
	if option < 0 || option >= len(q.Options) {
		return SelectOutcome{}, domain.ErrAnswerOutOfRange
	}
	correct := option == q.CorrectAnswer
	if correct {
		a.correct++
	}
	a.selected = &option
	a.saveSnapshotLocked(ctx)
	return SelectOutcome{QuestionID: q.ID, Correct: correct, CorrectAnswers: a.correct}, nil
}

// Advance moves past an answered question. After the last question it saves
// the result and returns it.
func (a *Attempt) Advance(ctx context.Context) (*domain.QuizResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state == AttemptCompleted {
		return nil, domain.ErrAttemptFinished
	}
	if a.selected == nil {
		return nil, domain.ErrNoAnswer
	}
	if a.index < len(a.quiz.Questions)-1 {
		a.index++
		a.selected = nil
		a.saveSnapshotLocked(ctx)
		return nil, nil
	}

	saved, err := a.engine.SaveQuizResult(ctx, domain.QuizResult{
		QuizID:         a.quiz.ID,
		Score:          a.correct,
		TotalQuestions: len(a.quiz.Questions),
		TimeSpent:      a.elapsedLocked(),
		Date:           a.engine.now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	a.state = AttemptCompleted
	a.result = &saved
	return &saved, nil
}

// Answer is Select followed by Advance.
func (a *Attempt) Answer(ctx context.Context, option int) (SelectOutcome, *domain.QuizResult, error) {
	outcome, err := a.Select(ctx, option)
	if err != nil {
		return SelectOutcome{}, nil, err
	}
	result, err := a.Advance(ctx)
	return outcome, result, err
}

// Teardown is the last-resort capture when the attempt is abandoned.
func (a *Attempt) Teardown(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != AttemptInProgress {
		return
	}
	a.saveSnapshotLocked(ctx)
}

// Snapshot returns the resumable state as it would be persisted.
func (a *Attempt) Snapshot() domain.InProgressSnapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshotLocked()
}

func (a *Attempt) snapshotLocked() domain.InProgressSnapshot {
	snap := domain.InProgressSnapshot{
		CurrentQuestionIndex: a.index,
		TimeElapsed:          a.elapsedLocked(),
		CorrectAnswers:       a.correct,
	}
	if a.selected != nil {
		v := *a.selected
		snap.SelectedAnswer = &v
	}
	return snap
}

func (a *Attempt) saveSnapshotLocked(ctx context.Context) {
	a.engine.SaveInProgress(ctx, a.quiz.ID, a.snapshotLocked())
}

func (a *Attempt) elapsedLocked() int {
	since := a.engine.now().Sub(a.startedAt)
	if since < 0 {
		since = 0
	}
	return a.baseElapsed + int(since/time.Second)
}
