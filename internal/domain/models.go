package domain

import "time"

// QuizResult records the latest completed attempt of a quiz.
type QuizResult struct {
	QuizID         string    `json:"quizId"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"totalQuestions"`
	TimeSpent      int       `json:"timeSpent"` // seconds
	Badge          Badge     `json:"badge"`
	Date           time.Time `json:"date"`
}

// Passed reports whether the result meets the level pass mark.
func (r QuizResult) Passed() bool {
	return MeetsPercentage(r.Score, r.TotalQuestions, PassPercentage)
}

// UserProgress is the persisted points/results document.
type UserProgress struct {
	TotalPoints int                   `json:"totalPoints"`
	QuizResults map[string]QuizResult `json:"quizResults"`
}

// NewUserProgress returns the zero-value progress document.
func NewUserProgress() UserProgress {
	return UserProgress{QuizResults: make(map[string]QuizResult)}
}

// Clone returns a deep copy so callers never share the results map.
func (p UserProgress) Clone() UserProgress {
	out := UserProgress{
		TotalPoints: p.TotalPoints,
		QuizResults: make(map[string]QuizResult, len(p.QuizResults)),
	}
	for id, r := range p.QuizResults {
		out.QuizResults[id] = r
	}
	return out
}

// InProgressSnapshot is a resumable partial attempt.
type InProgressSnapshot struct {
	CurrentQuestionIndex int  `json:"currentQuestionIndex"`
	TimeElapsed          int  `json:"timeElapsed"` // seconds
	CorrectAnswers       int  `json:"correctAnswers"`
	SelectedAnswer       *int `json:"selectedAnswer"`
}

// Avatar is a selectable profile picture gated by points.
type Avatar struct {
	ID              string `json:"id" yaml:"id"`
	Emoji           string `json:"emoji" yaml:"emoji"`
	BackgroundColor string `json:"backgroundColor" yaml:"backgroundColor"`
	RequiredPoints  int    `json:"requiredPoints" yaml:"requiredPoints"`
}

// UserProfile is the persisted display profile.
type UserProfile struct {
	Name                   string   `json:"name"`
	Avatar                 Avatar   `json:"avatar"`
	HasCompletedOnboarding bool     `json:"hasCompletedOnboarding"`
	UnlockedAvatars        []string `json:"unlockedAvatars"`
}

// HasAvatar reports whether avatarID was explicitly unlocked.
func (p UserProfile) HasAvatar(avatarID string) bool {
	for _, id := range p.UnlockedAvatars {
		if id == avatarID {
			return true
		}
	}
	return false
}

// Clone returns a copy with its own unlocked slice.
func (p UserProfile) Clone() UserProfile {
	out := p
	out.UnlockedAvatars = append([]string(nil), p.UnlockedAvatars...)
	return out
}

// Question is an authored multiple-choice question.
type Question struct {
	ID            string   `json:"id" yaml:"id"`
	Prompt        string   `json:"question" yaml:"question"`
	Image         string   `json:"image,omitempty" yaml:"image,omitempty"`
	Options       []string `json:"options" yaml:"options"`
	CorrectAnswer int      `json:"correctAnswer" yaml:"correctAnswer"`
	Points        int      `json:"points" yaml:"points"` // ignored when scoring, see PointsPerQuestion
}

// Quiz is one level inside a category.
type Quiz struct {
	ID        string     `json:"id" yaml:"id"`
	Title     string     `json:"title" yaml:"title"`
	Icon      string     `json:"icon,omitempty" yaml:"icon,omitempty"`
	Color     string     `json:"color,omitempty" yaml:"color,omitempty"`
	Questions []Question `json:"questions" yaml:"questions"`
}

// Category groups quizzes behind one points gate.
type Category struct {
	ID             string `json:"id" yaml:"id"`
	Title          string `json:"title" yaml:"title"`
	Icon           string `json:"icon,omitempty" yaml:"icon,omitempty"`
	Color          string `json:"color,omitempty" yaml:"color,omitempty"`
	RequiredPoints int    `json:"requiredPoints" yaml:"requiredPoints"`
	Quizzes        []Quiz `json:"quizzes" yaml:"quizzes"`
}

// CategoryStatus is a read-only view of a category gate.
type CategoryStatus struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	RequiredPoints int    `json:"requiredPoints"`
	Unlocked       bool   `json:"unlocked"`
	Levels         int    `json:"levels"`
	Completed      int    `json:"completed"`
}

// LevelStatus is a read-only view of one quiz inside a category.
type LevelStatus struct {
	Index     int         `json:"index"`
	QuizID    string      `json:"quizId"`
	Title     string      `json:"title"`
	Questions int         `json:"questions"`
	Unlocked  bool        `json:"unlocked"`
	Result    *QuizResult `json:"result,omitempty"`
}

// AvatarStatus combines the catalog avatar with the profile's unlock state.
type AvatarStatus struct {
	Avatar
	Unlocked  bool `json:"unlocked"`
	CanUnlock bool `json:"canUnlock"`
}

// Stats summarizes progress for the profile view.
type Stats struct {
	TotalPoints      int           `json:"totalPoints"`
	CompletedQuizzes int           `json:"completedQuizzes"`
	TotalQuizzes     int           `json:"totalQuizzes"`
	Badges           map[Badge]int `json:"badges"`
}
