package domain

import "errors"

var (
	// ErrInvalidTotalQuestions is returned when a score is classified against zero questions.
	ErrInvalidTotalQuestions = errors.New("total questions must be positive")
	// ErrInvalidScore indicates a score outside [0, totalQuestions].
	ErrInvalidScore = errors.New("score out of range")
	// ErrQuizNotFound indicates the quiz is not part of the catalog.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrCategoryNotFound indicates the category is not part of the catalog.
	ErrCategoryNotFound = errors.New("category not found")
	// ErrAvatarNotFound indicates the avatar is not part of the catalog.
	ErrAvatarNotFound = errors.New("avatar not found")
	// ErrAvatarLocked is returned when selecting an avatar that has not been unlocked.
	ErrAvatarLocked = errors.New("avatar is locked")
	// ErrInsufficientPoints is returned when an unlock is attempted below the gate.
	ErrInsufficientPoints = errors.New("not enough points")
	// ErrNameTooShort is returned for display names shorter than MinNameLength.
	ErrNameTooShort = errors.New("name too short")
	// ErrLevelLocked is returned when starting a quiz whose category or level gate is closed.
	ErrLevelLocked = errors.New("level is locked")
	// ErrAttemptFinished is returned when answering an attempt that already completed.
	ErrAttemptFinished = errors.New("attempt already finished")
	// ErrAlreadyAnswered is returned when selecting twice on the same question.
	ErrAlreadyAnswered = errors.New("question already answered")
	// ErrNoAnswer is returned when advancing before an option was selected.
	ErrNoAnswer = errors.New("no answer selected")
	// ErrAnswerOutOfRange indicates an option index outside the question's options.
	ErrAnswerOutOfRange = errors.New("answer index out of range")
	// ErrInvalidCatalog indicates authored catalog data breaks a structural rule.
	ErrInvalidCatalog = errors.New("invalid catalog")
)
