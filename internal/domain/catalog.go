package domain

import "fmt"

// Catalog is the read-only question bank plus the avatar list.
type Catalog struct {
	Categories []Category `json:"categories" yaml:"categories"`
	Avatars    []Avatar   `json:"avatars" yaml:"avatars"`
}

// Category looks up a category by id.
func (c Catalog) Category(id string) (Category, bool) {
	for _, cat := range c.Categories {
		if cat.ID == id {
			return cat, true
		}
	}
	return Category{}, false
}

// Quiz returns the quiz with its parent category and level index.
func (c Catalog) Quiz(id string) (Quiz, Category, int, bool) {
	for _, cat := range c.Categories {
		for i, q := range cat.Quizzes {
			if q.ID == id {
				return q, cat, i, true
			}
		}
	}
	return Quiz{}, Category{}, 0, false
}

// Avatar looks up an avatar by id.
func (c Catalog) Avatar(id string) (Avatar, bool) {
	for _, a := range c.Avatars {
		if a.ID == id {
			return a, true
		}
	}
	return Avatar{}, false
}

// FreeAvatarIDs lists avatars granted to everyone at onboarding.
func (c Catalog) FreeAvatarIDs() []string {
	ids := make([]string, 0, len(c.Avatars))
	for _, a := range c.Avatars {
		if a.RequiredPoints == 0 {
			ids = append(ids, a.ID)
		}
	}
	return ids
}

// DefaultAvatar is the first catalog avatar, used for a fresh profile.
func (c Catalog) DefaultAvatar() Avatar {
	if len(c.Avatars) == 0 {
		return Avatar{}
	}
	return c.Avatars[0]
}

// QuizCount counts quizzes across all categories.
func (c Catalog) QuizCount() int {
	n := 0
	for _, cat := range c.Categories {
		n += len(cat.Quizzes)
	}
	return n
}

// Validate checks the structural rules the engine relies on.
func (c Catalog) Validate() error {
	categories := make(map[string]struct{})
	quizzes := make(map[string]struct{})
	for _, cat := range c.Categories {
		if cat.ID == "" {
			return fmt.Errorf("%w: category without id", ErrInvalidCatalog)
		}
		if _, dup := categories[cat.ID]; dup {
			return fmt.Errorf("%w: duplicate category %q", ErrInvalidCatalog, cat.ID)
		}
		categories[cat.ID] = struct{}{}
		for _, q := range cat.Quizzes {
			if q.ID == "" {
				return fmt.Errorf("%w: quiz without id in %q", ErrInvalidCatalog, cat.ID)
			}
			if _, dup := quizzes[q.ID]; dup {
				return fmt.Errorf("%w: duplicate quiz %q", ErrInvalidCatalog, q.ID)
			}
			quizzes[q.ID] = struct{}{}
			if len(q.Questions) == 0 {
				return fmt.Errorf("%w: quiz %q has no questions", ErrInvalidCatalog, q.ID)
			}
			for _, question := range q.Questions {
				if question.CorrectAnswer < 0 || question.CorrectAnswer >= len(question.Options) {
					return fmt.Errorf("%w: question %q correct answer out of range", ErrInvalidCatalog, question.ID)
				}
			}
		}
	}
	avatars := make(map[string]struct{})
	for _, a := range c.Avatars {
		if _, dup := avatars[a.ID]; dup || a.ID == "" {
			return fmt.Errorf("%w: bad avatar id %q", ErrInvalidCatalog, a.ID)
		}
		avatars[a.ID] = struct{}{}
	}
	return nil
}
