package domain

// Badge is the tier awarded for one attempt.
type Badge string

const (
	BadgeBronze   Badge = "bronze"
	BadgeSilver   Badge = "silver"
	BadgeGold     Badge = "gold"
	BadgePlatinum Badge = "platinum"
)

// Badges lists tiers from lowest to highest.
var Badges = []Badge{BadgeBronze, BadgeSilver, BadgeGold, BadgePlatinum}

const (
	// PointsPerQuestion converts correct answers into points. Per-question
	// Points in authored data are deliberately not used.
	PointsPerQuestion = 10
	// PassPercentage gates the next level inside a category.
	PassPercentage = 60

	goldPercentage = 80
)

var badgeColors = map[Badge]string{
	BadgeBronze:   "#CD7F32",
	BadgeSilver:   "#C0C0C0",
	BadgeGold:     "#FFD700",
	BadgePlatinum: "#E5E4E2",
}

var badgeEmojis = map[Badge]string{
	BadgeBronze:   "🥉",
	BadgeSilver:   "🥈",
	BadgeGold:     "🥇",
	BadgePlatinum: "💎",
}

// ClassifyBadge maps an attempt score to its badge tier.
func ClassifyBadge(score, totalQuestions int) (Badge, error) {
	if totalQuestions <= 0 {
		return "", ErrInvalidTotalQuestions
	}
	if score < 0 || score > totalQuestions {
		return "", ErrInvalidScore
	}
	switch {
	case score == totalQuestions:
		return BadgePlatinum, nil
	case MeetsPercentage(score, totalQuestions, goldPercentage):
		return BadgeGold, nil
	case MeetsPercentage(score, totalQuestions, PassPercentage):
		return BadgeSilver, nil
	default:
		return BadgeBronze, nil
	}
}

// MeetsPercentage reports score/total*100 >= percent without floating point.
func MeetsPercentage(score, total, percent int) bool {
	if total <= 0 {
		return false
	}
	return score*100 >= percent*total
}

// Valid reports whether b is one of the known tiers.
func (b Badge) Valid() bool {
	_, ok := badgeColors[b]
	return ok
}

func (b Badge) Color() string { return badgeColors[b] }

func (b Badge) Emoji() string { return badgeEmojis[b] }

// Points returns the points earned by a result under the fixed per-question rate.
func Points(score int) int {
	return score * PointsPerQuestion
}
