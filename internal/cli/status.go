package cli

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"quiz-progress-service/internal/domain"
)

// NewStatusCmd prints the local user's points, unlocks and badges.
func NewStatusCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show progress for the local user",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := openLocalSession(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer session.Close()

			e := session.Engine
			categories, err := e.CategoryStatuses(cmd.Context())
			if err != nil {
				return err
			}
			stats, err := e.Stats(cmd.Context())
			if err != nil {
				return err
			}
			printStatus(cmd.OutOrStdout(), session.UserID, e.Profile(), e.Progress(), categories, stats)
			return nil
		},
	}
}

func printStatus(w io.Writer, userID string, profile domain.UserProfile, progress domain.UserProgress, categories []domain.CategoryStatus, stats domain.Stats) {
	name := profile.Name
	if name == "" {
		name = "(not onboarded)"
	}
	fmt.Fprintf(w, "user      %s\n", userID)
	fmt.Fprintf(w, "name      %s %s\n", profile.Avatar.Emoji, name)
	fmt.Fprintf(w, "points    %d\n", progress.TotalPoints)
	fmt.Fprintf(w, "quizzes   %d/%d\n", stats.CompletedQuizzes, stats.TotalQuizzes)
	fmt.Fprint(w, "badges   ")
	for _, b := range domain.Badges {
		fmt.Fprintf(w, " %s %d", b.Emoji(), stats.Badges[b])
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "\ncategories")
	for _, c := range categories {
		lock := "locked"
		if c.Unlocked {
			lock = "open"
		}
		fmt.Fprintf(w, "  %-32s %4d pts  %-6s %d/%d\n", c.Title, c.RequiredPoints, lock, c.Completed, c.Levels)
	}

	if len(progress.QuizResults) == 0 {
		return
	}
	ids := make([]string, 0, len(progress.QuizResults))
	for id := range progress.QuizResults {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	fmt.Fprintln(w, "\nresults")
	for _, id := range ids {
		r := progress.QuizResults[id]
		fmt.Fprintf(w, "  %-32s %d/%d %s %s\n", id, r.Score, r.TotalQuestions, r.Badge.Emoji(), r.Date.Format("2006-01-02"))
	}
}
