package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"quiz-progress-service/internal/app"
)

// NewResetCmd wipes the local user's progress and/or profile.
func NewResetCmd(configPath *string) *cobra.Command {
	var progressOnly, profileOnly bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset progress and profile for the local user",
		Long: "Reset progress and profile for the local user.\n\n" +
			"Stop any running server on the same storage first: it caches each user's\n" +
			"documents and would write the old state back on its next save.",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := openLocalSession(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer session.Close()

			both := !progressOnly && !profileOnly
			return resetLocal(cmd.Context(), session.Engine, both || progressOnly, both || profileOnly, cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&progressOnly, "progress", false, "reset only points, results and in-progress quizzes")
	cmd.Flags().BoolVar(&profileOnly, "profile", false, "reset only the profile")
	return cmd
}

// resetLocal reports success only once the storage accepted the batch.
func resetLocal(ctx context.Context, engine *app.Engine, progress, profile bool, w io.Writer) error {
	if err := engine.Purge(ctx, progress, profile); err != nil {
		return err
	}
	if progress {
		fmt.Fprintln(w, "progress reset")
	}
	if profile {
		fmt.Fprintln(w, "profile reset")
	}
	return nil
}
