package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/edelguur/admin-backend/internal/housekeeping"
)

type cycleRunner interface {
	Jobs() []string
	RunOnce(ctx context.Context) error
}

func newHousekeepingCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "housekeeping", Short: "Retention jobs for the outbox tables"}

	run := &cobra.Command{
		Use:   "run",
		Short: "Run every retention job once",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer e.db.Close()

			jobs, err := housekeeping.DefaultJobs(e.db, e.db.DB(), e.cfg.Housekeeping, e.cfg.Outbox.MaxAttempts, e.logg)
			if err != nil {
				return err
			}
			scheduler, err := housekeeping.NewScheduler(housekeeping.Params{
				Logger: e.logg,
				Jobs:   jobs,
				Lock:   &housekeeping.LocalLock{},
			})
			if err != nil {
				return err
			}
			return runHousekeeping(cmd.Context(), scheduler, cmd.OutOrStdout())
		},
	}

	cmd.AddCommand(run)
	return cmd
}

func runHousekeeping(ctx context.Context, s cycleRunner, out io.Writer) error {
	if err := s.RunOnce(ctx); err != nil {
		return err
	}
	fmt.Fprintf(out, "ran %s\n", strings.Join(s.Jobs(), ", "))
	return nil
}
