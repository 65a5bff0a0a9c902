package stats

import (
	"context"
	"log/slog"

	"github.com/gsokolov/noteblog/internal/repo"
	"github.com/robfig/cron/v3"
)

// Run starts a background job that logs table totals (users, notes) on the
// given cron spec so operators can watch growth without querying the DB.
// An empty spec disables the job. Returns the cron runner so callers can Stop it.
func Run(spec string, users *repo.UserRepo, notes *repo.NoteRepo) (*cron.Cron, error) {
	if spec == "" {
		return nil, nil
	}

	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		ctx := context.Background()

		userCount, err := users.Count(ctx)
		if err != nil {
			slog.Error("stats: count users", "error", err)
			return
		}
		noteCount, err := notes.Count(ctx)
		if err != nil {
			slog.Error("stats: count notes", "error", err)
			return
		}

		slog.Info("totals", "users", userCount, "notes", noteCount)
	})
	if err != nil {
		return nil, err
	}

	c.Start()
	return c, nil
}
