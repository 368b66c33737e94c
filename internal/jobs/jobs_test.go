package jobs_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"log/slog"

	migrations "github.com/oakhurst/talentpipe/db"
	"github.com/oakhurst/talentpipe/internal/db"
	"github.com/oakhurst/talentpipe/internal/jobs"
	"github.com/oakhurst/talentpipe/internal/models"
)

func setupJobs(t *testing.T) *jobs.Repository {
	t.Helper()
	ctx := context.Background()
	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	d, err := db.New(ctx, dsn, nil)
	if err != nil {
		t.Fatalf("db.New: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	if err := db.Migrate(ctx, d, migrations.Migrations, migrations.SeedFiles); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return jobs.NewRepository(d)
}

func TestEnqueueAndProcess(t *testing.T) {
	ctx := context.Background()
	repo := setupJobs(t)

	handled := make(chan struct{}, 1)
	handlers := map[string]jobs.Handler{
		"test": func(ctx context.Context, j *models.BackgroundJob) error {
			handled <- struct{}{}
			return nil
		},
	}
	pool := jobs.NewWorkerPool(repo, handlers, slog.Default(), 1)
	pool.Start(ctx)
	defer pool.Stop()

	if _, err := pool.Enqueue(ctx, "test", map[string]string{"foo": "bar"}, 10, 3); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	select {
	case <-handled:
		// ok
	case <-time.After(3 * time.Second):
		t.Fatalf("handler was not called")
	}
}

func TestFailingJobExhaustsAttemptsAndDeadLetters(t *testing.T) {
	ctx := context.Background()
	repo := setupJobs(t)

	calls := make(chan struct{}, 8)
	handlers := map[string]jobs.Handler{
		"always_fails": func(ctx context.Context, j *models.BackgroundJob) error {
			calls <- struct{}{}
			return errors.New("boom")
		},
	}
	pool := jobs.NewWorkerPool(repo, handlers, slog.Default(), 1)
	pool.Start(ctx)
	defer pool.Stop()

	if _, err := pool.Enqueue(ctx, "always_fails", nil, 10, 1); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	select {
	case <-calls:
	case <-time.After(3 * time.Second):
		t.Fatalf("handler never ran")
	}

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		cnt, err := repo.CountDeadLetters(ctx)
		if err != nil {
			t.Fatalf("count dead letters: %v", err)
		}
		if cnt == 1 {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatalf("job never reached the dead letter table")
}

func TestUnknownJobTypeGoesToDeadLetter(t *testing.T) {
	ctx := context.Background()
	repo := setupJobs(t)

	pool := jobs.NewWorkerPool(repo, map[string]jobs.Handler{}, slog.Default(), 1)
	pool.Start(ctx)
	defer pool.Stop()

	job := &models.BackgroundJob{Type: "mystery", ScheduledAt: time.Now()}
	if _, err := repo.Enqueue(ctx, job); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		cnt, _ := repo.CountDeadLetters(ctx)
		if cnt == 1 {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatalf("unhandled job not dead-lettered")
}

func TestBackoffDurationGrowsAndCaps(t *testing.T) {
	if jobs.BackoffDuration(0) != time.Second {
		t.Fatalf("attempt 0 backoff = %v", jobs.BackoffDuration(0))
	}
	if jobs.BackoffDuration(2) <= jobs.BackoffDuration(1) {
		t.Fatalf("backoff not increasing")
	}
	if jobs.BackoffDuration(30) != 5*time.Minute {
		t.Fatalf("backoff not capped: %v", jobs.BackoffDuration(30))
	}
}
