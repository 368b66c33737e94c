package repository

import (
	"context"
	"errors"

	"github.com/oakhurst/talentpipe/internal/models"
)

// Repository interfaces for domain entities. These are the public contracts
// consumers should depend on; concrete implementations live under internal/.

// ErrConflict is returned by conditional writes when the optimistic-concurrency
// token no longer matches: the losing writer must reload and retry.
var ErrConflict = errors.New("conflict: record changed since read")

// ErrNotFound is returned by services when a referenced record no longer exists.
var ErrNotFound = errors.New("not found")

type UserRepo interface {
	CreateUser(ctx context.Context, u *models.User) (int64, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CountUsers(ctx context.Context) (int64, error)
}

type JobReqRepo interface {
	CreateJobReq(ctx context.Context, j *models.JobReq) (int64, error)
	GetJobReq(ctx context.Context, id int64) (*models.JobReq, error)
	ListJobReqs(ctx context.Context, limit, offset int) ([]models.JobReq, error)
	UpdateJobReqStatus(ctx context.Context, id int64, status string) error
}

type CandidateRepo interface {
	CreateCandidate(ctx context.Context, c *models.Candidate) (int64, error)
	GetCandidate(ctx context.Context, id int64) (*models.Candidate, error)
	ListCandidates(ctx context.Context, limit, offset int) ([]models.Candidate, error)
	TouchContact(ctx context.Context, id int64, at int64) error
	// Anonymise scrubs identity fields and stamps anonymised_at. Idempotent:
	// a second call is a no-op. Identity columns are never written again.
	Anonymise(ctx context.Context, id int64, at int64) error
	DeleteCandidate(ctx context.Context, id int64) error
	MarkDuplicate(ctx context.Context, id, ofID int64, reasons string) error
}

type PipelineRepo interface {
	CreateEntry(ctx context.Context, e *models.PipelineEntry) (int64, error)
	GetEntry(ctx context.Context, id int64) (*models.PipelineEntry, error)
	ListEntriesByJob(ctx context.Context, jobID int64) ([]models.PipelineEntry, error)
	DeleteEntry(ctx context.Context, id int64) error
	// ApplyTransition performs the stage change, the audit append and the
	// optional placement insert in one transaction, guarded by a
	// compare-and-swap on the entry's previous updated stamp. Returns
	// ErrConflict without writing anything when the guard misses.
	ApplyTransition(ctx context.Context, e *models.PipelineEntry, rec *models.StageTransitionRecord, placement *models.Placement, expectedUpdated int64) error
	ListTransitions(ctx context.Context, entryID int64) ([]models.StageTransitionRecord, error)
}

type PlacementRepo interface {
	GetPlacementByEntry(ctx context.Context, entryID int64) (*models.Placement, error)
	ListPlacements(ctx context.Context, limit, offset int) ([]models.Placement, error)
}

type ActivityRepo interface {
	CreateActivity(ctx context.Context, a *models.ActivityRecord) (int64, error)
	ListActivities(ctx context.Context, limit, offset int) ([]models.ActivityRecord, error)
}

type SchemaRepo interface {
	UpsertSchema(ctx context.Context, version, description, schemaJSON string) (int64, error)
	GetSchemaByVersion(ctx context.Context, version string) (*models.ImportSchema, error)
	ListSchemas(ctx context.Context) ([]models.ImportSchema, error)
}
