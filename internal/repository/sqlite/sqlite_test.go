package sqlite_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	migrations "github.com/oakhurst/talentpipe/db"
	dbpkg "github.com/oakhurst/talentpipe/internal/db"
	"github.com/oakhurst/talentpipe/internal/models"
	sqlite "github.com/oakhurst/talentpipe/internal/repository/sqlite"
	"github.com/oakhurst/talentpipe/pkg/repository"
)

func setupRepo(t *testing.T) *sqlite.SQLiteRepo {
	t.Helper()
	ctx := context.Background()
	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	d, err := dbpkg.New(ctx, dsn, nil)
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	t.Cleanup(func() { d.Close() })

	if err := dbpkg.Migrate(ctx, d, migrations.Migrations, migrations.SeedFiles); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return sqlite.New(d, nil)
}

func seedEntry(t *testing.T, repo *sqlite.SQLiteRepo) *models.PipelineEntry {
	t.Helper()
	ctx := context.Background()

	jobID, err := repo.CreateJobReq(ctx, &models.JobReq{Title: "Backend Engineer", ClientName: "Acme"})
	if err != nil {
		t.Fatalf("create job req: %v", err)
	}
	candID, err := repo.CreateCandidate(ctx, &models.Candidate{PublicID: "cand-" + t.Name(), Name: "Ann Lee", Email: "ann@acme.io"})
	if err != nil {
		t.Fatalf("create candidate: %v", err)
	}
	entryID, err := repo.CreateEntry(ctx, &models.PipelineEntry{JobID: jobID, CandidateID: candID})
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}
	entry, err := repo.GetEntry(ctx, entryID)
	if err != nil || entry == nil {
		t.Fatalf("get entry: %v %v", entry, err)
	}
	return entry
}

func TestEntryDefaultsToSourced(t *testing.T) {
	repo := setupRepo(t)
	entry := seedEntry(t, repo)
	if entry.Stage != "sourced" {
		t.Fatalf("stage = %s, want sourced", entry.Stage)
	}
	if entry.Priority != 100 {
		t.Fatalf("priority = %d, want default 100", entry.Priority)
	}
}

func TestGetEntryMissingReturnsNil(t *testing.T) {
	repo := setupRepo(t)
	got, err := repo.GetEntry(context.Background(), 9999)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for missing entry, got %#v", got)
	}
}

func TestApplyTransitionWritesAuditAtomically(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	entry := seedEntry(t, repo)

	expected := entry.Updated
	entry.Stage = "contacted"
	entry.Updated = expected + 1
	rec := &models.StageTransitionRecord{
		PipelineEntryID: entry.ID, FromStage: "sourced", ToStage: "contacted",
		ActorID: 1, OccurredAt: entry.Updated, SuppliedFields: "{}",
	}
	if err := repo.ApplyTransition(ctx, entry, rec, nil, expected); err != nil {
		t.Fatalf("apply transition: %v", err)
	}

	got, err := repo.GetEntry(ctx, entry.ID)
	if err != nil || got == nil {
		t.Fatalf("get entry: %v %v", got, err)
	}
	if got.Stage != "contacted" {
		t.Fatalf("stage = %s, want contacted", got.Stage)
	}

	recs, err := repo.ListTransitions(ctx, entry.ID)
	if err != nil {
		t.Fatalf("list transitions: %v", err)
	}
	if len(recs) != 1 || recs[0].FromStage != "sourced" || recs[0].ToStage != "contacted" {
		t.Fatalf("transitions = %+v", recs)
	}
}

func TestApplyTransitionConflictWritesNothing(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	entry := seedEntry(t, repo)

	staleToken := entry.Updated - 10
	entry.Stage = "contacted"
	entry.Updated = entry.Updated + 1
	rec := &models.StageTransitionRecord{
		PipelineEntryID: entry.ID, FromStage: "sourced", ToStage: "contacted",
		ActorID: 1, OccurredAt: entry.Updated, SuppliedFields: "{}",
	}
	err := repo.ApplyTransition(ctx, entry, rec, nil, staleToken)
	if !errors.Is(err, repository.ErrConflict) {
		t.Fatalf("want ErrConflict, got %v", err)
	}

	got, _ := repo.GetEntry(ctx, entry.ID)
	if got.Stage != "sourced" {
		t.Fatalf("losing writer changed the stage to %s", got.Stage)
	}
	recs, _ := repo.ListTransitions(ctx, entry.ID)
	if len(recs) != 0 {
		t.Fatalf("losing writer left an audit record: %+v", recs)
	}
}

func TestApplyTransitionCreatesPlacement(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	entry := seedEntry(t, repo)

	expected := entry.Updated
	entry.Stage = "placed"
	entry.Updated = expected + 1
	rec := &models.StageTransitionRecord{
		PipelineEntryID: entry.ID, FromStage: "accepted", ToStage: "placed",
		ActorID: 1, OccurredAt: entry.Updated, SuppliedFields: "{}",
	}
	placement := &models.Placement{
		PipelineEntryID: entry.ID, StartDate: "2025-01-10", Salary: 50000,
		FeePercentage: 20, FeeValue: 10000, GuaranteePeriodDays: 90, GuaranteeExpiry: "2025-04-10",
	}
	if err := repo.ApplyTransition(ctx, entry, rec, placement, expected); err != nil {
		t.Fatalf("apply transition: %v", err)
	}

	got, err := repo.GetPlacementByEntry(ctx, entry.ID)
	if err != nil || got == nil {
		t.Fatalf("get placement: %v %v", got, err)
	}
	if got.FeeValue != 10000 || got.GuaranteeExpiry != "2025-04-10" {
		t.Fatalf("placement = %+v", got)
	}
}

func TestAnonymiseIsOneWay(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	id, err := repo.CreateCandidate(ctx, &models.Candidate{PublicID: "anon-" + t.Name(), Name: "Ann Lee", Email: "ann@acme.io", Phone: "0770"})
	if err != nil {
		t.Fatalf("create candidate: %v", err)
	}

	if err := repo.Anonymise(ctx, id, 1700000000000); err != nil {
		t.Fatalf("anonymise: %v", err)
	}
	got, _ := repo.GetCandidate(ctx, id)
	if got.Name != "" || got.Email != "" || got.Phone != "" {
		t.Fatalf("identity fields survived anonymisation: %+v", got)
	}
	if got.AnonymisedAt == nil || *got.AnonymisedAt != 1700000000000 {
		t.Fatalf("anonymised_at = %v", got.AnonymisedAt)
	}

	// re-running keeps the original stamp
	if err := repo.Anonymise(ctx, id, 1800000000000); err != nil {
		t.Fatalf("second anonymise: %v", err)
	}
	got, _ = repo.GetCandidate(ctx, id)
	if *got.AnonymisedAt != 1700000000000 {
		t.Fatalf("anonymised_at rewritten to %d", *got.AnonymisedAt)
	}
}

func TestMarkDuplicate(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	a, err := repo.CreateCandidate(ctx, &models.Candidate{PublicID: "dup-a-" + t.Name(), Name: "Ann", Email: "ann@acme.io"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	b, err := repo.CreateCandidate(ctx, &models.Candidate{PublicID: "dup-b-" + t.Name(), Name: "Ann", Email: "ann@acme.io"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := repo.MarkDuplicate(ctx, b, a, "email_exact"); err != nil {
		t.Fatalf("mark duplicate: %v", err)
	}
	got, _ := repo.GetCandidate(ctx, b)
	if got.PotentialDuplicateOf == nil || *got.PotentialDuplicateOf != a {
		t.Fatalf("potential_duplicate_of = %v, want %d", got.PotentialDuplicateOf, a)
	}
	if got.DuplicateReasons != "email_exact" {
		t.Fatalf("duplicate_reasons = %q", got.DuplicateReasons)
	}
}

func TestSchemaUpsertAndGet(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	if _, err := repo.UpsertSchema(ctx, "v9", "test schema", `{"type":"object"}`); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	got, err := repo.GetSchemaByVersion(ctx, "v9")
	if err != nil || got == nil {
		t.Fatalf("get schema: %v %v", got, err)
	}
	if got.SchemaJSON != `{"type":"object"}` {
		t.Fatalf("schema json = %q", got.SchemaJSON)
	}

	// seed schema v1 is applied by the migrator
	seeded, err := repo.GetSchemaByVersion(ctx, "v1")
	if err != nil || seeded == nil {
		t.Fatalf("seeded v1 schema missing: %v %v", seeded, err)
	}
}
