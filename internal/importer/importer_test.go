package importer_test

import (
	"context"
	"errors"
	"testing"

	"github.com/oakhurst/talentpipe/internal/activity"
	"github.com/oakhurst/talentpipe/internal/importer"
	"github.com/oakhurst/talentpipe/internal/models"
	"github.com/oakhurst/talentpipe/pkg/repository"
	"github.com/oakhurst/talentpipe/pkg/repository/mock"
)

// fakeSchemaRepo is a small in-memory implementation of repository.SchemaRepo for tests.
type fakeSchemaRepo struct {
	schemas map[string]models.ImportSchema
}

func newFakeSchemaRepo() *fakeSchemaRepo {
	return &fakeSchemaRepo{schemas: make(map[string]models.ImportSchema)}
}

func (f *fakeSchemaRepo) UpsertSchema(ctx context.Context, version, description, schemaJSON string) (int64, error) {
	id := int64(len(f.schemas) + 1)
	f.schemas[version] = models.ImportSchema{ID: id, Version: version, Description: description, SchemaJSON: schemaJSON}
	return id, nil
}

func (f *fakeSchemaRepo) GetSchemaByVersion(ctx context.Context, version string) (*models.ImportSchema, error) {
	if s, ok := f.schemas[version]; ok {
		return &s, nil
	}
	return nil, nil
}

func (f *fakeSchemaRepo) ListSchemas(ctx context.Context) ([]models.ImportSchema, error) {
	out := make([]models.ImportSchema, 0, len(f.schemas))
	for _, s := range f.schemas {
		out = append(out, s)
	}
	return out, nil
}

var _ repository.SchemaRepo = (*fakeSchemaRepo)(nil)

const testSchema = `{"$schema":"http://json-schema.org/draft-07/schema#","type":"object","required":["name","email"],"properties":{"name":{"type":"string","minLength":1},"email":{"type":"string"},"phone":{"type":"string"},"consent_given":{"type":"boolean"},"confidence_score":{"type":"number"},"suggested_status":{"type":"string"},"ai_reasoning":{"type":"string"}}}`

func setupImporter(t *testing.T) (*importer.Importer, *mock.Mocks) {
	t.Helper()
	ctx := context.Background()
	fr := newFakeSchemaRepo()
	if _, err := fr.UpsertSchema(ctx, "v1", "test schema", testSchema); err != nil {
		t.Fatalf("seed schema: %v", err)
	}
	loader, err := importer.NewLoader(ctx, fr)
	if err != nil {
		t.Fatalf("new loader: %v", err)
	}
	m := mock.NewMocks()
	return importer.New(loader, m.Candidates, activity.NewLogger(m.Activities, nil), nil), m
}

func TestImportValidPayload(t *testing.T) {
	imp, m := setupImporter(t)
	raw := []byte(`{"name":"Ann Lee","email":"ann@acme.io","phone":"0770","consent_given":true,"confidence_score":0.92,"suggested_status":"qualified","ai_reasoning":"strong match"}`)

	cand, err := imp.Import(context.Background(), "v1", raw, 3)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if cand.ID == 0 || cand.PublicID == "" {
		t.Fatalf("candidate ids not set: %+v", cand)
	}
	if cand.LastContact == nil {
		t.Fatalf("import must count as contact")
	}
	if cand.ConsentGivenAt == nil || cand.ConsentExpiresAt == nil {
		t.Fatalf("consent stamps missing: %+v", cand)
	}
	if cand.ConfidenceScore == nil || *cand.ConfidenceScore != 0.92 {
		t.Fatalf("scorer output lost: %+v", cand.ConfidenceScore)
	}
	if got := m.Activities.ByAction("candidate_imported"); len(got) != 1 || got[0].ActorID != 3 {
		t.Fatalf("activity = %+v", got)
	}
}

func TestImportRejectsSchemaViolations(t *testing.T) {
	imp, m := setupImporter(t)
	raw := []byte(`{"email":"ann@acme.io"}`) // name missing

	_, err := imp.Import(context.Background(), "v1", raw, 1)
	var verr *importer.ValidationError
	if !errors.As(err, &verr) || len(verr.Issues) == 0 {
		t.Fatalf("want ValidationError with issues, got %v", err)
	}
	if len(m.Candidates.Stored) != 0 {
		t.Fatalf("invalid payload created a candidate")
	}
}

func TestImportUnknownSchemaVersion(t *testing.T) {
	imp, _ := setupImporter(t)
	_, err := imp.Import(context.Background(), "v99", []byte(`{}`), 1)
	if err == nil {
		t.Fatalf("expected error for unknown schema version")
	}
}
