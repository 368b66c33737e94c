// Package importer validates and materializes candidate import payloads
// (CV submissions arriving from the intake form or the email parser).
package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"github.com/oakhurst/talentpipe/internal/activity"
	"github.com/oakhurst/talentpipe/internal/gdpr"
	"github.com/oakhurst/talentpipe/internal/models"
	"github.com/oakhurst/talentpipe/pkg/repository"
)

// Payload is the shape of one import after schema validation. The AI fields
// are already-materialized output of the external CV scorer and pass through
// untouched.
type Payload struct {
	Name            string   `json:"name"`
	Email           string   `json:"email"`
	Phone           string   `json:"phone,omitempty"`
	ConsentGiven    bool     `json:"consent_given,omitempty"`
	ConfidenceScore *float64 `json:"confidence_score,omitempty"`
	SuggestedStatus string   `json:"suggested_status,omitempty"`
	AIReasoning     string   `json:"ai_reasoning,omitempty"`
}

// ValidationError carries the schema violations for the UI to render
// field-level messages.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("import payload invalid: %s", strings.Join(e.Issues, "; "))
}

type Importer struct {
	loader     *Loader
	candidates repository.CandidateRepo
	activity   *activity.Logger
	logger     *slog.Logger
}

func New(loader *Loader, candidates repository.CandidateRepo, act *activity.Logger, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{loader: loader, candidates: candidates, activity: act, logger: logger}
}

// Import validates raw payload bytes against the named schema version and
// creates the candidate. A fresh import counts as contact, so last_contact
// starts at now; consent stamps follow the retention window.
func (i *Importer) Import(ctx context.Context, schemaVersion string, raw []byte, actorID int64) (*models.Candidate, error) {
	schema, ok := i.loader.GetSchema(schemaVersion)
	if !ok {
		return nil, fmt.Errorf("unknown import schema version %q", schemaVersion)
	}

	keyErrs, err := schema.ValidateBytes(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("validate import payload: %w", err)
	}
	if len(keyErrs) > 0 {
		issues := make([]string, len(keyErrs))
		for j, ke := range keyErrs {
			issues[j] = ke.Error()
		}
		return nil, &ValidationError{Issues: issues}
	}

	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode import payload: %w", err)
	}

	nowMs := time.Now().UTC().UnixMilli()
	cand := &models.Candidate{
		PublicID:        uuid.NewString(),
		Name:            p.Name,
		Email:           p.Email,
		Phone:           p.Phone,
		LastContact:     &nowMs,
		ConfidenceScore: p.ConfidenceScore,
		SuggestedStatus: p.SuggestedStatus,
		AIReasoning:     p.AIReasoning,
	}
	if p.ConsentGiven {
		expires := time.UnixMilli(nowMs).UTC().AddDate(0, 0, gdpr.RetentionDays).UnixMilli()
		cand.ConsentGivenAt = &nowMs
		cand.ConsentExpiresAt = &expires
	}

	id, err := i.candidates.CreateCandidate(ctx, cand)
	if err != nil {
		return nil, fmt.Errorf("create candidate: %w", err)
	}
	cand.ID = id

	i.activity.Record(ctx, "candidate_imported", "candidate", id, actorID, map[string]any{
		"schema_version": schemaVersion,
	})
	return cand, nil
}
