// Package pipeline applies validated stage transitions to persisted entries.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"log/slog"

	"github.com/oakhurst/talentpipe/internal/activity"
	"github.com/oakhurst/talentpipe/internal/models"
	"github.com/oakhurst/talentpipe/internal/stage"
	"github.com/oakhurst/talentpipe/pkg/repository"
)

type Service struct {
	entries  repository.PipelineRepo
	activity *activity.Logger
	logger   *slog.Logger
}

func NewService(entries repository.PipelineRepo, act *activity.Logger, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{entries: entries, activity: act, logger: logger}
}

// AddCandidate creates a pipeline entry for a candidate against a job,
// starting at sourced.
func (s *Service) AddCandidate(ctx context.Context, jobID, candidateID, actorID int64, notes string) (*models.PipelineEntry, error) {
	entry := &models.PipelineEntry{
		JobID:       jobID,
		CandidateID: candidateID,
		Stage:       string(stage.Sourced),
		Notes:       notes,
	}
	id, err := s.entries.CreateEntry(ctx, entry)
	if err != nil {
		return nil, fmt.Errorf("create pipeline entry: %w", err)
	}
	entry.ID = id

	s.activity.Record(ctx, "pipeline_entry_created", "pipeline_entry", id, actorID, map[string]any{
		"job_id": jobID, "candidate_id": candidateID,
	})
	return entry, nil
}

// Transition applies one stage change to an entry. Validation failures come
// back verbatim as typed errors; the write itself is all-or-nothing and
// guarded against concurrent writers, who lose with ErrConflict and should
// reload and retry.
func (s *Service) Transition(ctx context.Context, entryID int64, target stage.Stage, fields stage.Fields, actorID int64) (*models.PipelineEntry, error) {
	entry, err := s.entries.GetEntry(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("load pipeline entry %d: %w", entryID, err)
	}
	if entry == nil {
		return nil, repository.ErrNotFound
	}

	heldFrom := stage.Stage("")
	if entry.HeldFrom != nil {
		heldFrom = stage.Stage(*entry.HeldFrom)
	}
	accepted, err := stage.Validate(stage.Stage(entry.Stage), heldFrom, target, fields)
	if err != nil {
		return nil, err
	}

	expected := entry.Updated
	ts := time.Now().UTC().UnixMilli()
	// the CAS token must move even when two writes land in the same millisecond
	if ts <= expected {
		ts = expected + 1
	}

	fromStage := entry.Stage
	entry.Stage = string(target)
	entry.Updated = ts
	switch {
	case target == stage.OnHold:
		hf := fromStage
		entry.HeldFrom = &hf
	default:
		entry.HeldFrom = nil
	}

	suppliedJSON := "{}"
	if len(fields) > 0 {
		if b, err := json.Marshal(fields); err == nil {
			suppliedJSON = string(b)
		}
	}
	rec := &models.StageTransitionRecord{
		PipelineEntryID: entry.ID,
		FromStage:       fromStage,
		ToStage:         string(target),
		ActorID:         actorID,
		OccurredAt:      ts,
		SuppliedFields:  suppliedJSON,
	}

	var placement *models.Placement
	if accepted.Derived != nil {
		placement = &models.Placement{
			PipelineEntryID:     entry.ID,
			StartDate:           accepted.Derived.StartDate,
			Salary:              accepted.Derived.Salary,
			FeePercentage:       accepted.Derived.FeePercentage,
			FeeValue:            accepted.Derived.FeeValue,
			GuaranteePeriodDays: accepted.Derived.GuaranteePeriodDays,
			GuaranteeExpiry:     accepted.Derived.GuaranteeExpiry,
		}
	}

	if err := s.entries.ApplyTransition(ctx, entry, rec, placement, expected); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, repository.ErrConflict
		}
		return nil, fmt.Errorf("apply transition %d %s->%s: %w", entry.ID, fromStage, target, err)
	}

	details := map[string]any{"from": fromStage, "to": string(target)}
	if placement != nil {
		details["fee_value"] = placement.FeeValue
	}
	s.activity.Record(ctx, "stage_transition", "pipeline_entry", entry.ID, actorID, details)

	return entry, nil
}

// History returns the append-only transition records for one entry, oldest first.
func (s *Service) History(ctx context.Context, entryID int64) ([]models.StageTransitionRecord, error) {
	entry, err := s.entries.GetEntry(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("load pipeline entry %d: %w", entryID, err)
	}
	if entry == nil {
		return nil, repository.ErrNotFound
	}
	return s.entries.ListTransitions(ctx, entryID)
}

// Delete removes an entry outright. Hard delete is an explicit admin action,
// independent of stage; the caller checks the permission.
func (s *Service) Delete(ctx context.Context, entryID, actorID int64) error {
	entry, err := s.entries.GetEntry(ctx, entryID)
	if err != nil {
		return fmt.Errorf("load pipeline entry %d: %w", entryID, err)
	}
	if entry == nil {
		return repository.ErrNotFound
	}
	if err := s.entries.DeleteEntry(ctx, entryID); err != nil {
		return fmt.Errorf("delete pipeline entry %d: %w", entryID, err)
	}

	s.activity.Record(ctx, "pipeline_entry_deleted", "pipeline_entry", entryID, actorID, map[string]any{
		"stage": entry.Stage,
	})
	return nil
}
