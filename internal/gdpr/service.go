package gdpr

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/oakhurst/talentpipe/internal/activity"
	"github.com/oakhurst/talentpipe/internal/models"
	"github.com/oakhurst/talentpipe/pkg/repository"
)

// Service drives retention decisions: classification listings, contact
// touches, one-way anonymisation and hard deletes, singly or in bulk.
type Service struct {
	candidates repository.CandidateRepo
	activity   *activity.Logger
	logger     *slog.Logger
	workers    int
}

func NewService(candidates repository.CandidateRepo, act *activity.Logger, logger *slog.Logger, workers int) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if workers <= 0 {
		workers = 4
	}
	return &Service{candidates: candidates, activity: act, logger: logger, workers: workers}
}

// CandidateStatus pairs a candidate with its derived retention classification.
type CandidateStatus struct {
	Candidate      models.Candidate `json:"candidate"`
	Classification Classification   `json:"gdpr"`
}

// Overview lists candidates with their classification as of now. The
// classification is recomputed on every call, never read from storage.
func (s *Service) Overview(ctx context.Context, limit, offset int) ([]CandidateStatus, error) {
	cands, err := s.candidates.ListCandidates(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}

	now := time.Now().UTC()
	out := make([]CandidateStatus, 0, len(cands))
	for _, c := range cands {
		out = append(out, CandidateStatus{
			Candidate:      c,
			Classification: Classify(c.LastContactTime(), now),
		})
	}
	return out, nil
}

// TouchContact stamps the candidate's last contact date with now.
func (s *Service) TouchContact(ctx context.Context, candidateID, actorID int64) error {
	at := time.Now().UTC().UnixMilli()
	if err := s.candidates.TouchContact(ctx, candidateID, at); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return repository.ErrNotFound
		}
		return fmt.Errorf("touch contact %d: %w", candidateID, err)
	}
	s.activity.Record(ctx, "contact_touched", "candidate", candidateID, actorID, nil)
	return nil
}

// Anonymise scrubs one candidate's identity fields. One-way and idempotent.
func (s *Service) Anonymise(ctx context.Context, candidateID, actorID int64) error {
	at := time.Now().UTC().UnixMilli()
	if err := s.candidates.Anonymise(ctx, candidateID, at); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return repository.ErrNotFound
		}
		return fmt.Errorf("anonymise candidate %d: %w", candidateID, err)
	}
	s.activity.Record(ctx, "gdpr_anonymise", "candidate", candidateID, actorID, nil)
	return nil
}

// Delete hard-deletes one candidate.
func (s *Service) Delete(ctx context.Context, candidateID, actorID int64) error {
	if err := s.candidates.DeleteCandidate(ctx, candidateID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return repository.ErrNotFound
		}
		return fmt.Errorf("delete candidate %d: %w", candidateID, err)
	}
	s.activity.Record(ctx, "gdpr_delete", "candidate", candidateID, actorID, nil)
	return nil
}

// BulkResult accumulates per-item outcomes of a bulk GDPR action. One item
// failing never aborts the rest of the batch.
type BulkResult struct {
	Success int              `json:"success"`
	Failed  int              `json:"failed"`
	Errors  map[int64]string `json:"errors,omitempty"`
}

// BulkAnonymise anonymises the given candidates with bounded concurrency.
// Items are independent: failures are counted and reported per id. A
// cancelled context stops issuing further items but already-started ones run
// to completion.
func (s *Service) BulkAnonymise(ctx context.Context, ids []int64, actorID int64) BulkResult {
	return s.bulk(ctx, ids, actorID, "gdpr_bulk_anonymise", s.Anonymise)
}

// BulkDelete hard-deletes the given candidates with bounded concurrency.
func (s *Service) BulkDelete(ctx context.Context, ids []int64, actorID int64) BulkResult {
	return s.bulk(ctx, ids, actorID, "gdpr_bulk_delete", s.Delete)
}

func (s *Service) bulk(ctx context.Context, ids []int64, actorID int64, action string, op func(context.Context, int64, int64) error) BulkResult {
	res := BulkResult{Errors: make(map[int64]string)}
	var mu sync.Mutex

	g := &errgroup.Group{}
	g.SetLimit(s.workers)
	for _, id := range ids {
		id := id
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			err := op(ctx, id, actorID)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				res.Failed++
				res.Errors[id] = err.Error()
			} else {
				res.Success++
			}
			return nil
		})
	}
	_ = g.Wait()

	if len(res.Errors) == 0 {
		res.Errors = nil
	}
	s.activity.Record(ctx, action, "candidate", 0, actorID, map[string]any{
		"requested": len(ids), "success": res.Success, "failed": res.Failed,
	})
	return res
}

// Sweep reclassifies every candidate and records an activity entry for each
// one past the retention window that is still identifiable. Run periodically
// by the background worker.
func (s *Service) Sweep(ctx context.Context) (int, error) {
	const page = 200
	now := time.Now().UTC()
	flagged := 0

	for offset := 0; ; offset += page {
		cands, err := s.candidates.ListCandidates(ctx, page, offset)
		if err != nil {
			return flagged, fmt.Errorf("list candidates: %w", err)
		}
		if len(cands) == 0 {
			return flagged, nil
		}

		for _, c := range cands {
			if c.Anonymised() {
				continue
			}
			cls := Classify(c.LastContactTime(), now)
			if cls.Status != StatusExpired && cls.Status != StatusAtRisk {
				continue
			}
			details := map[string]any{"status": string(cls.Status)}
			if cls.DaysSinceContact != nil {
				details["days_since_contact"] = *cls.DaysSinceContact
			}
			s.activity.Record(ctx, "gdpr_retention_flag", "candidate", c.ID, 0, details)
			flagged++
		}

		if len(cands) < page {
			return flagged, nil
		}
	}
}
