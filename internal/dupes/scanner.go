package dupes

import (
	"context"
	"fmt"
	"strings"

	"log/slog"

	"github.com/oakhurst/talentpipe/internal/activity"
	"github.com/oakhurst/talentpipe/pkg/repository"
)

// Scanner compares one candidate against the rest of the book and flags the
// first likely duplicate for human review. Runs as a background job after
// candidate creation and import.
type Scanner struct {
	candidates repository.CandidateRepo
	activity   *activity.Logger
	logger     *slog.Logger
}

func NewScanner(candidates repository.CandidateRepo, act *activity.Logger, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{candidates: candidates, activity: act, logger: logger}
}

// Scan flags candidateID as a potential duplicate of the oldest matching
// record, if any. Anonymised records are skipped on both sides: their
// identity fields are gone, so any match would be noise.
func (s *Scanner) Scan(ctx context.Context, candidateID int64) error {
	subject, err := s.candidates.GetCandidate(ctx, candidateID)
	if err != nil {
		return fmt.Errorf("load candidate %d: %w", candidateID, err)
	}
	if subject == nil {
		return repository.ErrNotFound
	}
	if subject.Anonymised() {
		return nil
	}

	const page = 200
	for offset := 0; ; offset += page {
		others, err := s.candidates.ListCandidates(ctx, page, offset)
		if err != nil {
			return fmt.Errorf("list candidates: %w", err)
		}
		if len(others) == 0 {
			return nil
		}

		for i := range others {
			other := &others[i]
			if other.ID == subject.ID || other.Anonymised() {
				continue
			}
			res := Score(subject, other)
			if !res.IsMatch {
				continue
			}

			reasons := make([]string, len(res.Reasons))
			for j, r := range res.Reasons {
				reasons[j] = string(r)
			}
			joined := strings.Join(reasons, ",")
			if err := s.candidates.MarkDuplicate(ctx, subject.ID, other.ID, joined); err != nil {
				return fmt.Errorf("mark duplicate %d of %d: %w", subject.ID, other.ID, err)
			}
			s.activity.Record(ctx, "duplicate_flagged", "candidate", subject.ID, 0, map[string]any{
				"of": other.ID, "reasons": joined,
			})
			return nil
		}

		if len(others) < page {
			return nil
		}
	}
}
