package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"log/slog"

	"github.com/oakhurst/talentpipe/internal/dupes"
	"github.com/oakhurst/talentpipe/internal/gdpr"
	"github.com/oakhurst/talentpipe/internal/models"
)

// Handlers wires the background job types to their services.
func Handlers(gdprSvc *gdpr.Service, scanner *dupes.Scanner, logger *slog.Logger) map[string]Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return map[string]Handler{
		TypeGDPRSweep: func(ctx context.Context, j *models.BackgroundJob) error {
			flagged, err := gdprSvc.Sweep(ctx)
			if err != nil {
				return err
			}
			logger.Info("gdpr sweep finished", "flagged", flagged)
			return nil
		},
		TypeDuplicateScan: func(ctx context.Context, j *models.BackgroundJob) error {
			var p DuplicateScanPayload
			if err := json.Unmarshal(j.Payload, &p); err != nil {
				return fmt.Errorf("decode duplicate_scan payload: %w", err)
			}
			return scanner.Scan(ctx, p.CandidateID)
		},
	}
}
