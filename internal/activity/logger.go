// Package activity is the structured audit sink for user-visible actions.
// Recording is fire-and-forget: a failed write is logged and swallowed, it
// must never roll back or fail the mutation it describes.
package activity

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/oakhurst/talentpipe/internal/models"
	"github.com/oakhurst/talentpipe/pkg/repository"
)

type Logger struct {
	repo   repository.ActivityRepo
	logger *slog.Logger
}

func NewLogger(repo repository.ActivityRepo, logger *slog.Logger) *Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Logger{repo: repo, logger: logger}
}

// Record persists one activity entry. Details is marshalled to JSON; a nil
// map becomes "{}".
func (l *Logger) Record(ctx context.Context, action, resourceType string, resourceID, actorID int64, details map[string]any) {
	detailsJSON := "{}"
	if len(details) > 0 {
		if b, err := json.Marshal(details); err == nil {
			detailsJSON = string(b)
		} else {
			l.logger.Error("marshal activity details", "action", action, "err", err)
		}
	}

	rec := &models.ActivityRecord{
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		ActorID:      actorID,
		Details:      detailsJSON,
	}
	if _, err := l.repo.CreateActivity(ctx, rec); err != nil {
		l.logger.Error("record activity", "action", action, "resource_type", resourceType, "resource_id", resourceID, "err", err)
	}
}
