package sqlite

import (
	"time"

	"log/slog"

	"github.com/oakhurst/talentpipe/internal/db"
	"github.com/oakhurst/talentpipe/pkg/repository"
)

// SQLiteRepo implements repository interfaces using the internal DB wrapper.
type SQLiteRepo struct {
	conn   *db.DB
	logger *slog.Logger
}

// Ensure SQLiteRepo implements the public interfaces.
var _ repository.UserRepo = (*SQLiteRepo)(nil)
var _ repository.JobReqRepo = (*SQLiteRepo)(nil)
var _ repository.CandidateRepo = (*SQLiteRepo)(nil)
var _ repository.PipelineRepo = (*SQLiteRepo)(nil)
var _ repository.PlacementRepo = (*SQLiteRepo)(nil)
var _ repository.ActivityRepo = (*SQLiteRepo)(nil)
var _ repository.SchemaRepo = (*SQLiteRepo)(nil)

func New(conn *db.DB, logger *slog.Logger) *SQLiteRepo {
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLiteRepo{conn: conn, logger: logger}
}

func now() int64 {
	return time.Now().UTC().UnixMilli()
}
