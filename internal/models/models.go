package models

import (
	"encoding/json"
	"time"
)

type User struct {
	ID           int64  `json:"id" db:"id"`
	Name         string `json:"name" db:"name" validate:"required"`
	Email        string `json:"email" db:"email" validate:"required,email"`
	Role         string `json:"role" db:"role"`
	Updated      int64  `json:"updated" db:"updated"`
	PasswordHash string `json:"password_hash,omitempty" db:"password_hash"`
}

const (
	RoleAdmin     = "admin"
	RoleRecruiter = "recruiter"
)

// JobReq is a client job requisition that candidates are pipelined against.
type JobReq struct {
	ID         int64  `json:"id" db:"id"`
	Title      string `json:"title" db:"title" validate:"required"`
	ClientName string `json:"client_name" db:"client_name"`
	Status     string `json:"status" db:"status"`
	Created    int64  `json:"created" db:"created"`
	Updated    int64  `json:"updated" db:"updated"`
}

// Candidate is the person being tracked, independent of any single requisition.
// ConfidenceScore, SuggestedStatus and AIReasoning are populated by the external
// CV scorer; this service only ever reads them.
type Candidate struct {
	ID                   int64    `json:"id" db:"id"`
	PublicID             string   `json:"public_id" db:"public_id"`
	Name                 string   `json:"name" db:"name"`
	Email                string   `json:"email" db:"email"`
	Phone                string   `json:"phone" db:"phone"`
	LastContact          *int64   `json:"last_contact,omitempty" db:"last_contact"`
	ConsentGivenAt       *int64   `json:"consent_given_at,omitempty" db:"consent_given_at"`
	ConsentExpiresAt     *int64   `json:"consent_expires_at,omitempty" db:"consent_expires_at"`
	AnonymisedAt         *int64   `json:"anonymised_at,omitempty" db:"anonymised_at"`
	PotentialDuplicateOf *int64   `json:"potential_duplicate_of,omitempty" db:"potential_duplicate_of"`
	DuplicateReasons     string   `json:"duplicate_reasons,omitempty" db:"duplicate_reasons"`
	ConfidenceScore      *float64 `json:"confidence_score,omitempty" db:"confidence_score"`
	SuggestedStatus      string   `json:"suggested_status,omitempty" db:"suggested_status"`
	AIReasoning          string   `json:"ai_reasoning,omitempty" db:"ai_reasoning"`
	Created              int64    `json:"created" db:"created"`
	Updated              int64    `json:"updated" db:"updated"`
}

// Anonymised reports whether the candidate went through GDPR anonymisation.
// Identity fields of an anonymised candidate must never be written again.
func (c *Candidate) Anonymised() bool { return c.AnonymisedAt != nil }

// LastContactTime converts the epoch-milli contact stamp, nil when never contacted.
func (c *Candidate) LastContactTime() *time.Time {
	if c.LastContact == nil {
		return nil
	}
	t := time.UnixMilli(*c.LastContact).UTC()
	return &t
}

// PipelineEntry is a candidate's tracked position against one requisition.
// Updated doubles as the optimistic-concurrency token: every stage change is a
// conditional write against the value the caller read.
type PipelineEntry struct {
	ID          int64   `json:"id" db:"id"`
	JobID       int64   `json:"job_id" db:"job_id"`
	CandidateID int64   `json:"candidate_id" db:"candidate_id"`
	Stage       string  `json:"stage" db:"stage"`
	HeldFrom    *string `json:"held_from,omitempty" db:"held_from"`
	Priority    int     `json:"priority" db:"priority"`
	AssignedTo  *int64  `json:"assigned_to,omitempty" db:"assigned_to"`
	Notes       string  `json:"notes,omitempty" db:"notes"`
	Created     int64   `json:"created" db:"created"`
	Updated     int64   `json:"updated" db:"updated"`
}

// StageTransitionRecord is an append-only audit entry, written atomically with
// the stage change it records and never updated or deleted.
type StageTransitionRecord struct {
	ID              int64  `json:"id" db:"id"`
	PipelineEntryID int64  `json:"pipeline_entry_id" db:"pipeline_entry_id"`
	FromStage       string `json:"from_stage" db:"from_stage"`
	ToStage         string `json:"to_stage" db:"to_stage"`
	ActorID         int64  `json:"actor_id" db:"actor_id"`
	OccurredAt      int64  `json:"occurred_at" db:"occurred_at"`
	SuppliedFields  string `json:"supplied_fields,omitempty" db:"supplied_fields"`
}

// Placement is the terminal commercial record created when an entry reaches
// stage "placed". FeeValue and GuaranteeExpiry are always derived, never
// entered independently. Dates are YYYY-MM-DD strings, day granularity.
type Placement struct {
	ID                  int64   `json:"id" db:"id"`
	PipelineEntryID     int64   `json:"pipeline_entry_id" db:"pipeline_entry_id"`
	StartDate           string  `json:"start_date" db:"start_date"`
	Salary              float64 `json:"salary" db:"salary"`
	FeePercentage       float64 `json:"fee_percentage" db:"fee_percentage"`
	FeeValue            int64   `json:"fee_value" db:"fee_value"`
	GuaranteePeriodDays int     `json:"guarantee_period_days" db:"guarantee_period_days"`
	GuaranteeExpiry     string  `json:"guarantee_expiry" db:"guarantee_expiry"`
	Created             int64   `json:"created" db:"created"`
}

type ActivityRecord struct {
	ID           int64  `json:"id" db:"id"`
	Action       string `json:"action" db:"action"`
	ResourceType string `json:"resource_type" db:"resource_type"`
	ResourceID   int64  `json:"resource_id" db:"resource_id"`
	ActorID      int64  `json:"actor_id" db:"actor_id"`
	Details      string `json:"details,omitempty" db:"details"`
	Created      int64  `json:"created" db:"created"`
}

// ImportSchema is a versioned JSON schema candidate-import payloads are
// validated against.
type ImportSchema struct {
	ID          int64  `json:"id" db:"id"`
	Version     string `json:"version" db:"version"`
	Description string `json:"description,omitempty" db:"description"`
	SchemaJSON  string `json:"schema_json" db:"schema_json"`
	Created     int64  `json:"created" db:"created"`
	Updated     int64  `json:"updated" db:"updated"`
}

type BackgroundJob struct {
	ID          int64           `json:"id"`
	Type        string          `json:"type"`
	Payload     json.RawMessage `json:"payload"`
	Status      string          `json:"status"`
	Attempts    int             `json:"attempts"`
	MaxAttempts int             `json:"max_attempts"`
	Priority    int             `json:"priority"`
	ScheduledAt time.Time       `json:"scheduled_at"`
	NextTryAt   *time.Time      `json:"next_try_at,omitempty"`
	LastError   string          `json:"last_error,omitempty"`
	Created     time.Time       `json:"created"`
	Updated     time.Time       `json:"updated"`
}
