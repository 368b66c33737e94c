package gdpr

import (
	"math"
	"time"
)

// Status is the derived retention classification of a candidate. It is a pure
// function of now minus the last contact date, recomputed on every read and
// never stored.
type Status string

const (
	StatusActive  Status = "active"
	StatusStale   Status = "stale"
	StatusAtRisk  Status = "at_risk"
	StatusExpired Status = "expired"
)

// RetentionDays is the hard retention window: past it the candidate's data
// must be anonymised or deleted.
const RetentionDays = 730

const (
	staleAfterDays  = 183
	atRiskAfterDays = 366
)

// Classification is the derived freshness of one candidate. Day counts are
// nil when there is no contact date at all.
type Classification struct {
	Status           Status `json:"status"`
	DaysSinceContact *int64 `json:"days_since_contact,omitempty"`
	DaysUntilExpiry  *int64 `json:"days_until_expiry,omitempty"`
}

// Classify maps a last-contact timestamp to a retention status. A candidate
// never contacted is already expired. Day arithmetic is floor-based and UTC.
func Classify(lastContact *time.Time, now time.Time) Classification {
	if lastContact == nil {
		return Classification{Status: StatusExpired}
	}

	days := int64(math.Floor(now.UTC().Sub(lastContact.UTC()).Hours() / 24))
	until := int64(RetentionDays) - days
	if until < 0 {
		until = 0
	}

	var status Status
	switch {
	case days < staleAfterDays:
		status = StatusActive
	case days < atRiskAfterDays:
		status = StatusStale
	case days <= RetentionDays:
		status = StatusAtRisk
	default:
		status = StatusExpired
	}

	return Classification{Status: status, DaysSinceContact: &days, DaysUntilExpiry: &until}
}
