package gdpr_test

import (
	"testing"
	"time"

	"github.com/oakhurst/talentpipe/internal/gdpr"
)

func TestClassifyBoundaries(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		days int64
		want gdpr.Status
	}{
		{0, gdpr.StatusActive},
		{182, gdpr.StatusActive},
		{183, gdpr.StatusStale},
		{365, gdpr.StatusStale},
		{366, gdpr.StatusAtRisk},
		{730, gdpr.StatusAtRisk},
		{731, gdpr.StatusExpired},
		{1000, gdpr.StatusExpired},
	}
	for _, c := range cases {
		last := now.AddDate(0, 0, -int(c.days))
		got := gdpr.Classify(&last, now)
		if got.Status != c.want {
			t.Errorf("Classify(%d days) = %s, want %s", c.days, got.Status, c.want)
		}
		if got.DaysSinceContact == nil || *got.DaysSinceContact != c.days {
			t.Errorf("Classify(%d days): daysSinceContact = %v", c.days, got.DaysSinceContact)
		}
		wantUntil := int64(730) - c.days
		if wantUntil < 0 {
			wantUntil = 0
		}
		if got.DaysUntilExpiry == nil || *got.DaysUntilExpiry != wantUntil {
			t.Errorf("Classify(%d days): daysUntilExpiry = %v, want %d", c.days, got.DaysUntilExpiry, wantUntil)
		}
	}
}

func TestClassifyNeverContacted(t *testing.T) {
	got := gdpr.Classify(nil, time.Now())
	if got.Status != gdpr.StatusExpired {
		t.Fatalf("status = %s, want expired", got.Status)
	}
	if got.DaysSinceContact != nil || got.DaysUntilExpiry != nil {
		t.Fatalf("day counts must be nil without a contact date: %+v", got)
	}
}

func TestClassifyAtRiskScenario(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	last := now.AddDate(0, 0, -400)
	got := gdpr.Classify(&last, now)
	if got.Status != gdpr.StatusAtRisk {
		t.Fatalf("status = %s, want at_risk", got.Status)
	}
	if *got.DaysSinceContact != 400 || *got.DaysUntilExpiry != 330 {
		t.Fatalf("days = %d / %d, want 400 / 330", *got.DaysSinceContact, *got.DaysUntilExpiry)
	}
}

func TestClassifyFloorsPartialDays(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	last := now.Add(-183*24*time.Hour + time.Hour) // 182 days and 23 hours
	got := gdpr.Classify(&last, now)
	if *got.DaysSinceContact != 182 {
		t.Fatalf("daysSinceContact = %d, want 182", *got.DaysSinceContact)
	}
	if got.Status != gdpr.StatusActive {
		t.Fatalf("status = %s, want active", got.Status)
	}
}
