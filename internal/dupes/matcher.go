package dupes

import (
	"strings"

	"github.com/oakhurst/talentpipe/internal/models"
)

// MatchReason tells the reviewer which heuristic fired. Exact email and phone
// matches are hard signals; name+domain is weaker and must stay distinguishable
// so a human can override it.
type MatchReason string

const (
	ReasonEmailExact    MatchReason = "email_exact"
	ReasonPhoneExact    MatchReason = "phone_exact"
	ReasonNameAndDomain MatchReason = "name_and_domain"
)

// MatchResult scores two candidate records for likely identity collision.
type MatchResult struct {
	IsMatch bool          `json:"is_match"`
	Reasons []MatchReason `json:"reasons,omitempty"`
}

// NormalizeEmail lowercases and trims surrounding whitespace.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizePhone strips everything that is not a digit.
func NormalizePhone(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func emailDomain(normalized string) string {
	if i := strings.LastIndexByte(normalized, '@'); i >= 0 {
		return normalized[i+1:]
	}
	return ""
}

// Score compares two candidate records. Symmetric: Score(a, b) and
// Score(b, a) always agree. Empty normalized identity fields never match.
func Score(a, b *models.Candidate) MatchResult {
	var res MatchResult

	emailA, emailB := NormalizeEmail(a.Email), NormalizeEmail(b.Email)
	if emailA != "" && emailA == emailB {
		res.Reasons = append(res.Reasons, ReasonEmailExact)
	}

	phoneA, phoneB := NormalizePhone(a.Phone), NormalizePhone(b.Phone)
	if phoneA != "" && phoneA == phoneB {
		res.Reasons = append(res.Reasons, ReasonPhoneExact)
	}

	nameA := strings.ToLower(strings.TrimSpace(a.Name))
	nameB := strings.ToLower(strings.TrimSpace(b.Name))
	domA, domB := emailDomain(emailA), emailDomain(emailB)
	if nameA != "" && nameA == nameB && domA != "" && domA == domB {
		res.Reasons = append(res.Reasons, ReasonNameAndDomain)
	}

	res.IsMatch = len(res.Reasons) > 0
	return res
}
