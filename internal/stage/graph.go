package stage

// Stage is one of the 12 canonical lifecycle states of a pipeline entry.
type Stage string

const (
	Sourced    Stage = "sourced"
	Contacted  Stage = "contacted"
	Qualified  Stage = "qualified"
	Submitted  Stage = "submitted"
	Interview1 Stage = "interview_1"
	Interview2 Stage = "interview_2"
	Final      Stage = "final"
	Offer      Stage = "offer"
	Accepted   Stage = "accepted"
	Placed     Stage = "placed"

	// Side stages, reachable from any non-terminal stage.
	Rejected Stage = "rejected"
	OnHold   Stage = "on_hold"
)

// activePath is the ordered forward path. Entries move one hop at a time;
// moving backward along the path is never legal except via on_hold resumption.
var activePath = []Stage{
	Sourced, Contacted, Qualified, Submitted, Interview1,
	Interview2, Final, Offer, Accepted, Placed,
}

// All returns every defined stage.
func All() []Stage {
	out := make([]Stage, 0, len(activePath)+2)
	out = append(out, activePath...)
	return append(out, Rejected, OnHold)
}

// Valid reports whether s is one of the defined stages.
func Valid(s Stage) bool {
	if s == Rejected || s == OnHold {
		return true
	}
	return pathIndex(s) >= 0
}

// IsTerminal reports whether no transitions leave s.
func IsTerminal(s Stage) bool { return s == Placed || s == Rejected }

func pathIndex(s Stage) int {
	for i, p := range activePath {
		if p == s {
			return i
		}
	}
	return -1
}

// AllowedNext returns the stages reachable from `from` in one hop. For an
// entry sitting in on_hold, heldFrom is the stage it was paused from and the
// only ways out are resuming there or rejecting; heldFrom is ignored for
// every other stage.
func AllowedNext(from, heldFrom Stage) []Stage {
	if IsTerminal(from) {
		return nil
	}
	if from == OnHold {
		var out []Stage
		if heldFrom != "" && heldFrom != OnHold && !IsTerminal(heldFrom) && Valid(heldFrom) {
			out = append(out, heldFrom)
		}
		return append(out, Rejected)
	}
	idx := pathIndex(from)
	if idx < 0 {
		return nil
	}
	var out []Stage
	if idx+1 < len(activePath) {
		out = append(out, activePath[idx+1])
	}
	return append(out, Rejected, OnHold)
}

// requiredFields maps the stage being entered to the field keys that must be
// present and non-empty on the transition. Stages absent from the table need
// nothing beyond default notes.
var requiredFields = map[Stage][]string{
	Submitted:  {"submissionNotes", "clientContactConfirmed"},
	Interview1: {"interviewDateTime", "interviewType", "locationOrLink"},
	Interview2: {"previousScorecard", "interviewDateTime"},
	Offer:      {"offerSalary", "startDate", "benefits"},
	Placed:     {"salary", "feePercentage", "startDate", "guaranteePeriodDays"},
	Rejected:   {"rejectionReason", "rejectionCategory"},
}

// RequiredFields returns the mandatory field keys for the from→to transition.
// Resuming out of on_hold re-enters a stage whose fields were already captured
// when it was first entered, so resumption demands nothing.
func RequiredFields(from, to Stage) []string {
	if from == OnHold && to != Rejected {
		return nil
	}
	return requiredFields[to]
}
