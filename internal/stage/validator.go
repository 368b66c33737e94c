package stage

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Fields is the caller-supplied field bag captured with a transition. Values
// come straight from decoded JSON, so numbers arrive as float64 and flags as
// bool or string.
type Fields map[string]any

// AcceptedTransition is the result of a successful validation. Derived is
// non-nil only for transitions into placed.
type AcceptedTransition struct {
	From    Stage
	To      Stage
	Fields  Fields
	Derived *DerivedPlacement
}

// DerivedPlacement carries the placement values computed from the field bag.
// FeeValue and GuaranteeExpiry are always derived here, never read from input.
type DerivedPlacement struct {
	Salary              float64
	FeePercentage       float64
	FeeValue            int64
	StartDate           string
	GuaranteePeriodDays int
	GuaranteeExpiry     string
}

// IllegalTransitionError reports a target stage not reachable from the
// current stage. Recoverable; nothing was changed.
type IllegalTransitionError struct {
	From Stage
	To   Stage
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal transition from %s to %s", e.From, e.To)
}

// MissingFieldsError lists the required field keys absent or empty in the
// supplied bag. Recoverable; nothing was changed.
type MissingFieldsError struct {
	Keys []string
}

func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Keys, ", "))
}

// InvalidFieldError reports a required field that was present but could not
// be interpreted (bad number, bad date).
type InvalidFieldError struct {
	Key    string
	Reason string
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("invalid field %s: %s", e.Key, e.Reason)
}

const dateLayout = "2006-01-02"

// Validate accepts or rejects a requested stage change. It is pure: no
// persistence happens here, the caller owns all side effects. heldFrom is
// only meaningful when current is on_hold.
func Validate(current, heldFrom, target Stage, fields Fields) (*AcceptedTransition, error) {
	allowed := false
	for _, s := range AllowedNext(current, heldFrom) {
		if s == target {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, &IllegalTransitionError{From: current, To: target}
	}

	var missing []string
	for _, key := range RequiredFields(current, target) {
		if fieldEmpty(fields[key]) {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, &MissingFieldsError{Keys: missing}
	}

	acc := &AcceptedTransition{From: current, To: target, Fields: fields}
	if target == Placed {
		derived, err := derivePlacement(fields)
		if err != nil {
			return nil, err
		}
		acc.Derived = derived
	}
	return acc, nil
}

func derivePlacement(fields Fields) (*DerivedPlacement, error) {
	salary, err := floatField(fields, "salary")
	if err != nil {
		return nil, err
	}
	pct, err := floatField(fields, "feePercentage")
	if err != nil {
		return nil, err
	}
	days, err := intField(fields, "guaranteePeriodDays")
	if err != nil {
		return nil, err
	}
	startRaw, _ := fields["startDate"].(string)
	start, err := time.ParseInLocation(dateLayout, strings.TrimSpace(startRaw), time.UTC)
	if err != nil {
		return nil, &InvalidFieldError{Key: "startDate", Reason: "want YYYY-MM-DD"}
	}

	return &DerivedPlacement{
		Salary:              salary,
		FeePercentage:       pct,
		FeeValue:            roundHalfUp(salary * pct / 100),
		StartDate:           start.Format(dateLayout),
		GuaranteePeriodDays: days,
		GuaranteeExpiry:     start.AddDate(0, 0, days).Format(dateLayout),
	}, nil
}

// roundHalfUp rounds half up to the nearest whole currency unit.
func roundHalfUp(v float64) int64 {
	return int64(math.Floor(v + 0.5))
}

func fieldEmpty(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

func floatField(fields Fields, key string) (float64, error) {
	switch v := fields[key].(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, &InvalidFieldError{Key: key, Reason: "not a number"}
		}
		return f, nil
	default:
		return 0, &InvalidFieldError{Key: key, Reason: "not a number"}
	}
}

func intField(fields Fields, key string) (int, error) {
	f, err := floatField(fields, key)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, &InvalidFieldError{Key: key, Reason: "not a whole number"}
	}
	return int(f), nil
}
