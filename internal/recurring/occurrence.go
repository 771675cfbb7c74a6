package recurring

import (
	"errors"
	"time"

	"courtgrid/internal/backend"
)

type Rule string

const (
	RuleWeekly   Rule = "weekly"
	RuleBiweekly Rule = "biweekly"
	RuleMonthly  Rule = "monthly"
)

func (r Rule) Valid() bool {
	switch r {
	case RuleWeekly, RuleBiweekly, RuleMonthly:
		return true
	}
	return false
}

// Availability classifications for an occurrence.
const (
	ClassAvailable            = "available"
	ClassConflictAlternatives = "conflict_with_alternatives"
	ClassConflictUnresolved   = "conflict_unresolved"
)

var (
	ErrInvalidRule      = errors.New("recurrence rule must be weekly, biweekly or monthly")
	ErrInvalidCount     = errors.New("occurrence count must be between 1 and 52")
	ErrInvalidStartDate = errors.New("startDate must be YYYY-MM-DD")
	ErrInvalidStartTime = errors.New("startTime must be HH:MM")
	ErrInvalidDuration  = errors.New("duration must be a 30-minute multiple between 30 and 480")
)

const maxOccurrences = 52

// OccurrenceDates expands a recurrence rule into the concrete dates of the
// series, anchor included. Monthly steps are calendar months from the
// anchor, so a day-31 anchor normalizes forward in shorter months the way
// time.AddDate does.
func OccurrenceDates(startDate string, rule Rule, count int) ([]string, error) {
	if !rule.Valid() {
		return nil, ErrInvalidRule
	}
	if count < 1 || count > maxOccurrences {
		return nil, ErrInvalidCount
	}

	anchor, err := time.ParseInLocation("2006-01-02", startDate, time.Local)
	if err != nil {
		return nil, err
	}

	dates := make([]string, 0, count)
	for i := 0; i < count; i++ {
		var d time.Time
		switch rule {
		case RuleWeekly:
			d = anchor.AddDate(0, 0, 7*i)
		case RuleBiweekly:
			d = anchor.AddDate(0, 0, 14*i)
		case RuleMonthly:
			d = anchor.AddDate(0, i, 0)
		}
		dates = append(dates, d.Format("2006-01-02"))
	}
	return dates, nil
}

// Occurrence is one date of the series with its conflict verdict and the
// chosen resolution, if any. Mutated in place as the user resolves
// conflicts; only the final (date, resource, time) triples are submitted.
type Occurrence struct {
	Date         string                `json:"date"`
	Available    bool                  `json:"available"`
	Conflict     *backend.Conflict     `json:"conflict,omitempty"`
	Alternatives []backend.Alternative `json:"alternatives,omitempty"`
	Resolved     bool                  `json:"resolved"`
	Chosen       *backend.Alternative  `json:"chosenAlternative,omitempty"`
}

// Classify buckets the occurrence for reporting and metrics.
func (o Occurrence) Classify() string {
	switch {
	case o.Available:
		return ClassAvailable
	case len(o.Alternatives) > 0:
		return ClassConflictAlternatives
	default:
		return ClassConflictUnresolved
	}
}
