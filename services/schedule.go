package services

import (
	"fmt"
	"time"
)

// MinJudges is the smallest judge pool a tournament may carry; the
// scoring consensus needs at least three independent submissions to be
// meaningful.
const MinJudges = 3

// ScheduleRules is the administrator-configured policy the validator
// enforces. WindowFrom is inclusive, WindowTo exclusive.
type ScheduleRules struct {
	WindowFrom      string // "HH:MM"
	WindowTo        string // "HH:MM"
	DurationOptions []int  // offered registration durations, days
	MinLengthDays   int    // minimum tournament length
}

// ScheduleRequest is the raw date/time configuration of a proposed
// tournament, before normalization.
type ScheduleRequest struct {
	RegistrationOpens time.Time
	RegistrationDays  int
	StartDate         time.Time
	EndDate           time.Time
	StartTime         string // "HH:MM"
	CategoryIDs       []int
	JudgeIDs          []int
}

// NormalizedSchedule is a validated schedule with dates truncated to
// UTC midnight and the start moment precomputed.
type NormalizedSchedule struct {
	RegistrationOpens time.Time
	RegistrationDays  int
	StartDate         time.Time
	EndDate           time.Time
	StartTime         string
	StartsAt          time.Time // StartDate at StartTime
}

// ScheduleValidator checks a tournament's date/time configuration
// against the configured rules. Rules are checked in precedence order;
// the first violation wins.
type ScheduleValidator struct {
	rules      ScheduleRules
	fromMinute int
	toMinute   int

	now func() time.Time // injectable for tests
}

func NewScheduleValidator(rules ScheduleRules) (*ScheduleValidator, error) {
	from, err := parseTimeOfDay(rules.WindowFrom)
	if err != nil {
		return nil, fmt.Errorf("invalid start window begin %q: %w", rules.WindowFrom, err)
	}
	to, err := parseTimeOfDay(rules.WindowTo)
	if err != nil {
		return nil, fmt.Errorf("invalid start window end %q: %w", rules.WindowTo, err)
	}
	if from >= to {
		return nil, fmt.Errorf("start window %q-%q is empty", rules.WindowFrom, rules.WindowTo)
	}
	if len(rules.DurationOptions) == 0 {
		return nil, fmt.Errorf("at least one registration duration option is required")
	}
	return &ScheduleValidator{
		rules:      rules,
		fromMinute: from,
		toMinute:   to,
		now:        time.Now,
	}, nil
}

// Validate applies the schedule rules and returns the normalized
// schedule, or the sentinel error for the first rule violated.
func (v *ScheduleValidator) Validate(req ScheduleRequest) (*NormalizedSchedule, error) {
	today := truncateToDay(v.now())
	regOpens := truncateToDay(req.RegistrationOpens)
	startDate := truncateToDay(req.StartDate)
	endDate := truncateToDay(req.EndDate)

	// 1. Registration opens strictly after the current date.
	if !regOpens.After(today) {
		return nil, ErrInvalidRegistrationStart
	}

	// 2. Duration must be one of the offered options.
	if !containsInt(v.rules.DurationOptions, req.RegistrationDays) {
		return nil, ErrInvalidDuration
	}

	// 3. Start no earlier than the day after registration closes.
	minStart := regOpens.AddDate(0, 0, req.RegistrationDays+1)
	if startDate.Before(minStart) {
		return nil, ErrInvalidStartDate
	}

	// 4. Minimum tournament length.
	minEnd := startDate.AddDate(0, 0, v.rules.MinLengthDays)
	if endDate.Before(minEnd) {
		return nil, ErrInvalidEndDate
	}

	// 5. Start time inside the configured daily window.
	startMinute, err := parseTimeOfDay(req.StartTime)
	if err != nil {
		return nil, ErrInvalidStartTime
	}
	if startMinute < v.fromMinute || startMinute >= v.toMinute {
		return nil, ErrInvalidStartTime
	}

	// 6. Minimum category and judge assignments.
	if len(req.CategoryIDs) == 0 {
		return nil, ErrNoCategory
	}
	if len(req.JudgeIDs) < MinJudges {
		return nil, ErrInsufficientJudges
	}

	return &NormalizedSchedule{
		RegistrationOpens: regOpens,
		RegistrationDays:  req.RegistrationDays,
		StartDate:         startDate,
		EndDate:           endDate,
		StartTime:         fmt.Sprintf("%02d:%02d", startMinute/60, startMinute%60),
		StartsAt:          startDate.Add(time.Duration(startMinute) * time.Minute),
	}, nil
}

// parseTimeOfDay parses "HH:MM" into minutes from midnight.
func parseTimeOfDay(value string) (int, error) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func containsInt(values []int, v int) bool {
	for _, value := range values {
		if value == v {
			return true
		}
	}
	return false
}
