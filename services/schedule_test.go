package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testValidator(t *testing.T) *ScheduleValidator {
	t.Helper()
	v, err := NewScheduleValidator(ScheduleRules{
		WindowFrom:      "11:00",
		WindowTo:        "20:00",
		DurationOptions: []int{3, 5, 7, 14},
		MinLengthDays:   12,
	})
	require.NoError(t, err)
	v.now = func() time.Time {
		return time.Date(2026, 3, 1, 15, 30, 0, 0, time.UTC)
	}
	return v
}

func validRequest() ScheduleRequest {
	return ScheduleRequest{
		RegistrationOpens: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		RegistrationDays:  7,
		StartDate:         time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		EndDate:           time.Date(2026, 3, 22, 0, 0, 0, 0, time.UTC),
		StartTime:         "12:00",
		CategoryIDs:       []int{1},
		JudgeIDs:          []int{10, 11, 12},
	}
}

func TestValidateAcceptsValidSchedule(t *testing.T) {
	v := testValidator(t)
	schedule, err := v.Validate(validRequest())
	require.NoError(t, err)
	assert.Equal(t, "12:00", schedule.StartTime)
	assert.Equal(t, time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC), schedule.StartsAt)
}

func TestValidateRegistrationMustOpenAfterToday(t *testing.T) {
	v := testValidator(t)

	req := validRequest()
	req.RegistrationOpens = time.Date(2026, 3, 1, 23, 0, 0, 0, time.UTC) // today
	_, err := v.Validate(req)
	assert.ErrorIs(t, err, ErrInvalidRegistrationStart)

	req.RegistrationOpens = time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC)
	_, err = v.Validate(req)
	assert.ErrorIs(t, err, ErrInvalidRegistrationStart)
}

func TestValidateDurationMustBeOffered(t *testing.T) {
	v := testValidator(t)
	req := validRequest()
	req.RegistrationDays = 6
	_, err := v.Validate(req)
	assert.ErrorIs(t, err, ErrInvalidDuration)
}

func TestValidateStartAfterRegistrationCloses(t *testing.T) {
	v := testValidator(t)
	req := validRequest()
	// Registration closes March 9; starting that same day is too early.
	req.StartDate = time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	_, err := v.Validate(req)
	assert.ErrorIs(t, err, ErrInvalidStartDate)
}

func TestValidateMinimumLength(t *testing.T) {
	v := testValidator(t)
	req := validRequest()
	req.EndDate = time.Date(2026, 3, 21, 0, 0, 0, 0, time.UTC) // 11 days
	_, err := v.Validate(req)
	assert.ErrorIs(t, err, ErrInvalidEndDate)
}

func TestValidateStartTimeWindow(t *testing.T) {
	v := testValidator(t)

	cases := map[string]bool{
		"11:00": true,  // inclusive lower bound
		"19:59": true,
		"20:00": false, // exclusive upper bound
		"10:59": false,
		"xx:yy": false,
	}
	for startTime, ok := range cases {
		req := validRequest()
		req.StartTime = startTime
		_, err := v.Validate(req)
		if ok {
			assert.NoError(t, err, "start time %s", startTime)
		} else {
			assert.ErrorIs(t, err, ErrInvalidStartTime, "start time %s", startTime)
		}
	}
}

func TestValidateAssignments(t *testing.T) {
	v := testValidator(t)

	req := validRequest()
	req.CategoryIDs = nil
	_, err := v.Validate(req)
	assert.ErrorIs(t, err, ErrNoCategory)

	req = validRequest()
	req.JudgeIDs = []int{10, 11}
	_, err = v.Validate(req)
	assert.ErrorIs(t, err, ErrInsufficientJudges)
}

// The rules are checked in precedence order; a request that breaks
// several reports the earliest one.
func TestValidatePrecedence(t *testing.T) {
	v := testValidator(t)
	req := validRequest()
	req.RegistrationOpens = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	req.RegistrationDays = 6
	req.StartTime = "23:00"
	_, err := v.Validate(req)
	assert.ErrorIs(t, err, ErrInvalidRegistrationStart)
}

func TestNewScheduleValidatorRejectsBadRules(t *testing.T) {
	_, err := NewScheduleValidator(ScheduleRules{
		WindowFrom: "20:00", WindowTo: "11:00",
		DurationOptions: []int{3}, MinLengthDays: 12,
	})
	assert.Error(t, err)

	_, err = NewScheduleValidator(ScheduleRules{
		WindowFrom: "11:00", WindowTo: "20:00",
		MinLengthDays: 12,
	})
	assert.Error(t, err)
}
