package services

import (
	"context"
	"testing"
	"time"

	"github.com/Gabrielssrs/Robotech-sub000/brackets"
	"github.com/Gabrielssrs/Robotech-sub000/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pendingBracket() []*models.Match {
	matches := make([]*models.Match, brackets.MatchCount)
	for pos := range matches {
		matches[pos] = &models.Match{BracketPos: pos, Status: models.MatchStatusPending}
	}
	return matches
}

func TestScheduleMatchesHonorsCourtCapacity(t *testing.T) {
	matches := pendingBracket()
	start := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	slot := 30 * time.Minute

	scheduleMatches(matches, start, 2, slot)

	// Round of 16: eight matches on two courts, four waves.
	wantWaves := []int{0, 0, 1, 1, 2, 2, 3, 3}
	for i, wave := range wantWaves {
		assert.Equal(t, start.Add(time.Duration(wave)*slot), matches[i].ScheduledAt, "pos %d", i)
	}

	// Quarterfinals begin after the last round-of-16 wave.
	qfStart := start.Add(4 * slot)
	assert.Equal(t, qfStart, matches[8].ScheduledAt)
	assert.Equal(t, qfStart, matches[9].ScheduledAt)
	assert.Equal(t, qfStart.Add(slot), matches[10].ScheduledAt)
	assert.Equal(t, qfStart.Add(slot), matches[11].ScheduledAt)

	sfStart := qfStart.Add(2 * slot)
	assert.Equal(t, sfStart, matches[12].ScheduledAt)
	assert.Equal(t, sfStart, matches[13].ScheduledAt)

	assert.Equal(t, sfStart.Add(slot), matches[brackets.FinalPos].ScheduledAt)
}

func TestScheduleMatchesByesTakeNoCourt(t *testing.T) {
	matches := pendingBracket()
	// Positions 2..7 already decided by byes.
	for pos := 2; pos < 8; pos++ {
		matches[pos].Status = models.MatchStatusCompleted
	}
	start := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	slot := 30 * time.Minute

	scheduleMatches(matches, start, 2, slot)

	// The two real pairings fit one wave; completed matches keep the
	// round's start time.
	assert.Equal(t, start, matches[0].ScheduledAt)
	assert.Equal(t, start, matches[1].ScheduledAt)
	for pos := 2; pos < 8; pos++ {
		assert.Equal(t, start, matches[pos].ScheduledAt, "pos %d", pos)
	}

	// Quarterfinals follow after a single wave.
	assert.Equal(t, start.Add(slot), matches[8].ScheduledAt)
}

func TestScheduleMatchesSingleCourtFloor(t *testing.T) {
	matches := pendingBracket()
	start := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	slot := 30 * time.Minute

	scheduleMatches(matches, start, 0, slot)

	// Zero courts is treated as one: everything serializes.
	for i := 0; i < 8; i++ {
		assert.Equal(t, start.Add(time.Duration(i)*slot), matches[i].ScheduledAt, "pos %d", i)
	}
	assert.Equal(t, start.Add(8*slot), matches[8].ScheduledAt)
}

func TestSeedBracketOnceOnly(t *testing.T) {
	f := newTournamentFixture(t)
	ctx := context.Background()
	tournament := f.create(t, "Scrapyard Open")
	f.enter(t, tournament.ID, 8)

	bracketService := NewBracketService(
		f.tournamentRepo, f.participantRepo, f.matchRepo, f.venueRepo,
		passthroughTxRunner{}, brackets.NewHub(), 30*time.Minute,
	)

	matches, err := bracketService.SeedBracket(ctx, tournament.ID, nil)
	require.NoError(t, err)
	assert.Len(t, matches, brackets.MatchCount)

	// Seeds persisted back onto the participants.
	participants, err := f.participantRepo.ListByTournament(ctx, tournament.ID)
	require.NoError(t, err)
	for _, p := range participants {
		require.NotNil(t, p.Seed, "participant %d", p.ID)
	}

	_, err = bracketService.SeedBracket(ctx, tournament.ID, nil)
	assert.ErrorIs(t, err, ErrBracketAlreadySeeded)
}

func TestSeedBracketLockedWhenOver(t *testing.T) {
	f := newTournamentFixture(t)
	ctx := context.Background()
	tournament := f.create(t, "Scrapyard Open")
	f.enter(t, tournament.ID, 8)
	require.NoError(t, f.tournamentRepo.UpdateStatus(ctx, nil, tournament.ID, models.StatusFinished, nil))

	bracketService := NewBracketService(
		f.tournamentRepo, f.participantRepo, f.matchRepo, f.venueRepo,
		passthroughTxRunner{}, brackets.NewHub(), 30*time.Minute,
	)

	_, err := bracketService.SeedBracket(ctx, tournament.ID, nil)
	assert.ErrorIs(t, err, ErrTournamentLocked)
}
