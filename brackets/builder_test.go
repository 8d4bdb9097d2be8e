package brackets

import (
	"testing"
	"time"

	"github.com/Gabrielssrs/Robotech-sub000/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeParticipants(n int) []*models.Participant {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	out := make([]*models.Participant, n)
	for i := 0; i < n; i++ {
		out[i] = &models.Participant{
			ID:        i + 1,
			Status:    models.ParticipantRegistered,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
	}
	return out
}

func TestBuildRejectsEmptyField(t *testing.T) {
	_, err := Build(BuildParams{TournamentID: 1})
	assert.ErrorIs(t, err, ErrNoParticipants)
}

func TestBuildRejectsOverCapacity(t *testing.T) {
	_, err := Build(BuildParams{TournamentID: 1, Participants: makeParticipants(17)})
	assert.ErrorIs(t, err, ErrTooManyParticipants)
}

func TestBuildRejectsDuplicate(t *testing.T) {
	participants := makeParticipants(3)
	participants[2].ID = participants[0].ID
	_, err := Build(BuildParams{TournamentID: 1, Participants: participants})
	assert.ErrorIs(t, err, ErrDuplicateParticipant)
}

func TestBuildFullField(t *testing.T) {
	participants := makeParticipants(16)
	matches, err := Build(BuildParams{TournamentID: 7, Participants: participants})
	require.NoError(t, err)
	require.Len(t, matches, MatchCount)

	for pos, m := range matches {
		assert.Equal(t, 7, m.TournamentID)
		assert.Equal(t, pos, m.BracketPos)
	}

	// All eight first-round pairings filled, nothing decided yet.
	for pos := 0; pos < 8; pos++ {
		m := matches[pos]
		require.NotNil(t, m.SlotA, "pos %d", pos)
		require.NotNil(t, m.SlotB, "pos %d", pos)
		assert.False(t, m.ByeA)
		assert.False(t, m.ByeB)
		assert.Equal(t, models.MatchStatusPending, m.Status)
	}
	// Later rounds empty and pending.
	for pos := 8; pos < MatchCount; pos++ {
		m := matches[pos]
		assert.Nil(t, m.SlotA, "pos %d", pos)
		assert.Nil(t, m.SlotB, "pos %d", pos)
		assert.Equal(t, models.MatchStatusPending, m.Status)
	}

	// Registration order: participant 1 and 2 meet at position 0.
	assert.Equal(t, 1, *matches[0].SlotA)
	assert.Equal(t, 2, *matches[0].SlotB)

	// Seeds written back as slot indexes.
	for i, p := range participants {
		require.NotNil(t, p.Seed)
		assert.Equal(t, i, *p.Seed)
	}
}

func TestBuildByesAdvance(t *testing.T) {
	// Five entrants: positions 0-1 real pairings, position 2 a bye for
	// participant 5, positions 3-7 double byes.
	matches, err := Build(BuildParams{TournamentID: 1, Participants: makeParticipants(5)})
	require.NoError(t, err)

	assert.Equal(t, models.MatchStatusPending, matches[0].Status)
	assert.Equal(t, models.MatchStatusPending, matches[1].Status)

	m2 := matches[2]
	assert.Equal(t, models.MatchStatusCompleted, m2.Status)
	require.NotNil(t, m2.WinnerID)
	assert.Equal(t, 5, *m2.WinnerID)

	for pos := 3; pos < 8; pos++ {
		m := matches[pos]
		assert.Equal(t, models.MatchStatusCompleted, m.Status, "pos %d", pos)
		assert.Nil(t, m.WinnerID, "pos %d", pos)
	}

	// Participant 5's bye cascades: quarterfinal 9 gets them in slot A
	// and a bye in slot B, so it completes too.
	m9 := matches[9]
	assert.Equal(t, models.MatchStatusCompleted, m9.Status)
	require.NotNil(t, m9.WinnerID)
	assert.Equal(t, 5, *m9.WinnerID)

	// Quarterfinal 8 waits on the two real pairings.
	m8 := matches[8]
	assert.Equal(t, models.MatchStatusPending, m8.Status)
	assert.Nil(t, m8.SlotA)
	assert.Nil(t, m8.SlotB)
	assert.False(t, m8.ByeA)
	assert.False(t, m8.ByeB)

	// Semifinal 12: slot B holds participant 5, slot A pending on QF 8.
	m12 := matches[12]
	assert.Equal(t, models.MatchStatusPending, m12.Status)
	require.NotNil(t, m12.SlotB)
	assert.Equal(t, 5, *m12.SlotB)
	assert.Nil(t, m12.SlotA)
	assert.False(t, m12.ByeA)

	// The other semifinal is all byes and resolves to nothing; the final
	// therefore has a bye on side B.
	m13 := matches[13]
	assert.Equal(t, models.MatchStatusCompleted, m13.Status)
	assert.Nil(t, m13.WinnerID)

	final := matches[FinalPos]
	assert.Equal(t, models.MatchStatusPending, final.Status)
	assert.True(t, final.ByeB)
}

func TestBuildSingleParticipant(t *testing.T) {
	matches, err := Build(BuildParams{TournamentID: 1, Participants: makeParticipants(1)})
	require.NoError(t, err)

	final := matches[FinalPos]
	assert.Equal(t, models.MatchStatusCompleted, final.Status)
	require.NotNil(t, final.WinnerID)
	assert.Equal(t, 1, *final.WinnerID)
}

func TestShuffleOrderDeterministic(t *testing.T) {
	a := ShuffleOrder(42).Order(makeParticipants(8))
	b := ShuffleOrder(42).Order(makeParticipants(8))
	require.Len(t, a, 8)
	for i := range a {
		assert.Equal(t, a[i].ID, b[i].ID)
	}
}
