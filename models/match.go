package models

import "time"

type MatchStatus string

const (
	MatchStatusPending        MatchStatus = "pending"
	MatchStatusInProgress     MatchStatus = "in_progress"
	MatchStatusAwaitingScores MatchStatus = "awaiting_scores"
	MatchStatusCompleted      MatchStatus = "completed"
	MatchStatusTie            MatchStatus = "tie"
)

// Match is one head-to-head contest in a tournament bracket. BracketPos
// (0..14) fixes its round; see the brackets package for the layout.
// A nil slot with the bye flag unset is still waiting for an earlier
// match to resolve.
type Match struct {
	ID           int         `json:"id" db:"id"`
	TournamentID int         `json:"tournament_id" db:"tournament_id"`
	BracketPos   int         `json:"bracket_pos" db:"bracket_pos"`
	SlotA        *int        `json:"slot_a,omitempty" db:"slot_a"`
	SlotB        *int        `json:"slot_b,omitempty" db:"slot_b"`
	ByeA         bool        `json:"bye_a" db:"bye_a"`
	ByeB         bool        `json:"bye_b" db:"bye_b"`
	ScheduledAt  time.Time   `json:"scheduled_at" db:"scheduled_at"`
	Status       MatchStatus `json:"status" db:"status"`
	ScoreA       *float64    `json:"score_a,omitempty" db:"score_a"`
	ScoreB       *float64    `json:"score_b,omitempty" db:"score_b"`
	WinnerID     *int        `json:"winner_id,omitempty" db:"winner_id"`

	ParticipantA *Participant `json:"participant_a,omitempty" db:"-"`
	ParticipantB *Participant `json:"participant_b,omitempty" db:"-"`
}

// MatchResult is the reconciled outcome of a match: the per-side mean
// scores rounded to one decimal, and the winner. WinnerID is nil and
// Tie is set when both sides scored equal.
type MatchResult struct {
	MatchID  int     `json:"match_id"`
	ScoreA   float64 `json:"score_a"`
	ScoreB   float64 `json:"score_b"`
	WinnerID *int    `json:"winner_id,omitempty"`
	Tie      bool    `json:"tie"`
}

// Open reports whether the match still accepts score submissions.
func (m *Match) Open() bool {
	return m.Status == MatchStatusInProgress || m.Status == MatchStatusAwaitingScores
}
