package models

import "time"

// Score bounds for a single judge submission, inclusive.
const (
	MinScore = 0
	MaxScore = 20
)

// ScoreSubmission is one judge's live score for one match. A judge has at
// most one submission per match; resubmitting replaces the prior value
// while the match is open.
type ScoreSubmission struct {
	ID          int       `json:"id" db:"id"`
	MatchID     int       `json:"match_id" db:"match_id"`
	JudgeID     int       `json:"judge_id" db:"judge_id"`
	ScoreA      int       `json:"score_a" db:"score_a"`
	ScoreB      int       `json:"score_b" db:"score_b"`
	SubmittedAt time.Time `json:"submitted_at" db:"submitted_at"`
}

// JudgeReadiness is one row of the readiness projection for a match.
type JudgeReadiness struct {
	JudgeID int  `json:"judge_id"`
	Ready   bool `json:"ready"`
}
