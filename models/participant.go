package models

import "time"

type ParticipantStatus string

const (
	ParticipantRegistered ParticipantStatus = "registered"
	ParticipantEliminated ParticipantStatus = "eliminated"
	ParticipantChampion   ParticipantStatus = "champion"
)

// Participant is one robot entered into one tournament.
type Participant struct {
	ID           int               `json:"id" db:"id"`
	TournamentID int               `json:"tournament_id" db:"tournament_id"`
	RobotID      int               `json:"robot_id" db:"robot_id"`
	Seed         *int              `json:"seed,omitempty" db:"seed"`
	Status       ParticipantStatus `json:"status" db:"status"`
	Points       int               `json:"points" db:"points"`
	CreatedAt    time.Time         `json:"created_at" db:"created_at"`

	Robot *Robot `json:"robot,omitempty" db:"-"`
}
