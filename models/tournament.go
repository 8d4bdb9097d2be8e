package models

import "time"

// TournamentStatus представляет статусы турнира, соответствующие ENUM в БД.
type TournamentStatus string

const (
	StatusUpcoming   TournamentStatus = "upcoming"
	StatusInProgress TournamentStatus = "in_progress"
	StatusFinished   TournamentStatus = "finished"
	StatusCancelled  TournamentStatus = "cancelled"
)

// Tournament представляет турнир по робо-боям.
type Tournament struct {
	ID                    int              `json:"id" db:"id"`
	Name                  string           `json:"name" db:"name"`
	Description           *string          `json:"description,omitempty" db:"description"`
	VenueID               int              `json:"venue_id" db:"venue_id"`
	CategoryIDs           []int            `json:"category_ids" db:"category_ids"`
	JudgeIDs              []int            `json:"judge_ids" db:"judge_ids"`
	RegistrationOpens     time.Time        `json:"registration_opens" db:"registration_opens"`
	RegistrationDays      int              `json:"registration_days" db:"registration_days"`
	StartDate             time.Time        `json:"start_date" db:"start_date"`
	EndDate               time.Time        `json:"end_date" db:"end_date"`
	StartTime             string           `json:"start_time" db:"start_time"` // "HH:MM"
	Status                TournamentStatus `json:"status" db:"status"`
	CancelReason          *string          `json:"cancel_reason,omitempty" db:"cancel_reason"`
	ChampionParticipantID *int             `json:"champion_participant_id,omitempty" db:"champion_participant_id"`
	CreatedAt             time.Time        `json:"created_at" db:"created_at"`

	// Опциональные связанные сущности (не мапятся напрямую)
	Venue        *Venue        `json:"venue,omitempty" db:"-"`
	Participants []Participant `json:"participants,omitempty" db:"-"`
	Matches      []Match       `json:"matches,omitempty" db:"-"`
}

// RegistrationCloses is the last day of the registration window.
func (t *Tournament) RegistrationCloses() time.Time {
	return t.RegistrationOpens.AddDate(0, 0, t.RegistrationDays)
}

// HasJudge reports whether the user is in the tournament's judge pool.
func (t *Tournament) HasJudge(userID int) bool {
	for _, id := range t.JudgeIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// HasCategory reports whether the category is admitted to the tournament.
func (t *Tournament) HasCategory(categoryID int) bool {
	for _, id := range t.CategoryIDs {
		if id == categoryID {
			return true
		}
	}
	return false
}
