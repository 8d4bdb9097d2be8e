package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/Gabrielssrs/Robotech-sub000/models"
	"github.com/Gabrielssrs/Robotech-sub000/repositories"
)

// roundScore rounds a mean score to one decimal place, the precision
// final match scores are published with.
func roundScore(x float64) float64 {
	return math.Round(x*10) / 10
}

// startMoment combines a tournament's start date and "HH:MM" start time
// into the moment it begins.
func startMoment(t *models.Tournament) time.Time {
	minute, err := parseTimeOfDay(t.StartTime)
	if err != nil {
		// Stored start times are validated on the way in; a bad value
		// here means corrupted data, fall back to midnight.
		minute = 0
	}
	return truncateToDay(t.StartDate).Add(time.Duration(minute) * time.Minute)
}

// crownChampion records the tournament outcome: champion reference,
// finished status, and the winner's champion standing plus bonus point.
// Runs inside the caller's transaction.
func crownChampion(
	ctx context.Context,
	exec repositories.SQLExecutor,
	tournamentRepo repositories.TournamentRepository,
	participantRepo repositories.ParticipantRepository,
	tournamentID, participantID int,
) error {
	if err := tournamentRepo.SetChampion(ctx, exec, tournamentID, participantID); err != nil {
		return fmt.Errorf("failed to set champion: %w", err)
	}
	if err := tournamentRepo.UpdateStatus(ctx, exec, tournamentID, models.StatusFinished, nil); err != nil {
		return fmt.Errorf("failed to finish tournament: %w", err)
	}
	if err := participantRepo.UpdateStatus(ctx, exec, participantID, models.ParticipantChampion); err != nil {
		return fmt.Errorf("failed to mark champion participant: %w", err)
	}
	if err := participantRepo.AddPoints(ctx, exec, participantID, 1); err != nil {
		return fmt.Errorf("failed to award champion point: %w", err)
	}
	return nil
}
