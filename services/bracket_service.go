package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Gabrielssrs/Robotech-sub000/brackets"
	"github.com/Gabrielssrs/Robotech-sub000/models"
	"github.com/Gabrielssrs/Robotech-sub000/repositories"
)

type BracketService interface {
	// SeedBracket builds and persists the 16-slot bracket for the
	// tournament from its registered participants. Runs once; a second
	// call fails with ErrBracketAlreadySeeded.
	SeedBracket(ctx context.Context, tournamentID int, policy brackets.SeedingPolicy) ([]*models.Match, error)
	// EnsureSeeded seeds the bracket if it does not exist yet.
	EnsureSeeded(ctx context.Context, tournament *models.Tournament) error
}

type bracketService struct {
	tournamentRepo  repositories.TournamentRepository
	participantRepo repositories.ParticipantRepository
	matchRepo       repositories.MatchRepository
	venueRepo       repositories.VenueRepository
	txRunner        repositories.TxRunner
	hub             *brackets.Hub
	slotDuration    time.Duration
}

func NewBracketService(
	tournamentRepo repositories.TournamentRepository,
	participantRepo repositories.ParticipantRepository,
	matchRepo repositories.MatchRepository,
	venueRepo repositories.VenueRepository,
	txRunner repositories.TxRunner,
	hub *brackets.Hub,
	slotDuration time.Duration,
) BracketService {
	return &bracketService{
		tournamentRepo:  tournamentRepo,
		participantRepo: participantRepo,
		matchRepo:       matchRepo,
		venueRepo:       venueRepo,
		txRunner:        txRunner,
		hub:             hub,
		slotDuration:    slotDuration,
	}
}

func (s *bracketService) SeedBracket(ctx context.Context, tournamentID int, policy brackets.SeedingPolicy) ([]*models.Match, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if tournament.Status == models.StatusFinished || tournament.Status == models.StatusCancelled {
		return nil, ErrTournamentLocked
	}

	existing, err := s.matchRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to check for existing bracket: %w", err)
	}
	if len(existing) > 0 {
		return nil, ErrBracketAlreadySeeded
	}

	all, err := s.participantRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	confirmed := make([]*models.Participant, 0, len(all))
	for _, p := range all {
		if p.Status == models.ParticipantRegistered {
			confirmed = append(confirmed, p)
		}
	}

	matches, err := brackets.Build(brackets.BuildParams{
		TournamentID: tournamentID,
		Participants: confirmed,
		Policy:       policy,
	})
	if err != nil {
		return nil, err
	}

	venue, err := s.venueRepo.GetByID(ctx, tournament.VenueID)
	if err != nil {
		return nil, err
	}
	scheduleMatches(matches, startMoment(tournament), venue.Courts, s.slotDuration)

	err = s.txRunner.RunTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.matchRepo.CreateBatch(ctx, exec, matches); err != nil {
			return fmt.Errorf("failed to persist bracket matches: %w", err)
		}
		for _, p := range confirmed {
			if p.Seed == nil {
				continue
			}
			if err := s.participantRepo.UpdateSeed(ctx, exec, p.ID, *p.Seed); err != nil {
				return fmt.Errorf("failed to record seed for participant %d: %w", p.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.hub.BroadcastEvent(brackets.Event{
		Type:         brackets.EventBracketSeeded,
		TournamentID: tournamentID,
		Payload:      matches,
	})
	return matches, nil
}

func (s *bracketService) EnsureSeeded(ctx context.Context, tournament *models.Tournament) error {
	existing, err := s.matchRepo.ListByTournament(ctx, tournament.ID)
	if err != nil {
		return fmt.Errorf("failed to check for existing bracket: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}
	_, err = s.SeedBracket(ctx, tournament.ID, nil)
	if errors.Is(err, ErrBracketAlreadySeeded) {
		return nil
	}
	return err
}

// scheduleMatches assigns a start time to every match so that no more
// than courts matches run at once. Rounds run strictly one after
// another; within a round, matches go out in waves of at most courts.
// Matches already completed by a bye keep the round's start time but do
// not occupy a court.
func scheduleMatches(matches []*models.Match, startAt time.Time, courts int, slot time.Duration) {
	if courts < 1 {
		courts = 1
	}

	roundStart := startAt
	for r := 0; r < brackets.RoundCount; r++ {
		first := brackets.RoundStart(r)
		count := brackets.MatchesInRound(r)

		wave := 0
		inWave := 0
		for i := 0; i < count; i++ {
			m := matches[first+i]
			if m.Status == models.MatchStatusCompleted {
				m.ScheduledAt = roundStart
				continue
			}
			m.ScheduledAt = roundStart.Add(time.Duration(wave) * slot)
			inWave++
			if inWave == courts {
				wave++
				inWave = 0
			}
		}

		waves := wave
		if inWave > 0 {
			waves++
		}
		if waves == 0 {
			waves = 1
		}
		roundStart = roundStart.Add(time.Duration(waves) * slot)
	}
}
