package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/Gabrielssrs/Robotech-sub000/brackets"
	"github.com/Gabrielssrs/Robotech-sub000/models"
	"github.com/Gabrielssrs/Robotech-sub000/repositories"
)

type MatchService interface {
	GetByID(ctx context.Context, id int) (*models.Match, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Match, error)
	// StartDueMatches flips every pending match whose scheduled time has
	// passed and whose both slots are filled to in_progress. Called from
	// the scheduler loop.
	StartDueMatches(ctx context.Context, now time.Time) error
	// ForceStartMatch starts a match regardless of its scheduled time.
	// Debug capability, admin only.
	ForceStartMatch(ctx context.Context, caller models.Principal, matchID int) error
}

type matchService struct {
	matchRepo repositories.MatchRepository
	hub       *brackets.Hub
	logger    *slog.Logger
}

func NewMatchService(matchRepo repositories.MatchRepository, hub *brackets.Hub, logger *slog.Logger) MatchService {
	return &matchService{matchRepo: matchRepo, hub: hub, logger: logger}
}

func (s *matchService) GetByID(ctx context.Context, id int) (*models.Match, error) {
	return s.matchRepo.GetByID(ctx, nil, id)
}

func (s *matchService) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Match, error) {
	return s.matchRepo.ListByTournament(ctx, tournamentID)
}

func (s *matchService) StartDueMatches(ctx context.Context, now time.Time) error {
	due, err := s.matchRepo.ListDueForStart(ctx, now)
	if err != nil {
		return err
	}

	for _, match := range due {
		if err := s.startMatch(ctx, match); err != nil {
			s.logger.Error("failed to start due match",
				slog.Int("match_id", match.ID), slog.Any("error", err))
		}
	}
	return nil
}

func (s *matchService) ForceStartMatch(ctx context.Context, caller models.Principal, matchID int) error {
	if !caller.IsAdmin() {
		return ErrForbiddenOperation
	}
	match, err := s.matchRepo.GetByID(ctx, nil, matchID)
	if err != nil {
		return err
	}
	if match.Status != models.MatchStatusPending {
		return ErrInvalidStatusTransition
	}
	if match.SlotA == nil || match.SlotB == nil {
		return ErrMatchNotOpen
	}
	return s.startMatch(ctx, match)
}

func (s *matchService) startMatch(ctx context.Context, match *models.Match) error {
	// The CAS keeps a racing scheduler tick from announcing the same
	// match twice.
	swapped, err := s.matchRepo.CompareAndSwapStatus(ctx, nil, match.ID,
		models.MatchStatusPending, models.MatchStatusInProgress, nil)
	if err != nil {
		return err
	}
	if !swapped {
		return nil
	}

	s.hub.BroadcastEvent(brackets.Event{
		Type:         brackets.EventMatchStarted,
		TournamentID: match.TournamentID,
		Payload: map[string]int{
			"match_id":    match.ID,
			"bracket_pos": match.BracketPos,
		},
	})
	return nil
}
