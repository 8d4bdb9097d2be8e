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

type ParticipantService interface {
	// Register enters the caller's robot into a tournament. Admins may
	// register any robot.
	Register(ctx context.Context, caller models.Principal, tournamentID, robotID int) (*models.Participant, error)
	// Withdraw removes a registration before the bracket is seeded.
	Withdraw(ctx context.Context, caller models.Principal, participantID int) error
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Participant, error)
}

type participantService struct {
	participantRepo repositories.ParticipantRepository
	tournamentRepo  repositories.TournamentRepository
	matchRepo       repositories.MatchRepository
	robotRepo       repositories.RobotRepository
	now             func() time.Time
}

func NewParticipantService(
	participantRepo repositories.ParticipantRepository,
	tournamentRepo repositories.TournamentRepository,
	matchRepo repositories.MatchRepository,
	robotRepo repositories.RobotRepository,
) ParticipantService {
	return &participantService{
		participantRepo: participantRepo,
		tournamentRepo:  tournamentRepo,
		matchRepo:       matchRepo,
		robotRepo:       robotRepo,
		now:             time.Now,
	}
}

func (s *participantService) Register(ctx context.Context, caller models.Principal, tournamentID, robotID int) (*models.Participant, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if tournament.Status != models.StatusUpcoming ||
		now.Before(tournament.RegistrationOpens) ||
		!now.Before(tournament.RegistrationCloses()) {
		return nil, ErrRegistrationNotOpen
	}

	robot, err := s.robotRepo.GetByID(ctx, robotID)
	if err != nil {
		return nil, err
	}
	if robot.OwnerID != caller.UserID && !caller.IsAdmin() {
		return nil, ErrForbiddenOperation
	}
	if !tournament.HasCategory(robot.CategoryID) {
		return nil, ErrCategoryMismatch
	}

	count, err := s.participantRepo.CountByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to count participants: %w", err)
	}
	if count >= brackets.Size {
		return nil, ErrTournamentFull
	}

	participant := &models.Participant{
		TournamentID: tournamentID,
		RobotID:      robotID,
		Status:       models.ParticipantRegistered,
	}
	if err := s.participantRepo.Create(ctx, participant); err != nil {
		if errors.Is(err, repositories.ErrParticipantConflict) {
			return nil, repositories.ErrParticipantConflict
		}
		return nil, fmt.Errorf("failed to register participant: %w", err)
	}
	participant.Robot = robot
	return participant, nil
}

func (s *participantService) Withdraw(ctx context.Context, caller models.Principal, participantID int) error {
	participant, err := s.participantRepo.GetByID(ctx, nil, participantID)
	if err != nil {
		return err
	}

	robot, err := s.robotRepo.GetByID(ctx, participant.RobotID)
	if err != nil {
		return err
	}
	if robot.OwnerID != caller.UserID && !caller.IsAdmin() {
		return ErrForbiddenOperation
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, participant.TournamentID)
	if err != nil {
		return err
	}
	if tournament.Status != models.StatusUpcoming {
		return ErrTournamentLocked
	}
	// Once the bracket exists the slot assignment is frozen; withdrawal
	// would leave a hole in it.
	matches, err := s.matchRepo.ListByTournament(ctx, participant.TournamentID)
	if err != nil {
		return fmt.Errorf("failed to check for existing bracket: %w", err)
	}
	if len(matches) > 0 {
		return ErrBracketAlreadySeeded
	}

	return s.participantRepo.Delete(ctx, participantID)
}

func (s *participantService) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Participant, error) {
	return s.participantRepo.ListByTournament(ctx, tournamentID)
}
