package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Gabrielssrs/Robotech-sub000/brackets"
	"github.com/Gabrielssrs/Robotech-sub000/models"
	"github.com/Gabrielssrs/Robotech-sub000/repositories"
	"golang.org/x/sync/errgroup"
)

// Allowed tournament lifecycle transitions. Finished and cancelled are
// terminal.
var allowedTransitions = map[models.TournamentStatus][]models.TournamentStatus{
	models.StatusUpcoming:   {models.StatusInProgress, models.StatusCancelled},
	models.StatusInProgress: {models.StatusFinished, models.StatusCancelled},
}

func canTransition(from, to models.TournamentStatus) bool {
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

type TournamentInput struct {
	Name              string    `json:"name"`
	Description       *string   `json:"description"`
	VenueID           int       `json:"venue_id"`
	CategoryIDs       []int     `json:"category_ids"`
	JudgeIDs          []int     `json:"judge_ids"`
	RegistrationOpens time.Time `json:"registration_opens"`
	RegistrationDays  int       `json:"registration_days"`
	StartDate         time.Time `json:"start_date"`
	EndDate           time.Time `json:"end_date"`
	StartTime         string    `json:"start_time"`
}

type TournamentService interface {
	Create(ctx context.Context, caller models.Principal, input TournamentInput) (*models.Tournament, error)
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	List(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error)
	Update(ctx context.Context, caller models.Principal, id int, input TournamentInput) (*models.Tournament, error)
	Cancel(ctx context.Context, caller models.Principal, id int, reason string) (*models.Tournament, error)
	// Start moves an upcoming tournament to in_progress, seeding the
	// bracket if registration produced one. Admin-only when invoked
	// directly; the scheduler loop calls StartDueTournaments instead.
	Start(ctx context.Context, caller models.Principal, id int) (*models.Tournament, error)
	GetFullTournament(ctx context.Context, id int) (*models.Tournament, error)
	// StartDueTournaments is the clock-driven path: every upcoming
	// tournament whose start moment has passed is seeded and started.
	StartDueTournaments(ctx context.Context, now time.Time) error
}

type tournamentService struct {
	tournamentRepo  repositories.TournamentRepository
	participantRepo repositories.ParticipantRepository
	matchRepo       repositories.MatchRepository
	venueRepo       repositories.VenueRepository
	categoryRepo    repositories.CategoryRepository
	userRepo        repositories.UserRepository
	txRunner        repositories.TxRunner
	validator       *ScheduleValidator
	bracketService  BracketService
	hub             *brackets.Hub
	logger          *slog.Logger
}

func NewTournamentService(
	tournamentRepo repositories.TournamentRepository,
	participantRepo repositories.ParticipantRepository,
	matchRepo repositories.MatchRepository,
	venueRepo repositories.VenueRepository,
	categoryRepo repositories.CategoryRepository,
	userRepo repositories.UserRepository,
	txRunner repositories.TxRunner,
	validator *ScheduleValidator,
	bracketService BracketService,
	hub *brackets.Hub,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		tournamentRepo:  tournamentRepo,
		participantRepo: participantRepo,
		matchRepo:       matchRepo,
		venueRepo:       venueRepo,
		categoryRepo:    categoryRepo,
		userRepo:        userRepo,
		txRunner:        txRunner,
		validator:       validator,
		bracketService:  bracketService,
		hub:             hub,
		logger:          logger,
	}
}

func (s *tournamentService) Create(ctx context.Context, caller models.Principal, input TournamentInput) (*models.Tournament, error) {
	if !caller.IsAdmin() {
		return nil, ErrForbiddenOperation
	}

	schedule, err := s.validateInput(ctx, input, 0)
	if err != nil {
		return nil, err
	}

	tournament := &models.Tournament{
		Name:              input.Name,
		Description:       input.Description,
		VenueID:           input.VenueID,
		CategoryIDs:       input.CategoryIDs,
		JudgeIDs:          input.JudgeIDs,
		RegistrationOpens: schedule.RegistrationOpens,
		RegistrationDays:  schedule.RegistrationDays,
		StartDate:         schedule.StartDate,
		EndDate:           schedule.EndDate,
		StartTime:         schedule.StartTime,
		Status:            models.StatusUpcoming,
	}

	if err := s.tournamentRepo.Create(ctx, tournament); err != nil {
		if errors.Is(err, repositories.ErrTournamentNameConflict) {
			return nil, ErrDuplicateName
		}
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}
	return tournament, nil
}

func (s *tournamentService) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	return s.tournamentRepo.GetByID(ctx, id)
}

func (s *tournamentService) List(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	return s.tournamentRepo.List(ctx, filter)
}

func (s *tournamentService) Update(ctx context.Context, caller models.Principal, id int, input TournamentInput) (*models.Tournament, error) {
	if !caller.IsAdmin() {
		return nil, ErrForbiddenOperation
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	// Schedule, venue, categories and judges are frozen from the moment
	// the tournament leaves upcoming.
	if tournament.Status != models.StatusUpcoming {
		return nil, ErrTournamentLocked
	}

	schedule, err := s.validateInput(ctx, input, id)
	if err != nil {
		return nil, err
	}

	tournament.Name = input.Name
	tournament.Description = input.Description
	tournament.VenueID = input.VenueID
	tournament.CategoryIDs = input.CategoryIDs
	tournament.JudgeIDs = input.JudgeIDs
	tournament.RegistrationOpens = schedule.RegistrationOpens
	tournament.RegistrationDays = schedule.RegistrationDays
	tournament.StartDate = schedule.StartDate
	tournament.EndDate = schedule.EndDate
	tournament.StartTime = schedule.StartTime

	if err := s.tournamentRepo.Update(ctx, tournament); err != nil {
		if errors.Is(err, repositories.ErrTournamentNameConflict) {
			return nil, ErrDuplicateName
		}
		return nil, fmt.Errorf("failed to update tournament %d: %w", id, err)
	}
	return tournament, nil
}

func (s *tournamentService) Cancel(ctx context.Context, caller models.Principal, id int, reason string) (*models.Tournament, error) {
	if !caller.IsAdmin() {
		return nil, ErrForbiddenOperation
	}
	if reason == "" {
		return nil, ErrCancelReasonRequired
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canTransition(tournament.Status, models.StatusCancelled) {
		return nil, ErrInvalidStatusTransition
	}

	if err := s.tournamentRepo.UpdateStatus(ctx, nil, id, models.StatusCancelled, &reason); err != nil {
		return nil, err
	}
	tournament.Status = models.StatusCancelled
	tournament.CancelReason = &reason
	return tournament, nil
}

func (s *tournamentService) Start(ctx context.Context, caller models.Principal, id int) (*models.Tournament, error) {
	if !caller.IsAdmin() {
		return nil, ErrForbiddenOperation
	}
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.startTournament(ctx, tournament); err != nil {
		return nil, err
	}
	return tournament, nil
}

func (s *tournamentService) startTournament(ctx context.Context, tournament *models.Tournament) error {
	if !canTransition(tournament.Status, models.StatusInProgress) {
		return ErrInvalidStatusTransition
	}

	if err := s.bracketService.EnsureSeeded(ctx, tournament); err != nil {
		return fmt.Errorf("failed to seed bracket for tournament %d: %w", tournament.ID, err)
	}

	if err := s.tournamentRepo.UpdateStatus(ctx, nil, tournament.ID, models.StatusInProgress, nil); err != nil {
		return err
	}
	tournament.Status = models.StatusInProgress

	s.hub.BroadcastEvent(brackets.Event{
		Type:         brackets.EventTournamentStarted,
		TournamentID: tournament.ID,
	})

	// With a single participant every match is a bye and the final is
	// already decided at seed time; finish immediately.
	final, err := s.matchRepo.GetByTournamentAndPos(ctx, nil, tournament.ID, brackets.FinalPos)
	if err != nil {
		return fmt.Errorf("failed to load final match: %w", err)
	}
	if final.Status == models.MatchStatusCompleted && final.WinnerID != nil {
		championID := *final.WinnerID
		err := s.txRunner.RunTx(ctx, func(exec repositories.SQLExecutor) error {
			return crownChampion(ctx, exec, s.tournamentRepo, s.participantRepo, tournament.ID, championID)
		})
		if err != nil {
			return err
		}
		tournament.Status = models.StatusFinished
		tournament.ChampionParticipantID = &championID
		s.hub.BroadcastEvent(brackets.Event{
			Type:         brackets.EventTournamentFinished,
			TournamentID: tournament.ID,
			Payload:      map[string]int{"champion_participant_id": championID},
		})
	}
	return nil
}

func (s *tournamentService) StartDueTournaments(ctx context.Context, now time.Time) error {
	due, err := s.tournamentRepo.ListUpcomingStartingBy(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to list tournaments due for start: %w", err)
	}

	for _, tournament := range due {
		count, err := s.participantRepo.CountByTournament(ctx, tournament.ID)
		if err != nil {
			s.logger.Error("failed to count participants for due tournament",
				slog.Int("tournament_id", tournament.ID), slog.Any("error", err))
			continue
		}
		if count == 0 {
			// Nobody registered. Cancel instead of retrying a seeding
			// that can never succeed.
			reason := "no participants registered"
			if err := s.tournamentRepo.UpdateStatus(ctx, nil, tournament.ID, models.StatusCancelled, &reason); err != nil {
				s.logger.Error("failed to cancel empty due tournament",
					slog.Int("tournament_id", tournament.ID), slog.Any("error", err))
				continue
			}
			s.logger.Warn("tournament cancelled by scheduler, nobody registered",
				slog.Int("tournament_id", tournament.ID))
			continue
		}

		if err := s.startTournament(ctx, tournament); err != nil {
			s.logger.Error("failed to start due tournament",
				slog.Int("tournament_id", tournament.ID), slog.Any("error", err))
			continue
		}
		s.logger.Info("tournament started by scheduler", slog.Int("tournament_id", tournament.ID))
	}
	return nil
}

// GetFullTournament returns the tournament with venue, participants and
// matches attached, fetched in parallel.
func (s *tournamentService) GetFullTournament(ctx context.Context, id int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		venue, err := s.venueRepo.GetByID(gCtx, tournament.VenueID)
		if err != nil {
			return fmt.Errorf("failed to fetch venue %d: %w", tournament.VenueID, err)
		}
		tournament.Venue = venue
		return nil
	})

	g.Go(func() error {
		participants, err := s.participantRepo.ListByTournament(gCtx, id)
		if err != nil {
			return fmt.Errorf("failed to fetch participants: %w", err)
		}
		tournament.Participants = make([]models.Participant, 0, len(participants))
		for _, p := range participants {
			tournament.Participants = append(tournament.Participants, *p)
		}
		return nil
	})

	g.Go(func() error {
		matches, err := s.matchRepo.ListByTournament(gCtx, id)
		if err != nil {
			return fmt.Errorf("failed to fetch matches: %w", err)
		}
		tournament.Matches = make([]models.Match, 0, len(matches))
		for _, m := range matches {
			tournament.Matches = append(tournament.Matches, *m)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tournament, nil
}

// validateInput runs the schedule validator and then checks the
// referenced entities: name uniqueness (rule 7), venue, categories and
// judge pool roles.
func (s *tournamentService) validateInput(ctx context.Context, input TournamentInput, excludeID int) (*NormalizedSchedule, error) {
	schedule, err := s.validator.Validate(ScheduleRequest{
		RegistrationOpens: input.RegistrationOpens,
		RegistrationDays:  input.RegistrationDays,
		StartDate:         input.StartDate,
		EndDate:           input.EndDate,
		StartTime:         input.StartTime,
		CategoryIDs:       input.CategoryIDs,
		JudgeIDs:          input.JudgeIDs,
	})
	if err != nil {
		return nil, err
	}

	taken, err := s.tournamentRepo.NameTaken(ctx, input.Name, excludeID)
	if err != nil {
		return nil, fmt.Errorf("failed to check tournament name: %w", err)
	}
	if taken {
		return nil, ErrDuplicateName
	}

	if _, err := s.venueRepo.GetByID(ctx, input.VenueID); err != nil {
		return nil, err
	}

	categories, err := s.categoryRepo.ListByIDs(ctx, input.CategoryIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	if len(categories) != len(input.CategoryIDs) {
		return nil, ErrCategoryUnknown
	}

	judges, err := s.userRepo.ListByIDs(ctx, input.JudgeIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load judge pool: %w", err)
	}
	if len(judges) != len(input.JudgeIDs) {
		return nil, ErrJudgeUnknown
	}
	for _, judge := range judges {
		if judge.Role != models.RoleJudge {
			return nil, ErrJudgeRoleRequired
		}
	}

	return schedule, nil
}
