package services

import (
	"context"
	"testing"
	"time"

	"github.com/Gabrielssrs/Robotech-sub000/brackets"
	"github.com/Gabrielssrs/Robotech-sub000/models"
	"github.com/Gabrielssrs/Robotech-sub000/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type registrationFixture struct {
	participantRepo *memParticipantRepo
	tournamentRepo  *memTournamentRepo
	matchRepo       *memMatchRepo
	robotRepo       *memRobotRepo
	svc             *participantService
	tournament      *models.Tournament
}

func newRegistrationFixture(t *testing.T) *registrationFixture {
	t.Helper()
	ctx := context.Background()

	f := &registrationFixture{
		participantRepo: newMemParticipantRepo(),
		tournamentRepo:  newMemTournamentRepo(),
		matchRepo:       newMemMatchRepo(),
		robotRepo:       newMemRobotRepo(),
	}

	f.tournament = &models.Tournament{
		Name:              "Scrapyard Open",
		VenueID:           1,
		CategoryIDs:       []int{1},
		JudgeIDs:          []int{101, 102, 103},
		RegistrationOpens: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		RegistrationDays:  7,
		StartDate:         time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		StartTime:         "12:00",
		Status:            models.StatusUpcoming,
	}
	require.NoError(t, f.tournamentRepo.Create(ctx, f.tournament))

	f.svc = &participantService{
		participantRepo: f.participantRepo,
		tournamentRepo:  f.tournamentRepo,
		matchRepo:       f.matchRepo,
		robotRepo:       f.robotRepo,
		now: func() time.Time {
			return time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC) // window open
		},
	}
	return f
}

func (f *registrationFixture) robot(t *testing.T, ownerID, categoryID int) *models.Robot {
	t.Helper()
	robot := &models.Robot{OwnerID: ownerID, CategoryID: categoryID, Name: "Crusher"}
	require.NoError(t, f.robotRepo.Create(context.Background(), robot))
	return robot
}

func TestRegisterHappyPath(t *testing.T) {
	f := newRegistrationFixture(t)
	owner := models.Principal{UserID: 7, Role: models.RoleCompetitor}
	robot := f.robot(t, owner.UserID, 1)

	participant, err := f.svc.Register(context.Background(), owner, f.tournament.ID, robot.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ParticipantRegistered, participant.Status)
	assert.Equal(t, robot.ID, participant.RobotID)
}

func TestRegisterOutsideWindow(t *testing.T) {
	f := newRegistrationFixture(t)
	owner := models.Principal{UserID: 7, Role: models.RoleCompetitor}
	robot := f.robot(t, owner.UserID, 1)

	// Before the window opens.
	f.svc.now = func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) }
	_, err := f.svc.Register(context.Background(), owner, f.tournament.ID, robot.ID)
	assert.ErrorIs(t, err, ErrRegistrationNotOpen)

	// The close boundary is exclusive.
	f.svc.now = func() time.Time { return time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC) }
	_, err = f.svc.Register(context.Background(), owner, f.tournament.ID, robot.ID)
	assert.ErrorIs(t, err, ErrRegistrationNotOpen)
}

func TestRegisterClosedWhenTournamentRunning(t *testing.T) {
	f := newRegistrationFixture(t)
	owner := models.Principal{UserID: 7, Role: models.RoleCompetitor}
	robot := f.robot(t, owner.UserID, 1)

	require.NoError(t, f.tournamentRepo.UpdateStatus(context.Background(), nil, f.tournament.ID, models.StatusInProgress, nil))
	_, err := f.svc.Register(context.Background(), owner, f.tournament.ID, robot.ID)
	assert.ErrorIs(t, err, ErrRegistrationNotOpen)
}

func TestRegisterOwnRobotsOnly(t *testing.T) {
	f := newRegistrationFixture(t)
	robot := f.robot(t, 7, 1)

	other := models.Principal{UserID: 8, Role: models.RoleCompetitor}
	_, err := f.svc.Register(context.Background(), other, f.tournament.ID, robot.ID)
	assert.ErrorIs(t, err, ErrForbiddenOperation)

	// Admins may enter anyone's robot.
	_, err = f.svc.Register(context.Background(), adminCaller, f.tournament.ID, robot.ID)
	assert.NoError(t, err)
}

func TestRegisterCategoryMustMatch(t *testing.T) {
	f := newRegistrationFixture(t)
	owner := models.Principal{UserID: 7, Role: models.RoleCompetitor}
	robot := f.robot(t, owner.UserID, 99)

	_, err := f.svc.Register(context.Background(), owner, f.tournament.ID, robot.ID)
	assert.ErrorIs(t, err, ErrCategoryMismatch)
}

func TestRegisterDuplicateRobot(t *testing.T) {
	f := newRegistrationFixture(t)
	owner := models.Principal{UserID: 7, Role: models.RoleCompetitor}
	robot := f.robot(t, owner.UserID, 1)

	_, err := f.svc.Register(context.Background(), owner, f.tournament.ID, robot.ID)
	require.NoError(t, err)
	_, err = f.svc.Register(context.Background(), owner, f.tournament.ID, robot.ID)
	assert.ErrorIs(t, err, repositories.ErrParticipantConflict)
}

func TestRegisterCapacity(t *testing.T) {
	f := newRegistrationFixture(t)
	ctx := context.Background()

	for i := 0; i < brackets.Size; i++ {
		owner := models.Principal{UserID: 100 + i, Role: models.RoleCompetitor}
		robot := f.robot(t, owner.UserID, 1)
		_, err := f.svc.Register(ctx, owner, f.tournament.ID, robot.ID)
		require.NoError(t, err, "entry %d", i)
	}

	late := models.Principal{UserID: 900, Role: models.RoleCompetitor}
	robot := f.robot(t, late.UserID, 1)
	_, err := f.svc.Register(ctx, late, f.tournament.ID, robot.ID)
	assert.ErrorIs(t, err, ErrTournamentFull)
}

func TestWithdraw(t *testing.T) {
	f := newRegistrationFixture(t)
	ctx := context.Background()
	owner := models.Principal{UserID: 7, Role: models.RoleCompetitor}
	robot := f.robot(t, owner.UserID, 1)

	participant, err := f.svc.Register(ctx, owner, f.tournament.ID, robot.ID)
	require.NoError(t, err)

	// Someone else cannot withdraw it.
	other := models.Principal{UserID: 8, Role: models.RoleCompetitor}
	err = f.svc.Withdraw(ctx, other, participant.ID)
	assert.ErrorIs(t, err, ErrForbiddenOperation)

	require.NoError(t, f.svc.Withdraw(ctx, owner, participant.ID))
	_, err = f.participantRepo.GetByID(ctx, nil, participant.ID)
	assert.ErrorIs(t, err, repositories.ErrParticipantNotFound)
}

func TestWithdrawBlockedOnceSeeded(t *testing.T) {
	f := newRegistrationFixture(t)
	ctx := context.Background()
	owner := models.Principal{UserID: 7, Role: models.RoleCompetitor}
	robot := f.robot(t, owner.UserID, 1)

	participant, err := f.svc.Register(ctx, owner, f.tournament.ID, robot.ID)
	require.NoError(t, err)

	matches, err := brackets.Build(brackets.BuildParams{
		TournamentID: f.tournament.ID,
		Participants: []*models.Participant{participant},
	})
	require.NoError(t, err)
	require.NoError(t, f.matchRepo.CreateBatch(ctx, nil, matches))

	err = f.svc.Withdraw(ctx, owner, participant.ID)
	assert.ErrorIs(t, err, ErrBracketAlreadySeeded)
}
