package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Gabrielssrs/Robotech-sub000/models"
)

var (
	ErrParticipantNotFound = errors.New("participant registration not found")
	ErrParticipantConflict = errors.New("robot is already registered for this tournament")
)

type ParticipantRepository interface {
	Create(ctx context.Context, p *models.Participant) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Participant, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Participant, error)
	CountByTournament(ctx context.Context, tournamentID int) (int, error)
	Delete(ctx context.Context, id int) error
	UpdateSeed(ctx context.Context, exec SQLExecutor, id int, seed int) error
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.ParticipantStatus) error
	AddPoints(ctx context.Context, exec SQLExecutor, id int, points int) error
	GetByTournamentAndRobot(ctx context.Context, tournamentID, robotID int) (*models.Participant, error)
}

type postgresParticipantRepository struct {
	db *sql.DB
}

func NewPostgresParticipantRepository(db *sql.DB) ParticipantRepository {
	return &postgresParticipantRepository{db: db}
}

func (r *postgresParticipantRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const participantColumns = `
	p.id, p.tournament_id, p.robot_id, p.seed, p.status, p.points, p.created_at`

func scanParticipant(row interface{ Scan(...interface{}) error }, p *models.Participant) error {
	return row.Scan(&p.ID, &p.TournamentID, &p.RobotID, &p.Seed, &p.Status, &p.Points, &p.CreatedAt)
}

func (r *postgresParticipantRepository) Create(ctx context.Context, p *models.Participant) error {
	query := `
		INSERT INTO participants (tournament_id, robot_id, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, p.TournamentID, p.RobotID, p.Status).
		Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, "participants_tournament_id_robot_id_key") {
			return ErrParticipantConflict
		}
		return err
	}
	return nil
}

func (r *postgresParticipantRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Participant, error) {
	executor := r.getExecutor(exec)
	query := `SELECT` + participantColumns + ` FROM participants p WHERE p.id = $1`

	p := &models.Participant{}
	if err := scanParticipant(executor.QueryRowContext(ctx, query, id), p); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrParticipantNotFound
		}
		return nil, err
	}
	return p, nil
}

// ListByTournament returns participants with their robots attached,
// ordered by registration time.
func (r *postgresParticipantRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Participant, error) {
	query := `
		SELECT` + participantColumns + `,
			r.id, r.owner_id, r.category_id, r.name, r.photo_key, r.created_at
		FROM participants p
		JOIN robots r ON r.id = p.robot_id
		WHERE p.tournament_id = $1
		ORDER BY p.created_at, p.id`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var participants []*models.Participant
	for rows.Next() {
		p := &models.Participant{Robot: &models.Robot{}}
		err := rows.Scan(
			&p.ID, &p.TournamentID, &p.RobotID, &p.Seed, &p.Status, &p.Points, &p.CreatedAt,
			&p.Robot.ID, &p.Robot.OwnerID, &p.Robot.CategoryID, &p.Robot.Name,
			&p.Robot.PhotoKey, &p.Robot.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

func (r *postgresParticipantRepository) CountByTournament(ctx context.Context, tournamentID int) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM participants WHERE tournament_id = $1`, tournamentID).Scan(&count)
	return count, err
}

func (r *postgresParticipantRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM participants WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrParticipantNotFound)
}

func (r *postgresParticipantRepository) UpdateSeed(ctx context.Context, exec SQLExecutor, id int, seed int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE participants SET seed = $1 WHERE id = $2`, seed, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrParticipantNotFound)
}

func (r *postgresParticipantRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.ParticipantStatus) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE participants SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrParticipantNotFound)
}

func (r *postgresParticipantRepository) AddPoints(ctx context.Context, exec SQLExecutor, id int, points int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE participants SET points = points + $1 WHERE id = $2`, points, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrParticipantNotFound)
}

func (r *postgresParticipantRepository) GetByTournamentAndRobot(ctx context.Context, tournamentID, robotID int) (*models.Participant, error) {
	query := `SELECT` + participantColumns + ` FROM participants p WHERE p.tournament_id = $1 AND p.robot_id = $2`

	p := &models.Participant{}
	if err := scanParticipant(r.db.QueryRowContext(ctx, query, tournamentID, robotID), p); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrParticipantNotFound
		}
		return nil, err
	}
	return p, nil
}
