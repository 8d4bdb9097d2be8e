package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Gabrielssrs/Robotech-sub000/models"
	"github.com/lib/pq"
)

var (
	ErrTournamentNotFound     = errors.New("tournament not found")
	ErrTournamentNameConflict = errors.New("tournament name is already in use")
	ErrTournamentInvalidVenue = errors.New("invalid venue reference")
)

type ListTournamentsFilter struct {
	Status     *models.TournamentStatus
	VenueID    *int
	CategoryID *int
	Limit      int
	Offset     int
}

type TournamentRepository interface {
	Create(ctx context.Context, t *models.Tournament) error
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error)
	Update(ctx context.Context, t *models.Tournament) error
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus, cancelReason *string) error
	SetChampion(ctx context.Context, exec SQLExecutor, id int, participantID int) error
	NameTaken(ctx context.Context, name string, excludeID int) (bool, error)
	ListUpcomingStartingBy(ctx context.Context, deadline time.Time) ([]*models.Tournament, error)
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const tournamentColumns = `
	id, name, description, venue_id, category_ids, judge_ids,
	registration_opens, registration_days, start_date, end_date, start_time,
	status, cancel_reason, champion_participant_id, created_at`

func scanTournament(row interface{ Scan(...interface{}) error }, t *models.Tournament) error {
	return row.Scan(
		&t.ID, &t.Name, &t.Description, &t.VenueID,
		pq.Array(&t.CategoryIDs), pq.Array(&t.JudgeIDs),
		&t.RegistrationOpens, &t.RegistrationDays, &t.StartDate, &t.EndDate, &t.StartTime,
		&t.Status, &t.CancelReason, &t.ChampionParticipantID, &t.CreatedAt,
	)
}

func (r *postgresTournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	query := `
		INSERT INTO tournaments (
			name, description, venue_id, category_ids, judge_ids,
			registration_opens, registration_days, start_date, end_date, start_time, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		t.Name, t.Description, t.VenueID, pq.Array(t.CategoryIDs), pq.Array(t.JudgeIDs),
		t.RegistrationOpens, t.RegistrationDays, t.StartDate, t.EndDate, t.StartTime, t.Status,
	).Scan(&t.ID, &t.CreatedAt)

	return r.handleTournamentError(err)
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	query := `SELECT` + tournamentColumns + ` FROM tournaments WHERE id = $1`

	t := &models.Tournament{}
	if err := scanTournament(r.db.QueryRowContext(ctx, query, id), t); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *postgresTournamentRepository) List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error) {
	query := `SELECT` + tournamentColumns + ` FROM tournaments WHERE 1=1`

	args := []interface{}{}
	argID := 1

	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argID)
		args = append(args, *filter.Status)
		argID++
	}
	if filter.VenueID != nil {
		query += fmt.Sprintf(" AND venue_id = $%d", argID)
		args = append(args, *filter.VenueID)
		argID++
	}
	if filter.CategoryID != nil {
		query += fmt.Sprintf(" AND $%d = ANY(category_ids)", argID)
		args = append(args, *filter.CategoryID)
		argID++
	}

	query += " ORDER BY start_date DESC, created_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argID)
		args = append(args, filter.Limit)
		argID++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argID)
		args = append(args, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tournaments := []models.Tournament{}
	for rows.Next() {
		var t models.Tournament
		if err := scanTournament(rows, &t); err != nil {
			return nil, err
		}
		tournaments = append(tournaments, t)
	}
	return tournaments, rows.Err()
}

func (r *postgresTournamentRepository) Update(ctx context.Context, t *models.Tournament) error {
	query := `
		UPDATE tournaments SET
			name = $1, description = $2, venue_id = $3, category_ids = $4, judge_ids = $5,
			registration_opens = $6, registration_days = $7, start_date = $8, end_date = $9,
			start_time = $10
		WHERE id = $11`

	result, err := r.db.ExecContext(ctx, query,
		t.Name, t.Description, t.VenueID, pq.Array(t.CategoryIDs), pq.Array(t.JudgeIDs),
		t.RegistrationOpens, t.RegistrationDays, t.StartDate, t.EndDate, t.StartTime, t.ID,
	)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus, cancelReason *string) error {
	executor := r.getExecutor(exec)
	query := `UPDATE tournaments SET status = $1, cancel_reason = $2 WHERE id = $3`
	result, err := executor.ExecContext(ctx, query, status, cancelReason, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) SetChampion(ctx context.Context, exec SQLExecutor, id int, participantID int) error {
	executor := r.getExecutor(exec)
	query := `UPDATE tournaments SET champion_participant_id = $1 WHERE id = $2`
	result, err := executor.ExecContext(ctx, query, participantID, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

// NameTaken checks uniqueness among non-cancelled tournaments.
func (r *postgresTournamentRepository) NameTaken(ctx context.Context, name string, excludeID int) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM tournaments
			WHERE lower(name) = lower($1) AND status != $2 AND id != $3
		)`
	var taken bool
	err := r.db.QueryRowContext(ctx, query, name, models.StatusCancelled, excludeID).Scan(&taken)
	return taken, err
}

func (r *postgresTournamentRepository) ListUpcomingStartingBy(ctx context.Context, deadline time.Time) ([]*models.Tournament, error) {
	// start_time is "HH:MM"; the start moment is start_date at that
	// time of day.
	query := `SELECT` + tournamentColumns + `
		FROM tournaments
		WHERE status = $1
		  AND start_date + start_time::time <= $2`

	rows, err := r.db.QueryContext(ctx, query, models.StatusUpcoming, deadline)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tournaments []*models.Tournament
	for rows.Next() {
		t := &models.Tournament{}
		if err := scanTournament(rows, t); err != nil {
			return nil, err
		}
		tournaments = append(tournaments, t)
	}
	return tournaments, rows.Err()
}

func (r *postgresTournamentRepository) handleTournamentError(err error) error {
	if err == nil {
		return nil
	}
	if isUniqueViolation(err, "tournaments_active_name_key") {
		return ErrTournamentNameConflict
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23503" && pqErr.Constraint == "tournaments_venue_id_fkey" {
		return ErrTournamentInvalidVenue
	}
	return err
}
