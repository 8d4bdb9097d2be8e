package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Gabrielssrs/Robotech-sub000/models"
)

var ErrMatchNotFound = errors.New("match not found")

type MatchRepository interface {
	CreateBatch(ctx context.Context, exec SQLExecutor, matches []*models.Match) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Match, error)
	GetByTournamentAndPos(ctx context.Context, exec SQLExecutor, tournamentID, pos int) (*models.Match, error)
	UpdateSchedule(ctx context.Context, exec SQLExecutor, id int, scheduledAt time.Time) error
	// SetSlot fills one side of a match with a participant, but only if
	// that side is still empty. Reports whether a write happened, which
	// makes winner propagation idempotent.
	SetSlot(ctx context.Context, exec SQLExecutor, id int, sideA bool, participantID int) (bool, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.MatchStatus) error
	// CompareAndSwapStatus transitions the match from one status to
	// another atomically, optionally recording final scores and winner.
	// It reports false when the match was not in the expected status,
	// which is the finalize race gate.
	CompareAndSwapStatus(ctx context.Context, exec SQLExecutor, id int, from, to models.MatchStatus, result *models.MatchResult) (bool, error)
	SetWinner(ctx context.Context, exec SQLExecutor, id int, winnerID *int) error
	ClearResult(ctx context.Context, exec SQLExecutor, id int) error
	ListDueForStart(ctx context.Context, deadline time.Time) ([]*models.Match, error)
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const matchColumns = `
	id, tournament_id, bracket_pos, slot_a, slot_b, bye_a, bye_b,
	scheduled_at, status, score_a, score_b, winner_id`

func scanMatch(row interface{ Scan(...interface{}) error }, m *models.Match) error {
	return row.Scan(
		&m.ID, &m.TournamentID, &m.BracketPos, &m.SlotA, &m.SlotB, &m.ByeA, &m.ByeB,
		&m.ScheduledAt, &m.Status, &m.ScoreA, &m.ScoreB, &m.WinnerID,
	)
}

func (r *postgresMatchRepository) CreateBatch(ctx context.Context, exec SQLExecutor, matches []*models.Match) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO matches (
			tournament_id, bracket_pos, slot_a, slot_b, bye_a, bye_b,
			scheduled_at, status, winner_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`

	for _, m := range matches {
		err := executor.QueryRowContext(ctx, query,
			m.TournamentID, m.BracketPos, m.SlotA, m.SlotB, m.ByeA, m.ByeB,
			m.ScheduledAt, m.Status, m.WinnerID,
		).Scan(&m.ID)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error) {
	executor := r.getExecutor(exec)
	query := `SELECT` + matchColumns + ` FROM matches WHERE id = $1`

	m := &models.Match{}
	if err := scanMatch(executor.QueryRowContext(ctx, query, id), m); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return m, nil
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Match, error) {
	query := `SELECT` + matchColumns + ` FROM matches WHERE tournament_id = $1 ORDER BY bracket_pos`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []*models.Match
	for rows.Next() {
		m := &models.Match{}
		if err := scanMatch(rows, m); err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (r *postgresMatchRepository) GetByTournamentAndPos(ctx context.Context, exec SQLExecutor, tournamentID, pos int) (*models.Match, error) {
	executor := r.getExecutor(exec)
	query := `SELECT` + matchColumns + ` FROM matches WHERE tournament_id = $1 AND bracket_pos = $2`

	m := &models.Match{}
	if err := scanMatch(executor.QueryRowContext(ctx, query, tournamentID, pos), m); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return m, nil
}

func (r *postgresMatchRepository) UpdateSchedule(ctx context.Context, exec SQLExecutor, id int, scheduledAt time.Time) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE matches SET scheduled_at = $1 WHERE id = $2`, scheduledAt, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) SetSlot(ctx context.Context, exec SQLExecutor, id int, sideA bool, participantID int) (bool, error) {
	executor := r.getExecutor(exec)
	column := "slot_b"
	if sideA {
		column = "slot_a"
	}
	query := `UPDATE matches SET ` + column + ` = $1 WHERE id = $2 AND ` + column + ` IS NULL`
	result, err := executor.ExecContext(ctx, query, participantID, id)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *postgresMatchRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.MatchStatus) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE matches SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) CompareAndSwapStatus(ctx context.Context, exec SQLExecutor, id int, from, to models.MatchStatus, res *models.MatchResult) (bool, error) {
	executor := r.getExecutor(exec)

	var result sql.Result
	var err error
	if res != nil {
		result, err = executor.ExecContext(ctx, `
			UPDATE matches SET status = $1, score_a = $2, score_b = $3, winner_id = $4
			WHERE id = $5 AND status = $6`,
			to, res.ScoreA, res.ScoreB, res.WinnerID, id, from)
	} else {
		result, err = executor.ExecContext(ctx,
			`UPDATE matches SET status = $1 WHERE id = $2 AND status = $3`, to, id, from)
	}
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *postgresMatchRepository) SetWinner(ctx context.Context, exec SQLExecutor, id int, winnerID *int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE matches SET winner_id = $1 WHERE id = $2`, winnerID, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

// ClearResult resets scores and winner for a tie replay.
func (r *postgresMatchRepository) ClearResult(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE matches SET score_a = NULL, score_b = NULL, winner_id = NULL WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

// ListDueForStart returns pending matches with both sides filled whose
// scheduled time has arrived, for the clock-driven status scheduler.
func (r *postgresMatchRepository) ListDueForStart(ctx context.Context, deadline time.Time) ([]*models.Match, error) {
	query := `SELECT` + matchColumns + `
		FROM matches
		WHERE status = $1
		  AND scheduled_at <= $2
		  AND slot_a IS NOT NULL
		  AND slot_b IS NOT NULL`

	rows, err := r.db.QueryContext(ctx, query, models.MatchStatusPending, deadline)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []*models.Match
	for rows.Next() {
		m := &models.Match{}
		if err := scanMatch(rows, m); err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}
