package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Gabrielssrs/Robotech-sub000/models"
)

var ErrScoreNotFound = errors.New("score submission not found")

type ScoreRepository interface {
	// Upsert stores a judge's score for a match, replacing any earlier
	// submission by the same judge.
	Upsert(ctx context.Context, exec SQLExecutor, s *models.ScoreSubmission) error
	ListByMatch(ctx context.Context, exec SQLExecutor, matchID int) ([]*models.ScoreSubmission, error)
	CountDistinctJudges(ctx context.Context, exec SQLExecutor, matchID int) (int, error)
	DeleteByMatch(ctx context.Context, exec SQLExecutor, matchID int) error
}

type postgresScoreRepository struct {
	db *sql.DB
}

func NewPostgresScoreRepository(db *sql.DB) ScoreRepository {
	return &postgresScoreRepository{db: db}
}

func (r *postgresScoreRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresScoreRepository) Upsert(ctx context.Context, exec SQLExecutor, s *models.ScoreSubmission) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO score_submissions (match_id, judge_id, score_a, score_b)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (match_id, judge_id)
		DO UPDATE SET score_a = EXCLUDED.score_a, score_b = EXCLUDED.score_b,
			submitted_at = now()
		RETURNING id, submitted_at`

	return executor.QueryRowContext(ctx, query, s.MatchID, s.JudgeID, s.ScoreA, s.ScoreB).
		Scan(&s.ID, &s.SubmittedAt)
}

func (r *postgresScoreRepository) ListByMatch(ctx context.Context, exec SQLExecutor, matchID int) ([]*models.ScoreSubmission, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, match_id, judge_id, score_a, score_b, submitted_at
		FROM score_submissions
		WHERE match_id = $1
		ORDER BY judge_id`

	rows, err := executor.QueryContext(ctx, query, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var submissions []*models.ScoreSubmission
	for rows.Next() {
		s := &models.ScoreSubmission{}
		if err := rows.Scan(&s.ID, &s.MatchID, &s.JudgeID, &s.ScoreA, &s.ScoreB, &s.SubmittedAt); err != nil {
			return nil, err
		}
		submissions = append(submissions, s)
	}
	return submissions, rows.Err()
}

func (r *postgresScoreRepository) CountDistinctJudges(ctx context.Context, exec SQLExecutor, matchID int) (int, error) {
	executor := r.getExecutor(exec)
	var count int
	err := executor.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT judge_id) FROM score_submissions WHERE match_id = $1`, matchID).
		Scan(&count)
	return count, err
}

func (r *postgresScoreRepository) DeleteByMatch(ctx context.Context, exec SQLExecutor, matchID int) error {
	executor := r.getExecutor(exec)
	_, err := executor.ExecContext(ctx,
		`DELETE FROM score_submissions WHERE match_id = $1`, matchID)
	return err
}
