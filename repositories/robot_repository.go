package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Gabrielssrs/Robotech-sub000/models"
)

var (
	ErrRobotNotFound     = errors.New("robot not found")
	ErrRobotNameConflict = errors.New("robot name is already taken by this owner")
)

type RobotRepository interface {
	Create(ctx context.Context, robot *models.Robot) error
	GetByID(ctx context.Context, id int) (*models.Robot, error)
	ListByOwner(ctx context.Context, ownerID int) ([]*models.Robot, error)
	Update(ctx context.Context, robot *models.Robot) error
	UpdatePhotoKey(ctx context.Context, id int, photoKey *string) error
	Delete(ctx context.Context, id int) error
}

type postgresRobotRepository struct {
	db *sql.DB
}

func NewPostgresRobotRepository(db *sql.DB) RobotRepository {
	return &postgresRobotRepository{db: db}
}

const robotColumns = `id, owner_id, category_id, name, photo_key, created_at`

func scanRobot(row interface{ Scan(...interface{}) error }, robot *models.Robot) error {
	return row.Scan(&robot.ID, &robot.OwnerID, &robot.CategoryID, &robot.Name,
		&robot.PhotoKey, &robot.CreatedAt)
}

func (r *postgresRobotRepository) Create(ctx context.Context, robot *models.Robot) error {
	query := `
		INSERT INTO robots (owner_id, category_id, name)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, robot.OwnerID, robot.CategoryID, robot.Name).
		Scan(&robot.ID, &robot.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, "robots_owner_id_name_key") {
			return ErrRobotNameConflict
		}
		return err
	}
	return nil
}

func (r *postgresRobotRepository) GetByID(ctx context.Context, id int) (*models.Robot, error) {
	robot := &models.Robot{}
	err := scanRobot(r.db.QueryRowContext(ctx,
		`SELECT `+robotColumns+` FROM robots WHERE id = $1`, id), robot)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRobotNotFound
		}
		return nil, err
	}
	return robot, nil
}

func (r *postgresRobotRepository) ListByOwner(ctx context.Context, ownerID int) ([]*models.Robot, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+robotColumns+` FROM robots WHERE owner_id = $1 ORDER BY created_at`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var robots []*models.Robot
	for rows.Next() {
		robot := &models.Robot{}
		if err := scanRobot(rows, robot); err != nil {
			return nil, err
		}
		robots = append(robots, robot)
	}
	return robots, rows.Err()
}

func (r *postgresRobotRepository) Update(ctx context.Context, robot *models.Robot) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE robots SET name = $1, category_id = $2 WHERE id = $3`,
		robot.Name, robot.CategoryID, robot.ID)
	if err != nil {
		if isUniqueViolation(err, "robots_owner_id_name_key") {
			return ErrRobotNameConflict
		}
		return err
	}
	return checkAffectedRows(result, ErrRobotNotFound)
}

func (r *postgresRobotRepository) UpdatePhotoKey(ctx context.Context, id int, photoKey *string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE robots SET photo_key = $1 WHERE id = $2`, photoKey, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrRobotNotFound)
}

func (r *postgresRobotRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM robots WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrRobotNotFound)
}
