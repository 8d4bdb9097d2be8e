package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Gabrielssrs/Robotech-sub000/models"
)

var ErrVenueNotFound = errors.New("venue not found")

type VenueRepository interface {
	Create(ctx context.Context, venue *models.Venue) error
	GetByID(ctx context.Context, id int) (*models.Venue, error)
	List(ctx context.Context) ([]*models.Venue, error)
	Update(ctx context.Context, venue *models.Venue) error
	Delete(ctx context.Context, id int) error
}

type postgresVenueRepository struct {
	db *sql.DB
}

func NewPostgresVenueRepository(db *sql.DB) VenueRepository {
	return &postgresVenueRepository{db: db}
}

func (r *postgresVenueRepository) Create(ctx context.Context, venue *models.Venue) error {
	return r.db.QueryRowContext(ctx,
		`INSERT INTO venues (name, address, courts) VALUES ($1, $2, $3) RETURNING id`,
		venue.Name, venue.Address, venue.Courts,
	).Scan(&venue.ID)
}

func (r *postgresVenueRepository) GetByID(ctx context.Context, id int) (*models.Venue, error) {
	venue := &models.Venue{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, address, courts FROM venues WHERE id = $1`, id,
	).Scan(&venue.ID, &venue.Name, &venue.Address, &venue.Courts)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrVenueNotFound
		}
		return nil, err
	}
	return venue, nil
}

func (r *postgresVenueRepository) List(ctx context.Context) ([]*models.Venue, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, address, courts FROM venues ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var venues []*models.Venue
	for rows.Next() {
		venue := &models.Venue{}
		if err := rows.Scan(&venue.ID, &venue.Name, &venue.Address, &venue.Courts); err != nil {
			return nil, err
		}
		venues = append(venues, venue)
	}
	return venues, rows.Err()
}

func (r *postgresVenueRepository) Update(ctx context.Context, venue *models.Venue) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE venues SET name = $1, address = $2, courts = $3 WHERE id = $4`,
		venue.Name, venue.Address, venue.Courts, venue.ID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrVenueNotFound)
}

func (r *postgresVenueRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM venues WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrVenueNotFound)
}
