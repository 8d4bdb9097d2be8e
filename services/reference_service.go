package services

import (
	"context"

	"github.com/Gabrielssrs/Robotech-sub000/models"
	"github.com/Gabrielssrs/Robotech-sub000/repositories"
)

// ReferenceService manages the lookup entities tournaments are built
// from: venues and weight categories. Mutations are admin-only.
type ReferenceService interface {
	CreateVenue(ctx context.Context, caller models.Principal, venue *models.Venue) error
	ListVenues(ctx context.Context) ([]*models.Venue, error)
	UpdateVenue(ctx context.Context, caller models.Principal, venue *models.Venue) error
	DeleteVenue(ctx context.Context, caller models.Principal, id int) error

	CreateCategory(ctx context.Context, caller models.Principal, category *models.Category) error
	ListCategories(ctx context.Context) ([]*models.Category, error)
	UpdateCategory(ctx context.Context, caller models.Principal, category *models.Category) error
	DeleteCategory(ctx context.Context, caller models.Principal, id int) error
}

type referenceService struct {
	venueRepo    repositories.VenueRepository
	categoryRepo repositories.CategoryRepository
}

func NewReferenceService(venueRepo repositories.VenueRepository, categoryRepo repositories.CategoryRepository) ReferenceService {
	return &referenceService{venueRepo: venueRepo, categoryRepo: categoryRepo}
}

func (s *referenceService) CreateVenue(ctx context.Context, caller models.Principal, venue *models.Venue) error {
	if !caller.IsAdmin() {
		return ErrForbiddenOperation
	}
	return s.venueRepo.Create(ctx, venue)
}

func (s *referenceService) ListVenues(ctx context.Context) ([]*models.Venue, error) {
	return s.venueRepo.List(ctx)
}

func (s *referenceService) UpdateVenue(ctx context.Context, caller models.Principal, venue *models.Venue) error {
	if !caller.IsAdmin() {
		return ErrForbiddenOperation
	}
	return s.venueRepo.Update(ctx, venue)
}

func (s *referenceService) DeleteVenue(ctx context.Context, caller models.Principal, id int) error {
	if !caller.IsAdmin() {
		return ErrForbiddenOperation
	}
	return s.venueRepo.Delete(ctx, id)
}

func (s *referenceService) CreateCategory(ctx context.Context, caller models.Principal, category *models.Category) error {
	if !caller.IsAdmin() {
		return ErrForbiddenOperation
	}
	return s.categoryRepo.Create(ctx, category)
}

func (s *referenceService) ListCategories(ctx context.Context) ([]*models.Category, error) {
	return s.categoryRepo.List(ctx)
}

func (s *referenceService) UpdateCategory(ctx context.Context, caller models.Principal, category *models.Category) error {
	if !caller.IsAdmin() {
		return ErrForbiddenOperation
	}
	return s.categoryRepo.Update(ctx, category)
}

func (s *referenceService) DeleteCategory(ctx context.Context, caller models.Principal, id int) error {
	if !caller.IsAdmin() {
		return ErrForbiddenOperation
	}
	return s.categoryRepo.Delete(ctx, id)
}
