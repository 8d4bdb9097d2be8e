package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/Gabrielssrs/Robotech-sub000/models"
	"github.com/Gabrielssrs/Robotech-sub000/repositories"
	"github.com/Gabrielssrs/Robotech-sub000/storage"
)

var (
	ErrUnsupportedPhotoType = errors.New("photo must be a jpeg, png or webp image")
	ErrPhotoStorageDisabled = errors.New("photo storage is not configured")
)

var photoExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

type RobotInput struct {
	Name       string `json:"name"`
	CategoryID int    `json:"category_id"`
}

type RobotService interface {
	Create(ctx context.Context, caller models.Principal, input RobotInput) (*models.Robot, error)
	GetByID(ctx context.Context, id int) (*models.Robot, error)
	ListByOwner(ctx context.Context, ownerID int) ([]*models.Robot, error)
	Update(ctx context.Context, caller models.Principal, id int, input RobotInput) (*models.Robot, error)
	Delete(ctx context.Context, caller models.Principal, id int) error
	// UploadPhoto replaces the robot's photo in object storage and
	// returns the robot with a fresh public URL.
	UploadPhoto(ctx context.Context, caller models.Principal, id int, contentType string, body io.Reader) (*models.Robot, error)
}

type robotService struct {
	robotRepo    repositories.RobotRepository
	categoryRepo repositories.CategoryRepository
	uploader     storage.FileUploader
	logger       *slog.Logger
}

func NewRobotService(
	robotRepo repositories.RobotRepository,
	categoryRepo repositories.CategoryRepository,
	uploader storage.FileUploader,
	logger *slog.Logger,
) RobotService {
	return &robotService{
		robotRepo:    robotRepo,
		categoryRepo: categoryRepo,
		uploader:     uploader,
		logger:       logger,
	}
}

func (s *robotService) Create(ctx context.Context, caller models.Principal, input RobotInput) (*models.Robot, error) {
	if _, err := s.categoryRepo.GetByID(ctx, input.CategoryID); err != nil {
		return nil, err
	}

	robot := &models.Robot{
		OwnerID:    caller.UserID,
		CategoryID: input.CategoryID,
		Name:       input.Name,
	}
	if err := s.robotRepo.Create(ctx, robot); err != nil {
		if errors.Is(err, repositories.ErrRobotNameConflict) {
			return nil, repositories.ErrRobotNameConflict
		}
		return nil, fmt.Errorf("failed to create robot: %w", err)
	}
	return robot, nil
}

func (s *robotService) GetByID(ctx context.Context, id int) (*models.Robot, error) {
	robot, err := s.robotRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.populatePhotoURL(robot)
	return robot, nil
}

func (s *robotService) ListByOwner(ctx context.Context, ownerID int) ([]*models.Robot, error) {
	robots, err := s.robotRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	for _, robot := range robots {
		s.populatePhotoURL(robot)
	}
	return robots, nil
}

func (s *robotService) Update(ctx context.Context, caller models.Principal, id int, input RobotInput) (*models.Robot, error) {
	robot, err := s.authorizeOwner(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.categoryRepo.GetByID(ctx, input.CategoryID); err != nil {
		return nil, err
	}

	robot.Name = input.Name
	robot.CategoryID = input.CategoryID
	if err := s.robotRepo.Update(ctx, robot); err != nil {
		if errors.Is(err, repositories.ErrRobotNameConflict) {
			return nil, repositories.ErrRobotNameConflict
		}
		return nil, fmt.Errorf("failed to update robot %d: %w", id, err)
	}
	s.populatePhotoURL(robot)
	return robot, nil
}

func (s *robotService) Delete(ctx context.Context, caller models.Principal, id int) error {
	robot, err := s.authorizeOwner(ctx, caller, id)
	if err != nil {
		return err
	}

	if err := s.robotRepo.Delete(ctx, id); err != nil {
		return err
	}
	if robot.PhotoKey != nil && s.uploader != nil {
		if err := s.uploader.Delete(ctx, *robot.PhotoKey); err != nil {
			// The record is gone; a stale object in the bucket is not
			// worth failing the request over.
			s.logger.Warn("failed to delete robot photo from storage",
				slog.Int("robot_id", id), slog.Any("error", err))
		}
	}
	return nil
}

func (s *robotService) UploadPhoto(ctx context.Context, caller models.Principal, id int, contentType string, body io.Reader) (*models.Robot, error) {
	// The uploader is optional at boot; without it the endpoint stays
	// mounted but refuses uploads.
	if s.uploader == nil {
		return nil, ErrPhotoStorageDisabled
	}

	robot, err := s.authorizeOwner(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	ext, ok := photoExtensions[contentType]
	if !ok {
		return nil, ErrUnsupportedPhotoType
	}

	key := fmt.Sprintf("robots/%d/photo-%d.%s", id, time.Now().Unix(), ext)
	result, err := s.uploader.Upload(ctx, key, contentType, body)
	if err != nil {
		return nil, fmt.Errorf("failed to upload robot photo: %w", err)
	}

	oldKey := robot.PhotoKey
	if err := s.robotRepo.UpdatePhotoKey(ctx, id, &result.Key); err != nil {
		return nil, err
	}
	if oldKey != nil && *oldKey != result.Key {
		if err := s.uploader.Delete(ctx, *oldKey); err != nil {
			s.logger.Warn("failed to delete replaced robot photo",
				slog.Int("robot_id", id), slog.Any("error", err))
		}
	}

	robot.PhotoKey = &result.Key
	s.populatePhotoURL(robot)
	return robot, nil
}

func (s *robotService) authorizeOwner(ctx context.Context, caller models.Principal, id int) (*models.Robot, error) {
	robot, err := s.robotRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if robot.OwnerID != caller.UserID && !caller.IsAdmin() {
		return nil, ErrForbiddenOperation
	}
	return robot, nil
}

func (s *robotService) populatePhotoURL(robot *models.Robot) {
	if robot == nil || robot.PhotoKey == nil || *robot.PhotoKey == "" || s.uploader == nil {
		return
	}
	url := s.uploader.GetPublicURL(*robot.PhotoKey)
	robot.PhotoURL = &url
}
