package services

import (
	"context"
	"errors"

	"recipebox/internal/database"
	"recipebox/internal/models"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

type UserService struct{}

func NewUserService() *UserService {
	return &UserService{}
}

func (s *UserService) GetByID(ctx context.Context, userID uint) (*models.User, error) {
	ctx, span := tracer.Start(ctx, "user.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.Int64("user.id", int64(userID)))

	var user models.User
	if err := database.DB.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return &user, nil
}

// GetProfile returns a user projected for the given viewer, with the
// subscribed flag looked up at read time. A nil viewer is anonymous and
// always sees false.
func (s *UserService) GetProfile(ctx context.Context, viewerID *uint, userID uint) (*models.UserResponse, error) {
	ctx, span := tracer.Start(ctx, "user.get_profile")
	defer span.End()

	span.SetAttributes(attribute.Int64("user.id", int64(userID)))

	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	subscribed := false
	if viewerID != nil && *viewerID != user.ID {
		subscribed, err = s.IsSubscribed(ctx, *viewerID, user.ID)
		if err != nil {
			return nil, err
		}
	}

	resp := user.ToResponse(subscribed)
	return &resp, nil
}

func (s *UserService) IsSubscribed(ctx context.Context, userID, authorID uint) (bool, error) {
	var count int64
	if err := database.DB.WithContext(ctx).Model(&models.Subscription{}).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

type UpdateUserInput struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Username  *string `json:"username"`
}

func (s *UserService) Update(ctx context.Context, userID uint, input UpdateUserInput) (*models.User, error) {
	ctx, span := tracer.Start(ctx, "user.update")
	defer span.End()

	span.SetAttributes(attribute.Int64("user.id", int64(userID)))

	var user models.User
	if err := database.DB.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	updates := make(map[string]interface{})
	if input.FirstName != nil {
		updates["first_name"] = *input.FirstName
	}
	if input.LastName != nil {
		updates["last_name"] = *input.LastName
	}
	if input.Username != nil {
		updates["username"] = *input.Username
	}

	if len(updates) > 0 {
		if err := database.DB.WithContext(ctx).Model(&user).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	return &user, nil
}
