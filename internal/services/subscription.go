package services

import (
	"context"
	"errors"

	"recipebox/internal/database"
	"recipebox/internal/logging"
	"recipebox/internal/models"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

type SubscriptionService struct{}

func NewSubscriptionService() *SubscriptionService {
	return &SubscriptionService{}
}

type ListSubscriptionsInput struct {
	Page         int
	PerPage      int
	RecipesLimit int
}

// Subscribe adds the author to the user's feed. Self-subscription is
// rejected, an existing pair is a conflict.
func (s *SubscriptionService) Subscribe(ctx context.Context, userID, authorID uint, recipesLimit int) (*models.AuthorResponse, error) {
	ctx, span := tracer.Start(ctx, "subscription.subscribe")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("user.id", int64(userID)),
		attribute.Int64("author.id", int64(authorID)),
	)

	if userID == authorID {
		return nil, ErrSelfSubscription
	}

	var author models.User
	if err := database.DB.WithContext(ctx).First(&author, authorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	var existing models.Subscription
	if err := database.DB.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		First(&existing).Error; err == nil {
		return nil, ErrAlreadySubscribed
	}

	subscription := models.Subscription{UserID: userID, AuthorID: authorID}
	if err := database.DB.WithContext(ctx).Create(&subscription).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadySubscribed
		}
		return nil, err
	}

	logging.Info(ctx).
		Uint("user_id", userID).
		Uint("author_id", authorID).
		Msg("subscribed to author")

	return s.buildAuthorResponse(ctx, &author, recipesLimit)
}

func (s *SubscriptionService) Unsubscribe(ctx context.Context, userID, authorID uint) error {
	ctx, span := tracer.Start(ctx, "subscription.unsubscribe")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("user.id", int64(userID)),
		attribute.Int64("author.id", int64(authorID)),
	)

	var author models.User
	if err := database.DB.WithContext(ctx).First(&author, authorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	result := database.DB.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Delete(&models.Subscription{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotSubscribed
	}

	logging.Info(ctx).
		Uint("user_id", userID).
		Uint("author_id", authorID).
		Msg("unsubscribed from author")

	return nil
}

// List returns the authors the user is subscribed to, newest subscription
// first, each with a truncated recipe preview list and total recipe count.
func (s *SubscriptionService) List(ctx context.Context, userID uint, input ListSubscriptionsInput) (*models.AuthorsResponse, error) {
	ctx, span := tracer.Start(ctx, "subscription.list")
	defer span.End()

	if input.Page < 1 {
		input.Page = 1
	}
	if input.PerPage < 1 || input.PerPage > 100 {
		input.PerPage = 20
	}

	span.SetAttributes(
		attribute.Int64("user.id", int64(userID)),
		attribute.Int("pagination.page", input.Page),
		attribute.Int("pagination.per_page", input.PerPage),
	)

	query := database.DB.WithContext(ctx).Model(&models.Subscription{}).Where("user_id = ?", userID)

	var totalCount int64
	if err := query.Count(&totalCount).Error; err != nil {
		return nil, err
	}

	offset := (input.Page - 1) * input.PerPage
	var subscriptions []models.Subscription
	if err := query.
		Preload("Author").
		Order("created_at DESC").
		Offset(offset).
		Limit(input.PerPage).
		Find(&subscriptions).Error; err != nil {
		return nil, err
	}

	authors := make([]models.AuthorResponse, 0, len(subscriptions))
	for _, sub := range subscriptions {
		author, err := s.buildAuthorResponse(ctx, &sub.Author, input.RecipesLimit)
		if err != nil {
			return nil, err
		}
		authors = append(authors, *author)
	}

	span.SetAttributes(attribute.Int64("result.total_count", totalCount))

	return &models.AuthorsResponse{
		Authors:    authors,
		TotalCount: totalCount,
		Page:       input.Page,
		PerPage:    input.PerPage,
	}, nil
}

// buildAuthorResponse assembles the author projection with the first
// recipesLimit recipes (all when the limit is zero) and the total count.
func (s *SubscriptionService) buildAuthorResponse(ctx context.Context, author *models.User, recipesLimit int) (*models.AuthorResponse, error) {
	recipesQuery := database.DB.WithContext(ctx).
		Where("author_id = ?", author.ID).
		Order("created_at DESC")
	if recipesLimit > 0 {
		recipesQuery = recipesQuery.Limit(recipesLimit)
	}

	var recipes []models.Recipe
	if err := recipesQuery.Find(&recipes).Error; err != nil {
		return nil, err
	}

	var recipesCount int64
	if err := database.DB.WithContext(ctx).Model(&models.Recipe{}).
		Where("author_id = ?", author.ID).
		Count(&recipesCount).Error; err != nil {
		return nil, err
	}

	previews := make([]models.RecipeSummary, len(recipes))
	for i, r := range recipes {
		previews[i] = r.ToSummary()
	}

	return &models.AuthorResponse{
		UserResponse: author.ToResponse(true),
		Recipes:      previews,
		RecipesCount: recipesCount,
	}, nil
}
