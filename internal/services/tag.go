package services

import (
	"context"
	"errors"

	"recipebox/internal/database"
	"recipebox/internal/models"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

// TagService serves the static tag reference data.
type TagService struct{}

func NewTagService() *TagService {
	return &TagService{}
}

func (s *TagService) List(ctx context.Context) ([]models.Tag, error) {
	ctx, span := tracer.Start(ctx, "tag.list")
	defer span.End()

	var tags []models.Tag
	if err := database.DB.WithContext(ctx).Order("name").Find(&tags).Error; err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("result.count", len(tags)))

	if tags == nil {
		tags = []models.Tag{}
	}
	return tags, nil
}

func (s *TagService) GetByID(ctx context.Context, tagID uint) (*models.Tag, error) {
	ctx, span := tracer.Start(ctx, "tag.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.Int64("tag.id", int64(tagID)))

	var tag models.Tag
	if err := database.DB.WithContext(ctx).First(&tag, tagID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTagNotFound
		}
		return nil, err
	}

	return &tag, nil
}
