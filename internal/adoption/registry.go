package adoption

import (
	"context"
	"errors"
	"fmt"

	"adoption-service/internal/model"

	"gorm.io/gorm"
)

// AvailableCats returns every cat that has not been adopted, newest first.
func (s *Service) AvailableCats(ctx context.Context) ([]model.Cat, error) {
	var cats []model.Cat
	err := s.db.WithContext(ctx).
		Where("adopted = ?", false).
		Order("id DESC").
		Find(&cats).Error
	if err != nil {
		return nil, fmt.Errorf("list cats: %w", err)
	}
	return cats, nil
}

// CatByID returns one cat or ErrCatNotFound
func (s *Service) CatByID(ctx context.Context, id uint) (model.Cat, error) {
	var cat model.Cat
	if err := s.db.WithContext(ctx).First(&cat, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.Cat{}, ErrCatNotFound
		}
		return model.Cat{}, fmt.Errorf("load cat: %w", err)
	}
	return cat, nil
}

// CreateCat registers a new adoptable cat with cleared adoption flags
func (s *Service) CreateCat(ctx context.Context, cat *model.Cat) error {
	cat.Adopted = false
	cat.Adopter = nil
	cat.AdoptDate = nil
	cat.Taken = false

	if err := s.db.WithContext(ctx).Create(cat).Error; err != nil {
		return fmt.Errorf("create cat: %w", err)
	}
	return nil
}
