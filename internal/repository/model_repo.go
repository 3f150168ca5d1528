package repository

import (
	"context"
	"errors"

	"labstock/internal/domain"

	"gorm.io/gorm"
)

type EquipmentModelRepository struct {
	db *gorm.DB
}

func NewEquipmentModelRepository(db *gorm.DB) *EquipmentModelRepository {
	return &EquipmentModelRepository{db: db}
}

func (r *EquipmentModelRepository) Create(ctx context.Context, m *domain.EquipmentModel) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *EquipmentModelRepository) GetByID(ctx context.Context, id int64) (*domain.EquipmentModel, error) {
	var m domain.EquipmentModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *EquipmentModelRepository) List(ctx context.Context, verifiedOnly bool) ([]domain.EquipmentModel, error) {
	q := r.db.WithContext(ctx).Order("name")
	if verifiedOnly {
		q = q.Where("verified = ?", true)
	}
	var models []domain.EquipmentModel
	err := q.Find(&models).Error
	return models, err
}

func (r *EquipmentModelRepository) SetVerified(ctx context.Context, id int64, verified bool) error {
	tx := r.db.WithContext(ctx).Model(&domain.EquipmentModel{}).
		Where("id = ?", id).
		Update("verified", verified)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
