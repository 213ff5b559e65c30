package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mtl-infra/capworks-backend/internal/logger"
	"github.com/mtl-infra/capworks-backend/internal/types"
)

type InterventionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, interventions []*types.Intervention) ([]*types.Intervention, error)
	GetByID(ctx context.Context, tx *gorm.DB, interventionID uuid.UUID) (*types.Intervention, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, interventionIDs []uuid.UUID) ([]*types.Intervention, error)
	Save(ctx context.Context, tx *gorm.DB, intervention *types.Intervention) (*types.Intervention, error)
	SaveAll(ctx context.Context, tx *gorm.DB, interventions []*types.Intervention) ([]*types.Intervention, error)
	Delete(ctx context.Context, tx *gorm.DB, interventionIDs []uuid.UUID) error
}

type interventionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewInterventionRepo(db *gorm.DB, baseLog *logger.Logger) InterventionRepo {
	repoLog := baseLog.With("repo", "InterventionRepo")
	return &interventionRepo{db: db, log: repoLog}
}

func (ir *interventionRepo) Create(ctx context.Context, tx *gorm.DB, interventions []*types.Intervention) ([]*types.Intervention, error) {
	transaction := tx
	if transaction == nil {
		transaction = ir.db
	}
	if len(interventions) == 0 {
		return []*types.Intervention{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&interventions).Error; err != nil {
		return nil, err
	}
	return interventions, nil
}

func (ir *interventionRepo) GetByID(ctx context.Context, tx *gorm.DB, interventionID uuid.UUID) (*types.Intervention, error) {
	transaction := tx
	if transaction == nil {
		transaction = ir.db
	}
	var result types.Intervention
	if err := transaction.WithContext(ctx).
		Where("id = ?", interventionID).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (ir *interventionRepo) GetByIDs(ctx context.Context, tx *gorm.DB, interventionIDs []uuid.UUID) ([]*types.Intervention, error) {
	transaction := tx
	if transaction == nil {
		transaction = ir.db
	}
	var results []*types.Intervention
	if len(interventionIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", interventionIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ir *interventionRepo) Save(ctx context.Context, tx *gorm.DB, intervention *types.Intervention) (*types.Intervention, error) {
	transaction := tx
	if transaction == nil {
		transaction = ir.db
	}
	if err := transaction.WithContext(ctx).Save(intervention).Error; err != nil {
		return nil, err
	}
	return intervention, nil
}

// SaveAll persists interventions one by one, in input order. The coordinator
// depends on this ordering; do not parallelize.
func (ir *interventionRepo) SaveAll(ctx context.Context, tx *gorm.DB, interventions []*types.Intervention) ([]*types.Intervention, error) {
	transaction := tx
	if transaction == nil {
		transaction = ir.db
	}
	for _, iv := range interventions {
		if err := transaction.WithContext(ctx).Save(iv).Error; err != nil {
			return nil, err
		}
	}
	return interventions, nil
}

func (ir *interventionRepo) Delete(ctx context.Context, tx *gorm.DB, interventionIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = ir.db
	}
	if len(interventionIDs) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Where("id IN ?", interventionIDs).
		Delete(&types.Intervention{}).Error
}
