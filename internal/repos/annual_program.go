package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mtl-infra/capworks-backend/internal/logger"
	"github.com/mtl-infra/capworks-backend/internal/types"
)

type AnnualProgramRepo interface {
	Create(ctx context.Context, tx *gorm.DB, programs []*types.AnnualProgram) ([]*types.AnnualProgram, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, programIDs []uuid.UUID) ([]*types.AnnualProgram, error)
	Save(ctx context.Context, tx *gorm.DB, program *types.AnnualProgram) (*types.AnnualProgram, error)
}

type annualProgramRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAnnualProgramRepo(db *gorm.DB, baseLog *logger.Logger) AnnualProgramRepo {
	repoLog := baseLog.With("repo", "AnnualProgramRepo")
	return &annualProgramRepo{db: db, log: repoLog}
}

func (ar *annualProgramRepo) Create(ctx context.Context, tx *gorm.DB, programs []*types.AnnualProgram) ([]*types.AnnualProgram, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	if len(programs) == 0 {
		return []*types.AnnualProgram{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&programs).Error; err != nil {
		return nil, err
	}
	return programs, nil
}

func (ar *annualProgramRepo) GetByIDs(ctx context.Context, tx *gorm.DB, programIDs []uuid.UUID) ([]*types.AnnualProgram, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	var results []*types.AnnualProgram
	if len(programIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", programIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ar *annualProgramRepo) Save(ctx context.Context, tx *gorm.DB, program *types.AnnualProgram) (*types.AnnualProgram, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	if err := transaction.WithContext(ctx).Save(program).Error; err != nil {
		return nil, err
	}
	return program, nil
}
