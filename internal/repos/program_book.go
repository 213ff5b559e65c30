package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mtl-infra/capworks-backend/internal/logger"
	"github.com/mtl-infra/capworks-backend/internal/types"
)

type ProgramBookRepo interface {
	Create(ctx context.Context, tx *gorm.DB, books []*types.ProgramBook) ([]*types.ProgramBook, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, bookIDs []uuid.UUID) ([]*types.ProgramBook, error)
	GetByAnnualProgramIDs(ctx context.Context, tx *gorm.DB, annualProgramIDs []uuid.UUID) ([]*types.ProgramBook, error)
	Save(ctx context.Context, tx *gorm.DB, book *types.ProgramBook) (*types.ProgramBook, error)
	DistinctStatuses(ctx context.Context, tx *gorm.DB, bookIDs []uuid.UUID) ([]types.ProgramBookStatus, error)
}

type programBookRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProgramBookRepo(db *gorm.DB, baseLog *logger.Logger) ProgramBookRepo {
	repoLog := baseLog.With("repo", "ProgramBookRepo")
	return &programBookRepo{db: db, log: repoLog}
}

func (br *programBookRepo) Create(ctx context.Context, tx *gorm.DB, books []*types.ProgramBook) ([]*types.ProgramBook, error) {
	transaction := tx
	if transaction == nil {
		transaction = br.db
	}
	if len(books) == 0 {
		return []*types.ProgramBook{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&books).Error; err != nil {
		return nil, err
	}
	return books, nil
}

func (br *programBookRepo) GetByIDs(ctx context.Context, tx *gorm.DB, bookIDs []uuid.UUID) ([]*types.ProgramBook, error) {
	transaction := tx
	if transaction == nil {
		transaction = br.db
	}
	var results []*types.ProgramBook
	if len(bookIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", bookIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (br *programBookRepo) GetByAnnualProgramIDs(ctx context.Context, tx *gorm.DB, annualProgramIDs []uuid.UUID) ([]*types.ProgramBook, error) {
	transaction := tx
	if transaction == nil {
		transaction = br.db
	}
	var results []*types.ProgramBook
	if len(annualProgramIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("annual_program_id IN ?", annualProgramIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (br *programBookRepo) Save(ctx context.Context, tx *gorm.DB, book *types.ProgramBook) (*types.ProgramBook, error) {
	transaction := tx
	if transaction == nil {
		transaction = br.db
	}
	if err := transaction.WithContext(ctx).Save(book).Error; err != nil {
		return nil, err
	}
	return book, nil
}

func (br *programBookRepo) DistinctStatuses(ctx context.Context, tx *gorm.DB, bookIDs []uuid.UUID) ([]types.ProgramBookStatus, error) {
	transaction := tx
	if transaction == nil {
		transaction = br.db
	}
	var statuses []types.ProgramBookStatus
	if len(bookIDs) == 0 {
		return statuses, nil
	}
	if err := transaction.WithContext(ctx).
		Model(&types.ProgramBook{}).
		Where("id IN ?", bookIDs).
		Distinct("status").
		Pluck("status", &statuses).Error; err != nil {
		return nil, err
	}
	return statuses, nil
}
