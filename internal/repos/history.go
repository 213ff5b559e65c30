package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/mtl-infra/capworks-backend/internal/logger"
	"github.com/mtl-infra/capworks-backend/internal/types"
)

// HistoryRepo is a write-only audit sink. A failed write propagates; the
// caller treats it as an unexpected error.
type HistoryRepo interface {
	Create(ctx context.Context, tx *gorm.DB, record *types.HistoryRecord) error
}

type historyRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewHistoryRepo(db *gorm.DB, baseLog *logger.Logger) HistoryRepo {
	repoLog := baseLog.With("repo", "HistoryRepo")
	return &historyRepo{db: db, log: repoLog}
}

func (hr *historyRepo) Create(ctx context.Context, tx *gorm.DB, record *types.HistoryRecord) error {
	transaction := tx
	if transaction == nil {
		transaction = hr.db
	}
	if record == nil {
		return nil
	}
	return transaction.WithContext(ctx).Create(record).Error
}
