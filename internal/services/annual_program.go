package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mtl-infra/capworks-backend/internal/logger"
	"github.com/mtl-infra/capworks-backend/internal/repos"
	"github.com/mtl-infra/capworks-backend/internal/types"
)

// AnnualProgramService derives an annual program's status from the statuses
// of its program books.
type AnnualProgramService interface {
	SyncStatus(ctx context.Context, tx *gorm.DB, annualProgramID uuid.UUID) error
}

type annualProgramService struct {
	log               *logger.Logger
	annualProgramRepo repos.AnnualProgramRepo
	programBookRepo   repos.ProgramBookRepo
}

func NewAnnualProgramService(
	baseLog *logger.Logger,
	annualProgramRepo repos.AnnualProgramRepo,
	programBookRepo repos.ProgramBookRepo,
) AnnualProgramService {
	serviceLog := baseLog.With("service", "AnnualProgramService")
	return &annualProgramService{
		log:               serviceLog,
		annualProgramRepo: annualProgramRepo,
		programBookRepo:   programBookRepo,
	}
}

// DeriveAnnualProgramStatus is the pure derivation rule: an empty program is
// new, a fully submitted one is submittedFinal, anything in between is
// programming.
func DeriveAnnualProgramStatus(books []*types.ProgramBook) types.AnnualProgramStatus {
	if len(books) == 0 {
		return types.AnnualProgramStatusNew
	}
	allFinal := true
	anyActive := false
	for _, book := range books {
		if book == nil {
			continue
		}
		if book.Status != types.ProgramBookStatusSubmittedFinal {
			allFinal = false
		}
		if book.Status != types.ProgramBookStatusNew {
			anyActive = true
		}
	}
	switch {
	case allFinal:
		return types.AnnualProgramStatusSubmittedFinal
	case anyActive:
		return types.AnnualProgramStatusProgramming
	default:
		return types.AnnualProgramStatusNew
	}
}

func (as *annualProgramService) SyncStatus(ctx context.Context, tx *gorm.DB, annualProgramID uuid.UUID) error {
	programs, err := as.annualProgramRepo.GetByIDs(ctx, tx, []uuid.UUID{annualProgramID})
	if err != nil {
		return fmt.Errorf("load annual program: %w", err)
	}
	if len(programs) == 0 || programs[0] == nil {
		return nil
	}
	program := programs[0]

	books, err := as.programBookRepo.GetByAnnualProgramIDs(ctx, tx, []uuid.UUID{program.ID})
	if err != nil {
		return fmt.Errorf("load program books: %w", err)
	}

	derived := DeriveAnnualProgramStatus(books)
	if derived == program.Status {
		return nil
	}
	program.Status = derived
	if _, err := as.annualProgramRepo.Save(ctx, tx, program); err != nil {
		return fmt.Errorf("save annual program: %w", err)
	}
	return nil
}
