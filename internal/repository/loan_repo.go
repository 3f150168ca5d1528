package repository

import (
	"context"
	"errors"
	"time"

	"labstock/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LoanRepository struct {
	db *gorm.DB
}

func NewLoanRepository(db *gorm.DB) *LoanRepository {
	return &LoanRepository{db: db}
}

func (r *LoanRepository) Create(ctx context.Context, l *domain.Loan) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *LoanRepository) GetByID(ctx context.Context, id int64) (*domain.Loan, error) {
	var l domain.Loan
	if err := r.db.WithContext(ctx).First(&l, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &l, nil
}

func (r *LoanRepository) ListByStudent(ctx context.Context, studentID int64) ([]domain.Loan, error) {
	var loans []domain.Loan
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		Find(&loans).Error
	return loans, err
}

func (r *LoanRepository) ListByStatus(ctx context.Context, status domain.LoanStatus) ([]domain.Loan, error) {
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var loans []domain.Loan
	err := q.Find(&loans).Error
	return loans, err
}

// Update saves loan fields as-is. Used for transitions that touch no units
// (reject, request-return, repaired-unit bookkeeping).
func (r *LoanRepository) Update(ctx context.Context, l *domain.Loan) error {
	return r.db.WithContext(ctx).Save(l).Error
}

// UpdateStatusGuard flips status only if the loan is still in `from`.
// Returns ErrStateConflict when a concurrent transition won.
func (r *LoanRepository) UpdateStatusGuard(ctx context.Context, id int64, from, to domain.LoanStatus) error {
	tx := r.db.WithContext(ctx).Model(&domain.Loan{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{"status": to, "updated_at": time.Now().UTC()})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrStateConflict
	}
	return nil
}

// CommitApproval atomically claims the assigned units for the student and
// marks the loan borrowed. The loan must still be pending and every unit
// must still be available at the lab; otherwise nothing is mutated and
// ErrStateConflict is returned. Two concurrent approvals fighting over a
// unit resolve to exactly one winner.
func (r *LoanRepository) CommitApproval(ctx context.Context, loan *domain.Loan, unitIDs []int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current domain.Loan
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&current, loan.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		if current.Status != domain.LoanPending {
			return domain.ErrStateConflict
		}

		units, err := lockUnits(tx, unitIDs)
		if err != nil {
			return err
		}
		dirty := map[stockKey]struct{}{}
		now := time.Now().UTC()
		for i := range units {
			u := &units[i]
			if err := checkPrecondition(*u, UnitPrecondition{
				Status:   domain.UnitAvailable,
				Location: domain.LocLab,
			}); err != nil {
				return err
			}
			err := applyUnitChange(tx, u, UnitChange{
				Status:       domain.UnitBorrowed,
				Location:     domain.LocLab,
				HolderUserID: &loan.StudentID,
				HolderLoanID: &loan.ID,
				BumpBorrows:  true,
			}, now)
			if err != nil {
				return err
			}
			dirty[stockKey{u.ModelID, domain.LocLab}] = struct{}{}
		}

		if err := tx.Save(loan).Error; err != nil {
			return err
		}
		return reconcileDirty(tx, dirty)
	})
}

// CommitReturn atomically applies a return intake: good units go back to
// the lab shelf, broken units move to the repair shop with a fresh ticket,
// and the recomputed loan is saved. Unit preconditions (still borrowed,
// still held by this loan) guard against a concurrent double return.
func (r *LoanRepository) CommitReturn(ctx context.Context, loan *domain.Loan, good, broken []int64, tickets []*domain.RepairTicket) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		all := append(append([]int64{}, good...), broken...)
		units, err := lockUnits(tx, all)
		if err != nil {
			return err
		}

		brokenSet := map[int64]bool{}
		for _, id := range broken {
			brokenSet[id] = true
		}

		dirty := map[stockKey]struct{}{}
		now := time.Now().UTC()
		for i := range units {
			u := &units[i]
			if u.Status != domain.UnitBorrowed || u.HolderLoanID == nil || *u.HolderLoanID != loan.ID {
				return domain.ErrStateConflict
			}
			ch := UnitChange{
				Status:      domain.UnitAvailable,
				Location:    domain.LocLab,
				ClearHolder: true,
			}
			if brokenSet[u.ID] {
				// surrendered broken: straight to the repair shop,
				// still owed to the loan via RepairingItems
				ch = UnitChange{
					Status:         domain.UnitRepairing,
					Location:       domain.LocRepairShop,
					OriginLocation: domain.LocLab,
					ClearHolder:    true,
					BumpRepairs:    true,
				}
			}
			if err := applyUnitChange(tx, u, ch, now); err != nil {
				return err
			}
			dirty[stockKey{u.ModelID, domain.LocLab}] = struct{}{}
		}

		for _, t := range tickets {
			if err := tx.Create(t).Error; err != nil {
				return err
			}
		}

		if err := tx.Save(loan).Error; err != nil {
			return err
		}
		return reconcileDirty(tx, dirty)
	})
}
