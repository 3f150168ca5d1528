package repository

import (
	"context"
	"errors"
	"time"

	"labstock/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RepairRepository struct {
	db *gorm.DB
}

func NewRepairRepository(db *gorm.DB) *RepairRepository {
	return &RepairRepository{db: db}
}

// Create inserts a ticket after verifying no open ticket exists for the
// unit. The unit row is locked first so two concurrent creates for the same
// unit serialize and the second one sees the winner's ticket.
func (r *RepairRepository) Create(ctx context.Context, t *domain.RepairTicket) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var unit domain.Unit
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&unit, t.UnitID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}

		var open int64
		err := tx.Model(&domain.RepairTicket{}).
			Where("unit_id = ? AND status IN ?", t.UnitID, []domain.RepairStatus{
				domain.RepairPending, domain.RepairApproved, domain.RepairInProgress,
			}).
			Count(&open).Error
		if err != nil {
			return err
		}
		if open > 0 {
			return domain.ErrStateConflict
		}

		t.ModelID = unit.ModelID
		return tx.Create(t).Error
	})
}

func (r *RepairRepository) GetByID(ctx context.Context, id int64) (*domain.RepairTicket, error) {
	var t domain.RepairTicket
	if err := r.db.WithContext(ctx).First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

type RepairFilters struct {
	UnitID int64
	LoanID int64
	Status domain.RepairStatus
}

func (r *RepairRepository) List(ctx context.Context, f RepairFilters) ([]domain.RepairTicket, error) {
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if f.UnitID != 0 {
		q = q.Where("unit_id = ?", f.UnitID)
	}
	if f.LoanID != 0 {
		q = q.Where("loan_id = ?", f.LoanID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	var ts []domain.RepairTicket
	err := q.Find(&ts).Error
	return ts, err
}

// UpdateStatusGuard flips ticket status only when it is still in `from`,
// optionally applying extra column updates in the same statement.
func (r *RepairRepository) UpdateStatusGuard(ctx context.Context, id int64, from, to domain.RepairStatus, extra map[string]interface{}) error {
	return guardTicket(r.db.WithContext(ctx), id, from, to, extra)
}

func guardTicket(tx *gorm.DB, id int64, from, to domain.RepairStatus, extra map[string]interface{}) error {
	updates := map[string]interface{}{
		"status":     to,
		"updated_at": time.Now().UTC(),
	}
	for k, v := range extra {
		updates[k] = v
	}
	res := tx.Model(&domain.RepairTicket{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrStateConflict
	}
	return nil
}

// CommitApproval flips the ticket pending -> approved and, when the unit is
// still a broken shelf unit, hands it over to the repair shop. One
// transaction: a failed handover rolls the ticket back to pending. Units
// surrendered broken at a loan return are already at the shop and stay put.
func (r *RepairRepository) CommitApproval(ctx context.Context, id int64) (*domain.RepairTicket, error) {
	var t domain.RepairTicket
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&t, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		if err := guardTicket(tx, id, domain.RepairPending, domain.RepairApproved, nil); err != nil {
			return err
		}
		t.Status = domain.RepairApproved

		units, err := lockUnits(tx, []int64{t.UnitID})
		if err != nil {
			return err
		}
		u := &units[0]
		if u.Status != domain.UnitBroken {
			return nil
		}
		origin := u.EffectiveLocation()
		err = applyUnitChange(tx, u, UnitChange{
			Status:         domain.UnitRepairing,
			OriginLocation: origin,
			BumpRepairs:    true,
		}, time.Now().UTC())
		if err != nil {
			return err
		}
		_, err = reconcileStock(tx, u.ModelID, origin)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// CommitCompletion closes an in-progress ticket: cost fields land on the
// ticket, the unit leaves the shop (back available on its origin shelf, or
// retired on a compensation write-off) and the owning loan, if any, releases
// the unit from its repairing list. All of it in one transaction, so a unit
// precondition conflict leaves the ticket in_progress and the loan untouched.
// The returned loan is nil for standalone tickets.
func (r *RepairRepository) CommitCompletion(ctx context.Context, id int64, laborCost, partsCost float64, compensation bool) (*domain.RepairTicket, *domain.Loan, error) {
	var t domain.RepairTicket
	var l *domain.Loan
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&t, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		now := time.Now().UTC()
		err := guardTicket(tx, id, domain.RepairInProgress, domain.RepairDone, map[string]interface{}{
			"labor_cost":   laborCost,
			"parts_cost":   partsCost,
			"compensation": compensation,
			"completed_at": now,
		})
		if err != nil {
			return err
		}
		t.Status = domain.RepairDone
		t.LaborCost = laborCost
		t.PartsCost = partsCost
		t.Compensation = compensation
		t.CompletedAt = &now

		units, err := lockUnits(tx, []int64{t.UnitID})
		if err != nil {
			return err
		}
		u := &units[0]
		if u.Status != domain.UnitRepairing {
			return domain.ErrStateConflict
		}
		origin := u.OriginLocation
		if compensation {
			u.Status = domain.UnitRetired
			u.Location = origin
			u.OriginLocation = ""
			if err := tx.Save(u).Error; err != nil {
				return err
			}
		} else {
			err := applyUnitChange(tx, u, UnitChange{
				Status:        domain.UnitAvailable,
				Location:      origin,
				AddRepairCost: t.TotalCost(),
			}, now)
			if err != nil {
				return err
			}
		}
		if _, err := reconcileStock(tx, u.ModelID, origin); err != nil {
			return err
		}

		if t.LoanID == nil {
			return nil
		}
		var loan domain.Loan
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&loan, *t.LoanID).Error; err != nil {
			return err
		}
		releaseRepairing(&loan, t.ModelID, t.UnitID)
		switch {
		case compensation:
			loan.Status = domain.LoanPendingCompensation
		case loan.Settled():
			loan.Status = domain.LoanReturned
		default:
			loan.Status = domain.LoanReturnPending
		}
		if err := tx.Save(&loan).Error; err != nil {
			return err
		}
		l = &loan
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &t, l, nil
}

// CommitRejection closes the ticket without repairing (pending or approved).
// A unit already moved to the shop goes back broken to where it came from,
// in the same transaction as the status flip.
func (r *RepairRepository) CommitRejection(ctx context.Context, id int64) (*domain.RepairTicket, error) {
	var t domain.RepairTicket
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&t, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		err := guardTicket(tx, id, domain.RepairPending, domain.RepairRejected, nil)
		if errors.Is(err, domain.ErrStateConflict) {
			err = guardTicket(tx, id, domain.RepairApproved, domain.RepairRejected, nil)
		}
		if err != nil {
			return err
		}
		t.Status = domain.RepairRejected

		units, err := lockUnits(tx, []int64{t.UnitID})
		if err != nil {
			return err
		}
		u := &units[0]
		if u.Status != domain.UnitRepairing {
			return nil
		}
		origin := u.OriginLocation
		err = applyUnitChange(tx, u, UnitChange{
			Status:   domain.UnitBroken,
			Location: origin,
		}, time.Now().UTC())
		if err != nil {
			return err
		}
		_, err = reconcileStock(tx, u.ModelID, origin)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// releaseRepairing drops one unit from the loan's repairing list, deleting
// the line when it empties.
func releaseRepairing(l *domain.Loan, modelID, unitID int64) {
	items := l.RepairingItems[:0]
	for _, it := range l.RepairingItems {
		if it.ModelID == modelID {
			kept := make([]int64, 0, len(it.UnitIDs))
			for _, id := range it.UnitIDs {
				if id != unitID {
					kept = append(kept, id)
				}
			}
			it.UnitIDs = kept
			it.Quantity = len(kept)
		}
		if it.Quantity > 0 {
			items = append(items, it)
		}
	}
	l.RepairingItems = items
}
