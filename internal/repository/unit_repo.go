package repository

import (
	"context"
	"errors"
	"time"

	"labstock/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UnitRepository struct {
	db *gorm.DB
}

func NewUnitRepository(db *gorm.DB) *UnitRepository {
	return &UnitRepository{db: db}
}

// UnitFilters narrows List. Zero values mean "any".
type UnitFilters struct {
	ModelID  int64
	Location domain.Location
	Status   domain.UnitStatus
}

// UnitPrecondition is the state every unit in a batch must currently be in
// for the mutation to proceed. Empty fields skip that check.
type UnitPrecondition struct {
	Status   domain.UnitStatus
	Location domain.Location
}

// UnitChange describes the target state of a batch mutation.
type UnitChange struct {
	Status         domain.UnitStatus
	Location       domain.Location
	OriginLocation domain.Location

	HolderUserID *int64
	HolderLoanID *int64
	ClearHolder  bool

	BumpBorrows   bool
	BumpRepairs   bool
	AddRepairCost float64
}

func (r *UnitRepository) CreateBatch(ctx context.Context, units []*domain.Unit) error {
	if len(units) == 0 {
		return domain.ErrValidation
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, u := range units {
			if !domain.ValidPlacement(u.Status, u.Location) {
				return domain.ErrValidation
			}
			if err := tx.Create(u).Error; err != nil {
				if isUniqueViolation(err) {
					return domain.ErrValidation
				}
				return err
			}
		}
		if _, err := reconcileStock(tx, units[0].ModelID, units[0].Location); err != nil {
			return err
		}
		return nil
	})
}

func (r *UnitRepository) GetByID(ctx context.Context, id int64) (*domain.Unit, error) {
	var u domain.Unit
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *UnitRepository) GetByIDs(ctx context.Context, ids []int64) ([]domain.Unit, error) {
	var units []domain.Unit
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&units).Error; err != nil {
		return nil, err
	}
	if len(units) != len(ids) {
		return nil, domain.ErrNotFound
	}
	return units, nil
}

func (r *UnitRepository) List(ctx context.Context, f UnitFilters) ([]domain.Unit, error) {
	q := r.db.WithContext(ctx).Model(&domain.Unit{}).Order("serial")
	if f.ModelID != 0 {
		q = q.Where("model_id = ?", f.ModelID)
	}
	if f.Location != "" {
		q = q.Where("location = ?", f.Location)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	var units []domain.Unit
	err := q.Find(&units).Error
	return units, err
}

// ListAvailable returns available units of a model at a location ordered by
// serial number ascending (deterministic for reservation and selection).
func (r *UnitRepository) ListAvailable(ctx context.Context, modelID int64, loc domain.Location) ([]domain.Unit, error) {
	return r.List(ctx, UnitFilters{ModelID: modelID, Location: loc, Status: domain.UnitAvailable})
}

// UpdateStatusBatch transitions all ids in one transaction. Every unit must
// satisfy the precondition or the whole batch fails with ErrStateConflict
// and nothing is mutated. Affected aggregate rows are rebuilt inside the
// same transaction.
func (r *UnitRepository) UpdateStatusBatch(ctx context.Context, ids []int64, expect UnitPrecondition, change UnitChange) error {
	if len(ids) == 0 {
		return domain.ErrValidation
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		units, err := lockUnits(tx, ids)
		if err != nil {
			return err
		}
		dirty := map[stockKey]struct{}{}
		now := time.Now().UTC()
		for i := range units {
			u := &units[i]
			if err := checkPrecondition(*u, expect); err != nil {
				return err
			}
			dirty[stockKey{u.ModelID, u.EffectiveLocation()}] = struct{}{}
			if err := applyUnitChange(tx, u, change, now); err != nil {
				return err
			}
			dirty[stockKey{u.ModelID, u.EffectiveLocation()}] = struct{}{}
		}
		return reconcileDirty(tx, dirty)
	})
}

// Retire permanently removes a unit from circulation. The caller supplies
// the status it last saw as an optimistic guard.
func (r *UnitRepository) Retire(ctx context.Context, id int64, expect UnitPrecondition) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		units, err := lockUnits(tx, []int64{id})
		if err != nil {
			return err
		}
		u := &units[0]
		if err := checkPrecondition(*u, expect); err != nil {
			return err
		}
		if u.Status == domain.UnitBorrowed {
			return domain.ErrStateConflict
		}
		dirty := map[stockKey]struct{}{{u.ModelID, u.EffectiveLocation()}: {}}
		loc := u.EffectiveLocation()
		u.Status = domain.UnitRetired
		u.Location = loc
		u.OriginLocation = ""
		if err := tx.Save(u).Error; err != nil {
			return err
		}
		return reconcileDirty(tx, dirty)
	})
}

type stockKey struct {
	modelID int64
	loc     domain.Location
}

func reconcileDirty(tx *gorm.DB, dirty map[stockKey]struct{}) error {
	for k := range dirty {
		if _, err := reconcileStock(tx, k.modelID, k.loc); err != nil {
			return err
		}
	}
	return nil
}

// lockUnits selects the rows FOR UPDATE in id order (stable lock order
// avoids deadlock between overlapping batches). Missing ids fail the batch.
func lockUnits(tx *gorm.DB, ids []int64) ([]domain.Unit, error) {
	var units []domain.Unit
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("id").
		Find(&units).Error
	if err != nil {
		return nil, err
	}
	if len(units) != len(ids) {
		return nil, domain.ErrNotFound
	}
	return units, nil
}

func checkPrecondition(u domain.Unit, expect UnitPrecondition) error {
	if expect.Status != "" && u.Status != expect.Status {
		return domain.ErrStateConflict
	}
	if expect.Location != "" && u.Location != expect.Location {
		return domain.ErrStateConflict
	}
	return nil
}

func applyUnitChange(tx *gorm.DB, u *domain.Unit, ch UnitChange, now time.Time) error {
	// a repairing unit always lands at the shop; callers only name the
	// origin slot it will return to
	loc := ch.Location
	if ch.Status == domain.UnitRepairing {
		if ch.OriginLocation == "" {
			return domain.ErrValidation
		}
		loc = domain.LocRepairShop
	}
	if !domain.ValidPlacement(ch.Status, loc) {
		return domain.ErrValidation
	}

	u.Status = ch.Status
	u.Location = loc
	u.OriginLocation = ""
	if ch.Status == domain.UnitRepairing {
		u.OriginLocation = ch.OriginLocation
	}

	if ch.ClearHolder {
		u.HolderUserID = nil
		u.HolderLoanID = nil
		u.HeldSince = nil
	}
	if ch.HolderUserID != nil {
		u.HolderUserID = ch.HolderUserID
		u.HolderLoanID = ch.HolderLoanID
		t := now
		u.HeldSince = &t
	}

	// holder set iff borrowed
	if (u.Status == domain.UnitBorrowed) != (u.HolderUserID != nil) {
		return domain.ErrValidation
	}

	if ch.BumpBorrows {
		u.TotalBorrows++
		t := now
		u.LastBorrowedAt = &t
		u.LastBorrowedBy = ch.HolderUserID
	}
	if ch.BumpRepairs {
		u.TotalRepairs++
	}
	u.TotalRepairCost += ch.AddRepairCost

	return tx.Save(u).Error
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	// sqlite unique errors surface as plain strings through the gorm driver
	return err != nil && (errors.Is(err, gorm.ErrDuplicatedKey))
}
